package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"landrecords/internal/service"
)

// VerificationHandler serves lookups by public reference.
type VerificationHandler struct {
	svc service.VerificationService
}

func NewVerificationHandler(svc service.VerificationService) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

// Transaction godoc
// @Summary Verify a mutation by transaction id
// @Tags verify
// @Produce json
// @Security BearerAuth
// @Param transaction_id path string true "Transaction ID, e.g. MUT-1a2b3c4d-9f8e"
// @Success 200 {object} service.MutationVerification
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /verify/transactions/{transaction_id} [get]
func (h *VerificationHandler) Transaction(c echo.Context) error {
	res, err := h.svc.ByTransactionID(c.Request().Context(), CallerFrom(c), c.Param("transaction_id"))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, res)
}

// Document godoc
// @Summary Find documents by SHA-256 digest
// @Tags verify
// @Produce json
// @Security BearerAuth
// @Param hash path string true "Hex SHA-256"
// @Success 200 {array} model.Document
// @Failure 400 {object} errors.ErrorResponse
// @Router /verify/documents/{hash} [get]
func (h *VerificationHandler) Document(c echo.Context) error {
	docs, err := h.svc.ByDocumentHash(c.Request().Context(), CallerFrom(c), c.Param("hash"))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, docs)
}

// LandRecord godoc
// @Summary Look up a land record by survey number
// @Tags verify
// @Produce json
// @Security BearerAuth
// @Param survey_number path string true "Survey number"
// @Success 200 {object} model.LandRecord
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /verify/land-records/{survey_number} [get]
func (h *VerificationHandler) LandRecord(c echo.Context) error {
	land, err := h.svc.BySurveyNumber(c.Request().Context(), CallerFrom(c), c.Param("survey_number"))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, land)
}
