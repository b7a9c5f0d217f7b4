package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"landrecords/internal/service"
)

// DocumentHandler handles document upload and verification.
type DocumentHandler struct {
	svc service.DocumentService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(svc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload godoc
// @Summary Attach a document to a land record
// @Description The file is stored under a generated name; its SHA-256 becomes the parcel's document_hash.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Land record ID"
// @Param document_type formData string true "deed, survey, tax_receipt, ..."
// @Param file formData file true "Document"
// @Success 201 {object} model.Document
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Router /land-records/{id}/documents [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	landID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	docType := c.FormValue("document_type")
	if docType == "" {
		return badRequest("document_type is required", "VALIDATION_ERROR")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest("file is required", "VALIDATION_ERROR")
	}
	src, err := fh.Open()
	if err != nil {
		return badRequest("unreadable file", "INVALID_REQUEST")
	}
	defer src.Close()

	doc, err := h.svc.Upload(c.Request().Context(), CallerFrom(c), service.UploadInput{
		LandID:       landID,
		DocumentType: docType,
		FileName:     fh.Filename,
		Content:      src,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// List godoc
// @Summary List documents of a land record
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Land record ID"
// @Success 200 {array} model.Document
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /land-records/{id}/documents [get]
func (h *DocumentHandler) List(c echo.Context) error {
	landID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	docs, err := h.svc.List(c.Request().Context(), CallerFrom(c), landID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, docs)
}

// Verify godoc
// @Summary Re-digest a stored document and compare with its recorded hash
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} service.DocumentVerification
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /documents/{id}/verify [get]
func (h *DocumentHandler) Verify(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.svc.Verify(c.Request().Context(), CallerFrom(c), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, res)
}
