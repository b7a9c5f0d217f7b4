package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"landrecords/internal/service"
)

// LandRecordHandler handles land record endpoints.
type LandRecordHandler struct {
	svc service.LandRecordService
}

// NewLandRecordHandler creates a new land record handler.
func NewLandRecordHandler(svc service.LandRecordService) *LandRecordHandler {
	return &LandRecordHandler{svc: svc}
}

// CreateLandRecordRequest represents a new parcel. Area is a decimal string
// or number, e.g. "2400.50".
type CreateLandRecordRequest struct {
	PropertyAddress string          `json:"property_address" validate:"required,max=512"`
	AreaSqft        decimal.Decimal `json:"area_sqft" swaggertype:"string" example:"2400.50"`
	SurveyNumber    string          `json:"survey_number" validate:"required,max=128"`
	GeoLatitude     *float64        `json:"geo_latitude,omitempty" validate:"omitempty,latitude"`
	GeoLongitude    *float64        `json:"geo_longitude,omitempty" validate:"omitempty,longitude"`
}

// Create godoc
// @Summary Register a land record owned by the caller
// @Tags land-records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateLandRecordRequest true "Land record"
// @Success 201 {object} model.LandRecord
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /land-records [post]
func (h *LandRecordHandler) Create(c echo.Context) error {
	var req CreateLandRecordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.AreaSqft.IsPositive() {
		return badRequest("area_sqft must be positive", "VALIDATION_ERROR")
	}

	land, err := h.svc.Create(c.Request().Context(), CallerFrom(c), service.CreateLandRecordInput{
		PropertyAddress: req.PropertyAddress,
		AreaSqft:        req.AreaSqft,
		SurveyNumber:    req.SurveyNumber,
		GeoLatitude:     req.GeoLatitude,
		GeoLongitude:    req.GeoLongitude,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, land)
}

// List godoc
// @Summary List land records visible to the caller
// @Tags land-records
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Max rows (1-1000)"
// @Success 200 {array} model.LandRecord
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /land-records [get]
func (h *LandRecordHandler) List(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	lands, err := h.svc.List(c.Request().Context(), CallerFrom(c), page)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, lands)
}

// Get godoc
// @Summary Get a land record
// @Tags land-records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Land record ID"
// @Success 200 {object} model.LandRecord
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /land-records/{id} [get]
func (h *LandRecordHandler) Get(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	land, err := h.svc.Get(c.Request().Context(), CallerFrom(c), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, land)
}

// ListMutations godoc
// @Summary Transfer history of a land record
// @Tags land-records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Land record ID"
// @Success 200 {array} model.Mutation
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /land-records/{id}/mutations [get]
func (h *LandRecordHandler) ListMutations(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	mutations, err := h.svc.ListMutations(c.Request().Context(), CallerFrom(c), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, mutations)
}
