package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"landrecords/internal/model"
	"landrecords/internal/policy"
	"landrecords/internal/service"
)

// MutationHandler handles ownership transfer endpoints.
type MutationHandler struct {
	svc service.MutationService
}

// NewMutationHandler creates a new mutation handler.
func NewMutationHandler(svc service.MutationService) *MutationHandler {
	return &MutationHandler{svc: svc}
}

// CreateMutationRequest requests transfer of a parcel.
type CreateMutationRequest struct {
	LandID         string `json:"land_id" validate:"required,uuid"`
	NewOwnerID     string `json:"new_owner_id" validate:"required,uuid"`
	MutationReason string `json:"mutation_reason" validate:"max=2000"`
}

// Create godoc
// @Summary File an ownership transfer
// @Tags mutations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMutationRequest true "Mutation"
// @Success 201 {object} model.Mutation
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /mutations [post]
func (h *MutationHandler) Create(c echo.Context) error {
	var req CreateMutationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	landID, err := uuid.Parse(req.LandID)
	if err != nil {
		return badRequest("invalid land_id", "INVALID_UUID")
	}
	newOwnerID, err := uuid.Parse(req.NewOwnerID)
	if err != nil {
		return badRequest("invalid new_owner_id", "INVALID_UUID")
	}

	m, err := h.svc.Create(c.Request().Context(), CallerFrom(c), service.CreateMutationInput{
		LandID:     landID,
		NewOwnerID: newOwnerID,
		Reason:     req.MutationReason,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, m)
}

// List godoc
// @Summary List mutations visible to the caller
// @Tags mutations
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Max rows (1-1000)"
// @Success 200 {array} model.Mutation
// @Failure 400 {object} errors.ErrorResponse
// @Router /mutations [get]
func (h *MutationHandler) List(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	ms, err := h.svc.List(c.Request().Context(), CallerFrom(c), page)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, ms)
}

// Get godoc
// @Summary Get a mutation
// @Tags mutations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mutation ID"
// @Success 200 {object} model.Mutation
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /mutations/{id} [get]
func (h *MutationHandler) Get(c echo.Context) error {
	return h.withID(c, h.svc.Get)
}

// Approve godoc
// @Summary Approve a pending mutation (admin)
// @Tags mutations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mutation ID"
// @Success 200 {object} model.Mutation
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse "MUTATION_NOT_PENDING, or OWNERSHIP_CHANGED when the parcel changed hands after the mutation was filed"
// @Router /mutations/{id}/approve [put]
func (h *MutationHandler) Approve(c echo.Context) error {
	return h.withID(c, h.svc.Approve)
}

// Reject godoc
// @Summary Reject a pending mutation (admin)
// @Tags mutations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mutation ID"
// @Success 200 {object} model.Mutation
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /mutations/{id}/reject [put]
func (h *MutationHandler) Reject(c echo.Context) error {
	return h.withID(c, h.svc.Reject)
}

type mutationOp func(ctx context.Context, caller policy.Caller, id uuid.UUID) (*model.Mutation, error)

func (h *MutationHandler) withID(c echo.Context, op mutationOp) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	m, err := op(c.Request().Context(), CallerFrom(c), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, m)
}
