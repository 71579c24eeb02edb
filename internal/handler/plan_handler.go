package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/internal/service"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
	"github.com/gympoint/gympoint-api/pkg/response"
)

type planService interface {
	List(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error)
	Get(ctx context.Context, id int64) (*models.Plan, error)
	Create(ctx context.Context, req service.CreatePlanRequest) (*models.Plan, error)
	Update(ctx context.Context, id int64, req service.UpdatePlanRequest) (*models.Plan, error)
	Delete(ctx context.Context, id int64) error
}

// PlanHandler exposes membership plan catalog endpoints.
type PlanHandler struct {
	service planService
}

// NewPlanHandler builds a new handler.
func NewPlanHandler(service planService) *PlanHandler {
	return &PlanHandler{service: service}
}

// List godoc
// @Summary List plans
// @Tags Plans
// @Produce json
// @Param q query string false "Title filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {array} models.Plan
// @Router /plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)
	filter := models.PlanFilter{
		Query: c.Query("q"),
		Page:  page,
		Limit: limit,
	}
	plans, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plans)
}

// Get godoc
// @Summary Get a plan
// @Tags Plans
// @Produce json
// @Param id path int true "Plan ID"
// @Success 200 {object} models.Plan
// @Router /plans/{id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	plan, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plan)
}

// Create godoc
// @Summary Create a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body service.CreatePlanRequest true "Plan payload"
// @Success 201 {object} models.Plan
// @Router /plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	var req service.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan payload"))
		return
	}
	plan, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// Update godoc
// @Summary Update a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path int true "Plan ID"
// @Param payload body service.UpdatePlanRequest true "Partial plan payload"
// @Success 200 {object} models.Plan
// @Router /plans/{id} [put]
func (h *PlanHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan payload"))
		return
	}
	plan, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plan)
}

// Delete godoc
// @Summary Delete a plan
// @Tags Plans
// @Param id path int true "Plan ID"
// @Success 200
// @Router /plans/{id} [delete]
func (h *PlanHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c)
}
