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

type subscriptionService interface {
	List(ctx context.Context, page, limit int) ([]models.SubscriptionView, error)
	Get(ctx context.Context, id int64) (*models.SubscriptionView, error)
	Create(ctx context.Context, req service.SubscriptionRequest, userID int64) (*models.SubscriptionView, error)
	Update(ctx context.Context, id int64, req service.SubscriptionRequest) (*models.SubscriptionView, error)
	Delete(ctx context.Context, id int64) error
}

type exportService interface {
	Subscriptions(ctx context.Context, format service.ExportFormat) (*service.ExportResult, error)
}

// SubscriptionHandler exposes enrollment endpoints.
type SubscriptionHandler struct {
	service subscriptionService
	export  exportService
}

// NewSubscriptionHandler builds a new handler.
func NewSubscriptionHandler(service subscriptionService, export exportService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, export: export}
}

// List godoc
// @Summary List subscriptions
// @Tags Subscriptions
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {array} models.SubscriptionView
// @Router /subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)
	subs, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, subs)
}

// Get godoc
// @Summary Get a subscription
// @Tags Subscriptions
// @Produce json
// @Param id path int true "Subscription ID"
// @Success 200 {object} models.SubscriptionView
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	sub, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sub)
}

// Create godoc
// @Summary Enroll a student on a plan
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param payload body service.SubscriptionRequest true "Subscription payload"
// @Success 201 {object} models.SubscriptionView
// @Router /subscriptions [post]
func (h *SubscriptionHandler) Create(c *gin.Context) {
	var req service.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subscription payload"))
		return
	}
	var userID int64
	if claims := claimsFromContext(c); claims != nil {
		userID = claims.UserID
	}
	sub, err := h.service.Create(c.Request.Context(), req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// Update godoc
// @Summary Update a subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path int true "Subscription ID"
// @Param payload body service.SubscriptionRequest true "Subscription payload"
// @Success 200 {object} models.SubscriptionView
// @Router /subscriptions/{id} [put]
func (h *SubscriptionHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subscription payload"))
		return
	}
	sub, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sub)
}

// Delete godoc
// @Summary Delete a subscription
// @Tags Subscriptions
// @Param id path int true "Subscription ID"
// @Success 200
// @Router /subscriptions/{id} [delete]
func (h *SubscriptionHandler) Delete(c *gin.Context) {
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

// Export godoc
// @Summary Export the subscription report
// @Tags Subscriptions
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Success 200
// @Router /subscriptions/export [get]
func (h *SubscriptionHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))
	result, err := h.export.Subscriptions(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
