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

type helpOrderService interface {
	Ask(ctx context.Context, studentID int64, req service.AskRequest) (*models.HelpOrder, error)
	Answer(ctx context.Context, id int64, req service.AnswerRequest) (*models.HelpOrderView, error)
	ListUnanswered(ctx context.Context, page, limit int) ([]models.HelpOrderView, error)
	ListForStudent(ctx context.Context, studentID int64, page, limit int) ([]models.HelpOrder, error)
}

// HelpOrderHandler exposes the question/answer endpoints.
type HelpOrderHandler struct {
	service helpOrderService
}

// NewHelpOrderHandler builds a new handler.
func NewHelpOrderHandler(service helpOrderService) *HelpOrderHandler {
	return &HelpOrderHandler{service: service}
}

// Ask godoc
// @Summary File a question
// @Tags Help Orders
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.AskRequest true "Question payload"
// @Success 201 {object} models.HelpOrder
// @Router /students/{id}/help-orders [post]
func (h *HelpOrderHandler) Ask(c *gin.Context) {
	studentID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid help order payload"))
		return
	}
	order, err := h.service.Ask(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// Answer godoc
// @Summary Answer a question
// @Tags Help Orders
// @Accept json
// @Produce json
// @Param id path int true "Help order ID"
// @Param payload body service.AnswerRequest true "Answer payload"
// @Success 200 {object} models.HelpOrderView
// @Router /help-orders/{id} [put]
func (h *HelpOrderHandler) Answer(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answer payload"))
		return
	}
	order, err := h.service.Answer(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, order)
}

// ListUnanswered godoc
// @Summary List pending questions
// @Tags Help Orders
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {array} models.HelpOrderView
// @Router /help-orders [get]
func (h *HelpOrderHandler) ListUnanswered(c *gin.Context) {
	page, limit := pageQuery(c)
	orders, err := h.service.ListUnanswered(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, orders)
}

// ListForStudent godoc
// @Summary List a student's questions
// @Tags Help Orders
// @Produce json
// @Param id path int true "Student ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {array} models.HelpOrder
// @Router /students/{id}/help-orders [get]
func (h *HelpOrderHandler) ListForStudent(c *gin.Context) {
	studentID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, limit := pageQuery(c)
	orders, err := h.service.ListForStudent(c.Request.Context(), studentID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, orders)
}
