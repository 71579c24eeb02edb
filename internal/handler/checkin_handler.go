package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/pkg/response"
)

type checkInService interface {
	CheckIn(ctx context.Context, studentID int64) (*models.CheckIn, error)
	List(ctx context.Context, studentID int64, page, limit int) ([]models.CheckIn, error)
}

// CheckInHandler exposes the member visit endpoints.
type CheckInHandler struct {
	service checkInService
}

// NewCheckInHandler builds a new handler.
func NewCheckInHandler(service checkInService) *CheckInHandler {
	return &CheckInHandler{service: service}
}

// Create godoc
// @Summary Record a gym visit
// @Tags Check-ins
// @Produce json
// @Param id path int true "Student ID"
// @Success 201 {object} models.CheckIn
// @Router /students/{id}/checkins [post]
func (h *CheckInHandler) Create(c *gin.Context) {
	studentID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	checkIn, err := h.service.CheckIn(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, checkIn)
}

// List godoc
// @Summary List a student's visits
// @Tags Check-ins
// @Produce json
// @Param id path int true "Student ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {array} models.CheckIn
// @Router /students/{id}/checkins [get]
func (h *CheckInHandler) List(c *gin.Context) {
	studentID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, limit := pageQuery(c)
	checkIns, err := h.service.List(c.Request.Context(), studentID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, checkIns)
}
