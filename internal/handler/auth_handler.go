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

type authService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req service.LoginRequest) (*models.SessionResponse, error)
	Update(ctx context.Context, userID int64, req service.UpdateUserRequest) (*models.User, error)
}

// AuthHandler exposes staff account and session endpoints.
type AuthHandler struct {
	service authService
}

// NewAuthHandler builds a new handler.
func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register godoc
// @Summary Create a staff user
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.RegisterRequest true "User payload"
// @Success 201 {object} models.User
// @Router /users [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid user payload"))
		return
	}
	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Login godoc
// @Summary Authenticate and obtain a token
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.LoginRequest true "Credentials"
// @Success 200 {object} models.SessionResponse
// @Router /sessions [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid credentials payload"))
		return
	}
	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Update godoc
// @Summary Update the authenticated staff user
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.UpdateUserRequest true "Partial user payload"
// @Success 200 {object} models.User
// @Router /users [put]
func (h *AuthHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid user payload"))
		return
	}
	user, err := h.service.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}
