package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/middleware"
	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Validation(err, []string{name + " must be a positive integer"})
	}
	return id, nil
}

func pageQuery(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
