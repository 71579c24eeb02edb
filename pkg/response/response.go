package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

// JSON sends a success response with the entity or collection as the body.
func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Deleted responds with an empty 200 body, as the clients expect on deletes.
func Deleted(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Error converts the error into the wire contract: validation failures carry
// the per-field messages under "errors", everything else a single "error".
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Code == appErrors.ErrValidation.Code {
		c.JSON(appErr.Status, gin.H{"errors": appErr.Fields, "error": "Validation fails"})
		return
	}
	c.JSON(appErr.Status, gin.H{"error": appErr.Message})
}
