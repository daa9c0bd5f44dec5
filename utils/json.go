package utils

import (
	"MiniDrive/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Success writes a JSON body with the ok flag set.
func Success(c *gin.Context, status int, data gin.H) {
	body := gin.H{"ok": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

// Fail writes an error JSON response whose status follows the error kind.
// Internal causes are recorded on the context for the request logger and
// never returned to the caller.
func Fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(apperr.Status(kind), gin.H{"error": apperr.Message(err)})
}
