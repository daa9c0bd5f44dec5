package handler

import (
	"MiniDrive/internal/service"
	"MiniDrive/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// AuthRequired resolves the bearer token and stores the caller on the context.
func AuthRequired(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.Set(ctxUserID, id.UserID)
		c.Set(ctxUsername, id.Username)
		c.Next()
	}
}
