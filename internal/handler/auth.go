package handler

import (
	"net/http"

	"MiniDrive/internal/dto"
	"MiniDrive/utils"

	"github.com/gin-gonic/gin"
)

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{
		OK:    true,
		Token: token,
		User:  dto.UserResponse{ID: user.ID, Username: user.Username},
	})
}
