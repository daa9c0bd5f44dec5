package handler

import (
	"net/http"

	"MiniDrive/internal/dto"
	"MiniDrive/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req.Secret, req.Username, req.Password)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, gin.H{
		"message": "user registered",
		"user":    dto.UserResponse{ID: user.ID, Username: user.Username},
	})
}

func (h *Handler) ListUsers(c *gin.Context) {
	var req dto.AdminRequest
	if !bindJSON(c, &req) {
		return
	}
	users, err := h.admin.ListUsers(c.Request.Context(), req.Secret)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	var req dto.DeleteUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.admin.DeleteUser(c.Request.Context(), req.Secret, req.UserID); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, http.StatusOK, nil)
}
