package handler

import (
	"net/http"

	"MiniDrive/internal/dto"
	"MiniDrive/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GrantShare(c *gin.Context) {
	var req dto.GrantShareRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.shares.Grant(c.Request.Context(), callerID(c), req.FileID, req.TargetUsername, req.CanDownload)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, http.StatusOK, nil)
}

func (h *Handler) RevokeShare(c *gin.Context) {
	var req dto.RevokeShareRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.shares.Revoke(c.Request.Context(), callerID(c), req.FileID, req.TargetUsername); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, http.StatusOK, nil)
}

func (h *Handler) IncomingShares(c *gin.Context) {
	items, err := h.shares.ListIncoming(c.Request.Context(), callerID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) FileShares(c *gin.Context) {
	fileID, ok := paramID(c, "fileId")
	if !ok {
		return
	}
	shares, err := h.shares.ListOutgoing(c.Request.Context(), callerID(c), fileID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

func (h *Handler) CreateLink(c *gin.Context) {
	var req dto.CreateLinkRequest
	if !bindJSON(c, &req) {
		return
	}
	link, err := h.shares.CreateLink(c.Request.Context(), callerID(c), req.FileID, req.ExpiresInDays, req.MaxDownloads)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"token": link.Token, "link": link})
}

func (h *Handler) ListLinks(c *gin.Context) {
	fileID, ok := paramID(c, "fileId")
	if !ok {
		return
	}
	links, err := h.shares.ListLinks(c.Request.Context(), callerID(c), fileID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (h *Handler) RevokeLink(c *gin.Context) {
	linkID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.shares.RevokeLink(c.Request.Context(), callerID(c), linkID); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, http.StatusOK, nil)
}

// PublicDownload serves a file through a link token without a session.
func (h *Handler) PublicDownload(c *gin.Context) {
	d, err := h.shares.ResolvePublic(c.Request.Context(), c.Param("token"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	h.serveDownload(c, d)
}
