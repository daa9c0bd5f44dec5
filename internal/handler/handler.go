package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"MiniDrive/internal/apperr"
	"MiniDrive/internal/service"
	"MiniDrive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the REST API on top of the services.
type Handler struct {
	auth      *service.AuthService
	admin     *service.AdminService
	files     *service.FileService
	shares    *service.ShareService
	comments  *service.CommentService
	maxUpload int64
	log       *zap.Logger
}

// Deps groups the services a Handler needs.
type Deps struct {
	Auth      *service.AuthService
	Admin     *service.AdminService
	Files     *service.FileService
	Shares    *service.ShareService
	Comments  *service.CommentService
	MaxUpload int64
	Log       *zap.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		auth:      d.Auth,
		admin:     d.Admin,
		files:     d.Files,
		shares:    d.Shares,
		comments:  d.Comments,
		maxUpload: d.MaxUpload,
		log:       d.Log,
	}
}

// bindJSON decodes the request body into req. An empty body decodes as {}.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		utils.Fail(c, apperr.BadRequest("invalid request body"))
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.Fail(c, apperr.BadRequest("invalid "+name))
		return 0, false
	}
	return id, true
}

func callerID(c *gin.Context) uint64 {
	return c.GetUint64(ctxUserID)
}

// serveDownload streams d and closes its body.
func (h *Handler) serveDownload(c *gin.Context, d *service.Download) {
	defer d.Body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": d.File.OriginalName})
	if disposition == "" {
		disposition = `attachment; filename="` + utils.SanitizeHeaderFilename(d.File.OriginalName) + `"`
	}
	c.DataFromReader(http.StatusOK, d.Size, d.ContentType, d.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

func Health(c *gin.Context) {
	utils.Success(c, http.StatusOK, nil)
}
