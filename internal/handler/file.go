package handler

import (
	"errors"
	"net/http"

	"MiniDrive/internal/apperr"
	"MiniDrive/internal/dto"
	"MiniDrive/internal/service"
	"MiniDrive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for boundaries and part headers.
const multipartOverhead = 1 << 20

func (h *Handler) ListFiles(c *gin.Context) {
	files, err := h.files.List(c.Request.Context(), callerID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// UploadFile stores the multipart part named "file".
func (h *Handler) UploadFile(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Fail(c, apperr.BadRequest("file too large"))
			return
		}
		utils.Fail(c, apperr.BadRequest("no file uploaded"))
		return
	}
	src, err := fh.Open()
	if err != nil {
		utils.Fail(c, apperr.Internal("open upload", err))
		return
	}
	defer src.Close()

	file, err := h.files.Upload(c.Request.Context(), callerID(c), service.UploadInput{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Size:     fh.Size,
		Body:     src,
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	h.log.Info("file uploaded",
		zap.Uint64("user_id", callerID(c)),
		zap.Uint64("file_id", file.ID),
		zap.Int64("size", file.SizeBytes),
	)
	utils.Success(c, http.StatusCreated, gin.H{"file": file})
}

func (h *Handler) DownloadFile(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}
	d, err := h.files.Download(c.Request.Context(), callerID(c), fileID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	h.serveDownload(c, d)
}

func (h *Handler) DeleteFile(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.files.Delete(c.Request.Context(), callerID(c), fileID); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, http.StatusOK, nil)
}

func (h *Handler) ListComments(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}
	comments, err := h.comments.List(c.Request.Context(), callerID(c), fileID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *Handler) AddComment(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Add(c.Request.Context(), callerID(c), fileID, req.Body)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, gin.H{"comment": comment})
}
