package router

import (
	"net/http"

	"MiniDrive/internal/handler"
	"MiniDrive/internal/service"
	"MiniDrive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InitRouter builds API routes.
func InitRouter(h *handler.Handler, auth *service.AuthService, allowOrigin string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(utils.RequestID())
	r.Use(utils.GinZapLogger(log))
	r.Use(gin.Recovery())
	r.Use(utils.CORSMiddleware(allowOrigin))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.POST("/auth/login", h.Login)
		api.GET("/public/:token", h.PublicDownload)

		admin := api.Group("/admin")
		{
			admin.POST("/register", h.Register)
			admin.POST("/users/list", h.ListUsers)
			admin.POST("/users/delete", h.DeleteUser)
		}

		authed := api.Group("")
		authed.Use(handler.AuthRequired(auth))

		files := authed.Group("/files")
		{
			files.GET("", h.ListFiles)
			files.POST("/upload", h.UploadFile)
			files.GET("/:id", h.DownloadFile)
			files.DELETE("/:id", h.DeleteFile)
			files.GET("/:id/comments", h.ListComments)
			files.POST("/:id/comments", h.AddComment)
		}

		shares := authed.Group("/shares")
		{
			shares.POST("/user", h.GrantShare)
			shares.DELETE("/user", h.RevokeShare)
			shares.GET("/incoming", h.IncomingShares)
			shares.GET("/file/:fileId", h.FileShares)
			shares.POST("/link", h.CreateLink)
			shares.GET("/link/:fileId", h.ListLinks)
			shares.DELETE("/link/:id", h.RevokeLink)
		}
	}
	return r
}
