package rest

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/logger"
)

// NewRouter wires public and operator routes. Operator routes sit behind the
// admission middleware; everything else is reachable anonymously.
func NewRouter(
	site *SiteHandler,
	content *ContentHandler,
	verifier SessionVerifier,
	allowedOrigins []string,
	logger *logger.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(SessionMiddleware(verifier))

	api := router.Group("/api/v1")
	api.GET("/site", site.Get)

	admin := api.Group("/admin")
	admin.Use(RequireRoles("admin"))
	{
		admin.PUT("/site/status", site.UpdateStatus)
		admin.POST("/site/logo", site.UploadLogo)
		admin.GET("/content/:collection", content.List)
		admin.POST("/content/:collection", content.Create)
		admin.PUT("/content/:collection/:id", content.Update)
		admin.DELETE("/content/:collection/:id", content.Delete)
	}

	return router
}
