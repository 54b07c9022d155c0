package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/briarkeep/briarkeep-backend/internal/http/handlers"
	"github.com/briarkeep/briarkeep-backend/internal/http/middleware"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log                *logger.Logger
	ServiceName        string
	IdentityMiddleware *middleware.IdentityMiddleware

	HealthHandler       *handlers.HealthHandler
	CollectionHandler   *handlers.CollectionHandler
	OptimizationHandler *handlers.OptimizationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.AttachTraceContext())
	router.Use(middleware.RequestLogger(cfg.Log))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.IdentityMiddleware.RequireIdentity())

	coll := api.Group("/collection")
	{
		coll.GET("/pipes", cfg.CollectionHandler.ListPipes)
		coll.POST("/pipes", cfg.CollectionHandler.CreatePipe)
		coll.PATCH("/pipes/:pipe_id", cfg.CollectionHandler.UpdatePipe)
		coll.DELETE("/pipes/:pipe_id", cfg.CollectionHandler.DeletePipe)
		coll.POST("/pipes/:pipe_id/photo", cfg.CollectionHandler.UploadPipePhoto)
		coll.DELETE("/pipes/:pipe_id/photo", cfg.CollectionHandler.DeletePipePhoto)

		coll.GET("/blends", cfg.CollectionHandler.ListBlends)
		coll.POST("/blends", cfg.CollectionHandler.CreateBlend)
		coll.PATCH("/blends/:blend_id", cfg.CollectionHandler.UpdateBlend)
		coll.DELETE("/blends/:blend_id", cfg.CollectionHandler.DeleteBlend)
		coll.POST("/blends/:blend_id/photo", cfg.CollectionHandler.UploadBlendPhoto)
		coll.DELETE("/blends/:blend_id/photo", cfg.CollectionHandler.DeleteBlendPhoto)

		coll.GET("/profile", cfg.CollectionHandler.GetProfile)
		coll.PUT("/profile", cfg.CollectionHandler.PutProfile)
	}

	opt := api.Group("/optimization")
	{
		opt.GET("/current", cfg.OptimizationHandler.GetCurrent)
		opt.POST("/regenerate", cfg.OptimizationHandler.Regenerate)
		opt.GET("/staleness", cfg.OptimizationHandler.CheckStaleness)
		opt.POST("/undo", cfg.OptimizationHandler.UndoToPrevious)
		opt.POST("/batches", cfg.OptimizationHandler.ApplyBatch)
		opt.POST("/batches/:batch_id/undo", cfg.OptimizationHandler.UndoBatch)
	}

	return router
}
