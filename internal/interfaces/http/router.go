// Package http wires the HTTP surface: the sync trigger endpoints and
// the status report.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mirra/internal/interfaces/http/handlers/sync"
	"mirra/internal/interfaces/http/middleware"
	"mirra/internal/shared/logger"
	"mirra/internal/shared/version"
)

// Router holds the configured gin engine.
type Router struct {
	engine      *gin.Engine
	syncHandler *sync.SyncHandler
}

// NewRouter creates the HTTP router around the sync handler.
func NewRouter(syncHandler *sync.SyncHandler, allowedOrigins []string, log logger.Interface) *Router {
	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.CORS(allowedOrigins))
	engine.Use(middleware.ErrorHandler())

	r := &Router{
		engine:      engine,
		syncHandler: syncHandler,
	}
	r.registerRoutes()
	return r
}

func (r *Router) registerRoutes() {
	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "mirra",
			"version": version.Version,
		})
	})
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.engine.GET("/status", r.syncHandler.GetStatus)

	syncGroup := r.engine.Group("/sync")
	{
		syncGroup.POST("/updated", r.syncHandler.SyncUpdated)
		syncGroup.POST("/new", r.syncHandler.SyncNew)
		syncGroup.POST("/full", r.syncHandler.SyncAll)
	}
}

// Engine returns the underlying gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
