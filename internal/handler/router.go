package handler

import (
	"time"

	"github.com/gin-contrib/requestid"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the JSON API engine. Routes live under /api so the
// engine can share a mux with the RPC handlers.
func NewRouter(log *zap.Logger, runner Runner, catalog Catalog, healthz *Healthz) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(ginzap.Ginzap(log, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(log, true))
	router.Use(requestid.New())

	api := router.Group("/api")
	healthz.Mount(api.Group("/healthz"))
	NewTables(catalog).Mount(api.Group("/tables"))
	NewQuery(runner).Mount(api.Group("/query"))

	return router
}
