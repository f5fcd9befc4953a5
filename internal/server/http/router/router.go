// Package router assembles the gin engine for the admin HTTP surface.
package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/haidarz/remitbot/internal/server/http/handlers"
	"github.com/haidarz/remitbot/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.AdminFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	adminHandler := handlers.NewAdminHandler(facade)

	engine.GET("/health", adminHandler.Health)

	admin := engine.Group("/api/admin")
	admin.POST("/login", adminHandler.Login)

	adminAuth := admin.Group("")
	adminAuth.Use(middleware.AuthRequired(facade))
	adminAuth.POST("/broadcast", adminHandler.Broadcast)
	adminAuth.GET("/orders", adminHandler.Orders)
	adminAuth.GET("/subscribers", adminHandler.Subscribers)
	adminAuth.GET("/subscribers/count", adminHandler.SubscriberCount)

	return engine
}
