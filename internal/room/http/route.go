package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/rooms")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/available", h.Available)
		group.GET("/:id", h.Get)
	}

	// === Admin Routes ===
	admin := group.Group("", adminMiddleware)
	{
		admin.POST("", h.Create)
		admin.PATCH("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
	}
}
