package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("/history", h.History)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PATCH("/:id", h.Update)
	}

	// === Admin Routes ===
	admin := group.Group("", adminMiddleware)
	{
		admin.GET("", h.List)
		admin.PUT("/:id/status", h.Decide)
		admin.DELETE("/:id", h.Delete)
	}

	g.GET("/rooms/:id/schedule", authMiddleware, h.Schedule)
}
