package router

import (
	"classlink/auth"
	"classlink/class/handler"

	"github.com/gin-gonic/gin"
)

func SetClassRouter(r *gin.Engine, h *handler.ClassHandler, secret string, sessions auth.SessionChecker) {
	g := r.Group("/api/classes", auth.Middleware(secret, sessions))
	g.POST("", auth.RequireRole("admin"), h.CreateClass)
	g.GET("", h.ListClasses)
	g.POST("/:classId/crs", auth.RequireRole("admin"), h.AssignCR)
	g.DELETE("/:classId/crs/:userId", auth.RequireRole("admin"), h.RemoveCR)
	g.GET("/:classId/crs", h.GetCRs)
}
