package router

import (
	"classlink/auth"
	"classlink/automation/handler"

	"github.com/gin-gonic/gin"
)

func SetAutomationRouter(r *gin.Engine, h *handler.AutomationHandler, secret string, sessions auth.SessionChecker) {
	g := r.Group("/api/automation", auth.Middleware(secret, sessions))
	g.POST("/request", auth.RequireRole("teacher"), h.RequestAutomation)
	g.GET("/pending", auth.RequireRole("admin"), h.GetPendingRequests)
	g.PUT("/:automationId/approve", auth.RequireRole("admin"), h.ApproveAutomation)
	g.GET("/config", auth.RequireRole("teacher"), h.GetMyConfig)
	g.GET("/keywords", h.GetKeywords)
	g.POST("/keywords", auth.RequireRole("admin"), h.AddKeyword)
}
