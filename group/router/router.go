package router

import (
	"classlink/auth"
	"classlink/group/handler"

	"github.com/gin-gonic/gin"
)

func SetGroupRouter(r *gin.Engine, h *handler.GroupHandler, secret string, sessions auth.SessionChecker) {
	g := r.Group("/api/groups", auth.Middleware(secret, sessions))
	g.POST("", h.CreateGroup)
	g.GET("", h.GetMyGroups)
	g.POST("/:groupId/members", h.AddGroupMember)
	g.GET("/:groupId/members", h.GetGroupMembers)
}
