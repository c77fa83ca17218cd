package router

import (
	"classlink/auth"
	"classlink/chat/handler"

	"github.com/gin-gonic/gin"
)

func SetChatRouter(r *gin.Engine, h *handler.ChatHandler, secret string, sessions auth.SessionChecker) {
	chats := r.Group("/api/chats", auth.Middleware(secret, sessions))
	chats.POST("", h.CreateOrGetChat)
	chats.GET("", h.GetUserChats)
	chats.GET("/:chatId/messages", h.GetChatMessages)
	chats.POST("/:chatId/messages", h.SendMessage)

	messages := r.Group("/api/messages", auth.Middleware(secret, sessions))
	messages.PUT("/:messageId/read", h.MarkAsRead)

	groups := r.Group("/api/groups", auth.Middleware(secret, sessions))
	groups.GET("/:groupId/messages", h.GetGroupMessages)
	groups.POST("/:groupId/messages", h.SendGroupMessage)
}
