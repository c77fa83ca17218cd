package handler

import (
	"errors"
	"net/http"
	"strconv"

	"classlink/auth"
	"classlink/chat/repo"
	"classlink/chat/repo/model"
	"classlink/chat/service"
	grouprepo "classlink/group/repo"
	usermodel "classlink/user/repo/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	service *service.ChatService
}

func NewChatHandler(s *service.ChatService) *ChatHandler {
	return &ChatHandler{service: s}
}

func (h *ChatHandler) CreateOrGetChat(c *gin.Context) {
	var input struct {
		OtherUserID int64 `json:"other_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	chat, err := h.service.GetOrCreateChat(c.Request.Context(), auth.UserID(c), input.OtherUserID)
	if err != nil {
		if errors.Is(err, repo.ErrSamePair) {
			c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "get chat ok", "detail": chat})
}

func (h *ChatHandler) GetUserChats(c *gin.Context) {
	chats, err := h.service.GetUserChats(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "get chats ok", "detail": chats})
}

func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chatId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid chat id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.service.GetChatMessages(c.Request.Context(), auth.UserID(c), chatID, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrNotChatMember) {
			c.JSON(http.StatusForbidden, gin.H{"code": 1, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "load messages ok", "detail": messages})
}

// SendMessage 单聊发送。教师的 start/stop 文本会转给自动化命令处理，
// 其余内容正常落库，转发结果随响应一起返回。
func (h *ChatHandler) SendMessage(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chatId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid chat id"})
		return
	}
	var input struct {
		Content     string `json:"content"`
		MessageType string `json:"message_type"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	role := usermodel.Role(c.GetString("role"))
	result, err := h.service.SendChatMessage(c.Request.Context(), auth.UserID(c), role, chatID,
		input.Content, model.MessageType(input.MessageType))
	if err != nil {
		if errors.Is(err, service.ErrEmptyContent) {
			c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	if result.Command != nil {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "command processed", "automation": result.Command})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":       0,
		"message":    "send message ok",
		"detail":     result.Message,
		"automation": result.Automation,
	})
}

func (h *ChatHandler) SendGroupMessage(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("groupId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid group id"})
		return
	}
	var input struct {
		Content     string `json:"content"`
		MessageType string `json:"message_type"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	msg, err := h.service.SendGroupMessage(c.Request.Context(), auth.UserID(c), groupID,
		input.Content, model.MessageType(input.MessageType))
	if err != nil {
		if errors.Is(err, service.ErrEmptyContent) {
			c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
			return
		}
		if errors.Is(err, grouprepo.ErrNotMember) {
			c.JSON(http.StatusForbidden, gin.H{"code": 1, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "send message ok", "detail": msg})
}

func (h *ChatHandler) GetGroupMessages(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("groupId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid group id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.service.GetGroupMessages(c.Request.Context(), auth.UserID(c), groupID, limit, offset)
	if err != nil {
		if errors.Is(err, grouprepo.ErrNotMember) {
			c.JSON(http.StatusForbidden, gin.H{"code": 1, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "load messages ok", "detail": messages})
}

func (h *ChatHandler) MarkAsRead(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid message id"})
		return
	}
	if err := h.service.MarkAsRead(c.Request.Context(), messageID, auth.UserID(c)); err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 1, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "mark as read ok"})
}
