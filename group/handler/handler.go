package handler

import (
	"errors"
	"net/http"

	"classlink/auth"
	"classlink/group/repo"
	"classlink/group/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GroupHandler struct {
	service *service.GroupService
}

func NewGroupHandler(s *service.GroupService) *GroupHandler {
	return &GroupHandler{service: s}
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var input struct {
		GroupName string  `json:"group_name" binding:"required"`
		UserIDs   []int64 `json:"user_ids"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	groupID, err := h.service.CreateGroup(c.Request.Context(), auth.UserID(c), input.UserIDs, input.GroupName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": 0, "message": "create group ok", "groupId": groupID})
}

func (h *GroupHandler) AddGroupMember(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("groupId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid group id"})
		return
	}
	var input struct {
		UserIDs []int64 `json:"user_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	if err := h.service.AddGroupMember(c.Request.Context(), groupID, input.UserIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "add member ok"})
}

func (h *GroupHandler) GetGroupMembers(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("groupId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid group id"})
		return
	}
	members, err := h.service.GetGroupMembers(c.Request.Context(), groupID, auth.UserID(c))
	if err != nil {
		if errors.Is(err, repo.ErrNotMember) {
			c.JSON(http.StatusForbidden, gin.H{"code": 1, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "get members ok", "detail": members})
}

func (h *GroupHandler) GetMyGroups(c *gin.Context) {
	groups, err := h.service.GetUserGroups(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "get groups ok", "detail": groups})
}
