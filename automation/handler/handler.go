package handler

import (
	"errors"
	"net/http"
	"strconv"

	"classlink/auth"
	"classlink/automation/service"

	"github.com/gin-gonic/gin"
)

type AutomationHandler struct {
	service *service.AutomationService
}

func NewAutomationHandler(s *service.AutomationService) *AutomationHandler {
	return &AutomationHandler{service: s}
}

// RequestAutomation 教师提交自动转发申请，等待管理员审批
func (h *AutomationHandler) RequestAutomation(c *gin.Context) {
	var input struct {
		TargetClasses []int64 `json:"target_classes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	automationID, err := h.service.RequestAutomation(c.Request.Context(), auth.UserID(c), input.TargetClasses)
	if err != nil {
		if errors.Is(err, service.ErrTargetClassesRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "target classes are required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":         0,
		"message":      "automation request submitted, waiting for admin approval",
		"automationId": automationID,
	})
}

func (h *AutomationHandler) GetPendingRequests(c *gin.Context) {
	requests, err := h.service.GetPendingApprovals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "list pending ok", "detail": requests})
}

func (h *AutomationHandler) ApproveAutomation(c *gin.Context) {
	automationID, err := strconv.ParseInt(c.Param("automationId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid automation id"})
		return
	}
	if err := h.service.Approve(c.Request.Context(), automationID, auth.UserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "automation approved"})
}

func (h *AutomationHandler) GetMyConfig(c *gin.Context) {
	cfg, err := h.service.GetTeacherConfig(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "get config ok", "detail": cfg})
}

func (h *AutomationHandler) GetKeywords(c *gin.Context) {
	keywords, err := h.service.GetKeywords(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "get keywords ok", "detail": keywords})
}

func (h *AutomationHandler) AddKeyword(c *gin.Context) {
	var input struct {
		Keyword string `json:"keyword"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	if err := h.service.AddKeyword(c.Request.Context(), input.Keyword); err != nil {
		if errors.Is(err, service.ErrKeywordRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "keyword is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "keyword added"})
}
