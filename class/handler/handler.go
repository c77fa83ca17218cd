package handler

import (
	"net/http"
	"strconv"

	"classlink/auth"
	"classlink/class/service"

	"github.com/gin-gonic/gin"
)

type ClassHandler struct {
	service *service.ClassService
}

func NewClassHandler(s *service.ClassService) *ClassHandler {
	return &ClassHandler{service: s}
}

func (h *ClassHandler) CreateClass(c *gin.Context) {
	var input struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	classID, err := h.service.CreateClass(c.Request.Context(), input.Name, input.Description, auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": 0, "message": "create class ok", "classId": classID})
}

func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.service.ListClasses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "list classes ok", "detail": classes})
}

func (h *ClassHandler) AssignCR(c *gin.Context) {
	classID, err := strconv.ParseInt(c.Param("classId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid class id"})
		return
	}
	var input struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	if err := h.service.AssignCR(c.Request.Context(), classID, input.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "assign CR ok"})
}

func (h *ClassHandler) RemoveCR(c *gin.Context) {
	classID, err := strconv.ParseInt(c.Param("classId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid class id"})
		return
	}
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid user id"})
		return
	}
	if err := h.service.RemoveCR(c.Request.Context(), classID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "remove CR ok"})
}

func (h *ClassHandler) GetCRs(c *gin.Context) {
	classID, err := strconv.ParseInt(c.Param("classId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": "invalid class id"})
		return
	}
	crs, err := h.service.GetCRs(c.Request.Context(), classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "get CRs ok", "detail": crs})
}
