package handler

import (
	"errors"
	"net/http"

	"classlink/auth"
	"classlink/user/repo/model"
	"classlink/user/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

func (h *UserHandler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	err := h.service.Register(c.Request.Context(), input.Name, input.Email, input.Password, model.Role(input.Role))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": 0, "message": "register ok"})
}

func (h *UserHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "error": err.Error()})
		return
	}
	token, user, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 1, "error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "login ok",
		"token":   token,
		"detail":  user,
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), auth.UserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "logout ok"})
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.GetUserInfo(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "get user ok", "detail": user})
}

func (h *UserHandler) OnlineUsers(c *gin.Context) {
	users, err := h.service.ListOnlineUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "list online users ok", "detail": users})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "list users ok", "detail": users})
}
