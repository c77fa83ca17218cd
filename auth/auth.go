package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	userrepo "classlink/user/repo"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// SessionChecker 查询登录态。登出删掉会话后，未过期的 JWT 也随之失效
type SessionChecker interface {
	GetSession(ctx context.Context, userID int64) (*userrepo.UserSession, error)
}

// ParseToken 校验 JWT，返回 (userID, role)
func ParseToken(tokenStr, secret string) (int64, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	idStr, _ := claims["userID"].(string)
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || userID == 0 {
		return 0, "", ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return userID, role, nil
}

// Middleware 从 Authorization 头解出用户身份并核对会话，写入 gin context
func Middleware(secret string, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 1, "error": "authentication required"})
			return
		}
		userID, role, err := ParseToken(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 1, "error": "invalid token"})
			return
		}
		if sessions != nil {
			if _, err := sessions.GetSession(c.Request.Context(), userID); err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 1, "error": "session expired"})
				return
			}
		}
		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}

// RequireRole 角色不符时在写任何状态之前拒绝
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": 1, "error": "access denied"})
	}
}

// UserID 取当前请求用户 id
func UserID(c *gin.Context) int64 {
	return c.GetInt64("userID")
}
