package router

import (
	"classlink/auth"
	"classlink/user/handler"

	"github.com/gin-gonic/gin"
)

func SetUserRouter(r *gin.Engine, u *handler.UserHandler, secret string, sessions auth.SessionChecker) {
	r.POST("/api/auth/register", u.Register)
	r.POST("/api/auth/login", u.Login)

	authed := r.Group("/api/users", auth.Middleware(secret, sessions))
	authed.POST("/logout", u.Logout)
	authed.GET("/me", u.Me)
	authed.GET("/online", u.OnlineUsers)
	authed.GET("", u.ListUsers)
}
