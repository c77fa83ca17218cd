package main

import (
	"log"
	"net/http"

	"classlink/config"
	"classlink/realtime"
	"classlink/storage"

	autohandler "classlink/automation/handler"
	autorepo "classlink/automation/repo"
	autorouter "classlink/automation/router"
	autoservice "classlink/automation/service"
	chathandler "classlink/chat/handler"
	chatrepo "classlink/chat/repo"
	chatrouter "classlink/chat/router"
	chatservice "classlink/chat/service"
	classhandler "classlink/class/handler"
	classrepo "classlink/class/repo"
	classrouter "classlink/class/router"
	classservice "classlink/class/service"
	grouphandler "classlink/group/handler"
	grouprepo "classlink/group/repo"
	grouprouter "classlink/group/router"
	groupservice "classlink/group/service"
	userhandler "classlink/user/handler"
	userrepo "classlink/user/repo"
	userrouter "classlink/user/router"
	userservice "classlink/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	db, err := storage.InitDB(cfg.DSN)
	if err != nil {
		log.Fatalf("fail to initialize database: %v", err)
	}
	defer storage.CloseDB()

	rdb, err := storage.InitRedis(cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		log.Fatalf("fail to initialize redis: %v", err)
	}
	defer storage.CloseRedis()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // flush buffer, 避免丢日志

	r := gin.Default()
	r.Use(cors.New(config.CorsConfig))

	// repos
	users := userrepo.NewUserRepo(db)
	usersRedis := userrepo.NewUserRedis(rdb)
	classes := classrepo.NewClassRepo(db)
	groups := grouprepo.NewGroupRepo(db)
	chats := chatrepo.NewChatRepo(db)
	automations := autorepo.NewAutomationRepo(db)

	// services
	userSvc := userservice.NewUserService(users, usersRedis, cfg.JWTSecret)
	classSvc := classservice.NewClassService(classes, users)
	groupSvc := groupservice.NewGroupService(groups, users)
	autoSvc := autoservice.NewAutomationService(automations, classes, chats, logger)
	chatSvc := chatservice.NewChatService(chats, groupSvc, autoSvc, logger)

	// handlers + routers
	userrouter.SetUserRouter(r, userhandler.NewUserHandler(userSvc), cfg.JWTSecret, usersRedis)
	classrouter.SetClassRouter(r, classhandler.NewClassHandler(classSvc), cfg.JWTSecret, usersRedis)
	grouprouter.SetGroupRouter(r, grouphandler.NewGroupHandler(groupSvc), cfg.JWTSecret, usersRedis)
	chatrouter.SetChatRouter(r, chathandler.NewChatHandler(chatSvc), cfg.JWTSecret, usersRedis)
	autorouter.SetAutomationRouter(r, autohandler.NewAutomationHandler(autoSvc), cfg.JWTSecret, usersRedis)

	// realtime hub
	hub := realtime.NewHub(users, usersRedis, chats, logger)
	r.GET("/ws", realtime.ServeWS(hub, cfg.JWTSecret))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	log.Printf("classlink server started at http://localhost:%d", cfg.Port)
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("fail to start server: %v", err)
	}
}
