package storage

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

// 初始化 Redis 客户端
func InitRedis(addr, password string) (*redis.Client, error) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	_, err := RDB.Ping(context.Background()).Result()
	if err != nil {
		return nil, err
	}

	return RDB, nil
}

// 关闭 Redis 客户端连接
func CloseRedis() {
	if RDB != nil {
		err := RDB.Close()
		if err != nil {
			log.Println("fail to close redis:", err)
		}
	}
}
