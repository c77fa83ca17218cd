package config

import (
	"os"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      int
	DSN       string
	RedisAddr string
	RedisPass string
	JWTSecret string
}

var CorsConfig = cors.Config{
	AllowOrigins:     []string{"http://localhost:3000"}, //跨域
	AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
	AllowHeaders:     []string{"*"},
	ExposeHeaders:    []string{"X-My-Custom-Header"},
	AllowCredentials: true,
}

func Load() *Config {
	// .env 不存在时直接用环境变量
	_ = godotenv.Load()

	return &Config{
		Port:      envInt("BACKEND_PORT", 5000),
		DSN:       envStr("DATABASE_DSN", "user=hassin password=12345678 dbname=classlink sslmode=disable"),
		RedisAddr: envStr("REDIS_ADDR", "localhost:6379"),
		RedisPass: envStr("REDIS_PASSWORD", ""),
		JWTSecret: envStr("JWT_SECRET", "classlink-dev-secret"),
	}
}

// Addr 返回监听地址
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
