package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const onlineSetKey = "online_users"

type UserSession struct {
	UserID   int64  `json:"user_id"`
	Role     string `json:"role"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type UserRedis interface {
	SetSession(ctx context.Context, session *UserSession) error
	GetSession(ctx context.Context, userID int64) (*UserSession, error)
	DelSession(ctx context.Context, userID int64) error
	AddOnline(ctx context.Context, userID int64) error
	RemoveOnline(ctx context.Context, userID int64) error
	ListOnline(ctx context.Context) ([]int64, error)
}

type userRedis struct {
	rdb *redis.Client
}

func NewUserRedis(rdb *redis.Client) UserRedis {
	return &userRedis{rdb: rdb}
}

func (r *userRedis) SetSession(ctx context.Context, session *UserSession) error {
	key := "session:" + strconv.FormatInt(session.UserID, 10)
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key, data, 10*time.Hour).Err()
}

func (r *userRedis) GetSession(ctx context.Context, userID int64) (*UserSession, error) {
	key := "session:" + strconv.FormatInt(userID, 10)
	res, err := r.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, errors.New("session not found")
	}
	if err != nil {
		return nil, err
	}
	var session UserSession
	if err := json.Unmarshal([]byte(res), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *userRedis) DelSession(ctx context.Context, userID int64) error {
	key := "session:" + strconv.FormatInt(userID, 10)
	return r.rdb.Del(ctx, key).Err()
}

// 在线用户集合，socket 连接/断开时维护
func (r *userRedis) AddOnline(ctx context.Context, userID int64) error {
	return r.rdb.SAdd(ctx, onlineSetKey, userID).Err()
}

func (r *userRedis) RemoveOnline(ctx context.Context, userID int64) error {
	return r.rdb.SRem(ctx, onlineSetKey, userID).Err()
}

func (r *userRedis) ListOnline(ctx context.Context) ([]int64, error) {
	vals, err := r.rdb.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
