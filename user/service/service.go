package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"classlink/user/repo"
	"classlink/user/repo/model"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type UserService struct {
	repo   repo.UserRepo
	redis  repo.UserRedis
	secret string
}

func NewUserService(r repo.UserRepo, u repo.UserRedis, secret string) *UserService {
	return &UserService{
		repo:   r,
		redis:  u,
		secret: secret,
	}
}

func hashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

func GenerateToken(userID int64, role string, secret string) (string, error) {
	claims := jwt.MapClaims{
		"userID": strconv.FormatInt(userID, 10),
		"role":   role,
		"exp":    time.Now().Add(10 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *UserService) Register(ctx context.Context, name, email, password string, role model.Role) error {
	// 检查邮箱是否已注册
	existing, err := s.repo.GetUserIDByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("fail to check email: %w", err)
	}
	if existing != 0 {
		return errors.New("email already registered")
	}
	if role == "" {
		role = model.RoleStudent
	}
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashPassword(password),
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("fail to create user: %w", err)
	}
	return nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, *repo.User, error) {
	hash, err := s.repo.GetPasswordHash(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if hash != hashPassword(password) {
		return "", nil, ErrInvalidCredentials
	}
	userID, err := s.repo.GetUserIDByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("fail to get user: %w", err)
	}
	user, err := s.repo.GetUserInfo(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("fail to get user info: %w", err)
	}

	token, err := GenerateToken(userID, string(user.Role), s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("fail to generate token: %w", err)
	}

	session := &repo.UserSession{
		UserID: userID,
		Role:   string(user.Role),
		Token:  token,
	}
	if err := s.redis.SetSession(ctx, session); err != nil {
		return "", nil, fmt.Errorf("fail to set session: %w", err)
	}
	if err := s.repo.UpdateLoginTime(ctx, userID); err != nil {
		return "", nil, fmt.Errorf("fail to update login time: %w", err)
	}
	return token, user, nil
}

func (s *UserService) Logout(ctx context.Context, userID int64) error {
	if err := s.redis.DelSession(ctx, userID); err != nil {
		return fmt.Errorf("fail to delete session: %w", err)
	}
	return nil
}

func (s *UserService) GetUserInfo(ctx context.Context, userID int64) (*repo.User, error) {
	user, err := s.repo.GetUserInfo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fail to get user info: %w", err)
	}
	return user, nil
}

// ListOnlineUsers redis 在线集合关联用户资料
func (s *UserService) ListOnlineUsers(ctx context.Context) ([]repo.User, error) {
	ids, err := s.redis.ListOnline(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail to list online users: %w", err)
	}
	users, err := s.repo.GetUserInfos(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fail to get user infos: %w", err)
	}
	return users, nil
}

func (s *UserService) ListUsers(ctx context.Context, exceptUserID int64) ([]repo.User, error) {
	users, err := s.repo.ListUsers(ctx, exceptUserID)
	if err != nil {
		return nil, fmt.Errorf("fail to list users: %w", err)
	}
	return users, nil
}
