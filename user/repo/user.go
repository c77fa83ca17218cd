package repo

import (
	"context"

	"classlink/user/repo/model"

	"gorm.io/gorm"
)

// User 用于函数返回的用户实体，不要用于数据库操作
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	IsCR      bool       `json:"is_cr"`
	IsOnline  bool       `json:"is_online"`
	AvatarUrl string     `json:"avatar_url"`
	Bio       string     `json:"bio"`
}

type UserRepo interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetPasswordHash(ctx context.Context, email string) (string, error)
	GetUserIDByEmail(ctx context.Context, email string) (int64, error)
	GetUserInfo(ctx context.Context, userID int64) (*User, error)
	GetUserInfos(ctx context.Context, userIDs []int64) ([]User, error)
	ListUsers(ctx context.Context, exceptUserID int64) ([]User, error)
	SetOnlineStatus(ctx context.Context, userID int64, online bool) error
	UpdateLoginTime(ctx context.Context, userID int64) error
	SetCRFlag(ctx context.Context, userID int64, isCR bool) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetPasswordHash(ctx context.Context, email string) (string, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", err
	}
	return user.PasswordHash, nil
}

func (r *userRepo) GetUserIDByEmail(ctx context.Context, email string) (int64, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (r *userRepo) GetUserInfo(ctx context.Context, userID int64) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetUserInfos(ctx context.Context, userIDs []int64) ([]User, error) {
	if len(userIDs) == 0 {
		return []User{}, nil
	}
	var users []User
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) ListUsers(ctx context.Context, exceptUserID int64) ([]User, error) {
	var users []User
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id <> ?", exceptUserID).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) SetOnlineStatus(ctx context.Context, userID int64, online bool) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("is_online", online).Error
}

func (r *userRepo) UpdateLoginTime(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login_at", gorm.Expr("NOW()")).Error
}

func (r *userRepo) SetCRFlag(ctx context.Context, userID int64, isCR bool) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("is_cr", isCR).Error
}
