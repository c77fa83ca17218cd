package model

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	OwnerID   int64     `gorm:"not null;index" json:"owner_id"`
	Avatar    string    `gorm:"type:varchar(255)" json:"avatar"` //url
	Notice    string    `gorm:"type:text" json:"notice"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// 群成员角色枚举
type GroupRole string

const (
	Member GroupRole = "member"
	Admin  GroupRole = "admin"
	Owner  GroupRole = "owner"
)

type GroupMember struct {
	GroupID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"group_id"` // 复合主键
	UserID   int64     `gorm:"primaryKey;index" json:"user_id"`
	Role     GroupRole `gorm:"size:20;not null;default:'member'" json:"role"`
	JoinTime time.Time `gorm:"autoCreateTime" json:"join_time"`
	IsOwner  bool      `gorm:"not null;default:false" json:"is_owner"`
}
