package model

import (
	"time"

	"github.com/google/uuid"
)

// 单聊会话，参与者按 canonical 顺序存储：User1ID < User2ID
// UNIQUE(user1_id, user2_id) 保证同一对用户只有一条记录
type Chat struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	User1ID   int64     `gorm:"not null;uniqueIndex:idx_chat_pair,priority:1" json:"user1_id"`
	User2ID   int64     `gorm:"not null;uniqueIndex:idx_chat_pair,priority:2" json:"user2_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
	TypeVideo MessageType = "video"
	TypeFile  MessageType = "file"
)

// 消息属于 chat 或 group 中的一个，二者必居其一
type Message struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID    int64       `gorm:"not null;index" json:"sender_id"`
	ChatID      *int64      `gorm:"index" json:"chat_id,omitempty"`
	GroupID     *uuid.UUID  `gorm:"type:uuid;index" json:"group_id,omitempty"`
	Content     string      `gorm:"type:text;not null" json:"content"`
	MessageType MessageType `gorm:"size:20;not null;default:'text'" json:"message_type"`
	IsAutomated bool        `gorm:"not null;default:false" json:"is_automated"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

// 每条消息针对每个用户的读状态
type MessageStatus struct {
	MessageID int64     `gorm:"primaryKey" json:"message_id"`
	UserID    int64     `gorm:"primaryKey;index" json:"user_id"`
	Status    string    `gorm:"size:20;not null" json:"status"` // delivered / read
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
