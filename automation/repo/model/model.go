package model

import "time"

// 教师自动转发配置，按 teacher 追加历史记录，最新一条生效
type AutomationConfig struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TeacherID  int64     `gorm:"not null;index" json:"teacher_id"`
	IsApproved bool      `gorm:"not null;default:false" json:"is_approved"`
	ApprovedBy *int64    `json:"approved_by,omitempty"`
	IsActive   bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// 配置的目标班级，整体替换，不做增量合并
type AutomationTargetClass struct {
	AutomationID int64 `gorm:"primaryKey" json:"automation_id"`
	ClassID      int64 `gorm:"primaryKey" json:"class_id"`
}

type AutomationKeyword struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Keyword   string    `gorm:"size:100;not null" json:"keyword"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
