package model

import "time"

type Class struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   int64     `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// 班级与班级代表的映射
type ClassCR struct {
	ClassID    int64     `gorm:"primaryKey" json:"class_id"`
	UserID     int64     `gorm:"primaryKey;index" json:"user_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`
}
