package storage

import (
	"log"

	automodel "classlink/automation/repo/model"
	chatmodel "classlink/chat/repo/model"
	classmodel "classlink/class/repo/model"
	groupmodel "classlink/group/repo/model"
	usermodel "classlink/user/repo/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB 初始化数据库连接
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true, // 唯一键冲突翻译成 gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}
	DB = db

	// 自动迁移
	autoMigrate()

	return DB, nil
}

// autoMigrate 自动迁移所有模型
func autoMigrate() {
	err := DB.AutoMigrate(
		&usermodel.User{},
		&classmodel.Class{},
		&classmodel.ClassCR{},
		&groupmodel.Group{},
		&groupmodel.GroupMember{},
		&chatmodel.Chat{},
		&chatmodel.Message{},
		&chatmodel.MessageStatus{},
		&automodel.AutomationConfig{},
		&automodel.AutomationTargetClass{},
		&automodel.AutomationKeyword{},
	)
	if err != nil {
		log.Fatal("fail to migrate database:", err)
	}
}

// CloseDB 关闭数据库连接
func CloseDB() {
	sqlDB, err := DB.DB() // 获取底层的 *sql.DB
	if err != nil {
		log.Println("fail to get sql.DB instance:", err)
		return
	}
	err = sqlDB.Close() // 关闭连接池
	if err != nil {
		log.Println("fail to close database:", err)
	}
}
