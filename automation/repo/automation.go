package repo

import (
	"context"
	"errors"

	"classlink/automation/repo/model"

	"gorm.io/gorm"
)

// 待审批配置，附带教师信息
type PendingApproval struct {
	ID           int64  `json:"id"`
	TeacherID    int64  `json:"teacher_id"`
	TeacherName  string `json:"teacher_name"`
	TeacherEmail string `json:"teacher_email"`
	CreatedAt    string `json:"created_at"`
}

type AutomationRepo interface {
	CreateConfig(ctx context.Context, teacherID int64) (int64, error)
	GetTeacherConfig(ctx context.Context, teacherID int64) (*model.AutomationConfig, error)
	Approve(ctx context.Context, automationID, adminID int64) error
	SetActive(ctx context.Context, automationID int64, isActive bool) error
	SetTargetClasses(ctx context.Context, automationID int64, classIDs []int64) error
	GetTargetClasses(ctx context.Context, automationID int64) ([]int64, error)
	GetPendingApprovals(ctx context.Context) ([]*PendingApproval, error)
	GetKeywords(ctx context.Context) ([]string, error)
	AddKeyword(ctx context.Context, keyword string) error
}

type automationRepo struct {
	db *gorm.DB
}

func NewAutomationRepo(db *gorm.DB) AutomationRepo {
	return &automationRepo{db: db}
}

func (r *automationRepo) CreateConfig(ctx context.Context, teacherID int64) (int64, error) {
	cfg := model.AutomationConfig{TeacherID: teacherID}
	if err := r.db.WithContext(ctx).Create(&cfg).Error; err != nil {
		return 0, err
	}
	return cfg.ID, nil
}

// 最新一条配置生效，旧记录只作历史
func (r *automationRepo) GetTeacherConfig(ctx context.Context, teacherID int64) (*model.AutomationConfig, error) {
	var cfg model.AutomationConfig
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC, id DESC").
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *automationRepo) Approve(ctx context.Context, automationID, adminID int64) error {
	return r.db.WithContext(ctx).Model(&model.AutomationConfig{}).
		Where("id = ?", automationID).
		Updates(map[string]interface{}{
			"is_approved": true,
			"approved_by": adminID,
		}).Error
}

func (r *automationRepo) SetActive(ctx context.Context, automationID int64, isActive bool) error {
	return r.db.WithContext(ctx).Model(&model.AutomationConfig{}).
		Where("id = ?", automationID).
		Update("is_active", isActive).Error
}

// 整体替换：先清空旧目标再插入，空列表表示无目标
func (r *automationRepo) SetTargetClasses(ctx context.Context, automationID int64, classIDs []int64) error {
	if err := r.db.WithContext(ctx).
		Where("automation_id = ?", automationID).
		Delete(&model.AutomationTargetClass{}).Error; err != nil {
		return err
	}
	if len(classIDs) == 0 {
		return nil
	}
	targets := make([]model.AutomationTargetClass, 0, len(classIDs))
	for _, classID := range classIDs {
		targets = append(targets, model.AutomationTargetClass{
			AutomationID: automationID,
			ClassID:      classID,
		})
	}
	return r.db.WithContext(ctx).CreateInBatches(&targets, 100).Error
}

func (r *automationRepo) GetTargetClasses(ctx context.Context, automationID int64) ([]int64, error) {
	var classIDs []int64
	err := r.db.WithContext(ctx).Model(&model.AutomationTargetClass{}).
		Where("automation_id = ?", automationID).
		Pluck("class_id", &classIDs).Error
	if err != nil {
		return nil, err
	}
	return classIDs, nil
}

func (r *automationRepo) GetPendingApprovals(ctx context.Context) ([]*PendingApproval, error) {
	var rows []*PendingApproval
	err := r.db.WithContext(ctx).Raw(`
		SELECT ac.id, ac.teacher_id, u.name AS teacher_name, u.email AS teacher_email,
		       ac.created_at::text AS created_at
		FROM automation_configs ac
		JOIN users u ON ac.teacher_id = u.id
		WHERE ac.is_approved = FALSE
		ORDER BY ac.created_at DESC
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *automationRepo) GetKeywords(ctx context.Context) ([]string, error) {
	var keywords []string
	err := r.db.WithContext(ctx).Model(&model.AutomationKeyword{}).
		Where("is_active = ?", true).
		Pluck("keyword", &keywords).Error
	if err != nil {
		return nil, err
	}
	return keywords, nil
}

func (r *automationRepo) AddKeyword(ctx context.Context, keyword string) error {
	return r.db.WithContext(ctx).Create(&model.AutomationKeyword{
		Keyword:  keyword,
		IsActive: true,
	}).Error
}
