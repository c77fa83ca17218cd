package repo

import (
	"context"

	"classlink/class/repo/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CR 班级代表信息
type CR struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarUrl string `json:"avatar_url"`
}

type ClassRepo interface {
	CreateClass(ctx context.Context, class *model.Class) error
	GetClassByID(ctx context.Context, classID int64) (*model.Class, error)
	ListClasses(ctx context.Context) ([]*model.Class, error)
	AssignCR(ctx context.Context, classID, userID int64) error
	RemoveCR(ctx context.Context, classID, userID int64) (stillCR bool, err error)
	GetCRs(ctx context.Context, classID int64) ([]*CR, error)
	GetAllCRs(ctx context.Context, classIDs []int64) ([]*CR, error)
}

type classRepo struct {
	db *gorm.DB
}

func NewClassRepo(db *gorm.DB) ClassRepo {
	return &classRepo{db: db}
}

func (r *classRepo) CreateClass(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetClassByID(ctx context.Context, classID int64) (*model.Class, error) {
	var class model.Class
	if err := r.db.WithContext(ctx).Where("id = ?", classID).First(&class).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) ListClasses(ctx context.Context) ([]*model.Class, error) {
	var classes []*model.Class
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

// 重复指派时只刷新时间，不报错
func (r *classRepo) AssignCR(ctx context.Context, classID, userID int64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"assigned_at"}),
	}).Create(&model.ClassCR{
		ClassID: classID,
		UserID:  userID,
	}).Error
}

// RemoveCR 解除指派，返回该用户是否仍是其他班级的代表
func (r *classRepo) RemoveCR(ctx context.Context, classID, userID int64) (bool, error) {
	if err := r.db.WithContext(ctx).
		Where("class_id = ? AND user_id = ?", classID, userID).
		Delete(&model.ClassCR{}).Error; err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ClassCR{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *classRepo) GetCRs(ctx context.Context, classID int64) ([]*CR, error) {
	var crs []*CR
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.id, u.name, u.email, u.avatar_url
		FROM users u
		JOIN class_crs ccm ON u.id = ccm.user_id
		WHERE ccm.class_id = ?
	`, classID).Scan(&crs).Error
	if err != nil {
		return nil, err
	}
	return crs, nil
}

// GetAllCRs 汇总多个班级的代表，同一用户跨班级只出现一次
func (r *classRepo) GetAllCRs(ctx context.Context, classIDs []int64) ([]*CR, error) {
	if len(classIDs) == 0 {
		return []*CR{}, nil
	}
	var crs []*CR
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT u.id, u.name, u.email, u.avatar_url
		FROM users u
		JOIN class_crs ccm ON u.id = ccm.user_id
		WHERE ccm.class_id IN ?
	`, classIDs).Scan(&crs).Error
	if err != nil {
		return nil, err
	}
	return crs, nil
}
