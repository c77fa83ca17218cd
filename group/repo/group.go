package repo

import (
	"context"
	"errors"
	"fmt"

	"classlink/group/repo/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotMember = errors.New("not a member of this group")

type GroupRepo interface {
	CreateGroup(ctx context.Context, ownerID int64, userIDs []int64, groupName string) (uuid.UUID, error)
	AddGroupMember(ctx context.Context, groupID uuid.UUID, userIDs []int64) error
	GetUserGroups(ctx context.Context, userID int64) ([]*model.Group, error)
	GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]int64, error)
	IsMember(ctx context.Context, groupID uuid.UUID, userID int64) (bool, error)
}

type groupRepo struct {
	db *gorm.DB
}

func NewGroupRepo(db *gorm.DB) GroupRepo {
	return &groupRepo{db: db}
}

func (r *groupRepo) CreateGroup(ctx context.Context, ownerID int64, userIDs []int64, groupName string) (groupID uuid.UUID, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group := model.Group{
			Name:    groupName,
			OwnerID: ownerID,
		}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		groupID = group.ID

		// 插入群主
		ownerMember := model.GroupMember{
			GroupID: group.ID,
			UserID:  ownerID,
			Role:    model.Owner,
			IsOwner: true,
		}
		if err := tx.Create(&ownerMember).Error; err != nil {
			return err
		}

		// 插入其他成员
		var members []model.GroupMember
		for _, id := range userIDs {
			// 跳过群主，避免重复
			if id == ownerID {
				continue
			}
			members = append(members, model.GroupMember{
				GroupID: group.ID,
				UserID:  id,
				Role:    model.Member,
			})
		}
		if len(members) > 0 {
			if err := tx.CreateInBatches(&members, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return
}

func (r *groupRepo) AddGroupMember(ctx context.Context, groupID uuid.UUID, userIDs []int64) error {
	if len(userIDs) == 0 {
		return fmt.Errorf("fail to add group member, num == 0")
	}
	var members []model.GroupMember
	for _, id := range userIDs {
		members = append(members, model.GroupMember{
			GroupID: groupID,
			UserID:  id,
			Role:    model.Member,
		})
	}
	return r.db.WithContext(ctx).CreateInBatches(&members, 100).Error
}

func (r *groupRepo) GetUserGroups(ctx context.Context, userID int64) ([]*model.Group, error) {
	var groups []*model.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepo) GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]int64, error) {
	var userIDs []int64
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (r *groupRepo) IsMember(ctx context.Context, groupID uuid.UUID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
