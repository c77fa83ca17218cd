package service

import (
	"context"
	"fmt"

	"classlink/group/repo"
	"classlink/group/repo/model"
	userrepo "classlink/user/repo"

	"github.com/google/uuid"
)

type GroupService struct {
	repo  repo.GroupRepo
	users userrepo.UserRepo
}

func NewGroupService(r repo.GroupRepo, users userrepo.UserRepo) *GroupService {
	return &GroupService{
		repo:  r,
		users: users,
	}
}

func (s *GroupService) CreateGroup(ctx context.Context, ownerID int64, userIDs []int64, groupName string) (uuid.UUID, error) {
	groupID, err := s.repo.CreateGroup(ctx, ownerID, userIDs, groupName)
	if err != nil {
		return uuid.Nil, fmt.Errorf("fail to create group: %w", err)
	}
	return groupID, nil
}

func (s *GroupService) AddGroupMember(ctx context.Context, groupID uuid.UUID, userIDs []int64) error {
	if err := s.repo.AddGroupMember(ctx, groupID, userIDs); err != nil {
		return fmt.Errorf("fail to add group member: %w", err)
	}
	return nil
}

func (s *GroupService) GetUserGroups(ctx context.Context, userID int64) ([]*model.Group, error) {
	groups, err := s.repo.GetUserGroups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fail to get groups: %w", err)
	}
	return groups, nil
}

// GetGroupMembers 返回成员资料，仅群成员可见
func (s *GroupService) GetGroupMembers(ctx context.Context, groupID uuid.UUID, callerID int64) ([]userrepo.User, error) {
	ok, err := s.IsMember(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repo.ErrNotMember
	}
	userIDs, err := s.repo.GetGroupMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("fail to get group members: %w", err)
	}
	users, err := s.users.GetUserInfos(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("fail to get member infos: %w", err)
	}
	return users, nil
}

func (s *GroupService) IsMember(ctx context.Context, groupID uuid.UUID, userID int64) (bool, error) {
	ok, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("fail to check membership: %w", err)
	}
	return ok, nil
}
