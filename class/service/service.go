package service

import (
	"context"
	"fmt"

	"classlink/class/repo"
	"classlink/class/repo/model"
	userrepo "classlink/user/repo"
)

type ClassService struct {
	repo  repo.ClassRepo
	users userrepo.UserRepo
}

func NewClassService(r repo.ClassRepo, u userrepo.UserRepo) *ClassService {
	return &ClassService{
		repo:  r,
		users: u,
	}
}

func (s *ClassService) CreateClass(ctx context.Context, name, description string, createdBy int64) (int64, error) {
	class := &model.Class{
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
	}
	if err := s.repo.CreateClass(ctx, class); err != nil {
		return 0, fmt.Errorf("fail to create class: %w", err)
	}
	return class.ID, nil
}

func (s *ClassService) ListClasses(ctx context.Context) ([]*model.Class, error) {
	classes, err := s.repo.ListClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail to list classes: %w", err)
	}
	return classes, nil
}

func (s *ClassService) AssignCR(ctx context.Context, classID, userID int64) error {
	if err := s.repo.AssignCR(ctx, classID, userID); err != nil {
		return fmt.Errorf("fail to assign CR: %w", err)
	}
	if err := s.users.SetCRFlag(ctx, userID, true); err != nil {
		return fmt.Errorf("fail to set CR flag: %w", err)
	}
	return nil
}

// RemoveCR 解除指派；该用户不再担任任何班级代表时清掉 is_cr 标志
func (s *ClassService) RemoveCR(ctx context.Context, classID, userID int64) error {
	stillCR, err := s.repo.RemoveCR(ctx, classID, userID)
	if err != nil {
		return fmt.Errorf("fail to remove CR: %w", err)
	}
	if !stillCR {
		if err := s.users.SetCRFlag(ctx, userID, false); err != nil {
			return fmt.Errorf("fail to clear CR flag: %w", err)
		}
	}
	return nil
}

func (s *ClassService) GetCRs(ctx context.Context, classID int64) ([]*repo.CR, error) {
	crs, err := s.repo.GetCRs(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("fail to get CRs: %w", err)
	}
	return crs, nil
}
