package service

import (
	"context"
	"testing"

	"classlink/group/repo"
	"classlink/group/repo/model"
	userrepo "classlink/user/repo"
	usermodel "classlink/user/repo/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGroupRepo struct {
	members map[uuid.UUID][]int64
}

func (f *fakeGroupRepo) GetGroupMembers(_ context.Context, groupID uuid.UUID) ([]int64, error) {
	return f.members[groupID], nil
}

func (f *fakeGroupRepo) IsMember(_ context.Context, groupID uuid.UUID, userID int64) (bool, error) {
	for _, id := range f.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGroupRepo) CreateGroup(context.Context, int64, []int64, string) (uuid.UUID, error) {
	panic("unused")
}
func (f *fakeGroupRepo) AddGroupMember(context.Context, uuid.UUID, []int64) error { panic("unused") }
func (f *fakeGroupRepo) GetUserGroups(context.Context, int64) ([]*model.Group, error) {
	panic("unused")
}

type fakeUsers struct {
	profiles map[int64]userrepo.User
}

func (f *fakeUsers) GetUserInfos(_ context.Context, userIDs []int64) ([]userrepo.User, error) {
	var out []userrepo.User
	for _, id := range userIDs {
		if u, ok := f.profiles[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) CreateUser(context.Context, *usermodel.User) error { panic("unused") }
func (f *fakeUsers) GetPasswordHash(context.Context, string) (string, error) {
	panic("unused")
}
func (f *fakeUsers) GetUserIDByEmail(context.Context, string) (int64, error) { panic("unused") }
func (f *fakeUsers) GetUserInfo(context.Context, int64) (*userrepo.User, error) {
	panic("unused")
}
func (f *fakeUsers) ListUsers(context.Context, int64) ([]userrepo.User, error) { panic("unused") }
func (f *fakeUsers) SetOnlineStatus(context.Context, int64, bool) error        { panic("unused") }
func (f *fakeUsers) UpdateLoginTime(context.Context, int64) error              { panic("unused") }
func (f *fakeUsers) SetCRFlag(context.Context, int64, bool) error              { panic("unused") }

func TestGetGroupMembersRequiresMembership(t *testing.T) {
	groupID := uuid.New()
	groups := &fakeGroupRepo{members: map[uuid.UUID][]int64{
		groupID: {1, 2},
	}}
	users := &fakeUsers{profiles: map[int64]userrepo.User{
		1: {ID: 1, Name: "ann"},
		2: {ID: 2, Name: "bob"},
	}}
	svc := NewGroupService(groups, users)

	_, err := svc.GetGroupMembers(context.Background(), groupID, 3)
	assert.ErrorIs(t, err, repo.ErrNotMember)

	members, err := svc.GetGroupMembers(context.Background(), groupID, 1)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "ann", members[0].Name)
	assert.Equal(t, "bob", members[1].Name)
}
