package service

import (
	"context"
	"errors"
	"testing"

	"classlink/user/repo"
	"classlink/user/repo/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users    map[string]*model.User // email -> user
	nextID   int64
	emailErr error // GetUserIDByEmail 注入的存储错误
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	f.nextID++
	user.ID = f.nextID
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetUserIDByEmail(_ context.Context, email string) (int64, error) {
	if f.emailErr != nil {
		return 0, f.emailErr
	}
	if user, ok := f.users[email]; ok {
		return user.ID, nil
	}
	return 0, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserInfos(_ context.Context, userIDs []int64) ([]repo.User, error) {
	var out []repo.User
	for _, id := range userIDs {
		for _, u := range f.users {
			if u.ID == id {
				out = append(out, repo.User{ID: u.ID, Name: u.Name, Email: u.Email})
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetPasswordHash(context.Context, string) (string, error) { panic("unused") }
func (f *fakeUserRepo) GetUserInfo(context.Context, int64) (*repo.User, error)  { panic("unused") }
func (f *fakeUserRepo) ListUsers(context.Context, int64) ([]repo.User, error)   { panic("unused") }
func (f *fakeUserRepo) SetOnlineStatus(context.Context, int64, bool) error      { panic("unused") }
func (f *fakeUserRepo) UpdateLoginTime(context.Context, int64) error            { panic("unused") }
func (f *fakeUserRepo) SetCRFlag(context.Context, int64, bool) error            { panic("unused") }

type fakeUserRedis struct {
	sessions map[int64]*repo.UserSession
	online   []int64
}

func newFakeUserRedis() *fakeUserRedis {
	return &fakeUserRedis{sessions: make(map[int64]*repo.UserSession)}
}

func (f *fakeUserRedis) SetSession(_ context.Context, s *repo.UserSession) error {
	f.sessions[s.UserID] = s
	return nil
}

func (f *fakeUserRedis) GetSession(_ context.Context, userID int64) (*repo.UserSession, error) {
	if s, ok := f.sessions[userID]; ok {
		return s, nil
	}
	return nil, errors.New("session not found")
}

func (f *fakeUserRedis) DelSession(_ context.Context, userID int64) error {
	delete(f.sessions, userID)
	return nil
}

func (f *fakeUserRedis) ListOnline(context.Context) ([]int64, error) { return f.online, nil }
func (f *fakeUserRedis) AddOnline(context.Context, int64) error      { panic("unused") }
func (f *fakeUserRedis) RemoveOnline(context.Context, int64) error   { panic("unused") }

func TestRegisterDefaultsToStudent(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, newFakeUserRedis(), "secret")

	err := svc.Register(context.Background(), "ann", "ann@example.com", "pw", "")
	require.NoError(t, err)

	created := users.users["ann@example.com"]
	require.NotNil(t, created)
	assert.Equal(t, model.RoleStudent, created.Role)
	assert.NotEqual(t, "pw", created.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, newFakeUserRedis(), "secret")

	require.NoError(t, svc.Register(context.Background(), "ann", "ann@example.com", "pw", ""))
	err := svc.Register(context.Background(), "ann2", "ann@example.com", "pw", "")
	assert.EqualError(t, err, "email already registered")
}

// 邮箱查重时的存储故障必须上抛，不能被当成「邮箱未注册」
func TestRegisterSurfacesLookupError(t *testing.T) {
	users := newFakeUserRepo()
	users.emailErr = errors.New("connection refused")
	svc := NewUserService(users, newFakeUserRedis(), "secret")

	err := svc.Register(context.Background(), "ann", "ann@example.com", "pw", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "fail to check email")
	assert.Empty(t, users.users)
}

func TestListOnlineUsers(t *testing.T) {
	users := newFakeUserRepo()
	redis := newFakeUserRedis()
	svc := NewUserService(users, redis, "secret")

	require.NoError(t, svc.Register(context.Background(), "ann", "ann@example.com", "pw", ""))
	require.NoError(t, svc.Register(context.Background(), "bob", "bob@example.com", "pw", ""))
	redis.online = []int64{users.users["bob@example.com"].ID}

	online, err := svc.ListOnlineUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, online, 1)
	assert.Equal(t, "bob", online[0].Name)
}

func TestLogoutDeletesSession(t *testing.T) {
	redis := newFakeUserRedis()
	redis.sessions[1] = &repo.UserSession{UserID: 1}
	svc := NewUserService(newFakeUserRepo(), redis, "secret")

	require.NoError(t, svc.Logout(context.Background(), 1))
	_, err := redis.GetSession(context.Background(), 1)
	assert.Error(t, err)
}
