package realtime

import (
	"context"
	"encoding/json"
	"testing"

	chatrepo "classlink/chat/repo"
	chatmodel "classlink/chat/repo/model"
	userrepo "classlink/user/repo"
	usermodel "classlink/user/repo/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	online map[int64]bool
}

func (f *fakeUserRepo) SetOnlineStatus(_ context.Context, userID int64, online bool) error {
	f.online[userID] = online
	return nil
}
func (f *fakeUserRepo) CreateUser(context.Context, *usermodel.User) error         { panic("unused") }
func (f *fakeUserRepo) GetPasswordHash(context.Context, string) (string, error)   { panic("unused") }
func (f *fakeUserRepo) GetUserIDByEmail(context.Context, string) (int64, error)   { panic("unused") }
func (f *fakeUserRepo) GetUserInfo(context.Context, int64) (*userrepo.User, error) {
	panic("unused")
}
func (f *fakeUserRepo) GetUserInfos(context.Context, []int64) ([]userrepo.User, error) {
	panic("unused")
}
func (f *fakeUserRepo) ListUsers(context.Context, int64) ([]userrepo.User, error) { panic("unused") }
func (f *fakeUserRepo) UpdateLoginTime(context.Context, int64) error              { panic("unused") }
func (f *fakeUserRepo) SetCRFlag(context.Context, int64, bool) error              { panic("unused") }

type fakePresence struct {
	online map[int64]bool
}

func (f *fakePresence) AddOnline(_ context.Context, userID int64) error {
	f.online[userID] = true
	return nil
}
func (f *fakePresence) RemoveOnline(_ context.Context, userID int64) error {
	delete(f.online, userID)
	return nil
}
func (f *fakePresence) ListOnline(context.Context) ([]int64, error) { panic("unused") }
func (f *fakePresence) SetSession(context.Context, *userrepo.UserSession) error {
	panic("unused")
}
func (f *fakePresence) GetSession(context.Context, int64) (*userrepo.UserSession, error) {
	panic("unused")
}
func (f *fakePresence) DelSession(context.Context, int64) error { panic("unused") }

type fakeStatusStore struct {
	statuses map[[2]int64]string
}

func (f *fakeStatusStore) SetMessageStatus(_ context.Context, messageID, userID int64, status string) error {
	f.statuses[[2]int64{messageID, userID}] = status
	return nil
}
func (f *fakeStatusStore) GetOrCreateChat(context.Context, int64, int64) (*chatmodel.Chat, error) {
	panic("unused")
}
func (f *fakeStatusStore) GetChatByID(context.Context, int64) (*chatmodel.Chat, error) {
	panic("unused")
}
func (f *fakeStatusStore) GetUserChats(context.Context, int64) ([]*chatrepo.ChatWithPeer, error) {
	panic("unused")
}
func (f *fakeStatusStore) CreateMessage(context.Context, *chatmodel.Message) error { panic("unused") }
func (f *fakeStatusStore) GetMessageByID(context.Context, int64) (*chatmodel.Message, error) {
	panic("unused")
}
func (f *fakeStatusStore) GetChatMessages(context.Context, int64, int, int) ([]*chatmodel.Message, error) {
	panic("unused")
}
func (f *fakeStatusStore) GetGroupMessages(context.Context, uuid.UUID, int, int) ([]*chatmodel.Message, error) {
	panic("unused")
}

func newTestHub() (*Hub, *fakeUserRepo, *fakeStatusStore) {
	users := &fakeUserRepo{online: make(map[int64]bool)}
	statuses := &fakeStatusStore{statuses: make(map[[2]int64]string)}
	hub := NewHub(users, &fakePresence{online: make(map[int64]bool)}, statuses, zap.NewNop())
	return hub, users, statuses
}

func newTestClient(userID int64) *Client {
	return &Client{UserID: userID, send: make(chan Event, 16)}
}

// recv 非阻塞取一条事件；没有就失败
func recv(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.send:
		return ev
	default:
		t.Fatal("expected an event, got none")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.send:
		t.Fatalf("unexpected event %q", ev.Name)
	default:
	}
}

func TestRegisterBroadcastsPresence(t *testing.T) {
	hub, users, _ := newTestHub()
	ctx := context.Background()

	a := newTestClient(1)
	hub.Register(ctx, a)
	assert.True(t, users.online[1])
	// 自己的上线事件不会回显给自己
	assertNoEvent(t, a)

	b := newTestClient(2)
	hub.Register(ctx, b)

	ev := recv(t, a)
	assert.Equal(t, "user_online", ev.Name)
	assertNoEvent(t, b)

	hub.Unregister(ctx, b)
	assert.False(t, users.online[2])
	ev = recv(t, a)
	assert.Equal(t, "user_offline", ev.Name)
}

func TestTypingExcludesSender(t *testing.T) {
	hub, _, _ := newTestHub()
	ctx := context.Background()

	a := newTestClient(1)
	b := newTestClient(2)
	hub.Register(ctx, a)
	hub.Register(ctx, b)
	drain(a)
	drain(b)

	hub.HandleEvent(ctx, a, "join_chat", json.RawMessage(`5`))
	hub.HandleEvent(ctx, b, "join_chat", json.RawMessage(`5`))

	hub.HandleEvent(ctx, a, "typing", json.RawMessage(`{"chatId":5,"isTyping":true}`))

	ev := recv(t, b)
	assert.Equal(t, "user_typing", ev.Name)
	data := ev.Data.(map[string]interface{})
	assert.Equal(t, int64(1), data["userId"])
	assert.Equal(t, true, data["isTyping"])
	assertNoEvent(t, a)
}

func TestLeaveChatStopsDelivery(t *testing.T) {
	hub, _, _ := newTestHub()
	ctx := context.Background()

	a := newTestClient(1)
	b := newTestClient(2)
	hub.Register(ctx, a)
	hub.Register(ctx, b)
	drain(a)
	drain(b)

	hub.HandleEvent(ctx, a, "join_chat", json.RawMessage(`5`))
	hub.HandleEvent(ctx, b, "join_chat", json.RawMessage(`5`))
	hub.HandleEvent(ctx, b, "leave_chat", json.RawMessage(`5`))

	hub.HandleEvent(ctx, a, "typing", json.RawMessage(`{"chatId":5,"isTyping":true}`))
	assertNoEvent(t, b)
}

func TestSendMessageRelaysVerbatim(t *testing.T) {
	hub, _, _ := newTestHub()
	ctx := context.Background()

	a := newTestClient(1)
	b := newTestClient(2)
	hub.Register(ctx, a)
	hub.Register(ctx, b)
	drain(a)
	drain(b)

	hub.HandleEvent(ctx, a, "join_chat", json.RawMessage(`5`))
	hub.HandleEvent(ctx, b, "join_chat", json.RawMessage(`5`))

	payload := json.RawMessage(`{"chatId":5,"message":{"id":42,"content":"hi"}}`)
	hub.HandleEvent(ctx, a, "send_message", payload)

	ev := recv(t, b)
	assert.Equal(t, "message_received", ev.Name)
	raw, ok := ev.Data.(json.RawMessage)
	require.True(t, ok)
	// 消息 id 必须原样透传，客户端靠它去重
	assert.JSONEq(t, `{"id":42,"content":"hi"}`, string(raw))
}

func TestMessageReadPersistsAndNotifies(t *testing.T) {
	hub, _, statuses := newTestHub()
	ctx := context.Background()

	a := newTestClient(1)
	b := newTestClient(2)
	hub.Register(ctx, a)
	hub.Register(ctx, b)
	drain(a)
	drain(b)

	hub.HandleEvent(ctx, a, "join_chat", json.RawMessage(`5`))
	hub.HandleEvent(ctx, b, "join_chat", json.RawMessage(`5`))

	hub.HandleEvent(ctx, b, "message_read", json.RawMessage(`{"messageId":42,"chatId":5}`))

	assert.Equal(t, "read", statuses.statuses[[2]int64{42, 2}])
	ev := recv(t, a)
	assert.Equal(t, "message_status_updated", ev.Name)
	data := ev.Data.(map[string]interface{})
	assert.Equal(t, int64(42), data["messageId"])
	assert.Equal(t, int64(2), data["userId"])
	assert.Equal(t, "read", data["status"])
	// 发回执的一方不会收到通知
	assertNoEvent(t, b)
}

func TestGroupRooms(t *testing.T) {
	hub, _, _ := newTestHub()
	ctx := context.Background()

	a := newTestClient(1)
	b := newTestClient(2)
	hub.Register(ctx, a)
	hub.Register(ctx, b)
	drain(a)
	drain(b)

	hub.HandleEvent(ctx, a, "join_group", json.RawMessage(`"g-1"`))
	hub.HandleEvent(ctx, b, "join_group", json.RawMessage(`"g-1"`))

	hub.HandleEvent(ctx, a, "send_message", json.RawMessage(`{"groupId":"g-1","message":{"id":7}}`))
	ev := recv(t, b)
	assert.Equal(t, "message_received", ev.Name)
}

func TestBadPayloadIsDropped(t *testing.T) {
	hub, _, statuses := newTestHub()
	ctx := context.Background()

	a := newTestClient(1)
	hub.Register(ctx, a)
	drain(a)

	hub.HandleEvent(ctx, a, "message_read", json.RawMessage(`not json`))
	hub.HandleEvent(ctx, a, "never_heard_of_it", json.RawMessage(`{}`))

	assert.Empty(t, statuses.statuses)
	assertNoEvent(t, a)
}

func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}
