package service

import (
	"context"
	"testing"
	"time"

	autorepo "classlink/automation/repo"
	automodel "classlink/automation/repo/model"
	autoservice "classlink/automation/service"
	"classlink/chat/repo"
	"classlink/chat/repo/model"
	classrepo "classlink/class/repo"
	classmodel "classlink/class/repo/model"
	grouprepo "classlink/group/repo"
	usermodel "classlink/user/repo/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memChatRepo struct {
	chats    map[[2]int64]*model.Chat
	messages []*model.Message
	statuses map[[2]int64]string // (message, user) -> status
	nextID   int64
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{
		chats:    make(map[[2]int64]*model.Chat),
		statuses: make(map[[2]int64]string),
		nextID:   1,
	}
}

func (m *memChatRepo) GetOrCreateChat(_ context.Context, a, b int64) (*model.Chat, error) {
	if a == b {
		return nil, repo.ErrSamePair
	}
	if a > b {
		a, b = b, a
	}
	key := [2]int64{a, b}
	if chat, ok := m.chats[key]; ok {
		return chat, nil
	}
	chat := &model.Chat{ID: m.nextID, User1ID: a, User2ID: b}
	m.nextID++
	m.chats[key] = chat
	return chat, nil
}

func (m *memChatRepo) CreateMessage(_ context.Context, msg *model.Message) error {
	msg.ID = m.nextID
	m.nextID++
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memChatRepo) SetMessageStatus(_ context.Context, messageID, userID int64, status string) error {
	m.statuses[[2]int64{messageID, userID}] = status
	return nil
}

func (m *memChatRepo) GetChatByID(_ context.Context, chatID int64) (*model.Chat, error) {
	for _, chat := range m.chats {
		if chat.ID == chatID {
			return chat, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memChatRepo) GetMessageByID(_ context.Context, messageID int64) (*model.Message, error) {
	for _, msg := range m.messages {
		if msg.ID == messageID {
			return msg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memChatRepo) GetChatMessages(_ context.Context, chatID int64, _, _ int) ([]*model.Message, error) {
	var out []*model.Message
	for _, msg := range m.messages {
		if msg.ChatID != nil && *msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memChatRepo) GetGroupMessages(_ context.Context, groupID uuid.UUID, _, _ int) ([]*model.Message, error) {
	var out []*model.Message
	for _, msg := range m.messages {
		if msg.GroupID != nil && *msg.GroupID == groupID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memChatRepo) GetUserChats(context.Context, int64) ([]*repo.ChatWithPeer, error) {
	panic("unused")
}

// memGroups 固定成员表，allowAll 用于与群无关的用例
type memGroups struct {
	members  map[uuid.UUID]map[int64]bool
	allowAll bool
}

func (m *memGroups) IsMember(_ context.Context, groupID uuid.UUID, userID int64) (bool, error) {
	if m.allowAll {
		return true, nil
	}
	return m.members[groupID][userID], nil
}

type memAutomationRepo struct {
	config   *automodel.AutomationConfig
	targets  []int64
	keywords []string
}

func (m *memAutomationRepo) CreateConfig(context.Context, int64) (int64, error) { panic("unused") }
func (m *memAutomationRepo) GetTeacherConfig(_ context.Context, teacherID int64) (*automodel.AutomationConfig, error) {
	if m.config == nil || m.config.TeacherID != teacherID {
		return nil, nil
	}
	return m.config, nil
}
func (m *memAutomationRepo) Approve(context.Context, int64, int64) error { panic("unused") }
func (m *memAutomationRepo) SetActive(_ context.Context, _ int64, isActive bool) error {
	m.config.IsActive = isActive
	return nil
}
func (m *memAutomationRepo) SetTargetClasses(context.Context, int64, []int64) error {
	panic("unused")
}
func (m *memAutomationRepo) GetTargetClasses(context.Context, int64) ([]int64, error) {
	return m.targets, nil
}
func (m *memAutomationRepo) GetPendingApprovals(context.Context) ([]*autorepo.PendingApproval, error) {
	panic("unused")
}
func (m *memAutomationRepo) GetKeywords(context.Context) ([]string, error) {
	return m.keywords, nil
}
func (m *memAutomationRepo) AddKeyword(context.Context, string) error { panic("unused") }

type memClassRepo struct {
	crs []*classrepo.CR
}

func (m *memClassRepo) CreateClass(context.Context, *classmodel.Class) error { panic("unused") }
func (m *memClassRepo) GetClassByID(context.Context, int64) (*classmodel.Class, error) {
	panic("unused")
}
func (m *memClassRepo) ListClasses(context.Context) ([]*classmodel.Class, error) { panic("unused") }
func (m *memClassRepo) AssignCR(context.Context, int64, int64) error             { panic("unused") }
func (m *memClassRepo) RemoveCR(context.Context, int64, int64) (bool, error)     { panic("unused") }
func (m *memClassRepo) GetCRs(context.Context, int64) ([]*classrepo.CR, error)   { panic("unused") }
func (m *memClassRepo) GetAllCRs(context.Context, []int64) ([]*classrepo.CR, error) {
	return m.crs, nil
}

func newTestChatService(chats *memChatRepo, auto *memAutomationRepo, classes *memClassRepo) *ChatService {
	autoSvc := autoservice.NewAutomationService(auto, classes, chats, zap.NewNop())
	return NewChatService(chats, &memGroups{allowAll: true}, autoSvc, zap.NewNop())
}

func TestTeacherCommandIsNotPersisted(t *testing.T) {
	chats := newMemChatRepo()
	adminID := int64(99)
	auto := &memAutomationRepo{config: &automodel.AutomationConfig{
		ID: 1, TeacherID: 1, IsApproved: true, ApprovedBy: &adminID,
	}}
	svc := newTestChatService(chats, auto, &memClassRepo{})

	result, err := svc.SendChatMessage(context.Background(), 1, usermodel.RoleTeacher, 5, " START ", model.TypeText)
	require.NoError(t, err)

	require.NotNil(t, result.Command)
	assert.True(t, result.Command.OK)
	assert.True(t, result.Command.Active)
	assert.Nil(t, result.Message)
	assert.Empty(t, chats.messages, "commands are routed, never stored")
}

func TestStudentStartIsJustAMessage(t *testing.T) {
	chats := newMemChatRepo()
	svc := newTestChatService(chats, &memAutomationRepo{}, &memClassRepo{})

	result, err := svc.SendChatMessage(context.Background(), 2, usermodel.RoleStudent, 5, "start", model.TypeText)
	require.NoError(t, err)

	assert.Nil(t, result.Command)
	require.NotNil(t, result.Message)
	assert.Equal(t, "start", result.Message.Content)
	require.Len(t, chats.messages, 1)
}

func TestMessagePersistsWhenRoutingDeclines(t *testing.T) {
	chats := newMemChatRepo()
	adminID := int64(99)
	auto := &memAutomationRepo{
		config: &automodel.AutomationConfig{
			ID: 1, TeacherID: 1, IsApproved: true, ApprovedBy: &adminID, IsActive: true,
		},
		keywords: []string{"assignment"},
		targets:  nil, // 未配置目标班级
	}
	svc := newTestChatService(chats, auto, &memClassRepo{})

	result, err := svc.SendChatMessage(context.Background(), 1, usermodel.RoleTeacher, 5, "assignment due friday", model.TypeText)
	require.NoError(t, err)

	require.NotNil(t, result.Message, "original message persisted regardless of routing outcome")
	require.Len(t, chats.messages, 1)
	assert.False(t, chats.messages[0].IsAutomated)
	require.NotNil(t, result.Automation)
	assert.False(t, result.Automation.Automated)
	assert.Equal(t, "No target classes configured", result.Automation.Error)
}

func TestTeacherMessageFansOut(t *testing.T) {
	chats := newMemChatRepo()
	adminID := int64(99)
	auto := &memAutomationRepo{
		config: &automodel.AutomationConfig{
			ID: 1, TeacherID: 1, IsApproved: true, ApprovedBy: &adminID, IsActive: true,
		},
		keywords: []string{"assignment"},
		targets:  []int64{7},
	}
	classes := &memClassRepo{crs: []*classrepo.CR{
		{ID: 101, Name: "cr-a"},
		{ID: 102, Name: "cr-b"},
	}}
	svc := newTestChatService(chats, auto, classes)

	result, err := svc.SendChatMessage(context.Background(), 1, usermodel.RoleTeacher, 5, "Assignment due Friday, please submit", model.TypeText)
	require.NoError(t, err)

	require.NotNil(t, result.Automation)
	assert.True(t, result.Automation.Automated)
	assert.Equal(t, 2, result.Automation.TotalCRs)
	// 原消息 + 两条自动转发
	require.Len(t, chats.messages, 3)
	automated := 0
	for _, msg := range chats.messages {
		if msg.IsAutomated {
			automated++
		}
	}
	assert.Equal(t, 2, automated)
}

func TestSendEmptyContent(t *testing.T) {
	svc := newTestChatService(newMemChatRepo(), &memAutomationRepo{}, &memClassRepo{})
	_, err := svc.SendChatMessage(context.Background(), 1, usermodel.RoleStudent, 5, "", model.TypeText)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestMarkAsRead(t *testing.T) {
	chats := newMemChatRepo()
	svc := newTestChatService(chats, &memAutomationRepo{}, &memClassRepo{})

	chatID := int64(5)
	msg := &model.Message{SenderID: 1, ChatID: &chatID, Content: "hi"}
	require.NoError(t, chats.CreateMessage(context.Background(), msg))

	require.NoError(t, svc.MarkAsRead(context.Background(), msg.ID, 2))
	assert.Equal(t, "read", chats.statuses[[2]int64{msg.ID, 2}])
}

func TestMarkAsReadUnknownMessage(t *testing.T) {
	chats := newMemChatRepo()
	svc := newTestChatService(chats, &memAutomationRepo{}, &memClassRepo{})

	err := svc.MarkAsRead(context.Background(), 404, 2)
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.Empty(t, chats.statuses)
}

// 群消息收发都要求发起者是群成员
func TestGroupMessageRequiresMembership(t *testing.T) {
	chats := newMemChatRepo()
	groupID := uuid.New()
	groups := &memGroups{members: map[uuid.UUID]map[int64]bool{
		groupID: {7: true},
	}}
	autoSvc := autoservice.NewAutomationService(&memAutomationRepo{}, &memClassRepo{}, chats, zap.NewNop())
	svc := NewChatService(chats, groups, autoSvc, zap.NewNop())

	_, err := svc.SendGroupMessage(context.Background(), 8, groupID, "hello", model.TypeText)
	assert.ErrorIs(t, err, grouprepo.ErrNotMember)
	assert.Empty(t, chats.messages)

	msg, err := svc.SendGroupMessage(context.Background(), 7, groupID, "hello", model.TypeText)
	require.NoError(t, err)
	require.NotNil(t, msg)

	_, err = svc.GetGroupMessages(context.Background(), 8, groupID, 50, 0)
	assert.ErrorIs(t, err, grouprepo.ErrNotMember)

	history, err := svc.GetGroupMessages(context.Background(), 7, groupID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

// 单聊历史仅双方可读
func TestChatHistoryRequiresParticipant(t *testing.T) {
	chats := newMemChatRepo()
	svc := newTestChatService(chats, &memAutomationRepo{}, &memClassRepo{})

	chat, err := chats.GetOrCreateChat(context.Background(), 1, 2)
	require.NoError(t, err)
	msg := &model.Message{SenderID: 1, ChatID: &chat.ID, Content: "hi"}
	require.NoError(t, chats.CreateMessage(context.Background(), msg))

	_, err = svc.GetChatMessages(context.Background(), 3, chat.ID, 50, 0)
	assert.ErrorIs(t, err, ErrNotChatMember)

	// 不存在的会话同样拒绝
	_, err = svc.GetChatMessages(context.Background(), 1, 999, 50, 0)
	assert.ErrorIs(t, err, ErrNotChatMember)

	history, err := svc.GetChatMessages(context.Background(), 1, chat.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
