package service

import (
	"context"
	"errors"
	"fmt"

	autoservice "classlink/automation/service"
	"classlink/chat/repo"
	"classlink/chat/repo/model"
	grouprepo "classlink/group/repo"
	usermodel "classlink/user/repo/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmptyContent    = errors.New("message content is required")
	ErrNotChatMember   = errors.New("not a participant of this chat")
	ErrMessageNotFound = errors.New("message not found")
)

// GroupMembership 群消息收发前的成员资格校验
type GroupMembership interface {
	IsMember(ctx context.Context, groupID uuid.UUID, userID int64) (bool, error)
}

// SendResult 一次发送的结果：命令走命令通道，普通消息落库并附带转发结果
type SendResult struct {
	Command    *autoservice.CommandResult  `json:"command,omitempty"`
	Message    *model.Message              `json:"message,omitempty"`
	Automation *autoservice.RoutingOutcome `json:"automation,omitempty"`
}

type ChatService struct {
	repo       repo.ChatRepo
	groups     GroupMembership
	automation *autoservice.AutomationService
	logger     *zap.Logger
}

func NewChatService(r repo.ChatRepo, groups GroupMembership, a *autoservice.AutomationService, logger *zap.Logger) *ChatService {
	return &ChatService{
		repo:       r,
		groups:     groups,
		automation: a,
		logger:     logger,
	}
}

func (s *ChatService) GetOrCreateChat(ctx context.Context, userID, otherUserID int64) (*model.Chat, error) {
	chat, err := s.repo.GetOrCreateChat(ctx, userID, otherUserID)
	if err != nil {
		if errors.Is(err, repo.ErrSamePair) {
			return nil, err
		}
		return nil, fmt.Errorf("fail to resolve chat: %w", err)
	}
	return chat, nil
}

func (s *ChatService) GetUserChats(ctx context.Context, userID int64) ([]*repo.ChatWithPeer, error) {
	chats, err := s.repo.GetUserChats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fail to get chats: %w", err)
	}
	return chats, nil
}

// GetChatMessages 仅会话双方可读历史
func (s *ChatService) GetChatMessages(ctx context.Context, userID, chatID int64, limit, offset int) ([]*model.Message, error) {
	chat, err := s.repo.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotChatMember
		}
		return nil, fmt.Errorf("fail to get chat: %w", err)
	}
	if chat.User1ID != userID && chat.User2ID != userID {
		return nil, ErrNotChatMember
	}
	messages, err := s.repo.GetChatMessages(ctx, chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fail to load messages: %w", err)
	}
	return messages, nil
}

func (s *ChatService) GetGroupMessages(ctx context.Context, userID int64, groupID uuid.UUID, limit, offset int) ([]*model.Message, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	messages, err := s.repo.GetGroupMessages(ctx, groupID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fail to load group messages: %w", err)
	}
	return messages, nil
}

func (s *ChatService) requireMember(ctx context.Context, groupID uuid.UUID, userID int64) error {
	ok, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("fail to check membership: %w", err)
	}
	if !ok {
		return grouprepo.ErrNotMember
	}
	return nil
}

// SendChatMessage 单聊发送路径。教师发送的 start/stop 走命令处理，
// 不落库；其余内容先落库，教师消息再交给转发路由评估。
// 转发失败不影响原始消息的落库结果。
func (s *ChatService) SendChatMessage(ctx context.Context, senderID int64, role usermodel.Role, chatID int64, content string, messageType model.MessageType) (*SendResult, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	if role == usermodel.RoleTeacher && autoservice.IsCommand(content) {
		result, err := s.automation.HandleCommand(ctx, senderID, content)
		if err != nil {
			return nil, fmt.Errorf("fail to handle command: %w", err)
		}
		return &SendResult{Command: result}, nil
	}

	if messageType == "" {
		messageType = model.TypeText
	}
	msg := &model.Message{
		SenderID:    senderID,
		ChatID:      &chatID,
		Content:     content,
		MessageType: messageType,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("fail to create message: %w", err)
	}

	result := &SendResult{Message: msg}
	if role == usermodel.RoleTeacher {
		outcome, err := s.automation.HandleTeacherMessage(ctx, senderID, content)
		if err != nil {
			// 转发失败不回滚已落库的消息
			s.logger.Warn("automation routing failed",
				zap.Int64("sender_id", senderID),
				zap.Error(err))
		} else {
			result.Automation = outcome
		}
	}
	return result, nil
}

func (s *ChatService) SendGroupMessage(ctx context.Context, senderID int64, groupID uuid.UUID, content string, messageType model.MessageType) (*model.Message, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if err := s.requireMember(ctx, groupID, senderID); err != nil {
		return nil, err
	}
	if messageType == "" {
		messageType = model.TypeText
	}
	msg := &model.Message{
		SenderID:    senderID,
		GroupID:     &groupID,
		Content:     content,
		MessageType: messageType,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("fail to create group message: %w", err)
	}
	return msg, nil
}

func (s *ChatService) MarkAsRead(ctx context.Context, messageID, userID int64) error {
	if _, err := s.repo.GetMessageByID(ctx, messageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("fail to find message: %w", err)
	}
	if err := s.repo.SetMessageStatus(ctx, messageID, userID, "read"); err != nil {
		return fmt.Errorf("fail to mark message as read: %w", err)
	}
	return nil
}
