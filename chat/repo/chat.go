package repo

import (
	"context"
	"errors"

	"classlink/chat/repo/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSamePair = errors.New("cannot open a chat with yourself")

// 会话列表条目，附带对端用户信息和最近一条消息
type ChatWithPeer struct {
	ChatID          int64  `json:"chat_id"`
	PeerID          int64  `json:"peer_id"`
	PeerName        string `json:"peer_name"`
	PeerAvatar      string `json:"peer_avatar"`
	PeerOnline      bool   `json:"peer_online"`
	LastMessage     string `json:"last_message"`
	LastMessageTime string `json:"last_message_time"`
}

type ChatRepo interface {
	GetOrCreateChat(ctx context.Context, userA, userB int64) (*model.Chat, error)
	GetChatByID(ctx context.Context, chatID int64) (*model.Chat, error)
	GetUserChats(ctx context.Context, userID int64) ([]*ChatWithPeer, error)
	CreateMessage(ctx context.Context, msg *model.Message) error
	GetMessageByID(ctx context.Context, messageID int64) (*model.Message, error)
	GetChatMessages(ctx context.Context, chatID int64, limit, offset int) ([]*model.Message, error)
	GetGroupMessages(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*model.Message, error)
	SetMessageStatus(ctx context.Context, messageID, userID int64, status string) error
}

// pairStore 是 resolver 底层的读写入口，唯一键冲突由上层统一处理
type pairStore interface {
	findPair(ctx context.Context, smaller, larger int64) (*model.Chat, error)
	insertPair(ctx context.Context, chat *model.Chat) error
}

type chatRepo struct {
	db    *gorm.DB
	pairs pairStore
}

func NewChatRepo(db *gorm.DB) ChatRepo {
	r := &chatRepo{db: db}
	r.pairs = r
	return r
}

// canonicalPair 无序对转成固定顺序，保证同一对用户只映射到一条记录
func canonicalPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

func (r *chatRepo) GetOrCreateChat(ctx context.Context, userA, userB int64) (*model.Chat, error) {
	if userA == userB {
		return nil, ErrSamePair
	}
	smaller, larger := canonicalPair(userA, userB)

	chat, err := r.pairs.findPair(ctx, smaller, larger)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &model.Chat{User1ID: smaller, User2ID: larger}
	err = r.pairs.insertPair(ctx, fresh)
	if err == nil {
		return fresh, nil
	}
	// 并发创建同一对时唯一键冲突，重读胜者写入的记录
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.pairs.findPair(ctx, smaller, larger)
	}
	return nil, err
}

func (r *chatRepo) findPair(ctx context.Context, smaller, larger int64) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", smaller, larger).
		First(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepo) insertPair(ctx context.Context, chat *model.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *chatRepo) GetChatByID(ctx context.Context, chatID int64) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).Where("id = ?", chatID).First(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepo) GetUserChats(ctx context.Context, userID int64) ([]*ChatWithPeer, error) {
	var rows []*ChatWithPeer
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id AS chat_id,
			CASE WHEN c.user1_id = ? THEN c.user2_id ELSE c.user1_id END AS peer_id,
			u.name AS peer_name,
			u.avatar_url AS peer_avatar,
			u.is_online AS peer_online,
			COALESCE((SELECT content FROM messages WHERE chat_id = c.id ORDER BY id DESC LIMIT 1), '') AS last_message,
			COALESCE((SELECT created_at::text FROM messages WHERE chat_id = c.id ORDER BY id DESC LIMIT 1), '') AS last_message_time
		FROM chats c
		JOIN users u ON u.id = CASE WHEN c.user1_id = ? THEN c.user2_id ELSE c.user1_id END
		WHERE c.user1_id = ? OR c.user2_id = ?
		ORDER BY last_message_time DESC
	`, userID, userID, userID, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *chatRepo) CreateMessage(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *chatRepo) GetMessageByID(ctx context.Context, messageID int64) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).Where("id = ?", messageID).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatRepo) GetChatMessages(ctx context.Context, chatID int64, limit, offset int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepo) GetGroupMessages(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// 每个 (message, user) 只保留一条状态，后写覆盖
func (r *chatRepo) SetMessageStatus(ctx context.Context, messageID, userID int64, status string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&model.MessageStatus{
		MessageID: messageID,
		UserID:    userID,
		Status:    status,
	}).Error
}
