package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	chatrepo "classlink/chat/repo"
	userrepo "classlink/user/repo"

	"go.uber.org/zap"
)

// Event 下发给客户端的统一事件封包
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// Hub 维护 socket 与用户、房间的映射并向房间成员转发事件。
// 事件本身不持久化；掉线的客户端下次拉历史时补齐。
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	users    userrepo.UserRepo
	presence userrepo.UserRedis
	chats    chatrepo.ChatRepo
	logger   *zap.Logger
}

func NewHub(users userrepo.UserRepo, presence userrepo.UserRedis, chats chatrepo.ChatRepo, logger *zap.Logger) *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		rooms:    make(map[string]map[*Client]bool),
		users:    users,
		presence: presence,
		chats:    chats,
		logger:   logger,
	}
}

func userRoom(userID int64) string { return fmt.Sprintf("user_%d", userID) }

func chatRoom(chatID int64) string { return fmt.Sprintf("chat_%d", chatID) }

func groupRoom(groupID string) string { return "group_" + groupID }

// Register 建立连接：标记在线、加入个人房间、向其他客户端广播上线
func (h *Hub) Register(ctx context.Context, c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.joinRoom(c, userRoom(c.UserID))

	if err := h.users.SetOnlineStatus(ctx, c.UserID, true); err != nil {
		h.logger.Warn("fail to set online status", zap.Int64("user_id", c.UserID), zap.Error(err))
	}
	if err := h.presence.AddOnline(ctx, c.UserID); err != nil {
		h.logger.Warn("fail to add online set", zap.Int64("user_id", c.UserID), zap.Error(err))
	}

	h.broadcastAll(c, Event{Name: "user_online", Data: map[string]interface{}{"userId": c.UserID}})
	h.logger.Info("user connected", zap.Int64("user_id", c.UserID))
}

// Unregister 断开连接：标记离线并广播下线
func (h *Hub) Unregister(ctx context.Context, c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for room, members := range h.rooms {
		if members[c] {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()
	close(c.send)

	if err := h.users.SetOnlineStatus(ctx, c.UserID, false); err != nil {
		h.logger.Warn("fail to set offline status", zap.Int64("user_id", c.UserID), zap.Error(err))
	}
	if err := h.presence.RemoveOnline(ctx, c.UserID); err != nil {
		h.logger.Warn("fail to remove online set", zap.Int64("user_id", c.UserID), zap.Error(err))
	}

	h.broadcastAll(c, Event{Name: "user_offline", Data: map[string]interface{}{"userId": c.UserID}})
	h.logger.Info("user disconnected", zap.Int64("user_id", c.UserID))
}

func (h *Hub) joinRoom(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
}

func (h *Hub) leaveRoom(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members := h.rooms[room]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// broadcastToRoom 向房间内除 except 外的所有连接投递。满不下就丢，
// 不重试：慢客户端靠拉历史补消息。
func (h *Hub) broadcastToRoom(room string, except *Client, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if c == except {
			continue
		}
		select {
		case c.send <- ev:
		default:
			h.logger.Warn("client send buffer full, dropping event",
				zap.Int64("user_id", c.UserID), zap.String("event", ev.Name))
		}
	}
}

func (h *Hub) broadcastAll(except *Client, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c == except {
			continue
		}
		select {
		case c.send <- ev:
		default:
			h.logger.Warn("client send buffer full, dropping event",
				zap.Int64("user_id", c.UserID), zap.String("event", ev.Name))
		}
	}
}

type roomRef struct {
	ChatID  *int64  `json:"chatId,omitempty"`
	GroupID *string `json:"groupId,omitempty"`
}

func (r roomRef) room() (string, bool) {
	if r.ChatID != nil {
		return chatRoom(*r.ChatID), true
	}
	if r.GroupID != nil {
		return groupRoom(*r.GroupID), true
	}
	return "", false
}

// HandleEvent 处理一条入站事件。任何一步出错只丢弃该事件并记录日志，
// 连接保持不动。
func (h *Hub) HandleEvent(ctx context.Context, c *Client, name string, data json.RawMessage) {
	switch name {
	case "join_chat":
		var chatID int64
		if err := json.Unmarshal(data, &chatID); err != nil {
			h.logger.Warn("bad join_chat payload", zap.Error(err))
			return
		}
		h.joinRoom(c, chatRoom(chatID))

	case "leave_chat":
		var chatID int64
		if err := json.Unmarshal(data, &chatID); err != nil {
			h.logger.Warn("bad leave_chat payload", zap.Error(err))
			return
		}
		h.leaveRoom(c, chatRoom(chatID))

	case "join_group":
		var groupID string
		if err := json.Unmarshal(data, &groupID); err != nil {
			h.logger.Warn("bad join_group payload", zap.Error(err))
			return
		}
		h.joinRoom(c, groupRoom(groupID))

	case "leave_group":
		var groupID string
		if err := json.Unmarshal(data, &groupID); err != nil {
			h.logger.Warn("bad leave_group payload", zap.Error(err))
			return
		}
		h.leaveRoom(c, groupRoom(groupID))

	case "send_message":
		// REST 已落库，这里只做一次尽力而为的转发，消息原样透传
		var payload struct {
			roomRef
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			h.logger.Warn("bad send_message payload", zap.Error(err))
			return
		}
		room, ok := payload.room()
		if !ok {
			return
		}
		h.broadcastToRoom(room, nil, Event{Name: "message_received", Data: payload.Message})

	case "typing":
		var payload struct {
			roomRef
			IsTyping bool `json:"isTyping"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			h.logger.Warn("bad typing payload", zap.Error(err))
			return
		}
		room, ok := payload.room()
		if !ok {
			return
		}
		h.broadcastToRoom(room, c, Event{Name: "user_typing", Data: map[string]interface{}{
			"userId":   c.UserID,
			"isTyping": payload.IsTyping,
		}})

	case "message_read":
		var payload struct {
			MessageID int64 `json:"messageId"`
			ChatID    int64 `json:"chatId"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			h.logger.Warn("bad message_read payload", zap.Error(err))
			return
		}
		// 先落库再通知，读状态后写覆盖
		if err := h.chats.SetMessageStatus(ctx, payload.MessageID, c.UserID, "read"); err != nil {
			h.logger.Warn("fail to persist read status",
				zap.Int64("message_id", payload.MessageID),
				zap.Int64("user_id", c.UserID),
				zap.Error(err))
			return
		}
		h.broadcastToRoom(chatRoom(payload.ChatID), c, Event{Name: "message_status_updated", Data: map[string]interface{}{
			"messageId": payload.MessageID,
			"userId":    c.UserID,
			"status":    "read",
		}})

	default:
		h.logger.Warn("unknown event", zap.String("event", name))
	}
}
