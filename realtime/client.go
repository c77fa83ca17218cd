package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"classlink/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 跨域由前置 CORS 配置把关
	},
}

// Client 一条已认证的 websocket 连接
type Client struct {
	UserID int64
	Role   string

	hub  *Hub
	conn *websocket.Conn
	send chan Event
}

func newClient(hub *Hub, conn *websocket.Conn, userID int64, role string) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		hub:    hub,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
	}
}

// 入站事件封包
type inboundEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(ctx, c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev inboundEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.hub.logger.Warn("bad event frame", zap.Int64("user_id", c.UserID), zap.Error(err))
			continue
		}
		c.hub.HandleEvent(ctx, c, ev.Name, ev.Data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS websocket 入口。握手先验 token，认证失败不升级连接。
func ServeWS(hub *Hub, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			tokenStr = c.GetHeader("Authorization")
			if len(tokenStr) > 7 && tokenStr[:7] == "Bearer " {
				tokenStr = tokenStr[7:]
			}
		}
		userID, role, err := auth.ParseToken(tokenStr, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 1, "error": "authentication error"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.logger.Warn("fail to upgrade connection", zap.Error(err))
			return
		}

		client := newClient(hub, conn, userID, role)
		ctx := context.Background()
		hub.Register(ctx, client)

		go client.writePump()
		go client.readPump(ctx)
	}
}
