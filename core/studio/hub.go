package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ClipForge/cache"
	"ClipForge/logger"
	"ClipForge/model"

	"github.com/gorilla/websocket"
)

// Client WebSocket 客户端，对应一个打开工作区的浏览器标签页
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID string
	ClientID  int64
	Name      string
}

// Hub 会话 WebSocket 管理中心
type Hub struct {
	// 会话 -> 客户端集合
	sessions map[string]map[*Client]bool

	// 客户端索引（一个连接一个ID）
	clients map[string]*Client // key: sessionID:clientID

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client

	// 广播通道
	broadcast chan *BroadcastMessage

	// 互斥锁
	mu sync.RWMutex

	// 关闭信号
	done chan struct{}
}

// BroadcastMessage 广播消息
type BroadcastMessage struct {
	SessionID string
	Message   []byte
	ExcludeID int64 // 排除的客户端ID（不向发送者回发时使用）
}

// NewHub 创建会话 Hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run 启动 Hub 主循环
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastToSession(msg)

		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop 停止 Hub
func (h *Hub) Stop() {
	close(h.done)
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	sessionID := client.SessionID
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*Client]bool)
	}
	h.sessions[sessionID][client] = true
	h.clients[h.clientKey(sessionID, client.ClientID)] = client
	h.mu.Unlock()

	// 更新 Redis 中的在线状态
	ctx := context.Background()
	sessionCache := cache.NewSessionCache()
	member := &model.MemberOnline{
		ClientID: client.ClientID,
		Name:     client.Name,
		JoinedAt: time.Now().UnixMilli(),
		LastSeen: time.Now().UnixMilli(),
	}
	if err := sessionCache.SetMemberOnline(ctx, sessionID, member); err != nil {
		logger.Warn("failed to set member online on register",
			logger.ErrorField(err),
			logger.String("session", sessionID),
			logger.Int64("client", client.ClientID))
	}
	if err := sessionCache.UpdateClientPresence(ctx, sessionID, client.ClientID); err != nil {
		logger.Warn("failed to update client presence on register",
			logger.ErrorField(err),
			logger.String("session", sessionID),
			logger.Int64("client", client.ClientID))
	}

	// 广播成员加入
	h.BroadcastWSMessage(sessionID, &WSMessage{
		Type:      MsgTypeMemberJoin,
		SessionID: sessionID,
		ClientID:  client.ClientID,
		Name:      client.Name,
	}, client.ClientID)

	logger.Info("client registered",
		logger.String("session", sessionID),
		logger.Int64("client", client.ClientID),
		logger.String("name", client.Name))
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	removed := h.removeClient(client)
	h.mu.Unlock()
	if !removed {
		return
	}

	sessionID := client.SessionID

	// 移除 Redis 中的在线状态
	ctx := context.Background()
	sessionCache := cache.NewSessionCache()
	if err := sessionCache.RemoveMemberOnline(ctx, sessionID, client.ClientID); err != nil {
		logger.Warn("failed to remove member online on unregister",
			logger.ErrorField(err),
			logger.String("session", sessionID),
			logger.Int64("client", client.ClientID))
	}
	if err := sessionCache.RemoveClientPresence(ctx, sessionID, client.ClientID); err != nil {
		logger.Warn("failed to remove client presence on unregister",
			logger.ErrorField(err),
			logger.String("session", sessionID),
			logger.Int64("client", client.ClientID))
	}

	// 广播成员离开
	h.BroadcastWSMessage(sessionID, &WSMessage{
		Type:      MsgTypeMemberLeft,
		SessionID: sessionID,
		ClientID:  client.ClientID,
		Name:      client.Name,
	}, 0)

	logger.Info("client unregistered",
		logger.String("session", sessionID),
		logger.Int64("client", client.ClientID))
}

// removeClient 移除客户端（内部方法，需要持有锁）
func (h *Hub) removeClient(client *Client) bool {
	sessionID := client.SessionID
	clients, ok := h.sessions[sessionID]
	if !ok {
		return false
	}
	if _, ok := clients[client]; !ok {
		return false
	}

	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.sessions, sessionID)
	}
	delete(h.clients, h.clientKey(sessionID, client.ClientID))
	return true
}

// broadcastToSession 向会话内所有客户端广播消息
func (h *Hub) broadcastToSession(msg *BroadcastMessage) {
	h.mu.RLock()
	clients, ok := h.sessions[msg.SessionID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// 复制客户端列表以避免长时间持有锁
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	var slow []*Client
	for _, client := range clientList {
		if msg.ExcludeID > 0 && client.ClientID == msg.ExcludeID {
			continue
		}

		select {
		case client.Send <- msg.Message:
		default:
			slow = append(slow, client)
		}
	}

	// 发送缓冲区满的慢客户端直接在本循环里踢掉，
	// 不能投回 unregister 通道：接收方就是当前 goroutine
	for _, client := range slow {
		logger.Warn("evicting slow client",
			logger.String("session", client.SessionID),
			logger.Int64("client", client.ClientID))
		h.unregisterClient(client)
	}
}

// cleanup 清理所有连接
func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.sessions {
		for client := range clients {
			close(client.Send)
		}
	}
	h.sessions = make(map[string]map[*Client]bool)
	h.clients = make(map[string]*Client)
}

// clientKey 生成客户端键
func (h *Hub) clientKey(sessionID string, clientID int64) string {
	return fmt.Sprintf("%s:%d", sessionID, clientID)
}

// Register 注册客户端
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast 广播消息到会话
func (h *Hub) Broadcast(sessionID string, message []byte, excludeClientID int64) {
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message:   message,
		ExcludeID: excludeClientID,
	}
}

// BroadcastWSMessage 广播 WSMessage
func (h *Hub) BroadcastWSMessage(sessionID string, msg *WSMessage, excludeClientID int64) error {
	msg.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.Broadcast(sessionID, data, excludeClientID)
	return nil
}

// SessionClientCount 获取会话内的客户端数量
func (h *Hub) SessionClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions[sessionID])
}

// SessionIDs 返回当前有客户端连接的会话ID列表
func (h *Hub) SessionIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	return ids
}

// ========== Client 方法 ==========

// ReadPump 读取消息循环
func (c *Client) ReadPump(ctx context.Context, handler func(ctx context.Context, client *Client, msg *WSMessage)) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(8192) // 8KB
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, message, err := c.Conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Warn("websocket read error",
						logger.ErrorField(err),
						logger.String("session", c.SessionID),
						logger.Int64("client", c.ClientID))
				}
				return
			}

			var msg WSMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				logger.Warn("invalid message format",
					logger.ErrorField(err),
					logger.String("session", c.SessionID))
				continue
			}

			// 处理心跳
			if msg.Type == MsgTypePing {
				sessionCache := cache.NewSessionCache()
				if err := sessionCache.UpdateClientPresence(ctx, c.SessionID, c.ClientID); err != nil {
					logger.Warn("failed to update client presence",
						logger.ErrorField(err),
						logger.String("session", c.SessionID),
						logger.Int64("client", c.ClientID))
				}

				pong := &WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()}
				if data, err := json.Marshal(pong); err == nil {
					select {
					case c.Send <- data:
					default:
					}
				}
				continue
			}

			// 调用消息处理器
			handler(ctx, c, &msg)
		}
	}
}

// WritePump 写入消息循环
func (c *Client) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub 关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// 合并发送队列中的消息
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端
func (c *Client) SendMessage(msg *WSMessage) error {
	msg.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	default:
		return nil // 缓冲区满，丢弃消息
	}
}
