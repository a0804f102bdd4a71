package server

import (
	"context"
	"net/http"
	"sync/atomic"

	"ClipForge/core/studio"
	"ClipForge/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 开发期前端独立端口，放开跨域
	},
}

// nextClientID 连接内自增的客户端ID
var nextClientID int64

// WSHandler 把 HTTP 连接升级为 WebSocket 并接入会话 Hub
func (h *APIHandler) WSHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	s := h.manager.GetSession(sessionID)
	if s == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "Guest"
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed",
			logger.ErrorField(err),
			logger.String("session", sessionID))
		return
	}

	client := &studio.Client{
		Hub:       h.manager.Hub(),
		Conn:      conn,
		Send:      make(chan []byte, 256),
		SessionID: sessionID,
		ClientID:  atomic.AddInt64(&nextClientID, 1),
		Name:      name,
	}

	client.Hub.Register(client)

	// 升级后连接被劫持，请求上下文会随 handler 返回取消，读循环用独立上下文
	go client.WritePump()
	go client.ReadPump(context.Background(), h.manager.HandleMessage)
}
