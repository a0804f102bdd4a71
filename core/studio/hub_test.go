package studio

import (
	"testing"
	"time"
)

// TestHubEvictsSlowClientWithoutStalling 慢客户端的发送缓冲满了必须被踢掉，
// 而且主循环要继续工作：后续的注册和广播都不能被卡住。
func TestHubEvictsSlowClientWithoutStalling(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// 零缓冲的 Send 装不下任何消息，第一次广播就会触发踢除
	slow := &Client{Hub: hub, Send: make(chan []byte), SessionID: "200001", ClientID: 1, Name: "slow"}
	hub.Register(slow)

	hub.Broadcast("200001", []byte(`{"type":"state"}`), 0)

	// 被踢客户端的 Send 会被 Hub 关闭
	select {
	case _, ok := <-slow.Send:
		if ok {
			t.Fatalf("slow client received a message, want its channel closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub stalled: slow client was never evicted")
	}

	// 踢除之后主循环必须还活着
	next := &Client{Hub: hub, Send: make(chan []byte, 8), SessionID: "200001", ClientID: 2, Name: "next"}
	registered := make(chan struct{})
	go func() {
		hub.Register(next)
		close(registered)
	}()
	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stalled: register after eviction never completed")
	}

	hub.Broadcast("200001", []byte(`{"type":"state"}`), 0)
	select {
	case <-next.Send:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stalled: broadcast after eviction never delivered")
	}

	if n := hub.SessionClientCount("200001"); n != 1 {
		t.Errorf("session client count = %d, want 1 after eviction", n)
	}
}

// TestHubBroadcastSkipsExcludedClient 广播排除发送者本人。
func TestHubBroadcastSkipsExcludedClient(t *testing.T) {
	hub := NewHub()

	sender := &Client{Hub: hub, Send: make(chan []byte, 8), SessionID: "200002", ClientID: 7, Name: "sender"}
	peer := &Client{Hub: hub, Send: make(chan []byte, 8), SessionID: "200002", ClientID: 8, Name: "peer"}
	hub.registerClient(sender)
	hub.registerClient(peer)

	hub.broadcastToSession(&BroadcastMessage{
		SessionID: "200002",
		Message:   []byte(`{"type":"clip_edit"}`),
		ExcludeID: sender.ClientID,
	})

	select {
	case <-peer.Send:
	default:
		t.Fatal("peer never received the broadcast")
	}
	if got := len(sender.Send); got != 0 {
		t.Errorf("sender has %d queued messages, want 0", got)
	}
}
