package studio

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"ClipForge/core/timeline"
	"ClipForge/logger"
	"ClipForge/model"
)

// ErrSessionClosed is returned by Do when the session's command loop has
// already shut down.
var ErrSessionClosed = errors.New("studio: session closed")

// command 一次投递到会话循环的引擎操作
type command struct {
	fn      func(e *timeline.Engine)
	reply   chan struct{}
	dropped bool // 关闭排空时置位，必须先写后 close(reply)
}

// Session is one open editing workspace: a timeline engine plus the
// single-goroutine command loop that owns it. All reads and writes go
// through Do, so the engine is never touched from two goroutines and
// pointer-move ordering is exactly queue order.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	engine *timeline.Engine // 只允许 run 循环触碰
	hub    *Hub

	cmds      chan *command
	done      chan struct{}
	closeOnce sync.Once

	lastActive int64 // unix 毫秒，原子读写
}

// newSession 创建会话并把引擎事件接到 Hub 广播上
func newSession(id, name string, hub *Hub) *Session {
	s := &Session{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
		engine:    timeline.NewEngine(),
		hub:       hub,
		cmds:      make(chan *command, 64),
		done:      make(chan struct{}),
	}
	s.touch()

	// 事件回调在命令循环内同步触发，广播只是向带缓冲的通道投递
	ev := s.engine.Events()
	ev.OnTimeChange = func(t float64) {
		data, _ := json.Marshal(map[string]float64{"time": t})
		s.hub.BroadcastWSMessage(s.ID, &WSMessage{
			Type:      MsgTypeTimeChange,
			SessionID: s.ID,
			Data:      data,
		}, 0)
	}
	ev.OnClipSelect = func(clip model.Clip) {
		data, _ := json.Marshal(&clip)
		s.hub.BroadcastWSMessage(s.ID, &WSMessage{
			Type:      MsgTypeClipSelect,
			SessionID: s.ID,
			Data:      data,
		}, 0)
	}
	ev.OnClipEdit = func(clip model.Clip) {
		data, _ := json.Marshal(&clip)
		s.hub.BroadcastWSMessage(s.ID, &WSMessage{
			Type:      MsgTypeClipEdit,
			SessionID: s.ID,
			Data:      data,
		}, 0)
	}

	go s.run()
	return s
}

// run 会话命令循环，引擎的唯一写者
func (s *Session) run() {
	for {
		select {
		case cmd := <-s.cmds:
			before := s.engine.Version()
			cmd.fn(s.engine)
			if s.engine.Version() != before {
				s.broadcastState()
			}
			close(cmd.reply)

		case <-s.done:
			// 清空排队中的命令，让等待方解除阻塞。
			// 这些命令没有被执行，等待方要拿到错误而不是成功
			for {
				select {
				case cmd := <-s.cmds:
					cmd.dropped = true
					close(cmd.reply)
				default:
					return
				}
			}
		}
	}
}

// Do runs fn on the session's engine from the command loop and waits for it
// to finish. It is the only way to touch the engine. Returns an error when
// the session has been closed or ctx expires first.
func (s *Session) Do(ctx context.Context, fn func(e *timeline.Engine)) error {
	s.touch()
	cmd := &command{fn: fn, reply: make(chan struct{})}

	select {
	case s.cmds <- cmd:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-cmd.reply:
		if cmd.dropped {
			return ErrSessionClosed
		}
		return nil
	case <-s.done:
		// 循环可能在排空前就退出了，命令不会再被执行
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DoErr runs fn like Do and surfaces the error fn produced. A queue/close
// error wins over the operation error.
func (s *Session) DoErr(ctx context.Context, fn func(e *timeline.Engine) error) error {
	var opErr error
	if err := s.Do(ctx, func(e *timeline.Engine) { opErr = fn(e) }); err != nil {
		return err
	}
	return opErr
}

// Snapshot returns a deep copy of the timeline state, taken on the command
// loop so it is consistent.
func (s *Session) Snapshot(ctx context.Context) (*model.TimelineSnapshot, error) {
	var snap *model.TimelineSnapshot
	err := s.Do(ctx, func(e *timeline.Engine) {
		snap = e.Snapshot()
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Layout computes the pixel-space view for a viewport on the command loop.
func (s *Session) Layout(ctx context.Context, vp timeline.Viewport) (*model.TimelineLayout, error) {
	var layout *model.TimelineLayout
	err := s.Do(ctx, func(e *timeline.Engine) {
		layout = e.Layout(vp)
	})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

// Info 返回会话的列表视图
func (s *Session) Info(ctx context.Context) (model.SessionInfo, error) {
	info := model.SessionInfo{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		Clients:   s.hub.SessionClientCount(s.ID),
	}
	err := s.Do(ctx, func(e *timeline.Engine) {
		info.Tracks = len(e.Tracks())
		info.Version = e.Version()
	})
	return info, err
}

// broadcastState 把全量快照广播给会话内所有客户端
func (s *Session) broadcastState() {
	snap := s.engine.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		logger.Error("failed to marshal timeline snapshot",
			logger.ErrorField(err),
			logger.String("session", s.ID))
		return
	}
	s.hub.BroadcastWSMessage(s.ID, &WSMessage{
		Type:      MsgTypeState,
		SessionID: s.ID,
		Data:      data,
	}, 0)
}

// close 停止命令循环。重复调用是安全的。
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// touch 刷新活跃时间
func (s *Session) touch() {
	atomic.StoreInt64(&s.lastActive, time.Now().UnixMilli())
}

// IdleFor reports how long the session has gone without a command.
func (s *Session) IdleFor() time.Duration {
	last := atomic.LoadInt64(&s.lastActive)
	return time.Since(time.UnixMilli(last))
}
