package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"ClipForge/cache"
	"ClipForge/core/timeline"
	"ClipForge/logger"
	"ClipForge/model"
)

// Manager 会话注册表，负责会话的创建、查找、关闭和闲置回收
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	hub         *Hub
	idleTimeout time.Duration
	rng         *rand.Rand // 由 mu 保护
}

// NewManager 创建会话管理器。idleTimeout <= 0 时不回收闲置会话。
func NewManager(hub *Hub, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		hub:         hub,
		idleTimeout: idleTimeout,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Hub 返回底层的 WebSocket Hub
func (m *Manager) Hub() *Hub {
	return m.hub
}

// CreateSession 创建新的编辑会话
func (m *Manager) CreateSession(name string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.generateUniqueSessionID()
	if err != nil {
		return nil, fmt.Errorf("生成会话ID失败: %w", err)
	}
	if name == "" {
		name = "Untitled Project"
	}

	s := newSession(id, name, m.hub)
	m.sessions[id] = s

	logger.Info("session created",
		logger.String("sessionId", id),
		logger.String("name", name))
	return s, nil
}

// generateUniqueSessionID 生成唯一的6位数字会话ID（需要持有锁）
func (m *Manager) generateUniqueSessionID() (string, error) {
	for i := 0; i < 100; i++ { // 最多尝试100次
		// 生成6位数字 (100000-999999)
		id := fmt.Sprintf("%06d", m.rng.Intn(900000)+100000)
		if _, exists := m.sessions[id]; !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("无法生成唯一会话ID")
}

// GetSession 查找会话，不存在时返回 nil
func (m *Manager) GetSession(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// ListSessions 返回所有打开会话的列表视图，按创建时间排序
func (m *Manager) ListSessions(ctx context.Context) []model.SessionInfo {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	infos := make([]model.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		info, err := s.Info(ctx)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.Before(infos[j].CreatedAt) })
	return infos
}

// CloseSession 关闭会话：停掉命令循环并清理在线状态缓存
func (m *Manager) CloseSession(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session not found: %s", id)
	}

	s.close()

	sessionCache := cache.NewSessionCache()
	if err := sessionCache.ClearSession(ctx, id); err != nil {
		logger.Warn("failed to clear session cache",
			logger.ErrorField(err),
			logger.String("sessionId", id))
	}

	logger.Info("session closed", logger.String("sessionId", id))
	return nil
}

// ReapIdle 回收闲置超时且没有客户端连接的会话，返回回收数量
func (m *Manager) ReapIdle(ctx context.Context) int {
	if m.idleTimeout <= 0 {
		return 0
	}

	m.mu.RLock()
	var stale []string
	for id, s := range m.sessions {
		if s.IdleFor() > m.idleTimeout && m.hub.SessionClientCount(id) == 0 {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		if err := m.CloseSession(ctx, id); err == nil {
			logger.Info("idle session reaped", logger.String("sessionId", id))
		}
	}
	return len(stale)
}

// RunReaper 周期性回收闲置会话，直到 ctx 结束
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.ReapIdle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// AnnounceMedia 向会话广播一个入库完成的素材。clip 为 nil 时表示素材尚未
// 放上任何轨道（监听目录摄取），由前端决定落点。
func (m *Manager) AnnounceMedia(sessionID string, trackID string, clip *model.Clip, media model.MediaDescriptor) {
	data, err := json.Marshal(&MediaReadyData{TrackID: trackID, Clip: clip, Media: media})
	if err != nil {
		return
	}
	m.hub.BroadcastWSMessage(sessionID, &WSMessage{
		Type:      MsgTypeMediaReady,
		SessionID: sessionID,
		Data:      data,
	}, 0)
}

// AnnounceMediaToAll 向所有有客户端连接的会话广播入库素材（监听目录摄取）
func (m *Manager) AnnounceMediaToAll(media model.MediaDescriptor) {
	for _, id := range m.hub.SessionIDs() {
		m.AnnounceMedia(id, "", nil, media)
	}
}

// ========== 消息处理器 ==========

// HandleMessage 处理 WebSocket 消息：解析类型化负载，投递到会话命令队列。
// 引用类错误只回给发送方，不会中断会话。
func (m *Manager) HandleMessage(ctx context.Context, client *Client, msg *WSMessage) {
	s := m.GetSession(client.SessionID)
	if s == nil {
		m.sendError(client, "session not found")
		return
	}

	// 处理前端双重序列化的 data 字段
	data := msg.Data
	if len(data) > 0 && data[0] == '"' {
		var decoded string
		if err := json.Unmarshal(data, &decoded); err == nil {
			data = json.RawMessage(decoded)
		}
	}

	var opErr error
	switch msg.Type {
	case MsgTypePointerDown:
		var d PointerDownData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid pointer_down payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			kind := timeline.DragKind(d.Kind)
			if kind == "" {
				k, err := e.HitTest(d.ClipID, d.TrackID, d.PixelX)
				if err != nil {
					return err
				}
				kind = k
			}
			return e.BeginDrag(kind, d.ClipID, d.TrackID, d.PixelX)
		})

	case MsgTypePointerMove:
		var d PointerMoveData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid pointer_move payload")
			return
		}
		opErr = s.Do(ctx, func(e *timeline.Engine) { e.DragTo(d.PixelX) })

	case MsgTypePointerUp:
		opErr = s.Do(ctx, func(e *timeline.Engine) { e.EndDrag() })

	case MsgTypeSeek:
		var d SeekData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid seek payload")
			return
		}
		opErr = s.Do(ctx, func(e *timeline.Engine) { e.SetCurrentTime(d.Time) })

	case MsgTypeClipSelect:
		var d ClipSelectData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid clip_select payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			if d.ClipID == "" {
				e.ClearSelection()
				return nil
			}
			return e.SelectClip(d.ClipID, d.TrackID, d.Additive)
		})

	case MsgTypeClipEdit:
		var d ClipTargetData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid clip_edit payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			return e.RequestClipEdit(d.ClipID, d.TrackID)
		})

	case MsgTypeTrackAdd:
		var d TrackAddData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid track_add payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			_, err := e.AddTrack(d.Type)
			return err
		})

	case MsgTypeTrackDelete:
		var d TrackTargetData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid track_delete payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			return e.DeleteTrack(d.TrackID)
		})

	case MsgTypeTrackFlag:
		var d TrackFlagData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid track_flag payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			return e.ToggleTrackFlag(d.TrackID, timeline.TrackFlag(d.Flag))
		})

	case MsgTypeTrackVolume:
		var d VolumeData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid track_volume payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			return e.SetTrackVolume(d.TrackID, d.Volume)
		})

	case MsgTypeTrackRename:
		var d TrackRenameData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid track_rename payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			return e.RenameTrack(d.TrackID, d.Name)
		})

	case MsgTypeClipSplit:
		var d ClipSplitData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid clip_split payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			_, _, err := e.SplitClip(d.ClipID, d.TrackID, d.AtTime)
			return err
		})

	case MsgTypeClipDelete:
		var d ClipTargetData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid clip_delete payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			return e.DeleteClip(d.ClipID, d.TrackID)
		})

	case MsgTypeClipTime:
		var d ClipTimeData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid clip_time payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			_, _, err := e.SetClipTime(d.ClipID, d.TrackID, d.StartTime, d.Duration)
			return err
		})

	case MsgTypeClipVolume:
		var d VolumeData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid clip_volume payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			return e.SetClipVolume(d.ClipID, d.TrackID, d.Volume)
		})

	case MsgTypeClipEffect:
		var d ClipEffectData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid clip_effect payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			_, err := e.ApplyClipEffect(d.ClipID, d.TrackID, d.Type, d.Params)
			return err
		})

	case MsgTypeClipKeyframe:
		var d ClipKeyframeData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid clip_keyframe payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			return e.AddClipKeyframe(d.ClipID, d.TrackID, model.Keyframe{
				Time:     d.Time,
				Property: d.Property,
				Value:    d.Value,
			})
		})

	case MsgTypeMarkerAdd:
		var d MarkerAddData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid marker_add payload")
			return
		}
		opErr = s.Do(ctx, func(e *timeline.Engine) { e.AddMarker(d.Time, d.Label) })

	case MsgTypeMarkerRemove:
		var d MarkerRemoveData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid marker_remove payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			return e.RemoveMarker(d.MarkerID)
		})

	case MsgTypeZoom:
		var d ZoomData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid zoom payload")
			return
		}
		opErr = s.Do(ctx, func(e *timeline.Engine) { e.SetZoom(d.Zoom) })

	case MsgTypeTrackHeight:
		var d TrackHeightData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid track_height payload")
			return
		}
		opErr = s.Do(ctx, func(e *timeline.Engine) { e.SetTrackHeight(d.Height) })

	case MsgTypeCollapseToggle:
		var d TrackTargetData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid collapse_toggle payload")
			return
		}
		opErr = s.DoErr(ctx, func(e *timeline.Engine) error {
			return e.ToggleTrackCollapsed(d.TrackID)
		})

	case MsgTypeSnapToggle:
		var d ToggleData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid snap_toggle payload")
			return
		}
		opErr = s.Do(ctx, func(e *timeline.Engine) { e.SetSnapEnabled(d.Enabled) })

	case MsgTypeRippleToggle:
		var d ToggleData
		if err := json.Unmarshal(data, &d); err != nil {
			m.sendError(client, "invalid ripple_toggle payload")
			return
		}
		opErr = s.Do(ctx, func(e *timeline.Engine) { e.SetRippleEnabled(d.Enabled) })

	case MsgTypeSync:
		// 请求方单独获得一份全量快照
		snap, err := s.Snapshot(ctx)
		if err != nil {
			m.sendError(client, "snapshot failed")
			return
		}
		if data, err := json.Marshal(snap); err == nil {
			client.SendMessage(&WSMessage{
				Type:      MsgTypeState,
				SessionID: s.ID,
				Data:      data,
			})
		}
		return

	case MsgTypeMemberList:
		sessionCache := cache.NewSessionCache()
		members, err := sessionCache.GetMembersOnline(ctx, s.ID)
		if err != nil {
			logger.Warn("failed to list members",
				logger.ErrorField(err),
				logger.String("session", s.ID))
			members = []model.MemberOnline{}
		}
		if data, err := json.Marshal(members); err == nil {
			client.SendMessage(&WSMessage{
				Type:      MsgTypeMemberList,
				SessionID: s.ID,
				Data:      data,
			})
		}
		return

	default:
		logger.Warn("unknown message type",
			logger.String("type", string(msg.Type)),
			logger.String("session", s.ID))
		return
	}

	// 引用不存在的轨道/片段不是致命错误：告知发送方，会话继续
	if opErr != nil {
		logger.Debug("session command rejected",
			logger.ErrorField(opErr),
			logger.String("type", string(msg.Type)),
			logger.String("session", s.ID))
		m.sendError(client, opErr.Error())
	}
}

// sendError 把错误消息回给单个客户端
func (m *Manager) sendError(client *Client, message string) {
	data, _ := json.Marshal(&ErrorData{Message: message})
	client.SendMessage(&WSMessage{Type: MsgTypeError, Data: data})
}
