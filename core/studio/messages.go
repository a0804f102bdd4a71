package studio

import (
	"encoding/json"

	"ClipForge/model"
)

// MessageType 消息类型
type MessageType string

const (
	// 系统消息
	MsgTypeError      MessageType = "error"       // 错误消息
	MsgTypePing       MessageType = "ping"        // 心跳
	MsgTypePong       MessageType = "pong"        // 心跳响应
	MsgTypeSync       MessageType = "sync"        // 请求全量快照
	MsgTypeState      MessageType = "state"       // 全量快照广播
	MsgTypeMemberJoin MessageType = "member_join" // 成员加入
	MsgTypeMemberLeft MessageType = "member_leave" // 成员离开
	MsgTypeMemberList MessageType = "member_list" // 成员列表

	// 指针拖拽消息（拖拽流按到达顺序进入会话命令队列）
	MsgTypePointerDown MessageType = "pointer_down" // 指针按下，开始拖拽
	MsgTypePointerMove MessageType = "pointer_move" // 指针移动
	MsgTypePointerUp   MessageType = "pointer_up"   // 指针抬起，结束拖拽

	// 播放头与选择
	MsgTypeSeek       MessageType = "seek"        // 移动播放头
	MsgTypeTimeChange MessageType = "time_change" // 播放头变更通知
	MsgTypeClipSelect MessageType = "clip_select" // 选中片段
	MsgTypeClipEdit   MessageType = "clip_edit"   // 请求外部面板深度编辑片段

	// 轨道操作
	MsgTypeTrackAdd    MessageType = "track_add"    // 新增轨道
	MsgTypeTrackDelete MessageType = "track_delete" // 删除轨道
	MsgTypeTrackFlag   MessageType = "track_flag"   // 切换轨道开关
	MsgTypeTrackVolume MessageType = "track_volume" // 轨道音量
	MsgTypeTrackRename MessageType = "track_rename" // 重命名轨道

	// 片段操作
	MsgTypeClipSplit    MessageType = "clip_split"    // 分割片段
	MsgTypeClipDelete   MessageType = "clip_delete"   // 删除片段
	MsgTypeClipTime     MessageType = "clip_time"     // 设置片段时间
	MsgTypeClipVolume   MessageType = "clip_volume"   // 片段音量
	MsgTypeClipEffect   MessageType = "clip_effect"   // 追加片段效果
	MsgTypeClipKeyframe MessageType = "clip_keyframe" // 追加片段关键帧

	// 标记
	MsgTypeMarkerAdd    MessageType = "marker_add"    // 新增标记
	MsgTypeMarkerRemove MessageType = "marker_remove" // 删除标记

	// 视图状态
	MsgTypeZoom           MessageType = "zoom"            // 缩放
	MsgTypeTrackHeight    MessageType = "track_height"    // 轨道高度
	MsgTypeCollapseToggle MessageType = "collapse_toggle" // 折叠开关
	MsgTypeSnapToggle     MessageType = "snap_toggle"     // 吸附开关
	MsgTypeRippleToggle   MessageType = "ripple_toggle"   // 涟漪模式开关

	// 素材
	MsgTypeMediaReady MessageType = "media_ready" // 素材入库完成
)

// WSMessage WebSocket 消息结构
type WSMessage struct {
	Type      MessageType     `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  int64           `json:"clientId,omitempty"`
	Name      string          `json:"name,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// PointerDownData 指针按下数据。Kind 为空时由命中测试决定手势类型。
type PointerDownData struct {
	ClipID  string  `json:"clipId"`
	TrackID string  `json:"trackId"`
	PixelX  float64 `json:"pixelX"`
	Kind    string  `json:"kind,omitempty"` // move / resize-left / resize-right
}

// PointerMoveData 指针移动数据
type PointerMoveData struct {
	PixelX float64 `json:"pixelX"`
}

// SeekData 播放头移动数据
type SeekData struct {
	Time float64 `json:"time"`
}

// ClipSelectData 片段选择数据
type ClipSelectData struct {
	ClipID   string `json:"clipId"`
	TrackID  string `json:"trackId"`
	Additive bool   `json:"additive,omitempty"`
}

// ClipTargetData 指向单个片段的操作数据
type ClipTargetData struct {
	ClipID  string `json:"clipId"`
	TrackID string `json:"trackId"`
}

// TrackAddData 新增轨道数据
type TrackAddData struct {
	Type model.TrackType `json:"type"`
}

// TrackTargetData 指向单个轨道的操作数据
type TrackTargetData struct {
	TrackID string `json:"trackId"`
}

// TrackFlagData 轨道开关数据
type TrackFlagData struct {
	TrackID string `json:"trackId"`
	Flag    string `json:"flag"` // muted / solo / locked / visible
}

// TrackRenameData 轨道重命名数据
type TrackRenameData struct {
	TrackID string `json:"trackId"`
	Name    string `json:"name"`
}

// VolumeData 音量设置数据。ClipID 为空时作用于轨道。
type VolumeData struct {
	TrackID string  `json:"trackId"`
	ClipID  string  `json:"clipId,omitempty"`
	Volume  float64 `json:"volume"`
}

// ClipSplitData 分割片段数据
type ClipSplitData struct {
	ClipID  string  `json:"clipId"`
	TrackID string  `json:"trackId"`
	AtTime  float64 `json:"atTime"`
}

// ClipTimeData 片段时间设置数据
type ClipTimeData struct {
	ClipID    string  `json:"clipId"`
	TrackID   string  `json:"trackId"`
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`
}

// ClipEffectData 片段效果数据
type ClipEffectData struct {
	ClipID  string                 `json:"clipId"`
	TrackID string                 `json:"trackId"`
	Type    string                 `json:"type"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// ClipKeyframeData 片段关键帧数据
type ClipKeyframeData struct {
	ClipID   string  `json:"clipId"`
	TrackID  string  `json:"trackId"`
	Time     float64 `json:"time"`
	Property string  `json:"property,omitempty"`
	Value    float64 `json:"value,omitempty"`
}

// MarkerAddData 新增标记数据
type MarkerAddData struct {
	Time  float64 `json:"time"`
	Label string  `json:"label,omitempty"`
}

// MarkerRemoveData 删除标记数据
type MarkerRemoveData struct {
	MarkerID string `json:"markerId"`
}

// ZoomData 缩放数据
type ZoomData struct {
	Zoom float64 `json:"zoom"`
}

// TrackHeightData 轨道高度数据
type TrackHeightData struct {
	Height int `json:"height"`
}

// ToggleData 布尔开关数据
type ToggleData struct {
	Enabled bool `json:"enabled"`
}

// ErrorData 错误消息数据
type ErrorData struct {
	Message string `json:"message"`
}

// MediaReadyData 素材入库完成数据
type MediaReadyData struct {
	TrackID string                `json:"trackId,omitempty"`
	Clip    *model.Clip           `json:"clip,omitempty"`
	Media   model.MediaDescriptor `json:"media"`
}
