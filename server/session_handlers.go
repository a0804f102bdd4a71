package server

import (
	"net/http"
	"strconv"

	"ClipForge/core/export"
	"ClipForge/core/studio"
	"ClipForge/core/timeline"
	"ClipForge/model"

	"github.com/gorilla/mux"
)

// session 按路径变量取会话，未找到时写 404 并返回 nil
func (h *APIHandler) session(w http.ResponseWriter, r *http.Request) *studio.Session {
	id := mux.Vars(r)["id"]
	s := h.manager.GetSession(id)
	if s == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil
	}
	return s
}

// CreateSessionHandler 创建编辑会话
func (h *APIHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	s, err := h.manager.CreateSession(req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	info, err := s.Info(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// ListSessionsHandler 列出所有打开的会话
func (h *APIHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.ListSessions(r.Context()))
}

// GetSessionHandler 返回会话的全量快照；带 viewportHeight 时附带像素几何
func (h *APIHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	snap, err := s.Snapshot(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := struct {
		ID       string                  `json:"id"`
		Name     string                  `json:"name"`
		Snapshot *model.TimelineSnapshot `json:"snapshot"`
		Layout   *model.TimelineLayout   `json:"layout,omitempty"`
	}{ID: s.ID, Name: s.Name, Snapshot: snap}

	if v := r.URL.Query().Get("viewportHeight"); v != "" {
		height, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid viewportHeight")
			return
		}
		layout, err := s.Layout(r.Context(), timeline.Viewport{Height: height})
		if err != nil {
			writeEngineError(w, err)
			return
		}
		resp.Layout = layout
	}

	writeJSON(w, http.StatusOK, resp)
}

// CloseSessionHandler 关闭会话
func (h *APIHandler) CloseSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.manager.CloseSession(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "closed"})
}

// AddTrackHandler 新增轨道
func (h *APIHandler) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Type model.TrackType `json:"type"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var track *model.Track
	err := s.DoErr(r.Context(), func(e *timeline.Engine) error {
		t, err := e.AddTrack(req.Type)
		if err != nil {
			return err
		}
		track = t.Clone()
		return nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, track)
}

// DeleteTrackHandler 删除轨道
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	trackID := mux.Vars(r)["trackId"]

	err := s.DoErr(r.Context(), func(e *timeline.Engine) error {
		return e.DeleteTrack(trackID)
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": trackID, "status": "deleted"})
}

// TrackFlagHandler 切换轨道布尔开关（muted/solo/locked/visible）
func (h *APIHandler) TrackFlagHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	trackID := mux.Vars(r)["trackId"]
	var req struct {
		Flag string `json:"flag"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.DoErr(r.Context(), func(e *timeline.Engine) error {
		return e.ToggleTrackFlag(trackID, timeline.TrackFlag(req.Flag))
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": trackID, "flag": req.Flag})
}

// TrackVolumeHandler 设置轨道音量
func (h *APIHandler) TrackVolumeHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	trackID := mux.Vars(r)["trackId"]
	var req struct {
		Volume float64 `json:"volume"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.DoErr(r.Context(), func(e *timeline.Engine) error {
		return e.SetTrackVolume(trackID, req.Volume)
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": trackID, "volume": req.Volume})
}

// TrackRenameHandler 重命名轨道
func (h *APIHandler) TrackRenameHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	trackID := mux.Vars(r)["trackId"]
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.DoErr(r.Context(), func(e *timeline.Engine) error {
		return e.RenameTrack(trackID, req.Name)
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": trackID, "name": req.Name})
}

// ClipSplitHandler 在指定时间点分割片段。切点落在边界上或边界外时不切，
// 返回原片段不变的标记。
func (h *APIHandler) ClipSplitHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	vars := mux.Vars(r)
	trackID, clipID := vars["trackId"], vars["clipId"]
	var req struct {
		AtTime float64 `json:"atTime"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var first, second *model.Clip
	err := s.DoErr(r.Context(), func(e *timeline.Engine) error {
		f, sec, err := e.SplitClip(clipID, trackID, req.AtTime)
		if err != nil {
			return err
		}
		if f != nil {
			first, second = f.Clone(), sec.Clone()
		}
		return nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if first == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"split": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"split":  true,
		"first":  first,
		"second": second,
	})
}

// ClipDeleteHandler 删除片段
func (h *APIHandler) ClipDeleteHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	vars := mux.Vars(r)
	trackID, clipID := vars["trackId"], vars["clipId"]

	err := s.DoErr(r.Context(), func(e *timeline.Engine) error {
		return e.DeleteClip(clipID, trackID)
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": clipID, "status": "deleted"})
}

// ClipTimeHandler 设置片段时间，返回实际落库的几何（非法值被钳制或忽略）
func (h *APIHandler) ClipTimeHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	vars := mux.Vars(r)
	trackID, clipID := vars["trackId"], vars["clipId"]
	var req struct {
		StartTime float64 `json:"startTime"`
		Duration  float64 `json:"duration"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var appliedStart, appliedDuration float64
	err := s.DoErr(r.Context(), func(e *timeline.Engine) error {
		start, dur, err := e.SetClipTime(clipID, trackID, req.StartTime, req.Duration)
		appliedStart, appliedDuration = start, dur
		return err
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        clipID,
		"startTime": appliedStart,
		"duration":  appliedDuration,
	})
}

// ClipVolumeHandler 设置片段音量
func (h *APIHandler) ClipVolumeHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	vars := mux.Vars(r)
	trackID, clipID := vars["trackId"], vars["clipId"]
	var req struct {
		Volume float64 `json:"volume"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.DoErr(r.Context(), func(e *timeline.Engine) error {
		return e.SetClipVolume(clipID, trackID, req.Volume)
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": clipID, "volume": req.Volume})
}

// ClipEffectHandler 向片段追加效果
func (h *APIHandler) ClipEffectHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	vars := mux.Vars(r)
	trackID, clipID := vars["trackId"], vars["clipId"]
	var req struct {
		Type   string                 `json:"type"`
		Params map[string]interface{} `json:"params"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var effect *model.Effect
	err := s.DoErr(r.Context(), func(e *timeline.Engine) error {
		ef, err := e.ApplyClipEffect(clipID, trackID, req.Type, req.Params)
		if err != nil {
			return err
		}
		effect = ef
		return nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, effect)
}

// MarkerAddHandler 新增时间线标记
func (h *APIHandler) MarkerAddHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Time  float64 `json:"time"`
		Label string  `json:"label"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var marker *model.Marker
	if err := s.Do(r.Context(), func(e *timeline.Engine) {
		m := e.AddMarker(req.Time, req.Label)
		cp := *m
		marker = &cp
	}); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, marker)
}

// MarkerDeleteHandler 删除标记
func (h *APIHandler) MarkerDeleteHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	markerID := mux.Vars(r)["markerId"]

	err := s.DoErr(r.Context(), func(e *timeline.Engine) error {
		return e.RemoveMarker(markerID)
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": markerID, "status": "deleted"})
}

// ZoomHandler 设置缩放，返回钳制后的值
func (h *APIHandler) ZoomHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Zoom float64 `json:"zoom"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var applied float64
	if err := s.Do(r.Context(), func(e *timeline.Engine) {
		applied = e.SetZoom(req.Zoom)
	}); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"zoom": applied})
}

// TrackHeightHandler 设置展开轨道高度，返回钳制后的值
func (h *APIHandler) TrackHeightHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Height int `json:"height"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var applied int
	if err := s.Do(r.Context(), func(e *timeline.Engine) {
		applied = e.SetTrackHeight(req.Height)
	}); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"trackHeight": applied})
}

// CurrentTimeHandler 移动播放头，返回钳制后的值
func (h *APIHandler) CurrentTimeHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Time float64 `json:"time"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var applied float64
	if err := s.Do(r.Context(), func(e *timeline.Engine) {
		applied = e.SetCurrentTime(req.Time)
	}); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"currentTime": applied})
}

// ExportEDLHandler 导出 CMX 3600 剪辑单。fps 查询参数可覆盖配置的帧率。
func (h *APIHandler) ExportEDLHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	frameRate := h.cfg.ExportFrameRate
	if v := r.URL.Query().Get("fps"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			writeError(w, http.StatusBadRequest, "invalid fps")
			return
		}
		frameRate = f
	}

	snap, err := s.Snapshot(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	edl := export.GenerateEDL(snap, s.Name, frameRate)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+s.ID+`.edl"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(edl))
}
