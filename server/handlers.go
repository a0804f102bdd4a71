package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"ClipForge/cache"
	"ClipForge/config"
	"ClipForge/core/media"
	"ClipForge/core/studio"
	"ClipForge/core/timeline"
	"ClipForge/logger"
)

// APIHandler 聚合 HTTP 处理器依赖：会话管理器、探测器、探测缓存和配置
type APIHandler struct {
	manager    *studio.Manager
	prober     media.Prober
	probeCache *cache.ProbeCache
	cfg        *config.Config
}

// NewAPIHandler 创建 APIHandler 实例
func NewAPIHandler(manager *studio.Manager, prober media.Prober, probeCache *cache.ProbeCache, cfg *config.Config) *APIHandler {
	return &APIHandler{
		manager:    manager,
		prober:     prober,
		probeCache: probeCache,
		cfg:        cfg,
	}
}

// writeJSON 输出 JSON 响应
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// writeError 输出统一的错误 JSON
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeEngineError 把引擎错误映射成 HTTP 状态码：引用缺失 404，参数非法 400，
// 其余 500。引擎内部的钳制不走错误路径。
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, timeline.ErrTrackNotFound),
		errors.Is(err, timeline.ErrClipNotFound),
		errors.Is(err, timeline.ErrMarkerNotFound),
		errors.Is(err, timeline.ErrEffectNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, timeline.ErrUnknownFlag),
		errors.Is(err, timeline.ErrInvalidType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, studio.ErrSessionClosed):
		writeError(w, http.StatusNotFound, "session closed")
	default:
		logger.Error("request failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON 解析请求体，失败时直接回 400
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// HealthHandler 健康检查
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": len(h.manager.ListSessions(r.Context())),
	})
}
