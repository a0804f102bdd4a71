package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"ClipForge/config"
	"ClipForge/logger"
	"ClipForge/model"
	"ClipForge/storage"
)

// MediaObjectHandler 处理对象存储里的素材文件请求（/media/... 直连 MinIO）
type MediaObjectHandler struct {
	cfg *config.Config
}

// NewMediaObjectHandler 创建 MediaObjectHandler 实例
func NewMediaObjectHandler(cfg *config.Config) *MediaObjectHandler {
	return &MediaObjectHandler{cfg: cfg}
}

// ServeHTTP 实现 http.Handler 接口
func (h *MediaObjectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/")
	if !strings.HasPrefix(objectPath, storage.MediaPrefix) {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	object, err := storage.FetchMedia(ctx, h.cfg, objectPath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", model.ContentTypeForFile(objectPath))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	// 对象名含 UUID，内容不可变，可长缓存
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	if _, err := io.Copy(w, object); err != nil {
		logger.Error("Error serving file from MinIO", logger.ErrorField(err))
	}
}
