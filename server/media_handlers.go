package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ClipForge/core/timeline"
	"ClipForge/logger"
	"ClipForge/model"
	"ClipForge/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// uploadSlots 限制同时进行的素材上传数量
var uploadSlots = make(chan struct{}, 4)

// UploadMediaHandler 接收 multipart 素材上传：落到临时文件探测时长，
// 推到对象存储，然后在目标轨道上建片段并广播 media_ready。
func (h *APIHandler) UploadMediaHandler(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	trackID := mux.Vars(r)["trackId"]

	select {
	case uploadSlots <- struct{}{}:
		defer func() { <-uploadSlots }()
	default:
		writeError(w, http.StatusTooManyRequests, "too many concurrent uploads")
		return
	}

	maxBytes := int64(h.cfg.MaxUploadSizeMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.cfg.UploadTimeoutSec)*time.Second)
	defer cancel()

	// 先落临时文件：ffprobe 需要本地路径，上传也从这里读
	tmp, err := os.CreateTemp("", "clipforge-upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		logger.Error("failed to create temp file", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, file)
	tmp.Close()
	if err != nil {
		logger.Error("failed to spool upload", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	objectPath := fmt.Sprintf("%s%s/%s%s", storage.MediaPrefix, s.ID, uuid.NewString(), ext)
	contentType := model.ContentTypeForFile(header.Filename)

	url, err := storage.UploadLocalFile(ctx, h.cfg, objectPath, tmpPath, contentType)
	if err != nil {
		logger.Error("failed to store media",
			logger.ErrorField(err),
			logger.String("object", objectPath))
		writeError(w, http.StatusInternalServerError, "failed to store media")
		return
	}

	duration := h.probeDuration(ctx, objectPath, tmpPath)

	media := model.MediaDescriptor{
		Name:      header.Filename,
		Duration:  duration,
		MediaType: model.MediaKindForFile(header.Filename),
		URL:       url,
		File:      objectPath,
		Size:      size,
	}

	var clip *model.Clip
	err = s.DoErr(ctx, func(e *timeline.Engine) error {
		c, err := e.AddClipFromMedia(trackID, media)
		if err != nil {
			return err
		}
		clip = c.Clone()
		return nil
	})
	if err != nil {
		// 片段没落上轨道，对象留着就是孤儿
		if rmErr := storage.RemoveMedia(ctx, h.cfg, objectPath); rmErr != nil {
			logger.Warn("failed to remove orphaned media object",
				logger.ErrorField(rmErr),
				logger.String("object", objectPath))
		}
		writeEngineError(w, err)
		return
	}

	h.manager.AnnounceMedia(s.ID, trackID, clip, media)

	logger.Info("media uploaded",
		logger.String("session", s.ID),
		logger.String("track", trackID),
		logger.String("object", objectPath),
		logger.Float64("duration", duration),
		logger.Int64("size", size))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"clip":  clip,
		"media": media,
	})
}

// probeDuration 取素材时长：先查缓存，未命中时跑 ffprobe 并回填。
// 探测失败返回 0，片段会落到默认时长。
func (h *APIHandler) probeDuration(ctx context.Context, objectPath, localPath string) float64 {
	if h.probeCache != nil {
		if d, ok, err := h.probeCache.GetDuration(ctx, objectPath); err == nil && ok {
			return d
		}
	}
	if h.prober == nil {
		return 0
	}

	d, err := h.prober.Duration(ctx, localPath)
	if err != nil {
		logger.Warn("media probe failed",
			logger.ErrorField(err),
			logger.String("object", objectPath))
		return 0
	}
	if h.probeCache != nil {
		if err := h.probeCache.SetDuration(ctx, objectPath, d); err != nil {
			logger.Warn("failed to cache probe result", logger.ErrorField(err))
		}
	}
	return d
}
