package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ClipForge/config"
	"ClipForge/logger"
	"ClipForge/model"
	"ClipForge/storage"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Watcher ingests media files dropped into a local folder: each new file is
// uploaded to the object store, probed for duration and announced through
// OnMedia. The shell decides which track the media lands on.
type Watcher struct {
	cfg    *config.Config
	prober Prober

	// OnMedia 每个新素材入库后回调一次
	OnMedia func(ctx context.Context, media model.MediaDescriptor)
}

// NewWatcher 创建监听目录摄取器
func NewWatcher(cfg *config.Config, prober Prober) *Watcher {
	return &Watcher{cfg: cfg, prober: prober}
}

// Run watches the configured directory until ctx is cancelled. Errors on
// individual files are logged and skipped; the loop keeps running.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.cfg.WatchDir); err != nil {
		return err
	}

	logger.Info("watch folder ingest started", logger.String("dir", w.cfg.WatchDir))

	processed := make(map[string]bool)
	for {
		select {
		case event := <-watcher.Events:
			if noteEvent(processed, event) {
				w.ingest(ctx, event.Name)
			}

		case err := <-watcher.Errors:
			logger.Warn("watcher error", logger.ErrorField(err))

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// noteEvent 维护去重集合，返回事件是否需要摄取。
// 文件被删掉或移走后要忘记它，同名文件再丢进来还能触发摄取。
func noteEvent(processed map[string]bool, event fsnotify.Event) bool {
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		delete(processed, event.Name)
		return false
	}
	if event.Op&fsnotify.Create != fsnotify.Create {
		return false
	}
	if processed[event.Name] {
		return false
	}
	processed[event.Name] = true
	return true
}

// ingest uploads one dropped file, probes it and fires OnMedia.
func (w *Watcher) ingest(ctx context.Context, path string) {
	name := filepath.Base(path)
	// 隐藏文件和编辑器的临时文件直接跳过
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") || strings.HasSuffix(name, ".part") {
		return
	}

	// 等文件写完再读，避免读到半个文件
	settle := time.Duration(w.cfg.WatchSettleMs) * time.Millisecond
	if !waitForStableSize(ctx, path, settle) {
		logger.Warn("watched file never settled, skipping", logger.String("file", name))
		return
	}

	objectName := storage.MediaPrefix + "ingest/" + uuid.NewString() + strings.ToLower(filepath.Ext(name))
	url, err := storage.UploadLocalFile(ctx, w.cfg, objectName, path, model.ContentTypeForFile(name))
	if err != nil {
		logger.Error("watch folder upload failed",
			logger.ErrorField(err),
			logger.String("file", name))
		return
	}

	duration, err := w.prober.Duration(ctx, path)
	if err != nil {
		// 探测失败不挡摄取，时长交给时间线兜底
		logger.Warn("probe failed for watched file",
			logger.ErrorField(err),
			logger.String("file", name))
		duration = 0
	}

	media := model.MediaDescriptor{
		Name:      name,
		Duration:  duration,
		MediaType: model.MediaKindForFile(name),
		URL:       url,
		File:      objectName,
	}

	logger.Info("watch folder media ingested",
		logger.String("file", name),
		logger.String("object", objectName),
		logger.Float64("duration", duration))

	if w.OnMedia != nil {
		w.OnMedia(ctx, media)
	}
}

// waitForStableSize polls the file size until two consecutive reads agree.
// Returns false if the file disappears or ctx is cancelled first.
func waitForStableSize(ctx context.Context, path string, settle time.Duration) bool {
	if settle <= 0 {
		settle = 100 * time.Millisecond
	}
	var lastSize int64 = -1
	for i := 0; i < 20; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(settle):
		}
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		if info.Size() == lastSize {
			return true
		}
		lastSize = info.Size()
	}
	return false
}
