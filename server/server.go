package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ClipForge/cache"
	"ClipForge/config"
	"ClipForge/core/media"
	"ClipForge/core/studio"
	"ClipForge/logger"
	"ClipForge/model"
	"ClipForge/storage"

	"github.com/gorilla/mux"
)

// NewRouter 组装完整路由。依赖通过 APIHandler 注入，测试可以只带一个
// Manager 而不连 MinIO/Redis。
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()

	// CORS 中间件：开发期 studio 前端跑在独立端口
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	// 会话生命周期
	router.HandleFunc("/api/sessions", h.CreateSessionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions", h.ListSessionsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/sessions/{id}", h.GetSessionHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/sessions/{id}", h.CloseSessionHandler).Methods(http.MethodDelete)

	// 轨道
	router.HandleFunc("/api/sessions/{id}/tracks", h.AddTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}", h.DeleteTrackHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/flags", h.TrackFlagHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/volume", h.TrackVolumeHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/name", h.TrackRenameHandler).Methods(http.MethodPut)

	// 素材与片段
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/media", h.UploadMediaHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/clips/{clipId}/split", h.ClipSplitHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/clips/{clipId}", h.ClipDeleteHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/clips/{clipId}/time", h.ClipTimeHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/clips/{clipId}/volume", h.ClipVolumeHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/sessions/{id}/tracks/{trackId}/clips/{clipId}/effects", h.ClipEffectHandler).Methods(http.MethodPost)

	// 标记
	router.HandleFunc("/api/sessions/{id}/markers", h.MarkerAddHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/markers/{markerId}", h.MarkerDeleteHandler).Methods(http.MethodDelete)

	// 视图状态
	router.HandleFunc("/api/sessions/{id}/zoom", h.ZoomHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/sessions/{id}/track-height", h.TrackHeightHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/sessions/{id}/current-time", h.CurrentTimeHandler).Methods(http.MethodPut)

	// 导出
	router.HandleFunc("/api/sessions/{id}/export/edl", h.ExportEDLHandler).Methods(http.MethodGet)

	// WebSocket
	router.HandleFunc("/ws/sessions/{id}", h.WSHandler).Methods(http.MethodGet)

	// 素材对象直出
	router.PathPrefix("/" + storage.MediaPrefix).Handler(NewMediaObjectHandler(h.cfg))

	// Studio 前端静态文件
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(h.cfg.WebAppDir)))

	return router
}

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})
	defer logger.Sync()

	// 初始化 MinIO 客户端
	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	// Connect to Redis
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer cache.CloseRedis()
	logger.Info("Successfully connected to Redis")

	ctx, stopAll := context.WithCancel(context.Background())
	defer stopAll()

	// 会话 Hub 与管理器
	hub := studio.NewHub()
	go hub.Run()
	defer hub.Stop()

	manager := studio.NewManager(hub, time.Duration(cfg.SessionIdleMin)*time.Minute)
	if cfg.SessionIdleMin > 0 {
		go manager.RunReaper(ctx, time.Minute)
	}

	prober := media.NewFFProbeProber(cfg.FFmpegPath)

	// 监听目录摄取：新素材广播给所有打开的会话
	if cfg.WatchDir != "" {
		watcher := media.NewWatcher(cfg, prober)
		watcher.OnMedia = func(ctx context.Context, m model.MediaDescriptor) {
			manager.AnnounceMediaToAll(m)
		}
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("watch folder ingest stopped", logger.ErrorField(err))
			}
		}()
		logger.Info("watch folder ingest enabled", logger.String("dir", cfg.WatchDir))
	}

	apiHandler := NewAPIHandler(manager, prober, cache.NewProbeCache(), cfg)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      NewRouter(apiHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 在goroutine中启动服务器
	go func() {
		logger.Info("Server starting", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	// 等待中断信号
	<-stop
	logger.Info("Shutting down server...")
	stopAll()

	// 创建一个5秒超时的上下文
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
