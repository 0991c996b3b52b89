package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"equipment-lending-system/config"
	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/httpclient"
	"equipment-lending-system/internal/global/logger"
	"equipment-lending-system/internal/global/middleware"
	"equipment-lending-system/internal/global/pictureBed"
	"equipment-lending-system/internal/global/redis"
	"equipment-lending-system/internal/global/sentry"
	"equipment-lending-system/internal/module"
	"equipment-lending-system/internal/module/borrow"
	"equipment-lending-system/tools"

	"github.com/gin-gonic/gin"
)

var log *slog.Logger

func Init() {
	config.Init()
	log = logger.New("Server")

	if err := sentry.Init(); err != nil {
		log.Error("Sentry 初始化失败", "error", err)
	} else if config.Get().Sentry.Dsn != "" {
		log.Info("Sentry Enabled")
	}

	database.Init()
	tools.PanicOnErr(database.Seed(database.DB, log))

	redis.Init()

	httpclient.Init()

	tools.PanicOnErr(pictureBed.Init(context.Background()))

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Module: %s", m.GetName()))
		m.Init()
	}
}

func Run() {
	gin.SetMode(string(config.Get().Mode))
	r := gin.New()

	r.Use(sentry.Middleware())
	r.Use(middleware.SentryEnrichIP())
	switch config.Get().Mode {
	case config.ModeRelease:
		r.Use(middleware.Logger(logger.Get()))
	case config.ModeDebug:
		r.Use(gin.Logger())
	}
	r.Use(middleware.Cors())
	r.Use(middleware.Recovery())

	// 本地存储的头像等文件
	if storage := config.Get().Storage; storage.Home != "" && config.Get().S3.Bucket == "" {
		r.Static(storage.URLPrefix, storage.Home)
	}

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Router: %s", m.GetName()))
		m.InitRouter(r.Group("/" + config.Get().Prefix))
	}

	srv := &http.Server{
		Addr:    config.Get().Host + ":" + config.Get().Port,
		Handler: r,
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			tools.PanicOnErr(err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	borrow.StopOverdueSweep()
	sentry.Flush(2 * time.Second)
}
