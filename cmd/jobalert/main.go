package main

import (
	"context"
	"fmt"
	"os"

	"github.com/LJTian/JobAlert/internal/api"
	"github.com/LJTian/JobAlert/internal/collector"
	"github.com/LJTian/JobAlert/internal/config"
	"github.com/LJTian/JobAlert/internal/logger"
	"github.com/LJTian/JobAlert/internal/metrics"
	"github.com/LJTian/JobAlert/internal/notifier"
	"github.com/LJTian/JobAlert/internal/scheduler"
	"github.com/LJTian/JobAlert/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New(prometheus.DefaultRegisterer)

	// 运行记录是可选的；未配置 Postgres 时保持接口为 nil
	var (
		journal scheduler.Journal
		runs    api.RunLister
	)
	if cfg.JournalEnabled() {
		store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr, log)
		if err != nil {
			log.Fatal("init store failed", zap.Error(err))
		}
		journal, runs = store, store
	}

	s, err := scheduler.New(scheduler.Options{
		DailyAt:      cfg.DailyAt,
		PollInterval: cfg.PollInterval,
		Catalog:      collector.DefaultCatalog(),
		Harvester:    collector.NewHarvester(cfg.UserAgent, cfg.FetchTimeout, log, m),
		Sender:       notifier.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SenderEmail, cfg.SenderPassword, log, m),
		Journal:      journal,
		From:         cfg.SenderEmail,
		To:           cfg.ReceiverEmail,
		Logger:       log,
		Metrics:      m,
	})
	if err != nil {
		log.Fatal("init scheduler failed", zap.Error(err))
	}

	if cfg.APIEnabled() {
		go serveAPI(cfg, runs, s, log)
	}

	// 没有退出信号处理，进程被外部终止即结束
	if err := s.Run(context.Background()); err != nil {
		log.Error("scheduler stopped", zap.Error(err))
	}
}

func serveAPI(cfg *config.Config, runs api.RunLister, s *scheduler.Scheduler, log *zap.Logger) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(log))
	// 若配置了访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	api.NewServer(runs, s, prometheus.DefaultGatherer, log).RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Info("starting status api", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Error("status api exit", zap.Error(err))
	}
}
