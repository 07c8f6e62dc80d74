package main

import (
	"context"
	"fmt"
	"os"

	"github.com/LJTian/JobAlert/internal/collector"
	"github.com/LJTian/JobAlert/internal/config"
	"github.com/LJTian/JobAlert/internal/logger"
	"github.com/LJTian/JobAlert/internal/notifier"
	"github.com/LJTian/JobAlert/internal/scheduler"
	"github.com/LJTian/JobAlert/internal/storage"
	"go.uber.org/zap"
)

// 只执行一轮采集并发送邮件后退出：适合手动触发
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	var journal scheduler.Journal
	if cfg.JournalEnabled() {
		store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr, log)
		if err != nil {
			log.Fatal("init store failed", zap.Error(err))
		}
		journal = store
	}

	s, err := scheduler.New(scheduler.Options{
		DailyAt:   cfg.DailyAt,
		Catalog:   collector.DefaultCatalog(),
		Harvester: collector.NewHarvester(cfg.UserAgent, cfg.FetchTimeout, log, nil),
		Sender:    notifier.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SenderEmail, cfg.SenderPassword, log, nil),
		Journal:   journal,
		From:      cfg.SenderEmail,
		To:        cfg.ReceiverEmail,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("init scheduler failed", zap.Error(err))
	}

	status := s.RunOnce(context.Background())
	log.Info("collect done", zap.String("status", status))
}
