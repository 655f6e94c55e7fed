// Command worker delivers queued email over SMTP.
package main

import (
	"log"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"resort/internal/config"
	"resort/internal/notification"
	"resort/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if cfg.RedisAddr == "" {
		lg.Fatal("REDIS_ADDR is required for the worker")
	}

	var mailer notification.Mailer = notification.NewLogMailer(lg)
	if cfg.SMTP.Enabled() {
		mailer = notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		lg.Warn("SMTP_HOST not set, queued email is logged only")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{"email": 1},
		},
	)
	mux := asynq.NewServeMux()
	mux.Handle(notification.TypeEmailSend, notification.EmailTaskHandler(mailer, lg))

	lg.Info("worker started", zap.String("redis", cfg.RedisAddr))
	if err := srv.Run(mux); err != nil {
		lg.Fatal("worker stopped", zap.Error(err))
	}
}
