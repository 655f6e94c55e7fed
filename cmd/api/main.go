package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"resort/internal/config"
	"resort/internal/database"
	"resort/internal/modules/nightaudit"
	"resort/internal/notification"
	"resort/internal/pkg/lock"
	"resort/internal/pkg/logger"
	"resort/internal/repository"
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

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		lg.Fatal("db migrate failed", zap.Error(err))
	}
	store := repository.NewStore(db)

	var (
		locks  lock.Locker = lock.NewLocal()
		mailer notification.Mailer
		queue  *asynq.Client
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		locks = lock.NewRedis(rdb, lock.WithLogger(lg))
		lg.Info("using redis room locks", zap.String("addr", cfg.RedisAddr))
	}
	switch {
	case cfg.SMTP.Enabled() && cfg.RedisAddr != "":
		queue = asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer queue.Close()
		mailer = notification.NewQueueMailer(queue)
		lg.Info("email goes through the worker queue")
	case cfg.SMTP.Enabled():
		mailer = notification.NewSMTPMailer(smtpConfig(cfg.SMTP))
	default:
		mailer = notification.NewLogMailer(lg)
		lg.Warn("SMTP_HOST not set, email is logged only")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a := newApp(cfg, store, locks, mailer, lg)
	defer a.Close()

	scheduler, err := nightaudit.NewScheduler(a.audit, cfg.NightAuditHour, cfg.NightAuditMinute, cfg.Location, lg)
	if err != nil {
		lg.Fatal("night audit scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer func() { _ = scheduler.Stop() }()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.Int("gateways", a.gateways))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	lg.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("http shutdown", zap.Error(err))
	}
}

func smtpConfig(c config.SMTPConfig) notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		From:     c.From,
	}
}
