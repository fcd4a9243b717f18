package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bode-andarilho/agenda/internal/api"
	"bode-andarilho/agenda/internal/auth"
	"bode-andarilho/agenda/internal/bot"
	"bode-andarilho/agenda/internal/catalog"
	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/config"
	"bode-andarilho/agenda/internal/db"
	"bode-andarilho/agenda/internal/db/repositories"
	"bode-andarilho/agenda/internal/jobs"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/metrics"
	"bode-andarilho/agenda/internal/middleware"
	"bode-andarilho/agenda/internal/providers"
	"bode-andarilho/agenda/internal/routes"
	"bode-andarilho/agenda/internal/services"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Agenda bot starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orm, err := db.InitORM(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("Failed to connect to database (GORM)", "error", err)
	}
	sqlxDB, err := db.InitSQLX(cfg.DatabaseURL, orm)
	if err != nil {
		logging.Fatal("Failed to connect to database (sqlx)", "error", err)
	}

	var cache common.CacheInterface
	if cfg.RedisAddr != "" {
		cache = common.NewRedisCacheService(common.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
	} else {
		logging.Info("REDIS_ADDR not set, using in-memory cache")
		cache = common.NewCacheService(10*time.Minute, 5*time.Minute)
	}
	defer cache.Close()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)
	loc := cfg.Location()
	cat := catalog.Default()

	// repositories and services
	memberRepo := repositories.NewMemberRepository(orm)
	eventRepo := repositories.NewEventRepository(orm)
	confirmationRepo := repositories.NewConfirmationRepository(orm)
	statsRepo := repositories.NewAttendanceStatsRepository(sqlxDB)

	members := services.NewMemberService(memberRepo)
	ledger := services.NewAttendanceLedger(eventRepo, confirmationRepo, memberRepo, metricsReg)
	directory := services.NewEventDirectory(eventRepo, statsRepo, cache, cat, metricsReg, loc)
	events := services.NewEventService(eventRepo, ledger, directory, loc)

	if cfg.ExportSigningKey == "" {
		logging.Warn("EXPORT_SIGNING_KEY not set, attendee export links are disabled")
	}
	signer := common.NewURLSigner([]byte(cfg.ExportSigningKey), cache)

	telegram, err := providers.NewTelegramProvider(cfg.TelegramAPIURL, cfg.TelegramToken)
	if err != nil {
		logging.Fatal("Failed to connect to Telegram", "error", err)
	}

	agenda, err := bot.New(bot.Deps{
		Transport: telegram,
		Roles:     auth.NewGate(members, cfg.AdminUserID),
		Members:   members,
		Directory: directory,
		Events:    events,
		Ledger:    ledger,
		Catalog:   cat,
		Signer:    signer,
		Metrics:   metricsReg,
	}, bot.Settings{
		DefaultChannelID: cfg.DefaultChannelID,
		Location:         loc,
		SessionIdle:      cfg.SessionIdleTimeout,
		PublicBaseURL:    cfg.PublicBaseURL,
		ExportLinkTTL:    cfg.ExportLinkTTL,
	})
	if err != nil {
		logging.Fatal("Failed to build bot", "error", err)
	}

	if cfg.WebhookSecret != "" && strings.HasPrefix(cfg.PublicBaseURL, "https://") {
		hookURL := strings.TrimRight(cfg.PublicBaseURL, "/") + "/webhook/" + cfg.WebhookSecret
		if err := telegram.SetWebhook(ctx, hookURL, cfg.WebhookSecret); err != nil {
			logging.Error("Failed to register Telegram webhook", "error", err)
		} else {
			logging.Info("Telegram webhook registered", "base_url", cfg.PublicBaseURL)
		}
	}

	reminders := jobs.NewReminderJob(directory, ledger, telegram, cache, metricsReg, loc)
	jobs.InitializeJobs(ctx, reminders, cfg.ReminderCron)

	upSince := time.Now()
	handlers := api.NewHandlers(&api.Dependencies{
		Bot:           agenda,
		Acks:          telegram,
		Limiter:       middleware.NewKeyedLimiter[int64](cfg.InteractionsPerSecond, cfg.InteractionBurst, 10*time.Minute),
		WebhookSecret: cfg.WebhookSecret,
		Signer:        signer,
		Events:        directory,
		Attendees:     ledger,
		DB:            statsRepo,
		Cache:         cache,
	})
	router := routes.RegisterRoutes(handlers, metricsReg, routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		UpSince:     upSince,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "addr", cfg.HTTPAddr, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
	if sqlDB, err := orm.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
