// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"advent-calendar/internal/calendar"
	"advent-calendar/internal/config"
	"advent-calendar/internal/domain/ports/repository"
	pg "advent-calendar/internal/infra/db/postgres"
	"advent-calendar/internal/infra/i18n"
	"advent-calendar/internal/infra/logging"
	"advent-calendar/internal/infra/memory"
	"advent-calendar/internal/infra/metrics"
	red "advent-calendar/internal/infra/redis"
	"advent-calendar/internal/infra/sched"
	"advent-calendar/internal/infra/web"
	"advent-calendar/internal/usecase"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted ids)")
	nowFlag := flag.String("now", "", "pin the clock to an RFC3339 instant (calendar mode only)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	var clock calendar.Clock = calendar.SystemClock{}
	if *nowFlag != "" {
		t, err := time.Parse(time.RFC3339, *nowFlag)
		if err != nil {
			log.Fatalf("--now: %v", err)
		}
		clock = calendar.FixedClock(t)
		logger.Warn().Time("now", t).Msg("clock pinned")
	}

	// ---- Storage ----
	repo, locker, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore()

	// ---- Use cases ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Calendar.Locale)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}
	settings := cfg.Calendar.Settings()
	calendarUC := usecase.NewCalendarUseCase(
		settings, clock, cfg.Calendar.OfferTexts(), translator,
		repo, locker, cfg.Calendar.StorageKey, logger,
	)
	tracker := usecase.NewTodayTracker(calendarUC, logger)

	logger.Info().
		Str("mode", string(settings.Mode)).
		Int("year", settings.Year).
		Str("month", settings.Month.String()).
		Str("driver", cfg.Storage.Driver).
		Str("locale", translator.Lang()).
		Msg("advent calendar configured")

	// ---- Refresh worker ----
	worker := sched.NewRefreshWorker(cfg.Calendar.RefreshInterval, tracker, logger)
	worker.Start(ctx)
	defer worker.Stop()

	// ---- HTTP ----
	secret := cfg.HTTP.SessionSecret
	if secret == "" {
		logger.Warn().Msg("http.session_secret not set; using a random secret, visitors reset on restart")
		secret = uuid.NewString()
	}
	sessions := web.NewVisitorSessions(secret, cfg.HTTP.SecureCookie, cfg.Runtime.Dev, cfg.HTTP.SessionTTL)
	server, err := web.NewServer(calendarUC, tracker, sessions, translator, cfg.Calendar.RefreshInterval, cfg.Runtime.Dev, logger)
	if err != nil {
		log.Fatalf("web: %v", err)
	}
	if err := server.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
		logger.Error().Err(err).Msg("http server stopped")
		stop()
		worker.Stop()
		closeStore()
		os.Exit(1)
	}
	logger.Info().Msg("shutdown complete")
}

// openStore builds the opened-days repository for the configured driver,
// plus the per-visitor lock used to serialise opens.
func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.OpenedDaysRepository, repository.Locker, func(), error) {
	key := cfg.Calendar.StorageKey

	switch cfg.Storage.Driver {
	case config.DriverRedis:
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := red.NewOpenedDaysRepo(client, key, config.DriverRedis, logger)
		return repo, red.NewLocker(client), func() { _ = client.Close() }, nil

	case config.DriverPostgres:
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			return nil, nil, nil, err
		}
		pgRepo := pg.NewOpenedDaysRepo(pool, key, logger)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		if !cfg.Storage.Cache {
			return pgRepo, memory.NewLocker(), pool.Close, nil
		}
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		repo := pg.NewOpenedDaysCacheDecorator(pgRepo, client, key, cfg.Redis.TTL, logger)
		closeFn := func() {
			_ = client.Close()
			pool.Close()
		}
		return repo, red.NewLocker(client), closeFn, nil

	default:
		kv := memory.NewKV()
		repo := red.NewOpenedDaysRepo(kv, key, config.DriverMemory, logger)
		return repo, memory.NewLocker(), func() { _ = kv.Close() }, nil
	}
}
