package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yldst-dev/anitime/internal/adapters/httpapi"
	"github.com/yldst-dev/anitime/internal/adapters/memorybus"
	"github.com/yldst-dev/anitime/internal/adapters/sqlite"
	"github.com/yldst-dev/anitime/internal/app"
	"github.com/yldst-dev/anitime/internal/buildinfo"
	"github.com/yldst-dev/anitime/internal/config"
	"github.com/yldst-dev/anitime/internal/domain"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// .env optionnel
		_ = err
	}

	def := config.Default()
	addr := flag.String("addr", def.Addr, "Adresse d'écoute (ex: 127.0.0.1:8080)")
	dbPath := flag.String("db", def.DBPath, "Chemin SQLite (ex: anitime.db)")
	apiBase := flag.String("api", def.APIBaseURL, "URL de base de l'API planning")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "anitime-server").Logger()
	log.Logger = logger

	logger.Info().Interface("build", buildinfo.Current()).Str("db", *dbPath).Msg("starting")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open db")
	}
	defer func() { _ = db.Close() }()

	bus := memorybus.New()
	snapshotRepo := sqlite.NewSnapshotRepository(db.SQL)
	subsSvc := app.NewSubscriptionService(snapshotRepo, bus)
	settingsRepo := sqlite.NewSettingsRepository(db.SQL)
	settingsSvc := app.NewSettingsService(settingsRepo)

	client := app.NewAnissiaClient(*apiBase)
	weekdayCache := app.NewWeekdayCache()
	resolver := app.NewWeekdayResolver(client, weekdayCache)

	// Limiteur global du fan-out des fetchs par jour, ajustable via settings.
	fetchLimiter := app.NewDynamicLimiter(domain.DefaultSettings().MaxConcurrentFetches)

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller := app.NewUpdatePoller(logger.With().Str("component", "poller").Logger(), client, subsSvc, fetchLimiter)
	if s, err := settingsSvc.Get(ctx); err == nil {
		poller.SetIntervals(
			time.Duration(s.GeneralRefreshSeconds)*time.Second,
			time.Duration(s.SubscriptionRefreshSeconds)*time.Second,
		)
		fetchLimiter.SetLimit(s.MaxConcurrentFetches)
	}
	go poller.Run(shutdownCtx)

	// Notifier: journalise les transitions non-lu après réconciliation.
	notifier := app.NewUpdateNotifier(logger.With().Str("component", "notifier").Logger(), bus, subsSvc)
	go notifier.Run(shutdownCtx)

	srv := httpapi.NewServer(logger, client, resolver, subsSvc, settingsSvc, poller, bus, func(updated domain.Settings) {
		poller.SetIntervals(
			time.Duration(updated.GeneralRefreshSeconds)*time.Second,
			time.Duration(updated.SubscriptionRefreshSeconds)*time.Second,
		)
		fetchLimiter.SetLimit(updated.MaxConcurrentFetches)
	})
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", *addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	logger.Info().Msg("bye")
}
