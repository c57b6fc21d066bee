// Command jiobot runs the group food-ordering bot: it opens the SQLite
// store, connects the transport bridge, and pumps inbound events through the
// serial dispatcher. Inbound events arrive either through the webhook HTTP
// server or a long-poll loop, selected by TRANSPORT_MODE.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/supperjio/jiobot/internal/config"
	"github.com/supperjio/jiobot/internal/dispatch"
	"github.com/supperjio/jiobot/internal/httpapi"
	"github.com/supperjio/jiobot/internal/observability"
	"github.com/supperjio/jiobot/internal/repo"
	"github.com/supperjio/jiobot/internal/surface"
	"github.com/supperjio/jiobot/internal/sysutil"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	zerolog.TimeFieldFormat = time.RFC3339
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		sysutil.UsePrettyLogging()
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to set up tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("unable to open database")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Error().Err(err).Msg("unable to instrument gorm")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	client := surface.NewHTTPClient(cfg.TransportURL, cfg.BotName)
	if err := client.SetCommands(ctx, []surface.CommandSpec{
		{Name: "start", Description: "Start the bot"},
		{Name: "favourites", Description: "View your favourite items for each restaurant"},
	}); err != nil {
		log.Error().Err(err).Msg("unable to register command list")
	}

	d := dispatch.New(db, client, dispatch.Config{
		CooldownRPS:   cfg.CooldownRPS,
		CooldownBurst: cfg.CooldownBurst,
		InboxTTL:      cfg.InboxTTL,
	})

	events := make(chan surface.Event, cfg.QueueSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.Run(ctx, events)
	}()

	log.Info().
		Str("mode", cfg.Mode).
		Str("version", version).
		Str("db", cfg.DBPath).
		Msg("jiobot starting")

	switch cfg.Mode {
	case config.ModePoll:
		runPoller(ctx, client, events, cfg.PollTimeout)
	default:
		runWebhookServer(ctx, cfg, events)
	}

	close(events)
	wg.Wait()
	log.Info().Msg("jiobot stopped")
}

// runPoller long-polls the bridge and forwards batches to the dispatcher
// until ctx is cancelled. Poll errors back off briefly instead of spinning.
func runPoller(ctx context.Context, client *surface.HTTPClient, events chan<- surface.Event, timeout time.Duration) {
	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}

		batch, err := client.Poll(ctx, offset, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("poll failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}

		for _, ev := range batch {
			if ev.UpdateID >= offset {
				offset = ev.UpdateID + 1
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// runWebhookServer serves the webhook and operational endpoints until ctx is
// cancelled, then drains in-flight requests.
func runWebhookServer(ctx context.Context, cfg config.Config, events chan<- surface.Event) {
	r := gin.New()
	httpapi.RegisterRoutes(r, cfg, events)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	<-done
}
