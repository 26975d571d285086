// Command novedades-watch mirrors the board from a running server and logs
// the active announcements after every change.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/cbtutils/novedades/pkg/logger"
	"github.com/cbtutils/novedades/pkg/syncclient"
)

type watchConfig struct {
	ServerURL      string        `env:"NOVEDADES_URL,   default=http://localhost:3002"`
	LogLevel       string        `env:"LOG_LEVEL,       default=info"`
	Pretty         bool          `env:"LOG_PRETTY,      default=true"`
	ReconnectDelay time.Duration `env:"RECONNECT_DELAY, default=3s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg watchConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		l := logger.New(logger.Options{})
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Pretty, Service: "novedades-watch"})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("watch failed")
	}
}

// run keeps a synchronizer attached to the server, starting over from a
// fresh fetch whenever the stream drops.
func run(ctx context.Context, cfg watchConfig, log zerolog.Logger) error {
	for {
		client, err := syncclient.New(cfg.ServerURL, log, syncclient.WithOnChange(func(ev syncclient.Event, v *syncclient.View) {
			printBoard(log, ev, v.ActiveAnnouncements(time.Now()))
		}))
		if err != nil {
			return err
		}

		err = client.Run(ctx)
		if ctx.Err() != nil {
			log.Info().Msg("stopped")
			return nil
		}
		if errors.Is(err, syncclient.ErrStreamClosed) {
			log.Warn().Err(err).Msg("stream closed by server")
		} else {
			log.Error().Err(err).Msg("synchronizer stopped")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(cfg.ReconnectDelay):
			log.Info().Str("url", cfg.ServerURL).Msg("reconnecting")
		}
	}
}

func printBoard(log zerolog.Logger, ev syncclient.Event, active []syncclient.Announcement) {
	log.Info().Str("event", ev.Name).Int("active", len(active)).Msg("board updated")
	for _, a := range active {
		log.Info().
			Int64("id", a.ID).
			Int("prioridad", a.Priority).
			Str("caduca", a.ExpiresOn).
			Ints64("entidades", a.EntityIDs).
			Msg(a.Title)
	}
}
