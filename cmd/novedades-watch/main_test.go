package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

func TestWatchConfig_Defaults(t *testing.T) {
	var cfg watchConfig
	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MapLookuper(map[string]string{}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerURL != "http://localhost:3002" || cfg.ReconnectDelay != 3*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestWatchConfig_BadDuration(t *testing.T) {
	var cfg watchConfig
	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MapLookuper(map[string]string{"RECONNECT_DELAY": "soon"}),
	})
	if err == nil {
		t.Fatal("expected an error for an unparsable delay")
	}
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, watchConfig{ServerURL: srv.URL, ReconnectDelay: 10 * time.Millisecond}, zerolog.Nop())
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean stop, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the context ended")
	}
}
