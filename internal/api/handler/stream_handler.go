package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cbtutils/novedades/internal/infrastructure/broadcast"
)

const (
	writeWait      = 10 * time.Second
	maxClientFrame = 512
)

// Subscriber hands out live event subscriptions.
type Subscriber interface {
	Subscribe() (*broadcast.Subscription, error)
}

// StreamHandler pushes change events to websocket clients. The stream is
// one-way: anything the client sends is read and dropped.
type StreamHandler struct {
	hub          Subscriber
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	log          zerolog.Logger
}

// NewStreamHandler accepts any Origin when allowedOrigin is "*" or empty.
func NewStreamHandler(hub Subscriber, allowedOrigin string, pingInterval time.Duration, log zerolog.Logger) *StreamHandler {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &StreamHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigin),
		},
		pingInterval: pingInterval,
		log:          log,
	}
}

func originChecker(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return allowed == "" || allowed == "*" || origin == "" || origin == allowed
	}
}

// Serve handles GET /ws.
//
// @Summary      Live change events
// @Description  Websocket stream of {id, event, resource_id, data, occurred_at} messages. No replay.
// @Tags         stream
// @Success      101
// @Failure      503  {object}  errorResponse
// @Router       /ws [get]
func (h *StreamHandler) Serve(c echo.Context) error {
	// Subscribe before the handshake completes so nothing published after the
	// client sees the upgrade can be missed.
	sub, err := h.hub.Subscribe()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "stream unavailable").SetInternal(err)
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response.
		return nil
	}
	defer conn.Close()

	log := h.log.With().Str("remote", c.RealIP()).Logger()
	log.Debug().Msg("stream client connected")
	defer log.Debug().Msg("stream client disconnected")

	pongWait := 2 * h.pingInterval
	conn.SetReadLimit(maxClientFrame)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				log.Info().Msg("stream client dropped by hub")
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscription closed"),
					time.Now().Add(writeWait))
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}
