// Package syncclient keeps an in-memory replica of the novedades board in
// step with the server: one full fetch seeds the view and the /ws change
// stream keeps it current.
package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultEventBuffer = 256
	maxErrorBody       = 4 << 10
)

// ErrStreamClosed is returned by Run when the server ends the change stream.
var ErrStreamClosed = errors.New("change stream closed")

// ChangeFunc observes the view after an event has been applied.
type ChangeFunc func(ev Event, v *View)

type Client struct {
	base       *url.URL
	httpClient *http.Client
	dialer     *websocket.Dialer
	buffer     int
	onChange   ChangeFunc
	view       *View
	log        zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

func WithOnChange(fn ChangeFunc) Option {
	return func(c *Client) { c.onChange = fn }
}

// WithEventBuffer sets how many stream events may queue while the initial
// fetch is in flight.
func WithEventBuffer(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// New returns a client for the server at baseURL (e.g. http://localhost:3002).
func New(baseURL string, log zerolog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dialer:     websocket.DefaultDialer,
		buffer:     defaultEventBuffer,
		view:       NewView(),
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) View() *View { return c.view }

// Run subscribes to the change stream, seeds the view from a full fetch and
// applies events until ctx is done or the stream ends. The stream is opened
// before the fetch so no change committed in between is lost; events that
// arrive during the fetch are applied after seeding.
//
// The connection and its reader goroutine are released before Run returns.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn, _, err := c.dialer.DialContext(ctx, c.streamURL(), nil)
	if err != nil {
		return fmt.Errorf("dial change stream: %w", err)
	}

	events := make(chan Event, c.buffer)
	readErr := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(events)
		readErr <- c.read(ctx, conn, events)
	}()
	defer func() {
		cancel()
		_ = conn.Close()
		wg.Wait()
	}()

	snap, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	c.view.Seed(snap)
	c.log.Info().
		Int("announcements", len(snap.Announcements)).
		Int("entities", len(snap.Entities)).
		Int("entity_types", len(snap.EntityTypes)).
		Msg("view seeded")
	c.notify(Event{Name: EventSnapshot})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return <-readErr
			}
			if err := c.view.Apply(ev); err != nil {
				c.log.Warn().Err(err).Str("event", ev.Name).Str("event_id", ev.ID).Msg("event skipped")
				continue
			}
			c.log.Debug().Str("event", ev.Name).Int64("resource_id", ev.ResourceID).Msg("event applied")
			c.notify(ev)
		}
	}
}

func (c *Client) notify(ev Event) {
	if c.onChange != nil {
		c.onChange(ev, c.view)
	}
}

func (c *Client) read(ctx context.Context, conn *websocket.Conn, out chan<- Event) error {
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return fmt.Errorf("%w: %d %s", ErrStreamClosed, closeErr.Code, closeErr.Text)
			}
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				c.log.Warn().Err(err).Msg("malformed event skipped")
				continue
			}
			return fmt.Errorf("read change stream: %w", err)
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// fetch loads the three lists concurrently.
func (c *Client) fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.getJSON(gctx, "/novedades", &snap.Announcements) })
	g.Go(func() error { return c.getJSON(gctx, "/entidades", &snap.Entities) })
	g.Go(func() error { return c.getJSON(gctx, "/tipos_entidades", &snap.EntityTypes) })
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("initial fetch: %w", err)
	}
	return snap, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.JoinPath(path).String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", path, errorMessage(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

// errorMessage extracts the "error" field of the server's error envelope.
func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return fmt.Sprintf("%s: %s", resp.Status, body.Error)
	}
	return resp.Status
}

func (c *Client) streamURL() string {
	u := *c.base.JoinPath("/ws")
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	return u.String()
}
