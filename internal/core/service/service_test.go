package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/cbtutils/novedades/internal/core/domain"
)

type stubBroadcaster struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (b *stubBroadcaster) Publish(_ context.Context, ev domain.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *stubBroadcaster) names() []domain.EventName {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.EventName, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Name)
	}
	return out
}

// stubHasher "hashes" by prefixing, which keeps tests fast.
type stubHasher struct {
	err error
}

func (h stubHasher) Hash(_ context.Context, plaintext string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plaintext, nil
}

func (h stubHasher) Verify(_ context.Context, plaintext, digest string) (bool, error) {
	if !strings.HasPrefix(digest, "hashed:") {
		return false, errors.New("malformed digest")
	}
	return digest == "hashed:"+plaintext, nil
}

type stubTokens struct{}

func (stubTokens) Issue(userID int64, username string) (string, error) {
	return "token-for-" + username, nil
}
