package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cbtutils/novedades/internal/core/domain"
)

type stubAudit struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	err    error
}

func (s *stubAudit) InsertEvent(_ context.Context, ev domain.ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *stubAudit) snapshot() []domain.ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChangeEvent(nil), s.events...)
}

func changeEvent(name domain.EventName, id int64, seq string) domain.ChangeEvent {
	return domain.ChangeEvent{ID: seq, Name: name, ResourceID: id}
}

func waitFor(t *testing.T, repo *stubAudit, n int) []domain.ChangeEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := repo.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d audit records", n)
	return nil
}

func TestDispatcher_KeepsPerRecordOrder(t *testing.T) {
	repo := &stubAudit{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	seqs := []string{"a", "b", "c", "d", "e"}
	for _, s := range seqs {
		if err := d.Publish(ctx, changeEvent(domain.EventAnnouncementEdited, 7, s)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	got := waitFor(t, repo, len(seqs))
	for i, ev := range got {
		if ev.ID != seqs[i] {
			t.Fatalf("position %d: expected %s, got %s", i, seqs[i], ev.ID)
		}
	}
}

func TestDispatcher_SameKeySameShard(t *testing.T) {
	d := NewDispatcher(8, &stubAudit{}, zerolog.Nop())
	a := changeEvent(domain.EventEntityAdded, 3, "1")
	b := changeEvent(domain.EventEntityDeleted, 3, "2")

	if d.shardIndex(a.Key()) != d.shardIndex(b.Key()) {
		t.Fatalf("events of one record must share a worker")
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	d := NewDispatcher(1, &stubAudit{}, zerolog.Nop())

	// Not started: nothing drains the channel.
	var err error
	for i := 0; i <= channelBuffer; i++ {
		err = d.Publish(context.Background(), changeEvent(domain.EventEntityAdded, 1, "x"))
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDispatcher_InsertFailureKeepsWorking(t *testing.T) {
	repo := &stubAudit{err: errors.New("mongo down")}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	_ = d.Publish(ctx, changeEvent(domain.EventEntityAdded, 1, "1"))
	_ = d.Publish(ctx, changeEvent(domain.EventEntityAdded, 2, "2"))
	waitFor(t, repo, 2)

	cancel()
	d.Wait()
}
