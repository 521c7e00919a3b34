package matchmaker

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/okian/payscout/pkg/metrics"
)

// slot tracks one session. issued counts reservations; latest is the newest
// committed request and cancel stops it.
type slot struct {
	issued uint64
	latest uint64
	cancel context.CancelFunc
}

// Sequencer orders requests per session. Committing a request cancels the
// previous in-flight one for the same session, and only the latest committed
// sequence number may deliver a result. Idle sessions expire after the TTL.
type Sequencer struct {
	mu    sync.Mutex
	slots *gocache.Cache
}

// Ticket is a reserved place in a session's sequence. It supersedes nothing
// until Commit is called.
type Ticket struct {
	Ctx context.Context
	Seq uint64

	s         *Sequencer
	sessionID string
	cancel    context.CancelFunc
}

// NewSequencer creates a sequencer whose idle sessions expire after ttl.
func NewSequencer(ttl time.Duration) *Sequencer {
	return &Sequencer{slots: gocache.New(ttl, ttl)}
}

// Reserve stamps a new request for sessionID without touching the request
// currently in flight. Call Commit once the request is accepted for
// processing and Done when it completes or is rejected.
func (s *Sequencer) Reserve(ctx context.Context, sessionID string) *Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := &slot{}
	if v, ok := s.slots.Get(sessionID); ok {
		cur = v.(*slot)
	}
	cur.issued++
	s.slots.SetDefault(sessionID, cur)
	metrics.UpdateMatchSessions(s.slots.ItemCount())

	reqCtx, cancel := context.WithCancel(ctx)
	return &Ticket{Ctx: reqCtx, Seq: cur.issued, s: s, sessionID: sessionID, cancel: cancel}
}

// Commit makes the ticket the session's latest request and cancels the one it
// replaces. A ticket already overtaken by a newer commit is canceled instead
// and Commit reports false.
func (t *Ticket) Commit() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	v, ok := t.s.slots.Get(t.sessionID)
	if !ok {
		v = &slot{issued: t.Seq}
	}
	cur := v.(*slot)
	if cur.latest > t.Seq {
		t.cancel()
		return false
	}
	if cur.cancel != nil {
		cur.cancel()
	}
	cur.latest, cur.cancel = t.Seq, t.cancel
	t.s.slots.SetDefault(t.sessionID, cur)
	return true
}

// Done releases the ticket's context. The session slot is left as is.
func (t *Ticket) Done() {
	t.cancel()

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if v, ok := t.s.slots.Get(t.sessionID); ok {
		if cur := v.(*slot); cur.latest == t.Seq {
			cur.cancel = nil
			t.s.slots.SetDefault(t.sessionID, cur)
		}
	}
}

// Begin reserves and commits in one step.
func (s *Sequencer) Begin(ctx context.Context, sessionID string) (context.Context, uint64, func()) {
	t := s.Reserve(ctx, sessionID)
	t.Commit()
	return t.Ctx, t.Seq, t.Done
}

// IsLatest reports whether seq is the newest committed request for sessionID.
func (s *Sequencer) IsLatest(sessionID string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.slots.Get(sessionID)
	return ok && v.(*slot).latest == seq
}

// Sessions returns the number of live session slots.
func (s *Sequencer) Sessions() int {
	return s.slots.ItemCount()
}
