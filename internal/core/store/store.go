package store

import (
	"log/slog"
	"sync"

	"github.com/omarkov/insight-session/internal/core/domain"
)

// Observer is notified after each applied action, outside the store lock.
// Used for metrics and logging; must not dispatch re-entrantly from the
// callback goroutine it runs on (it runs on the dispatcher's goroutine).
type Observer func(action Action, next domain.Session)

// Store is the single source of truth for the session. Dispatch is
// synchronous and serialized: every dispatch applies the pure transition
// function and then wakes subscribers. Subscribers hold cap-1 coalescing
// channels, so a slow reactor observes the latest state rather than a
// queue of intermediates; that is the intended supersede semantics for
// navigation epochs.
type Store struct {
	mu        sync.Mutex
	state     domain.Session
	subs      map[int]chan struct{}
	nextSubID int
	observer  Observer
	logger    *slog.Logger
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		state:  domain.NewSession(),
		subs:   map[int]chan struct{}{},
		logger: logger,
	}
}

// SetObserver installs a post-dispatch hook. Must be called before the
// first Dispatch.
func (s *Store) SetObserver(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

// Snapshot returns a deep copy of the current session.
func (s *Store) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch applies one action and notifies subscribers. It never blocks on
// subscribers and never suspends.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	next := reduce(s.state, action)
	s.state = next
	observer := s.observer
	notified := s.state.Clone()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()

	s.logger.Debug("dispatch", "action", Name(action), "epoch", notified.NavigationEpoch)
	if observer != nil {
		observer(action, notified)
	}
}

// Subscribe registers a wake-up channel. The caller re-reads Snapshot after
// each receive. The returned cancel func releases the subscription.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
