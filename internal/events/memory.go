package events

import (
	"context"
	"sync"

	"remindme/internal/metrics"
)

// MemoryBroker is an in-process Broker for the memory store driver and tests.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[string]map[*memorySubscription]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[*memorySubscription]struct{})}
}

// subscriptionBuffer is how many undelivered changes a subscriber may hold.
const subscriptionBuffer = 64

// Publish delivers c to every current subscriber of userID and never blocks.
// A subscriber whose buffer is full is closed instead: its stream ends and
// the client reconnects to a fresh snapshot.
func (b *MemoryBroker) Publish(_ context.Context, userID string, c Change) error {
	var full []*memorySubscription
	b.mu.RLock()
	for s := range b.subs[userID] {
		select {
		case s.out <- c:
		default:
			full = append(full, s)
		}
	}
	b.mu.RUnlock()
	for _, s := range full {
		metrics.SubscribersDropped.Inc()
		_ = s.Close()
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, userID string) (Subscription, error) {
	s := &memorySubscription{
		broker: b,
		userID: userID,
		out:    make(chan Change, subscriptionBuffer),
	}
	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[*memorySubscription]struct{})
	}
	b.subs[userID][s] = struct{}{}
	b.mu.Unlock()
	return s, nil
}

// Subscribers returns the number of open subscriptions for userID.
func (b *MemoryBroker) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}

type memorySubscription struct {
	broker *MemoryBroker
	userID string
	out    chan Change
	once   sync.Once
}

func (s *memorySubscription) C() <-chan Change { return s.out }

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		b := s.broker
		b.mu.Lock()
		delete(b.subs[s.userID], s)
		if len(b.subs[s.userID]) == 0 {
			delete(b.subs, s.userID)
		}
		b.mu.Unlock()
		close(s.out)
	})
	return nil
}

// MemoryRevisions is an in-process Revisions counter.
type MemoryRevisions struct {
	mu   sync.Mutex
	revs map[string]int64
}

func NewMemoryRevisions() *MemoryRevisions {
	return &MemoryRevisions{revs: make(map[string]int64)}
}

func (r *MemoryRevisions) Next(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revs[userID]++
	return r.revs[userID], nil
}
