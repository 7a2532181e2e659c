package live

import (
	"log/slog"
	"sync"
)

// Table names a storage table that live queries can depend on.
type Table string

const (
	Users Table = "usuarios"
	Lists Table = "listas_mercado"
	Items Table = "items_mercado"
)

type subscription struct {
	tables map[Table]struct{}
	notify chan struct{}
}

// Broker fans out table change notifications to subscribers. Notifications
// carry no payload and coalesce: a subscriber that has not yet consumed the
// previous signal sees one pending signal, never a queue.
type Broker struct {
	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	logger *slog.Logger
}

// NewBroker creates a new Broker.
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[*subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers interest in the given tables. The returned channel
// receives a signal after each published change to any of them. The cancel
// func removes the subscription and closes the channel.
func (b *Broker) Subscribe(tables ...Table) (<-chan struct{}, func()) {
	sub := &subscription{
		tables: make(map[Table]struct{}, len(tables)),
		notify: make(chan struct{}, 1),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, sub)
			close(sub.notify)
			b.mu.Unlock()
		})
	}
	return sub.notify, cancel
}

// Publish signals every subscriber interested in any of the given tables.
// It never blocks. Calling Publish on a nil Broker is a no-op.
func (b *Broker) Publish(tables ...Table) {
	if b == nil || len(tables) == 0 {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if !sub.wants(tables) {
			continue
		}
		select {
		case sub.notify <- struct{}{}:
		default:
			// Signal already pending
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (s *subscription) wants(tables []Table) bool {
	for _, t := range tables {
		if _, ok := s.tables[t]; ok {
			return true
		}
	}
	return false
}
