package storagetest

import (
	"context"
	"sync"

	"complaintdesk/backend/internal/storage"

	"github.com/redis/go-redis/v9"
)

// Published is one message sent through Broker.
type Published struct {
	UserID  uint
	Payload []byte
}

// Broker records publishes and keeps unread counters in memory.
type Broker struct {
	mu        sync.Mutex
	counters  map[uint]int64
	published []Published
	Err       error
}

var _ storage.Broker = (*Broker)(nil)

func NewBroker() *Broker {
	return &Broker{counters: map[uint]int64{}}
}

func (b *Broker) PublishNotification(_ context.Context, userID uint, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.published = append(b.published, Published{UserID: userID, Payload: payload})
	return nil
}

// SubscribeNotifications is not supported in memory; the hub is tested with channels.
func (b *Broker) SubscribeNotifications(context.Context) *redis.PubSub {
	return nil
}

func (b *Broker) IncrUnread(_ context.Context, userID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	if n, ok := b.counters[userID]; ok {
		b.counters[userID] = n + 1
	}
	return nil
}

func (b *Broker) GetUnread(_ context.Context, userID uint) (int64, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return 0, false, b.Err
	}
	n, ok := b.counters[userID]
	return n, ok, nil
}

func (b *Broker) SetUnread(_ context.Context, userID uint, n int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.counters[userID] = n
	return nil
}

func (b *Broker) ResetUnread(_ context.Context, userID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	delete(b.counters, userID)
	return nil
}

// Published returns a copy of everything published so far.
func (b *Broker) Published() []Published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Published(nil), b.published...)
}
