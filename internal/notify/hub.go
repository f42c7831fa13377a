// Package notify delivers in-app notifications after the transaction that
// created them commits: Redis unread counters and pub/sub fan-out to
// websocket clients, plus optional e-mail and Telegram sinks.
package notify

import (
	"context"
	"encoding/json"

	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/rs/zerolog"
)

// Client is one live connection of a user.
type Client interface {
	GetUserID() uint
	// GetSendChannel is written to by the hub only.
	GetSendChannel() chan<- models.Notification
	Run()
	Close()
}

// Hub owns the set of connected clients. All map access happens on the Run goroutine.
type Hub struct {
	clients map[uint]map[Client]struct{}

	RegisterCh   chan Client
	UnregisterCh chan Client
	DeliverCh    chan models.Notification

	broker storage.Broker
	log    zerolog.Logger
	done   chan struct{}
}

func NewHub(broker storage.Broker, log zerolog.Logger) *Hub {
	return &Hub{
		clients:      make(map[uint]map[Client]struct{}),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		DeliverCh:    make(chan models.Notification, 64),
		broker:       broker,
		log:          log.With().Str("component", "hub").Logger(),
		done:         make(chan struct{}),
	}
}

// Register hands c to the hub. It returns false once the hub has stopped.
func (h *Hub) Register(c Client) bool {
	select {
	case h.RegisterCh <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c; it is safe to call after the hub has stopped.
func (h *Hub) Unregister(c Client) {
	select {
	case h.UnregisterCh <- c:
	case <-h.done:
	}
}

// StartPubSubListener forwards notifications published by any instance to DeliverCh.
func (h *Hub) StartPubSubListener(ctx context.Context) {
	if h.broker == nil {
		return
	}
	pubsub := h.broker.SubscribeNotifications(ctx)
	if pubsub == nil {
		return
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				userID, ok := storage.UserFromChannel(msg.Channel)
				if !ok {
					continue
				}
				var n models.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					h.log.Warn().Err(err).Str("channel", msg.Channel).Msg("Dropping malformed notification")
					continue
				}
				n.UserID = userID
				select {
				case h.DeliverCh <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}

// Run serves registrations and deliveries until ctx is cancelled, then closes
// every remaining client.
func (h *Hub) Run(ctx context.Context) {
	h.StartPubSubListener(ctx)
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					c.Close()
				}
			}
			h.clients = map[uint]map[Client]struct{}{}
			return

		case c := <-h.RegisterCh:
			set, ok := h.clients[c.GetUserID()]
			if !ok {
				set = make(map[Client]struct{})
				h.clients[c.GetUserID()] = set
			}
			set[c] = struct{}{}
			h.log.Debug().Uint("user_id", c.GetUserID()).Int("connections", len(set)).Msg("Client registered")

		case c := <-h.UnregisterCh:
			h.remove(c)

		case n := <-h.DeliverCh:
			for c := range h.clients[n.UserID] {
				select {
				case c.GetSendChannel() <- n:
				default:
					// Slow consumer: drop the connection rather than block the hub.
					h.log.Warn().Uint("user_id", n.UserID).Msg("Client send buffer full, disconnecting")
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c Client) {
	set, ok := h.clients[c.GetUserID()]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.GetUserID())
	}
	c.Close()
}
