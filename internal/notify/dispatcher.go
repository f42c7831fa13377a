package notify

import (
	"context"
	"encoding/json"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/rs/zerolog"
)

// Sink is an external delivery channel such as e-mail or Telegram.
type Sink interface {
	Name() string
	// Send delivers n to u. Sinks skip users they cannot reach and return nil.
	Send(ctx context.Context, u *models.User, n models.Notification) error
}

// Dispatcher fans committed notifications out to Redis and the sinks, and
// serves the notification inbox. Delivery is best effort and never fails the
// operation that produced the notification.
type Dispatcher struct {
	store  storage.Storage
	broker storage.Broker
	sinks  []Sink
	queue  chan models.Notification
	log    zerolog.Logger
}

func NewDispatcher(store storage.Storage, broker storage.Broker, log zerolog.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		store:  store,
		broker: broker,
		sinks:  sinks,
		queue:  make(chan models.Notification, config.NotificationSendQueue),
		log:    log.With().Str("component", "notify").Logger(),
	}
}

// Dispatch publishes every notification and queues it for the sinks.
func (d *Dispatcher) Dispatch(ctx context.Context, notifications []models.Notification) {
	ctx = context.WithoutCancel(ctx)
	for _, n := range notifications {
		d.publish(ctx, n)
		if len(d.sinks) == 0 {
			continue
		}
		select {
		case d.queue <- n:
		default:
			d.log.Warn().Uint("notification_id", n.ID).Uint("user_id", n.UserID).Msg("Send queue full, skipping external delivery")
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, n models.Notification) {
	if d.broker == nil {
		return
	}
	if err := d.broker.IncrUnread(ctx, n.UserID); err != nil {
		d.log.Warn().Err(err).Uint("user_id", n.UserID).Msg("Failed to bump unread counter")
	}
	payload, err := json.Marshal(n)
	if err != nil {
		d.log.Error().Err(err).Uint("notification_id", n.ID).Msg("Failed to encode notification")
		return
	}
	if err := d.broker.PublishNotification(ctx, n.UserID, payload); err != nil {
		d.log.Warn().Err(err).Uint("user_id", n.UserID).Msg("Failed to publish notification")
	}
}

// Run drains the send queue into the sinks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.queue:
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n models.Notification) {
	u, err := d.store.GetUserByID(ctx, n.UserID)
	if err != nil {
		d.log.Warn().Err(err).Uint("user_id", n.UserID).Msg("Recipient lookup failed")
		return
	}
	for _, s := range d.sinks {
		if err := s.Send(ctx, u, n); err != nil {
			d.log.Warn().Err(err).Str("sink", s.Name()).Uint("user_id", u.ID).Msg("Notification delivery failed")
		}
	}
}

// List returns the newest notifications of a user.
func (d *Dispatcher) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > config.MaxPageSize {
		limit = config.DefaultPageSize
	}
	return d.store.ListNotifications(ctx, userID, unreadOnly, limit)
}

// UnreadCount reads the cached counter and falls back to counting rows, which
// also warms the cache.
func (d *Dispatcher) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if d.broker != nil {
		n, ok, err := d.broker.GetUnread(ctx, userID)
		if err == nil && ok {
			return n, nil
		}
		if err != nil {
			d.log.Warn().Err(err).Uint("user_id", userID).Msg("Unread counter unavailable")
		}
	}

	n, err := d.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, err
	}
	if d.broker != nil {
		if err := d.broker.SetUnread(ctx, userID, n); err != nil {
			d.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to cache unread counter")
		}
	}
	return n, nil
}

// MarkRead marks ids (or every notification when ids is empty) as read and
// drops the cached counter.
func (d *Dispatcher) MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	n, err := d.store.MarkNotificationsRead(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	if d.broker != nil {
		if err := d.broker.ResetUnread(ctx, userID); err != nil {
			d.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to reset unread counter")
		}
	}
	return n, nil
}
