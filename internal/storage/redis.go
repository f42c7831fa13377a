package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"complaintdesk/backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// Broker is the Redis side: unread counters and per-user notification fan-out.
type Broker interface {
	PublishNotification(ctx context.Context, userID uint, payload []byte) error
	SubscribeNotifications(ctx context.Context) *redis.PubSub
	IncrUnread(ctx context.Context, userID uint) error
	GetUnread(ctx context.Context, userID uint) (int64, bool, error)
	SetUnread(ctx context.Context, userID uint, n int64) error
	ResetUnread(ctx context.Context, userID uint) error
}

const notificationChannelPrefix = "notifications:"

func unreadKey(userID uint) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// NotificationChannel is the pub/sub channel for one recipient.
func NotificationChannel(userID uint) string {
	return notificationChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// UserFromChannel parses the recipient id back out of a channel name.
func UserFromChannel(channel string) (uint, bool) {
	rest, ok := strings.CutPrefix(channel, notificationChannelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// PublishNotification publishes payload on the recipient's channel.
func (s *Service) PublishNotification(ctx context.Context, userID uint, payload []byte) error {
	return s.Redis.Publish(ctx, NotificationChannel(userID), payload).Err()
}

// SubscribeNotifications listens on every recipient channel. The unread
// counter keys share the prefix but are never published to.
func (s *Service) SubscribeNotifications(ctx context.Context) *redis.PubSub {
	return s.Redis.PSubscribe(ctx, notificationChannelPrefix+"[0-9]*")
}

// IncrUnread bumps the counter only when it is already cached, so a cold key
// is rebuilt from the database instead of starting from one.
func (s *Service) IncrUnread(ctx context.Context, userID uint) error {
	key := unreadKey(userID)
	n, err := s.Redis.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		return err
	}
	pipe := s.Redis.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, config.UnreadCounterTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// GetUnread returns the cached counter; ok is false on a cache miss.
func (s *Service) GetUnread(ctx context.Context, userID uint) (int64, bool, error) {
	n, err := s.Redis.Get(ctx, unreadKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (s *Service) SetUnread(ctx context.Context, userID uint, n int64) error {
	return s.Redis.Set(ctx, unreadKey(userID), n, config.UnreadCounterTTL).Err()
}

func (s *Service) ResetUnread(ctx context.Context, userID uint) error {
	return s.Redis.Del(ctx, unreadKey(userID)).Err()
}
