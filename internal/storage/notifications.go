package storage

import (
	"context"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
)

func (s *Service) CreateNotification(ctx context.Context, n *models.Notification) error {
	if err := s.db(ctx).Create(n).Error; err != nil {
		return apperr.Wrap(err, "failed to save notification")
	}
	return nil
}

func (s *Service) ListNotifications(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := s.db(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []models.Notification
	if err := q.Order("id DESC").Find(&list).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list notifications")
	}
	return list, nil
}

// MarkNotificationsRead marks the given ids, or every unread notification when ids is empty.
func (s *Service) MarkNotificationsRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	q := s.db(ctx).Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	res := q.Update("is_read", true)
	if res.Error != nil {
		return 0, apperr.Wrap(res.Error, "failed to mark notifications read")
	}
	return res.RowsAffected, nil
}

func (s *Service) CountUnreadNotifications(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, apperr.Wrap(err, "failed to count notifications")
	}
	return n, nil
}
