package storage

import (
	"context"
	"errors"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"gorm.io/gorm"
)

// CreateEscalation appends a hand-off. A second pending row for the same
// complaint violates the partial unique index and is reported as a Conflict.
func (s *Service) CreateEscalation(ctx context.Context, e *models.Escalation) error {
	err := s.db(ctx).Create(e).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("complaint.escalation_pending",
			"complaint already has a pending assignment or escalation")
	}
	if err != nil {
		return apperr.Wrap(err, "failed to save escalation")
	}
	return nil
}

// UpdateEscalation persists the resolution fields; the hand-off itself is immutable.
func (s *Service) UpdateEscalation(ctx context.Context, e *models.Escalation) error {
	err := s.db(ctx).Model(&models.Escalation{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"status":             string(e.Status),
			"resolved_at":        e.ResolvedAt,
			"resolution_details": e.ResolutionDetails,
		}).Error
	if err != nil {
		return apperr.Wrap(err, "failed to update escalation")
	}
	return nil
}

func (s *Service) GetEscalation(ctx context.Context, id uint) (*models.Escalation, error) {
	var e models.Escalation
	if err := s.db(ctx).First(&e, id).Error; err != nil {
		return nil, lookupErr(err, "escalation.not_found", "escalation")
	}
	return &e, nil
}

func (s *Service) latestIDs(ctx context.Context) *gorm.DB {
	return s.db(ctx).Model(&models.Escalation{}).Select("MAX(id)")
}

// LatestEscalation returns the row with MAX(id) for the complaint, or nil when
// the complaint was never handed off.
func (s *Service) LatestEscalation(ctx context.Context, complaintID uint) (*models.Escalation, error) {
	var list []models.Escalation
	err := s.db(ctx).
		Where("id = (?)", s.latestIDs(ctx).Where("complaint_id = ?", complaintID)).
		Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load latest escalation")
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// LatestEscalations resolves the latest hand-off for many complaints in one query.
// Complaints without escalations are absent from the map.
func (s *Service) LatestEscalations(ctx context.Context, complaintIDs []uint) (map[uint]*models.Escalation, error) {
	out := make(map[uint]*models.Escalation, len(complaintIDs))
	if len(complaintIDs) == 0 {
		return out, nil
	}
	var list []models.Escalation
	err := s.db(ctx).
		Where("id IN (?)", s.latestIDs(ctx).Where("complaint_id IN ?", complaintIDs).Group("complaint_id")).
		Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load latest escalations")
	}
	for i := range list {
		out[list[i].ComplaintID] = &list[i]
	}
	return out, nil
}

func (s *Service) ListEscalations(ctx context.Context, complaintID uint) ([]models.Escalation, error) {
	var list []models.Escalation
	if err := s.db(ctx).Where("complaint_id = ?", complaintID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list escalations")
	}
	return list, nil
}

// ListPendingEscalationsFor is the authority inbox, oldest first.
func (s *Service) ListPendingEscalationsFor(ctx context.Context, userID uint) ([]models.Escalation, error) {
	var list []models.Escalation
	err := s.db(ctx).
		Where("escalated_to_id = ? AND status = ?", userID, string(models.EscalationPending)).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list pending escalations")
	}
	return list, nil
}
