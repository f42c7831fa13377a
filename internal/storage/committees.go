package storage

import (
	"context"
	"errors"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateCommittee(ctx context.Context, c *models.Committee) error {
	err := s.db(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("committee.duplicate", "a committee with this name already exists")
	}
	if err != nil {
		return apperr.Wrap(err, "failed to save committee")
	}
	return nil
}

func (s *Service) GetCommittee(ctx context.Context, id uint) (*models.Committee, error) {
	var c models.Committee
	if err := s.db(ctx).First(&c, id).Error; err != nil {
		return nil, lookupErr(err, "committee.not_found", "committee")
	}
	return &c, nil
}

func (s *Service) ListCommittees(ctx context.Context) ([]models.Committee, error) {
	var list []models.Committee
	if err := s.db(ctx).Order("name ASC").Find(&list).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list committees")
	}
	return list, nil
}

func (s *Service) AppendStatusHistory(ctx context.Context, h *models.StatusHistory) error {
	if err := s.db(ctx).Create(h).Error; err != nil {
		return apperr.Wrap(err, "failed to record status history")
	}
	return nil
}

func (s *Service) ListStatusHistory(ctx context.Context, complaintID uint) ([]models.StatusHistory, error) {
	var list []models.StatusHistory
	if err := s.db(ctx).Where("complaint_id = ?", complaintID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list status history")
	}
	return list, nil
}
