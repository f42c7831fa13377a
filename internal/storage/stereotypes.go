package storage

import (
	"context"
	"errors"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Service) CreateStereotype(ctx context.Context, st *models.Stereotype) error {
	err := s.db(ctx).Create(st).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("stereotype.duplicate", "a stereotype with this label already exists")
	}
	if err != nil {
		return apperr.Wrap(err, "failed to save stereotype")
	}
	return nil
}

func (s *Service) GetStereotype(ctx context.Context, id uint) (*models.Stereotype, error) {
	var st models.Stereotype
	if err := s.db(ctx).First(&st, id).Error; err != nil {
		return nil, lookupErr(err, "stereotype.not_found", "stereotype")
	}
	return &st, nil
}

// FindStereotypeByLabel matches case-insensitively and returns nil when absent.
func (s *Service) FindStereotypeByLabel(ctx context.Context, label string) (*models.Stereotype, error) {
	var list []models.Stereotype
	err := s.db(ctx).Where("label_key = ?", models.NormalizeLabel(label)).Limit(1).Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(err, "failed to look up stereotype")
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (s *Service) ListStereotypes(ctx context.Context) ([]models.Stereotype, error) {
	var list []models.Stereotype
	if err := s.db(ctx).Order("label ASC").Find(&list).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list stereotypes")
	}
	return list, nil
}

// AddComplaintStereotype inserts the tag and reports false when it already existed.
func (s *Service) AddComplaintStereotype(ctx context.Context, cs *models.ComplaintStereotype) (bool, error) {
	res := s.db(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(cs)
	if res.Error != nil {
		return false, apperr.Wrap(res.Error, "failed to tag complaint")
	}
	return res.RowsAffected > 0, nil
}

// RemoveComplaintStereotype reports false when there was no such tag.
func (s *Service) RemoveComplaintStereotype(ctx context.Context, complaintID, stereotypeID uint) (bool, error) {
	res := s.db(ctx).
		Where("complaint_id = ? AND stereotype_id = ?", complaintID, stereotypeID).
		Delete(&models.ComplaintStereotype{})
	if res.Error != nil {
		return false, apperr.Wrap(res.Error, "failed to untag complaint")
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) ListComplaintStereotypes(ctx context.Context, complaintID uint) ([]models.Stereotype, error) {
	var list []models.Stereotype
	err := s.db(ctx).
		Joins("JOIN complaint_stereotypes cs ON cs.stereotype_id = stereotypes.id").
		Where("cs.complaint_id = ?", complaintID).
		Order("stereotypes.label ASC").
		Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list complaint stereotypes")
	}
	return list, nil
}
