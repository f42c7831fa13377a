package storage

import (
	"context"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
)

func (s *Service) CreateDecision(ctx context.Context, d *models.Decision) error {
	if err := s.db(ctx).Create(d).Error; err != nil {
		return apperr.Wrap(err, "failed to save decision")
	}
	return nil
}

func (s *Service) GetDecision(ctx context.Context, id uint) (*models.Decision, error) {
	var d models.Decision
	if err := s.db(ctx).First(&d, id).Error; err != nil {
		return nil, lookupErr(err, "decision.not_found", "decision")
	}
	return &d, nil
}

// FindFinalDecision returns the final decision for the triple, or nil.
func (s *Service) FindFinalDecision(ctx context.Context, complaintID, senderID, receiverID uint) (*models.Decision, error) {
	var list []models.Decision
	err := s.db(ctx).
		Where("complaint_id = ? AND sender_id = ? AND receiver_id = ? AND status = ?",
			complaintID, senderID, receiverID, string(models.DecisionFinal)).
		Limit(1).
		Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(err, "failed to check for an existing final decision")
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (s *Service) ListDecisions(ctx context.Context, complaintID uint) ([]models.Decision, error) {
	var list []models.Decision
	if err := s.db(ctx).Where("complaint_id = ?", complaintID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list decisions")
	}
	return list, nil
}

func (s *Service) CreateStereotypedReport(ctx context.Context, r *models.StereotypedReport) error {
	if err := s.db(ctx).Create(r).Error; err != nil {
		return apperr.Wrap(err, "failed to save stereotyped report")
	}
	return nil
}

func (s *Service) ListStereotypedReports(ctx context.Context, recipientID uint) ([]models.StereotypedReport, error) {
	var list []models.StereotypedReport
	err := s.db(ctx).Where("recipient_id = ?", recipientID).Order("id DESC").Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list stereotyped reports")
	}
	return list, nil
}
