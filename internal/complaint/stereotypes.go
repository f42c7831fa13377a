package complaint

import (
	"context"
	"strings"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/validation"
	"complaintdesk/backend/internal/workflow"
)

type StereotypeInput struct {
	Label       string `json:"label" validate:"notblank,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

func canTag(r models.Role) bool {
	return r == models.RoleHandler || r == models.RoleAdmin
}

// CreateStereotype adds a label to the catalogue. Labels are unique ignoring case.
func (s *Service) CreateStereotype(ctx context.Context, a workflow.Actor, in StereotypeInput) (*models.Stereotype, error) {
	if !canTag(a.Role) {
		return nil, apperr.Forbidden("auth.role_forbidden", "your role may not manage stereotypes")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	st := &models.Stereotype{
		Label:       strings.TrimSpace(in.Label),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.Storage.CreateStereotype(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) ListStereotypes(ctx context.Context) ([]models.Stereotype, error) {
	return s.Storage.ListStereotypes(ctx)
}

// Tag attaches a stereotype to a complaint. Tagging twice is a warning, not an error.
func (s *Service) Tag(ctx context.Context, a workflow.Actor, complaintID, stereotypeID uint) (workflow.Outcome, error) {
	if !canTag(a.Role) {
		return workflow.Outcome{}, apperr.Forbidden("auth.role_forbidden", "your role may not tag complaints")
	}
	if _, err := s.Storage.GetComplaint(ctx, complaintID); err != nil {
		return workflow.Outcome{}, err
	}
	if _, err := s.Storage.GetStereotype(ctx, stereotypeID); err != nil {
		return workflow.Outcome{}, err
	}

	added, err := s.Storage.AddComplaintStereotype(ctx, &models.ComplaintStereotype{
		ComplaintID:  complaintID,
		StereotypeID: stereotypeID,
		TaggedBy:     a.ID,
	})
	if err != nil {
		return workflow.Outcome{}, err
	}
	if !added {
		return workflow.Warning("stereotype.already_tagged"), nil
	}
	s.log.Info().Uint("complaint_id", complaintID).Uint("stereotype_id", stereotypeID).Msg("Complaint tagged")
	return workflow.Success("stereotype.tagged"), nil
}

// Untag removes a stereotype from a complaint. Removing a missing tag changes nothing.
func (s *Service) Untag(ctx context.Context, a workflow.Actor, complaintID, stereotypeID uint) (workflow.Outcome, error) {
	if !canTag(a.Role) {
		return workflow.Outcome{}, apperr.Forbidden("auth.role_forbidden", "your role may not tag complaints")
	}
	removed, err := s.Storage.RemoveComplaintStereotype(ctx, complaintID, stereotypeID)
	if err != nil {
		return workflow.Outcome{}, err
	}
	if !removed {
		return workflow.Info("stereotype.not_tagged"), nil
	}
	return workflow.Success("stereotype.untagged"), nil
}
