package complaint

import (
	"context"
	"fmt"
	"strings"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/validation"
	"complaintdesk/backend/internal/workflow"
)

// Claim makes the acting handler the owner of an unclaimed complaint.
func (s *Service) Claim(ctx context.Context, a workflow.Actor, id uint) (*models.Complaint, workflow.Outcome, error) {
	c, err := s.transition(ctx, a, id, workflow.EventClaim, func(_ context.Context, ch *change) error {
		ch.notify(ch.complaint.SubmittedBy, "Your complaint #%d is now being handled", ch.complaint.ID)
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return c, workflow.Success("complaint.claimed"), nil
}

type CategorizeInput struct {
	Category models.Category `json:"category" validate:"required,category"`
}

// Categorize sets the category of a pending complaint. It may only run once.
func (s *Service) Categorize(ctx context.Context, a workflow.Actor, id uint, in CategorizeInput) (*models.Complaint, workflow.Outcome, error) {
	if err := validation.Struct(in); err != nil {
		return nil, workflow.Outcome{}, err
	}
	c, err := s.transition(ctx, a, id, workflow.EventCategorize, func(_ context.Context, ch *change) error {
		ch.complaint.Category = in.Category
		ch.set("category", string(in.Category))
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return c, workflow.Success("complaint.categorized"), nil
}

// Validate accepts a categorized complaint for further handling.
func (s *Service) Validate(ctx context.Context, a workflow.Actor, id uint) (*models.Complaint, workflow.Outcome, error) {
	c, err := s.transition(ctx, a, id, workflow.EventValidate, func(_ context.Context, ch *change) error {
		ch.notify(ch.complaint.SubmittedBy, "Your complaint #%d has been validated", ch.complaint.ID)
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return c, workflow.Success("complaint.validated"), nil
}

// DetailsInput carries the free text of a resolution, rejection or request.
type DetailsInput struct {
	Details string `json:"details" validate:"notblank,max=5000"`
}

// Resolve closes a complaint as resolved. When the actor is the target of the
// pending escalation, that escalation is resolved in the same transaction.
func (s *Service) Resolve(ctx context.Context, a workflow.Actor, id uint, in DetailsInput) (*models.Complaint, workflow.Outcome, error) {
	if err := validation.Struct(in); err != nil {
		return nil, workflow.Outcome{}, err
	}
	details := strings.TrimSpace(in.Details)

	c, err := s.transition(ctx, a, id, workflow.EventResolve, func(ctx context.Context, ch *change) error {
		now := s.now()
		ch.complaint.ResolutionDetails = &details
		ch.complaint.ResolutionDate = &now

		if ch.latest.IsPending() && ch.latest.EscalatedToID == a.ID {
			e := *ch.latest
			e.Status = models.EscalationResolved
			e.ResolvedAt = &now
			e.ResolutionDetails = &details
			if err := ch.tx.UpdateEscalation(ctx, &e); err != nil {
				return err
			}
			ch.set("escalation_id", e.ID)
			if e.OriginalHandlerID != nil {
				ch.notify(*e.OriginalHandlerID, "Complaint #%d was resolved by %s", ch.complaint.ID, workflow.RoleLabel(a.Role))
			}
		}
		if ch.complaint.HandlerID != nil {
			ch.notify(*ch.complaint.HandlerID, "Complaint #%d was resolved by %s", ch.complaint.ID, workflow.RoleLabel(a.Role))
		}
		ch.notify(ch.complaint.SubmittedBy, "Your complaint #%d has been resolved", ch.complaint.ID)
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return c, workflow.Success("complaint.resolved"), nil
}

// Reject closes a complaint as rejected.
func (s *Service) Reject(ctx context.Context, a workflow.Actor, id uint, in DetailsInput) (*models.Complaint, workflow.Outcome, error) {
	if err := validation.Struct(in); err != nil {
		return nil, workflow.Outcome{}, err
	}
	details := strings.TrimSpace(in.Details)

	c, err := s.transition(ctx, a, id, workflow.EventReject, func(_ context.Context, ch *change) error {
		now := s.now()
		ch.complaint.ResolutionDetails = &details
		ch.complaint.ResolutionDate = &now
		ch.notify(ch.complaint.SubmittedBy, "Your complaint #%d has been rejected: %s", ch.complaint.ID, details)
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return c, workflow.Success("complaint.rejected"), nil
}

// RequestMoreInfo asks the submitter for more evidence.
func (s *Service) RequestMoreInfo(ctx context.Context, a workflow.Actor, id uint, in DetailsInput) (*models.Complaint, workflow.Outcome, error) {
	if err := validation.Struct(in); err != nil {
		return nil, workflow.Outcome{}, err
	}
	msg := strings.TrimSpace(in.Details)

	c, err := s.transition(ctx, a, id, workflow.EventRequestMoreInfo, func(_ context.Context, ch *change) error {
		ch.set("request", msg)
		ch.notify(ch.complaint.SubmittedBy, "More information is needed for complaint #%d: %s", ch.complaint.ID, msg)
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return c, workflow.Success("complaint.info_requested"), nil
}

// ProvideInfo appends the submitter's answer to the description and returns
// the complaint to the handler's queue.
func (s *Service) ProvideInfo(ctx context.Context, a workflow.Actor, id uint, in DetailsInput) (*models.Complaint, workflow.Outcome, error) {
	if err := validation.Struct(in); err != nil {
		return nil, workflow.Outcome{}, err
	}
	info := strings.TrimSpace(in.Details)

	c, err := s.transition(ctx, a, id, workflow.EventProvideInfo, func(_ context.Context, ch *change) error {
		ch.complaint.Description = fmt.Sprintf("%s\n\nAdditional information (%s):\n%s",
			ch.complaint.Description, s.now().Format(config.DecisionDateFormat), info)
		if ch.complaint.HandlerID != nil {
			ch.notify(*ch.complaint.HandlerID, "The submitter provided more information for complaint #%d", ch.complaint.ID)
		}
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return c, workflow.Success("complaint.info_provided"), nil
}
