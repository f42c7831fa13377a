package complaint

import (
	"context"
	"fmt"
	"strings"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/validation"
	"complaintdesk/backend/internal/workflow"
)

// HandOffInput names the authority a complaint is assigned or escalated to.
// When UserID is empty the first user holding Role is chosen.
type HandOffInput struct {
	Role    models.Role `json:"role" validate:"required"`
	UserID  *uint       `json:"user_id"`
	Details string      `json:"details" validate:"max=5000"`
}

func resolveTarget(ctx context.Context, tx storage.Storage, in HandOffInput) (*models.User, error) {
	if !in.Role.IsAuthority() {
		return nil, apperr.Validation("escalation.invalid_target",
			fmt.Sprintf("'%s' is not a responsible body", in.Role))
	}
	if in.UserID == nil {
		return tx.FirstUserByRole(ctx, in.Role)
	}
	u, err := tx.GetUserByID(ctx, *in.UserID)
	if err != nil {
		return nil, err
	}
	if u.Role != in.Role {
		return nil, apperr.Validation("escalation.invalid_target",
			fmt.Sprintf("user %d does not hold the role '%s'", u.ID, in.Role))
	}
	return u, nil
}

// Assign hands a validated complaint to an authority and moves it to in_progress.
func (s *Service) Assign(ctx context.Context, a workflow.Actor, id uint, in HandOffInput) (*models.Complaint, workflow.Outcome, error) {
	return s.handOff(ctx, a, id, in, workflow.EventAssign, models.ActionAssignment)
}

// Escalate raises a complaint to a higher authority.
func (s *Service) Escalate(ctx context.Context, a workflow.Actor, id uint, in HandOffInput) (*models.Complaint, workflow.Outcome, error) {
	return s.handOff(ctx, a, id, in, workflow.EventEscalate, models.ActionEscalation)
}

func (s *Service) handOff(
	ctx context.Context,
	a workflow.Actor,
	id uint,
	in HandOffInput,
	ev workflow.Event,
	action models.ActionType,
) (*models.Complaint, workflow.Outcome, error) {
	if err := validation.Struct(in); err != nil {
		return nil, workflow.Outcome{}, err
	}
	details := strings.TrimSpace(in.Details)

	var target *models.User
	c, err := s.transition(ctx, a, id, ev, func(ctx context.Context, ch *change) error {
		var err error
		target, err = resolveTarget(ctx, ch.tx, in)
		if err != nil {
			return err
		}

		handler := a.ID
		e := &models.Escalation{
			ComplaintID:       ch.complaint.ID,
			EscalatedTo:       target.Role,
			EscalatedToID:     target.ID,
			EscalatedByID:     a.ID,
			ActionType:        action,
			Status:            models.EscalationPending,
			OriginalHandlerID: &handler,
		}
		if err := ch.tx.CreateEscalation(ctx, e); err != nil {
			return err
		}

		verb := "assigned"
		if action == models.ActionEscalation {
			verb = "escalated"
		}
		ch.set("escalation_id", e.ID)
		ch.set("target_id", target.ID)
		ch.set("target_role", string(target.Role))
		ch.notify(target.ID, "Complaint #%d has been %s to you", ch.complaint.ID, verb)
		ch.notify(ch.complaint.SubmittedBy, "Your complaint #%d has been %s to the %s",
			ch.complaint.ID, verb, workflow.RoleLabel(target.Role))
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}

	reportType := config.ReportTypeAssignment
	if action == models.ActionEscalation {
		reportType = config.ReportTypeEscalation
	}
	s.report(ctx, c.ID, a.ID, reportType, handOffInfo(target, details))

	if action == models.ActionEscalation {
		return c, workflow.Success("complaint.escalated"), nil
	}
	return c, workflow.Success("complaint.assigned"), nil
}

func handOffInfo(target *models.User, details string) string {
	info := fmt.Sprintf("Target: %s (%s)", target.FullName(), workflow.RoleLabel(target.Role))
	if details != "" {
		info += "\nNotes: " + details
	}
	return info
}

// report generates the stereotyped report for the president. Failures are logged only.
func (s *Service) report(ctx context.Context, complaintID, handlerID uint, reportType, info string) {
	if s.reporter == nil {
		return
	}
	if err := s.reporter.StereotypedReport(ctx, complaintID, handlerID, reportType, info); err != nil {
		s.log.Warn().Err(err).
			Uint("complaint_id", complaintID).
			Str("report_type", reportType).
			Msg("Stereotyped report skipped")
	}
}

// ResolveEscalation lets the target authority close its hand-off. The
// complaint status does not change; the handler decides what happens next.
func (s *Service) ResolveEscalation(ctx context.Context, a workflow.Actor, escalationID uint, in DetailsInput) (*models.Escalation, workflow.Outcome, error) {
	if err := validation.Struct(in); err != nil {
		return nil, workflow.Outcome{}, err
	}
	details := strings.TrimSpace(in.Details)

	e, err := s.Storage.GetEscalation(ctx, escalationID)
	if err != nil {
		return nil, workflow.Outcome{}, err
	}

	var resolved models.Escalation
	_, err = s.transition(ctx, a, e.ComplaintID, workflow.EventResolveEscalation, func(ctx context.Context, ch *change) error {
		if ch.latest.ID != escalationID {
			return superseded()
		}
		now := s.now()
		resolved = *ch.latest
		resolved.Status = models.EscalationResolved
		resolved.ResolvedAt = &now
		resolved.ResolutionDetails = &details
		if err := ch.tx.UpdateEscalation(ctx, &resolved); err != nil {
			return err
		}

		ch.set("escalation_id", resolved.ID)
		for _, uid := range replyTo(ch.complaint, &resolved) {
			ch.notify(uid, "The %s responded on complaint #%d: %s", workflow.RoleLabel(a.Role), ch.complaint.ID, details)
		}
		ch.notify(ch.complaint.SubmittedBy, "The %s has responded on your complaint #%d",
			workflow.RoleLabel(a.Role), ch.complaint.ID)
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return &resolved, workflow.Success("escalation.resolved"), nil
}

// ForwardInput names the next authority in an escalation chain.
type ForwardInput struct {
	Role   models.Role `json:"role" validate:"required"`
	UserID *uint       `json:"user_id"`
}

// ForwardEscalation resolves the current hand-off with a forwarding note and
// opens a new pending escalation to the next authority.
func (s *Service) ForwardEscalation(ctx context.Context, a workflow.Actor, escalationID uint, in ForwardInput) (*models.Escalation, workflow.Outcome, error) {
	if err := validation.Struct(in); err != nil {
		return nil, workflow.Outcome{}, err
	}
	e, err := s.Storage.GetEscalation(ctx, escalationID)
	if err != nil {
		return nil, workflow.Outcome{}, err
	}

	var next *models.Escalation
	_, err = s.transition(ctx, a, e.ComplaintID, workflow.EventForwardEscalation, func(ctx context.Context, ch *change) error {
		if ch.latest.ID != escalationID {
			return superseded()
		}
		target, err := resolveTarget(ctx, ch.tx, HandOffInput{Role: in.Role, UserID: in.UserID})
		if err != nil {
			return err
		}
		if target.ID == a.ID {
			return apperr.Validation("escalation.invalid_target", "an escalation cannot be forwarded to yourself")
		}

		now := s.now()
		note := "Forwarded to " + workflow.RoleLabel(target.Role)
		cur := *ch.latest
		cur.Status = models.EscalationResolved
		cur.ResolvedAt = &now
		cur.ResolutionDetails = &note
		if err := ch.tx.UpdateEscalation(ctx, &cur); err != nil {
			return err
		}

		original := cur.OriginalHandlerID
		if original == nil {
			original = ch.complaint.HandlerID
		}
		next = &models.Escalation{
			ComplaintID:       ch.complaint.ID,
			EscalatedTo:       target.Role,
			EscalatedToID:     target.ID,
			EscalatedByID:     a.ID,
			ActionType:        models.ActionEscalation,
			Status:            models.EscalationPending,
			OriginalHandlerID: original,
		}
		if err := ch.tx.CreateEscalation(ctx, next); err != nil {
			return err
		}

		ch.set("escalation_id", cur.ID)
		ch.set("forwarded_to", next.ID)
		ch.notify(target.ID, "Complaint #%d has been escalated to you", ch.complaint.ID)
		if original != nil {
			ch.notify(*original, "Complaint #%d was forwarded to the %s", ch.complaint.ID, workflow.RoleLabel(target.Role))
		}
		ch.notify(ch.complaint.SubmittedBy, "Your complaint #%d has been escalated to the %s",
			ch.complaint.ID, workflow.RoleLabel(target.Role))
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return next, workflow.Success("escalation.forwarded"), nil
}

// replyTo lists who hears back when an authority answers: the handler that
// started the chain and the current owner.
func replyTo(c *models.Complaint, e *models.Escalation) []uint {
	var ids []uint
	if e.OriginalHandlerID != nil {
		ids = append(ids, *e.OriginalHandlerID)
	}
	if c.HandlerID != nil {
		ids = append(ids, *c.HandlerID)
	}
	return ids
}

func superseded() error {
	return apperr.Conflict("escalation.superseded", "the escalation is no longer the current one")
}

// Inbox lists the pending hand-offs addressed to the actor.
func (s *Service) Inbox(ctx context.Context, a workflow.Actor) ([]models.Escalation, error) {
	return s.Storage.ListPendingEscalationsFor(ctx, a.ID)
}
