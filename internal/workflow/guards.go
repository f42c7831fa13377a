package workflow

import (
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
)

func all(guards ...guardFunc) guardFunc {
	return func(c *models.Complaint, latest *models.Escalation, a Actor) error {
		for _, g := range guards {
			if err := g(c, latest, a); err != nil {
				return err
			}
		}
		return nil
	}
}

func owner(c *models.Complaint, _ *models.Escalation, a Actor) error {
	if c.HandlerID == nil {
		return apperr.Conflict("complaint.not_claimed", "claim the complaint before acting on it")
	}
	if *c.HandlerID != a.ID {
		return apperr.Forbidden("complaint.not_owner", "complaint is handled by another handler")
	}
	return nil
}

func ownerOrUnclaimed(c *models.Complaint, latest *models.Escalation, a Actor) error {
	if c.HandlerID == nil {
		return nil
	}
	return owner(c, latest, a)
}

func unclaimed(c *models.Complaint, _ *models.Escalation, _ Actor) error {
	if c.HandlerID != nil {
		return apperr.Conflict("complaint.already_claimed", "complaint already has a handler")
	}
	return nil
}

func categoryUnset(c *models.Complaint, _ *models.Escalation, _ Actor) error {
	if c.Category != models.CategoryUnset {
		return apperr.Conflict("complaint.already_categorized", "complaint is already categorized")
	}
	return nil
}

func categorySet(c *models.Complaint, _ *models.Escalation, _ Actor) error {
	if c.Category == models.CategoryUnset {
		return apperr.Conflict("complaint.category_required", "categorize the complaint before validating it")
	}
	return nil
}

func noPendingEscalation(_ *models.Complaint, latest *models.Escalation, _ Actor) error {
	if latest.IsPending() {
		return apperr.Conflict("complaint.escalation_pending", "complaint already has a pending assignment or escalation")
	}
	return nil
}

func noCommitteeRoute(c *models.Complaint, _ *models.Escalation, _ Actor) error {
	if c.NeedsCommittee {
		return apperr.Conflict("complaint.committee_route", "complaint is routed to a committee")
	}
	return nil
}

func committeeNotRequested(c *models.Complaint, _ *models.Escalation, _ Actor) error {
	if c.NeedsCommittee || c.CommitteeID != nil {
		return apperr.Conflict("committee.already_requested", "a committee has already been requested")
	}
	return nil
}

func committeeRequested(c *models.Complaint, _ *models.Escalation, _ Actor) error {
	if !c.NeedsCommittee {
		return apperr.Conflict("committee.not_requested", "mark the complaint as needing a committee first")
	}
	if c.CommitteeID != nil {
		return apperr.Conflict("committee.already_assigned", "a committee is already assigned")
	}
	return nil
}

func committeeAssigned(c *models.Complaint, _ *models.Escalation, _ Actor) error {
	if c.CommitteeID == nil {
		return apperr.Conflict("committee.required", "a committee must be assigned first")
	}
	return nil
}

func videoChatNotRequested(c *models.Complaint, _ *models.Escalation, _ Actor) error {
	if c.NeedsVideoChat {
		return apperr.Conflict("video_chat.already_requested", "a video chat has already been requested")
	}
	return nil
}

func videoChatOutstanding(c *models.Complaint, _ *models.Escalation, _ Actor) error {
	if !c.NeedsVideoChat {
		return apperr.Conflict("video_chat.not_requested", "no video chat was requested")
	}
	if c.VideoChatCompleted {
		return apperr.Conflict("video_chat.already_completed", "the video chat is already completed")
	}
	return nil
}

func submitter(c *models.Complaint, _ *models.Escalation, a Actor) error {
	if c.SubmittedBy != a.ID {
		return apperr.Forbidden("complaint.not_submitter", "only the submitter can provide more information")
	}
	return nil
}

func escalationTarget(_ *models.Complaint, latest *models.Escalation, a Actor) error {
	if !latest.IsPending() {
		return apperr.Conflict("escalation.not_pending", "there is no pending escalation to act on")
	}
	if latest.EscalatedToID != a.ID {
		return apperr.Forbidden("escalation.not_target", "you are not the target of the current escalation")
	}
	return nil
}

// guardResolve covers the two resolution paths: the committee route out of
// validated, and the authority route out of in_progress/escalated/assigned.
// The target of a pending escalation may resolve directly; anyone else waits
// for the escalation to be resolved.
func guardResolve(c *models.Complaint, latest *models.Escalation, a Actor) error {
	if c.Status == models.StatusValidated {
		if a.Role != models.RoleHandler {
			return apperr.Forbidden("complaint.not_owner", "complaint is handled by another handler")
		}
		if err := owner(c, latest, a); err != nil {
			return err
		}
		if c.CommitteeID == nil {
			return apperr.Conflict("committee.required", "a committee must be assigned before resolving a validated complaint")
		}
		if c.NeedsVideoChat && !c.VideoChatCompleted {
			return apperr.Conflict("video_chat.pending", "the requested video chat has not been completed")
		}
		return nil
	}

	if latest.IsPending() {
		if latest.EscalatedToID == a.ID {
			return nil
		}
		return apperr.Conflict("complaint.escalation_pending", "the responsible authority has not acted yet")
	}
	if a.Role != models.RoleHandler {
		return apperr.Forbidden("escalation.not_target", "you are not the target of the current escalation")
	}
	return owner(c, latest, a)
}
