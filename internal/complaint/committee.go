package complaint

import (
	"context"
	"strings"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/validation"
	"complaintdesk/backend/internal/workflow"

	"github.com/lib/pq"
)

// MarkNeedsCommittee routes a validated complaint to the committee path.
func (s *Service) MarkNeedsCommittee(ctx context.Context, a workflow.Actor, id uint) (*models.Complaint, workflow.Outcome, error) {
	c, err := s.transition(ctx, a, id, workflow.EventMarkNeedsCommittee, func(_ context.Context, ch *change) error {
		ch.complaint.NeedsCommittee = true
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return c, workflow.Success("committee.requested"), nil
}

type AssignCommitteeInput struct {
	CommitteeID uint `json:"committee_id" validate:"required"`
}

// AssignCommittee attaches a committee and notifies its members.
func (s *Service) AssignCommittee(ctx context.Context, a workflow.Actor, id uint, in AssignCommitteeInput) (*models.Complaint, workflow.Outcome, error) {
	if err := validation.Struct(in); err != nil {
		return nil, workflow.Outcome{}, err
	}
	c, err := s.transition(ctx, a, id, workflow.EventAssignCommittee, func(ctx context.Context, ch *change) error {
		committee, err := ch.tx.GetCommittee(ctx, in.CommitteeID)
		if err != nil {
			return err
		}
		ch.complaint.CommitteeID = &committee.ID
		ch.set("committee_id", committee.ID)
		for _, member := range committee.MemberIDs {
			ch.notify(uint(member), "Complaint #%d has been referred to %s", ch.complaint.ID, committee.Name)
		}
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return c, workflow.Success("committee.assigned"), nil
}

// RequestVideoChat flags that the committee wants a video hearing before resolution.
func (s *Service) RequestVideoChat(ctx context.Context, a workflow.Actor, id uint) (*models.Complaint, workflow.Outcome, error) {
	c, err := s.transition(ctx, a, id, workflow.EventRequestVideoChat, func(_ context.Context, ch *change) error {
		ch.complaint.NeedsVideoChat = true
		ch.notify(ch.complaint.SubmittedBy, "A video chat has been requested for complaint #%d", ch.complaint.ID)
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return c, workflow.Success("video_chat.requested"), nil
}

func (s *Service) CompleteVideoChat(ctx context.Context, a workflow.Actor, id uint) (*models.Complaint, workflow.Outcome, error) {
	c, err := s.transition(ctx, a, id, workflow.EventCompleteVideoChat, func(_ context.Context, ch *change) error {
		ch.complaint.VideoChatCompleted = true
		return nil
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	return c, workflow.Success("video_chat.completed"), nil
}

type CommitteeInput struct {
	Name      string `json:"name" validate:"notblank,max=255"`
	MemberIDs []uint `json:"member_ids" validate:"required,min=1"`
}

// CreateCommittee registers a committee. Every member must be an existing user.
func (s *Service) CreateCommittee(ctx context.Context, a workflow.Actor, in CommitteeInput) (*models.Committee, error) {
	if a.Role != models.RoleAdmin && a.Role != models.RoleHandler {
		return nil, apperr.Forbidden("auth.role_forbidden", "your role may not create committees")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	members := make(pq.Int64Array, 0, len(in.MemberIDs))
	seen := map[uint]bool{}
	for _, uid := range in.MemberIDs {
		if seen[uid] {
			continue
		}
		seen[uid] = true
		if _, err := s.Storage.GetUserByID(ctx, uid); err != nil {
			return nil, err
		}
		members = append(members, int64(uid))
	}

	c := &models.Committee{Name: strings.TrimSpace(in.Name), MemberIDs: members}
	if err := s.Storage.CreateCommittee(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Uint("committee_id", c.ID).Int("members", len(members)).Msg("Committee created")
	return c, nil
}

func (s *Service) ListCommittees(ctx context.Context) ([]models.Committee, error) {
	return s.Storage.ListCommittees(ctx)
}
