// Package decision relays advisory decisions between the parties of a
// complaint and produces the stereotyped reports addressed to the president.
package decision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/validation"
	"complaintdesk/backend/internal/workflow"

	"github.com/rs/zerolog"
)

// Notifier delivers notification rows that were committed.
type Notifier interface {
	Dispatch(ctx context.Context, notifications []models.Notification)
}

// Relay sends decisions and writes their text artifacts under dir.
type Relay struct {
	store    storage.Storage
	notifier Notifier
	dir      string
	log      zerolog.Logger
	now      func() time.Time
}

func NewRelay(store storage.Storage, notifier Notifier, dir string, log zerolog.Logger) *Relay {
	return &Relay{
		store:    store,
		notifier: notifier,
		dir:      dir,
		log:      log.With().Str("component", "decision").Logger(),
		now:      time.Now,
	}
}

func (r *Relay) dispatch(ctx context.Context, notes []models.Notification) {
	if r.notifier != nil {
		r.notifier.Dispatch(ctx, notes)
	}
}

type SendInput struct {
	ReceiverID uint                  `json:"receiver_id" validate:"required"`
	Text       string                `json:"decision_text" validate:"notblank,max=5000"`
	Status     models.DecisionStatus `json:"status" validate:"decision_status"`
}

// involved reports whether userID takes part in the complaint.
func involved(c *models.Complaint, escalations []models.Escalation, userID uint) bool {
	if c.SubmittedBy == userID || c.IsClaimedBy(userID) {
		return true
	}
	for _, e := range escalations {
		if e.EscalatedToID == userID || e.EscalatedByID == userID {
			return true
		}
	}
	return false
}

// oversees reports whether role may act on any complaint without taking part.
func oversees(r models.Role) bool {
	return r == models.RoleAdmin || r == models.RolePresident
}

func (r *Relay) checkParty(ctx context.Context, a workflow.Actor, c *models.Complaint) error {
	if oversees(a.Role) {
		return nil
	}
	escalations, err := r.store.ListEscalations(ctx, c.ID)
	if err != nil {
		return err
	}
	if !involved(c, escalations, a.ID) {
		return apperr.Forbidden("complaint.forbidden", "you do not have access to this complaint")
	}
	return nil
}

// Send records a decision from the actor to in.ReceiverID. A final decision
// may only go from the owning handler to the submitter of a resolved
// complaint, once per complaint, sender and receiver.
func (r *Relay) Send(ctx context.Context, a workflow.Actor, complaintID uint, in SendInput) (*models.Decision, workflow.Outcome, error) {
	if err := validation.Struct(in); err != nil {
		return nil, workflow.Outcome{}, err
	}
	if in.ReceiverID == a.ID {
		return nil, workflow.Outcome{}, apperr.Validation("decision.self", "you cannot send a decision to yourself")
	}
	if in.Status == models.DecisionFinal {
		return r.sendFinal(ctx, a, complaintID, in)
	}

	c, err := r.store.GetComplaint(ctx, complaintID)
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	escalations, err := r.store.ListEscalations(ctx, c.ID)
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	if !oversees(a.Role) && !involved(c, escalations, a.ID) {
		return nil, workflow.Outcome{}, apperr.Forbidden("complaint.forbidden", "you do not have access to this complaint")
	}
	receiver, err := r.store.GetUserByID(ctx, in.ReceiverID)
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	if !oversees(receiver.Role) && !involved(c, escalations, receiver.ID) {
		return nil, workflow.Outcome{}, apperr.Validation("decision.receiver_not_party",
			"the receiver takes no part in this complaint")
	}

	d := &models.Decision{
		ComplaintID:  c.ID,
		SenderID:     a.ID,
		ReceiverID:   in.ReceiverID,
		DecisionText: strings.TrimSpace(in.Text),
		Status:       in.Status,
	}
	note := models.Notification{
		UserID:      in.ReceiverID,
		ComplaintID: &c.ID,
		Description: fmt.Sprintf("You received a decision on complaint #%d", c.ID),
	}
	err = r.store.InTx(ctx, func(tx storage.Storage) error {
		if err := tx.CreateDecision(ctx, d); err != nil {
			return err
		}
		return tx.CreateNotification(ctx, &note)
	})
	if err != nil {
		return nil, workflow.Outcome{}, err
	}

	r.log.Info().Uint("decision_id", d.ID).Uint("complaint_id", c.ID).Str("status", string(d.Status)).Msg("Decision sent")
	r.dispatch(ctx, []models.Notification{note})
	return d, workflow.Success("decision.sent"), nil
}

func (r *Relay) sendFinal(ctx context.Context, a workflow.Actor, complaintID uint, in SendInput) (*models.Decision, workflow.Outcome, error) {
	var (
		d        *models.Decision
		note     models.Notification
		artifact string
	)
	err := r.store.InTx(ctx, func(tx storage.Storage) error {
		c, err := tx.LockComplaint(ctx, complaintID)
		if err != nil {
			return err
		}
		latest, err := tx.LatestEscalation(ctx, complaintID)
		if err != nil {
			return err
		}
		if _, err := workflow.Apply(c, latest, workflow.EventSendFinalDecision, a); err != nil {
			return err
		}
		if in.ReceiverID != c.SubmittedBy {
			return apperr.Validation("decision.final_receiver", "a final decision can only be sent to the complainant")
		}

		existing, err := tx.FindFinalDecision(ctx, c.ID, a.ID, in.ReceiverID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict("decision.final_exists", "a final decision has already been sent for this complaint")
		}

		sender, err := tx.GetUserByID(ctx, a.ID)
		if err != nil {
			return err
		}

		text := strings.TrimSpace(in.Text)
		name, err := r.writeArtifact(c.ID, text, sender)
		if err != nil {
			return err
		}
		artifact = name
		rel := config.DecisionArtifactDir + "/" + name

		d = &models.Decision{
			ComplaintID:  c.ID,
			SenderID:     a.ID,
			ReceiverID:   in.ReceiverID,
			DecisionText: text,
			Status:       models.DecisionFinal,
			FilePath:     &rel,
		}
		if err := tx.CreateDecision(ctx, d); err != nil {
			return err
		}
		if err := tx.AppendStatusHistory(ctx, &models.StatusHistory{
			ComplaintID: c.ID,
			ActorID:     a.ID,
			Event:       string(workflow.EventSendFinalDecision),
			FromStatus:  c.Status,
			ToStatus:    c.Status,
		}); err != nil {
			return err
		}
		note = models.Notification{
			UserID:      in.ReceiverID,
			ComplaintID: &c.ID,
			Description: fmt.Sprintf("The final decision on your complaint #%d is available", c.ID),
		}
		return tx.CreateNotification(ctx, &note)
	})
	if err != nil {
		if artifact != "" {
			if rmErr := os.Remove(filepath.Join(r.dir, artifact)); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				r.log.Warn().Err(rmErr).Str("file", artifact).Msg("Failed to remove orphaned decision artifact")
			}
		}
		r.log.Warn().Err(err).Uint("complaint_id", complaintID).Uint("actor_id", a.ID).Msg("Final decision rejected")
		return nil, workflow.Outcome{}, err
	}

	r.log.Info().Uint("decision_id", d.ID).Uint("complaint_id", complaintID).Str("file", *d.FilePath).Msg("Final decision sent")
	r.dispatch(ctx, []models.Notification{note})
	return d, workflow.Success("decision.final_sent"), nil
}

// View is a decision with the download link of its artifact, when the file exists.
type View struct {
	models.Decision
	ArtifactURL string `json:"artifact_url,omitempty"`
}

// List returns the decisions on a complaint, oldest first.
func (r *Relay) List(ctx context.Context, a workflow.Actor, complaintID uint) ([]View, error) {
	c, err := r.store.GetComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := r.checkParty(ctx, a, c); err != nil {
		return nil, err
	}
	decisions, err := r.store.ListDecisions(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	views := make([]View, len(decisions))
	for i, d := range decisions {
		views[i] = View{Decision: d}
		if _, ok := r.artifactFile(&d); ok {
			views[i].ArtifactURL = fmt.Sprintf("/api/decisions/%d/artifact", d.ID)
		}
	}
	return views, nil
}

// ArtifactPath returns the absolute path of a decision's text file.
func (r *Relay) ArtifactPath(ctx context.Context, a workflow.Actor, decisionID uint) (string, error) {
	d, err := r.store.GetDecision(ctx, decisionID)
	if err != nil {
		return "", err
	}
	if d.SenderID != a.ID && d.ReceiverID != a.ID {
		c, err := r.store.GetComplaint(ctx, d.ComplaintID)
		if err != nil {
			return "", err
		}
		if err := r.checkParty(ctx, a, c); err != nil {
			return "", err
		}
	}
	path, ok := r.artifactFile(d)
	if !ok {
		return "", apperr.NotFound("decision.artifact_missing", "the decision file is not available")
	}
	return path, nil
}

func (r *Relay) artifactFile(d *models.Decision) (string, bool) {
	if d.FilePath == nil || *d.FilePath == "" {
		return "", false
	}
	path := filepath.Join(r.dir, filepath.Base(*d.FilePath))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
