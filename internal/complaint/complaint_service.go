// Package complaint implements the complaint lifecycle: submission, triage,
// hand-offs to authorities, committee routing, resolution and tagging.
//
// Every mutation follows the same shape: lock the complaint row, ask
// workflow.Apply whether the event is allowed, edit the row, and write the
// complaint, its status history and the resulting notifications in one
// transaction. Notification delivery and stereotyped reports run after commit
// and never fail the operation.
package complaint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/validation"
	"complaintdesk/backend/internal/workflow"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// Notifier delivers notification rows that were committed.
type Notifier interface {
	Dispatch(ctx context.Context, notifications []models.Notification)
}

// Reporter writes the plain-text summary for the president after a hand-off.
type Reporter interface {
	StereotypedReport(ctx context.Context, complaintID, handlerID uint, reportType, info string) error
}

type nopNotifier struct{}

func (nopNotifier) Dispatch(context.Context, []models.Notification) {}

// Service handles the business logic for complaints.
type Service struct {
	Storage  storage.Storage
	notifier Notifier
	reporter Reporter
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a new complaint service. notifier and reporter may be nil.
func NewService(s storage.Storage, notifier Notifier, reporter Reporter, log zerolog.Logger) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{
		Storage:  s,
		notifier: notifier,
		reporter: reporter,
		log:      log.With().Str("component", "complaint").Logger(),
		now:      time.Now,
	}
}

// change is the mutable state handed to a transition's edit step.
type change struct {
	tx        storage.Storage
	actor     workflow.Actor
	complaint *models.Complaint
	latest    *models.Escalation
	meta      datatypes.JSONMap
	notes     []models.Notification
}

// notify queues a notification for userID. The acting user is never notified.
func (ch *change) notify(userID uint, format string, args ...interface{}) {
	if userID == 0 || userID == ch.actor.ID {
		return
	}
	for _, n := range ch.notes {
		if n.UserID == userID {
			return
		}
	}
	id := ch.complaint.ID
	ch.notes = append(ch.notes, models.Notification{
		UserID:      userID,
		ComplaintID: &id,
		Description: fmt.Sprintf(format, args...),
	})
}

func (ch *change) set(key string, value interface{}) {
	if ch.meta == nil {
		ch.meta = datatypes.JSONMap{}
	}
	ch.meta[key] = value
}

// transition runs ev against complaint id. edit may change the locked row and
// queue notifications; it runs after the workflow accepted the event.
func (s *Service) transition(
	ctx context.Context,
	a workflow.Actor,
	id uint,
	ev workflow.Event,
	edit func(ctx context.Context, ch *change) error,
) (*models.Complaint, error) {
	var (
		result *models.Complaint
		notes  []models.Notification
		from   models.Status
	)
	err := s.Storage.InTx(ctx, func(tx storage.Storage) error {
		c, err := tx.LockComplaint(ctx, id)
		if err != nil {
			return err
		}
		latest, err := tx.LatestEscalation(ctx, id)
		if err != nil {
			return err
		}
		next, err := workflow.Apply(c, latest, ev, a)
		if err != nil {
			return err
		}

		from = c.Status
		if workflow.ClaimsImplicitly(ev) && c.HandlerID == nil && a.Role == models.RoleHandler {
			handlerID := a.ID
			c.HandlerID = &handlerID
		}
		c.Status = next

		ch := &change{tx: tx, actor: a, complaint: c, latest: latest}
		if edit != nil {
			if err := edit(ctx, ch); err != nil {
				return err
			}
		}

		if err := tx.UpdateComplaint(ctx, c); err != nil {
			return err
		}
		if err := tx.AppendStatusHistory(ctx, &models.StatusHistory{
			ComplaintID: c.ID,
			ActorID:     a.ID,
			Event:       string(ev),
			FromStatus:  from,
			ToStatus:    c.Status,
			Metadata:    ch.meta,
		}); err != nil {
			return err
		}
		for i := range ch.notes {
			if err := tx.CreateNotification(ctx, &ch.notes[i]); err != nil {
				return err
			}
		}

		result, notes = c, ch.notes
		return nil
	})
	if err != nil {
		s.logFailure(err, id, ev, a)
		return nil, err
	}

	s.log.Info().
		Uint("complaint_id", id).
		Str("event", string(ev)).
		Uint("actor_id", a.ID).
		Str("from", string(from)).
		Str("to", string(result.Status)).
		Msg("Complaint transition applied")

	s.notifier.Dispatch(ctx, notes)
	return result, nil
}

func (s *Service) logFailure(err error, id uint, ev workflow.Event, a workflow.Actor) {
	ev2 := s.log.Warn()
	if apperr.KindOf(err) == apperr.KindInternal {
		ev2 = s.log.Error()
	}
	ev2.Err(err).
		Uint("complaint_id", id).
		Str("event", string(ev)).
		Uint("actor_id", a.ID).
		Msg("Complaint transition rejected")
}

// SubmitInput is a new complaint from a complainant.
type SubmitInput struct {
	Title        string            `json:"title" validate:"notblank,max=200"`
	Description  string            `json:"description" validate:"notblank,max=10000"`
	Directorate  *string           `json:"directorate" validate:"omitempty,max=255"`
	Visibility   models.Visibility `json:"visibility" validate:"visibility"`
	EvidenceFile *string           `json:"evidence_file" validate:"omitempty,max=512"`
}

// Submit records a new complaint in status pending and tells every handler.
func (s *Service) Submit(ctx context.Context, a workflow.Actor, in SubmitInput) (*models.Complaint, workflow.Outcome, error) {
	status, err := workflow.Apply(nil, nil, workflow.EventSubmit, a)
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, workflow.Outcome{}, err
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityStandard
	}

	c := &models.Complaint{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Directorate:  trimmed(in.Directorate),
		Visibility:   in.Visibility,
		EvidenceFile: trimmed(in.EvidenceFile),
		Status:       status,
		SubmittedBy:  a.ID,
	}

	var notes []models.Notification
	err = s.Storage.InTx(ctx, func(tx storage.Storage) error {
		if err := tx.CreateComplaint(ctx, c); err != nil {
			return err
		}
		if err := tx.AppendStatusHistory(ctx, &models.StatusHistory{
			ComplaintID: c.ID,
			ActorID:     a.ID,
			Event:       string(workflow.EventSubmit),
			ToStatus:    c.Status,
		}); err != nil {
			return err
		}
		handlers, err := tx.ListUsersByRole(ctx, models.RoleHandler)
		if err != nil {
			return err
		}
		ch := &change{tx: tx, actor: a, complaint: c}
		for _, h := range handlers {
			ch.notify(h.ID, "New complaint #%d submitted: %s", c.ID, c.Title)
		}
		for i := range ch.notes {
			if err := tx.CreateNotification(ctx, &ch.notes[i]); err != nil {
				return err
			}
		}
		notes = ch.notes
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Uint("user_id", a.ID).Msg("Failed to submit complaint")
		return nil, workflow.Outcome{}, err
	}

	s.log.Info().Uint("complaint_id", c.ID).Uint("user_id", a.ID).Msg("Complaint submitted")
	s.notifier.Dispatch(ctx, notes)
	return c, workflow.Success("complaint.submitted"), nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// View is a complaint with everything its detail page shows.
type View struct {
	Complaint   models.Complaint       `json:"complaint"`
	Display     workflow.DisplayState  `json:"display"`
	Escalations []models.Escalation    `json:"escalations"`
	Stereotypes []models.Stereotype    `json:"stereotypes"`
	History     []models.StatusHistory `json:"history"`
	Actions     []workflow.Event       `json:"actions"`
}

// ListItem is a complaint row with its derived assignment caption.
type ListItem struct {
	models.Complaint
	Display workflow.DisplayState `json:"display"`
}

// seesEverything reports whether role may read any complaint.
func seesEverything(r models.Role) bool {
	return r == models.RoleHandler || r == models.RoleAdmin || r == models.RolePresident
}

func canView(a workflow.Actor, c *models.Complaint, escalations []models.Escalation) bool {
	if seesEverything(a.Role) || c.SubmittedBy == a.ID {
		return true
	}
	if !a.Role.IsAuthority() {
		return false
	}
	for _, e := range escalations {
		if e.EscalatedToID == a.ID || e.EscalatedByID == a.ID {
			return true
		}
	}
	return false
}

// redact hides the submitter of an anonymous complaint from everyone but the
// submitter and admins.
func redact(a workflow.Actor, c *models.Complaint) {
	if c.Visibility == models.VisibilityAnonymous && c.SubmittedBy != a.ID && a.Role != models.RoleAdmin {
		c.SubmittedBy = 0
	}
}

// CheckAccess returns the complaint when a may read it.
func (s *Service) CheckAccess(ctx context.Context, a workflow.Actor, id uint) (*models.Complaint, error) {
	c, err := s.Storage.GetComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	escalations, err := s.Storage.ListEscalations(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(a, c, escalations) {
		return nil, apperr.Forbidden("complaint.forbidden", "you do not have access to this complaint")
	}
	return c, nil
}

// Get loads the complaint detail for a.
func (s *Service) Get(ctx context.Context, a workflow.Actor, id uint) (*View, error) {
	c, err := s.Storage.GetComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	escalations, err := s.Storage.ListEscalations(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(a, c, escalations) {
		return nil, apperr.Forbidden("complaint.forbidden", "you do not have access to this complaint")
	}
	stereotypes, err := s.Storage.ListComplaintStereotypes(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.Storage.ListStatusHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	latest := workflow.LatestOf(escalations)
	actions := workflow.AvailableEvents(c, latest, a)
	redact(a, c)
	return &View{
		Complaint:   *c,
		Display:     workflow.Display(c.Status, latest),
		Escalations: escalations,
		Stereotypes: stereotypes,
		History:     history,
		Actions:     actions,
	}, nil
}

// List returns one page of complaints visible to a, under the same rule as
// Get. Complainants see their own complaints and authorities the ones they
// were handed or handed on.
func (s *Service) List(ctx context.Context, a workflow.Actor, f storage.ComplaintFilter) ([]ListItem, int64, error) {
	switch {
	case seesEverything(a.Role):
	case a.Role.IsAuthority():
		id := a.ID
		f.InvolvedUserID = &id
	default:
		own := a.ID
		f.SubmittedBy = &own
	}
	list, total, err := s.Storage.ListComplaints(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	latest, err := s.Storage.LatestEscalations(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	items := make([]ListItem, len(list))
	for i := range list {
		c := list[i]
		redact(a, &c)
		items[i] = ListItem{Complaint: c, Display: workflow.Display(c.Status, latest[c.ID])}
	}
	return items, total, nil
}

// Export returns the CSV projection of every complaint matching f.
func (s *Service) Export(ctx context.Context, a workflow.Actor, f storage.ComplaintFilter) ([]models.ComplaintExportRow, error) {
	if !seesEverything(a.Role) {
		return nil, apperr.Forbidden("auth.role_forbidden", "your role may not export complaints")
	}
	return s.Storage.ExportComplaints(ctx, f)
}
