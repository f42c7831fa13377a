// Package storagetest provides an in-memory storage.Storage and storage.Broker
// for service tests. Transactions snapshot the whole state and restore it when
// the callback fails, and any method can be made to fail on demand.
package storagetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
)

type tagKey struct{ complaintID, stereotypeID uint }

type state struct {
	users         map[uint]models.User
	complaints    map[uint]models.Complaint
	escalations   map[uint]models.Escalation
	decisions     map[uint]models.Decision
	reports       map[uint]models.StereotypedReport
	notifications map[uint]models.Notification
	stereotypes   map[uint]models.Stereotype
	tags          map[tagKey]models.ComplaintStereotype
	committees    map[uint]models.Committee
	history       map[uint]models.StatusHistory
	seq           map[string]uint
}

func newState() *state {
	return &state{
		users:         map[uint]models.User{},
		complaints:    map[uint]models.Complaint{},
		escalations:   map[uint]models.Escalation{},
		decisions:     map[uint]models.Decision{},
		reports:       map[uint]models.StereotypedReport{},
		notifications: map[uint]models.Notification{},
		stereotypes:   map[uint]models.Stereotype{},
		tags:          map[tagKey]models.ComplaintStereotype{},
		committees:    map[uint]models.Committee{},
		history:       map[uint]models.StatusHistory{},
		seq:           map[string]uint{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		users:         cloneMap(s.users),
		complaints:    cloneMap(s.complaints),
		escalations:   cloneMap(s.escalations),
		decisions:     cloneMap(s.decisions),
		reports:       cloneMap(s.reports),
		notifications: cloneMap(s.notifications),
		stereotypes:   cloneMap(s.stereotypes),
		tags:          cloneMap(s.tags),
		committees:    cloneMap(s.committees),
		history:       cloneMap(s.history),
		seq:           cloneMap(s.seq),
	}
}

func (s *state) next(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

// Fake is an in-memory storage.Storage.
type Fake struct {
	txMu   sync.Mutex
	mu     sync.Mutex
	st     *state
	faults map[string]error
}

var _ storage.Storage = (*Fake)(nil)

func New() *Fake {
	return &Fake{st: newState(), faults: map[string]error{}}
}

// Fail makes every later call to method return err until Heal is called.
func (f *Fake) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[method] = err
}

func (f *Fake) Heal(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.faults, method)
}

// lock takes the state mutex and returns the injected fault for method, if any.
// The caller must unlock.
func (f *Fake) lock(method string) error {
	f.mu.Lock()
	return f.faults[method]
}

func (f *Fake) InTx(ctx context.Context, fn func(tx storage.Storage) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	snapshot := f.st.clone()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.st = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func notFound(code, what string) error {
	return apperr.NotFound(code, what+" not found")
}

// --- users ---

func (f *Fake) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if err := f.lock("GetUserByID"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	u, ok := f.st.users[id]
	if !ok {
		return nil, notFound("user.not_found", "user")
	}
	return &u, nil
}

func (f *Fake) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if err := f.lock("GetUserByEmail"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound("user.not_found", "user")
}

func (f *Fake) GetUserByTelegramChatID(_ context.Context, chatID int64) (*models.User, error) {
	if err := f.lock("GetUserByTelegramChatID"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	for _, u := range f.st.users {
		if u.TelegramChatID != nil && *u.TelegramChatID == chatID {
			return &u, nil
		}
	}
	return nil, notFound("user.not_linked", "user for this chat")
}

func (f *Fake) FirstUserByRole(_ context.Context, role models.Role) (*models.User, error) {
	if err := f.lock("FirstUserByRole"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	var first *models.User
	for _, u := range f.st.users {
		if u.Role == role && (first == nil || u.ID < first.ID) {
			u := u
			first = &u
		}
	}
	if first == nil {
		return nil, notFound("user.role_unfilled", "user with role "+string(role))
	}
	return first, nil
}

func (f *Fake) ListUsersByRole(_ context.Context, role models.Role) ([]models.User, error) {
	if err := f.lock("ListUsersByRole"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.st.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fake) SaveUser(_ context.Context, user *models.User) error {
	if err := f.lock("SaveUser"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range f.st.users {
		if u.Email == user.Email && u.ID != user.ID {
			return apperr.Conflict("user.email_taken", "a user with this e-mail already exists")
		}
	}
	if user.ID == 0 {
		user.ID = f.st.next("users")
		user.CreatedAt = time.Now()
	}
	f.st.users[user.ID] = *user
	return nil
}

// --- complaints ---

func (f *Fake) CreateComplaint(_ context.Context, c *models.Complaint) error {
	if err := f.lock("CreateComplaint"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	c.ID = f.st.next("complaints")
	if c.Version == 0 {
		c.Version = 1
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	f.st.complaints[c.ID] = *c
	return nil
}

func (f *Fake) GetComplaint(_ context.Context, id uint) (*models.Complaint, error) {
	if err := f.lock("GetComplaint"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	c, ok := f.st.complaints[id]
	if !ok {
		return nil, notFound("complaint.not_found", "complaint")
	}
	return &c, nil
}

func (f *Fake) LockComplaint(ctx context.Context, id uint) (*models.Complaint, error) {
	if err := f.lock("LockComplaint"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.mu.Unlock()
	return f.GetComplaint(ctx, id)
}

func (f *Fake) UpdateComplaint(_ context.Context, c *models.Complaint) error {
	if err := f.lock("UpdateComplaint"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	cur, ok := f.st.complaints[c.ID]
	if !ok || cur.Version != c.Version {
		return apperr.Conflict("complaint.concurrent_update",
			"the complaint was changed by someone else, reload it and try again")
	}
	c.Version++
	c.UpdatedAt = time.Now()
	c.CreatedAt = cur.CreatedAt
	c.SubmittedBy = cur.SubmittedBy
	f.st.complaints[c.ID] = *c
	return nil
}

func (f *Fake) involved(c models.Complaint, userID uint) bool {
	if c.SubmittedBy == userID {
		return true
	}
	for _, e := range f.st.escalations {
		if e.ComplaintID == c.ID && (e.EscalatedToID == userID || e.EscalatedByID == userID) {
			return true
		}
	}
	return false
}

func (f *Fake) matches(flt storage.ComplaintFilter, c models.Complaint) bool {
	if flt.InvolvedUserID != nil && !f.involved(c, *flt.InvolvedUserID) {
		return false
	}
	if flt.Status != "" && c.Status != flt.Status {
		return false
	}
	if flt.Category != models.CategoryUnset && c.Category != flt.Category {
		return false
	}
	if flt.SubmittedBy != nil && c.SubmittedBy != *flt.SubmittedBy {
		return false
	}
	if flt.HandlerID != nil && (c.HandlerID == nil || *c.HandlerID != *flt.HandlerID) {
		return false
	}
	if flt.Unclaimed && c.HandlerID != nil {
		return false
	}
	if flt.Search != "" {
		needle := strings.ToLower(flt.Search)
		if !strings.Contains(strings.ToLower(c.Title), needle) &&
			!strings.Contains(strings.ToLower(c.Description), needle) {
			return false
		}
	}
	if flt.From != nil && c.CreatedAt.Before(*flt.From) {
		return false
	}
	if flt.To != nil && !c.CreatedAt.Before(*flt.To) {
		return false
	}
	return true
}

func (f *Fake) filtered(flt storage.ComplaintFilter) []models.Complaint {
	var out []models.Complaint
	for _, c := range f.st.complaints {
		if f.matches(flt, c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *Fake) ListComplaints(_ context.Context, flt storage.ComplaintFilter) ([]models.Complaint, int64, error) {
	if err := f.lock("ListComplaints"); err != nil {
		f.mu.Unlock()
		return nil, 0, err
	}
	defer f.mu.Unlock()
	flt = flt.Normalize()
	all := f.filtered(flt)
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := (flt.Page - 1) * flt.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + flt.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (f *Fake) ExportComplaints(_ context.Context, flt storage.ComplaintFilter) ([]models.ComplaintExportRow, error) {
	if err := f.lock("ExportComplaints"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	var rows []models.ComplaintExportRow
	for _, c := range f.filtered(flt.Normalize()) {
		row := models.ComplaintExportRow{
			ID:                c.ID,
			Title:             c.Title,
			Category:          c.Category,
			Visibility:        c.Visibility,
			Status:            c.Status,
			SubmittedOn:       c.CreatedAt,
			ResolvedOn:        c.ResolutionDate,
			ResolutionDetails: c.ResolutionDetails,
		}
		if u, ok := f.st.users[c.SubmittedBy]; ok {
			row.SubmittedBy = u.FullName()
		}
		if c.Visibility == models.VisibilityAnonymous {
			row.SubmittedBy = "Anonymous"
		}
		if c.HandlerID != nil {
			if u, ok := f.st.users[*c.HandlerID]; ok {
				row.HandledBy = u.FullName()
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (f *Fake) CountComplaintsByStatus(_ context.Context) (map[models.Status]int64, error) {
	if err := f.lock("CountComplaintsByStatus"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	out := map[models.Status]int64{}
	for _, c := range f.st.complaints {
		out[c.Status]++
	}
	return out, nil
}

func (f *Fake) CountComplaintsByCategory(_ context.Context) (map[models.Category]int64, error) {
	if err := f.lock("CountComplaintsByCategory"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	out := map[models.Category]int64{}
	for _, c := range f.st.complaints {
		out[c.Category]++
	}
	return out, nil
}

func (f *Fake) ResolvedComplaints(_ context.Context) ([]models.Complaint, error) {
	if err := f.lock("ResolvedComplaints"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.Complaint
	for _, c := range f.filtered(storage.ComplaintFilter{Status: models.StatusResolved}) {
		if c.ResolutionDate != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- escalations ---

func (f *Fake) CreateEscalation(_ context.Context, e *models.Escalation) error {
	if err := f.lock("CreateEscalation"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	if e.Status == models.EscalationPending {
		for _, other := range f.st.escalations {
			if other.ComplaintID == e.ComplaintID && other.Status == models.EscalationPending {
				return apperr.Conflict("complaint.escalation_pending",
					"complaint already has a pending assignment or escalation")
			}
		}
	}
	e.ID = f.st.next("escalations")
	e.CreatedAt = time.Now()
	f.st.escalations[e.ID] = *e
	return nil
}

func (f *Fake) UpdateEscalation(_ context.Context, e *models.Escalation) error {
	if err := f.lock("UpdateEscalation"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	cur, ok := f.st.escalations[e.ID]
	if !ok {
		return notFound("escalation.not_found", "escalation")
	}
	cur.Status = e.Status
	cur.ResolvedAt = e.ResolvedAt
	cur.ResolutionDetails = e.ResolutionDetails
	f.st.escalations[e.ID] = cur
	return nil
}

func (f *Fake) GetEscalation(_ context.Context, id uint) (*models.Escalation, error) {
	if err := f.lock("GetEscalation"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	e, ok := f.st.escalations[id]
	if !ok {
		return nil, notFound("escalation.not_found", "escalation")
	}
	return &e, nil
}

func (f *Fake) latest(complaintID uint) *models.Escalation {
	var latest *models.Escalation
	for _, e := range f.st.escalations {
		if e.ComplaintID == complaintID && (latest == nil || e.ID > latest.ID) {
			e := e
			latest = &e
		}
	}
	return latest
}

func (f *Fake) LatestEscalation(_ context.Context, complaintID uint) (*models.Escalation, error) {
	if err := f.lock("LatestEscalation"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	return f.latest(complaintID), nil
}

func (f *Fake) LatestEscalations(_ context.Context, complaintIDs []uint) (map[uint]*models.Escalation, error) {
	if err := f.lock("LatestEscalations"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	out := make(map[uint]*models.Escalation, len(complaintIDs))
	for _, id := range complaintIDs {
		if e := f.latest(id); e != nil {
			out[id] = e
		}
	}
	return out, nil
}

func (f *Fake) escalationsWhere(keep func(models.Escalation) bool) []models.Escalation {
	var out []models.Escalation
	for _, e := range f.st.escalations {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *Fake) ListEscalations(_ context.Context, complaintID uint) ([]models.Escalation, error) {
	if err := f.lock("ListEscalations"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	return f.escalationsWhere(func(e models.Escalation) bool { return e.ComplaintID == complaintID }), nil
}

func (f *Fake) ListPendingEscalationsFor(_ context.Context, userID uint) ([]models.Escalation, error) {
	if err := f.lock("ListPendingEscalationsFor"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	return f.escalationsWhere(func(e models.Escalation) bool {
		return e.EscalatedToID == userID && e.Status == models.EscalationPending
	}), nil
}

// --- decisions ---

func (f *Fake) CreateDecision(_ context.Context, d *models.Decision) error {
	if err := f.lock("CreateDecision"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	d.ID = f.st.next("decisions")
	d.CreatedAt = time.Now()
	f.st.decisions[d.ID] = *d
	return nil
}

func (f *Fake) GetDecision(_ context.Context, id uint) (*models.Decision, error) {
	if err := f.lock("GetDecision"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	d, ok := f.st.decisions[id]
	if !ok {
		return nil, notFound("decision.not_found", "decision")
	}
	return &d, nil
}

func (f *Fake) FindFinalDecision(_ context.Context, complaintID, senderID, receiverID uint) (*models.Decision, error) {
	if err := f.lock("FindFinalDecision"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	for _, d := range f.st.decisions {
		if d.ComplaintID == complaintID && d.SenderID == senderID &&
			d.ReceiverID == receiverID && d.Status == models.DecisionFinal {
			return &d, nil
		}
	}
	return nil, nil
}

func (f *Fake) ListDecisions(_ context.Context, complaintID uint) ([]models.Decision, error) {
	if err := f.lock("ListDecisions"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.Decision
	for _, d := range f.st.decisions {
		if d.ComplaintID == complaintID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fake) CreateStereotypedReport(_ context.Context, r *models.StereotypedReport) error {
	if err := f.lock("CreateStereotypedReport"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	r.ID = f.st.next("reports")
	r.CreatedAt = time.Now()
	f.st.reports[r.ID] = *r
	return nil
}

func (f *Fake) ListStereotypedReports(_ context.Context, recipientID uint) ([]models.StereotypedReport, error) {
	if err := f.lock("ListStereotypedReports"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.StereotypedReport
	for _, r := range f.st.reports {
		if r.RecipientID == recipientID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// --- notifications ---

func (f *Fake) CreateNotification(_ context.Context, n *models.Notification) error {
	if err := f.lock("CreateNotification"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	n.ID = f.st.next("notifications")
	n.CreatedAt = time.Now()
	f.st.notifications[n.ID] = *n
	return nil
}

func (f *Fake) ListNotifications(_ context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	if err := f.lock("ListNotifications"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.st.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Fake) MarkNotificationsRead(_ context.Context, userID uint, ids []uint) (int64, error) {
	if err := f.lock("MarkNotificationsRead"); err != nil {
		f.mu.Unlock()
		return 0, err
	}
	defer f.mu.Unlock()
	wanted := map[uint]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var n int64
	for id, note := range f.st.notifications {
		if note.UserID != userID || note.IsRead || (len(ids) > 0 && !wanted[id]) {
			continue
		}
		note.IsRead = true
		f.st.notifications[id] = note
		n++
	}
	return n, nil
}

func (f *Fake) CountUnreadNotifications(_ context.Context, userID uint) (int64, error) {
	if err := f.lock("CountUnreadNotifications"); err != nil {
		f.mu.Unlock()
		return 0, err
	}
	defer f.mu.Unlock()
	var n int64
	for _, note := range f.st.notifications {
		if note.UserID == userID && !note.IsRead {
			n++
		}
	}
	return n, nil
}

// --- stereotypes ---

func (f *Fake) CreateStereotype(_ context.Context, s *models.Stereotype) error {
	if err := f.lock("CreateStereotype"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	s.Label = strings.TrimSpace(s.Label)
	s.LabelKey = models.NormalizeLabel(s.Label)
	for _, other := range f.st.stereotypes {
		if other.LabelKey == s.LabelKey {
			return apperr.Conflict("stereotype.duplicate", "a stereotype with this label already exists")
		}
	}
	s.ID = f.st.next("stereotypes")
	s.CreatedAt = time.Now()
	f.st.stereotypes[s.ID] = *s
	return nil
}

func (f *Fake) GetStereotype(_ context.Context, id uint) (*models.Stereotype, error) {
	if err := f.lock("GetStereotype"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	s, ok := f.st.stereotypes[id]
	if !ok {
		return nil, notFound("stereotype.not_found", "stereotype")
	}
	return &s, nil
}

func (f *Fake) FindStereotypeByLabel(_ context.Context, label string) (*models.Stereotype, error) {
	if err := f.lock("FindStereotypeByLabel"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	key := models.NormalizeLabel(label)
	for _, s := range f.st.stereotypes {
		if s.LabelKey == key {
			return &s, nil
		}
	}
	return nil, nil
}

func (f *Fake) ListStereotypes(_ context.Context) ([]models.Stereotype, error) {
	if err := f.lock("ListStereotypes"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.Stereotype
	for _, s := range f.st.stereotypes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (f *Fake) AddComplaintStereotype(_ context.Context, cs *models.ComplaintStereotype) (bool, error) {
	if err := f.lock("AddComplaintStereotype"); err != nil {
		f.mu.Unlock()
		return false, err
	}
	defer f.mu.Unlock()
	key := tagKey{cs.ComplaintID, cs.StereotypeID}
	if _, ok := f.st.tags[key]; ok {
		return false, nil
	}
	cs.CreatedAt = time.Now()
	f.st.tags[key] = *cs
	return true, nil
}

func (f *Fake) RemoveComplaintStereotype(_ context.Context, complaintID, stereotypeID uint) (bool, error) {
	if err := f.lock("RemoveComplaintStereotype"); err != nil {
		f.mu.Unlock()
		return false, err
	}
	defer f.mu.Unlock()
	key := tagKey{complaintID, stereotypeID}
	if _, ok := f.st.tags[key]; !ok {
		return false, nil
	}
	delete(f.st.tags, key)
	return true, nil
}

func (f *Fake) ListComplaintStereotypes(_ context.Context, complaintID uint) ([]models.Stereotype, error) {
	if err := f.lock("ListComplaintStereotypes"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.Stereotype
	for key := range f.st.tags {
		if key.complaintID == complaintID {
			out = append(out, f.st.stereotypes[key.stereotypeID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// --- committees ---

func (f *Fake) CreateCommittee(_ context.Context, c *models.Committee) error {
	if err := f.lock("CreateCommittee"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	for _, other := range f.st.committees {
		if other.Name == c.Name {
			return apperr.Conflict("committee.duplicate", "a committee with this name already exists")
		}
	}
	c.ID = f.st.next("committees")
	c.CreatedAt = time.Now()
	f.st.committees[c.ID] = *c
	return nil
}

func (f *Fake) GetCommittee(_ context.Context, id uint) (*models.Committee, error) {
	if err := f.lock("GetCommittee"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	c, ok := f.st.committees[id]
	if !ok {
		return nil, notFound("committee.not_found", "committee")
	}
	return &c, nil
}

func (f *Fake) ListCommittees(_ context.Context) ([]models.Committee, error) {
	if err := f.lock("ListCommittees"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.Committee
	for _, c := range f.st.committees {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- history ---

func (f *Fake) AppendStatusHistory(_ context.Context, h *models.StatusHistory) error {
	if err := f.lock("AppendStatusHistory"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	h.ID = f.st.next("history")
	h.CreatedAt = time.Now()
	f.st.history[h.ID] = *h
	return nil
}

func (f *Fake) ListStatusHistory(_ context.Context, complaintID uint) ([]models.StatusHistory, error) {
	if err := f.lock("ListStatusHistory"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	var out []models.StatusHistory
	for _, h := range f.st.history {
		if h.ComplaintID == complaintID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- assertions helpers ---

// Escalations returns every escalation of the complaint, oldest first.
func (f *Fake) Escalations(complaintID uint) []models.Escalation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.escalationsWhere(func(e models.Escalation) bool { return e.ComplaintID == complaintID })
}

// Notifications returns every notification, oldest first.
func (f *Fake) Notifications() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.st.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Decisions returns every decision, oldest first.
func (f *Fake) Decisions() []models.Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Decision
	for _, d := range f.st.decisions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reports returns every stereotyped report, oldest first.
func (f *Fake) Reports() []models.StereotypedReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StereotypedReport
	for _, r := range f.st.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TagCount is the number of complaint/stereotype join rows.
func (f *Fake) TagCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.st.tags)
}
