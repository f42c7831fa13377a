package complaint_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/storage/storagetest"
	"complaintdesk/backend/internal/workflow"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Dispatch(_ context.Context, notes []models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notes...)
}

type reportCall struct {
	complaintID, handlerID uint
	reportType, info       string
}

type recordingReporter struct {
	calls []reportCall
	err   error
}

func (r *recordingReporter) StereotypedReport(_ context.Context, complaintID, handlerID uint, reportType, info string) error {
	r.calls = append(r.calls, reportCall{complaintID, handlerID, reportType, info})
	return r.err
}

type fixture struct {
	ctx       context.Context
	store     *storagetest.Fake
	notifier  *recordingNotifier
	reporter  *recordingReporter
	svc       *complaint.Service
	student   workflow.Actor
	handler   workflow.Actor
	handler2  workflow.Actor
	dean      workflow.Actor
	president workflow.Actor
	vp        workflow.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		store:    storagetest.New(),
		notifier: &recordingNotifier{},
		reporter: &recordingReporter{},
	}
	f.svc = complaint.NewService(f.store, f.notifier, f.reporter, zerolog.Nop())

	seed := func(first string, role models.Role) workflow.Actor {
		u := &models.User{FirstName: first, LastName: "Test", Email: first + "@uni.test", Role: role}
		require.NoError(t, f.store.SaveUser(f.ctx, u))
		return workflow.Actor{ID: u.ID, Role: role}
	}
	f.student = seed("student", models.RoleUser)
	f.handler = seed("handler", models.RoleHandler)
	f.handler2 = seed("handler2", models.RoleHandler)
	f.dean = seed("dean", models.RoleCollegeDean)
	f.president = seed("president", models.RolePresident)
	f.vp = seed("vp", models.RoleAcademicVP)
	return f
}

func (f *fixture) submit(t *testing.T, visibility models.Visibility) *models.Complaint {
	t.Helper()
	c, out, err := f.svc.Submit(f.ctx, f.student, complaint.SubmitInput{
		Title:       "Grade not recorded",
		Description: "My exam grade is missing from the portal.",
		Visibility:  visibility,
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.LevelSuccess, out.Level)
	return c
}

func (f *fixture) validated(t *testing.T) *models.Complaint {
	t.Helper()
	c := f.submit(t, models.VisibilityStandard)
	_, _, err := f.svc.Categorize(f.ctx, f.handler, c.ID, complaint.CategorizeInput{Category: models.CategoryAcademic})
	require.NoError(t, err)
	c, _, err = f.svc.Validate(f.ctx, f.handler, c.ID)
	require.NoError(t, err)
	return c
}

func (f *fixture) assigned(t *testing.T) *models.Complaint {
	t.Helper()
	c := f.validated(t)
	c, _, err := f.svc.Assign(f.ctx, f.handler, c.ID, complaint.HandOffInput{Role: models.RoleCollegeDean})
	require.NoError(t, err)
	return c
}

func (f *fixture) current(t *testing.T, id uint) *models.Complaint {
	t.Helper()
	c, err := f.store.GetComplaint(f.ctx, id)
	require.NoError(t, err)
	return c
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)

	c := f.submit(t, "")

	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, models.VisibilityStandard, c.Visibility)
	assert.Equal(t, f.student.ID, c.SubmittedBy)
	assert.Nil(t, c.HandlerID)

	notes := f.store.Notifications()
	require.Len(t, notes, 2)
	assert.Equal(t, f.handler.ID, notes[0].UserID)
	assert.Equal(t, f.handler2.ID, notes[1].UserID)
	assert.Len(t, f.notifier.sent, 2)

	history, err := f.store.ListStatusHistory(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "submit", history[0].Event)
}

func TestSubmit_Rejected(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Submit(f.ctx, f.handler, complaint.SubmitInput{Title: "t", Description: "d"})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, _, err = f.svc.Submit(f.ctx, f.student, complaint.SubmitInput{Title: "  ", Description: "d"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, _, err = f.svc.Submit(f.ctx, f.student, complaint.SubmitInput{Title: "t", Description: "d", Visibility: "secret"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	assert.Empty(t, f.store.Notifications())
}

func TestCategorize_OnlyOnce(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, models.VisibilityStandard)

	got, out, err := f.svc.Categorize(f.ctx, f.handler, c.ID, complaint.CategorizeInput{Category: models.CategoryAcademic})
	require.NoError(t, err)
	assert.Equal(t, "complaint.categorized", out.Code)
	assert.Equal(t, models.CategoryAcademic, got.Category)
	assert.True(t, got.IsClaimedBy(f.handler.ID))
	assert.Equal(t, models.StatusPending, got.Status)

	_, _, err = f.svc.Categorize(f.ctx, f.handler, c.ID, complaint.CategorizeInput{Category: models.CategoryAdministrative})
	require.Error(t, err)
	assert.Equal(t, "complaint.already_categorized", apperr.CodeOf(err))
	assert.Equal(t, models.CategoryAcademic, f.current(t, c.ID).Category)

	_, _, err = f.svc.Categorize(f.ctx, f.handler, c.ID, complaint.CategorizeInput{Category: "sports"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCategorize_AfterValidate(t *testing.T) {
	f := newFixture(t)
	c := f.validated(t)

	_, _, err := f.svc.Categorize(f.ctx, f.handler, c.ID, complaint.CategorizeInput{Category: models.CategoryAdministrative})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestClaim(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, models.VisibilityStandard)

	got, _, err := f.svc.Claim(f.ctx, f.handler, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsClaimedBy(f.handler.ID))

	_, _, err = f.svc.Claim(f.ctx, f.handler2, c.ID)
	assert.Equal(t, "complaint.already_claimed", apperr.CodeOf(err))

	_, _, err = f.svc.Validate(f.ctx, f.handler2, c.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestValidate_RequiresCategory(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, models.VisibilityStandard)
	_, _, err := f.svc.Claim(f.ctx, f.handler, c.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Validate(f.ctx, f.handler, c.ID)
	assert.Equal(t, "complaint.category_required", apperr.CodeOf(err))
}

func TestAssign(t *testing.T) {
	f := newFixture(t)
	c := f.validated(t)
	before := len(f.store.Notifications())

	got, out, err := f.svc.Assign(f.ctx, f.handler, c.ID, complaint.HandOffInput{
		Role:    models.RoleCollegeDean,
		Details: "Please review the grading record.",
	})
	require.NoError(t, err)
	assert.Equal(t, "complaint.assigned", out.Code)
	assert.Equal(t, models.StatusInProgress, got.Status)

	escalations := f.store.Escalations(c.ID)
	require.Len(t, escalations, 1)
	e := escalations[0]
	assert.Equal(t, models.ActionAssignment, e.ActionType)
	assert.Equal(t, models.EscalationPending, e.Status)
	assert.Equal(t, f.dean.ID, e.EscalatedToID)
	assert.Equal(t, f.handler.ID, e.EscalatedByID)
	require.NotNil(t, e.OriginalHandlerID)
	assert.Equal(t, f.handler.ID, *e.OriginalHandlerID)

	notes := f.store.Notifications()[before:]
	recipients := make([]uint, len(notes))
	for i, n := range notes {
		recipients[i] = n.UserID
	}
	assert.ElementsMatch(t, []uint{f.dean.ID, f.student.ID}, recipients)

	require.Len(t, f.reporter.calls, 1)
	assert.Equal(t, "assignment", f.reporter.calls[0].reportType)
	assert.Equal(t, c.ID, f.reporter.calls[0].complaintID)
	assert.Contains(t, f.reporter.calls[0].info, "Please review the grading record.")
}

func TestAssign_Atomic(t *testing.T) {
	for _, method := range []string{"UpdateComplaint", "CreateNotification", "AppendStatusHistory"} {
		t.Run(method, func(t *testing.T) {
			f := newFixture(t)
			c := f.validated(t)
			before := len(f.store.Notifications())
			f.store.Fail(method, errors.New("boom"))

			_, _, err := f.svc.Assign(f.ctx, f.handler, c.ID, complaint.HandOffInput{Role: models.RoleCollegeDean})
			require.Error(t, err)
			f.store.Heal(method)

			assert.Empty(t, f.store.Escalations(c.ID))
			assert.Equal(t, models.StatusValidated, f.current(t, c.ID).Status)
			assert.Len(t, f.store.Notifications(), before)
			assert.Empty(t, f.reporter.calls)
		})
	}
}

func TestAssign_Guards(t *testing.T) {
	f := newFixture(t)
	c := f.assigned(t)

	_, _, err := f.svc.Escalate(f.ctx, f.handler, c.ID, complaint.HandOffInput{Role: models.RoleAcademicVP})
	assert.Equal(t, "complaint.escalation_pending", apperr.CodeOf(err))

	other := f.validated(t)
	_, _, err = f.svc.Assign(f.ctx, f.handler, other.ID, complaint.HandOffInput{Role: models.RoleHandler})
	assert.Equal(t, "escalation.invalid_target", apperr.CodeOf(err))

	_, _, err = f.svc.Assign(f.ctx, f.handler, other.ID, complaint.HandOffInput{Role: models.RoleAdministrativeVP})
	assert.Equal(t, "user.role_unfilled", apperr.CodeOf(err))
	assert.Empty(t, f.store.Escalations(other.ID))
}

func TestAssign_ReportFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.reporter.err = errors.New("no president")
	c := f.validated(t)

	got, _, err := f.svc.Assign(f.ctx, f.handler, c.ID, complaint.HandOffInput{Role: models.RoleCollegeDean})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
}

func TestResolve_ByTargetAuthority(t *testing.T) {
	f := newFixture(t)
	c := f.assigned(t)

	_, _, err := f.svc.Resolve(f.ctx, f.handler, c.ID, complaint.DetailsInput{Details: "done"})
	assert.Equal(t, "complaint.escalation_pending", apperr.CodeOf(err))

	got, out, err := f.svc.Resolve(f.ctx, f.dean, c.ID, complaint.DetailsInput{Details: "Grade corrected."})
	require.NoError(t, err)
	assert.Equal(t, "complaint.resolved", out.Code)
	assert.Equal(t, models.StatusResolved, got.Status)
	require.NotNil(t, got.ResolutionDate)
	require.NotNil(t, got.ResolutionDetails)
	assert.Equal(t, "Grade corrected.", *got.ResolutionDetails)

	escalations := f.store.Escalations(c.ID)
	require.Len(t, escalations, 1)
	assert.Equal(t, models.EscalationResolved, escalations[0].Status)
	assert.NotNil(t, escalations[0].ResolvedAt)

	_, _, err = f.svc.Reject(f.ctx, f.handler, c.ID, complaint.DetailsInput{Details: "late"})
	assert.Equal(t, "complaint.closed", apperr.CodeOf(err))
}

func TestResolve_RequiresDetails(t *testing.T) {
	f := newFixture(t)
	c := f.assigned(t)

	_, _, err := f.svc.Resolve(f.ctx, f.dean, c.ID, complaint.DetailsInput{Details: " "})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Nil(t, f.current(t, c.ID).ResolutionDate)
}

func TestResolveEscalation_ThenHandlerResolves(t *testing.T) {
	f := newFixture(t)
	c := f.assigned(t)
	e := f.store.Escalations(c.ID)[0]

	_, _, err := f.svc.ResolveEscalation(f.ctx, f.vp, e.ID, complaint.DetailsInput{Details: "ok"})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	resolved, out, err := f.svc.ResolveEscalation(f.ctx, f.dean, e.ID, complaint.DetailsInput{Details: "Record fixed."})
	require.NoError(t, err)
	assert.Equal(t, "escalation.resolved", out.Code)
	assert.Equal(t, models.EscalationResolved, resolved.Status)
	assert.Equal(t, models.StatusInProgress, f.current(t, c.ID).Status)

	_, _, err = f.svc.ResolveEscalation(f.ctx, f.dean, e.ID, complaint.DetailsInput{Details: "again"})
	assert.Equal(t, "escalation.not_pending", apperr.CodeOf(err))

	got, _, err := f.svc.Resolve(f.ctx, f.handler, c.ID, complaint.DetailsInput{Details: "Closed after dean review."})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)
	assert.NotNil(t, got.ResolutionDate)
}

func TestForwardEscalation(t *testing.T) {
	f := newFixture(t)
	c := f.assigned(t)
	first := f.store.Escalations(c.ID)[0]

	next, out, err := f.svc.ForwardEscalation(f.ctx, f.dean, first.ID, complaint.ForwardInput{Role: models.RoleAcademicVP})
	require.NoError(t, err)
	assert.Equal(t, "escalation.forwarded", out.Code)
	assert.Equal(t, f.vp.ID, next.EscalatedToID)
	assert.Equal(t, models.ActionEscalation, next.ActionType)
	require.NotNil(t, next.OriginalHandlerID)
	assert.Equal(t, f.handler.ID, *next.OriginalHandlerID)

	escalations := f.store.Escalations(c.ID)
	require.Len(t, escalations, 2)
	assert.Equal(t, models.EscalationResolved, escalations[0].Status)
	require.NotNil(t, escalations[0].ResolutionDetails)
	assert.Equal(t, "Forwarded to Academic VP", *escalations[0].ResolutionDetails)
	assert.Equal(t, models.EscalationPending, escalations[1].Status)
	assert.Equal(t, models.StatusEscalated, f.current(t, c.ID).Status)

	_, _, err = f.svc.ResolveEscalation(f.ctx, f.dean, first.ID, complaint.DetailsInput{Details: "late"})
	assert.Error(t, err)

	got, _, err := f.svc.Resolve(f.ctx, f.vp, c.ID, complaint.DetailsInput{Details: "Approved by the VP."})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)
}

func TestForwardEscalation_FailureRollsBack(t *testing.T) {
	f := newFixture(t)
	c := f.assigned(t)
	first := f.store.Escalations(c.ID)[0]
	f.store.Fail("CreateEscalation", errors.New("boom"))

	_, _, err := f.svc.ForwardEscalation(f.ctx, f.dean, first.ID, complaint.ForwardInput{Role: models.RoleAcademicVP})
	require.Error(t, err)

	escalations := f.store.Escalations(c.ID)
	require.Len(t, escalations, 1)
	assert.Equal(t, models.EscalationPending, escalations[0].Status)
	assert.Equal(t, models.StatusInProgress, f.current(t, c.ID).Status)
}

func TestConcurrentUpdateIsReported(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, models.VisibilityStandard)
	f.store.Fail("UpdateComplaint", apperr.Conflict("complaint.concurrent_update", "stale"))

	_, _, err := f.svc.Claim(f.ctx, f.handler, c.ID)
	assert.Equal(t, "complaint.concurrent_update", apperr.CodeOf(err))

	f.store.Heal("UpdateComplaint")
	assert.Nil(t, f.current(t, c.ID).HandlerID)
}

func TestRequestAndProvideInfo(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, models.VisibilityStandard)

	got, _, err := f.svc.RequestMoreInfo(f.ctx, f.handler, c.ID, complaint.DetailsInput{Details: "Attach the exam receipt."})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingMoreInfo, got.Status)
	assert.True(t, got.IsClaimedBy(f.handler.ID))

	_, _, err = f.svc.ProvideInfo(f.ctx, workflow.Actor{ID: 99, Role: models.RoleUser}, c.ID, complaint.DetailsInput{Details: "x"})
	assert.Equal(t, "complaint.not_submitter", apperr.CodeOf(err))

	got, _, err = f.svc.ProvideInfo(f.ctx, f.student, c.ID, complaint.DetailsInput{Details: "Receipt number 1234."})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Contains(t, got.Description, "Receipt number 1234.")
	assert.Contains(t, got.Description, "My exam grade is missing")
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, models.VisibilityStandard)

	got, out, err := f.svc.Reject(f.ctx, f.handler, c.ID, complaint.DetailsInput{Details: "Duplicate of #1."})
	require.NoError(t, err)
	assert.Equal(t, "complaint.rejected", out.Code)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.NotNil(t, got.ResolutionDate)
}

func TestCommitteeRoute(t *testing.T) {
	f := newFixture(t)
	c := f.validated(t)

	committee, err := f.svc.CreateCommittee(f.ctx, f.handler, complaint.CommitteeInput{
		Name:      "Academic Appeals",
		MemberIDs: []uint{f.dean.ID, f.vp.ID, f.dean.ID},
	})
	require.NoError(t, err)
	assert.Len(t, committee.MemberIDs, 2)

	_, _, err = f.svc.AssignCommittee(f.ctx, f.handler, c.ID, complaint.AssignCommitteeInput{CommitteeID: committee.ID})
	assert.Equal(t, "committee.not_requested", apperr.CodeOf(err))

	_, _, err = f.svc.MarkNeedsCommittee(f.ctx, f.handler, c.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Assign(f.ctx, f.handler, c.ID, complaint.HandOffInput{Role: models.RoleCollegeDean})
	assert.Equal(t, "complaint.committee_route", apperr.CodeOf(err))

	_, _, err = f.svc.Resolve(f.ctx, f.handler, c.ID, complaint.DetailsInput{Details: "early"})
	assert.Equal(t, "committee.required", apperr.CodeOf(err))

	got, _, err := f.svc.AssignCommittee(f.ctx, f.handler, c.ID, complaint.AssignCommitteeInput{CommitteeID: committee.ID})
	require.NoError(t, err)
	require.NotNil(t, got.CommitteeID)

	_, _, err = f.svc.RequestVideoChat(f.ctx, f.handler, c.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Resolve(f.ctx, f.handler, c.ID, complaint.DetailsInput{Details: "early"})
	assert.Equal(t, "video_chat.pending", apperr.CodeOf(err))

	_, _, err = f.svc.CompleteVideoChat(f.ctx, f.handler, c.ID)
	require.NoError(t, err)

	got, _, err = f.svc.Resolve(f.ctx, f.handler, c.ID, complaint.DetailsInput{Details: "Committee upheld the appeal."})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)
	assert.NotNil(t, got.ResolutionDate)
}

func TestCreateCommittee_Rejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateCommittee(f.ctx, f.student, complaint.CommitteeInput{Name: "x", MemberIDs: []uint{f.dean.ID}})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = f.svc.CreateCommittee(f.ctx, f.handler, complaint.CommitteeInput{Name: "x", MemberIDs: []uint{999}})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.svc.CreateCommittee(f.ctx, f.handler, complaint.CommitteeInput{Name: "x"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestTagAndUntag(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, models.VisibilityStandard)

	st, err := f.svc.CreateStereotype(f.ctx, f.handler, complaint.StereotypeInput{Label: "Harassment"})
	require.NoError(t, err)

	_, err = f.svc.CreateStereotype(f.ctx, f.handler, complaint.StereotypeInput{Label: " harassment "})
	assert.Equal(t, "stereotype.duplicate", apperr.CodeOf(err))

	out, err := f.svc.Tag(f.ctx, f.handler, c.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Success("stereotype.tagged"), out)

	out, err = f.svc.Tag(f.ctx, f.handler, c.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Warning("stereotype.already_tagged"), out)
	assert.Equal(t, 1, f.store.TagCount())

	out, err = f.svc.Untag(f.ctx, f.handler, c.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Success("stereotype.untagged"), out)

	out, err = f.svc.Untag(f.ctx, f.handler, c.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Info("stereotype.not_tagged"), out)
	assert.Equal(t, 0, f.store.TagCount())

	_, err = f.svc.Tag(f.ctx, f.student, c.ID, st.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestGet_AccessAndRedaction(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, models.VisibilityAnonymous)
	_, _, err := f.svc.Categorize(f.ctx, f.handler, c.ID, complaint.CategorizeInput{Category: models.CategoryAcademic})
	require.NoError(t, err)
	_, _, err = f.svc.Validate(f.ctx, f.handler, c.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(f.ctx, f.dean, c.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, _, err = f.svc.Assign(f.ctx, f.handler, c.ID, complaint.HandOffInput{Role: models.RoleCollegeDean})
	require.NoError(t, err)

	view, err := f.svc.Get(f.ctx, f.dean, c.ID)
	require.NoError(t, err)
	assert.Zero(t, view.Complaint.SubmittedBy)
	assert.Equal(t, "Assigned: College Dean (Pending)", view.Display.String())
	assert.Contains(t, view.Actions, workflow.EventResolve)
	assert.Contains(t, view.Actions, workflow.EventResolveEscalation)
	assert.Len(t, view.History, 4)

	own, err := f.svc.Get(f.ctx, f.student, c.ID)
	require.NoError(t, err)
	assert.Equal(t, f.student.ID, own.Complaint.SubmittedBy)
	assert.Empty(t, own.Actions)

	_, err = f.svc.Get(f.ctx, workflow.Actor{ID: 99, Role: models.RoleUser}, c.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestList(t *testing.T) {
	f := newFixture(t)
	f.assigned(t)
	f.submit(t, models.VisibilityStandard)

	other := &models.User{FirstName: "other", LastName: "Student", Email: "other@uni.test", Role: models.RoleUser}
	require.NoError(t, f.store.SaveUser(f.ctx, other))
	_, _, err := f.svc.Submit(f.ctx, workflow.Actor{ID: other.ID, Role: models.RoleUser},
		complaint.SubmitInput{Title: "Parking", Description: "No spaces left."})
	require.NoError(t, err)

	items, total, err := f.svc.List(f.ctx, f.student, storage.ComplaintFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, it := range items {
		assert.Equal(t, f.student.ID, it.SubmittedBy)
	}

	items, total, err = f.svc.List(f.ctx, f.handler, storage.ComplaintFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, "Parking", items[0].Title)
	assert.Equal(t, "Pending Review", items[0].Display.Caption)
	assert.Equal(t, "Assigned: College Dean (Pending)", items[2].Display.String())
}

func TestList_AuthoritySeesOnlyItsHandOffs(t *testing.T) {
	f := newFixture(t)
	c := f.assigned(t)
	f.submit(t, models.VisibilityStandard)

	items, total, err := f.svc.List(f.ctx, f.dean, storage.ComplaintFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, c.ID, items[0].ID)

	items, total, err = f.svc.List(f.ctx, f.vp, storage.ComplaintFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, items)

	_, err = f.svc.Get(f.ctx, f.vp, c.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestInbox(t *testing.T) {
	f := newFixture(t)
	c := f.assigned(t)

	inbox, err := f.svc.Inbox(f.ctx, f.dean)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, c.ID, inbox[0].ComplaintID)

	inbox, err = f.svc.Inbox(f.ctx, f.vp)
	require.NoError(t, err)
	assert.Empty(t, inbox)
}
