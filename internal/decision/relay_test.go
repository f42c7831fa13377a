package decision_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/decision"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage/storagetest"
	"complaintdesk/backend/internal/workflow"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	sent []models.Notification
}

func (n *countingNotifier) Dispatch(_ context.Context, notes []models.Notification) {
	n.sent = append(n.sent, notes...)
}

type env struct {
	ctx       context.Context
	store     *storagetest.Fake
	notifier  *countingNotifier
	relay     *decision.Relay
	dir       string
	student   workflow.Actor
	handler   workflow.Actor
	handler2  workflow.Actor
	president workflow.Actor
	outsider  workflow.Actor
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		ctx:      context.Background(),
		store:    storagetest.New(),
		notifier: &countingNotifier{},
		dir:      t.TempDir(),
	}
	e.relay = decision.NewRelay(e.store, e.notifier, e.dir, zerolog.Nop())

	seed := func(first, last string, role models.Role) workflow.Actor {
		u := &models.User{FirstName: first, LastName: last, Email: first + "@uni.test", Role: role}
		require.NoError(t, e.store.SaveUser(e.ctx, u))
		return workflow.Actor{ID: u.ID, Role: role}
	}
	e.student = seed("Sara", "Bekele", models.RoleUser)
	e.handler = seed("Abel", "Tesfaye", models.RoleHandler)
	e.handler2 = seed("Hana", "Girma", models.RoleHandler)
	e.president = seed("Dawit", "Alemu", models.RolePresident)
	e.outsider = seed("Yonas", "Kebede", models.RoleUser)
	return e
}

func (e *env) complaint(t *testing.T, status models.Status) *models.Complaint {
	t.Helper()
	handlerID := e.handler.ID
	c := &models.Complaint{
		Title:       "Lab access",
		Description: "Lab closed during exam week.",
		Category:    models.CategoryAcademic,
		Status:      status,
		SubmittedBy: e.student.ID,
		HandlerID:   &handlerID,
	}
	require.NoError(t, e.store.CreateComplaint(e.ctx, c))
	return c
}

func (e *env) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, en := range entries {
		names[i] = en.Name()
	}
	return names
}

func finalTo(receiver uint) decision.SendInput {
	return decision.SendInput{ReceiverID: receiver, Text: "Your appeal is upheld.", Status: models.DecisionFinal}
}

func TestFormatDecision(t *testing.T) {
	sender := &models.User{FirstName: "Abel", LastName: "Tesfaye", Role: models.RoleHandler}
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	got := decision.FormatDecision(12, "Refund approved.", sender, at)

	want := "Decision Report\n" +
		"==============\n" +
		"\n" +
		"Complaint ID: 12\n" +
		"Decision Text: Refund approved.\n" +
		"Status: Final\n" +
		"Sent By: Abel Tesfaye (Handler)\n" +
		"Date: 2024-03-05 14:07:09"
	assert.Equal(t, want, got)
}

func TestArtifactName(t *testing.T) {
	at := time.Unix(0, 1700000000123456789)
	assert.Equal(t, "decision_7_1700000000123456789.txt", decision.ArtifactName(7, at))
}

func TestSendFinal(t *testing.T) {
	e := newEnv(t)
	c := e.complaint(t, models.StatusResolved)

	d, out, err := e.relay.Send(e.ctx, e.handler, c.ID, finalTo(e.student.ID))
	require.NoError(t, err)
	assert.Equal(t, "decision.final_sent", out.Code)
	assert.Equal(t, models.DecisionFinal, d.Status)
	require.NotNil(t, d.FilePath)
	assert.True(t, strings.HasPrefix(*d.FilePath, "decisions/decision_"))

	files := e.files(t)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Base(*d.FilePath), files[0])

	body, err := os.ReadFile(filepath.Join(e.dir, files[0]))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "Decision Report\n==============\n\nComplaint ID: "))
	assert.Contains(t, string(body), "Decision Text: Your appeal is upheld.\n")
	assert.Contains(t, string(body), "Sent By: Abel Tesfaye (Handler)\n")

	require.Len(t, e.notifier.sent, 1)
	assert.Equal(t, e.student.ID, e.notifier.sent[0].UserID)
}

func TestSendFinal_OnlyOnce(t *testing.T) {
	e := newEnv(t)
	c := e.complaint(t, models.StatusResolved)

	_, _, err := e.relay.Send(e.ctx, e.handler, c.ID, finalTo(e.student.ID))
	require.NoError(t, err)

	_, _, err = e.relay.Send(e.ctx, e.handler, c.ID, finalTo(e.student.ID))
	require.Error(t, err)
	assert.Equal(t, "decision.final_exists", apperr.CodeOf(err))

	assert.Len(t, e.store.Decisions(), 1)
	assert.Len(t, e.files(t), 1)
}

func TestSendFinal_Guards(t *testing.T) {
	e := newEnv(t)
	open := e.complaint(t, models.StatusInProgress)
	resolved := e.complaint(t, models.StatusResolved)

	_, _, err := e.relay.Send(e.ctx, e.handler, open.ID, finalTo(e.student.ID))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, _, err = e.relay.Send(e.ctx, e.handler2, resolved.ID, finalTo(e.student.ID))
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, _, err = e.relay.Send(e.ctx, e.handler, resolved.ID, finalTo(e.outsider.ID))
	assert.Equal(t, "decision.final_receiver", apperr.CodeOf(err))

	assert.Empty(t, e.store.Decisions())
	assert.Empty(t, e.files(t))
}

func TestSendFinal_InsertFailureRemovesFile(t *testing.T) {
	e := newEnv(t)
	c := e.complaint(t, models.StatusResolved)
	e.store.Fail("CreateDecision", errors.New("boom"))

	_, _, err := e.relay.Send(e.ctx, e.handler, c.ID, finalTo(e.student.ID))
	require.Error(t, err)

	assert.Empty(t, e.files(t))
	assert.Empty(t, e.store.Decisions())
	assert.Empty(t, e.notifier.sent)
}

func TestSend_Advisory(t *testing.T) {
	e := newEnv(t)
	c := e.complaint(t, models.StatusInProgress)

	d, out, err := e.relay.Send(e.ctx, e.student, c.ID, decision.SendInput{
		ReceiverID: e.handler.ID,
		Text:       "Please hurry.",
		Status:     models.DecisionActionRequired,
	})
	require.NoError(t, err)
	assert.Equal(t, "decision.sent", out.Code)
	assert.Nil(t, d.FilePath)
	assert.Empty(t, e.files(t))

	_, _, err = e.relay.Send(e.ctx, e.outsider, c.ID, decision.SendInput{
		ReceiverID: e.handler.ID, Text: "hi", Status: models.DecisionPending,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, _, err = e.relay.Send(e.ctx, e.student, c.ID, decision.SendInput{
		ReceiverID: e.handler.ID, Text: "hi", Status: "maybe",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, _, err = e.relay.Send(e.ctx, e.student, c.ID, decision.SendInput{
		ReceiverID: e.student.ID, Text: "hi", Status: models.DecisionPending,
	})
	assert.Equal(t, "decision.self", apperr.CodeOf(err))
}

func TestSend_AdvisoryReceiverMustTakePart(t *testing.T) {
	e := newEnv(t)
	c := e.complaint(t, models.StatusInProgress)

	_, _, err := e.relay.Send(e.ctx, e.handler, c.ID, decision.SendInput{
		ReceiverID: e.outsider.ID, Text: "FYI", Status: models.DecisionPending,
	})
	assert.Equal(t, "decision.receiver_not_party", apperr.CodeOf(err))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, _, err = e.relay.Send(e.ctx, e.handler, c.ID, decision.SendInput{
		ReceiverID: e.handler2.ID, Text: "FYI", Status: models.DecisionPending,
	})
	assert.Equal(t, "decision.receiver_not_party", apperr.CodeOf(err))
	assert.Empty(t, e.store.Decisions())
	assert.Empty(t, e.notifier.sent)

	d, _, err := e.relay.Send(e.ctx, e.handler, c.ID, decision.SendInput{
		ReceiverID: e.president.ID, Text: "Needs your attention.", Status: models.DecisionActionRequired,
	})
	require.NoError(t, err)
	assert.Equal(t, e.president.ID, d.ReceiverID)

	_, _, err = e.relay.Send(e.ctx, e.president, c.ID, decision.SendInput{
		ReceiverID: e.student.ID, Text: "We are on it.", Status: models.DecisionPending,
	})
	require.NoError(t, err)
	assert.Len(t, e.store.Decisions(), 2)
}

func TestListAndArtifact(t *testing.T) {
	e := newEnv(t)
	c := e.complaint(t, models.StatusResolved)

	d, _, err := e.relay.Send(e.ctx, e.handler, c.ID, finalTo(e.student.ID))
	require.NoError(t, err)

	views, err := e.relay.List(e.ctx, e.student, c.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.NotEmpty(t, views[0].ArtifactURL)

	path, err := e.relay.ArtifactPath(e.ctx, e.student, d.ID)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = e.relay.ArtifactPath(e.ctx, e.outsider, d.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, os.Remove(path))

	views, err = e.relay.List(e.ctx, e.student, c.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Empty(t, views[0].ArtifactURL)

	_, err = e.relay.ArtifactPath(e.ctx, e.student, d.ID)
	assert.Equal(t, "decision.artifact_missing", apperr.CodeOf(err))
}

func TestStereotypedReport(t *testing.T) {
	e := newEnv(t)
	c := e.complaint(t, models.StatusInProgress)

	err := e.relay.StereotypedReport(e.ctx, c.ID, e.handler.ID, "assignment", "Target: Dean (College Dean)")
	require.NoError(t, err)

	reports := e.store.Reports()
	require.Len(t, reports, 1)
	r := reports[0]
	assert.Equal(t, e.president.ID, r.RecipientID)
	assert.Equal(t, "assignment", r.ReportType)
	assert.True(t, strings.HasPrefix(r.Content, "Assignment Report\n=================\n\n"))
	assert.Contains(t, r.Content, "Category: Academic\n")
	assert.Contains(t, r.Content, "Handled By: Abel Tesfaye (Handler)\n")
	assert.Contains(t, r.Content, "Target: Dean (College Dean)")

	require.Len(t, e.notifier.sent, 1)
	assert.Equal(t, e.president.ID, e.notifier.sent[0].UserID)

	list, err := e.relay.Reports(e.ctx, e.president)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = e.relay.Reports(e.ctx, e.handler)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestStereotypedReport_UnknownHandler(t *testing.T) {
	e := newEnv(t)
	c := e.complaint(t, models.StatusInProgress)

	err := e.relay.StereotypedReport(e.ctx, c.ID, 999, "assignment", "")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Empty(t, e.store.Reports())
	assert.Empty(t, e.notifier.sent)
}
