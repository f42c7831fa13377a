package workflow_test

import (
	"testing"

	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplay_NoEscalationUsesStatusCaption(t *testing.T) {
	tests := []struct {
		status models.Status
		want   string
	}{
		{models.StatusPending, "Pending Review"},
		{models.StatusInProgress, "In Progress"},
		{models.StatusResolved, "Resolved"},
		{models.StatusRejected, "Rejected"},
		{models.StatusPendingMoreInfo, "Awaiting More Information"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			d := workflow.Display(tt.status, nil)
			assert.Equal(t, tt.want, d.Caption)
			assert.Empty(t, d.SubState)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDisplay_Assignment(t *testing.T) {
	e := &models.Escalation{ID: 2, ActionType: models.ActionAssignment,
		EscalatedTo: models.RoleDepartmentHead, Status: models.EscalationPending}

	d := workflow.Display(models.StatusInProgress, e)

	assert.Equal(t, "Assigned: Department Head", d.Caption)
	assert.Equal(t, "Pending", d.SubState)
	assert.Equal(t, "Assigned: Department Head (Pending)", d.String())
}

func TestDisplay_Escalation(t *testing.T) {
	e := &models.Escalation{ID: 2, ActionType: models.ActionEscalation,
		EscalatedTo: models.RoleAcademicVP, Status: models.EscalationResolved}

	d := workflow.Display(models.StatusEscalated, e)

	assert.Equal(t, "Escalated: Academic VP (Resolved)", d.String())
	assert.Equal(t, models.ActionEscalation, d.ActionType)
}

// TestLatestOf_HighestIDWins uses the highest id, not insertion order or created_at.
func TestLatestOf_HighestIDWins(t *testing.T) {
	escalations := []models.Escalation{
		{ID: 9, Status: models.EscalationResolved, ActionType: models.ActionAssignment, EscalatedTo: models.RoleCollegeDean},
		{ID: 5, Status: models.EscalationPending, ActionType: models.ActionAssignment, EscalatedTo: models.RoleCollegeDean},
	}

	latest := workflow.LatestOf(escalations)

	require.NotNil(t, latest)
	assert.Equal(t, uint(9), latest.ID)
	assert.Equal(t, "Resolved", workflow.Display(models.StatusInProgress, latest).SubState)
}

func TestLatestOf_Empty(t *testing.T) {
	assert.Nil(t, workflow.LatestOf(nil))
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "College Dean", workflow.RoleLabel(models.RoleCollegeDean))
	assert.Equal(t, "President", workflow.RoleLabel(models.RolePresident))
	assert.Equal(t, "Administrative VP", workflow.RoleLabel(models.RoleAdministrativeVP))
	assert.Equal(t, "Student Union Rep", workflow.RoleLabel(models.Role("student_union_rep")))
}
