package workflow

import (
	"strings"

	"complaintdesk/backend/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayState is the assignment caption shown next to a complaint.
type DisplayState struct {
	Caption    string            `json:"caption"`
	SubState   string            `json:"sub_state,omitempty"`
	ActionType models.ActionType `json:"action_type,omitempty"`
}

// String renders the state as a single line, e.g. "Assigned: Department Head (Pending)".
func (d DisplayState) String() string {
	if d.SubState == "" {
		return d.Caption
	}
	return d.Caption + " (" + d.SubState + ")"
}

var statusCaptions = map[models.Status]string{
	models.StatusPending:         "Pending Review",
	models.StatusValidated:       "Validated",
	models.StatusInProgress:      "In Progress",
	models.StatusAssigned:        "Assigned",
	models.StatusEscalated:       "Escalated",
	models.StatusResolved:        "Resolved",
	models.StatusRejected:        "Rejected",
	models.StatusPendingMoreInfo: "Awaiting More Information",
}

// Display derives the caption from the complaint status and its most recent
// escalation. latest must be the row with the highest ID, see LatestOf.
func Display(status models.Status, latest *models.Escalation) DisplayState {
	if latest == nil {
		caption, ok := statusCaptions[status]
		if !ok {
			caption = RoleLabel(models.Role(status))
		}
		return DisplayState{Caption: caption}
	}

	prefix := "Assigned: "
	if latest.ActionType == models.ActionEscalation {
		prefix = "Escalated: "
	}
	sub := "Pending"
	if latest.Status == models.EscalationResolved {
		sub = "Resolved"
	}
	return DisplayState{
		Caption:    prefix + RoleLabel(latest.EscalatedTo),
		SubState:   sub,
		ActionType: latest.ActionType,
	}
}

// LatestOf picks the escalation with the highest ID. IDs are used instead of
// created_at so rows inserted in the same clock tick still order correctly.
func LatestOf(escalations []models.Escalation) *models.Escalation {
	var latest *models.Escalation
	for i := range escalations {
		if latest == nil || escalations[i].ID > latest.ID {
			latest = &escalations[i]
		}
	}
	return latest
}

var roleLabels = map[models.Role]string{
	models.RoleAcademicVP:       "Academic VP",
	models.RoleAdministrativeVP: "Administrative VP",
}

// RoleLabel turns a role discriminator into a caption, "college_dean" -> "College Dean".
func RoleLabel(r models.Role) string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return cases.Title(language.English).String(strings.ReplaceAll(string(r), "_", " "))
}
