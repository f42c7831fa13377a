package decision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/workflow"
)

// FormatDecision renders the text stored in a final decision's artifact.
func FormatDecision(complaintID uint, text string, sender *models.User, at time.Time) string {
	var b strings.Builder
	b.WriteString("Decision Report\n")
	b.WriteString("==============\n\n")
	fmt.Fprintf(&b, "Complaint ID: %d\n", complaintID)
	fmt.Fprintf(&b, "Decision Text: %s\n", text)
	b.WriteString("Status: Final\n")
	fmt.Fprintf(&b, "Sent By: %s %s (%s)\n", sender.FirstName, sender.LastName, workflow.RoleLabel(sender.Role))
	fmt.Fprintf(&b, "Date: %s", at.Format(config.DecisionDateFormat))
	return b.String()
}

// ArtifactName is the file name of a decision artifact written at t.
func ArtifactName(complaintID uint, t time.Time) string {
	return fmt.Sprintf("decision_%d_%d.txt", complaintID, t.UnixNano())
}

// writeArtifact creates the file and returns its base name.
func (r *Relay) writeArtifact(complaintID uint, text string, sender *models.User) (string, error) {
	now := r.now()
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", apperr.Wrap(err, "create decisions directory")
	}
	name := ArtifactName(complaintID, now)
	body := FormatDecision(complaintID, text, sender, now)
	if err := os.WriteFile(filepath.Join(r.dir, name), []byte(body), config.DecisionArtifactMode); err != nil {
		return "", apperr.Wrap(err, "write decision file")
	}
	return name, nil
}
