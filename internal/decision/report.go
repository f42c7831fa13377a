package decision

import (
	"context"
	"fmt"
	"strings"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/workflow"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StereotypedReport writes the summary of a hand-off for the president and
// notifies them. Missing rows are returned as errors for the caller to log.
func (r *Relay) StereotypedReport(ctx context.Context, complaintID, handlerID uint, reportType, info string) error {
	c, err := r.store.GetComplaint(ctx, complaintID)
	if err != nil {
		return err
	}
	handler, err := r.store.GetUserByID(ctx, handlerID)
	if err != nil {
		return err
	}
	president, err := r.store.FirstUserByRole(ctx, models.RolePresident)
	if err != nil {
		return err
	}

	report := &models.StereotypedReport{
		ComplaintID: c.ID,
		HandlerID:   handler.ID,
		RecipientID: president.ID,
		ReportType:  reportType,
		Content:     FormatReport(c, handler, reportType, info, r.now().Format(config.DecisionDateFormat)),
	}
	note := models.Notification{
		UserID:      president.ID,
		ComplaintID: &c.ID,
		Description: fmt.Sprintf("New %s report for complaint #%d", reportType, c.ID),
	}
	err = r.store.InTx(ctx, func(tx storage.Storage) error {
		if err := tx.CreateStereotypedReport(ctx, report); err != nil {
			return err
		}
		return tx.CreateNotification(ctx, &note)
	})
	if err != nil {
		return err
	}

	r.log.Info().Uint("report_id", report.ID).Uint("complaint_id", c.ID).Str("report_type", reportType).Msg("Stereotyped report generated")
	r.dispatch(ctx, []models.Notification{note})
	return nil
}

// FormatReport renders the plain-text body of a stereotyped report.
func FormatReport(c *models.Complaint, handler *models.User, reportType, info, date string) string {
	title := cases.Title(language.English).String(reportType) + " Report"

	category := "Uncategorized"
	if c.Category != models.CategoryUnset {
		category = cases.Title(language.English).String(string(c.Category))
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
	fmt.Fprintf(&b, "Complaint ID: %d\n", c.ID)
	fmt.Fprintf(&b, "Title: %s\n", c.Title)
	fmt.Fprintf(&b, "Category: %s\n", category)
	fmt.Fprintf(&b, "Status: %s\n", workflow.Display(c.Status, nil).Caption)
	fmt.Fprintf(&b, "Submitted On: %s\n", c.CreatedAt.Format(config.DecisionDateFormat))
	fmt.Fprintf(&b, "Handled By: %s (%s)\n", handler.FullName(), workflow.RoleLabel(handler.Role))
	if info != "" {
		fmt.Fprintf(&b, "Details:\n%s\n", info)
	}
	fmt.Fprintf(&b, "Date: %s", date)
	return b.String()
}

// Reports lists the stereotyped reports addressed to the president.
func (r *Relay) Reports(ctx context.Context, a workflow.Actor) ([]models.StereotypedReport, error) {
	if a.Role != models.RolePresident {
		return nil, apperr.Forbidden("auth.role_forbidden", "only the president receives stereotyped reports")
	}
	return r.store.ListStereotypedReports(ctx, a.ID)
}
