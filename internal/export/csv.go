// Package export writes the complaint list as a spreadsheet-friendly CSV file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/workflow"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BOM makes Excel open the file as UTF-8.
const BOM = "\xEF\xBB\xBF"

// Header is the fixed column set of the export.
var Header = []string{
	"ID", "Title", "Category", "Submitted By", "Handled By", "Visibility",
	"Status", "Submitted On", "Resolved On", "Resolution Details",
}

// FileName is the attachment name for an export generated at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("complaints_%s.csv", t.Format("20060102_150405"))
}

// WriteCSV writes the BOM, the header and one record per row.
func WriteCSV(w io.Writer, rows []models.ComplaintExportRow) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("write complaint %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(r models.ComplaintExportRow) []string {
	category := "Uncategorized"
	if r.Category != models.CategoryUnset {
		category = cases.Title(language.English).String(string(r.Category))
	}
	handledBy := r.HandledBy
	if handledBy == "" {
		handledBy = "Unassigned"
	}
	resolvedOn := ""
	if r.ResolvedOn != nil {
		resolvedOn = r.ResolvedOn.Format(config.ExportDateFormat)
	}
	details := ""
	if r.ResolutionDetails != nil {
		details = *r.ResolutionDetails
	}
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.Title,
		category,
		r.SubmittedBy,
		handledBy,
		string(r.Visibility),
		workflow.Display(r.Status, nil).Caption,
		r.SubmittedOn.Format(config.ExportDateFormat),
		resolvedOn,
		details,
	}
}
