// Package analysis computes the summary figures shown on the reports page.
package analysis

import (
	"context"
	"math"

	"complaintdesk/backend/internal/models"
)

// Source is the slice of storage the statistics are computed from.
type Source interface {
	CountComplaintsByStatus(ctx context.Context) (map[models.Status]int64, error)
	CountComplaintsByCategory(ctx context.Context) (map[models.Category]int64, error)
	ResolvedComplaints(ctx context.Context) ([]models.Complaint, error)
}

// Uncategorized is the ByCategory key for complaints nobody has categorized yet.
const Uncategorized = "uncategorized"

type Stats struct {
	Total                  int64                   `json:"total"`
	ByStatus               map[models.Status]int64 `json:"by_status"`
	ByCategory             map[string]int64        `json:"by_category"`
	Resolved               int64                   `json:"resolved"`
	AverageResolutionHours float64                 `json:"average_resolution_hours"`
}

// Compute gathers the totals and the mean time from submission to resolution.
func Compute(ctx context.Context, src Source) (*Stats, error) {
	byStatus, err := src.CountComplaintsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := src.CountComplaintsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	resolved, err := src.ResolvedComplaints(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		ByStatus:               make(map[models.Status]int64, len(models.AllStatuses)),
		ByCategory:             make(map[string]int64, 3),
		Resolved:               int64(len(resolved)),
		AverageResolutionHours: AverageResolutionHours(resolved),
	}
	for _, s := range models.AllStatuses {
		st.ByStatus[s] = byStatus[s]
		st.Total += byStatus[s]
	}
	for c, n := range byCategory {
		key := string(c)
		if c == models.CategoryUnset {
			key = Uncategorized
		}
		st.ByCategory[key] += n
	}
	return st, nil
}

// AverageResolutionHours is the mean of ResolutionDate - CreatedAt in hours,
// rounded to two decimals. Complaints without a resolution date are ignored.
func AverageResolutionHours(complaints []models.Complaint) float64 {
	var total float64
	var n int
	for _, c := range complaints {
		if c.ResolutionDate == nil {
			continue
		}
		d := c.ResolutionDate.Sub(c.CreatedAt)
		if d < 0 {
			d = 0
		}
		total += d.Hours()
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Round(total/float64(n)*100) / 100
}
