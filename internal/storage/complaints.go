package storage

import (
	"context"
	"strings"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"

	"gorm.io/gorm"
)

// ComplaintFilter narrows complaint listings and exports. Zero fields do not filter.
// InvolvedUserID keeps complaints the user submitted or sent or received an
// escalation for. Search matches title or description literally, ignoring
// case. To is exclusive.
type ComplaintFilter struct {
	Status         models.Status
	Category       models.Category
	SubmittedBy    *uint
	HandlerID      *uint
	InvolvedUserID *uint
	Unclaimed      bool
	Search         string
	From           *time.Time
	To             *time.Time
	Page           int
	PageSize       int
}

// Normalize clamps paging to the configured bounds.
func (f ComplaintFilter) Normalize() ComplaintFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = config.DefaultPageSize
	}
	if f.PageSize > config.MaxPageSize {
		f.PageSize = config.MaxPageSize
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

func (f ComplaintFilter) apply(q *gorm.DB, col func(string) string) *gorm.DB {
	if f.Status != "" {
		q = q.Where(col("status")+" = ?", string(f.Status))
	}
	if f.Category != models.CategoryUnset {
		q = q.Where(col("category")+" = ?", string(f.Category))
	}
	if f.SubmittedBy != nil {
		q = q.Where(col("submitted_by")+" = ?", *f.SubmittedBy)
	}
	if f.HandlerID != nil {
		q = q.Where(col("handler_id")+" = ?", *f.HandlerID)
	}
	if f.InvolvedUserID != nil {
		id := *f.InvolvedUserID
		q = q.Where("("+col("submitted_by")+" = ? OR EXISTS (SELECT 1 FROM escalations e WHERE e.complaint_id = "+
			col("id")+" AND (e.escalated_to_id = ? OR e.escalated_by_id = ?)))", id, id, id)
	}
	if f.Unclaimed {
		q = q.Where(col("handler_id") + " IS NULL")
	}
	if f.Search != "" {
		like := "%" + EscapeLike(f.Search) + "%"
		q = q.Where("("+col("title")+" ILIKE ? OR "+col("description")+" ILIKE ?)", like, like)
	}
	if f.From != nil {
		q = q.Where(col("created_at")+" >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where(col("created_at")+" < ?", *f.To)
	}
	return q
}

// likeEscaper escapes LIKE wildcards using the default backslash escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// EscapeLike returns s with its LIKE wildcards escaped.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func bare(c string) string { return c }

func aliased(alias string) func(string) string {
	return func(c string) string { return alias + "." + c }
}

func (s *Service) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	if c.Version == 0 {
		c.Version = 1
	}
	if err := s.db(ctx).Create(c).Error; err != nil {
		return apperr.Wrap(err, "failed to save complaint")
	}
	return nil
}

func (s *Service) GetComplaint(ctx context.Context, id uint) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.db(ctx).First(&c, id).Error; err != nil {
		return nil, lookupErr(err, "complaint.not_found", "complaint")
	}
	return &c, nil
}

// LockComplaint loads the row with SELECT ... FOR UPDATE. Only meaningful inside InTx.
func (s *Service) LockComplaint(ctx context.Context, id uint) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.db(ctx).Clauses(forUpdate()).First(&c, id).Error; err != nil {
		return nil, lookupErr(err, "complaint.not_found", "complaint")
	}
	return &c, nil
}

// UpdateComplaint writes every mutable column guarded by the version the
// caller read. On success c.Version is advanced; a stale version is a Conflict.
func (s *Service) UpdateComplaint(ctx context.Context, c *models.Complaint) error {
	now := time.Now()
	res := s.db(ctx).Model(&models.Complaint{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]interface{}{
			"title":                c.Title,
			"description":          c.Description,
			"category":             string(c.Category),
			"directorate":          c.Directorate,
			"visibility":           string(c.Visibility),
			"status":               string(c.Status),
			"evidence_file":        c.EvidenceFile,
			"resolution_details":   c.ResolutionDetails,
			"resolution_date":      c.ResolutionDate,
			"needs_committee":      c.NeedsCommittee,
			"committee_id":         c.CommitteeID,
			"needs_video_chat":     c.NeedsVideoChat,
			"video_chat_completed": c.VideoChatCompleted,
			"handler_id":           c.HandlerID,
			"version":              c.Version + 1,
			"updated_at":           now,
		})
	if res.Error != nil {
		return apperr.Wrap(res.Error, "failed to update complaint")
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("complaint.concurrent_update",
			"the complaint was changed by someone else, reload it and try again")
	}
	c.Version++
	c.UpdatedAt = now
	return nil
}

func (s *Service) ListComplaints(ctx context.Context, f ComplaintFilter) ([]models.Complaint, int64, error) {
	f = f.Normalize()
	q := f.apply(s.db(ctx).Model(&models.Complaint{}), bare).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "failed to count complaints")
	}

	var list []models.Complaint
	err := q.Order("id DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&list).Error
	if err != nil {
		return nil, 0, apperr.Wrap(err, "failed to list complaints")
	}
	return list, total, nil
}

const anonymousSubmitter = "Anonymous"

// ExportComplaints returns every matching row, ignoring paging.
func (s *Service) ExportComplaints(ctx context.Context, f ComplaintFilter) ([]models.ComplaintExportRow, error) {
	f = f.Normalize()
	q := s.db(ctx).Table("complaints AS c").
		Select(`c.id, c.title, c.category, c.visibility, c.status,
			c.created_at AS submitted_on,
			c.resolution_date AS resolved_on,
			c.resolution_details,
			TRIM(CONCAT(su.first_name, ' ', su.last_name)) AS submitted_by,
			TRIM(CONCAT(h.first_name, ' ', h.last_name)) AS handled_by`).
		Joins("LEFT JOIN users su ON su.id = c.submitted_by").
		Joins("LEFT JOIN users h ON h.id = c.handler_id")
	q = f.apply(q, aliased("c"))

	var rows []models.ComplaintExportRow
	if err := q.Order("c.id ASC").Scan(&rows).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to export complaints")
	}
	for i := range rows {
		if rows[i].Visibility == models.VisibilityAnonymous {
			rows[i].SubmittedBy = anonymousSubmitter
		}
	}
	return rows, nil
}

func (s *Service) CountComplaintsByStatus(ctx context.Context) (map[models.Status]int64, error) {
	var rows []struct {
		Status models.Status
		Count  int64
	}
	err := s.db(ctx).Model(&models.Complaint{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Wrap(err, "failed to count complaints by status")
	}
	out := make(map[models.Status]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (s *Service) CountComplaintsByCategory(ctx context.Context) (map[models.Category]int64, error) {
	var rows []struct {
		Category models.Category
		Count    int64
	}
	err := s.db(ctx).Model(&models.Complaint{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Wrap(err, "failed to count complaints by category")
	}
	out := make(map[models.Category]int64, len(rows))
	for _, r := range rows {
		out[r.Category] = r.Count
	}
	return out, nil
}

func (s *Service) ResolvedComplaints(ctx context.Context) ([]models.Complaint, error) {
	var list []models.Complaint
	err := s.db(ctx).
		Where("status = ? AND resolution_date IS NOT NULL", string(models.StatusResolved)).
		Find(&list).Error
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load resolved complaints")
	}
	return list, nil
}
