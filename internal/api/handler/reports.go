package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"complaintdesk/backend/internal/analysis"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/export"

	"github.com/gin-gonic/gin"
)

// ExportComplaints streams the filtered complaint list as CSV. With nothing to
// export the browser is sent back where it came from with a warning instead of
// an empty download.
func (h *Handler) ExportComplaints(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	rows, err := h.Complaints.Export(c.Request.Context(), actor(c), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(rows) == 0 {
		c.Redirect(http.StatusSeeOther, backWithWarning(c.GetHeader("Referer"), "export.empty"))
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(time.Now())))
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, rows); err != nil {
		h.Log.Error().Err(err).Int("rows", len(rows)).Msg("CSV export interrupted")
	}
}

// backWithWarning keeps only the path and query of referer. Paths a browser
// could read as another host, such as "//evil.test" or "/\evil.test", fall
// back to the complaint list.
func backWithWarning(referer, code string) string {
	target := &url.URL{Path: config.ExportFallbackPath}
	if u, err := url.Parse(referer); err == nil && localPath(u.Path) {
		target = &url.URL{Path: u.Path, RawQuery: u.RawQuery}
	}
	q := target.Query()
	q.Set("warning", code)
	target.RawQuery = q.Encode()
	return target.String()
}

func localPath(p string) bool {
	if !strings.HasPrefix(p, "/") || len(p) < 2 {
		return p == "/"
	}
	return p[1] != '/' && p[1] != '\\'
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := analysis.Compute(c.Request.Context(), h.Store)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, st)
}

func (h *Handler) StereotypedReports(c *gin.Context) {
	list, err := h.Decisions.Reports(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, list)
}

