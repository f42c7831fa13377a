package handler

import (
	"context"
	"net/http"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/workflow"

	"github.com/gin-gonic/gin"
)

// listQuery is the query string accepted by the complaint list and the export.
type listQuery struct {
	Status    models.Status   `form:"status"`
	Category  models.Category `form:"category"`
	Mine      bool            `form:"mine"`
	Unclaimed bool            `form:"unclaimed"`
	Search    string          `form:"q"`
	From      string          `form:"from"`
	To        string          `form:"to"`
	Page      int             `form:"page"`
	PageSize  int             `form:"page_size"`
}

const dateParam = "2006-01-02"

func (h *Handler) filter(c *gin.Context) (storage.ComplaintFilter, bool) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, apperr.Validation("validation.invalid_input", err.Error()))
		return storage.ComplaintFilter{}, false
	}
	if q.Status != "" && !q.Status.Valid() {
		h.fail(c, apperr.Validation("validation.invalid_input", "unknown status "+string(q.Status)))
		return storage.ComplaintFilter{}, false
	}
	if q.Category != models.CategoryUnset && !q.Category.Valid() {
		h.fail(c, apperr.Validation("validation.invalid_input", "unknown category "+string(q.Category)))
		return storage.ComplaintFilter{}, false
	}
	f := storage.ComplaintFilter{
		Status:    q.Status,
		Category:  q.Category,
		Unclaimed: q.Unclaimed,
		Search:    q.Search,
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
	if q.Mine {
		id := actor(c).ID
		f.HandlerID = &id
	}
	for _, p := range []struct {
		raw string
		dst **time.Time
		end bool
	}{{q.From, &f.From, false}, {q.To, &f.To, true}} {
		if p.raw == "" {
			continue
		}
		t, err := time.Parse(dateParam, p.raw)
		if err != nil {
			h.fail(c, apperr.Validation("validation.invalid_input", "dates use YYYY-MM-DD"))
			return storage.ComplaintFilter{}, false
		}
		if p.end {
			// the storage bound is exclusive, so "to" covers the whole day
			t = t.AddDate(0, 0, 1)
		}
		*p.dst = &t
	}
	return f.Normalize(), true
}

func (h *Handler) ListComplaints(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	items, total, err := h.Complaints.List(c.Request.Context(), actor(c), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      items,
		"total":     total,
		"page":      f.Page,
		"page_size": f.PageSize,
	})
}

func (h *Handler) SubmitComplaint(c *gin.Context) {
	var in complaint.SubmitInput
	if !h.bind(c, &in) {
		return
	}
	cmp, out, err := h.Complaints.Submit(c.Request.Context(), actor(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated, cmp, out)
}

func (h *Handler) GetComplaint(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.Complaints.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, view)
}

type transitionFn func(ctx context.Context, a workflow.Actor, id uint) (*models.Complaint, workflow.Outcome, error)

type transitionInputFn[T any] func(ctx context.Context, a workflow.Actor, id uint, in T) (*models.Complaint, workflow.Outcome, error)

func (h *Handler) transition(c *gin.Context, fn transitionFn) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cmp, out, err := fn(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, cmp, out)
}

func transitionWith[T any](h *Handler, c *gin.Context, fn transitionInputFn[T]) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var in T
	if !h.bind(c, &in) {
		return
	}
	cmp, out, err := fn(c.Request.Context(), actor(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, cmp, out)
}

func (h *Handler) ClaimComplaint(c *gin.Context)    { h.transition(c, h.Complaints.Claim) }
func (h *Handler) ValidateComplaint(c *gin.Context) { h.transition(c, h.Complaints.Validate) }
func (h *Handler) RequestCommittee(c *gin.Context)  { h.transition(c, h.Complaints.MarkNeedsCommittee) }
func (h *Handler) RequestVideoChat(c *gin.Context)  { h.transition(c, h.Complaints.RequestVideoChat) }
func (h *Handler) CompleteVideoChat(c *gin.Context) { h.transition(c, h.Complaints.CompleteVideoChat) }

func (h *Handler) CategorizeComplaint(c *gin.Context) {
	transitionWith(h, c, h.Complaints.Categorize)
}

func (h *Handler) AssignComplaint(c *gin.Context) { transitionWith(h, c, h.Complaints.Assign) }

func (h *Handler) EscalateComplaint(c *gin.Context) { transitionWith(h, c, h.Complaints.Escalate) }

func (h *Handler) AssignCommittee(c *gin.Context) {
	transitionWith(h, c, h.Complaints.AssignCommittee)
}

func (h *Handler) ResolveComplaint(c *gin.Context) { transitionWith(h, c, h.Complaints.Resolve) }

func (h *Handler) RejectComplaint(c *gin.Context) { transitionWith(h, c, h.Complaints.Reject) }

func (h *Handler) RequestMoreInfo(c *gin.Context) {
	transitionWith(h, c, h.Complaints.RequestMoreInfo)
}

func (h *Handler) ProvideInfo(c *gin.Context) { transitionWith(h, c, h.Complaints.ProvideInfo) }

func (h *Handler) TagComplaint(c *gin.Context) {
	h.tag(c, h.Complaints.Tag)
}

func (h *Handler) UntagComplaint(c *gin.Context) {
	h.tag(c, h.Complaints.Untag)
}

func (h *Handler) tag(c *gin.Context, fn func(ctx context.Context, a workflow.Actor, complaintID, stereotypeID uint) (workflow.Outcome, error)) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	stereotypeID, ok := h.pathID(c, "stereotype_id")
	if !ok {
		return
	}
	out, err := fn(c.Request.Context(), actor(c), id, stereotypeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, nil, out)
}
