package handler

import (
	"net/http"

	"complaintdesk/backend/internal/complaint"

	"github.com/gin-gonic/gin"
)

// PendingEscalations lists the hand-offs waiting on the caller.
func (h *Handler) PendingEscalations(c *gin.Context) {
	list, err := h.Complaints.Inbox(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, list)
}

func (h *Handler) ResolveEscalation(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var in complaint.DetailsInput
	if !h.bind(c, &in) {
		return
	}
	e, out, err := h.Complaints.ResolveEscalation(c.Request.Context(), actor(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, e, out)
}

func (h *Handler) ForwardEscalation(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var in complaint.ForwardInput
	if !h.bind(c, &in) {
		return
	}
	e, out, err := h.Complaints.ForwardEscalation(c.Request.Context(), actor(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, e, out)
}
