package handler

import (
	"net/http"
	"path/filepath"

	"complaintdesk/backend/internal/decision"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListDecisions(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.Decisions.List(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, list)
}

func (h *Handler) SendDecision(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var in decision.SendInput
	if !h.bind(c, &in) {
		return
	}
	d, out, err := h.Decisions.Send(c.Request.Context(), actor(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated, d, out)
}

// DecisionArtifact downloads the text file of a decision.
func (h *Handler) DecisionArtifact(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	path, err := h.Decisions.ArtifactPath(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
