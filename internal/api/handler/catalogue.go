package handler

import (
	"net/http"

	"complaintdesk/backend/internal/complaint"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListStereotypes(c *gin.Context) {
	list, err := h.Complaints.ListStereotypes(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, list)
}

func (h *Handler) CreateStereotype(c *gin.Context) {
	var in complaint.StereotypeInput
	if !h.bind(c, &in) {
		return
	}
	st, err := h.Complaints.CreateStereotype(c.Request.Context(), actor(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": st})
}

func (h *Handler) ListCommittees(c *gin.Context) {
	list, err := h.Complaints.ListCommittees(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, list)
}

func (h *Handler) CreateCommittee(c *gin.Context) {
	var in complaint.CommitteeInput
	if !h.bind(c, &in) {
		return
	}
	cm, err := h.Complaints.CreateCommittee(c.Request.Context(), actor(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": cm})
}
