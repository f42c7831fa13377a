package handler

import (
	"github.com/gin-gonic/gin"
)

type notificationQuery struct {
	UnreadOnly bool `form:"unread"`
	Limit      int  `form:"limit"`
}

func (h *Handler) ListNotifications(c *gin.Context) {
	var q notificationQuery
	_ = c.ShouldBindQuery(&q)
	list, err := h.Notifications.List(c.Request.Context(), actor(c).ID, q.UnreadOnly, q.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, list)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.Notifications.UnreadCount(c.Request.Context(), actor(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"unread": n})
}

type markReadRequest struct {
	// IDs to mark; empty marks everything.
	IDs []uint `json:"ids"`
}

func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	var req markReadRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	n, err := h.Notifications.MarkRead(c.Request.Context(), actor(c).ID, req.IDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"marked": n})
}
