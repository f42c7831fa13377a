// Package handler exposes the complaint workflow as a JSON API over gin.
package handler

import (
	"net/http"

	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/decision"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/notify"
	"complaintdesk/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler holds the services behind the HTTP routes.
type Handler struct {
	Complaints    *complaint.Service
	Decisions     *decision.Relay
	Notifications *notify.Dispatcher
	Hub           *notify.Hub
	Store         storage.Storage
	Tokens        *auth.Tokens
	Localizer     *localization.Localizer
	Log           zerolog.Logger
}

func NewHandler(
	complaints *complaint.Service,
	decisions *decision.Relay,
	notifications *notify.Dispatcher,
	hub *notify.Hub,
	store storage.Storage,
	tokens *auth.Tokens,
	localizer *localization.Localizer,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		Complaints:    complaints,
		Decisions:     decisions,
		Notifications: notifications,
		Hub:           hub,
		Store:         store,
		Tokens:        tokens,
		Localizer:     localizer,
		Log:           log.With().Str("component", "http").Logger(),
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(h.Log))
	h.Register(r)
	return r
}

// Register mounts the routes on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/auth/login", h.Login)
	r.GET("/ws/notifications", h.ServeWebSocket)

	api := r.Group("/api", h.RequireAuth())
	api.GET("/me", h.Me)

	complaints := api.Group("/complaints")
	complaints.GET("", h.ListComplaints)
	complaints.POST("", h.SubmitComplaint)
	complaints.GET("/:id", h.GetComplaint)
	complaints.POST("/:id/claim", h.ClaimComplaint)
	complaints.POST("/:id/categorize", h.CategorizeComplaint)
	complaints.POST("/:id/validate", h.ValidateComplaint)
	complaints.POST("/:id/assign", h.AssignComplaint)
	complaints.POST("/:id/escalate", h.EscalateComplaint)
	complaints.POST("/:id/committee/request", h.RequestCommittee)
	complaints.POST("/:id/committee", h.AssignCommittee)
	complaints.POST("/:id/video-chat", h.RequestVideoChat)
	complaints.POST("/:id/video-chat/complete", h.CompleteVideoChat)
	complaints.POST("/:id/resolve", h.ResolveComplaint)
	complaints.POST("/:id/reject", h.RejectComplaint)
	complaints.POST("/:id/request-info", h.RequestMoreInfo)
	complaints.POST("/:id/provide-info", h.ProvideInfo)
	complaints.GET("/:id/decisions", h.ListDecisions)
	complaints.POST("/:id/decisions", h.SendDecision)
	complaints.POST("/:id/stereotypes/:stereotype_id", h.TagComplaint)
	complaints.DELETE("/:id/stereotypes/:stereotype_id", h.UntagComplaint)

	api.GET("/escalations/pending", h.PendingEscalations)
	api.POST("/escalations/:id/resolve", h.ResolveEscalation)
	api.POST("/escalations/:id/forward", h.ForwardEscalation)

	api.GET("/stereotypes", h.ListStereotypes)
	api.POST("/stereotypes", h.CreateStereotype)
	api.GET("/committees", h.ListCommittees)
	api.POST("/committees", h.CreateCommittee)

	api.GET("/notifications", h.ListNotifications)
	api.GET("/notifications/unread-count", h.UnreadCount)
	api.POST("/notifications/read", h.MarkNotificationsRead)

	reports := api.Group("/reports")
	reports.GET("/export.csv", h.RequireRole(models.RoleHandler, models.RolePresident, models.RoleAdmin), h.ExportComplaints)
	reports.GET("/stats", h.RequireRole(models.RoleHandler, models.RolePresident, models.RoleAdmin), h.Stats)
	reports.GET("/stereotyped", h.RequireRole(models.RolePresident), h.StereotypedReports)

	api.GET("/decisions/:id/artifact", h.DecisionArtifact)
}
