package config

import "time"

const (
	// Listing
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Stereotyped reports
	ReportTypeAssignment = "assignment"
	ReportTypeEscalation = "escalation"

	// Decision artifacts
	DecisionDateFormat   = "2006-01-02 15:04:05"
	DecisionArtifactDir  = "decisions"
	DecisionArtifactMode = 0o644

	// Notifications
	UnreadCounterTTL      = 30 * 24 * time.Hour
	NotificationSendQueue = 64

	// Export
	ExportDateFormat   = "2006-01-02"
	ExportFallbackPath = "/complaints"
)
