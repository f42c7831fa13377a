// Package storage persists the complaint workflow in PostgreSQL through gorm
// and keeps notification counters and fan-out in Redis.
package storage

import (
	"context"
	"errors"
	"fmt"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Storage is the relational side of the service. Every method honours the
// transaction it was obtained from: inside InTx, fn receives a Storage bound
// to the open transaction.
type Storage interface {
	InTx(ctx context.Context, fn func(tx Storage) error) error

	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error)
	FirstUserByRole(ctx context.Context, role models.Role) (*models.User, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	SaveUser(ctx context.Context, user *models.User) error

	CreateComplaint(ctx context.Context, c *models.Complaint) error
	GetComplaint(ctx context.Context, id uint) (*models.Complaint, error)
	LockComplaint(ctx context.Context, id uint) (*models.Complaint, error)
	UpdateComplaint(ctx context.Context, c *models.Complaint) error
	ListComplaints(ctx context.Context, f ComplaintFilter) ([]models.Complaint, int64, error)
	ExportComplaints(ctx context.Context, f ComplaintFilter) ([]models.ComplaintExportRow, error)
	CountComplaintsByStatus(ctx context.Context) (map[models.Status]int64, error)
	CountComplaintsByCategory(ctx context.Context) (map[models.Category]int64, error)
	ResolvedComplaints(ctx context.Context) ([]models.Complaint, error)

	CreateEscalation(ctx context.Context, e *models.Escalation) error
	UpdateEscalation(ctx context.Context, e *models.Escalation) error
	GetEscalation(ctx context.Context, id uint) (*models.Escalation, error)
	LatestEscalation(ctx context.Context, complaintID uint) (*models.Escalation, error)
	LatestEscalations(ctx context.Context, complaintIDs []uint) (map[uint]*models.Escalation, error)
	ListEscalations(ctx context.Context, complaintID uint) ([]models.Escalation, error)
	ListPendingEscalationsFor(ctx context.Context, userID uint) ([]models.Escalation, error)

	CreateDecision(ctx context.Context, d *models.Decision) error
	GetDecision(ctx context.Context, id uint) (*models.Decision, error)
	FindFinalDecision(ctx context.Context, complaintID, senderID, receiverID uint) (*models.Decision, error)
	ListDecisions(ctx context.Context, complaintID uint) ([]models.Decision, error)
	CreateStereotypedReport(ctx context.Context, r *models.StereotypedReport) error
	ListStereotypedReports(ctx context.Context, recipientID uint) ([]models.StereotypedReport, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID uint, ids []uint) (int64, error)
	CountUnreadNotifications(ctx context.Context, userID uint) (int64, error)

	CreateStereotype(ctx context.Context, s *models.Stereotype) error
	GetStereotype(ctx context.Context, id uint) (*models.Stereotype, error)
	FindStereotypeByLabel(ctx context.Context, label string) (*models.Stereotype, error)
	ListStereotypes(ctx context.Context) ([]models.Stereotype, error)
	AddComplaintStereotype(ctx context.Context, cs *models.ComplaintStereotype) (bool, error)
	RemoveComplaintStereotype(ctx context.Context, complaintID, stereotypeID uint) (bool, error)
	ListComplaintStereotypes(ctx context.Context, complaintID uint) ([]models.Stereotype, error)

	CreateCommittee(ctx context.Context, c *models.Committee) error
	GetCommittee(ctx context.Context, id uint) (*models.Committee, error)
	ListCommittees(ctx context.Context) ([]models.Committee, error)

	AppendStatusHistory(ctx context.Context, h *models.StatusHistory) error
	ListStatusHistory(ctx context.Context, complaintID uint) ([]models.StatusHistory, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// InTx runs fn inside a database transaction. Any error returned by fn rolls
// the transaction back and is returned unchanged.
func (s *Service) InTx(ctx context.Context, fn func(tx Storage) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Service{DB: tx, Redis: s.Redis})
	})
}

func (s *Service) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// lookupErr maps gorm's not-found to a NotFound error with code and wraps the rest.
func lookupErr(err error, code, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(code, what+" not found")
	}
	return apperr.Wrap(err, fmt.Sprintf("failed to load %s", what))
}

func forUpdate() clause.Locking {
	return clause.Locking{Strength: clause.LockingStrengthUpdate}
}

// OnePendingEscalationIndex allows a single pending hand-off per complaint.
const OnePendingEscalationIndex = "idx_escalations_one_pending"

// Migrate creates or updates the schema, including the partial index gorm
// tags cannot express.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON escalations (complaint_id) WHERE status = '%s'",
		OnePendingEscalationIndex, models.EscalationPending)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create %s: %w", OnePendingEscalationIndex, err)
	}
	return nil
}
