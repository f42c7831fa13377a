package storage

import (
	"context"
	"errors"
	"strings"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db(ctx).First(&user, id).Error; err != nil {
		return nil, lookupErr(err, "user.not_found", "user")
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, lookupErr(err, "user.not_found", "user")
	}
	return &user, nil
}

func (s *Service) GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var user models.User
	if err := s.db(ctx).Where("telegram_chat_id = ?", chatID).First(&user).Error; err != nil {
		return nil, lookupErr(err, "user.not_linked", "user for this chat")
	}
	return &user, nil
}

// FirstUserByRole returns the user with the lowest id holding role.
func (s *Service) FirstUserByRole(ctx context.Context, role models.Role) (*models.User, error) {
	var user models.User
	err := s.db(ctx).Where("role = ?", string(role)).Order("id ASC").First(&user).Error
	if err != nil {
		return nil, lookupErr(err, "user.role_unfilled", "user with role "+string(role))
	}
	return &user, nil
}

func (s *Service) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := s.db(ctx).Where("role = ?", string(role)).Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to list users")
	}
	return users, nil
}

// SaveUser inserts or updates the user.
func (s *Service) SaveUser(ctx context.Context, user *models.User) error {
	err := s.db(ctx).Save(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("user.email_taken", "a user with this e-mail already exists")
	}
	if err != nil {
		return apperr.Wrap(err, "failed to save user")
	}
	return nil
}
