package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/dolapkampus/backend/pkg/errors"

	"github.com/dolapkampus/backend/internal/models"
)

// UpdateProfileInput carries the mutable profile fields. Empty fields are left
// unchanged.
type UpdateProfileInput struct {
	FullName   string `json:"fullName" validate:"omitempty,min=2"`
	Department string `json:"department" validate:"omitempty,max=120"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
}

// UserService serves authenticated account operations.
type UserService struct {
	db *gorm.DB
}

// NewUserService builds a UserService over the durable store.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Profile returns the account with its institution loaded.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Institution").
		First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load profile")
	}
	return &user, nil
}

// UpdateProfile applies the submitted profile fields and returns the updated account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(input.FullName); name != "" {
		updates["full_name"] = name
	}
	if dept := strings.TrimSpace(input.Department); dept != "" {
		updates["department"] = dept
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		updates["phone"] = phone
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to update profile")
	}
	return s.Profile(ctx, userID)
}
