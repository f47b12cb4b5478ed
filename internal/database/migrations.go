package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dolapkampus/backend/internal/models"
	"github.com/dolapkampus/backend/internal/university"
	"github.com/dolapkampus/backend/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Institution{},
		&models.User{},
	)
}

// SeedInstitutions upserts the reference dataset into the institution table.
// Existing records (matched by name or primary domain) are left untouched.
func SeedInstitutions(db *gorm.DB) error {
	dataset, err := university.Load()
	if err != nil {
		return err
	}

	for _, rec := range dataset.All() {
		primary := rec.PrimaryDomain()
		if primary == "" {
			continue
		}
		emailDomain := "@" + primary

		var existing models.Institution
		err := db.Where("name = ? OR email_domain = ?", rec.Name, emailDomain).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		domains, err := json.Marshal(rec.Domains)
		if err != nil {
			return fmt.Errorf("marshal domains for %s: %w", rec.Name, err)
		}

		inst := models.Institution{
			Name:        rec.Name,
			EmailDomain: emailDomain,
			Domains:     domains,
			City:        rec.StateProvince,
			Country:     rec.Country,
			IsActive:    true,
		}
		if err := db.Create(&inst).Error; err != nil {
			// Concurrent seeding from another replica is harmless.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
	}

	return nil
}

// EnsureAdminAccount creates the bootstrap administrator when it does not exist yet.
// The account is attached to the institution matching the admin email domain; when no
// institution matches, the first active institution is used so the invariant that every
// account references an institution holds.
func EnsureAdminAccount(db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var inst models.Institution
	at := strings.LastIndex(email, "@")
	if at > 0 {
		domain := email[at:]
		if err := db.Where("email_domain = ?", domain).First(&inst).Error; err != nil &&
			!errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	if inst.ID == "" {
		if err := db.Where("is_active = ?", true).Order("name ASC").First(&inst).Error; err != nil {
			return fmt.Errorf("no institution available for admin account: %w", err)
		}
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:         email,
		Password:      hash,
		FullName:      "Administrator",
		InstitutionID: inst.ID,
		Role:          models.RoleAdmin,
		EmailVerified: true,
		IsActive:      true,
	}
	if err := db.Create(&admin).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return nil
}
