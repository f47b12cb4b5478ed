// Package services implements the application's business logic on top of the durable
// store, the pending-registration store and the embedded university dataset.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/dolapkampus/backend/pkg/errors"
	"github.com/dolapkampus/backend/pkg/logger"

	"github.com/dolapkampus/backend/internal/models"
	"github.com/dolapkampus/backend/internal/university"
)

// UniversityService resolves email addresses to institutions and serves the
// institution and department listings.
type UniversityService struct {
	db      *gorm.DB
	dataset *university.Dataset
}

// NewUniversityService builds the resolver over the durable store and the embedded
// reference dataset.
func NewUniversityService(db *gorm.DB, dataset *university.Dataset) *UniversityService {
	return &UniversityService{
		db:      db,
		dataset: dataset,
	}
}

func (s *UniversityService) log() *zap.Logger {
	return logger.WithModule("university")
}

// ResolveByEmail maps an email address to its Institution.
//
// Matching order: the durable table by email-domain suffix (full domain first, then
// progressively shorter right-aligned suffixes so subdomain addresses reach their
// parent institution), then the reference dataset. A dataset hit with no durable
// record is re-checked by name before a lazy insert, and an insert losing a race is
// resolved by re-reading the winner's row.
func (s *UniversityService) ResolveByEmail(ctx context.Context, email string) (*models.Institution, error) {
	domain, ok := emailDomain(email)
	if !ok {
		return nil, apperrors.ErrInvalidUniversityEmail
	}

	candidates := domainCandidates(domain)

	var institution models.Institution
	for _, candidate := range candidates {
		err := s.db.WithContext(ctx).
			Where("email_domain = ?", "@"+candidate).
			First(&institution).Error
		if err == nil {
			return &institution, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(err, "failed to look up institution")
		}
	}

	record, found := s.dataset.FindByDomain(candidates)
	if !found {
		return nil, apperrors.ErrUniversityNotFound
	}

	// A different subdomain of the same school may already be persisted; matching by
	// name prevents a duplicate institution row.
	err := s.db.WithContext(ctx).Where("name = ?", record.Name).First(&institution).Error
	if err == nil {
		return &institution, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(err, "failed to look up institution")
	}

	return s.createFromRecord(ctx, record)
}

func (s *UniversityService) createFromRecord(ctx context.Context, record university.Record) (*models.Institution, error) {
	domains, err := json.Marshal(record.Domains)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode institution domains")
	}

	institution := models.Institution{
		Name:        record.Name,
		EmailDomain: "@" + record.PrimaryDomain(),
		Domains:     domains,
		City:        record.StateProvince,
		Country:     record.Country,
		IsActive:    true,
	}

	err = s.db.WithContext(ctx).Create(&institution).Error
	if err == nil {
		s.log().Info("institution created from reference dataset",
			zap.String("name", institution.Name),
			zap.String("email_domain", institution.EmailDomain))
		return &institution, nil
	}

	// Two concurrent resolutions for new domains of the same school both attempt the
	// insert; the loser re-reads the winner's row instead of failing.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var existing models.Institution
		refetchErr := s.db.WithContext(ctx).Where("name = ?", record.Name).First(&existing).Error
		if refetchErr == nil {
			return &existing, nil
		}
		refetchErr = s.db.WithContext(ctx).
			Where("email_domain = ?", institution.EmailDomain).
			First(&existing).Error
		if refetchErr == nil {
			return &existing, nil
		}
		return nil, apperrors.Wrap(refetchErr, "failed to re-read institution after duplicate insert")
	}

	return nil, apperrors.Wrap(err, "failed to create institution")
}

// DepartmentsForInstitution returns the ordered department names for a university
// display name. Unknown names yield an empty list, never an error.
func (s *UniversityService) DepartmentsForInstitution(name string) []string {
	return s.dataset.Departments(name)
}

// ListInstitutions returns every active institution, name ascending.
func (s *UniversityService) ListInstitutions(ctx context.Context) ([]models.Institution, error) {
	var institutions []models.Institution
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&institutions).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list institutions")
	}
	return institutions, nil
}

// SearchInstitutions returns up to 20 reference-dataset universities whose name or
// any domain contains the term, case-insensitive.
func (s *UniversityService) SearchInstitutions(term string) []university.Record {
	return s.dataset.Search(term, 20)
}

// emailDomain extracts the lowercased domain portion of an address containing
// exactly one "@".
func emailDomain(email string) (string, bool) {
	email = strings.TrimSpace(email)
	if strings.Count(email, "@") != 1 {
		return "", false
	}

	at := strings.Index(email, "@")
	domain := strings.ToLower(email[at+1:])
	if domain == "" || email[:at] == "" {
		return "", false
	}
	return domain, true
}

// domainCandidates lists the domain and its right-aligned suffixes, most specific
// first, down to two labels: "sub.dept.uni.edu.tr" yields itself, "dept.uni.edu.tr",
// "uni.edu.tr" and "edu.tr".
func domainCandidates(domain string) []string {
	labels := strings.Split(domain, ".")
	candidates := make([]string, 0, len(labels))
	for i := 0; i <= len(labels)-2; i++ {
		candidates = append(candidates, strings.Join(labels[i:], "."))
	}
	if len(candidates) == 0 {
		candidates = append(candidates, domain)
	}
	return candidates
}
