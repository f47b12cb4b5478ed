package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolapkampus/backend/internal/database"
	"github.com/dolapkampus/backend/internal/models"
	apperrors "github.com/dolapkampus/backend/pkg/errors"
)

func TestResolveByEmailMatchesDurableSuffix(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, database.SeedInstitutions(db))

	svc := NewUniversityService(db, loadDataset(t))

	// Subdomain address reaches the parent institution via suffix candidates.
	inst, err := svc.ResolveByEmail(ctx, "ayse@ogr.sakarya.edu.tr")
	require.NoError(t, err)
	require.Equal(t, "Sakarya Üniversitesi", inst.Name)
	require.Equal(t, "@sakarya.edu.tr", inst.EmailDomain)
}

func TestResolveByEmailCreatesFromDataset(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	svc := NewUniversityService(db, loadDataset(t))

	inst, err := svc.ResolveByEmail(ctx, "student@sub.dept.metu.edu.tr")
	require.NoError(t, err)
	require.Equal(t, "Orta Doğu Teknik Üniversitesi", inst.Name)
	require.Equal(t, "@metu.edu.tr", inst.EmailDomain)
	require.NotEmpty(t, inst.ID)

	var count int64
	require.NoError(t, db.Model(&models.Institution{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestResolveByEmailReusesInstitutionMatchedByName(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	// A different domain of the same school was persisted earlier.
	existing := models.Institution{
		Name:        "Orta Doğu Teknik Üniversitesi",
		EmailDomain: "@odtu.edu.tr",
		IsActive:    true,
	}
	require.NoError(t, db.Create(&existing).Error)

	svc := NewUniversityService(db, loadDataset(t))

	inst, err := svc.ResolveByEmail(ctx, "student@metu.edu.tr")
	require.NoError(t, err)
	require.Equal(t, existing.ID, inst.ID)

	var count int64
	require.NoError(t, db.Model(&models.Institution{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestResolveByEmailUnknownDomain(t *testing.T) {
	ctx := context.Background()
	svc := NewUniversityService(openTestDB(t), loadDataset(t))

	_, err := svc.ResolveByEmail(ctx, "someone@nowhere.edu.tr")
	require.ErrorIs(t, err, apperrors.ErrUniversityNotFound)
}

func TestResolveByEmailRejectsMalformedAddress(t *testing.T) {
	ctx := context.Background()
	svc := NewUniversityService(openTestDB(t), loadDataset(t))

	for _, email := range []string{"", "no-at-sign", "two@at@signs.edu", "@missing.local"} {
		_, err := svc.ResolveByEmail(ctx, email)
		require.ErrorIs(t, err, apperrors.ErrInvalidUniversityEmail, "email %q", email)
	}
}

func TestListInstitutionsActiveNameAscending(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.Create(&models.Institution{Name: "Beta", EmailDomain: "@beta.edu", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Institution{Name: "Alpha", EmailDomain: "@alpha.edu", IsActive: true}).Error)

	// The is_active column default drops a zero-value false at insert, so the
	// flag is cleared after creation.
	closed := models.Institution{Name: "Closed", EmailDomain: "@closed.edu", IsActive: true}
	require.NoError(t, db.Create(&closed).Error)
	require.NoError(t, db.Model(&closed).Update("is_active", false).Error)

	svc := NewUniversityService(db, loadDataset(t))

	institutions, err := svc.ListInstitutions(ctx)
	require.NoError(t, err)
	require.Len(t, institutions, 2)
	require.Equal(t, "Alpha", institutions[0].Name)
	require.Equal(t, "Beta", institutions[1].Name)
}

func TestSearchInstitutions(t *testing.T) {
	svc := NewUniversityService(openTestDB(t), loadDataset(t))

	hits := svc.SearchInstitutions("sakarya")
	require.Len(t, hits, 1)
	require.Equal(t, "Sakarya Üniversitesi", hits[0].Name)

	// Domain search.
	hits = svc.SearchInstitutions("boun")
	require.Len(t, hits, 1)
	require.Equal(t, "Boğaziçi Üniversitesi", hits[0].Name)

	require.Empty(t, svc.SearchInstitutions("nothing-matches-this"))
}

func TestDepartmentsForInstitutionNormalizesCase(t *testing.T) {
	svc := NewUniversityService(openTestDB(t), loadDataset(t))

	depts := svc.DepartmentsForInstitution("sakarya üniversitesi")
	require.NotEmpty(t, depts)

	require.Empty(t, svc.DepartmentsForInstitution("Unknown University"))
}

func TestDomainCandidates(t *testing.T) {
	require.Equal(t,
		[]string{"sub.dept.uni.edu.tr", "dept.uni.edu.tr", "uni.edu.tr", "edu.tr"},
		domainCandidates("sub.dept.uni.edu.tr"))
	require.Equal(t, []string{"uni.edu"}, domainCandidates("uni.edu"))
	require.Equal(t, []string{"localhost"}, domainCandidates("localhost"))
}
