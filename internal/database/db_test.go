package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dolapkampus/backend/internal/models"
	"github.com/dolapkampus/backend/pkg/crypto"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "dolap", Name: "marketplace", Host: "db", Port: 5433, Password: "pw"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=db")
	require.Contains(t, dsn, "port=5433")
	require.Contains(t, dsn, "dbname=marketplace")
	require.Contains(t, dsn, "sslmode=disable")

	_, err = buildPostgresDSN(Config{})
	require.Error(t, err)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "dolap", Password: "pw", Name: "marketplace"})
	require.NoError(t, err)
	require.Contains(t, dsn, "dolap:pw@tcp(127.0.0.1:3306)/marketplace")
	require.Contains(t, dsn, "parseTime=True")
}

func TestSeedInstitutionsIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, SeedInstitutions(db))

	var first int64
	require.NoError(t, db.Model(&models.Institution{}).Count(&first).Error)
	require.Greater(t, first, int64(0))

	require.NoError(t, SeedInstitutions(db))

	var second int64
	require.NoError(t, db.Model(&models.Institution{}).Count(&second).Error)
	require.Equal(t, first, second)
}

func TestEnsureAdminAccount(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, SeedInstitutions(db))

	require.NoError(t, EnsureAdminAccount(db, "admin@sakarya.edu.tr", "admin123"))

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@sakarya.edu.tr").First(&admin).Error)
	require.Equal(t, models.RoleAdmin, admin.Role)
	require.True(t, admin.EmailVerified)
	require.True(t, crypto.VerifyPassword(admin.Password, "admin123"))

	// Institution matched by domain.
	var inst models.Institution
	require.NoError(t, db.First(&inst, "id = ?", admin.InstitutionID).Error)
	require.Equal(t, "@sakarya.edu.tr", inst.EmailDomain)

	// Second call is a no-op.
	require.NoError(t, EnsureAdminAccount(db, "admin@sakarya.edu.tr", "other"))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
