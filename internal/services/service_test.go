package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dolapkampus/backend/internal/auth"
	"github.com/dolapkampus/backend/internal/database"
	"github.com/dolapkampus/backend/internal/registration"
	"github.com/dolapkampus/backend/internal/university"
	"github.com/dolapkampus/backend/pkg/mail"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func loadDataset(t *testing.T) *university.Dataset {
	t.Helper()

	dataset, err := university.Load()
	require.NoError(t, err)
	return dataset
}

// fakeClock is a mutable test clock shared between the service and assertions.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// codeSequence hands out a fixed sequence of verification codes, sticking at the
// last one once exhausted.
type codeSequence struct {
	mu    sync.Mutex
	codes []string
	next  int
}

func newCodeSequence(codes ...string) *codeSequence {
	return &codeSequence{codes: codes}
}

func (c *codeSequence) Next() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code := c.codes[c.next]
	if c.next < len(c.codes)-1 {
		c.next++
	}
	return code, nil
}

// captureMailer records outbound messages and optionally fails every send.
type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *captureMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]mail.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

type pipelineFixture struct {
	db      *gorm.DB
	store   *registration.MemoryStore
	mailer  *captureMailer
	clock   *fakeClock
	codes   *codeSequence
	tokens  *auth.JWTService
	service *RegistrationService
}

func newPipelineFixture(t *testing.T, adminEmails ...string) *pipelineFixture {
	t.Helper()

	db := openTestDB(t)
	require.NoError(t, database.SeedInstitutions(db))

	clock := newFakeClock()
	codes := newCodeSequence("123456")
	store := registration.NewMemoryStore()
	mailer := &captureMailer{}

	tokens, err := auth.NewJWTService(auth.JWTConfig{
		Secret: "test-secret",
		Issuer: "dolapkampus",
		Clock:  clock.Now,
	})
	require.NoError(t, err)

	universities := NewUniversityService(db, loadDataset(t))
	service := NewRegistrationService(db, universities, store, tokens, mailer, adminEmails,
		WithClock(clock.Now),
		WithCodeGenerator(codes.Next),
	)

	return &pipelineFixture{
		db:      db,
		store:   store,
		mailer:  mailer,
		clock:   clock,
		codes:   codes,
		tokens:  tokens,
		service: service,
	}
}
