package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dolapkampus/backend/pkg/crypto"
	apperrors "github.com/dolapkampus/backend/pkg/errors"
	"github.com/dolapkampus/backend/pkg/logger"
	"github.com/dolapkampus/backend/pkg/mail"
	"github.com/dolapkampus/backend/pkg/metrics"
	"github.com/dolapkampus/backend/pkg/validator"

	"github.com/dolapkampus/backend/internal/auth"
	"github.com/dolapkampus/backend/internal/models"
	"github.com/dolapkampus/backend/internal/registration"
)

// DefaultCodeTTL is how long a verification code stays valid.
const DefaultCodeTTL = 10 * time.Minute

// RegisterInput carries a registration submission.
type RegisterInput struct {
	Email      string `json:"email" validate:"required,university_email"`
	Password   string `json:"password" validate:"required,min=6"`
	FullName   string `json:"fullName" validate:"required,min=2"`
	Department string `json:"department" validate:"omitempty,max=120"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
}

// RegisterResult confirms that a submission was accepted and awaits verification.
type RegisterResult struct {
	Email                string `json:"email"`
	RequiresVerification bool   `json:"requiresVerification"`
}

// AuthResult pairs a session token with the authenticated account.
type AuthResult struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// RegistrationService owns the registration / email-verification pipeline: the
// per-email pending state, code issuance and checks, and account materialization.
type RegistrationService struct {
	db           *gorm.DB
	universities *UniversityService
	pending      registration.Store
	tokens       *auth.JWTService
	mailer       mail.Mailer
	codeTTL      time.Duration
	adminEmails  map[string]struct{}
	now          func() time.Time
	newCode      func() (string, error)
}

// RegistrationOption adjusts optional service behaviour.
type RegistrationOption func(*RegistrationService)

// WithClock fixes the service clock. Intended for tests.
func WithClock(now func() time.Time) RegistrationOption {
	return func(s *RegistrationService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCodeGenerator overrides verification-code generation. Intended for tests.
func WithCodeGenerator(gen func() (string, error)) RegistrationOption {
	return func(s *RegistrationService) {
		if gen != nil {
			s.newCode = gen
		}
	}
}

// WithCodeTTL overrides the verification-code validity window.
func WithCodeTTL(ttl time.Duration) RegistrationOption {
	return func(s *RegistrationService) {
		if ttl > 0 {
			s.codeTTL = ttl
		}
	}
}

// NewRegistrationService wires the pipeline. adminEmails is the allowlist of
// addresses permitted to use the admin login.
func NewRegistrationService(
	db *gorm.DB,
	universities *UniversityService,
	pending registration.Store,
	tokens *auth.JWTService,
	mailer mail.Mailer,
	adminEmails []string,
	opts ...RegistrationOption,
) *RegistrationService {
	allow := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = normalizeEmail(email)
		if email != "" {
			allow[email] = struct{}{}
		}
	}

	s := &RegistrationService{
		db:           db,
		universities: universities,
		pending:      pending,
		tokens:       tokens,
		mailer:       mailer,
		codeTTL:      DefaultCodeTTL,
		adminEmails:  allow,
		now:          time.Now,
		newCode:      crypto.VerificationCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the submission, resolves the institution, stores (or overwrites)
// the pending entry and dispatches the verification code. A failing delivery channel
// never fails the call: the code is surfaced through the log instead.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	email := normalizeEmail(input.Email)

	if !validator.IsUniversityEmail(email) {
		metrics.RegistrationAttempts.WithLabelValues("invalid_email").Inc()
		return nil, apperrors.ErrInvalidUniversityEmail
	}

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		metrics.RegistrationAttempts.WithLabelValues("error").Inc()
		return nil, err
	}
	if taken {
		metrics.RegistrationAttempts.WithLabelValues("conflict").Inc()
		return nil, apperrors.ErrEmailTaken
	}

	institution, err := s.universities.ResolveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUniversityNotFound) || errors.Is(err, apperrors.ErrInvalidUniversityEmail) {
			metrics.RegistrationAttempts.WithLabelValues("university_not_found").Inc()
		} else {
			metrics.RegistrationAttempts.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	code, err := s.newCode()
	if err != nil {
		metrics.RegistrationAttempts.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, "failed to generate verification code")
	}

	entry := registration.Pending{
		Email:         email,
		FullName:      strings.TrimSpace(input.FullName),
		Password:      input.Password,
		Department:    strings.TrimSpace(input.Department),
		Phone:         strings.TrimSpace(input.Phone),
		InstitutionID: institution.ID,
		Code:          code,
		ExpiresAt:     s.now().Add(s.codeTTL),
	}
	if err := s.pending.Put(ctx, entry); err != nil {
		metrics.RegistrationAttempts.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, "failed to store pending registration")
	}

	s.deliverCode(ctx, entry)

	metrics.RegistrationAttempts.WithLabelValues("accepted").Inc()
	return &RegisterResult{Email: email, RequiresVerification: true}, nil
}

// VerifyEmail checks the submitted code against the pending entry and, on the single
// success path, creates the durable account and issues a session token.
//
// A missing entry and a wrong code are retryable validation errors that leave state
// untouched; an expired code deletes the entry and forces re-registration. The
// success path removes the entry with an atomic take, so of two racing verifications
// only one creates an account.
func (s *RegistrationService) VerifyEmail(ctx context.Context, email, code string) (*AuthResult, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)

	entry, ok, err := s.pending.Get(ctx, email)
	if err != nil {
		metrics.VerificationAttempts.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, "failed to read pending registration")
	}
	if !ok {
		metrics.VerificationAttempts.WithLabelValues("no_entry").Inc()
		return nil, apperrors.ErrNoPendingRegistration
	}

	if entry.Expired(s.now()) {
		if err := s.pending.Delete(ctx, email); err != nil {
			s.log().Warn("failed to delete expired pending registration",
				zap.String("email", email), zap.Error(err))
		}
		metrics.VerificationAttempts.WithLabelValues("expired").Inc()
		return nil, apperrors.ErrVerificationCodeExpired
	}

	if entry.Code != code {
		metrics.VerificationAttempts.WithLabelValues("wrong_code").Inc()
		return nil, apperrors.ErrInvalidVerificationCode
	}

	// Only the winner of two concurrent verifications receives the entry here; the
	// loser observes a miss and fails cleanly instead of creating a second account.
	entry, ok, err = s.pending.Take(ctx, email)
	if err != nil {
		metrics.VerificationAttempts.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, "failed to take pending registration")
	}
	if !ok {
		metrics.VerificationAttempts.WithLabelValues("no_entry").Inc()
		return nil, apperrors.ErrNoPendingRegistration
	}

	// A resend may have raced the verification between the read and the take. The
	// taken entry is authoritative: restore it on mismatch so the retry semantics of
	// a wrong code are preserved.
	if entry.Code != code {
		if putErr := s.pending.Put(ctx, entry); putErr != nil {
			s.log().Warn("failed to restore pending registration after code mismatch",
				zap.String("email", email), zap.Error(putErr))
		}
		metrics.VerificationAttempts.WithLabelValues("wrong_code").Inc()
		return nil, apperrors.ErrInvalidVerificationCode
	}
	if entry.Expired(s.now()) {
		metrics.VerificationAttempts.WithLabelValues("expired").Inc()
		return nil, apperrors.ErrVerificationCodeExpired
	}

	result, err := s.materializeAccount(ctx, entry)
	if err != nil {
		metrics.VerificationAttempts.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.VerificationAttempts.WithLabelValues("success").Inc()
	return result, nil
}

// ResendCode issues a fresh code and expiry for an existing pending registration and
// re-dispatches it. Resends are unlimited.
func (s *RegistrationService) ResendCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	entry, ok, err := s.pending.Get(ctx, email)
	if err != nil {
		return apperrors.Wrap(err, "failed to read pending registration")
	}
	if !ok {
		return apperrors.ErrNoPendingRegistration
	}
	if entry.Expired(s.now()) {
		return apperrors.ErrVerificationCodeExpired
	}

	code, err := s.newCode()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate verification code")
	}

	entry.Code = code
	entry.ExpiresAt = s.now().Add(s.codeTTL)
	if err := s.pending.Put(ctx, entry); err != nil {
		return apperrors.Wrap(err, "failed to store pending registration")
	}

	s.deliverCode(ctx, entry)
	return nil
}

// Login authenticates a regular account and issues a session token.
func (s *RegistrationService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	result, err := s.login(ctx, email, password, false)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("user", "failure").Inc()
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("user", "success").Inc()
	return result, nil
}

// LoginAdmin authenticates an administrative account. Beyond the credential check the
// email must be on the configured admin allowlist and the account must carry the
// ADMIN role.
func (s *RegistrationService) LoginAdmin(ctx context.Context, email, password string) (*AuthResult, error) {
	result, err := s.login(ctx, email, password, true)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("admin", "failure").Inc()
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("admin", "success").Inc()
	return result, nil
}

// log resolves the module logger at call time so a swapped global is honoured.
func (s *RegistrationService) log() *zap.Logger {
	return logger.WithModule("registration")
}

func (s *RegistrationService) login(ctx context.Context, email, password string, admin bool) (*AuthResult, error) {
	email = normalizeEmail(email)

	if admin {
		if _, allowed := s.adminEmails[email]; !allowed {
			return nil, apperrors.ErrInvalidCredentials
		}
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Institution").
		Where("email = ?", email).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to look up account")
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if admin && !user.IsAdmin() {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(auth.AccessTokenInput{
		UserID:        user.ID,
		Email:         user.Email,
		Role:          user.Role,
		InstitutionID: user.InstitutionID,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue session token")
	}

	return &AuthResult{AccessToken: token, User: &user}, nil
}

func (s *RegistrationService) materializeAccount(ctx context.Context, entry registration.Pending) (*AuthResult, error) {
	hash, err := crypto.HashPassword(entry.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	user := models.User{
		Email:         entry.Email,
		Password:      hash,
		FullName:      entry.FullName,
		Department:    entry.Department,
		Phone:         entry.Phone,
		InstitutionID: entry.InstitutionID,
		Role:          models.RoleUser,
		EmailVerified: true,
		IsActive:      true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.Wrap(err, "failed to create account")
	}

	var institution models.Institution
	if err := s.db.WithContext(ctx).First(&institution, "id = ?", entry.InstitutionID).Error; err == nil {
		user.Institution = &institution
	}

	token, err := s.tokens.GenerateAccessToken(auth.AccessTokenInput{
		UserID:        user.ID,
		Email:         user.Email,
		Role:          user.Role,
		InstitutionID: user.InstitutionID,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue session token")
	}

	s.log().Info("account created",
		zap.String("email", user.Email),
		zap.String("institution_id", user.InstitutionID))

	return &AuthResult{AccessToken: token, User: &user}, nil
}

func (s *RegistrationService) deliverCode(ctx context.Context, entry registration.Pending) {
	msg := mail.Message{
		To:      []string{entry.Email},
		Subject: "Dolap Kampüs - E-posta Doğrulama Kodu",
		Body: fmt.Sprintf(
			"Merhaba %s,\r\n\r\nDoğrulama kodunuz: %s\r\n\r\nKod 10 dakika içinde geçerliliğini yitirir.\r\n",
			entry.FullName, entry.Code),
	}

	err := s.mailer.Send(ctx, msg)
	switch {
	case err == nil:
		metrics.CodeDeliveries.WithLabelValues("sent").Inc()
	case errors.Is(err, mail.ErrSMTPDisabled):
		// No delivery channel configured: the log is the guaranteed fallback so the
		// flow is never blocked.
		metrics.CodeDeliveries.WithLabelValues("fallback").Inc()
		s.log().Info("verification code (smtp disabled)",
			zap.String("email", entry.Email),
			zap.String("code", entry.Code))
	default:
		metrics.CodeDeliveries.WithLabelValues("failed").Inc()
		s.log().Warn("verification code delivery failed",
			zap.String("email", entry.Email),
			zap.String("code", entry.Code),
			zap.Error(err))
	}
}

func (s *RegistrationService) emailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check existing accounts")
	}
	return count > 0, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
