// Package account owns the credential lifecycle: signup, login, password
// reset and account deletion, plus the caller's own profile.
package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/domain/category"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
	"github.com/geocoder89/volunteerhub/internal/notifications"
	"github.com/geocoder89/volunteerhub/internal/observability"
	"github.com/geocoder89/volunteerhub/internal/security"
)

const (
	MinPasswordLen = 8

	deliveryTimeout = 10 * time.Second
)

type UserStore interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context, f user.ListFilter) ([]user.User, error)
	GetCredential(ctx context.Context, userID int64) (user.Credential, error)
	CreateAccount(ctx context.Context, acc user.NewAccount) (user.User, error)
	UpdateCredential(ctx context.Context, userID int64, hash string) error
	UpdateProfile(ctx context.Context, u user.User) (user.User, error)
	DeleteAccount(ctx context.Context, userID int64) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type TokenService interface {
	IssueSession(userID int64) (string, time.Time, error)
	IssueReset(userID int64) (string, time.Time, error)
	Decode(token string) (auth.Claims, error)
}

type SignupInput struct {
	Email     string
	FirstName string
	LastName  string
	Skills    string
	Interests []category.Category
	Password  string
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

type Service struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   TokenService
	delivery notifications.ResetDelivery
	log      *slog.Logger
	prom     *observability.Prom

	dummyOnce sync.Once
	dummyHash string

	// in-flight reset deliveries
	pending sync.WaitGroup
}

func NewService(users UserStore, hasher PasswordHasher, tokens TokenService, delivery notifications.ResetDelivery, log *slog.Logger, prom *observability.Prom) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		delivery: delivery,
		log:      log,
		prom:     prom,
	}
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (p user.Profile, err error) {
	defer func() { s.prom.AuthOutcome("signup", outcome(err)) }()

	email := user.NormalizeEmail(in.Email)

	if email == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return user.Profile{}, fmt.Errorf("email, first_name and last_name are required: %w", apperr.ErrInvalidInput)
	}

	for _, c := range in.Interests {
		if !c.IsValid() {
			return user.Profile{}, fmt.Errorf("unknown interest %q: %w", c, apperr.ErrInvalidInput)
		}
	}

	if err := validatePassword(in.Password); err != nil {
		return user.Profile{}, err
	}

	// fast path; the unique index is still the authority under races
	_, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return user.Profile{}, user.ErrEmailTaken
	case !errors.Is(err, apperr.ErrNotFound):
		return user.Profile{}, fmt.Errorf("signup lookup: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return user.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateAccount(ctx, user.NewAccount{
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Skills:       in.Skills,
		Interests:    category.Dedupe(in.Interests),
		PasswordHash: hash,
	})
	if err != nil {
		return user.Profile{}, err
	}

	return u.Profile(), nil
}

// Login returns apperr.ErrInvalidCredentials for both an unknown email and a
// wrong password, and spends one bcrypt comparison either way.
func (s *Service) Login(ctx context.Context, email, password string) (res LoginResult, err error) {
	defer func() { s.prom.AuthOutcome("login", outcome(err)) }()

	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.hasher.Verify(password, s.dummy())
			return LoginResult{}, apperr.ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("login lookup: %w", err)
	}

	cred, err := s.users.GetCredential(ctx, u.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.hasher.Verify(password, s.dummy())
			return LoginResult{}, apperr.ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("login credential: %w", err)
	}

	if !s.hasher.Verify(password, cred.PasswordHash) {
		return LoginResult{}, apperr.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.IssueSession(u.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue session: %w", err)
	}

	return LoginResult{AccessToken: token, ExpiresAt: expiresAt}, nil
}

// RequestReset answers the same way whether or not the email exists. For a
// known account the token is handed to the delivery in the background.
func (s *Service) RequestReset(ctx context.Context, email string) (err error) {
	defer func() { s.prom.AuthOutcome("reset_request", outcome(err)) }()

	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("reset lookup: %w", err)
	}

	token, expiresAt, err := s.tokens.IssueReset(u.ID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	in := notifications.PasswordResetInput{
		UserID:    u.ID,
		Email:     u.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}

	// the request may finish before delivery does
	deliveryCtx := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(deliveryCtx, deliveryTimeout)
		defer cancel()

		if err := s.delivery.SendPasswordReset(ctx, in); err != nil {
			s.log.WarnContext(ctx, "password reset delivery failed", "user_id", in.UserID, "err", err)
		}
	}()

	return nil
}

func (s *Service) ConsumeReset(ctx context.Context, token, newPassword string) (err error) {
	defer func() { s.prom.AuthOutcome("reset_consume", outcome(err)) }()

	claims, err := s.tokens.Decode(token)
	if err != nil || claims.Purpose != auth.PurposePasswordReset {
		return apperr.ErrInvalidResetToken
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	if _, err := s.users.GetByID(ctx, claims.Subject); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdateCredential(ctx, claims.Subject, hash)
}

// DeleteAccount removes the caller; roles and registrations cascade. Issued
// session tokens stop resolving because their subject is gone.
func (s *Service) DeleteAccount(ctx context.Context, p auth.Principal) error {
	return s.users.DeleteAccount(ctx, p.UserID)
}

func (s *Service) Profile(ctx context.Context, p auth.Principal) (user.User, error) {
	return s.users.GetByID(ctx, p.UserID)
}

func (s *Service) User(ctx context.Context, id int64) (user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) Users(ctx context.Context, f user.ListFilter) ([]user.User, error) {
	if f.Availability != nil && !user.ValidAvailability(*f.Availability) {
		return nil, fmt.Errorf("unknown availability %q: %w", *f.Availability, apperr.ErrInvalidInput)
	}
	return s.users.List(ctx, f)
}

// UpdateProfile lets a user edit only their own record.
func (s *Service) UpdateProfile(ctx context.Context, p auth.Principal, userID int64, req user.UpdateProfileRequest) (user.User, error) {
	if p.UserID != userID {
		return user.User{}, fmt.Errorf("cannot edit another user's profile: %w", apperr.ErrForbidden)
	}

	if err := req.Validate(); err != nil {
		return user.User{}, err
	}

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	return s.users.UpdateProfile(ctx, req.Apply(current))
}

// Wait blocks until background reset deliveries have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)

		hash, err := s.hasher.Hash(hex.EncodeToString(buf))
		if err != nil {
			s.log.Error("dummy hash", "err", err)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func validatePassword(p string) error {
	if len(p) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", MinPasswordLen, apperr.ErrInvalidInput)
	}
	if len(p) > security.MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes: %w", security.MaxPasswordBytes, apperr.ErrInvalidInput)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, apperr.ErrInvalidResetToken):
		return "invalid_token"
	case errors.Is(err, apperr.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
