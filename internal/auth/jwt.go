package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ResetTokenTTL is fixed; session TTL is configurable.
const ResetTokenTTL = 15 * time.Minute

var (
	ErrExpiredToken = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// Purpose is a closed set. Adding a value means adding a wire name below,
// otherwise tokens carrying it are rejected as invalid.
type Purpose int

const (
	PurposeSession Purpose = iota
	PurposePasswordReset
)

// session tokens carry no purpose claim at all
const wirePasswordReset = "password_reset"

func (p Purpose) wire() (string, bool) {
	switch p {
	case PurposeSession:
		return "", true
	case PurposePasswordReset:
		return wirePasswordReset, true
	default:
		return "", false
	}
}

func purposeFromWire(s string) (Purpose, bool) {
	switch s {
	case "":
		return PurposeSession, true
	case wirePasswordReset:
		return PurposePasswordReset, true
	default:
		return 0, false
	}
}

func (p Purpose) String() string {
	switch p {
	case PurposeSession:
		return "session"
	case PurposePasswordReset:
		return wirePasswordReset
	default:
		return "unknown"
	}
}

// Claims is the decoded view of a token. ExpiresAt has one second precision.
type Claims struct {
	Subject   int64
	Purpose   Purpose
	ExpiresAt time.Time
}

type tokenClaims struct {
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
}

func NewManager(secret string, sessionTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// WithClock swaps the time source used for issuing and expiry checks.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) SessionTTL() time.Duration {
	return m.sessionTTL
}

func (m *Manager) Issue(c Claims) (string, error) {
	if c.Subject <= 0 {
		return "", errors.New("token subject is required")
	}

	if c.ExpiresAt.IsZero() {
		return "", errors.New("token expiry is required")
	}

	purpose, ok := c.Purpose.wire()

	if !ok {
		return "", fmt.Errorf("unknown token purpose %d", c.Purpose)
	}

	claims := tokenClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(c.Subject, 10),
			IssuedAt:  jwt.NewNumericDate(m.now().UTC()),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt.UTC()),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) IssueSession(userID int64) (token string, expiresAt time.Time, err error) {
	expiresAt = m.now().UTC().Add(m.sessionTTL)

	token, err = m.Issue(Claims{
		Subject:   userID,
		Purpose:   PurposeSession,
		ExpiresAt: expiresAt,
	})

	return
}

func (m *Manager) IssueReset(userID int64) (token string, expiresAt time.Time, err error) {
	expiresAt = m.now().UTC().Add(ResetTokenTTL)

	token, err = m.Issue(Claims{
		Subject:   userID,
		Purpose:   PurposePasswordReset,
		ExpiresAt: expiresAt,
	})

	return
}

// Decode verifies the signature before looking at any claim, so a forged
// token is always ErrInvalidToken even when its exp is in the past.
func (m *Manager) Decode(tokenStr string) (Claims, error) {
	var tc tokenClaims

	_, err := jwt.ParseWithClaims(tokenStr, &tc, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := strconv.ParseInt(tc.Subject, 10, 64)

	if err != nil || subject <= 0 {
		return Claims{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	purpose, ok := purposeFromWire(tc.Purpose)

	if !ok {
		return Claims{}, fmt.Errorf("%w: unknown purpose", ErrInvalidToken)
	}

	return Claims{
		Subject:   subject,
		Purpose:   purpose,
		ExpiresAt: tc.ExpiresAt.Time.UTC(),
	}, nil
}
