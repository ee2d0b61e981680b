package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes; longer input is rejected rather
// than silently truncated.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hasher is a one-way salted password hasher. Every call to Hash embeds a new
// random salt in its output.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash password hashes a plain text password with bcrypt.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify compares in constant time. A malformed stored hash is a mismatch.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
