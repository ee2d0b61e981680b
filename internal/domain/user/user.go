package user

import (
	"fmt"
	"strings"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/domain/category"
	"github.com/geocoder89/volunteerhub/internal/optional"
)

// User is the identity record. The password hash lives in Credential and is
// never part of this struct.
type User struct {
	ID           int64               `json:"user_id"`
	Email        string              `json:"email"`
	FirstName    string              `json:"first_name"`
	LastName     string              `json:"last_name"`
	Availability string              `json:"availability,omitempty"`
	Skills       string              `json:"skills"`
	Interests    []category.Category `json:"interests"`
}

// Profile is what signup returns.
type Profile struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (u User) Profile() Profile {
	return Profile{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type Credential struct {
	UserID       int64
	PasswordHash string
}

// NewAccount is everything written by a signup; stores persist it atomically.
type NewAccount struct {
	Email        string
	FirstName    string
	LastName     string
	Skills       string
	Interests    []category.Category
	PasswordHash string
}

var (
	ErrNotFound   = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrEmailTaken = fmt.Errorf("email already registered: %w", apperr.ErrConflict)
)

const (
	AvailabilityMornings   = "Mornings"
	AvailabilityAfternoons = "Afternoons"
	AvailabilityEvenings   = "Evenings"
	AvailabilityWeekends   = "Weekends"
	AvailabilityFlexible   = "Flexible"
)

func ValidAvailability(v string) bool {
	switch v {
	case "", AvailabilityMornings, AvailabilityAfternoons, AvailabilityEvenings, AvailabilityWeekends, AvailabilityFlexible:
		return true
	}
	return false
}

// NormalizeEmail is applied before every lookup and insert so that
// A@x.com and a@x.com are the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ListFilter narrows a user listing. Query is matched case-insensitively
// against email, first name and last name.
type ListFilter struct {
	Query        *string
	Availability *string
}

type SignupRequest struct {
	Email     string   `json:"email" binding:"required,email,max=254"`
	FirstName string   `json:"first_name" binding:"required,max=100"`
	LastName  string   `json:"last_name" binding:"required,max=100"`
	Skills    string   `json:"skills" binding:"omitempty,max=1000"`
	Interests []string `json:"interests" binding:"omitempty,dive,category"`
	Password  string   `json:"password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest only overwrites the fields that are present in the body.
// Interests, when present, replace the whole set.
type UpdateProfileRequest struct {
	FirstName    optional.Value[string]              `json:"first_name"`
	LastName     optional.Value[string]              `json:"last_name"`
	Availability optional.Value[string]              `json:"availability"`
	Skills       optional.Value[string]              `json:"skills"`
	Interests    optional.Value[[]category.Category] `json:"interests"`
}

func (r UpdateProfileRequest) Validate() error {
	if v, ok := r.FirstName.Get(); ok && strings.TrimSpace(v) == "" {
		return fmt.Errorf("first_name must not be empty: %w", apperr.ErrInvalidInput)
	}
	if v, ok := r.LastName.Get(); ok && strings.TrimSpace(v) == "" {
		return fmt.Errorf("last_name must not be empty: %w", apperr.ErrInvalidInput)
	}
	if v, ok := r.Availability.Get(); ok && !ValidAvailability(v) {
		return fmt.Errorf("unknown availability %q: %w", v, apperr.ErrInvalidInput)
	}
	if list, ok := r.Interests.Get(); ok {
		for _, c := range list {
			if !c.IsValid() {
				return fmt.Errorf("unknown interest %q: %w", c, apperr.ErrInvalidInput)
			}
		}
	}
	return nil
}

// Apply merges the present fields onto u.
func (r UpdateProfileRequest) Apply(u User) User {
	u.FirstName = r.FirstName.Or(u.FirstName)
	u.LastName = r.LastName.Or(u.LastName)
	u.Availability = r.Availability.Or(u.Availability)
	u.Skills = r.Skills.Or(u.Skills)

	if list, ok := r.Interests.Get(); ok {
		u.Interests = category.Dedupe(list)
	}
	return u
}
