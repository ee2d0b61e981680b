package registration

import (
	"fmt"
	"time"

	"github.com/geocoder89/volunteerhub/internal/apperr"
)

type Registration struct {
	UserID           int64     `json:"user_id"`
	EventID          int64     `json:"event_id"`
	OrganizationID   int64     `json:"organization_id"`
	RegistrationTime time.Time `json:"registration_time"`

	// only filled when a listing asks for event details
	Event *EventSummary `json:"event,omitempty"`
}

type EventSummary struct {
	Name     string    `json:"name"`
	Location string    `json:"location"`
	DateTime time.Time `json:"date_time"`
}

// ListFilter always scopes to one user; the other fields narrow further.
type ListFilter struct {
	UserID              int64
	OrganizationID      *int64
	EventID             *int64
	IncludeEventDetails bool
}

// if you are already registered.
var ErrAlreadyRegistered = fmt.Errorf("registration already exists: %w", apperr.ErrConflict)

var ErrNotFound = fmt.Errorf("registration %w", apperr.ErrNotFound)

type CreateRegistrationRequest struct {
	EventID int64 `json:"event_id" binding:"required,gt=0"`
}

// A factory to build a Registration from the incoming DTO; the organization
// always comes from the event row, never from the client.
func New(userID, eventID, organizationID int64) Registration {
	return Registration{
		UserID:           userID,
		EventID:          eventID,
		OrganizationID:   organizationID,
		RegistrationTime: time.Now().UTC(),
	}
}
