package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/optional"
)

type Event struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	DateTime       time.Time `json:"date_time"`
	OrganizationID int64     `json:"organization_id"`
}

// with pointers if optional, it will be nil
type ListEventsFilter struct {
	OrganizationID *int64
}

var ErrNotFound = fmt.Errorf("event %w", apperr.ErrNotFound)

type CreateEventRequest struct {
	Name           string    `json:"name" binding:"required,min=3,max=200"`
	Description    string    `json:"description" binding:"omitempty,max=2000"`
	Location       string    `json:"location" binding:"required,max=200"`
	DateTime       time.Time `json:"date_time" binding:"required"`
	OrganizationID int64     `json:"organization_id" binding:"required,gt=0"`
}

// a partial update: only present fields overwrite the stored event.
type UpdateEventRequest struct {
	Name           optional.Value[string]    `json:"name"`
	Description    optional.Value[string]    `json:"description"`
	Location       optional.Value[string]    `json:"location"`
	DateTime       optional.Value[time.Time] `json:"date_time"`
	OrganizationID optional.Value[int64]     `json:"organization_id"`
}

func (r UpdateEventRequest) Validate() error {
	if v, ok := r.Name.Get(); ok && len(strings.TrimSpace(v)) < 3 {
		return fmt.Errorf("name too short: %w", apperr.ErrInvalidInput)
	}
	if v, ok := r.OrganizationID.Get(); ok && v <= 0 {
		return fmt.Errorf("organization_id must be positive: %w", apperr.ErrInvalidInput)
	}
	if v, ok := r.DateTime.Get(); ok && v.IsZero() {
		return fmt.Errorf("date_time must be set: %w", apperr.ErrInvalidInput)
	}
	return nil
}

func (r UpdateEventRequest) Apply(e Event) Event {
	e.Name = r.Name.Or(e.Name)
	e.Description = r.Description.Or(e.Description)
	e.Location = r.Location.Or(e.Location)
	e.DateTime = r.DateTime.Or(e.DateTime)
	e.OrganizationID = r.OrganizationID.Or(e.OrganizationID)
	return e
}
