package organization

import (
	"fmt"
	"strings"

	"github.com/geocoder89/volunteerhub/internal/apperr"
	"github.com/geocoder89/volunteerhub/internal/domain/category"
	"github.com/geocoder89/volunteerhub/internal/optional"
)

type Organization struct {
	ID              int64             `json:"organization_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Category        category.Category `json:"category"`
	CreatedByUserID int64             `json:"created_by_user_id"`
}

var ErrNotFound = fmt.Errorf("organization %w", apperr.ErrNotFound)

type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Category    string `json:"category" binding:"required,category"`
}

type UpdateOrganizationRequest struct {
	Name        optional.Value[string]            `json:"name"`
	Description optional.Value[string]            `json:"description"`
	Category    optional.Value[category.Category] `json:"category"`
}

func (r UpdateOrganizationRequest) Validate() error {
	if v, ok := r.Name.Get(); ok && len(strings.TrimSpace(v)) < 2 {
		return fmt.Errorf("name too short: %w", apperr.ErrInvalidInput)
	}
	if v, ok := r.Category.Get(); ok && !v.IsValid() {
		return fmt.Errorf("unknown category %q: %w", v, apperr.ErrInvalidInput)
	}
	return nil
}

func (r UpdateOrganizationRequest) Apply(o Organization) Organization {
	o.Name = r.Name.Or(o.Name)
	o.Description = r.Description.Or(o.Description)
	o.Category = r.Category.Or(o.Category)
	return o
}

// ListFilter narrows the organization list; Query matches name or
// description case-insensitively.
type ListFilter struct {
	Query    *string
	Category *category.Category
}
