package domain

import (
	"strings"

	"github.com/google/uuid"
)

type Tag struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"-"`
	Name        string    `db:"name" json:"name"`
	Color       string    `db:"color" json:"color"`
	Icon        string    `db:"icon" json:"icon"`
	Description string    `db:"description" json:"description"`
	DomainCount int       `db:"domain_count" json:"domain_count"`
}

const DefaultTagColor = "primary"

// Validate trims the tag in place and rejects an empty name.
func (t *Tag) Validate() error {
	t.Name = strings.TrimSpace(t.Name)
	t.Description = strings.TrimSpace(t.Description)
	if t.Name == "" {
		return NewValidationError("tag name is required")
	}
	if len(t.Name) > 64 {
		return NewValidationError("tag name must be at most 64 characters")
	}
	if t.Color == "" {
		t.Color = DefaultTagColor
	}
	return nil
}
