package models

import (
	"regexp"
	"time"

	"github.com/gofrs/uuid"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Category is a user-defined label. (UserID, Name) is unique; deleting a
// category does not cascade to tasks referencing it.
type Category struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_categories_owner_name"`
	Name        string    `json:"name" gorm:"not null;uniqueIndex:idx_categories_owner_name"`
	Color       string    `json:"color" gorm:"not null;default:'#808080'"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func IsValidHexColor(color string) bool {
	return hexColorPattern.MatchString(color)
}
