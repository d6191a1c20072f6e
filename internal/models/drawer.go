package models

import "time"

// Drawer represents a topical community that owns posts and a member roster.
type Drawer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// ViewerRole is the requesting user's role in this drawer, nil when the
	// viewer is not a member. Computed at query time, never persisted.
	ViewerRole *DrawerRole `gorm:"->;-:migration" json:"role"`
	// MembersCount is computed at query time.
	MembersCount int `gorm:"->;-:migration" json:"members_count"`

	Posts []Post `gorm:"foreignKey:DrawerID" json:"posts,omitempty"`
}

// TableName specifies the table name for GORM.
func (Drawer) TableName() string {
	return "drawers"
}
