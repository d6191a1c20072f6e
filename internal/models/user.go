// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents an account in the Drawerbox application.
//
// IsAdmin is a global identity attribute; it is not consulted by the
// drawer-scoped authorization rules, which only look at memberships.
type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Username           string    `gorm:"size:30;unique;not null" json:"username"`
	Email              string    `gorm:"size:254;unique;not null" json:"email"`
	Password           string    `gorm:"not null" json:"-"`
	Bio                string    `gorm:"type:text" json:"bio"`
	ProfilePicturePath string    `json:"profile_picture_path"`
	IsAdmin            bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
