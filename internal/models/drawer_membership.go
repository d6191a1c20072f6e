package models

import "time"

// DrawerRole defines a member's role in a drawer.
type DrawerRole string

const (
	// DrawerRoleModerator may edit or delete the drawer and moderate its posts.
	DrawerRoleModerator DrawerRole = "moderator"
	// DrawerRoleMember is the default role assigned on join.
	DrawerRoleMember DrawerRole = "member"
)

// Valid reports whether the role is one of the known drawer roles.
func (r DrawerRole) Valid() bool {
	return r == DrawerRoleModerator || r == DrawerRoleMember
}

// DrawerMembership maps users to drawers and tracks role.
//
// The composite primary key (drawer_id, user_id) holds the one-role-per-member
// invariant: a user cannot appear on a drawer's roster twice.
type DrawerMembership struct {
	DrawerID  uint       `gorm:"primaryKey;autoIncrement:false" json:"drawer_id"`
	Drawer    *Drawer    `gorm:"foreignKey:DrawerID" json:"drawer,omitempty"`
	UserID    uint       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      DrawerRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (DrawerMembership) TableName() string {
	return "drawer_memberships"
}
