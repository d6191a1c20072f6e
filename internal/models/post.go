package models

import "time"

// PostStatus defines the moderation state of a post.
type PostStatus string

const (
	// PostStatusPending indicates a post is awaiting moderation.
	PostStatusPending PostStatus = "pending"
	// PostStatusApproved indicates a moderator accepted the post.
	PostStatusApproved PostStatus = "approved"
	// PostStatusRejected indicates a moderator declined the post.
	PostStatusRejected PostStatus = "rejected"
)

// Valid reports whether the status is one of the known post statuses.
func (s PostStatus) Valid() bool {
	return s == PostStatusPending || s == PostStatusApproved || s == PostStatusRejected
}

// StatusAction is the external tag that drives the status workflow.
type StatusAction string

const (
	// StatusActionApprove transitions a post to approved.
	StatusActionApprove StatusAction = "approve"
	// StatusActionReject transitions a post to rejected.
	StatusActionReject StatusAction = "reject"
)

// Post is a piece of content published either into a drawer or onto the
// author's own profile (DrawerID nil).
//
// The slug is resolved once at creation time and never re-derived, so post
// URLs stay stable across title edits.
type Post struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Title    string     `gorm:"size:300;not null" json:"title"`
	Content  string     `gorm:"type:text" json:"content"`
	Slug     string     `gorm:"size:320;not null;uniqueIndex" json:"slug"`
	Status   PostStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	UserID   uint       `gorm:"not null;index" json:"user_id"`
	User     User       `gorm:"foreignKey:UserID" json:"user"`
	DrawerID *uint      `gorm:"index" json:"drawer_id,omitempty"`
	Drawer   *Drawer    `gorm:"foreignKey:DrawerID" json:"drawer,omitempty"`

	Images []PostImage `gorm:"foreignKey:PostID" json:"images"`

	// CommentsCount, FavorsCount and OpposesCount are computed at query time,
	// never persisted as columns.
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	FavorsCount   int `gorm:"->;-:migration" json:"favors_count"`
	OpposesCount  int `gorm:"->;-:migration" json:"opposes_count"`
	// ReactedByUser holds the requesting user's own reactions on this post.
	ReactedByUser []Reaction `gorm:"-" json:"reacted_by_user"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// PostSlug is a permanent ledger of every slug ever allocated to a post.
// Rows are never deleted, so a slug freed by a hard post delete stays
// reserved and is never handed to a later post.
type PostSlug struct {
	Slug      string    `gorm:"primaryKey;size:320" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (PostSlug) TableName() string {
	return "post_slugs"
}

// IsProfilePost reports whether the post lives on the author's profile
// rather than in a drawer.
func (p *Post) IsProfilePost() bool {
	return p.DrawerID == nil
}
