package models

import "time"

// Comment is a threaded comment on a post. A nil ParentID marks a top-level
// comment; replies point at their parent, forming a tree rooted at the post.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Content  string `gorm:"type:text;not null" json:"content"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	Post     *Post  `gorm:"foreignKey:PostID" json:"post,omitempty"`
	ParentID *uint  `gorm:"index" json:"parent_id"`

	// CommentsCount is the number of direct children, computed at query time.
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	FavorsCount   int `gorm:"->;-:migration" json:"favors_count"`
	OpposesCount  int `gorm:"->;-:migration" json:"opposes_count"`
	// ReactedByUser holds the requesting user's own reactions on this comment.
	ReactedByUser []Reaction `gorm:"-" json:"reacted_by_user"`
	// Replies carries one level of eagerly loaded children where the endpoint
	// asks for it; it is never the full subtree.
	Replies []Comment `gorm:"-" json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}
