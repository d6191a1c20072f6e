package models

import "time"

// PostImage is an image attachment stored on disk and owned by a post.
type PostImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	ImagePath string    `gorm:"not null" json:"image_path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (PostImage) TableName() string {
	return "post_images"
}
