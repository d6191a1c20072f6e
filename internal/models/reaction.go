package models

import "time"

// ReactionKind is a favor or oppose mark.
type ReactionKind string

const (
	// ReactionFavor marks agreement with the target.
	ReactionFavor ReactionKind = "favor"
	// ReactionOppose marks disagreement with the target.
	ReactionOppose ReactionKind = "oppose"
)

// Valid reports whether the kind is one of the known reaction kinds.
func (k ReactionKind) Valid() bool {
	return k == ReactionFavor || k == ReactionOppose
}

// ReactableKind is the symbolic name of an entity kind that can receive
// reactions. Callers always speak in symbolic kinds; the storage layer uses
// the table-name discriminator.
type ReactableKind string

const (
	// ReactablePost targets a post.
	ReactablePost ReactableKind = "post"
	// ReactableComment targets a comment.
	ReactableComment ReactableKind = "comment"
)

// reactableTables is the single source of truth for the closed mapping
// between symbolic kinds and storage discriminators. The reverse direction is
// derived from it in init, so registering a new target kind here updates both
// directions atomically.
var reactableTables = map[ReactableKind]string{
	ReactablePost:    "posts",
	ReactableComment: "comments",
}

var reactableKinds = map[string]ReactableKind{}

func init() {
	for kind, table := range reactableTables {
		reactableKinds[table] = kind
	}
}

// Valid reports whether the kind is a registered reactable kind.
func (k ReactableKind) Valid() bool {
	_, ok := reactableTables[k]
	return ok
}

// Table returns the storage discriminator for the kind.
func (k ReactableKind) Table() string {
	return reactableTables[k]
}

// ReactableKindForTable resolves a storage discriminator back to its symbolic
// kind. The bool is false for unregistered discriminators.
func ReactableKindForTable(table string) (ReactableKind, bool) {
	kind, ok := reactableKinds[table]
	return kind, ok
}

// Reaction is a polymorphic edge from a user to a post or comment.
//
// The unique index over (user_id, reactable_type, reactable_id) enforces one
// active reaction per author and target; reacting again replaces the kind in
// place rather than accumulating rows.
type Reaction struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UserID        uint         `gorm:"not null;uniqueIndex:idx_user_reactable" json:"user_id"`
	User          *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ReactableType string       `gorm:"size:30;not null;uniqueIndex:idx_user_reactable" json:"-"`
	ReactableID   uint         `gorm:"not null;uniqueIndex:idx_user_reactable" json:"reactable_id"`
	Type          ReactionKind `gorm:"type:varchar(10);not null" json:"type"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// ReactableKind mirrors ReactableType in symbolic form for API payloads.
	ReactableKind ReactableKind `gorm:"-" json:"reactable_type"`
}

// TableName specifies the table name for GORM.
func (Reaction) TableName() string {
	return "reactions"
}

// Normalize fills the symbolic kind from the storage discriminator. Call it
// before handing a reaction loaded from storage to a caller.
func (r *Reaction) Normalize() {
	if kind, ok := ReactableKindForTable(r.ReactableType); ok {
		r.ReactableKind = kind
	}
}
