package models

import "time"

// Reply parent kinds. A reply may hang off a comment or off another reply,
// so the parent reference carries its own kind tag instead of a foreign key.
const (
	ParentComment = "comment"
	ParentReply   = "reply"
)

type Reply struct {
	ID      int    `gorm:"primaryKey" json:"id"`
	Content string `gorm:"not null" json:"content"`

	CreatorID int  `json:"creator_id"`
	Creator   User `gorm:"foreignKey:CreatorID" json:"creator"`

	ParentType string `gorm:"default:comment" json:"parent_type"`
	ParentID   int    `json:"parent_id"`

	Upvotes   int     `gorm:"default:0" json:"upvotes"`
	Downvotes int     `gorm:"default:0" json:"downvotes"`
	Score     float64 `gorm:"default:0" json:"score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Reply) GetID() int        { return r.ID }
func (r *Reply) GetCreatorID() int { return r.CreatorID }
func (r *Reply) GetUpvotes() int   { return r.Upvotes }
func (r *Reply) GetDownvotes() int { return r.Downvotes }

type CreateReplyRequest struct {
	Content    string `json:"content"`
	ParentType string `json:"parent_type"`
	ParentID   int    `json:"parent_id"`
}
