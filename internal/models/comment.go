package models

import "time"

type Comment struct {
	ID      int    `gorm:"primaryKey" json:"id"`
	Content string `gorm:"not null" json:"content"`

	CreatorID int  `json:"creator_id"`
	Creator   User `gorm:"foreignKey:CreatorID" json:"creator"`
	PostID    int  `json:"post_id"`

	Upvotes   int     `gorm:"default:0" json:"upvotes"`
	Downvotes int     `gorm:"default:0" json:"downvotes"`
	Score     float64 `gorm:"default:0" json:"score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Comment) GetID() int        { return c.ID }
func (c *Comment) GetCreatorID() int { return c.CreatorID }
func (c *Comment) GetUpvotes() int   { return c.Upvotes }
func (c *Comment) GetDownvotes() int { return c.Downvotes }

type CreateCommentRequest struct {
	Content string `json:"content"`
	PostID  int    `json:"post_id"`
}
