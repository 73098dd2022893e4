package models

import "time"

type Post struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	MediaURL    string `json:"media_url"`

	CreatorID   int       `json:"creator_id"`
	Creator     User      `gorm:"foreignKey:CreatorID" json:"creator"`
	CommunityID int       `json:"community_id"`
	Community   Community `gorm:"foreignKey:CommunityID" json:"community"`

	Upvotes   int     `gorm:"default:0" json:"upvotes"`
	Downvotes int     `gorm:"default:0" json:"downvotes"`
	Score     float64 `gorm:"default:0" json:"score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Post) GetID() int        { return p.ID }
func (p *Post) GetCreatorID() int { return p.CreatorID }
func (p *Post) GetUpvotes() int   { return p.Upvotes }
func (p *Post) GetDownvotes() int { return p.Downvotes }

type CreatePostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaURL    string `json:"media_url"`
	CommunityID int    `json:"community_id"`
}
