package models

import "time"

type Community struct {
	ID        int    `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"uniqueIndex;not null" json:"name"`
	CreatorID int    `json:"creator_id"`
	Creator   User   `gorm:"foreignKey:CreatorID" json:"creator"`

	Subscribers int `gorm:"default:0" json:"subscribers"`

	// Creator is always a member of Moderators.
	Moderators  []User `gorm:"many2many:community_moderators" json:"moderators,omitempty"`
	BannedUsers []User `gorm:"many2many:community_banned_users" json:"banned_users,omitempty"`

	Rules          string `json:"rules"`
	Description    string `json:"description"`
	WelcomeMessage string `json:"welcome_message"`
	Avatar         string `gorm:"default:''" json:"avatar"`
	Cover          string `gorm:"default:''" json:"cover"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCommunityRequest struct {
	Name           string `json:"name"`
	Rules          string `json:"rules"`
	Description    string `json:"description"`
	WelcomeMessage string `json:"welcome_message"`
	Avatar         string `json:"avatar"`
	Cover          string `json:"cover"`
	Moderators     []int  `json:"moderators"`
}

type UpdateCommunityRequest struct {
	Rules          *string `json:"rules"`
	Description    *string `json:"description"`
	WelcomeMessage *string `json:"welcome_message"`
	Avatar         *string `json:"avatar"`
	Cover          *string `json:"cover"`
	Moderators     []int   `json:"moderators"`
}
