package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Phone    string `json:"phone,omitempty"` // optional, for SMS notifications
	Password string `gorm:"not null" json:"-"`
	About    string `json:"about"`
	Avatar   string `json:"avatar"`
	Role     string `gorm:"default:user" json:"role"`
	Karma    int    `gorm:"default:0" json:"karma"`

	// Password reset flow
	ResetCode        string     `gorm:"index" json:"-"`
	ResetCodeExpires *time.Time `json:"-"`

	SubscribedCommunities []Community `gorm:"many2many:user_subscriptions" json:"subscribed_communities,omitempty"`

	// Vote-sets: one paired set per document kind. A document id may appear
	// in at most one side of its pair, never both.
	UpvotedPosts      []Post    `gorm:"many2many:user_upvoted_posts" json:"upvoted_posts,omitempty"`
	DownvotedPosts    []Post    `gorm:"many2many:user_downvoted_posts" json:"downvoted_posts,omitempty"`
	UpvotedComments   []Comment `gorm:"many2many:user_upvoted_comments" json:"upvoted_comments,omitempty"`
	DownvotedComments []Comment `gorm:"many2many:user_downvoted_comments" json:"downvoted_comments,omitempty"`
	UpvotedReplies    []Reply   `gorm:"many2many:user_upvoted_replies" json:"upvoted_replies,omitempty"`
	DownvotedReplies  []Reply   `gorm:"many2many:user_downvoted_replies" json:"downvoted_replies,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
