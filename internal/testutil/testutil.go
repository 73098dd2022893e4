// Package testutil provides the shared database fixture for service tests:
// a throwaway sqlite database with the full schema migrated.
package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/threaddit/internal/database"
	"github.com/emilythestrangee/threaddit/internal/models"
)

// OpenDB returns a migrated sqlite database backed by a temp file that goes
// away with the test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "threaddit-test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SeedUser creates a user with the given karma.
func SeedUser(t *testing.T, db *gorm.DB, username string, karma int) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     models.RoleUser,
		Karma:    karma,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

// SeedCommunity creates a community owned by creator, with the creator in
// the moderator set.
func SeedCommunity(t *testing.T, db *gorm.DB, name string, creator *models.User) *models.Community {
	t.Helper()

	community := &models.Community{
		Name:       name,
		CreatorID:  creator.ID,
		Moderators: []models.User{*creator},
	}
	if err := db.Create(community).Error; err != nil {
		t.Fatalf("failed to seed community %s: %v", name, err)
	}
	return community
}

// SeedPost creates a post by creator in community.
func SeedPost(t *testing.T, db *gorm.DB, title string, creator *models.User, community *models.Community) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:       title,
		CreatorID:   creator.ID,
		CommunityID: community.ID,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to seed post %s: %v", title, err)
	}
	return post
}

// SeedComment creates a comment by creator under post.
func SeedComment(t *testing.T, db *gorm.DB, content string, creator *models.User, post *models.Post) *models.Comment {
	t.Helper()

	comment := &models.Comment{
		Content:   content,
		CreatorID: creator.ID,
		PostID:    post.ID,
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}
	return comment
}

// SeedReply creates a reply by creator under the given parent.
func SeedReply(t *testing.T, db *gorm.DB, content string, creator *models.User, parentType string, parentID int) *models.Reply {
	t.Helper()

	reply := &models.Reply{
		Content:    content,
		CreatorID:  creator.ID,
		ParentType: parentType,
		ParentID:   parentID,
	}
	if err := db.Create(reply).Error; err != nil {
		t.Fatalf("failed to seed reply: %v", err)
	}
	return reply
}
