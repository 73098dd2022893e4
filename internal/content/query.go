package content

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/threaddit/internal/apperr"
	"github.com/emilythestrangee/threaddit/internal/models"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// ListOptions carries the generic query shape: comma-separated sort fields
// (leading '-' for descending), a page size and a 1-based page number.
type ListOptions struct {
	Sort  string
	Limit int
	Page  int
}

// Sortable columns; anything else in the sort string is ignored.
var sortColumns = map[string]bool{
	"created_at": true,
	"score":      true,
	"upvotes":    true,
	"downvotes":  true,
	"title":      true,
}

func (o ListOptions) scope(db *gorm.DB) *gorm.DB {
	sorted := false
	for _, field := range strings.Split(o.Sort, ",") {
		field = strings.TrimSpace(field)
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		if !sortColumns[field] {
			continue
		}
		if desc {
			field += " desc"
		}
		db = db.Order(field)
		sorted = true
	}
	if !sorted {
		db = db.Order("created_at desc")
	}

	limit := o.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	page := o.Page
	if page < 1 {
		page = 1
	}
	return db.Limit(limit).Offset((page - 1) * limit)
}

func (s *Service) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Creator").First(&post, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &post, nil
}

func (s *Service) ListPosts(ctx context.Context, communityID int, opts ListOptions) ([]models.Post, error) {
	db := s.db.WithContext(ctx).Preload("Creator")
	if communityID > 0 {
		db = db.Where("community_id = ?", communityID)
	}

	var posts []models.Post
	if err := opts.scope(db).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Feed returns posts from the communities the user is subscribed to.
func (s *Service) Feed(ctx context.Context, userID int, opts ListOptions) ([]models.Post, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}

	subscribed := db.Table("user_subscriptions").
		Select("community_id").
		Where("user_id = ?", userID)

	var posts []models.Post
	err := opts.scope(db.Preload("Creator").Where("community_id IN (?)", subscribed)).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Service) GetComment(ctx context.Context, id int) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("Creator").First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &comment, nil
}

func (s *Service) ListComments(ctx context.Context, postID int, opts ListOptions) ([]models.Comment, error) {
	db := s.db.WithContext(ctx).Preload("Creator")
	if postID > 0 {
		db = db.Where("post_id = ?", postID)
	}

	var comments []models.Comment
	if err := opts.scope(db).Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Service) GetReply(ctx context.Context, id int) (*models.Reply, error) {
	var reply models.Reply
	if err := s.db.WithContext(ctx).Preload("Creator").First(&reply, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &reply, nil
}

func (s *Service) ListReplies(ctx context.Context, parentType string, parentID int, opts ListOptions) ([]models.Reply, error) {
	db := s.db.WithContext(ctx).Preload("Creator")
	if parentID > 0 {
		if parentType == "" {
			parentType = models.ParentComment
		}
		db = db.Where("parent_type = ? AND parent_id = ?", parentType, parentID)
	}

	var replies []models.Reply
	if err := opts.scope(db).Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}
