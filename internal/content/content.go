// Package content is the mutation engine for posts, comments and replies:
// creation with ban/parent checks, authorized deletion, and reads with
// filter/sort/pagination. Vote transitions live in the votes package.
package content

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/threaddit/internal/apperr"
	"github.com/emilythestrangee/threaddit/internal/models"
	"github.com/emilythestrangee/threaddit/internal/votes"
)

// Replies can nest under replies; cap the parent walk so a corrupted chain
// can't loop forever.
const maxReplyDepth = 100

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreatePost persists a new post in a community, rejecting banned creators.
func (s *Service) CreatePost(ctx context.Context, creatorID int, req models.CreatePostRequest) (*models.Post, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.Invalid("Title cannot be empty")
	}

	db := s.db.WithContext(ctx)

	var community models.Community
	if err := db.First(&community, req.CommunityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("community not found")
		}
		return nil, err
	}

	banned, err := s.isBanned(db, community.ID, creatorID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, apperr.Forbidden("You are banned from this community")
	}

	post := models.Post{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		MediaURL:    req.MediaURL,
		CreatorID:   creatorID,
		CommunityID: community.ID,
	}
	if err := db.Create(&post).Error; err != nil {
		return nil, err
	}

	db.Preload("Creator").First(&post, post.ID)
	return &post, nil
}

// CreateComment persists a new comment under a post. The ban check runs
// against the post's owning community.
func (s *Service) CreateComment(ctx context.Context, creatorID int, req models.CreateCommentRequest) (*models.Comment, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperr.Invalid("Content cannot be empty")
	}

	db := s.db.WithContext(ctx)

	var post models.Post
	if err := db.First(&post, req.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, err
	}

	banned, err := s.isBanned(db, post.CommunityID, creatorID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, apperr.Forbidden("You are banned from this community")
	}

	comment := models.Comment{
		Content:   strings.TrimSpace(req.Content),
		CreatorID: creatorID,
		PostID:    post.ID,
	}
	if err := db.Create(&comment).Error; err != nil {
		return nil, err
	}

	db.Preload("Creator").First(&comment, comment.ID)
	return &comment, nil
}

// CreateReply persists a reply under a comment or another reply. The owning
// community is resolved through the parent chain for the ban check.
func (s *Service) CreateReply(ctx context.Context, creatorID int, req models.CreateReplyRequest) (*models.Reply, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperr.Invalid("Content cannot be empty")
	}

	parentType := req.ParentType
	if parentType == "" {
		parentType = models.ParentComment
	}
	if parentType != models.ParentComment && parentType != models.ParentReply {
		return nil, apperr.Invalid("parent_type must be comment or reply")
	}

	db := s.db.WithContext(ctx)

	communityID, err := s.replyChainCommunity(db, parentType, req.ParentID)
	if err != nil {
		return nil, err
	}

	banned, err := s.isBanned(db, communityID, creatorID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, apperr.Forbidden("You are banned from this community")
	}

	reply := models.Reply{
		Content:    strings.TrimSpace(req.Content),
		CreatorID:  creatorID,
		ParentType: parentType,
		ParentID:   req.ParentID,
	}
	if err := db.Create(&reply).Error; err != nil {
		return nil, err
	}

	db.Preload("Creator").First(&reply, reply.ID)
	return &reply, nil
}

// Delete removes a document of any kind. Allowed for the creator, admins,
// and moderators of the owning community. Hard delete; children of a deleted
// post or comment stay addressable by id.
func (s *Service) Delete(ctx context.Context, k votes.Kind, docID, requesterID int) error {
	db := s.db.WithContext(ctx)

	var requester models.User
	if err := db.First(&requester, requesterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}

	var (
		doc         models.Document
		communityID int
	)

	switch k {
	case votes.KindPost:
		var post models.Post
		if err := db.First(&post, docID).Error; err != nil {
			return notFoundOr(err)
		}
		doc, communityID = &post, post.CommunityID
	case votes.KindComment:
		var comment models.Comment
		if err := db.First(&comment, docID).Error; err != nil {
			return notFoundOr(err)
		}
		var post models.Post
		if err := db.First(&post, comment.PostID).Error; err != nil {
			return notFoundOr(err)
		}
		doc, communityID = &comment, post.CommunityID
	case votes.KindReply:
		var reply models.Reply
		if err := db.First(&reply, docID).Error; err != nil {
			return notFoundOr(err)
		}
		cid, err := s.replyChainCommunity(db, reply.ParentType, reply.ParentID)
		if err != nil {
			return err
		}
		doc, communityID = &reply, cid
	default:
		return apperr.Invalid("unknown document kind")
	}

	allowed := doc.GetCreatorID() == requester.ID || requester.Role == models.RoleAdmin
	if !allowed {
		mod, err := s.isModerator(db, communityID, requester.ID)
		if err != nil {
			return err
		}
		allowed = mod
	}
	if !allowed {
		return apperr.Forbidden("You are not authorized to delete this document")
	}

	return db.Delete(doc).Error
}

// replyChainCommunity walks parent references until it reaches a comment,
// then resolves the comment's post and its community.
func (s *Service) replyChainCommunity(db *gorm.DB, parentType string, parentID int) (int, error) {
	for depth := 0; depth < maxReplyDepth; depth++ {
		if parentType == models.ParentComment {
			var comment models.Comment
			if err := db.First(&comment, parentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return 0, apperr.NotFound("comment not found")
				}
				return 0, err
			}
			var post models.Post
			if err := db.First(&post, comment.PostID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return 0, apperr.NotFound("post not found")
				}
				return 0, err
			}
			return post.CommunityID, nil
		}

		var parent models.Reply
		if err := db.First(&parent, parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, apperr.NotFound("comment not found")
			}
			return 0, err
		}
		parentType, parentID = parent.ParentType, parent.ParentID
	}
	return 0, apperr.Invalid("reply chain too deep")
}

func (s *Service) isBanned(db *gorm.DB, communityID, userID int) (bool, error) {
	var n int64
	err := db.Table("community_banned_users").
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&n).Error
	return n > 0, err
}

func (s *Service) isModerator(db *gorm.DB, communityID, userID int) (bool, error) {
	var n int64
	err := db.Table("community_moderators").
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&n).Error
	return n > 0, err
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("document not found")
	}
	return err
}
