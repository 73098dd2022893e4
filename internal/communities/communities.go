// Package communities covers membership and moderation: community CRUD,
// subscribe/unsubscribe with subscriber counting, and ban/unban. Banned
// status only gates document creation; it is never enforced retroactively.
package communities

import (
	"context"
	"errors"
	"regexp"

	"gorm.io/gorm"

	"github.com/emilythestrangee/threaddit/internal/apperr"
	"github.com/emilythestrangee/threaddit/internal/models"
)

// Creating a community takes standing in the platform first.
const creationKarma = 50

var namePattern = regexp.MustCompile(`^\w+$`)

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Get(ctx context.Context, id int) (*models.Community, error) {
	var community models.Community
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Moderators").
		First(&community, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("community not found")
		}
		return nil, err
	}
	return &community, nil
}

func (s *Service) List(ctx context.Context) ([]models.Community, error) {
	var all []models.Community
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Order("subscribers desc").
		Find(&all).Error
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Create persists a new community. The creator needs 50 karma and always
// ends up in the moderator set.
func (s *Service) Create(ctx context.Context, creatorID int, req models.CreateCommunityRequest) (*models.Community, error) {
	if len(req.Name) < 3 || len(req.Name) > 25 {
		return nil, apperr.Invalid("Community name must be 3 to 25 characters long")
	}
	if !namePattern.MatchString(req.Name) {
		return nil, apperr.Invalid("Community name can only contain letters, numbers and underscores")
	}

	db := s.db.WithContext(ctx)

	var creator models.User
	if err := db.First(&creator, creatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	if creator.Karma < creationKarma {
		return nil, apperr.Forbidden("You need at least 50 karma to create a community")
	}

	var taken int64
	if err := db.Model(&models.Community{}).Where("name = ?", req.Name).Count(&taken).Error; err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, apperr.Conflict("Community name is already taken")
	}

	mods, err := s.moderatorSet(db, creator, req.Moderators)
	if err != nil {
		return nil, err
	}

	community := models.Community{
		Name:           req.Name,
		CreatorID:      creator.ID,
		Moderators:     mods,
		Rules:          req.Rules,
		Description:    req.Description,
		WelcomeMessage: req.WelcomeMessage,
		Avatar:         req.Avatar,
		Cover:          req.Cover,
	}
	if err := db.Create(&community).Error; err != nil {
		return nil, err
	}

	return s.Get(ctx, community.ID)
}

// Update lets the creator change the free-text fields and the moderator set.
func (s *Service) Update(ctx context.Context, id, requesterID int, req models.UpdateCommunityRequest) (*models.Community, error) {
	db := s.db.WithContext(ctx)

	var community models.Community
	if err := db.First(&community, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("community not found")
		}
		return nil, err
	}
	if community.CreatorID != requesterID {
		return nil, apperr.Forbidden("You are not the creator of this community")
	}

	if req.Rules != nil {
		community.Rules = *req.Rules
	}
	if req.Description != nil {
		community.Description = *req.Description
	}
	if req.WelcomeMessage != nil {
		community.WelcomeMessage = *req.WelcomeMessage
	}
	if req.Avatar != nil {
		community.Avatar = *req.Avatar
	}
	if req.Cover != nil {
		community.Cover = *req.Cover
	}
	if err := db.Save(&community).Error; err != nil {
		return nil, err
	}

	if req.Moderators != nil {
		var creator models.User
		if err := db.First(&creator, community.CreatorID).Error; err != nil {
			return nil, err
		}
		mods, err := s.moderatorSet(db, creator, req.Moderators)
		if err != nil {
			return nil, err
		}
		if err := db.Model(&community).Association("Moderators").Replace(mods); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, community.ID)
}

// Delete removes a community. Creator or admin only.
func (s *Service) Delete(ctx context.Context, id, requesterID int) error {
	db := s.db.WithContext(ctx)

	var community models.Community
	if err := db.First(&community, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("community not found")
		}
		return err
	}

	var requester models.User
	if err := db.First(&requester, requesterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}

	if community.CreatorID != requester.ID && requester.Role != models.RoleAdmin {
		return apperr.Forbidden("You are not the creator of this community nor the Admin")
	}

	return db.Delete(&community).Error
}

// Subscribe adds the user to the community and bumps the subscriber counter.
// Subscribing twice is a conflict, so the counter moves exactly once.
func (s *Service) Subscribe(ctx context.Context, communityID, userID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community, user, err := loadPair(tx, communityID, userID)
		if err != nil {
			return err
		}

		subscribed, err := hasRow(tx, "user_subscriptions", "user_id", user.ID, "community_id", community.ID)
		if err != nil {
			return err
		}
		if subscribed {
			return apperr.Conflict("User is already subscribed to this community")
		}

		err = tx.Exec(
			"INSERT INTO user_subscriptions (user_id, community_id) VALUES (?, ?)",
			user.ID, community.ID,
		).Error
		if err != nil {
			return err
		}
		return tx.Model(community).
			UpdateColumn("subscribers", gorm.Expr("subscribers + 1")).Error
	})
}

func (s *Service) Unsubscribe(ctx context.Context, communityID, userID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community, user, err := loadPair(tx, communityID, userID)
		if err != nil {
			return err
		}

		subscribed, err := hasRow(tx, "user_subscriptions", "user_id", user.ID, "community_id", community.ID)
		if err != nil {
			return err
		}
		if !subscribed {
			return apperr.Conflict("User not subscribed to this community")
		}

		err = tx.Exec(
			"DELETE FROM user_subscriptions WHERE user_id = ? AND community_id = ?",
			user.ID, community.ID,
		).Error
		if err != nil {
			return err
		}
		return tx.Model(community).
			UpdateColumn("subscribers", gorm.Expr("subscribers - 1")).Error
	})
}

// Ban adds a user to the community's banned set. Requester must be the
// creator or a moderator. Banning an already-banned user is a conflict.
func (s *Service) Ban(ctx context.Context, communityID, targetID, requesterID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community, target, err := loadPair(tx, communityID, targetID)
		if err != nil {
			return err
		}
		if err := requireModerator(tx, community, requesterID); err != nil {
			return err
		}

		banned, err := hasRow(tx, "community_banned_users", "community_id", community.ID, "user_id", target.ID)
		if err != nil {
			return err
		}
		if banned {
			return apperr.Conflict("User is already banned from this community")
		}

		return tx.Exec(
			"INSERT INTO community_banned_users (community_id, user_id) VALUES (?, ?)",
			community.ID, target.ID,
		).Error
	})
}

func (s *Service) Unban(ctx context.Context, communityID, targetID, requesterID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community, target, err := loadPair(tx, communityID, targetID)
		if err != nil {
			return err
		}
		if err := requireModerator(tx, community, requesterID); err != nil {
			return err
		}

		banned, err := hasRow(tx, "community_banned_users", "community_id", community.ID, "user_id", target.ID)
		if err != nil {
			return err
		}
		if !banned {
			return apperr.Conflict("User is not banned from this community")
		}

		return tx.Exec(
			"DELETE FROM community_banned_users WHERE community_id = ? AND user_id = ?",
			community.ID, target.ID,
		).Error
	})
}

// moderatorSet resolves the requested moderator ids, drops unknowns and
// duplicates, and guarantees the creator is present.
func (s *Service) moderatorSet(db *gorm.DB, creator models.User, ids []int) ([]models.User, error) {
	mods := []models.User{creator}
	seen := map[int]bool{creator.ID: true}

	for _, id := range ids {
		if seen[id] {
			continue
		}
		var user models.User
		if err := db.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("moderator user not found")
			}
			return nil, err
		}
		mods = append(mods, user)
		seen[id] = true
	}
	return mods, nil
}

func loadPair(tx *gorm.DB, communityID, userID int) (*models.Community, *models.User, error) {
	var community models.Community
	if err := tx.First(&community, communityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("community not found")
		}
		return nil, nil, err
	}

	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("user not found")
		}
		return nil, nil, err
	}
	return &community, &user, nil
}

func requireModerator(tx *gorm.DB, community *models.Community, userID int) error {
	if community.CreatorID == userID {
		return nil
	}
	mod, err := hasRow(tx, "community_moderators", "community_id", community.ID, "user_id", userID)
	if err != nil {
		return err
	}
	if !mod {
		return apperr.Forbidden("You are not a moderator of this community")
	}
	return nil
}

func hasRow(tx *gorm.DB, table, colA string, a int, colB string, b int) (bool, error) {
	var n int64
	err := tx.Table(table).
		Where(colA+" = ? AND "+colB+" = ?", a, b).
		Count(&n).Error
	return n > 0, err
}
