// Package votes implements the per-(user, document) vote ledger. A user is
// in exactly one of three states for any document: no vote, upvoted, or
// downvoted. The four operations here are the only code path that touches
// vote-sets, vote counters and creator karma, and each transition commits
// all three writes in a single transaction.
package votes

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/threaddit/internal/apperr"
	"github.com/emilythestrangee/threaddit/internal/models"
)

// Kind selects which vote-set pair a document belongs to.
type Kind int

const (
	KindPost Kind = iota + 1
	KindComment
	KindReply
)

func (k Kind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindComment:
		return "comment"
	case KindReply:
		return "reply"
	}
	return "unknown"
}

// descriptor resolves a kind to its join tables at compile time instead of
// the stringly-typed field lookup the vote-set pattern usually invites.
type descriptor struct {
	upvotedTable   string
	downvotedTable string
	docColumn      string
}

func (k Kind) descriptor() descriptor {
	switch k {
	case KindPost:
		return descriptor{"user_upvoted_posts", "user_downvoted_posts", "post_id"}
	case KindComment:
		return descriptor{"user_upvoted_comments", "user_downvoted_comments", "comment_id"}
	default:
		return descriptor{"user_upvoted_replies", "user_downvoted_replies", "reply_id"}
	}
}

func (k Kind) blank() models.Document {
	switch k {
	case KindPost:
		return &models.Post{}
	case KindComment:
		return &models.Comment{}
	default:
		return &models.Reply{}
	}
}

type state int

const (
	stateNone state = iota
	stateUpvoted
	stateDownvoted
)

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Upvote moves the voter to the upvoted state. If they were downvoted the
// downvote is undone first, so the document can swing by two and the
// creator's karma with it.
func (s *Service) Upvote(ctx context.Context, k Kind, docID, voterID int) (models.Document, error) {
	return s.transition(ctx, k, docID, voterID, func(tx *gorm.DB, st state, doc models.Document) error {
		d := k.descriptor()
		if st == stateUpvoted {
			return apperr.Conflict("You have already upvoted")
		}
		if st == stateDownvoted {
			if err := removeVoteRow(tx, d.downvotedTable, d.docColumn, voterID, docID); err != nil {
				return err
			}
			if err := bumpCounter(tx, doc, "downvotes", -1); err != nil {
				return err
			}
			if err := bumpKarma(tx, doc.GetCreatorID(), +1); err != nil {
				return err
			}
		}
		if err := addVoteRow(tx, d.upvotedTable, d.docColumn, voterID, docID); err != nil {
			return err
		}
		if err := bumpCounter(tx, doc, "upvotes", +1); err != nil {
			return err
		}
		return bumpKarma(tx, doc.GetCreatorID(), +1)
	})
}

// Downvote moves the voter to the downvoted state, undoing a prior upvote
// first if there is one.
func (s *Service) Downvote(ctx context.Context, k Kind, docID, voterID int) (models.Document, error) {
	return s.transition(ctx, k, docID, voterID, func(tx *gorm.DB, st state, doc models.Document) error {
		d := k.descriptor()
		if st == stateDownvoted {
			return apperr.Conflict("You have already downvoted")
		}
		if st == stateUpvoted {
			if err := removeVoteRow(tx, d.upvotedTable, d.docColumn, voterID, docID); err != nil {
				return err
			}
			if err := bumpCounter(tx, doc, "upvotes", -1); err != nil {
				return err
			}
			if err := bumpKarma(tx, doc.GetCreatorID(), -1); err != nil {
				return err
			}
		}
		if err := addVoteRow(tx, d.downvotedTable, d.docColumn, voterID, docID); err != nil {
			return err
		}
		if err := bumpCounter(tx, doc, "downvotes", +1); err != nil {
			return err
		}
		return bumpKarma(tx, doc.GetCreatorID(), -1)
	})
}

// RemoveUpvote returns an upvoted voter to the no-vote state.
func (s *Service) RemoveUpvote(ctx context.Context, k Kind, docID, voterID int) (models.Document, error) {
	return s.transition(ctx, k, docID, voterID, func(tx *gorm.DB, st state, doc models.Document) error {
		d := k.descriptor()
		if st != stateUpvoted {
			return apperr.Conflict("You have not upvoted")
		}
		if err := removeVoteRow(tx, d.upvotedTable, d.docColumn, voterID, docID); err != nil {
			return err
		}
		if err := bumpCounter(tx, doc, "upvotes", -1); err != nil {
			return err
		}
		return bumpKarma(tx, doc.GetCreatorID(), -1)
	})
}

// RemoveDownvote returns a downvoted voter to the no-vote state.
func (s *Service) RemoveDownvote(ctx context.Context, k Kind, docID, voterID int) (models.Document, error) {
	return s.transition(ctx, k, docID, voterID, func(tx *gorm.DB, st state, doc models.Document) error {
		d := k.descriptor()
		if st != stateDownvoted {
			return apperr.Conflict("You have not downvoted")
		}
		if err := removeVoteRow(tx, d.downvotedTable, d.docColumn, voterID, docID); err != nil {
			return err
		}
		if err := bumpCounter(tx, doc, "downvotes", -1); err != nil {
			return err
		}
		return bumpKarma(tx, doc.GetCreatorID(), +1)
	})
}

// transition loads the document and the voter's current vote state, runs the
// guarded effect inside one transaction, and returns the document with fresh
// counters. A failed guard leaves every record untouched.
func (s *Service) transition(
	ctx context.Context,
	k Kind,
	docID, voterID int,
	apply func(tx *gorm.DB, st state, doc models.Document) error,
) (models.Document, error) {
	doc := k.blank()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(doc, docID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("document not found")
			}
			return err
		}

		var voter models.User
		if err := tx.First(&voter, voterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user not found")
			}
			return err
		}

		st, err := currentState(tx, k, voterID, docID)
		if err != nil {
			return err
		}

		return apply(tx, st, doc)
	})
	if err != nil {
		return nil, err
	}

	// Reload so callers see the committed counters.
	if err := s.db.WithContext(ctx).First(doc, docID).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func currentState(tx *gorm.DB, k Kind, voterID, docID int) (state, error) {
	d := k.descriptor()

	var n int64
	err := tx.Table(d.upvotedTable).
		Where("user_id = ? AND "+d.docColumn+" = ?", voterID, docID).
		Count(&n).Error
	if err != nil {
		return stateNone, err
	}
	if n > 0 {
		return stateUpvoted, nil
	}

	err = tx.Table(d.downvotedTable).
		Where("user_id = ? AND "+d.docColumn+" = ?", voterID, docID).
		Count(&n).Error
	if err != nil {
		return stateNone, err
	}
	if n > 0 {
		return stateDownvoted, nil
	}
	return stateNone, nil
}

// Table and column names come from the closed descriptor set above, never
// from request input.
func addVoteRow(tx *gorm.DB, table, docColumn string, voterID, docID int) error {
	return tx.Exec(
		fmt.Sprintf("INSERT INTO %s (user_id, %s) VALUES (?, ?)", table, docColumn),
		voterID, docID,
	).Error
}

func removeVoteRow(tx *gorm.DB, table, docColumn string, voterID, docID int) error {
	return tx.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND %s = ?", table, docColumn),
		voterID, docID,
	).Error
}

func bumpCounter(tx *gorm.DB, doc models.Document, column string, delta int) error {
	return tx.Model(doc).UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

func bumpKarma(tx *gorm.DB, creatorID, delta int) error {
	return tx.Model(&models.User{}).
		Where("id = ?", creatorID).
		UpdateColumn("karma", gorm.Expr("karma + ?", delta)).Error
}
