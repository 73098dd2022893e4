// Package jobs runs the background score recalculation. Every interval the
// sweeper re-derives the ranking score for all documents created inside the
// trailing window; older documents keep their last-computed score for good.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/emilythestrangee/threaddit/internal/models"
	"github.com/emilythestrangee/threaddit/internal/ranking"
)

type ScoreSweeper struct {
	db       *gorm.DB
	log      *slog.Logger
	interval time.Duration
	window   time.Duration

	done    chan struct{}
	mu      sync.Mutex
	running bool
}

func NewScoreSweeper(db *gorm.DB, logger *slog.Logger, interval, window time.Duration) *ScoreSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreSweeper{
		db:       db,
		log:      logger,
		interval: interval,
		window:   window,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine. Calling Start on a
// running sweeper is a no-op.
func (s *ScoreSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunSweep(context.Background())
			case <-s.done:
				return
			}
		}
	}()
}

func (s *ScoreSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.done)
	s.done = make(chan struct{})
}

// RunSweep recomputes scores for every post, comment and reply created
// within the window. A single document failing to update never aborts the
// rest of the sweep.
func (s *ScoreSweeper) RunSweep(ctx context.Context) {
	now := time.Now()
	cutoff := now.Add(-s.window)
	db := s.db.WithContext(ctx)

	s.log.Info("score sweep started", "cutoff", cutoff)

	updated, failed := 0, 0

	var posts []models.Post
	if err := db.Where("created_at > ?", cutoff).Find(&posts).Error; err != nil {
		s.log.Error("score sweep: fetching posts failed", "err", err)
	} else {
		for i := range posts {
			post := &posts[i]
			score := ranking.Hot(post.Upvotes, post.Downvotes, now.Sub(post.CreatedAt))
			if err := db.Model(post).UpdateColumn("score", score).Error; err != nil {
				s.log.Error("score sweep: post update failed", "post_id", post.ID, "err", err)
				failed++
				continue
			}
			updated++
		}
	}

	var comments []models.Comment
	if err := db.Where("created_at > ?", cutoff).Find(&comments).Error; err != nil {
		s.log.Error("score sweep: fetching comments failed", "err", err)
	} else {
		for i := range comments {
			comment := &comments[i]
			score := ranking.Confidence(comment.Upvotes, comment.Downvotes)
			if err := db.Model(comment).UpdateColumn("score", score).Error; err != nil {
				s.log.Error("score sweep: comment update failed", "comment_id", comment.ID, "err", err)
				failed++
				continue
			}
			updated++
		}
	}

	var replies []models.Reply
	if err := db.Where("created_at > ?", cutoff).Find(&replies).Error; err != nil {
		s.log.Error("score sweep: fetching replies failed", "err", err)
	} else {
		for i := range replies {
			reply := &replies[i]
			score := ranking.Confidence(reply.Upvotes, reply.Downvotes)
			if err := db.Model(reply).UpdateColumn("score", score).Error; err != nil {
				s.log.Error("score sweep: reply update failed", "reply_id", reply.ID, "err", err)
				failed++
				continue
			}
			updated++
		}
	}

	s.log.Info("score sweep finished", "updated", updated, "failed", failed, "took", time.Since(now))
}
