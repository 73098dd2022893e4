package votes_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/threaddit/internal/apperr"
	"github.com/emilythestrangee/threaddit/internal/models"
	"github.com/emilythestrangee/threaddit/internal/testutil"
	"github.com/emilythestrangee/threaddit/internal/votes"
)

type fixture struct {
	db      *gorm.DB
	svc     *votes.Service
	creator *models.User
	voter   *models.User
	post    *models.Post
	comment *models.Comment
	reply   *models.Reply
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	creator := testutil.SeedUser(t, db, "creator", 0)
	voter := testutil.SeedUser(t, db, "voter", 0)
	community := testutil.SeedCommunity(t, db, "golang", creator)
	post := testutil.SeedPost(t, db, "first post", creator, community)
	comment := testutil.SeedComment(t, db, "nice", creator, post)
	reply := testutil.SeedReply(t, db, "agreed", creator, models.ParentComment, comment.ID)

	return &fixture{
		db:      db,
		svc:     votes.New(db),
		creator: creator,
		voter:   voter,
		post:    post,
		comment: comment,
		reply:   reply,
	}
}

func (f *fixture) karma(t *testing.T, userID int) int {
	t.Helper()
	var user models.User
	require.NoError(t, f.db.First(&user, userID).Error)
	return user.Karma
}

func (f *fixture) voteRows(t *testing.T, table string, docColumn string, voterID, docID int) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Table(table).
		Where("user_id = ? AND "+docColumn+" = ?", voterID, docID).
		Count(&n).Error)
	return n
}

func TestUpvoteFresh(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	doc, err := f.svc.Upvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.GetUpvotes())
	assert.Equal(t, 0, doc.GetDownvotes())
	assert.Equal(t, 1, f.karma(t, f.creator.ID))
	assert.EqualValues(t, 1, f.voteRows(t, "user_upvoted_posts", "post_id", f.voter.ID, f.post.ID))
	assert.EqualValues(t, 0, f.voteRows(t, "user_downvoted_posts", "post_id", f.voter.ID, f.post.ID))
}

func TestDownvoteFresh(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	doc, err := f.svc.Downvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, doc.GetUpvotes())
	assert.Equal(t, 1, doc.GetDownvotes())
	assert.Equal(t, -1, f.karma(t, f.creator.ID))
}

func TestDoubleUpvoteConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Upvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)

	_, err = f.svc.Upvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	// Nothing moved
	var post models.Post
	require.NoError(t, f.db.First(&post, f.post.ID).Error)
	assert.Equal(t, 1, post.Upvotes)
	assert.Equal(t, 1, f.karma(t, f.creator.ID))
	assert.EqualValues(t, 1, f.voteRows(t, "user_upvoted_posts", "post_id", f.voter.ID, f.post.ID))
}

func TestDoubleDownvoteConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Downvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)

	_, err = f.svc.Downvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	assert.True(t, apperr.IsConflict(err))
}

func TestSwitchUpvoteToDownvote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Upvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.karma(t, f.creator.ID))

	doc, err := f.svc.Downvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)

	// The switch swings counts by two and karma by exactly -2
	assert.Equal(t, 0, doc.GetUpvotes())
	assert.Equal(t, 1, doc.GetDownvotes())
	assert.Equal(t, -1, f.karma(t, f.creator.ID))

	// Tri-state: the upvote row is gone
	assert.EqualValues(t, 0, f.voteRows(t, "user_upvoted_posts", "post_id", f.voter.ID, f.post.ID))
	assert.EqualValues(t, 1, f.voteRows(t, "user_downvoted_posts", "post_id", f.voter.ID, f.post.ID))
}

func TestSwitchDownvoteToUpvote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Downvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)
	require.Equal(t, -1, f.karma(t, f.creator.ID))

	doc, err := f.svc.Upvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.GetUpvotes())
	assert.Equal(t, 0, doc.GetDownvotes())
	assert.Equal(t, 1, f.karma(t, f.creator.ID))
}

func TestRemoveUpvote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Upvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)

	doc, err := f.svc.RemoveUpvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, doc.GetUpvotes())
	assert.Equal(t, 0, f.karma(t, f.creator.ID))
	assert.EqualValues(t, 0, f.voteRows(t, "user_upvoted_posts", "post_id", f.voter.ID, f.post.ID))
}

func TestRemoveDownvote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Downvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)

	doc, err := f.svc.RemoveDownvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, doc.GetDownvotes())
	assert.Equal(t, 0, f.karma(t, f.creator.ID))
}

func TestRemoveVoteWithoutVoting(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.RemoveUpvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	assert.True(t, apperr.IsConflict(err))

	_, err = f.svc.RemoveDownvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	assert.True(t, apperr.IsConflict(err))

	// Downvoted then trying to remove an upvote is still a conflict
	_, err = f.svc.Downvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	require.NoError(t, err)
	_, err = f.svc.RemoveUpvote(ctx, votes.KindPost, f.post.ID, f.voter.ID)
	assert.True(t, apperr.IsConflict(err))
}

func TestVoteOnMissingDocument(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Upvote(context.Background(), votes.KindPost, 9999, f.voter.ID)
	require.Error(t, err)
	status, _ := apperr.Status(err)
	assert.Equal(t, 404, status)
}

func TestVoteByMissingUser(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Upvote(context.Background(), votes.KindPost, f.post.ID, 9999)
	require.Error(t, err)
	status, _ := apperr.Status(err)
	assert.Equal(t, 404, status)
}

func TestCommentAndReplyKinds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Upvote(ctx, votes.KindComment, f.comment.ID, f.voter.ID)
	require.NoError(t, err)
	_, err = f.svc.Downvote(ctx, votes.KindReply, f.reply.ID, f.voter.ID)
	require.NoError(t, err)

	// Each kind keeps its own vote-set pair
	assert.EqualValues(t, 1, f.voteRows(t, "user_upvoted_comments", "comment_id", f.voter.ID, f.comment.ID))
	assert.EqualValues(t, 1, f.voteRows(t, "user_downvoted_replies", "reply_id", f.voter.ID, f.reply.ID))
	assert.EqualValues(t, 0, f.voteRows(t, "user_upvoted_posts", "post_id", f.voter.ID, f.post.ID))

	// Creator made both documents: +1 for the comment, -1 for the reply
	assert.Equal(t, 0, f.karma(t, f.creator.ID))
}

func TestSelfVoteMovesOwnKarma(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Upvote(context.Background(), votes.KindPost, f.post.ID, f.creator.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, f.karma(t, f.creator.ID))
}

func TestCounterLedgerEquality(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	voters := []*models.User{
		f.voter,
		testutil.SeedUser(t, f.db, "alice", 0),
		testutil.SeedUser(t, f.db, "bob", 0),
		testutil.SeedUser(t, f.db, "carol", 0),
	}

	// alice and bob upvote, carol downvotes, voter upvotes then switches
	_, err := f.svc.Upvote(ctx, votes.KindPost, f.post.ID, voters[1].ID)
	require.NoError(t, err)
	_, err = f.svc.Upvote(ctx, votes.KindPost, f.post.ID, voters[2].ID)
	require.NoError(t, err)
	_, err = f.svc.Downvote(ctx, votes.KindPost, f.post.ID, voters[3].ID)
	require.NoError(t, err)
	_, err = f.svc.Upvote(ctx, votes.KindPost, f.post.ID, voters[0].ID)
	require.NoError(t, err)
	_, err = f.svc.Downvote(ctx, votes.KindPost, f.post.ID, voters[0].ID)
	require.NoError(t, err)

	var post models.Post
	require.NoError(t, f.db.First(&post, f.post.ID).Error)

	var upRows, downRows int64
	require.NoError(t, f.db.Table("user_upvoted_posts").Where("post_id = ?", post.ID).Count(&upRows).Error)
	require.NoError(t, f.db.Table("user_downvoted_posts").Where("post_id = ?", post.ID).Count(&downRows).Error)

	// Counters always equal the cardinality of the vote-sets
	assert.EqualValues(t, post.Upvotes, upRows)
	assert.EqualValues(t, post.Downvotes, downRows)
	assert.Equal(t, 2, post.Upvotes)
	assert.Equal(t, 2, post.Downvotes)

	// And no voter ever holds both sides at once
	for _, v := range voters {
		up := f.voteRows(t, "user_upvoted_posts", "post_id", v.ID, post.ID)
		down := f.voteRows(t, "user_downvoted_posts", "post_id", v.ID, post.ID)
		assert.False(t, up > 0 && down > 0, "voter %d is in both vote-sets", v.ID)
	}

	// Net karma for the creator: +2 up, -2 down
	assert.Equal(t, 0, f.karma(t, f.creator.ID))
}
