package communities_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/threaddit/internal/apperr"
	"github.com/emilythestrangee/threaddit/internal/communities"
	"github.com/emilythestrangee/threaddit/internal/models"
	"github.com/emilythestrangee/threaddit/internal/testutil"
)

func setup(t *testing.T) (*gorm.DB, *communities.Service) {
	t.Helper()
	db := testutil.OpenDB(t)
	return db, communities.New(db)
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	require.Error(t, err)
	status, _ := apperr.Status(err)
	assert.Equal(t, want, status)
}

func subscribers(t *testing.T, db *gorm.DB, communityID int) int {
	t.Helper()
	var c models.Community
	require.NoError(t, db.First(&c, communityID).Error)
	return c.Subscribers
}

func TestCreateCommunity(t *testing.T) {
	db, svc := setup(t)
	creator := testutil.SeedUser(t, db, "founder", 60)

	community, err := svc.Create(context.Background(), creator.ID, models.CreateCommunityRequest{
		Name:        "golang",
		Description: "gophers",
	})
	require.NoError(t, err)

	assert.Equal(t, "golang", community.Name)
	assert.Equal(t, creator.ID, community.CreatorID)

	// The creator always ends up among the moderators
	ids := make([]int, 0, len(community.Moderators))
	for _, m := range community.Moderators {
		ids = append(ids, m.ID)
	}
	assert.Contains(t, ids, creator.ID)
}

func TestCreateCommunityKarmaGate(t *testing.T) {
	db, svc := setup(t)
	newbie := testutil.SeedUser(t, db, "newbie", 49)

	_, err := svc.Create(context.Background(), newbie.ID, models.CreateCommunityRequest{Name: "nope"})
	assertStatus(t, err, 403)

	// 50 karma is exactly enough
	veteran := testutil.SeedUser(t, db, "veteran", 50)
	_, err = svc.Create(context.Background(), veteran.ID, models.CreateCommunityRequest{Name: "yes"})
	assert.NoError(t, err)
}

func TestCreateCommunityNameValidation(t *testing.T) {
	db, svc := setup(t)
	creator := testutil.SeedUser(t, db, "founder", 60)
	ctx := context.Background()

	for _, name := range []string{"ab", "has spaces", "dash-es", "thisnameismuchtoolongtoaccept"} {
		_, err := svc.Create(ctx, creator.ID, models.CreateCommunityRequest{Name: name})
		assertStatus(t, err, 400)
	}

	_, err := svc.Create(ctx, creator.ID, models.CreateCommunityRequest{Name: "under_score9"})
	assert.NoError(t, err)
}

func TestCreateCommunityDuplicateName(t *testing.T) {
	db, svc := setup(t)
	creator := testutil.SeedUser(t, db, "founder", 60)
	ctx := context.Background()

	_, err := svc.Create(ctx, creator.ID, models.CreateCommunityRequest{Name: "taken"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, creator.ID, models.CreateCommunityRequest{Name: "taken"})
	assertStatus(t, err, 409)
}

func TestUpdateCommunity(t *testing.T) {
	db, svc := setup(t)
	creator := testutil.SeedUser(t, db, "founder", 60)
	outsider := testutil.SeedUser(t, db, "outsider", 60)
	community := testutil.SeedCommunity(t, db, "golang", creator)
	ctx := context.Background()

	desc := "all things go"
	updated, err := svc.Update(ctx, community.ID, creator.ID, models.UpdateCommunityRequest{
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)

	// Only the creator may update
	_, err = svc.Update(ctx, community.ID, outsider.ID, models.UpdateCommunityRequest{Description: &desc})
	assertStatus(t, err, 403)
}

func TestUpdateModeratorListKeepsCreator(t *testing.T) {
	db, svc := setup(t)
	creator := testutil.SeedUser(t, db, "founder", 60)
	helper := testutil.SeedUser(t, db, "helper", 0)
	community := testutil.SeedCommunity(t, db, "golang", creator)

	updated, err := svc.Update(context.Background(), community.ID, creator.ID, models.UpdateCommunityRequest{
		Moderators: []int{helper.ID},
	})
	require.NoError(t, err)

	ids := make([]int, 0, len(updated.Moderators))
	for _, m := range updated.Moderators {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []int{creator.ID, helper.ID}, ids)
}

func TestDeleteCommunity(t *testing.T) {
	db, svc := setup(t)
	creator := testutil.SeedUser(t, db, "founder", 60)
	outsider := testutil.SeedUser(t, db, "outsider", 0)
	ctx := context.Background()

	community := testutil.SeedCommunity(t, db, "golang", creator)
	err := svc.Delete(ctx, community.ID, outsider.ID)
	assertStatus(t, err, 403)

	require.NoError(t, svc.Delete(ctx, community.ID, creator.ID))
	_, err = svc.Get(ctx, community.ID)
	assertStatus(t, err, 404)
}

func TestAdminCanDeleteCommunity(t *testing.T) {
	db, svc := setup(t)
	creator := testutil.SeedUser(t, db, "founder", 60)
	admin := testutil.SeedUser(t, db, "admin", 0)
	require.NoError(t, db.Model(admin).UpdateColumn("role", models.RoleAdmin).Error)

	community := testutil.SeedCommunity(t, db, "golang", creator)
	require.NoError(t, svc.Delete(context.Background(), community.ID, admin.ID))
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	db, svc := setup(t)
	creator := testutil.SeedUser(t, db, "founder", 60)
	member := testutil.SeedUser(t, db, "member", 0)
	community := testutil.SeedCommunity(t, db, "golang", creator)
	ctx := context.Background()

	require.NoError(t, svc.Subscribe(ctx, community.ID, member.ID))
	assert.Equal(t, 1, subscribers(t, db, community.ID))

	// Subscribing twice is a conflict and the counter moves only once
	err := svc.Subscribe(ctx, community.ID, member.ID)
	assertStatus(t, err, 409)
	assert.Equal(t, 1, subscribers(t, db, community.ID))

	require.NoError(t, svc.Unsubscribe(ctx, community.ID, member.ID))
	assert.Equal(t, 0, subscribers(t, db, community.ID))

	err = svc.Unsubscribe(ctx, community.ID, member.ID)
	assertStatus(t, err, 409)
	assert.Equal(t, 0, subscribers(t, db, community.ID))
}

func TestSubscribeMissingCommunity(t *testing.T) {
	db, svc := setup(t)
	member := testutil.SeedUser(t, db, "member", 0)

	err := svc.Subscribe(context.Background(), 9999, member.ID)
	assertStatus(t, err, 404)
}

func TestBanAndUnban(t *testing.T) {
	db, svc := setup(t)
	creator := testutil.SeedUser(t, db, "founder", 60)
	target := testutil.SeedUser(t, db, "target", 0)
	community := testutil.SeedCommunity(t, db, "golang", creator)
	ctx := context.Background()

	require.NoError(t, svc.Ban(ctx, community.ID, target.ID, creator.ID))

	err := svc.Ban(ctx, community.ID, target.ID, creator.ID)
	assertStatus(t, err, 409)

	require.NoError(t, svc.Unban(ctx, community.ID, target.ID, creator.ID))

	err = svc.Unban(ctx, community.ID, target.ID, creator.ID)
	assertStatus(t, err, 409)
}

func TestBanRequiresModerator(t *testing.T) {
	db, svc := setup(t)
	creator := testutil.SeedUser(t, db, "founder", 60)
	target := testutil.SeedUser(t, db, "target", 0)
	outsider := testutil.SeedUser(t, db, "outsider", 0)
	community := testutil.SeedCommunity(t, db, "golang", creator)
	ctx := context.Background()

	err := svc.Ban(ctx, community.ID, target.ID, outsider.ID)
	assertStatus(t, err, 403)

	// Appointed moderators can ban like the creator
	_, err = svc.Update(ctx, community.ID, creator.ID, models.UpdateCommunityRequest{
		Moderators: []int{outsider.ID},
	})
	require.NoError(t, err)
	assert.NoError(t, svc.Ban(ctx, community.ID, target.ID, outsider.ID))
}

func TestListOrdersBySubscribers(t *testing.T) {
	db, svc := setup(t)
	creator := testutil.SeedUser(t, db, "founder", 60)
	member := testutil.SeedUser(t, db, "member", 0)
	small := testutil.SeedCommunity(t, db, "small", creator)
	big := testutil.SeedCommunity(t, db, "big", creator)
	ctx := context.Background()

	require.NoError(t, svc.Subscribe(ctx, big.ID, member.ID))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, big.ID, list[0].ID)
	assert.Equal(t, small.ID, list[1].ID)
}
