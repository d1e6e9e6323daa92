package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/axellelanca/clickfix/internal/content"
	customerrors "github.com/axellelanca/clickfix/internal/errors"
	"github.com/axellelanca/clickfix/internal/models"
	"github.com/axellelanca/clickfix/internal/repository"
)

func TestResolve_LegacyScenarioConvergesOnAutoCampaign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.resolver.Resolve(ctx, LureRequest{Slug: "teams_error", UserID: "abc123"})
	require.NoError(t, err)
	second, err := f.resolver.Resolve(ctx, LureRequest{Slug: "teams_error", UserID: "def456"})
	require.NoError(t, err)

	assert.Equal(t, first.Campaign.ID, second.Campaign.ID)
	assert.Equal(t, "Auto: teams_error", first.Campaign.Name)
	assert.Equal(t, models.DefaultClientName, first.Campaign.ClientName)
	assert.Nil(t, first.Campaign.Slug)
	assert.Equal(t, content.KindCloned, first.Content.Kind)

	assert.Equal(t, int64(1), f.count(t, &models.Campaign{}))
	assert.Equal(t, int64(2), f.count(t, &models.Target{}))

	var views int64
	require.NoError(t, f.db.Model(&models.Event{}).Where("event_type = ?", models.EventPageView).Count(&views).Error)
	assert.Equal(t, int64(2), views)
}

func TestResolve_ReusesExistingTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.campaign(t, "Registered", "Acme", "chrome_update", "q3-update")

	first, err := f.resolver.Resolve(ctx, LureRequest{Slug: "teams_error", UserID: "abc123"})
	require.NoError(t, err)

	// The same user visiting another lure stays attached to its first campaign.
	second, err := f.resolver.Resolve(ctx, LureRequest{Slug: "q3-update", UserID: "abc123"})
	require.NoError(t, err)

	assert.Equal(t, first.Target.ID, second.Target.ID)
	assert.Equal(t, first.Campaign.ID, second.Campaign.ID)
	assert.NotEqual(t, registered.ID, second.Campaign.ID)
	assert.Equal(t, "chrome_update", second.Scenario)
	assert.Equal(t, int64(1), f.count(t, &models.Target{}))
	assert.Equal(t, int64(2), f.count(t, &models.Event{}))
}

func TestResolve_RegisteredSlugAndTrapOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered, err := f.service.CreateCampaign(ctx, CampaignInput{
		Name:     "Q3 Finance",
		Scenario: "teams_error",
		TrapSlug: "filefix",
		Slug:     "finance-q3",
	})
	require.NoError(t, err)

	res, err := f.resolver.Resolve(ctx, LureRequest{Slug: "finance-q3", UserID: "abc123", Trap: "cloudflare"})
	require.NoError(t, err)

	assert.Equal(t, registered.ID, res.Campaign.ID)
	assert.Equal(t, registered.ID, res.Target.CampaignID)
	assert.Equal(t, "teams_error", res.Scenario)
	assert.Equal(t, "filefix", res.Trap)
	assert.Equal(t, int64(1), f.count(t, &models.Campaign{}), "no auto campaign for a registered slug")
}

func TestResolve_CallerTrapKeptWithoutOverride(t *testing.T) {
	f := newFixture(t)

	res, err := f.resolver.Resolve(context.Background(), LureRequest{Slug: "chrome_update", UserID: "abc123", Trap: "cloudflare"})

	require.NoError(t, err)
	assert.Equal(t, "cloudflare", res.Trap)
	assert.Equal(t, "lures/chrome_update.html", res.Content.Template)
}

func TestResolve_UnknownScenarioWritesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), LureRequest{Slug: "nope", UserID: "abc123"})

	require.ErrorIs(t, err, customerrors.ErrScenarioNotFound)
	assert.Zero(t, f.count(t, &models.Campaign{}))
	assert.Zero(t, f.count(t, &models.Target{}))
	assert.Zero(t, f.count(t, &models.Event{}))
}

func TestResolve_RegisteredSlugWithMissingContent(t *testing.T) {
	f := newFixture(t)
	f.campaign(t, "Broken", "", "does_not_exist", "broken")

	_, err := f.resolver.Resolve(context.Background(), LureRequest{Slug: "broken", UserID: "abc123"})

	require.ErrorIs(t, err, customerrors.ErrScenarioNotFound)
	assert.Zero(t, f.count(t, &models.Target{}))
}

// staleTargets hides existing targets from the first lookups, as a concurrent
// first visit would.
type staleTargets struct {
	repository.TargetRepository
	misses int
}

func (s *staleTargets) GetTargetByUserID(ctx context.Context, userID string) (*models.Target, error) {
	if s.misses > 0 {
		s.misses--
		return nil, gorm.ErrRecordNotFound
	}
	return s.TargetRepository.GetTargetByUserID(ctx, userID)
}

func TestResolve_RecoversFromConcurrentTargetInsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	winner := f.campaign(t, "Winner", "", "chrome_update", "winner")
	f.target(t, winner.ID, "abc123")

	resolver := NewLureResolver(f.campaigns, &staleTargets{TargetRepository: f.targets, misses: 1}, f.content, f.recorder)
	res, err := resolver.Resolve(ctx, LureRequest{Slug: "teams_error", UserID: "abc123"})

	require.NoError(t, err)
	assert.Equal(t, winner.ID, res.Campaign.ID)
	assert.Equal(t, winner.ID, res.Target.CampaignID)
	assert.Equal(t, int64(1), f.count(t, &models.Target{}))
}

func TestCreateTarget_DuplicateUserID(t *testing.T) {
	f := newFixture(t)
	c := f.campaign(t, "Q3", "", "teams_error", "")
	f.target(t, c.ID, "abc123")

	err := f.targets.CreateTarget(context.Background(), &models.Target{CampaignID: c.ID, UserID: "abc123"})

	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Equal(t, int64(1), f.count(t, &models.Target{}))
}
