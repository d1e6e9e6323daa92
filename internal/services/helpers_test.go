package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/axellelanca/clickfix/internal/config"
	"github.com/axellelanca/clickfix/internal/content"
	"github.com/axellelanca/clickfix/internal/database"
	"github.com/axellelanca/clickfix/internal/models"
	"github.com/axellelanca/clickfix/internal/notify"
	"github.com/axellelanca/clickfix/internal/repository"
)

// fakeNotifier records every alert it receives.
type fakeNotifier struct {
	mu     sync.Mutex
	alerts []notify.Alert
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, a notify.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, a)
	return f.err
}

func (f *fakeNotifier) sent() []notify.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Alert(nil), f.alerts...)
}

type fixture struct {
	db         *gorm.DB
	campaigns  *repository.GormCampaignRepository
	targets    *repository.GormTargetRepository
	events     *repository.GormEventRepository
	notifier   *fakeNotifier
	content    *content.FSResolver
	recorder   *EventRecorder
	resolver   *LureResolver
	aggregator *FunnelAggregator
	service    *CampaignService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(config.Database{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "lures/scenarios/teams_error/index.html", []byte("<html></html>"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "lures/chrome_update.html", []byte("<html></html>"), 0o644))

	f := &fixture{
		db:        db,
		campaigns: repository.NewCampaignRepository(db),
		targets:   repository.NewTargetRepository(db),
		events:    repository.NewEventRepository(db),
		notifier:  &fakeNotifier{},
		content:   content.NewResolverFromFs(fs),
	}
	f.recorder = NewEventRecorder(f.targets, f.events, f.notifier, time.Second)
	f.resolver = NewLureResolver(f.campaigns, f.targets, f.content, f.recorder)
	f.aggregator = NewFunnelAggregator(f.campaigns, f.events)
	f.service = NewCampaignService(f.campaigns, f.targets, f.aggregator)
	return f
}

func (f *fixture) campaign(t *testing.T, name, client, scenario, slug string) *models.Campaign {
	t.Helper()
	c, err := f.service.CreateCampaign(context.Background(), CampaignInput{
		Name:       name,
		ClientName: client,
		Scenario:   scenario,
		Slug:       slug,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) target(t *testing.T, campaignID uint, userID string) {
	t.Helper()
	require.NoError(t, f.targets.CreateTarget(context.Background(), &models.Target{CampaignID: campaignID, UserID: userID}))
}

// event writes an event directly with a fixed timestamp.
func (f *fixture) event(t *testing.T, campaignID uint, userID, eventType string, ts time.Time) {
	t.Helper()
	require.NoError(t, f.events.CreateEvent(context.Background(), &models.Event{
		CampaignID: campaignID,
		UserID:     userID,
		EventType:  eventType,
		Platform:   models.PlatformUnknown,
		Timestamp:  ts.UTC(),
	}))
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

var errSinkDown = errors.New("sink down")

func ptr(t time.Time) *time.Time { return &t }
