package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/clickfix/internal/models"
	"github.com/axellelanca/clickfix/internal/repository"
)

func day(d, h int) time.Time {
	return time.Date(2026, 10, d, h, 0, 0, 0, time.UTC)
}

func TestStats_MergesTrainingCounters(t *testing.T) {
	f := newFixture(t)
	c := f.campaign(t, "Q3", "", "teams_error", "")
	f.target(t, c.ID, "u1")
	f.event(t, c.ID, "u1", models.EventPageView, day(12, 9))
	f.event(t, c.ID, "u1", models.EventTrainingCompleted, day(12, 10))
	f.event(t, c.ID, "u1", models.EventTrainingAcknowledged, day(12, 11))
	f.event(t, c.ID, "u1", models.EventTrainingViewed, day(12, 11))

	stats, err := f.aggregator.Stats(context.Background(), EventFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalViews)
	assert.Equal(t, int64(2), stats.TotalTrainingCompleted)
}

func TestStats_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.campaign(t, "Acme Q3", "Acme", "teams_error", "")
	globex := f.campaign(t, "Globex Q3", "Globex", "teams_error", "")
	f.target(t, acme.ID, "a1")
	f.target(t, globex.ID, "g1")
	f.event(t, acme.ID, "a1", models.EventButtonClick, day(12, 9))
	f.event(t, acme.ID, "a1", models.EventButtonClick, day(14, 9))
	f.event(t, globex.ID, "g1", models.EventButtonClick, day(12, 9))

	byClient, err := f.aggregator.Stats(ctx, EventFilter{Client: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byClient.TotalClicks)

	// campaign_id wins over client
	byCampaign, err := f.aggregator.Stats(ctx, EventFilter{CampaignID: globex.ID, Client: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byCampaign.TotalClicks)

	unknownClient, err := f.aggregator.Stats(ctx, EventFilter{Client: "Nobody"})
	require.NoError(t, err)
	assert.Zero(t, unknownClient.TotalClicks)

	ranged, err := f.aggregator.Stats(ctx, EventFilter{Start: ptr(day(13, 0)), End: ptr(day(15, 0))})
	require.NoError(t, err)
	assert.Equal(t, int64(1), ranged.TotalClicks)

	typed, err := f.aggregator.Stats(ctx, EventFilter{EventTypes: []string{models.EventPageView}})
	require.NoError(t, err)
	assert.Zero(t, typed.TotalClicks)
}

func TestTimeline_EmptyRangeIsGapFilled(t *testing.T) {
	f := newFixture(t)

	tl, err := f.aggregator.Timeline(context.Background(), EventFilter{
		Start: ptr(day(1, 0)),
		End:   ptr(day(10, 12)),
	}, IntervalDay)

	require.NoError(t, err)
	require.Len(t, tl.Buckets, 10)
	for i, b := range tl.Buckets {
		assert.Zero(t, b.Total)
		assert.True(t, day(1+i, 0).Equal(b.Timestamp))
	}
	assert.Zero(t, tl.TotalEvents)
	assert.Equal(t, IntervalDay, tl.Interval)
}

func TestTimeline_DefaultRange(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 10, 16, 15, 45, 0, 0, time.UTC)
	f.aggregator.now = func() time.Time { return now }

	tl, err := f.aggregator.Timeline(context.Background(), EventFilter{}, "bogus")

	require.NoError(t, err)
	assert.Equal(t, IntervalDay, tl.Interval)
	assert.True(t, now.Equal(tl.End))
	assert.True(t, now.AddDate(0, 0, -30).Equal(tl.Start))
	assert.Len(t, tl.Buckets, 31)
}

func TestTimeline_PayloadExecutedWeek(t *testing.T) {
	f := newFixture(t)
	target := f.campaign(t, "Target", "", "teams_error", "")
	other := f.campaign(t, "Other", "", "teams_error", "")
	f.target(t, target.ID, "u1")
	f.target(t, other.ID, "u2")
	f.event(t, target.ID, "u1", models.EventPayloadExecuted, day(12, 9))
	f.event(t, target.ID, "u1", models.EventPayloadExecuted, day(12, 17))
	f.event(t, target.ID, "u1", models.EventPayloadExecuted, day(15, 8))
	f.event(t, target.ID, "u1", models.EventButtonClick, day(13, 8))
	f.event(t, other.ID, "u2", models.EventPayloadExecuted, day(13, 8))

	tl, err := f.aggregator.Timeline(context.Background(), EventFilter{
		Start:      ptr(day(12, 0)),
		End:        ptr(time.Date(2026, 10, 18, 23, 59, 59, 0, time.UTC)),
		EventTypes: []string{models.EventPayloadExecuted},
		CampaignID: target.ID,
	}, IntervalDay)

	require.NoError(t, err)
	require.Len(t, tl.Buckets, 7)
	var executed int64
	nonEmpty := 0
	for _, b := range tl.Buckets {
		executed += b.PayloadExecuted
		if b.Total > 0 {
			nonEmpty++
		}
		assert.Zero(t, b.ButtonClick)
	}
	assert.Equal(t, int64(3), executed)
	assert.Equal(t, 2, nonEmpty)
	assert.Equal(t, int64(2), tl.Buckets[0].PayloadExecuted)
	assert.Equal(t, int64(1), tl.Buckets[3].PayloadExecuted)
	assert.Equal(t, int64(3), tl.TotalEvents)
}

func TestTimeline_MatchesDirectCount(t *testing.T) {
	f := newFixture(t)
	c := f.campaign(t, "Q3", "", "teams_error", "")
	f.target(t, c.ID, "u1")
	f.event(t, c.ID, "u1", models.EventPageView, day(1, 5))
	f.event(t, c.ID, "u1", models.EventPageView, day(3, 5))
	f.event(t, c.ID, "u1", models.EventButtonClick, day(3, 6))
	f.event(t, c.ID, "u1", "LEGACY_EVENT", day(4, 6))
	f.event(t, c.ID, "u1", models.EventPageView, day(20, 5))
	filter := EventFilter{Start: ptr(day(2, 0)), End: ptr(day(5, 0))}
	ctx := context.Background()

	tl, err := f.aggregator.Timeline(ctx, filter, IntervalHour)
	require.NoError(t, err)
	direct, err := f.events.CountEvents(ctx, mustQuery(t, f, filter))
	require.NoError(t, err)

	var sum int64
	var typed int64
	for _, b := range tl.Buckets {
		sum += b.Total
		typed += b.PageView + b.ButtonClick + b.PayloadExecuted + b.TrainingViewed + b.TrainingCompleted + b.TrainingAcknowledged
	}
	assert.Equal(t, int64(3), direct)
	assert.Equal(t, direct, sum)
	assert.Equal(t, int64(2), typed, "unknown types only count toward total")
	assert.Len(t, tl.Buckets, 3*24+1)
}

func TestTimeline_WeekAlignment(t *testing.T) {
	f := newFixture(t)
	c := f.campaign(t, "Q3", "", "teams_error", "")
	f.target(t, c.ID, "u1")
	// 2026-10-16 is a Friday and 2026-10-12 the Monday of that week.
	require.Equal(t, time.Friday, day(16, 0).Weekday())
	f.event(t, c.ID, "u1", models.EventPageView, day(16, 13))
	f.event(t, c.ID, "u1", models.EventPageView, day(18, 23))
	f.event(t, c.ID, "u1", models.EventPageView, day(19, 1))

	tl, err := f.aggregator.Timeline(context.Background(), EventFilter{
		Start: ptr(day(14, 0)),
		End:   ptr(day(20, 0)),
	}, IntervalWeek)

	require.NoError(t, err)
	require.Len(t, tl.Buckets, 2)
	assert.True(t, day(12, 0).Equal(tl.Buckets[0].Timestamp))
	assert.Equal(t, int64(2), tl.Buckets[0].PageView)
	assert.True(t, day(19, 0).Equal(tl.Buckets[1].Timestamp))
	assert.Equal(t, int64(1), tl.Buckets[1].PageView)
}

func TestListEvents_PagingAndOrder(t *testing.T) {
	f := newFixture(t)
	c := f.campaign(t, "Q3", "Acme", "teams_error", "")
	f.target(t, c.ID, "u1")
	for i := 1; i <= 5; i++ {
		f.event(t, c.ID, "u1", models.EventPageView, day(i, 0))
	}
	ctx := context.Background()

	page, err := f.aggregator.ListEvents(ctx, EventFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.Pages)
	require.Len(t, page.Events, 2)
	assert.True(t, day(3, 0).Equal(page.Events[0].Timestamp))
	assert.True(t, day(2, 0).Equal(page.Events[1].Timestamp))
	assert.Equal(t, "Q3", page.Events[0].CampaignName)
	assert.Equal(t, "Acme", page.Events[0].ClientName)

	defaults, err := f.aggregator.ListEvents(ctx, EventFilter{Client: "Acme"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, DefaultPerPage, defaults.PerPage)
	assert.Len(t, defaults.Events, 5)
}

func TestNewEventRow_MissingCampaign(t *testing.T) {
	row := newEventRow(models.Event{ID: 7, CampaignID: 99, EventType: models.EventPageView})

	assert.Equal(t, "Unknown", row.CampaignName)
	assert.Equal(t, "Unknown", row.ClientName)
	assert.Equal(t, uint(7), row.ID)
}

func TestListEvents_PerPageCapped(t *testing.T) {
	f := newFixture(t)
	c := f.campaign(t, "Q3", "", "teams_error", "")
	f.target(t, c.ID, "u1")
	base := day(1, 0)
	events := make([]models.Event, 0, 250)
	for i := 0; i < 250; i++ {
		events = append(events, models.Event{
			CampaignID: c.ID,
			UserID:     "u1",
			EventType:  models.EventPageView,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, f.db.Omit("Campaign").CreateInBatches(events, 50).Error)

	page, err := f.aggregator.ListEvents(context.Background(), EventFilter{}, 1, 10000)

	require.NoError(t, err)
	assert.Equal(t, MaxPerPage, page.PerPage)
	assert.Len(t, page.Events, MaxPerPage)
	assert.Equal(t, int64(250), page.Total)
	assert.Equal(t, 2, page.Pages)
}

func TestAlignBucket(t *testing.T) {
	ts := time.Date(2026, 10, 18, 17, 42, 13, 0, time.UTC) // Sunday
	assert.Equal(t, time.Date(2026, 10, 18, 17, 0, 0, 0, time.UTC), alignBucket(ts, IntervalHour))
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), alignBucket(ts, IntervalDay))
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), alignBucket(ts, IntervalWeek))
	monday := time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), alignBucket(monday, IntervalWeek))
}

func mustQuery(t *testing.T, f *fixture, filter EventFilter) repository.EventQuery {
	t.Helper()
	q, err := f.aggregator.resolveQuery(context.Background(), filter)
	require.NoError(t, err)
	return q
}

func TestTimeline_RangeIsBounded(t *testing.T) {
	f := newFixture(t)
	c := f.campaign(t, "Q3", "", "teams_error", "")
	f.target(t, c.ID, "u1")
	end := day(16, 12)
	f.event(t, c.ID, "u1", models.EventPageView, end.Add(-time.Hour))
	f.event(t, c.ID, "u1", models.EventPageView, end.Add(-time.Duration(MaxTimelineBuckets+10)*time.Hour))

	tl, err := f.aggregator.Timeline(context.Background(), EventFilter{
		Start: ptr(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)),
		End:   ptr(end),
	}, IntervalHour)

	require.NoError(t, err)
	require.Len(t, tl.Buckets, MaxTimelineBuckets)
	first := end.Add(-time.Duration(MaxTimelineBuckets-1) * time.Hour)
	assert.True(t, first.Equal(tl.Buckets[0].Timestamp))
	assert.True(t, first.Equal(tl.Start))
	assert.True(t, end.Equal(tl.Buckets[len(tl.Buckets)-1].Timestamp))
	assert.Equal(t, int64(1), tl.TotalEvents, "events before the clamped start are excluded")
}
