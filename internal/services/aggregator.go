package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/axellelanca/clickfix/internal/models"
	"github.com/axellelanca/clickfix/internal/repository"
)

// Timeline intervals.
const (
	IntervalHour = "hour"
	IntervalDay  = "day"
	IntervalWeek = "week"
)

// Paging bounds for the flat event listing.
const (
	DefaultPerPage = 50
	MaxPerPage     = 200
)

// defaultTimelineRange is used for a timeline bound that is missing.
const defaultTimelineRange = 30 * 24 * time.Hour

// MaxTimelineBuckets bounds a timeline; older steps are cut from the start of the range.
const MaxTimelineBuckets = 5000

// EventFilter selects events for aggregation. Zero fields do not filter.
// CampaignID takes precedence over Client.
type EventFilter struct {
	Start      *time.Time
	End        *time.Time
	EventTypes []string
	CampaignID uint
	Client     string
}

// FunnelStats holds the funnel rollup counters.
type FunnelStats struct {
	TotalViews             int64 `json:"total_views"`
	TotalClicks            int64 `json:"total_clicks"`
	TotalExecutions        int64 `json:"total_executions"`
	TotalTrainingCompleted int64 `json:"total_training_completed"`
}

// Bucket is one step of a timeline.
type Bucket struct {
	Timestamp            time.Time `json:"timestamp"`
	Total                int64     `json:"total"`
	PageView             int64     `json:"PAGE_VIEW"`
	ButtonClick          int64     `json:"BUTTON_CLICK"`
	PayloadExecuted      int64     `json:"PAYLOAD_EXECUTED"`
	TrainingViewed       int64     `json:"TRAINING_VIEWED"`
	TrainingCompleted    int64     `json:"TRAINING_COMPLETED"`
	TrainingAcknowledged int64     `json:"TRAINING_ACKNOWLEDGED"`
}

func (b *Bucket) add(eventType string) {
	b.Total++
	switch eventType {
	case models.EventPageView:
		b.PageView++
	case models.EventButtonClick:
		b.ButtonClick++
	case models.EventPayloadExecuted:
		b.PayloadExecuted++
	case models.EventTrainingViewed:
		b.TrainingViewed++
	case models.EventTrainingCompleted:
		b.TrainingCompleted++
	case models.EventTrainingAcknowledged:
		b.TrainingAcknowledged++
	}
}

// Timeline is a gap-free histogram of events over [Start, End].
type Timeline struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Interval    string    `json:"interval"`
	Buckets     []Bucket  `json:"buckets"`
	TotalEvents int64     `json:"total_events"`
}

// unknownCampaign labels events whose campaign row is gone.
const unknownCampaign = "Unknown"

// EventRow is an event as listed by the admin API, with its campaign labels.
type EventRow struct {
	models.Event
	CampaignName string `json:"campaign_name"`
	ClientName   string `json:"client_name"`
}

// EventPage is one page of the newest-first event listing.
type EventPage struct {
	Events  []EventRow `json:"events"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Pages   int            `json:"pages"`
}

// FunnelAggregator computes read-only rollups over the event log on demand.
type FunnelAggregator struct {
	campaignRepo repository.CampaignRepository
	eventRepo    repository.EventRepository
	now          func() time.Time
}

// NewFunnelAggregator creates a FunnelAggregator.
func NewFunnelAggregator(campaignRepo repository.CampaignRepository, eventRepo repository.EventRepository) *FunnelAggregator {
	return &FunnelAggregator{
		campaignRepo: campaignRepo,
		eventRepo:    eventRepo,
		now:          time.Now,
	}
}

// Stats counts the funnel steps among the events matching f.
// Completed and acknowledged training are reported as one counter.
func (a *FunnelAggregator) Stats(ctx context.Context, f EventFilter) (*FunnelStats, error) {
	q, err := a.resolveQuery(ctx, f)
	if err != nil {
		return nil, err
	}

	var stats FunnelStats
	counters := []struct {
		dst   *int64
		types []string
	}{
		{&stats.TotalViews, []string{models.EventPageView}},
		{&stats.TotalClicks, []string{models.EventButtonClick}},
		{&stats.TotalExecutions, []string{models.EventPayloadExecuted}},
		{&stats.TotalTrainingCompleted, []string{models.EventTrainingCompleted, models.EventTrainingAcknowledged}},
	}
	for _, c := range counters {
		n, err := a.eventRepo.CountEvents(ctx, q, c.types...)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return &stats, nil
}

// Timeline buckets the events matching f by interval.
// A missing End defaults to now and a missing Start to 30 days before End.
// Every step between the aligned bounds gets a bucket, even when empty.
func (a *FunnelAggregator) Timeline(ctx context.Context, f EventFilter, interval string) (*Timeline, error) {
	interval = NormalizeInterval(interval)

	end := a.now().UTC()
	if f.End != nil {
		end = f.End.UTC()
	}
	start := end.Add(-defaultTimelineRange)
	if f.Start != nil {
		start = f.Start.UTC()
	}
	start = clampStart(start, end, interval)
	f.Start, f.End = &start, &end

	q, err := a.resolveQuery(ctx, f)
	if err != nil {
		return nil, err
	}
	points, err := a.eventRepo.ListEventPoints(ctx, q)
	if err != nil {
		return nil, err
	}

	buckets := make(map[time.Time]*Bucket)
	for _, p := range points {
		key := alignBucket(p.Timestamp, interval)
		b, ok := buckets[key]
		if !ok {
			b = &Bucket{Timestamp: key}
			buckets[key] = b
		}
		b.add(p.EventType)
	}

	last := alignBucket(end, interval)
	for t := alignBucket(start, interval); !t.After(last); t = nextBucket(t, interval) {
		if _, ok := buckets[t]; !ok {
			buckets[t] = &Bucket{Timestamp: t}
		}
	}

	tl := &Timeline{
		Start:    start,
		End:      end,
		Interval: interval,
		Buckets:  make([]Bucket, 0, len(buckets)),
	}
	for _, b := range buckets {
		tl.Buckets = append(tl.Buckets, *b)
		tl.TotalEvents += b.Total
	}
	sort.Slice(tl.Buckets, func(i, j int) bool {
		return tl.Buckets[i].Timestamp.Before(tl.Buckets[j].Timestamp)
	})
	return tl, nil
}

// ListEvents returns page of the events matching f, newest first.
// perPage defaults to DefaultPerPage and is capped at MaxPerPage; page starts at 1.
func (a *FunnelAggregator) ListEvents(ctx context.Context, f EventFilter, page, perPage int) (*EventPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	q, err := a.resolveQuery(ctx, f)
	if err != nil {
		return nil, err
	}
	events, total, err := a.eventRepo.ListEvents(ctx, q, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}

	rows := make([]EventRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, newEventRow(ev))
	}

	return &EventPage{
		Events:  rows,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   int(math.Ceil(float64(total) / float64(perPage))),
	}, nil
}

// newEventRow labels ev with its preloaded campaign.
func newEventRow(ev models.Event) EventRow {
	row := EventRow{Event: ev, CampaignName: unknownCampaign, ClientName: unknownCampaign}
	if ev.Campaign.ID != 0 {
		row.CampaignName = ev.Campaign.Name
		row.ClientName = ev.Campaign.ClientName
	}
	return row
}

// resolveQuery turns a filter into a repository query, expanding a client name
// into the IDs of its campaigns.
func (a *FunnelAggregator) resolveQuery(ctx context.Context, f EventFilter) (repository.EventQuery, error) {
	q := repository.EventQuery{
		Start:      f.Start,
		End:        f.End,
		EventTypes: f.EventTypes,
	}
	switch {
	case f.CampaignID != 0:
		q.ScopeCampaigns = true
		q.CampaignIDs = []uint{f.CampaignID}
	case f.Client != "":
		ids, err := a.campaignRepo.ListCampaignIDsByClient(ctx, f.Client)
		if err != nil {
			return q, err
		}
		q.ScopeCampaigns = true
		q.CampaignIDs = ids
	}
	return q, nil
}

// NormalizeInterval maps unknown intervals to IntervalDay.
func NormalizeInterval(interval string) string {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case IntervalHour:
		return IntervalHour
	case IntervalWeek:
		return IntervalWeek
	default:
		return IntervalDay
	}
}

// alignBucket floors t to the start of its bucket. Weeks start on Monday.
func alignBucket(t time.Time, interval string) time.Time {
	t = t.UTC()
	switch interval {
	case IntervalHour:
		return t.Truncate(time.Hour)
	case IntervalWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// stride is the width of one bucket. Buckets are UTC, so days are always 24h.
func stride(interval string) time.Duration {
	switch interval {
	case IntervalHour:
		return time.Hour
	case IntervalWeek:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func nextBucket(t time.Time, interval string) time.Time {
	return t.Add(stride(interval))
}

// clampStart moves start forward so that [start, end] spans at most MaxTimelineBuckets buckets.
func clampStart(start, end time.Time, interval string) time.Time {
	last := alignBucket(end, interval)
	earliest := last.Add(-time.Duration(MaxTimelineBuckets-1) * stride(interval))
	if alignBucket(start, interval).Before(earliest) {
		return earliest
	}
	return start
}
