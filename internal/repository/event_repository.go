package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/axellelanca/clickfix/internal/models"
)

// EventQuery is a resolved event filter. Nil bounds are open.
// When ScopeCampaigns is set only CampaignIDs match, so an empty list matches nothing.
type EventQuery struct {
	Start          *time.Time
	End            *time.Time
	EventTypes     []string
	CampaignIDs    []uint
	ScopeCampaigns bool
}

// EventPoint is the projection needed to bucket an event on a timeline.
type EventPoint struct {
	Timestamp time.Time
	EventType string
}

// EventRepository est une interface qui définit les méthodes d'accès au journal d'événements
type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	CountEvents(ctx context.Context, q EventQuery, eventTypes ...string) (int64, error)
	ListEventPoints(ctx context.Context, q EventQuery) ([]EventPoint, error)
	ListEvents(ctx context.Context, q EventQuery, offset, limit int) ([]models.Event, int64, error)
}

// GormEventRepository est l'implémentation de l'interface EventRepository utilisant GORM.
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository crée et retourne une nouvelle instance de GormEventRepository.
func NewEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// CreateEvent insère un nouvel événement dans la base de données.
func (r *GormEventRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Omit("Campaign").Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// CountEvents counts events matching q, further restricted to eventTypes when given.
func (r *GormEventRepository) CountEvents(ctx context.Context, q EventQuery, eventTypes ...string) (int64, error) {
	var count int64
	tx := r.scoped(ctx, q)
	if len(eventTypes) > 0 {
		tx = tx.Where("event_type IN ?", eventTypes)
	}
	if err := tx.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// ListEventPoints returns the timestamp and type of every matching event.
func (r *GormEventRepository) ListEventPoints(ctx context.Context, q EventQuery) ([]EventPoint, error) {
	var points []EventPoint
	if err := r.scoped(ctx, q).Select("timestamp", "event_type").Scan(&points).Error; err != nil {
		return nil, fmt.Errorf("failed to list event points: %w", err)
	}
	return points, nil
}

// ListEvents returns one page of matching events, newest first, with the total match count.
func (r *GormEventRepository) ListEvents(ctx context.Context, q EventQuery, offset, limit int) ([]models.Event, int64, error) {
	var total int64
	if err := r.scoped(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	var events []models.Event
	err := r.scoped(ctx, q).
		Preload("Campaign").
		Order("timestamp DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return events, total, nil
}

func (r *GormEventRepository) scoped(ctx context.Context, q EventQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Event{})
	if q.Start != nil {
		tx = tx.Where("timestamp >= ?", q.Start.UTC())
	}
	if q.End != nil {
		tx = tx.Where("timestamp <= ?", q.End.UTC())
	}
	if len(q.EventTypes) > 0 {
		tx = tx.Where("event_type IN ?", q.EventTypes)
	}
	if q.ScopeCampaigns {
		if len(q.CampaignIDs) == 0 {
			return tx.Where("1 = 0")
		}
		tx = tx.Where("campaign_id IN ?", q.CampaignIDs)
	}
	return tx
}
