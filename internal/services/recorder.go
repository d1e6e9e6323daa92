package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/axellelanca/clickfix/internal/logger"
	"github.com/axellelanca/clickfix/internal/models"
	"github.com/axellelanca/clickfix/internal/notify"
	"github.com/axellelanca/clickfix/internal/repository"
)

// Caller carries what the HTTP boundary observed about the requester.
type Caller struct {
	RemoteAddr string
	UserAgent  string
}

// RecordInput describes one interaction to append to the event log.
// EventType must already be validated against an allowlist and Hostname/Username
// already sanitised by the caller.
type RecordInput struct {
	UserID    string
	EventType string
	Hostname  string
	Username  string
	Caller    Caller
}

// EventRecorder appends events for known targets and raises alerts for critical ones.
type EventRecorder struct {
	targetRepo    repository.TargetRepository
	eventRepo     repository.EventRepository
	notifier      notify.Notifier
	notifyTimeout time.Duration
	now           func() time.Time
}

// NewEventRecorder creates an EventRecorder. A nil notifier disables alerts.
func NewEventRecorder(targetRepo repository.TargetRepository, eventRepo repository.EventRepository, notifier notify.Notifier, notifyTimeout time.Duration) *EventRecorder {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 5 * time.Second
	}
	return &EventRecorder{
		targetRepo:    targetRepo,
		eventRepo:     eventRepo,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		now:           time.Now,
	}
}

// Record appends one event for in.UserID.
// An unknown user is not an error: nothing is written, a warning is logged and
// recorded is false.
func (r *EventRecorder) Record(ctx context.Context, in RecordInput) (recorded bool, err error) {
	if !models.IsKnownEventType(in.EventType) {
		return false, fmt.Errorf("unknown event type %q", in.EventType)
	}

	target, err := r.targetRepo.GetTargetByUserID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.With(logrus.Fields{"user_id": in.UserID, "event_type": in.EventType}).
				Warn("Unknown user_id triggered event, dropping it")
			return false, nil
		}
		return false, fmt.Errorf("failed to look up target %s: %w", in.UserID, err)
	}

	event := &models.Event{
		CampaignID: target.CampaignID,
		UserID:     in.UserID,
		EventType:  in.EventType,
		SourceIP:   in.Caller.RemoteAddr,
		Hostname:   optional(in.Hostname),
		Username:   optional(in.Username),
		UserAgent:  truncate(in.Caller.UserAgent, 255),
		Platform:   models.DetectPlatform(in.Caller.UserAgent),
		Timestamp:  r.now().UTC(),
	}
	if err := r.eventRepo.CreateEvent(ctx, event); err != nil {
		return false, err
	}

	if in.EventType == models.EventButtonClick || in.EventType == models.EventPayloadExecuted {
		r.alert(ctx, event)
	}
	return true, nil
}

// alert delivers a notification synchronously under a timeout; failures are only logged.
func (r *EventRecorder) alert(ctx context.Context, event *models.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.notifyTimeout)
	defer cancel()

	a := notify.Alert{
		EventType: event.EventType,
		UserID:    event.UserID,
		SourceIP:  event.SourceIP,
		Time:      event.Timestamp,
	}
	if event.Hostname != nil {
		a.Hostname = *event.Hostname
	}
	if event.Username != nil {
		a.Username = *event.Username
	}

	if err := r.notifier.Notify(ctx, a); err != nil {
		logger.WithError(err).WithField("user_id", event.UserID).Error("Failed to send notification")
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
