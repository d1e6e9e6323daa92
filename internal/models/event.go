package models

import (
	"strings"
	"time"
)

// Event types recorded along the exercise funnel.
const (
	EventPageView             = "PAGE_VIEW"
	EventButtonClick          = "BUTTON_CLICK"
	EventPayloadExecuted      = "PAYLOAD_EXECUTED"
	EventTrainingViewed       = "TRAINING_VIEWED"
	EventTrainingCompleted    = "TRAINING_COMPLETED"
	EventTrainingAcknowledged = "TRAINING_ACKNOWLEDGED"
)

// EventTypes lists the known event vocabulary in funnel order.
var EventTypes = []string{
	EventPageView,
	EventButtonClick,
	EventPayloadExecuted,
	EventTrainingViewed,
	EventTrainingCompleted,
	EventTrainingAcknowledged,
}

// Platforms derived from the caller's User-Agent.
const (
	PlatformWindows = "Windows"
	PlatformMacOS   = "macOS"
	PlatformLinux   = "Linux"
	PlatformUnknown = "Unknown"
)

// Event represents one recorded interaction stored in the database.
// Rows are append-only and only disappear through a campaign delete.
type Event struct {
	// ID is the primary key with auto-increment functionality
	ID uint `gorm:"primaryKey" json:"id"`

	// CampaignID is copied from the target when the event is written
	CampaignID uint     `gorm:"index;not null" json:"campaign_id"`
	Campaign   Campaign `gorm:"foreignKey:CampaignID" json:"-"`

	UserID    string `gorm:"size:100;not null;index" json:"user_id"`
	EventType string `gorm:"size:50;not null;index" json:"event_type"`
	SourceIP  string `gorm:"size:50" json:"source_ip"`

	// Hostname and Username are only reported by execution confirmations
	Hostname *string `gorm:"size:100" json:"hostname"`
	Username *string `gorm:"size:100" json:"username"`

	UserAgent string    `gorm:"size:255" json:"user_agent"`
	Platform  string    `gorm:"size:50" json:"platform"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

// IsKnownEventType reports whether t belongs to the fixed event vocabulary.
func IsKnownEventType(t string) bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DetectPlatform derives the platform from a User-Agent string by substring match.
func DetectPlatform(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Windows"):
		return PlatformWindows
	case strings.Contains(userAgent, "Macintosh"):
		return PlatformMacOS
	case strings.Contains(userAgent, "Linux"):
		return PlatformLinux
	default:
		return PlatformUnknown
	}
}
