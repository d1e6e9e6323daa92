package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the exercise tracker

// ErrCampaignNotFound is returned when a campaign ID doesn't exist in the database
var ErrCampaignNotFound = errors.New("campaign not found")

// ErrScenarioNotFound is returned when neither a registered campaign nor a legacy
// scenario has renderable content for the requested slug
var ErrScenarioNotFound = errors.New("scenario not found")

// ErrSlugConflict is returned when a campaign slug is already owned by another campaign
var ErrSlugConflict = errors.New("slug already exists")

// ErrMissingRequiredField is returned when a campaign is submitted without a name or scenario
var ErrMissingRequiredField = errors.New("missing required fields")

// ErrInvalidUserID is returned when a tracking identifier has an invalid format
var ErrInvalidUserID = errors.New("invalid user ID format")

// ErrNotificationFailed is returned by a notification sink when an alert could not be delivered
type ErrNotificationFailed struct {
	Sink   string
	Reason string
}

func (e ErrNotificationFailed) Error() string {
	return fmt.Sprintf("failed to deliver notification via %s: %s", e.Sink, e.Reason)
}
