package models

import "time"

// DefaultClientName is stored when a campaign is created without a client grouping label.
const DefaultClientName = "Default"

// Campaign représente un exercice suivi dans la base de données.
type Campaign struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	ClientName string    `gorm:"size:100;default:Default" json:"client_name"`
	Scenario   string    `gorm:"size:50;not null;index" json:"scenario"`
	TrapSlug   *string   `gorm:"size:50" json:"trap_slug"`
	Slug       *string   `gorm:"uniqueIndex;size:100" json:"slug"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
}

// AutoCampaignName is the name given to a campaign created implicitly for a bare scenario.
func AutoCampaignName(scenario string) string {
	return "Auto: " + scenario
}
