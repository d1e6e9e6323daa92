package models

import "time"

// Target is one tracked recipient of an exercise.
// UserID is unique system-wide: an identifier belongs to exactly one campaign.
type Target struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CampaignID uint      `gorm:"index;not null" json:"campaign_id"`
	Campaign   Campaign  `gorm:"foreignKey:CampaignID" json:"-"`
	UserID     string    `gorm:"uniqueIndex;size:100;not null" json:"user_id"`
	Email      string    `gorm:"size:120" json:"email,omitempty"`
	Department string    `gorm:"size:100" json:"department,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
