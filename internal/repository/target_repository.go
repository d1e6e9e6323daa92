package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/axellelanca/clickfix/internal/models"
)

// TargetRepository définit l'accès aux destinataires suivis
type TargetRepository interface {
	CreateTarget(ctx context.Context, target *models.Target) error
	GetTargetByUserID(ctx context.Context, userID string) (*models.Target, error)
	CountTargetsByCampaignID(ctx context.Context, campaignID uint) (int64, error)
}

// GormTargetRepository est l'implémentation de TargetRepository utilisant GORM.
type GormTargetRepository struct {
	db *gorm.DB
}

// NewTargetRepository crée et retourne une nouvelle instance de GormTargetRepository.
func NewTargetRepository(db *gorm.DB) *GormTargetRepository {
	return &GormTargetRepository{db: db}
}

// CreateTarget insère un nouveau destinataire. The user_id unique index rejects duplicates.
func (r *GormTargetRepository) CreateTarget(ctx context.Context, target *models.Target) error {
	if err := r.db.WithContext(ctx).Omit("Campaign").Create(target).Error; err != nil {
		return fmt.Errorf("failed to create target %s: %w", target.UserID, err)
	}
	return nil
}

// GetTargetByUserID récupère un destinataire par son identifiant externe.
func (r *GormTargetRepository) GetTargetByUserID(ctx context.Context, userID string) (*models.Target, error) {
	var target models.Target
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&target).Error; err != nil {
		return nil, err
	}
	return &target, nil
}

// CountTargetsByCampaignID compte les destinataires rattachés à une campagne.
func (r *GormTargetRepository) CountTargetsByCampaignID(ctx context.Context, campaignID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Target{}).Where("campaign_id = ?", campaignID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count targets for campaign ID %d: %w", campaignID, err)
	}
	return count, nil
}
