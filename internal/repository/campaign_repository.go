package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/axellelanca/clickfix/internal/models"
)

// CampaignRepository est une interface qui définit les méthodes d'accès aux campagnes
type CampaignRepository interface {
	CreateCampaign(ctx context.Context, campaign *models.Campaign) error
	UpdateCampaign(ctx context.Context, campaign *models.Campaign) error
	GetCampaignByID(ctx context.Context, id uint) (*models.Campaign, error)
	GetCampaignBySlug(ctx context.Context, slug string) (*models.Campaign, error)
	FindOrCreateAutoCampaign(ctx context.Context, scenario string) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, clientName string) ([]models.Campaign, error)
	ListCampaignIDsByClient(ctx context.Context, clientName string) ([]uint, error)
	ListClientNames(ctx context.Context) ([]string, error)
	DeleteCampaignCascade(ctx context.Context, id uint) error
}

// GormCampaignRepository est l'implémentation de CampaignRepository utilisant GORM.
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository crée et retourne une nouvelle instance de GormCampaignRepository.
func NewCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// CreateCampaign insère une nouvelle campagne dans la base de données.
func (r *GormCampaignRepository) CreateCampaign(ctx context.Context, campaign *models.Campaign) error {
	if err := r.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// UpdateCampaign persists every editable column, including a slug cleared to NULL.
func (r *GormCampaignRepository) UpdateCampaign(ctx context.Context, campaign *models.Campaign) error {
	err := r.db.WithContext(ctx).Model(campaign).
		Select("name", "client_name", "scenario", "trap_slug", "slug").
		Updates(campaign).Error
	if err != nil {
		return fmt.Errorf("failed to update campaign %d: %w", campaign.ID, err)
	}
	return nil
}

// GetCampaignByID récupère une campagne par son identifiant.
func (r *GormCampaignRepository) GetCampaignByID(ctx context.Context, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.WithContext(ctx).First(&campaign, id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetCampaignBySlug récupère une campagne enregistrée par son slug public.
func (r *GormCampaignRepository) GetCampaignBySlug(ctx context.Context, slug string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&campaign).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// FindOrCreateAutoCampaign returns the slug-less campaign for scenario, creating it on first use.
// Campaigns with an explicit slug never match, so registered campaigns sharing the
// scenario stay separate from the legacy bucket.
func (r *GormCampaignRepository) FindOrCreateAutoCampaign(ctx context.Context, scenario string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).
		Where("scenario = ? AND slug IS NULL", scenario).
		Attrs(models.Campaign{
			Name:       models.AutoCampaignName(scenario),
			ClientName: models.DefaultClientName,
			Scenario:   scenario,
			IsActive:   true,
		}).
		FirstOrCreate(&campaign).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find or create campaign for scenario %s: %w", scenario, err)
	}
	return &campaign, nil
}

// ListCampaigns returns campaigns ordered by name, optionally restricted to one client.
func (r *GormCampaignRepository) ListCampaigns(ctx context.Context, clientName string) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	q := r.db.WithContext(ctx).Order("name")
	if clientName != "" {
		q = q.Where("client_name = ?", clientName)
	}
	if err := q.Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve campaigns: %w", err)
	}
	return campaigns, nil
}

// ListCampaignIDsByClient resolves a client name to the IDs of its campaigns.
func (r *GormCampaignRepository) ListCampaignIDsByClient(ctx context.Context, clientName string) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("client_name = ?", clientName).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve campaigns for client %s: %w", clientName, err)
	}
	return ids, nil
}

// ListClientNames returns the distinct non-empty client names.
func (r *GormCampaignRepository) ListClientNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("client_name IS NOT NULL AND client_name <> ''").
		Distinct().
		Order("client_name").
		Pluck("client_name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve client names: %w", err)
	}
	return names, nil
}

// DeleteCampaignCascade removes a campaign with its events and targets in one transaction.
func (r *GormCampaignRepository) DeleteCampaignCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("campaign_id = ?", id).Delete(&models.Event{}).Error; err != nil {
			return fmt.Errorf("failed to delete events of campaign %d: %w", id, err)
		}
		if err := tx.Where("campaign_id = ?", id).Delete(&models.Target{}).Error; err != nil {
			return fmt.Errorf("failed to delete targets of campaign %d: %w", id, err)
		}
		res := tx.Delete(&models.Campaign{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete campaign %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
