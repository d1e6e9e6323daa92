// Package services contains the business logic of the exercise tracker
package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"gorm.io/gorm"

	customerrors "github.com/axellelanca/clickfix/internal/errors"
	"github.com/axellelanca/clickfix/internal/logger"
	"github.com/axellelanca/clickfix/internal/models"
	"github.com/axellelanca/clickfix/internal/repository"
)

var slugUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeSlug reduces s to a safe path segment: its base name restricted to
// [A-Za-z0-9._-] with any ".." removed.
func SanitizeSlug(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = path.Base(strings.ReplaceAll(s, "\\", "/"))
	s = slugUnsafe.ReplaceAllString(s, "")
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", "")
	}
	if s == "." {
		return ""
	}
	return s
}

// CampaignInput holds the editable fields of a campaign.
type CampaignInput struct {
	Name       string `json:"name"`
	ClientName string `json:"client_name"`
	Scenario   string `json:"scenario"`
	TrapSlug   string `json:"trap_slug"`
	Slug       string `json:"slug"`
}

// CampaignReport is a campaign with its funnel and its number of targets.
type CampaignReport struct {
	Campaign    *models.Campaign `json:"campaign"`
	Stats       FunnelStats      `json:"stats"`
	TargetCount int64            `json:"target_count"`
}

// CampaignService provides the campaign management operations used by the admin API and the CLI.
type CampaignService struct {
	campaignRepo repository.CampaignRepository
	targetRepo   repository.TargetRepository
	aggregator   *FunnelAggregator
}

// NewCampaignService creates and returns a new instance of CampaignService.
func NewCampaignService(campaignRepo repository.CampaignRepository, targetRepo repository.TargetRepository, aggregator *FunnelAggregator) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		targetRepo:   targetRepo,
		aggregator:   aggregator,
	}
}

// CreateCampaign validates in and stores a new campaign.
// A slug already owned by another campaign yields ErrSlugConflict and nothing is written.
func (s *CampaignService) CreateCampaign(ctx context.Context, in CampaignInput) (*models.Campaign, error) {
	campaign := &models.Campaign{IsActive: true}
	if err := s.apply(ctx, campaign, in); err != nil {
		return nil, err
	}

	if err := s.campaignRepo.CreateCampaign(ctx, campaign); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, customerrors.ErrSlugConflict
		}
		return nil, err
	}

	logger.Infof("Campaign %d created (%s, scenario %s)", campaign.ID, campaign.Name, campaign.Scenario)
	return campaign, nil
}

// UpdateCampaign replaces the editable fields of campaign id. An empty slug clears it.
func (s *CampaignService) UpdateCampaign(ctx context.Context, id uint, in CampaignInput) (*models.Campaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, campaign, in); err != nil {
		return nil, err
	}

	if err := s.campaignRepo.UpdateCampaign(ctx, campaign); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, customerrors.ErrSlugConflict
		}
		return nil, err
	}
	return campaign, nil
}

// apply validates in and copies it onto campaign, checking that the slug is free.
func (s *CampaignService) apply(ctx context.Context, campaign *models.Campaign, in CampaignInput) error {
	name := strings.TrimSpace(in.Name)
	scenario := strings.TrimSpace(in.Scenario)
	if name == "" || scenario == "" {
		return customerrors.ErrMissingRequiredField
	}

	slug := SanitizeSlug(in.Slug)
	if slug != "" {
		owner, err := s.campaignRepo.GetCampaignBySlug(ctx, slug)
		switch {
		case err == nil:
			if owner.ID != campaign.ID {
				return customerrors.ErrSlugConflict
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to check slug %s: %w", slug, err)
		}
	}

	client := strings.TrimSpace(in.ClientName)
	if client == "" {
		client = models.DefaultClientName
	}

	campaign.Name = name
	campaign.ClientName = client
	campaign.Scenario = scenario
	campaign.TrapSlug = optional(strings.TrimSpace(in.TrapSlug))
	campaign.Slug = optional(slug)
	return nil
}

// DeleteCampaign removes a campaign together with its targets and events.
func (s *CampaignService) DeleteCampaign(ctx context.Context, id uint) error {
	if err := s.campaignRepo.DeleteCampaignCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customerrors.ErrCampaignNotFound
		}
		return err
	}
	logger.Infof("Campaign %d deleted", id)
	return nil
}

// GetCampaign retrieves a campaign, mapping a missing row to ErrCampaignNotFound.
func (s *CampaignService) GetCampaign(ctx context.Context, id uint) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetCampaignByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign %d: %w", id, err)
	}
	return campaign, nil
}

// ListCampaigns returns every campaign, or only those of clientName when it is set.
func (s *CampaignService) ListCampaigns(ctx context.Context, clientName string) ([]models.Campaign, error) {
	return s.campaignRepo.ListCampaigns(ctx, clientName)
}

// ListClients returns the distinct client names.
func (s *CampaignService) ListClients(ctx context.Context) ([]string, error) {
	return s.campaignRepo.ListClientNames(ctx)
}

// CampaignReport gathers the funnel and the target count of one campaign.
func (s *CampaignService) CampaignReport(ctx context.Context, id uint) (*CampaignReport, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.aggregator.Stats(ctx, EventFilter{CampaignID: campaign.ID})
	if err != nil {
		return nil, err
	}

	targets, err := s.targetRepo.CountTargetsByCampaignID(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}

	return &CampaignReport{Campaign: campaign, Stats: *stats, TargetCount: targets}, nil
}
