package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/axellelanca/clickfix/internal/content"
	customerrors "github.com/axellelanca/clickfix/internal/errors"
	"github.com/axellelanca/clickfix/internal/logger"
	"github.com/axellelanca/clickfix/internal/models"
	"github.com/axellelanca/clickfix/internal/repository"
)

// LureRequest is an inbound lure visit.
type LureRequest struct {
	Slug   string
	UserID string
	Trap   string // already checked against the trap allowlist, may be empty
	Caller Caller
}

// Resolution is the campaign/target pair a lure visit was attributed to.
type Resolution struct {
	Campaign *models.Campaign
	Target   *models.Target
	Scenario string
	Trap     string
	Content  content.Ref
}

// LureResolver maps a lure slug and a user identifier onto a campaign and target,
// creating them on first sight.
type LureResolver struct {
	campaignRepo repository.CampaignRepository
	targetRepo   repository.TargetRepository
	content      content.Resolver
	recorder     *EventRecorder
}

// NewLureResolver creates a LureResolver.
func NewLureResolver(campaignRepo repository.CampaignRepository, targetRepo repository.TargetRepository, contentResolver content.Resolver, recorder *EventRecorder) *LureResolver {
	return &LureResolver{
		campaignRepo: campaignRepo,
		targetRepo:   targetRepo,
		content:      contentResolver,
		recorder:     recorder,
	}
}

// Resolve attributes a visit and records its PAGE_VIEW.
// A registered slug wins over treating the slug as a bare scenario name. Content is
// checked before any write, so unknown scenarios never leave auto-campaigns behind.
func (s *LureResolver) Resolve(ctx context.Context, req LureRequest) (*Resolution, error) {
	registered, err := s.campaignRepo.GetCampaignBySlug(ctx, req.Slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up campaign slug %s: %w", req.Slug, err)
	}

	scenario := req.Slug
	trap := req.Trap
	if registered != nil {
		scenario = registered.Scenario
		if registered.TrapSlug != nil && *registered.TrapSlug != "" {
			trap = *registered.TrapSlug
		}
	}

	ref, ok := s.content.Resolve(scenario)
	if !ok {
		return nil, customerrors.ErrScenarioNotFound
	}

	target, campaign, err := s.resolveTarget(ctx, req.UserID, scenario, registered)
	if err != nil {
		return nil, err
	}

	if _, err := s.recorder.Record(ctx, RecordInput{
		UserID:    req.UserID,
		EventType: models.EventPageView,
		Caller:    req.Caller,
	}); err != nil {
		logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to record page view")
	}

	return &Resolution{
		Campaign: campaign,
		Target:   target,
		Scenario: scenario,
		Trap:     trap,
		Content:  ref,
	}, nil
}

// resolveTarget returns the target for userID and the campaign that owns it.
func (s *LureResolver) resolveTarget(ctx context.Context, userID, scenario string, registered *models.Campaign) (*models.Target, *models.Campaign, error) {
	target, err := s.targetRepo.GetTargetByUserID(ctx, userID)
	switch {
	case err == nil:
		if registered != nil && registered.ID == target.CampaignID {
			return target, registered, nil
		}
		owner, err := s.campaignRepo.GetCampaignByID(ctx, target.CampaignID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load campaign %d of target %s: %w", target.CampaignID, userID, err)
		}
		return target, owner, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil, fmt.Errorf("failed to look up target %s: %w", userID, err)
	}

	campaign := registered
	if campaign == nil {
		campaign, err = s.campaignRepo.FindOrCreateAutoCampaign(ctx, scenario)
		if err != nil {
			return nil, nil, err
		}
	}

	target = &models.Target{CampaignID: campaign.ID, UserID: userID}
	if err := s.targetRepo.CreateTarget(ctx, target); err != nil {
		// A concurrent first visit may have inserted the same user_id; its row wins.
		existing, lookupErr := s.targetRepo.GetTargetByUserID(ctx, userID)
		if lookupErr != nil {
			return nil, nil, err
		}
		if existing.CampaignID == campaign.ID {
			return existing, campaign, nil
		}
		owner, lookupErr := s.campaignRepo.GetCampaignByID(ctx, existing.CampaignID)
		if lookupErr != nil {
			return nil, nil, err
		}
		return existing, owner, nil
	}
	return target, campaign, nil
}
