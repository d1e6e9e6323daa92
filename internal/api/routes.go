package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/axellelanca/clickfix/internal/config"
	"github.com/axellelanca/clickfix/internal/content"
	"github.com/axellelanca/clickfix/internal/services"
)

// RouteTable maps the renameable tracking operations to their path prefixes.
// It is built once at startup; handlers never read the configuration again.
type RouteTable struct {
	Track         string
	Verify        string
	TrainingTrack string
}

// NewRouteTable normalises the configured endpoints: a leading slash is enforced
// and trailing slashes are stripped.
func NewRouteTable(cfg config.Endpoints) RouteTable {
	return RouteTable{
		Track:         normalizePath(cfg.Track, "/track/click"),
		Verify:        normalizePath(cfg.Verify, "/verify"),
		TrainingTrack: normalizePath(cfg.TrainingTrack, "/track/training"),
	}
}

func normalizePath(p, fallback string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p == "" {
		return fallback
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Catalog lists the content available to campaigns.
type Catalog interface {
	Scenarios() []content.Entry
	Traps() []content.Entry
}

// Dependencies groups what the handlers need.
type Dependencies struct {
	Recorder   *services.EventRecorder
	Resolver   *services.LureResolver
	Aggregator *services.FunnelAggregator
	Campaigns  *services.CampaignService
	Catalog    Catalog
	Routes     RouteTable
	Admin      gin.Accounts

	// TrainingURL is where a target is sent after executing the payload.
	TrainingURL string
}

// SetupRoutes configures all Gin routes and injects the handler dependencies.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	registerValidators()

	// Health Check Route
	router.GET("/health", HealthCheckHandler)

	// Lure and tracking beacons, public
	router.GET("/s/:slug", LureHandler(deps.Resolver, deps.Routes, deps.TrainingURL))
	router.POST(deps.Routes.Track+"/:user_id", TrackClickHandler(deps.Recorder))
	router.GET(deps.Routes.Verify+"/:user_id", VerifyHandler(deps.Recorder))
	router.POST(deps.Routes.TrainingTrack+"/:user_id", TrainingTrackHandler(deps.Recorder))
	router.GET("/training", TrainingLandingHandler(deps.Recorder))
	router.GET("/training/:user_id", TrainingLandingHandler(deps.Recorder))

	// Admin API, behind basic auth
	admin := router.Group("/admin/api", gin.BasicAuth(deps.Admin))
	{
		admin.GET("/stats", StatsHandler(deps.Aggregator))
		admin.GET("/timeline", TimelineHandler(deps.Aggregator))
		admin.GET("/events", ListEventsHandler(deps.Aggregator))
		admin.GET("/clients", ListClientsHandler(deps.Campaigns))
		admin.GET("/content", ContentHandler(deps.Catalog))

		admin.GET("/campaigns", ListCampaignsHandler(deps.Campaigns))
		admin.POST("/campaigns", CreateCampaignHandler(deps.Campaigns))
		admin.GET("/campaigns/:id", GetCampaignHandler(deps.Campaigns))
		admin.PUT("/campaigns/:id", UpdateCampaignHandler(deps.Campaigns))
		admin.DELETE("/campaigns/:id", DeleteCampaignHandler(deps.Campaigns))
		admin.GET("/campaigns/:id/report", CampaignReportHandler(deps.Campaigns))
	}
}
