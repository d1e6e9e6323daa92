package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	customerrors "github.com/axellelanca/clickfix/internal/errors"
	"github.com/axellelanca/clickfix/internal/logger"
	"github.com/axellelanca/clickfix/internal/services"
)

// StatsHandler returns the funnel counters for the filtered events.
func StatsHandler(aggregator *services.FunnelAggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := aggregator.Stats(c.Request.Context(), parseFilter(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// TimelineHandler returns the bucketed event histogram (interval = hour, day or week).
func TimelineHandler(aggregator *services.FunnelAggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tl, err := aggregator.Timeline(c.Request.Context(), parseFilter(c), c.DefaultQuery("interval", services.IntervalDay))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tl)
	}
}

// ListEventsHandler returns one page of events, newest first.
func ListEventsHandler(aggregator *services.FunnelAggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := aggregator.ListEvents(c.Request.Context(), parseFilter(c), queryInt(c, "page"), queryInt(c, "per_page"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// ListClientsHandler returns the distinct client names.
func ListClientsHandler(campaigns *services.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		clients, err := campaigns.ListClients(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"clients": clients})
	}
}

// ContentHandler lists the scenarios and traps available to campaigns.
func ContentHandler(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"scenarios": catalog.Scenarios(),
			"traps":     catalog.Traps(),
		})
	}
}

// ListCampaignsHandler lists campaigns, optionally for one client.
func ListCampaignsHandler(campaigns *services.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := campaigns.ListCampaigns(c.Request.Context(), c.Query("client"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"campaigns": list})
	}
}

// CreateCampaignHandler creates a campaign from a JSON body.
func CreateCampaignHandler(campaigns *services.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.CampaignInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		campaign, err := campaigns.CreateCampaign(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, campaign)
	}
}

// GetCampaignHandler returns one campaign.
func GetCampaignHandler(campaigns *services.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := campaignID(c)
		if !ok {
			return
		}
		campaign, err := campaigns.GetCampaign(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, campaign)
	}
}

// UpdateCampaignHandler replaces the editable fields of a campaign.
func UpdateCampaignHandler(campaigns *services.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := campaignID(c)
		if !ok {
			return
		}
		var in services.CampaignInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		campaign, err := campaigns.UpdateCampaign(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, campaign)
	}
}

// DeleteCampaignHandler deletes a campaign with its targets and events.
func DeleteCampaignHandler(campaigns *services.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := campaignID(c)
		if !ok {
			return
		}
		if err := campaigns.DeleteCampaign(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// CampaignReportHandler returns a campaign with its funnel and target count.
func CampaignReportHandler(campaigns *services.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := campaignID(c)
		if !ok {
			return
		}
		report, err := campaigns.CampaignReport(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func campaignID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
		return 0, false
	}
	return uint(id), true
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, customerrors.ErrCampaignNotFound), errors.Is(err, customerrors.ErrScenarioNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, customerrors.ErrSlugConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, customerrors.ErrMissingRequiredField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Admin request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
