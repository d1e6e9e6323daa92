package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/axellelanca/clickfix/internal/content"
	customerrors "github.com/axellelanca/clickfix/internal/errors"
	"github.com/axellelanca/clickfix/internal/logger"
	"github.com/axellelanca/clickfix/internal/models"
	"github.com/axellelanca/clickfix/internal/services"
)

// allowedTrainingSections are the event types a training page may report.
var allowedTrainingSections = map[string]bool{
	models.EventTrainingViewed:       true,
	models.EventTrainingCompleted:    true,
	models.EventTrainingAcknowledged: true,
}

// HealthCheckHandler handles the /health route to verify service status
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// lureQuery is the query string of a lure visit.
type lureQuery struct {
	UID  string `form:"uid" binding:"omitempty,max=100,trackid"`
	Trap string `form:"t"`
}

// LureResponse is what a renderer needs to display a lure for one target.
type LureResponse struct {
	CampaignID uint         `json:"campaign_id"`
	Campaign   string       `json:"campaign"`
	UserID     string       `json:"user_id"`
	Scenario   string       `json:"scenario"`
	Trap       string       `json:"trap,omitempty"`
	Template   string       `json:"template"`
	Kind       content.Kind `json:"kind"`
	TrackPath  string       `json:"track_path"`
	VerifyPath string       `json:"verify_path"`
	Training   string       `json:"training_url"`
}

// LureHandler resolves a lure visit to a campaign and target and records the page view.
// A visit without uid is redirected to the same URL with a fresh identifier.
func LureHandler(resolver *services.LureResolver, routes RouteTable, trainingURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if slug == "" || services.SanitizeSlug(slug) != slug {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		var q lureQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": customerrors.ErrInvalidUserID.Error()})
			return
		}

		if q.UID == "" {
			u := *c.Request.URL
			values := u.Query()
			values.Set("uid", uuid.New().String()[:8])
			u.RawQuery = values.Encode()
			c.Redirect(http.StatusFound, u.RequestURI())
			return
		}

		trap := q.Trap
		if !content.IsAllowedTrap(trap) {
			trap = ""
		}

		res, err := resolver.Resolve(c.Request.Context(), services.LureRequest{
			Slug:   slug,
			UserID: q.UID,
			Trap:   trap,
			Caller: callerOf(c),
		})
		if err != nil {
			if errors.Is(err, customerrors.ErrScenarioNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
				return
			}
			logger.WithError(err).WithField("slug", slug).Error("Error resolving lure")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, LureResponse{
			CampaignID: res.Campaign.ID,
			Campaign:   res.Campaign.Name,
			UserID:     res.Target.UserID,
			Scenario:   res.Scenario,
			Trap:       res.Trap,
			Template:   res.Content.Template,
			Kind:       res.Content.Kind,
			TrackPath:  routes.Track + "/" + res.Target.UserID,
			VerifyPath: routes.Verify + "/" + res.Target.UserID,
			Training:   trainingLink(trainingURL, res.Target.UserID),
		})
	}
}

// trainingLink appends the user id to the training URL, defaulting to the built-in landing page.
func trainingLink(base, userID string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = "/training"
	}
	return base + "/" + userID
}

// TrackClickHandler records a BUTTON_CLICK. The response is always "OK".
func TrackClickHandler(recorder *services.EventRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		record(c, recorder, services.RecordInput{
			UserID:    c.Param("user_id"),
			EventType: models.EventButtonClick,
		})
		c.String(http.StatusOK, "OK")
	}
}

// VerifyHandler records a PAYLOAD_EXECUTED with the reported hostname and username.
func VerifyHandler(recorder *services.EventRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		record(c, recorder, services.RecordInput{
			UserID:    c.Param("user_id"),
			EventType: models.EventPayloadExecuted,
			Hostname:  sanitizeReported(c.Query("h")),
			Username:  sanitizeReported(c.Query("u")),
		})
		c.String(http.StatusOK, "OK")
	}
}

// TrainingTrackHandler records training progress. Unknown sections count as TRAINING_VIEWED.
func TrainingTrackHandler(recorder *services.EventRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		section := c.DefaultQuery("section", models.EventTrainingViewed)
		if !allowedTrainingSections[section] {
			section = models.EventTrainingViewed
		}
		record(c, recorder, services.RecordInput{
			UserID:    c.Param("user_id"),
			EventType: section,
		})
		c.String(http.StatusOK, "OK")
	}
}

// TrainingLandingHandler records TRAINING_VIEWED when the landing page is opened for a user.
func TrainingLandingHandler(recorder *services.EventRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if userID != "" {
			record(c, recorder, services.RecordInput{
				UserID:    userID,
				EventType: models.EventTrainingViewed,
			})
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	}
}

// record feeds a beacon to the recorder. Beacons never fail towards the caller.
func record(c *gin.Context, recorder *services.EventRecorder, in services.RecordInput) {
	if !validTrackID(in.UserID) {
		logger.With(logrus.Fields{"event_type": in.EventType}).
			Warnf("Ignoring beacon: %v", customerrors.ErrInvalidUserID)
		return
	}
	in.Caller = callerOf(c)
	if _, err := recorder.Record(c.Request.Context(), in); err != nil {
		logger.WithError(err).WithField("user_id", in.UserID).Error("Error recording event")
	}
}

func callerOf(c *gin.Context) services.Caller {
	return services.Caller{
		RemoteAddr: c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
}
