package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/axellelanca/clickfix/internal/services"
)

// dateLayouts are tried in order when parsing a date filter. Values without a
// zone are taken as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDate returns nil for an empty or malformed value.
func parseDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// parseFilter reads start_date, end_date, event_type (comma separated),
// campaign_id and client from the query string. Malformed values are ignored.
func parseFilter(c *gin.Context) services.EventFilter {
	f := services.EventFilter{
		Start:  parseDate(c.Query("start_date")),
		End:    parseDate(c.Query("end_date")),
		Client: strings.TrimSpace(c.Query("client")),
	}

	for _, t := range strings.Split(c.Query("event_type"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			f.EventTypes = append(f.EventTypes, t)
		}
	}

	if id, err := strconv.ParseUint(c.Query("campaign_id"), 10, 64); err == nil {
		f.CampaignID = uint(id)
	}
	return f
}

// queryInt reads a positive integer query parameter, returning 0 when absent or malformed.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
