package api

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/axellelanca/clickfix/internal/logger"
)

var (
	trackIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	controlChars   = regexp.MustCompile(`[\x00-\x1f\x7f-\x{9f}]`)

	registerOnce sync.Once
)

// maxReportedLen caps externally reported hostnames and usernames, in runes.
const maxReportedLen = 100

// registerValidators adds the "trackid" rule to gin's validator engine.
func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			err := v.RegisterValidation("trackid", func(fl validator.FieldLevel) bool {
				return validTrackID(fl.Field().String())
			})
			if err != nil {
				logger.Fatalf("failed to register validation tag trackid: %v", err)
			}
		}
	})
}

func validTrackID(id string) bool {
	return trackIDPattern.MatchString(id)
}

// sanitizeReported strips control characters from an externally reported value
// and caps its length.
func sanitizeReported(s string) string {
	s = controlChars.ReplaceAllString(s, "")
	r := []rune(s)
	if len(r) > maxReportedLen {
		return string(r[:maxReportedLen])
	}
	return s
}
