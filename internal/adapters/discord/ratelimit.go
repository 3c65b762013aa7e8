package discord

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/queuebot/internal/ports/secondary"
)

const (
	headerRemaining  = "X-RateLimit-Remaining"
	headerResetAfter = "X-RateLimit-Reset-After"
	headerBucket     = "X-RateLimit-Bucket"
	headerRetryAfter = "Retry-After"
)

// RateLimitFromHeaders builds a rate-limit descriptor from response headers.
// It returns nil unless remaining, reset-after and bucket are all present
// and well formed.
func RateLimitFromHeaders(h http.Header) *secondary.RateLimitInfo {
	bucket := strings.TrimSpace(h.Get(headerBucket))
	if bucket == "" {
		return nil
	}
	remaining, err := strconv.ParseUint(strings.TrimSpace(h.Get(headerRemaining)), 10, 64)
	if err != nil {
		return nil
	}
	resetAfter, ok := parseSeconds(h.Get(headerResetAfter))
	if !ok {
		return nil
	}
	return &secondary.RateLimitInfo{
		Remaining:  remaining,
		ResetAfter: resetAfter,
		Bucket:     bucket,
	}
}

// parseSeconds converts a fractional-seconds header value to a duration,
// rounding up to the next millisecond.
func parseSeconds(v string) (time.Duration, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return secondsToDuration(f), true
}

func secondsToDuration(secs float64) time.Duration {
	if secs <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(secs*1000)) * time.Millisecond
}
