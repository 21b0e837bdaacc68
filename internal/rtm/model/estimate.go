package model

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"time"
)

var errEstimateRange = errors.New("estimate out of range")

var (
	reEstimateDays    = regexp.MustCompile(`(?i)([\d.]+)\s*d`)
	reEstimateHours   = regexp.MustCompile(`(?i)([\d.]+)\s*h`)
	reEstimateMinutes = regexp.MustCompile(`(?i)([\d.]+)\s*m`)
)

// ParseEstimate decodes a free-text time estimate such as "2d 3h 15m" or
// "1.5 hours". Days, hours and minutes are matched independently and default
// to zero. It returns nil when none of them is present.
func ParseEstimate(s string) (*time.Duration, error) {
	if s == "" {
		return nil, nil
	}
	var (
		total float64
		found bool
	)
	units := []struct {
		re   *regexp.Regexp
		unit time.Duration
	}{
		{reEstimateDays, 24 * time.Hour},
		{reEstimateHours, time.Hour},
		{reEstimateMinutes, time.Minute},
	}
	for _, u := range units {
		m := u.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, malformed("task", "estimate", err)
		}
		total += n * float64(u.unit)
		found = true
	}
	if !found {
		return nil, nil
	}
	total = math.Round(total)
	if math.IsInf(total, 0) || math.IsNaN(total) || total >= math.MaxInt64 || total <= math.MinInt64 {
		return nil, malformed("task", "estimate", errEstimateRange)
	}
	d := time.Duration(total)
	return &d, nil
}
