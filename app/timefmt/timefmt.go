// Package timefmt renders post timestamps as coarse human strings.
package timefmt

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Expired is returned by TimeRemaining once the expiry has passed.
const Expired = "Expired"

const day = 24 * time.Hour

var relativeMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "just now", DivBy: 1},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * day, Format: "1 day %s", DivBy: 1},
	{D: math.MaxInt64, Format: "%d days %s", DivBy: day},
}

// RelativeTime describes how long ago t was, measured from now.
// Timestamps in the future are treated as "just now".
func RelativeTime(t, now time.Time) string {
	if t.After(now) {
		t = now
	}
	return humanize.CustomRelTime(t, now, "ago", "from now", relativeMagnitudes)
}

// TimeRemaining renders the time left until expiry, largest unit first.
func TimeRemaining(expiry, now time.Time) string {
	left := expiry.Sub(now)
	if left <= 0 {
		return Expired
	}

	hours := int(left / time.Hour)
	minutes := int((left % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
