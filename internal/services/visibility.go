package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/routinely/routinely/internal/models"
)

var dayAbbrev = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ParseVisibleDays turns the stored comma-separated weekday list into a
// set. Out-of-range or non-numeric entries are dropped.
func ParseVisibleDays(s string) map[int]bool {
	out := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		out[n] = true
	}
	return out
}

// FormatVisibleDays is the inverse of ParseVisibleDays, normalized to
// ascending order.
func FormatVisibleDays(days map[int]bool) string {
	keys := make([]int, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	sort.Ints(keys)
	parts := make([]string, len(keys))
	for i, d := range keys {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// RoutineVisibleOn decides whether a routine's visibility rule admits the
// given instant. Conditional routines always report visible here; their
// real gating lives in the condition system, not this rule check.
func RoutineVisibleOn(routine models.Routine, now time.Time) bool {
	switch routine.Visibility {
	case models.VisibilityAlways:
		return true

	case models.VisibilityDaysOfWeek:
		days := ParseVisibleDays(routine.VisibleDays)
		return days[int(now.Weekday())]

	case models.VisibilityDateRange:
		return dateRangeContains(routine, now)

	case models.VisibilityConditional:
		return true

	default:
		return false
	}
}

// dateRangeContains compares month+day only; the year is ignored so a
// Nov–Feb range wraps across New Year.
func dateRangeContains(routine models.Routine, now time.Time) bool {
	sm, sd := routine.StartMonth, routine.StartDay
	em, ed := routine.EndMonth, routine.EndDay
	if sm == 0 || sd == 0 || em == 0 || ed == 0 {
		return false
	}

	m, d := int(now.Month()), now.Day()

	if sm <= em {
		// Non-wrapping range, e.g. Mar 1 – Jun 15.
		if m < sm || m > em {
			return false
		}
		if m == sm && d < sd {
			return false
		}
		if m == em && d > ed {
			return false
		}
		return true
	}

	// Wrapping range, e.g. Nov 1 – Feb 28.
	afterStart := m > sm || (m == sm && d >= sd)
	beforeEnd := m < em || (m == em && d <= ed)
	return afterStart || beforeEnd
}

// DescribeVisibility renders a routine's rule as a short human label.
func DescribeVisibility(routine models.Routine) string {
	switch routine.Visibility {
	case models.VisibilityAlways:
		return "Always visible"

	case models.VisibilityDaysOfWeek:
		return describeDays(ParseVisibleDays(routine.VisibleDays))

	case models.VisibilityDateRange:
		if routine.StartMonth == 0 || routine.StartDay == 0 ||
			routine.EndMonth == 0 || routine.EndDay == 0 {
			return "Never visible"
		}
		return fmt.Sprintf("%d/%d - %d/%d",
			routine.StartMonth, routine.StartDay, routine.EndMonth, routine.EndDay)

	case models.VisibilityConditional:
		return "Condition-based"

	default:
		return "Never visible"
	}
}

func describeDays(days map[int]bool) string {
	switch {
	case len(days) == 0:
		return "Never visible"
	case len(days) == 7:
		return "Every day"
	case len(days) == 5 && days[1] && days[2] && days[3] && days[4] && days[5]:
		return "Weekdays only"
	case len(days) == 2 && days[0] && days[6]:
		return "Weekends only"
	}

	names := make([]string, 0, len(days))
	for d := 0; d <= 6; d++ {
		if days[d] {
			names = append(names, dayAbbrev[d])
		}
	}
	return strings.Join(names, ", ")
}
