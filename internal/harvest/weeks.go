// Package harvest holds the calendar arithmetic behind harvest loads: ISO
// week of year, the season-relative harvest week, ledger backfill and the
// season running total.
package harvest

import (
	"math"
	"time"

	"github.com/stwalsh4118/pomar/internal/models"
)

const day = 24 * time.Hour

// Calendar converts load timestamps into civil days of the farm's timezone.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a Calendar for loc. A nil loc means UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// Location returns the calendar's timezone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Day returns the civil date of m in the farm timezone as midnight UTC.
// Working on UTC midnights keeps day differences exact across DST changes.
func (c Calendar) Day(m models.Millis) time.Time {
	t := m.Time(c.Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekOfYear returns the ISO 8601 year and week (Monday start, week 1 holds
// the year's first Thursday) of a civil day.
func WeekOfYear(d time.Time) (year, week int) {
	return d.ISOWeek()
}

// WeekStart returns the Monday of ISO week (year, week).
func WeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, 1-isoWeekday(jan4))
	return monday.AddDate(0, 0, (week-1)*7)
}

func isoWeekday(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DaysBetween is the whole number of days separating two instants, rounded up.
func DaysBetween(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / float64(day)))
}

// Week returns the harvest week of d for a season anchored at anchor.
// The anchor day is week 1; days before the anchor also count as week 1.
func Week(anchor, d time.Time) int {
	if d.Before(anchor) {
		return 1
	}
	return DaysBetween(anchor, d)/7 + 1
}

const maxWeeksOfYear = 53

// WeekMark is one calendar week of a season and its harvest week.
type WeekMark struct {
	Year        int
	WeekOfYear  int
	HarvestWeek int
}

// Backfill lists the weeks the ledger must contain for a load on d: one per
// 7-day step from the anchor up to d, plus d's own week. Each week's harvest
// number is computed for its Monday. Weeks are unique by week of year, the
// ledger's key within a season, and returned in chronological order. The
// walk stops once all 53 week numbers are taken.
func Backfill(anchor, d time.Time) []WeekMark {
	seen := make(map[int]bool)
	var marks []WeekMark

	add := func(t time.Time) {
		year, week := WeekOfYear(t)
		if seen[week] {
			return
		}
		seen[week] = true
		marks = append(marks, WeekMark{
			Year:        year,
			WeekOfYear:  week,
			HarvestWeek: Week(anchor, WeekStart(year, week)),
		})
	}

	for step := anchor; !step.After(d); step = step.AddDate(0, 0, 7) {
		add(step)
		if len(seen) == maxWeeksOfYear {
			break
		}
	}
	add(d)

	return marks
}

// Placement is where a load falls in the calendar and in its season.
type Placement struct {
	// HarvestWeek is nil when the season has no anchor date.
	HarvestWeek *int
	Backfill    []WeekMark
	WeekOfYear  int
}

// Place computes the calendar week, harvest week and ledger backfill for a
// load dated date in a season anchored at anchor (nil when unset).
func (c Calendar) Place(date models.Millis, anchor *models.Millis) Placement {
	d := c.Day(date)
	_, week := WeekOfYear(d)
	p := Placement{WeekOfYear: week}

	if anchor == nil {
		return p
	}

	a := c.Day(*anchor)
	hw := Week(a, d)
	p.HarvestWeek = &hw
	p.Backfill = Backfill(a, d)
	return p
}
