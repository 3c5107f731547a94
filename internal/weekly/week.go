// Package weekly selects tasks by ISO-8601 week.
package weekly

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"worklog/internal/domain"
	apperrors "worklog/internal/errors"
)

// Week is an ISO-8601 week: weeks start on Monday and week 1 contains the
// year's first Thursday.
type Week struct {
	Year   int
	Number int
}

// WeekOf returns the ISO week containing t, in t's location
func WeekOf(t time.Time) Week {
	year, number := t.ISOWeek()
	return Week{Year: year, Number: number}
}

// Current returns the ISO week containing now
func Current(now time.Time) Week {
	return WeekOf(now)
}

// Parse reads a week number typed by a user. An empty value means the
// current week. Numbers refer to the ISO year of now and must exist in it.
func Parse(raw string, now time.Time) (Week, error) {
	trimmed := strings.TrimSpace(raw)
	current := Current(now)
	if trimmed == "" {
		return current, nil
	}

	number, err := strconv.Atoi(trimmed)
	if err != nil {
		return Week{}, apperrors.NewInvalidInputError("week", raw, "must be a week number between 1 and 53")
	}

	week := Week{Year: current.Year, Number: number}
	if !week.Valid() {
		return Week{}, apperrors.NewInvalidInputError("week", raw, fmt.Sprintf("week %d does not exist in %d", number, current.Year))
	}
	return week, nil
}

// Valid reports whether the week exists in its ISO year
func (w Week) Valid() bool {
	if w.Number < 1 || w.Number > 53 {
		return false
	}
	return WeekOf(w.Start(time.UTC)) == w
}

// Start returns Monday 00:00 of the week in loc
func (w Week) Start(loc *time.Location) time.Time {
	// January 4th always falls in week 1
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, 7*(w.Number-1))
}

// End returns the Monday 00:00 following the week, in loc
func (w Week) End(loc *time.Location) time.Time {
	return w.Start(loc).AddDate(0, 0, 7)
}

// Contains reports whether t falls in the week when seen from loc
func (w Week) Contains(t time.Time, loc *time.Location) bool {
	return WeekOf(t.In(loc)) == w
}

// String formats the week as 2006-W01
func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Number)
}

// Filter returns the tasks owned by one of owners and created within week,
// in their original order. No owners selects nothing.
func Filter(tasks []domain.Task, week Week, loc *time.Location, owners ...int64) []domain.Task {
	allowed := make(map[int64]bool, len(owners))
	for _, id := range owners {
		allowed[id] = true
	}

	result := make([]domain.Task, 0)
	for _, task := range tasks {
		if allowed[task.OwnerID] && week.Contains(task.CreatedAt, loc) {
			result = append(result, task)
		}
	}
	return result
}
