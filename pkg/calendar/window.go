package calendar

import (
	"fmt"
	"time"

	"github.com/travigo/hrdf/pkg/dataimporter/issues"
)

const dateFormat = "2006-01-02"

// Window is the inclusive validity period every pattern is relative to.
type Window struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func NewWindow(start, end time.Time) (Window, error) {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return Window{}, fmt.Errorf("validity window ends %s before it starts %s", end.Format(dateFormat), start.Format(dateFormat))
	}

	return Window{Start: start, End: end}, nil
}

// Days is the number of dates in the window, both ends included.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func (w Window) Contains(date time.Time) bool {
	date = Day(date)
	return !date.Before(w.Start) && !date.After(w.End)
}

// Index maps a date to its day index. Dates outside the window are a
// DateOutOfRange issue.
func (w Window) Index(date time.Time) (int, error) {
	day := Day(date)
	if !w.Contains(day) {
		return 0, issues.New(issues.KindDateOutOfRange, "", 0, "%s is outside the validity window %s", day.Format(dateFormat), w)
	}

	return int(day.Sub(w.Start).Hours() / 24), nil
}

func (w Window) Date(index int) time.Time {
	return w.Start.AddDate(0, 0, index)
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(dateFormat), w.End.Format(dateFormat))
}

// Dates lists the dates of the set days of p.
func (w Window) Dates(p Pattern) []time.Time {
	var dates []time.Time
	for _, day := range p.Days() {
		if day >= w.Days() {
			break
		}
		dates = append(dates, w.Date(day))
	}

	return dates
}
