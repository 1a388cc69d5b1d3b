package calendar

import (
	"fmt"
	"time"
)

// HolidayPolicy decides how holidays change the running days of a journey
// that opted into holiday-sensitive scheduling.
type HolidayPolicy string

const (
	// HolidayPolicyIgnore keeps holidays informational.
	HolidayPolicyIgnore HolidayPolicy = "ignore"
	// HolidayPolicySkip removes holidays from the running days.
	HolidayPolicySkip HolidayPolicy = "skip"
	// HolidayPolicyOnly keeps only the holidays among the running days.
	HolidayPolicyOnly HolidayPolicy = "only"
)

func ParseHolidayPolicy(value string) (HolidayPolicy, error) {
	switch HolidayPolicy(value) {
	case "", HolidayPolicyIgnore:
		return HolidayPolicyIgnore, nil
	case HolidayPolicySkip, HolidayPolicyOnly:
		return HolidayPolicy(value), nil
	}

	return "", fmt.Errorf("unknown holiday policy %q", value)
}

// Calendar answers running-day questions for one validity window.
type Calendar struct {
	Window   Window
	Holidays Pattern
	Policy   HolidayPolicy
}

func New(window Window, holidays []time.Time, policy HolidayPolicy) Calendar {
	days := NewPattern(window.Days())
	for _, holiday := range holidays {
		if index, err := window.Index(holiday); err == nil {
			days.set(index)
		}
	}

	return Calendar{Window: window, Holidays: days, Policy: policy}
}

// Schedule is the running-day definition of one journey before resolution.
type Schedule struct {
	// Base patterns are joined; no base pattern means every day.
	Base []Pattern
	// Exceptions are removed from the joined base.
	Exceptions []Pattern
	// HolidaySensitive journeys are subject to the calendar's policy.
	HolidaySensitive bool
}

// Resolve turns a schedule into the set of running days within the window.
func (c Calendar) Resolve(schedule Schedule) Pattern {
	size := c.Window.Days()

	var days Pattern
	if len(schedule.Base) == 0 {
		days = Always(size)
	} else {
		days = NewPattern(size)
		for _, base := range schedule.Base {
			days = days.Union(base)
		}
	}

	for _, exception := range schedule.Exceptions {
		days = days.Subtract(exception)
	}

	if schedule.HolidaySensitive {
		switch c.Policy {
		case HolidayPolicySkip:
			days = days.Subtract(c.Holidays)
		case HolidayPolicyOnly:
			days = days.Intersect(c.Holidays)
		}
	}

	fitted, _ := days.Fit(size)
	return fitted
}

// RunsOn reports whether days include date. Dates outside the window are a
// DateOutOfRange issue.
func (c Calendar) RunsOn(days Pattern, date time.Time) (bool, error) {
	index, err := c.Window.Index(date)
	if err != nil {
		return false, err
	}

	return days.Has(index), nil
}

func (c Calendar) IsHoliday(date time.Time) bool {
	index, err := c.Window.Index(date)
	if err != nil {
		return false
	}

	return c.Holidays.Has(index)
}
