package timetable

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/travigo/hrdf/pkg/calendar"
	"golang.org/x/exp/slices"

	_ "time/tzdata"
)

// ServiceLocation is the time zone journey times are expressed in.
const ServiceLocation = "Europe/Zurich"

const minutesPerDay = 24 * 60

var ErrUnknownJourney = errors.New("unknown journey")

func LoadServiceLocation() (*time.Location, error) {
	return time.LoadLocation(ServiceLocation)
}

type platformKey struct {
	stop  StopRef
	index int
}

// departure is one boarding opportunity of a journey at a stop, relative to
// the service day.
type departure struct {
	journey JourneyRef
	visit   int
	minutes int
}

// Model is the resolved timetable. It is never changed after Build and is
// safe for concurrent readers; pointers returned by lookups must not be
// written to.
type Model struct {
	LoadID   uuid.UUID
	Version  string
	Metadata Metadata
	Calendar calendar.Calendar
	Location *time.Location

	stops           arena[int, Stop]
	operators       arena[int, Operator]
	administrations map[string]OperatorRef
	lines           arena[int, Line]
	directions      arena[string, Direction]
	categories      arena[string, Category]
	attributes      arena[string, Attribute]
	infoTexts       arena[int, InfoText]
	platforms       arena[platformKey, Platform]
	journeys        arena[JourneyKey, Journey]
	holidays        []Holiday

	transfers transferRules

	departures     map[StopRef][]departure
	lookbehindDays int
}

func (m *Model) Stop(ref StopRef) *Stop {
	return m.stops.at(int(ref))
}

// StopByID finds a stop by its dataset number.
func (m *Model) StopByID(id int) (*Stop, bool) {
	ref, ok := m.stops.lookup(id)
	if !ok {
		return nil, false
	}

	return m.stops.at(ref), true
}

func (m *Model) Stops() []Stop {
	return m.stops.items
}

func (m *Model) Operator(ref OperatorRef) *Operator {
	return m.operators.at(int(ref))
}

func (m *Model) OperatorByID(id int) (*Operator, bool) {
	ref, ok := m.operators.lookup(id)
	if !ok {
		return nil, false
	}

	return m.operators.at(ref), true
}

// OperatorByAdministration finds the operator running journeys under the
// administration code.
func (m *Model) OperatorByAdministration(administration string) (*Operator, bool) {
	ref, ok := m.administrations[administration]
	if !ok {
		return nil, false
	}

	return m.Operator(ref), true
}

func (m *Model) Operators() []Operator {
	return m.operators.items
}

func (m *Model) Line(ref LineRef) *Line {
	return m.lines.at(int(ref))
}

func (m *Model) LineByID(id int) (*Line, bool) {
	ref, ok := m.lines.lookup(id)
	if !ok {
		return nil, false
	}

	return m.lines.at(ref), true
}

func (m *Model) Lines() []Line {
	return m.lines.items
}

func (m *Model) Direction(ref DirectionRef) *Direction {
	return m.directions.at(int(ref))
}

func (m *Model) DirectionByID(id string) (*Direction, bool) {
	ref, ok := m.directions.lookup(id)
	if !ok {
		return nil, false
	}

	return m.directions.at(ref), true
}

func (m *Model) Category(ref CategoryRef) *Category {
	return m.categories.at(int(ref))
}

func (m *Model) CategoryByCode(code string) (*Category, bool) {
	ref, ok := m.categories.lookup(code)
	if !ok {
		return nil, false
	}

	return m.categories.at(ref), true
}

func (m *Model) Categories() []Category {
	return m.categories.items
}

func (m *Model) Attribute(ref AttributeRef) *Attribute {
	return m.attributes.at(int(ref))
}

func (m *Model) AttributeByCode(code string) (*Attribute, bool) {
	ref, ok := m.attributes.lookup(code)
	if !ok {
		return nil, false
	}

	return m.attributes.at(ref), true
}

func (m *Model) InfoText(ref InfoTextRef) *InfoText {
	return m.infoTexts.at(int(ref))
}

func (m *Model) InfoTextByID(id int) (*InfoText, bool) {
	ref, ok := m.infoTexts.lookup(id)
	if !ok {
		return nil, false
	}

	return m.infoTexts.at(ref), true
}

func (m *Model) Platform(ref PlatformRef) *Platform {
	return m.platforms.at(int(ref))
}

// PlatformAt finds the platform a stop lists under index.
func (m *Model) PlatformAt(stop StopRef, index int) (*Platform, bool) {
	ref, ok := m.platforms.lookup(platformKey{stop: stop, index: index})
	if !ok {
		return nil, false
	}

	return m.platforms.at(ref), true
}

func (m *Model) Journey(ref JourneyRef) *Journey {
	return m.journeys.at(int(ref))
}

func (m *Model) JourneyByKey(key JourneyKey) (*Journey, bool) {
	ref, ok := m.journeys.lookup(key)
	if !ok {
		return nil, false
	}

	return m.journeys.at(ref), true
}

func (m *Model) Journeys() []Journey {
	return m.journeys.items
}

func (m *Model) Holidays() []Holiday {
	return m.holidays
}

// RunsOn reports whether the journey runs on the service date. Dates
// outside the validity window are a DateOutOfRange issue.
func (m *Model) RunsOn(ref JourneyRef, date time.Time) (bool, error) {
	journey := m.Journey(ref)
	if journey == nil {
		return false, fmt.Errorf("%w: %d", ErrUnknownJourney, ref)
	}

	return m.Calendar.RunsOn(journey.Days, date)
}

// Summary counts the entities of a model.
type Summary struct {
	Stops      int `groups:"basic"`
	Operators  int `groups:"basic"`
	Lines      int `groups:"basic"`
	Directions int `groups:"basic"`
	Categories int `groups:"basic"`
	Attributes int `groups:"basic"`
	InfoTexts  int `groups:"basic"`
	Platforms  int `groups:"basic"`
	Journeys   int `groups:"basic"`
	Holidays   int `groups:"basic"`
}

func (m *Model) Summary() Summary {
	return Summary{
		Stops:      m.stops.len(),
		Operators:  m.operators.len(),
		Lines:      m.lines.len(),
		Directions: m.directions.len(),
		Categories: m.categories.len(),
		Attributes: m.attributes.len(),
		InfoTexts:  m.infoTexts.len(),
		Platforms:  m.platforms.len(),
		Journeys:   m.journeys.len(),
		Holidays:   len(m.holidays),
	}
}

// Departure is a journey leaving a stop at a point in time.
type Departure struct {
	Journey     JourneyRef  `groups:"basic"`
	Visit       int         `groups:"basic"`
	Time        time.Time   `groups:"basic"`
	ServiceDate time.Time   `groups:"basic"`
	Platform    PlatformRef `groups:"detailed"`
}

// Departures lists the departures from stop in [from, until), ordered by
// time. Journeys of earlier service days whose times run past midnight are
// included, as are the repetitions of cyclic journeys.
func (m *Model) Departures(stop StopRef, from, until time.Time) ([]Departure, error) {
	if m.Stop(stop) == nil {
		return nil, fmt.Errorf("unknown stop %d", stop)
	}
	if !until.After(from) {
		return nil, nil
	}

	entries := m.departures[stop]
	if len(entries) == 0 {
		return nil, nil
	}

	first := calendar.Day(from.In(m.Location)).AddDate(0, 0, -m.lookbehindDays)
	last := calendar.Day(until.In(m.Location))

	var departures []Departure
	for date := first; !date.After(last); date = date.AddDate(0, 0, 1) {
		day, err := m.Calendar.Window.Index(date)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			at := ServiceTime(date, entry.minutes, m.Location)
			if at.Before(from) {
				continue
			}
			if !at.Before(until) {
				break
			}

			journey := m.Journey(entry.journey)
			if !journey.Days.Has(day) {
				continue
			}

			departures = append(departures, Departure{
				Journey:     entry.journey,
				Visit:       entry.visit,
				Time:        at,
				ServiceDate: date,
				Platform:    journey.platformOn(stop, day),
			})
		}
	}

	slices.SortStableFunc(departures, func(a, b Departure) int {
		return a.Time.Compare(b.Time)
	})

	return departures, nil
}

func (j *Journey) platformOn(stop StopRef, day int) PlatformRef {
	for _, assignment := range j.Platforms {
		if assignment.Stop != stop {
			continue
		}
		if assignment.Days != nil && !assignment.Days.Has(day) {
			continue
		}
		return assignment.Platform
	}

	return NoRef
}

// indexDepartures builds the per-stop departure lists, expanding cycles.
func (m *Model) indexDepartures() {
	m.departures = map[StopRef][]departure{}

	latest := 0
	for ref, journey := range m.journeys.items {
		for index, visit := range journey.Visits {
			if !visit.HasDeparture || !visit.CanBoard {
				continue
			}

			for cycle := 0; cycle <= journey.Cycles; cycle++ {
				minutes := visit.Departure + cycle*journey.CycleMinutes
				if cycle > 0 && journey.CycleMinutes <= 0 {
					break
				}

				m.departures[visit.Stop] = append(m.departures[visit.Stop], departure{
					journey: JourneyRef(ref),
					visit:   index,
					minutes: minutes,
				})
				latest = max(latest, minutes)
			}
		}
	}

	for stop := range m.departures {
		slices.SortStableFunc(m.departures[stop], func(a, b departure) int {
			return a.minutes - b.minutes
		})
	}

	m.lookbehindDays = latest / minutesPerDay
}
