package timetable

import (
	"fmt"
	"time"

	"github.com/travigo/hrdf/pkg/calendar"
)

// JourneyKey is the dataset identity of a journey.
type JourneyKey struct {
	Number         int
	Administration string
}

func (k JourneyKey) String() string {
	return fmt.Sprintf("%d/%s", k.Number, k.Administration)
}

// Visit is one stop of a journey. Times are minutes after the start of the
// service day and may exceed 24 hours.
type Visit struct {
	Stop         StopRef `groups:"basic"`
	Arrival      int     `groups:"basic"`
	HasArrival   bool    `groups:"basic"`
	Departure    int     `groups:"basic"`
	HasDeparture bool    `groups:"basic"`
	CanAlight    bool    `groups:"detailed"`
	CanBoard     bool    `groups:"detailed"`
}

type SectionKind string

const (
	SectionCategory  SectionKind = "category"
	SectionLine      SectionKind = "line"
	SectionDirection SectionKind = "direction"
	SectionAttribute SectionKind = "attribute"
	SectionInfoText  SectionKind = "infotext"
	SectionCheckIn   SectionKind = "check-in"
	SectionCheckOut  SectionKind = "check-out"
)

// Section attaches metadata to the visits From..Until (inclusive) of a
// journey. Ref points into the registry matching Kind (categories, lines,
// directions, attributes or info texts) and is NoRef when the dataset
// gives only a literal Code.
type Section struct {
	Kind    SectionKind `groups:"basic"`
	From    int         `groups:"basic"`
	Until   int         `groups:"basic"`
	Ref     int         `groups:"basic"`
	Code    string      `groups:"basic" json:",omitempty"`
	Minutes int         `groups:"detailed"`

	// Days restricts the section to some running days; nil means always.
	Days *calendar.Pattern
}

func (s Section) Covers(visit int) bool {
	return visit >= s.From && visit <= s.Until
}

// PlatformAssignment places a journey at a platform of one of its stops.
type PlatformAssignment struct {
	Stop     StopRef     `groups:"basic"`
	Platform PlatformRef `groups:"basic"`
	Time     int         `groups:"detailed"`
	HasTime  bool        `groups:"detailed"`

	Days *calendar.Pattern
}

// ThroughLink lets passengers stay on board from one journey to another.
type ThroughLink struct {
	Journey  JourneyRef `groups:"basic"`
	FromStop StopRef    `groups:"basic"`
	ToStop   StopRef    `groups:"basic"`

	Days *calendar.Pattern
}

type Journey struct {
	Ref            JourneyRef  `groups:"basic"`
	Number         int         `groups:"basic"`
	Administration string      `groups:"basic"`
	Operator       OperatorRef `groups:"basic"`

	Cycles       int `groups:"detailed"`
	CycleMinutes int `groups:"detailed"`

	Visits    []Visit              `groups:"basic"`
	Sections  []Section            `groups:"detailed"`
	Platforms []PlatformAssignment `groups:"detailed" json:",omitempty"`
	Through   []ThroughLink        `groups:"detailed" json:",omitempty"`

	// Bitfields lists the BITFELD ids the running days were built from.
	Bitfields        []int `groups:"detailed"`
	HolidaySensitive bool  `groups:"detailed"`

	// Days are the resolved running days relative to the validity window.
	Days calendar.Pattern
}

func (j *Journey) Key() JourneyKey {
	return JourneyKey{Number: j.Number, Administration: j.Administration}
}

// VisitIndex returns the position of the first visit of stop.
func (j *Journey) VisitIndex(stop StopRef) (int, bool) {
	for i, visit := range j.Visits {
		if visit.Stop == stop {
			return i, true
		}
	}

	return 0, false
}

// SectionAt returns the first section of kind covering the visit at index.
func (j *Journey) SectionAt(kind SectionKind, visit int) (Section, bool) {
	for _, section := range j.Sections {
		if section.Kind == kind && section.Covers(visit) {
			return section, true
		}
	}

	return Section{}, false
}

// SectionsAt returns every section of kind covering the visit at index,
// which is how attributes and info texts stack.
func (j *Journey) SectionsAt(kind SectionKind, visit int) []Section {
	var sections []Section
	for _, section := range j.Sections {
		if section.Kind == kind && section.Covers(visit) {
			sections = append(sections, section)
		}
	}

	return sections
}

// First and Last are the origin and destination visits.
func (j *Journey) First() Visit {
	return j.Visits[0]
}

func (j *Journey) Last() Visit {
	return j.Visits[len(j.Visits)-1]
}

// ServiceTime turns minutes after the start of the service day into a time
// on date in location.
func ServiceTime(date time.Time, minutes int, location *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, minutes, 0, 0, location)
}
