package timetable

import (
	"errors"
	"strings"
	"time"

	"github.com/travigo/hrdf/pkg/calendar"
)

// Wildcard matches any line, direction or category in a line transfer rule.
const Wildcard = "*"

// TransferSource names the rule a transfer time came from, most specific
// first.
type TransferSource string

const (
	TransferJourneyPair      TransferSource = "journey-pair"
	TransferLine             TransferSource = "line"
	TransferOperatorAtStop   TransferSource = "operator-at-stop"
	TransferOperatorAnywhere TransferSource = "operator-anywhere"
	TransferStop             TransferSource = "stop"
	TransferMetaLink         TransferSource = "meta-link"
	TransferDefault          TransferSource = "default"
)

var ErrNotConnected = errors.New("stops are not connected")

type Transfer struct {
	Minutes    int            `groups:"basic"`
	Guaranteed bool           `groups:"basic"`
	Source     TransferSource `groups:"basic"`
}

// JourneyTransfer is a transfer time between two specific journeys at a
// stop, optionally limited to some days.
type JourneyTransfer struct {
	Stop       StopRef
	From       JourneyRef
	To         JourneyRef
	Minutes    int
	Guaranteed bool
	Days       *calendar.Pattern
}

// LineSide describes one side of a line transfer rule.
type LineSide struct {
	Administration string
	Category       string
	Line           string
	Direction      string
}

func (s LineSide) wildcards() int {
	count := 0
	for _, value := range []string{s.Category, s.Line, s.Direction} {
		if value == "" || value == Wildcard {
			count++
		}
	}

	return count
}

func (s LineSide) matches(other LineSide) bool {
	match := func(rule, value string) bool {
		return rule == "" || rule == Wildcard || strings.EqualFold(rule, value)
	}

	return s.Administration == other.Administration &&
		match(s.Category, other.Category) &&
		match(s.Line, other.Line) &&
		match(s.Direction, other.Direction)
}

type LineTransfer struct {
	Stop       StopRef
	From       LineSide
	To         LineSide
	Minutes    int
	Guaranteed bool
}

// OperatorTransfer is a transfer time between two administrations at a
// stop, or anywhere when Stop is NoRef.
type OperatorTransfer struct {
	Stop            StopRef
	Administration1 string
	Administration2 string
	Minutes         int
}

type operatorKey struct {
	stop   StopRef
	first  string
	second string
}

type journeyPairKey struct {
	stop StopRef
	from JourneyRef
	to   JourneyRef
}

// transferRules indexes every rule kind for TransferTime.
type transferRules struct {
	journeys  map[journeyPairKey][]JourneyTransfer
	lines     map[StopRef][]LineTransfer
	operators map[operatorKey]int
	fallback  *StopTransferTime
}

func newTransferRules() transferRules {
	return transferRules{
		journeys:  map[journeyPairKey][]JourneyTransfer{},
		lines:     map[StopRef][]LineTransfer{},
		operators: map[operatorKey]int{},
	}
}

// TransferTime returns the minimum time to change from the arriving journey
// at stop from to the departing journey at stop to, for a service date of
// the arriving journey. Rules are tried from the most specific: journey
// pair, line and category, operators at the stop, operators anywhere, the
// stop's own times and finally the dataset default. Different stops are
// only connected through meta stop links.
func (m *Model) TransferTime(from, to StopRef, arriving, departing JourneyRef, date time.Time) (Transfer, error) {
	arrivingJourney := m.Journey(arriving)
	departingJourney := m.Journey(departing)
	if arrivingJourney == nil || departingJourney == nil || m.Stop(from) == nil || m.Stop(to) == nil {
		return Transfer{}, errors.New("unknown stop or journey")
	}

	day, err := m.Calendar.Window.Index(date)
	if err != nil {
		return Transfer{}, err
	}

	if from != to {
		if minutes, ok := m.metaLinkMinutes(from, to); ok {
			return Transfer{Minutes: minutes, Source: TransferMetaLink}, nil
		}
		return Transfer{}, ErrNotConnected
	}
	stop := from

	for _, rule := range m.transfers.journeys[journeyPairKey{stop: stop, from: arriving, to: departing}] {
		if rule.Days != nil && !rule.Days.Has(day) {
			continue
		}
		return Transfer{Minutes: rule.Minutes, Guaranteed: rule.Guaranteed, Source: TransferJourneyPair}, nil
	}

	arrivingSide := m.lineSide(arrivingJourney, stop)
	departingSide := m.lineSide(departingJourney, stop)

	var best *LineTransfer
	bestWildcards := 0
	for i, rule := range m.transfers.lines[stop] {
		if !rule.From.matches(arrivingSide) || !rule.To.matches(departingSide) {
			continue
		}
		wildcards := rule.From.wildcards() + rule.To.wildcards()
		if best == nil || wildcards < bestWildcards {
			best = &m.transfers.lines[stop][i]
			bestWildcards = wildcards
		}
	}
	if best != nil {
		return Transfer{Minutes: best.Minutes, Guaranteed: best.Guaranteed, Source: TransferLine}, nil
	}

	admins := operatorKey{stop: stop, first: arrivingJourney.Administration, second: departingJourney.Administration}
	if minutes, ok := m.transfers.operators[admins]; ok {
		return Transfer{Minutes: minutes, Source: TransferOperatorAtStop}, nil
	}
	admins.stop = NoRef
	if minutes, ok := m.transfers.operators[admins]; ok {
		return Transfer{Minutes: minutes, Source: TransferOperatorAnywhere}, nil
	}

	interCity := m.interCity(arrivingJourney, stop) && m.interCity(departingJourney, stop)
	if times := m.Stop(stop).TransferTime; times != nil {
		return Transfer{Minutes: times.Minutes(interCity), Source: TransferStop}, nil
	}
	if m.transfers.fallback != nil {
		return Transfer{Minutes: m.transfers.fallback.Minutes(interCity), Source: TransferDefault}, nil
	}

	return Transfer{Source: TransferDefault}, nil
}

func (m *Model) metaLinkMinutes(from, to StopRef) (int, bool) {
	for _, pair := range [][2]StopRef{{from, to}, {to, from}} {
		for _, link := range m.Stop(pair[0]).MetaLinks {
			if link.Stop == pair[1] {
				return link.Minutes, true
			}
		}
	}

	return 0, false
}

// lineSide describes how journey appears at stop for line transfer rules.
func (m *Model) lineSide(journey *Journey, stop StopRef) LineSide {
	side := LineSide{Administration: journey.Administration}

	visit, ok := journey.VisitIndex(stop)
	if !ok {
		return side
	}

	if section, ok := journey.SectionAt(SectionCategory, visit); ok {
		side.Category = section.Code
	}
	if section, ok := journey.SectionAt(SectionLine, visit); ok {
		side.Line = section.Code
		if line := m.Line(LineRef(section.Ref)); line != nil {
			side.Line = line.Name()
		}
	}
	if section, ok := journey.SectionAt(SectionDirection, visit); ok {
		side.Direction = section.Code
	}

	return side
}

func (m *Model) interCity(journey *Journey, stop StopRef) bool {
	visit, ok := journey.VisitIndex(stop)
	if !ok {
		return false
	}

	section, ok := journey.SectionAt(SectionCategory, visit)
	if !ok {
		return false
	}

	category := m.Category(CategoryRef(section.Ref))
	return category != nil && category.InterCity()
}
