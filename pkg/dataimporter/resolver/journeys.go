package resolver

import (
	"github.com/travigo/hrdf/pkg/calendar"
	"github.com/travigo/hrdf/pkg/dataimporter/formats/hrdf"
	"github.com/travigo/hrdf/pkg/timetable"
)

// journeyDraft collects one journey while its references are checked. Any
// unresolved reference rejects the whole journey.
type journeyDraft struct {
	r        *resolver
	record   *hrdf.Journey
	journey  timetable.Journey
	schedule calendar.Schedule
	rejected bool
}

func (r *resolver) resolveJourneys() {
	seen := map[timetable.JourneyKey]hrdf.Source{}

	for i := range r.set.Journeys {
		record := &r.set.Journeys[i]

		key := timetable.JourneyKey{Number: record.Number, Administration: record.Administration}
		if existing, ok := seen[key]; ok {
			r.duplicate(record.Source, "journey %s already defined at %s", key, existing)
			continue
		}
		seen[key] = record.Source

		draft := &journeyDraft{r: r, record: record}
		journey, ok := draft.resolve()
		if !ok {
			r.excluded[key] = true
			continue
		}

		r.builder.AddJourney(journey)
	}
}

func (d *journeyDraft) unresolved(source hrdf.Source, format string, args ...any) {
	d.r.unresolved(source, format, args...)
	d.rejected = true
}

func (d *journeyDraft) resolve() (timetable.Journey, bool) {
	record := d.record
	builder := d.r.builder

	d.journey = timetable.Journey{
		Number:         record.Number,
		Administration: record.Administration,
		Operator:       timetable.NoRef,
		Cycles:         record.Cycles,
		CycleMinutes:   record.CycleMinutes,
	}
	// Without BETRIEB administrations cannot be checked and no operator is
	// linked.
	if operator, ok := builder.OperatorByAdministration(record.Administration); ok {
		d.journey.Operator = operator.Ref
	} else if d.r.administrations {
		d.unresolved(record.Source, "unknown administration %s", record.Administration)
	}

	for _, visit := range record.Visits {
		stop, ok := builder.StopByID(visit.Stop)
		if !ok {
			d.unresolved(visit.Source, "unknown stop %d", visit.Stop)
			continue
		}

		d.journey.Visits = append(d.journey.Visits, timetable.Visit{
			Stop:         stop.Ref,
			Arrival:      visit.Arrival,
			HasArrival:   visit.HasArrival,
			Departure:    visit.Departure,
			HasDeparture: visit.HasDeparture,
			CanAlight:    visit.HasArrival && !visit.NoAlighting,
			CanBoard:     visit.HasDeparture && !visit.NoBoarding,
		})
	}
	if d.rejected {
		return timetable.Journey{}, false
	}

	d.resolveCalendars()
	d.resolveCategories()
	d.resolveLines()
	d.resolveDirections()
	d.resolveAttributes()
	d.resolveInfoTexts()
	d.resolveBoarding()

	if d.rejected {
		return timetable.Journey{}, false
	}

	d.journey.Days = builder.Calendar.Resolve(d.schedule)

	return d.journey, true
}

// visitRange turns a stop range into visit indices. An open end extends to
// the first or last visit.
func (d *journeyDraft) visitRange(source hrdf.Source, stops hrdf.StopRange) (int, int, bool) {
	ids := make([]int, len(d.record.Visits))
	for i, visit := range d.record.Visits {
		ids[i] = visit.Stop
	}

	from, until := 0, len(ids)-1
	if stops.From != 0 {
		from = indexOf(ids, stops.From, 0)
		if from < 0 {
			d.unresolved(source, "stop %d is not on journey %d", stops.From, d.record.Number)
			return 0, 0, false
		}
	}
	if stops.Until != 0 {
		until = indexOf(ids, stops.Until, from)
		if until < 0 {
			d.unresolved(source, "stop %d is not on journey %d after stop %d", stops.Until, d.record.Number, ids[from])
			return 0, 0, false
		}
	}

	return from, until, true
}

func indexOf(ids []int, id, start int) int {
	for i := start; i < len(ids); i++ {
		if ids[i] == id {
			return i
		}
	}

	return -1
}

func (d *journeyDraft) days(source hrdf.Source, id int) (*calendar.Pattern, bool) {
	days, ok := d.r.days(source, id)
	if !ok {
		d.rejected = true
	}

	return days, ok
}

func (d *journeyDraft) addSection(section timetable.Section) {
	d.journey.Sections = append(d.journey.Sections, section)
}

func (d *journeyDraft) resolveCalendars() {
	for _, assignment := range d.record.Calendars {
		if _, _, ok := d.visitRange(assignment.Source, assignment.Range); !ok {
			continue
		}

		days, ok := d.days(assignment.Source, assignment.Bitfield)
		if !ok {
			continue
		}

		// Bitfield 0 is every day, for a base pattern and an exception alike.
		pattern := calendar.Always(d.r.builder.Calendar.Window.Days())
		if days != nil {
			pattern = *days
		}

		d.journey.Bitfields = append(d.journey.Bitfields, assignment.Bitfield)
		if assignment.Exception {
			d.schedule.Exceptions = append(d.schedule.Exceptions, pattern)
		} else {
			d.schedule.Base = append(d.schedule.Base, pattern)
		}
	}
}

func (d *journeyDraft) resolveCategories() {
	// Without ZUGART category codes cannot be checked and stay literal.
	checked := len(d.r.set.Categories) > 0

	for _, assignment := range d.record.Categories {
		from, until, ok := d.visitRange(assignment.Source, assignment.Range)
		if !ok {
			continue
		}

		section := timetable.Section{Kind: timetable.SectionCategory, From: from, Until: until, Ref: timetable.NoRef, Code: assignment.Code}
		if category, ok := d.r.builder.CategoryByCode(assignment.Code); ok {
			section.Ref = int(category.Ref)
		} else if checked {
			d.unresolved(assignment.Source, "unknown category %s", assignment.Code)
			continue
		}

		d.addSection(section)
	}
}

func (d *journeyDraft) resolveLines() {
	for _, assignment := range d.record.Lines {
		from, until, ok := d.visitRange(assignment.Source, assignment.Range)
		if !ok {
			continue
		}

		section := timetable.Section{Kind: timetable.SectionLine, From: from, Until: until, Ref: timetable.NoRef, Code: assignment.Name}
		if assignment.Reference != 0 {
			line, ok := d.r.builder.LineByID(assignment.Reference)
			if !ok {
				d.unresolved(assignment.Source, "unknown line %d", assignment.Reference)
				continue
			}
			section.Ref = int(line.Ref)
			section.Code = line.Name()
		}

		d.addSection(section)
	}
}

func (d *journeyDraft) resolveDirections() {
	for _, assignment := range d.record.Directions {
		from, until, ok := d.visitRange(assignment.Source, assignment.Range)
		if !ok {
			continue
		}

		section := timetable.Section{Kind: timetable.SectionDirection, From: from, Until: until, Ref: timetable.NoRef, Code: assignment.Kind}
		if assignment.Direction != "" {
			direction, ok := d.r.builder.DirectionByID(assignment.Direction)
			if !ok {
				d.unresolved(assignment.Source, "unknown direction %s", assignment.Direction)
				continue
			}
			section.Ref = int(direction.Ref)
		}

		d.addSection(section)
	}
}

func (d *journeyDraft) resolveAttributes() {
	checked := len(d.r.set.Attributes) > 0

	for _, assignment := range d.record.Attributes {
		from, until, ok := d.visitRange(assignment.Source, assignment.Range)
		if !ok {
			continue
		}
		days, ok := d.days(assignment.Source, assignment.Bitfield)
		if !ok {
			continue
		}

		section := timetable.Section{Kind: timetable.SectionAttribute, From: from, Until: until, Ref: timetable.NoRef, Code: assignment.Code, Days: days}
		if attribute, ok := d.r.builder.AttributeByCode(assignment.Code); ok {
			section.Ref = int(attribute.Ref)
		} else if checked {
			d.unresolved(assignment.Source, "unknown attribute %s", assignment.Code)
			continue
		}

		if d.r.holidayAttributes[assignment.Code] {
			d.schedule.HolidaySensitive = true
			d.journey.HolidaySensitive = true
		}

		d.addSection(section)
	}
}

func (d *journeyDraft) resolveInfoTexts() {
	for _, assignment := range d.record.InfoTexts {
		from, until, ok := d.visitRange(assignment.Source, assignment.Range)
		if !ok {
			continue
		}
		days, ok := d.days(assignment.Source, assignment.Bitfield)
		if !ok {
			continue
		}

		text, ok := d.r.builder.InfoTextByID(assignment.InfoText)
		if !ok {
			d.unresolved(assignment.Source, "unknown info text %d", assignment.InfoText)
			continue
		}

		d.addSection(timetable.Section{
			Kind:  timetable.SectionInfoText,
			From:  from,
			Until: until,
			Ref:   int(text.Ref),
			Code:  assignment.Code,
			Days:  days,
		})
	}
}

func (d *journeyDraft) resolveBoarding() {
	for _, assignment := range d.record.Boarding {
		from, until, ok := d.visitRange(assignment.Source, assignment.Range)
		if !ok {
			continue
		}

		kind := timetable.SectionCheckIn
		if assignment.CheckOut {
			kind = timetable.SectionCheckOut
		}

		d.addSection(timetable.Section{Kind: kind, From: from, Until: until, Ref: timetable.NoRef, Minutes: assignment.Minutes})
	}
}
