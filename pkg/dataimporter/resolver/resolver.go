package resolver

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/hrdf/pkg/calendar"
	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/formats/hrdf"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"github.com/travigo/hrdf/pkg/timetable"
)

var ErrNoMetadata = errors.New("dataset has no ECKDATEN record")

type Options struct {
	Version     datasets.Version
	VariantMode datasets.VariantMode

	HolidayPolicy calendar.HolidayPolicy
	// HolidayAttributes are the attribute codes that make a journey follow
	// the holiday policy.
	HolidayAttributes []string

	// Location defaults to the service location.
	Location *time.Location
}

type bitfield struct {
	source  hrdf.Source
	pattern calendar.Pattern
}

type resolver struct {
	set     *hrdf.RecordSet
	options Options

	builder   *timetable.Builder
	issues    issues.List
	bitfields map[int]bitfield

	// excluded holds journeys FPLAN defines that were left out of the model.
	// Records naming them are dropped without a second issue.
	excluded map[timetable.JourneyKey]bool
	// administrations is set once BETRIEB assigns any administration code.
	administrations bool

	holidayAttributes map[string]bool
}

// Resolve turns the decoded records of one load into a model. Dataset
// defects are collected in the returned list and the records they concern
// are left out; the error is only set when no model can be built at all.
// The outcome does not depend on the order files were decoded in.
func Resolve(set *hrdf.RecordSet, options Options) (*timetable.Model, issues.List, error) {
	if options.Location == nil {
		location, err := timetable.LoadServiceLocation()
		if err != nil {
			return nil, nil, err
		}
		options.Location = location
	}
	if options.VariantMode == "" {
		options.VariantMode = datasets.VariantModeLegacyOnly
	}

	r := &resolver{
		set:               set,
		options:           options,
		bitfields:         map[int]bitfield{},
		excluded:          map[timetable.JourneyKey]bool{},
		holidayAttributes: map[string]bool{},
	}
	for _, code := range options.HolidayAttributes {
		r.holidayAttributes[code] = true
	}

	if err := r.resolveCalendar(); err != nil {
		return nil, nil, err
	}

	steps := []struct {
		name string
		run  func()
	}{
		{"bitfields", r.resolveBitfields},
		{"holidays", r.resolveHolidays},
		{"stops", r.resolveStops},
		{"operators", r.resolveOperators},
		{"registries", r.resolveRegistries},
		{"meta stops", r.resolveMetaStops},
		{"journeys", r.resolveJourneys},
		{"platforms", r.resolvePlatforms},
		{"transfers", r.resolveTransfers},
		{"through services", r.resolveThroughServices},
	}
	for _, step := range steps {
		before := len(r.issues)
		step.run()
		log.Debug().Str("step", step.name).Int("issues", len(r.issues)-before).Msg("Resolved")
	}

	return r.builder.Build(), r.issues.Sorted(), nil
}

func (r *resolver) report(kind issues.Kind, source hrdf.Source, format string, args ...any) {
	r.issues.Addf(kind, string(source.File), source.Line, format, args...)
}

func (r *resolver) unresolved(source hrdf.Source, format string, args ...any) {
	r.report(issues.KindUnresolvedReference, source, format, args...)
}

func (r *resolver) duplicate(source hrdf.Source, format string, args ...any) {
	r.report(issues.KindDuplicateKey, source, format, args...)
}

// resolveCalendar sets up the validity window, the holiday calendar and the
// builder. Without a window nothing else can be resolved.
func (r *resolver) resolveCalendar() error {
	if len(r.set.Metadata) == 0 {
		return ErrNoMetadata
	}

	record := r.set.Metadata[0]
	for _, extra := range r.set.Metadata[1:] {
		r.duplicate(extra.Source, "validity window already defined at %s", record.Source)
	}

	window, err := calendar.NewWindow(record.Start, record.End)
	if err != nil {
		return fmt.Errorf("%s: %w", record.Source, err)
	}

	var holidays []time.Time
	for _, holiday := range r.set.Holidays {
		holidays = append(holidays, holiday.Date)
	}

	r.builder = timetable.NewBuilder(calendar.New(window, holidays, r.options.HolidayPolicy), r.options.Location)
	r.builder.Version = r.options.Version.String()
	r.builder.Metadata = timetable.Metadata{
		Name:     record.Name,
		Created:  record.Created,
		Version:  record.Version,
		Provider: record.Provider,
		Start:    window.Start,
		End:      window.End,
	}

	return nil
}

func (r *resolver) resolveBitfields() {
	days := r.builder.Calendar.Window.Days()

	for _, record := range r.set.Bitfields {
		if existing, ok := r.bitfields[record.ID]; ok {
			r.duplicate(record.Source, "bitfield %d already defined at %s", record.ID, existing.source)
			continue
		}

		pattern, err := record.Pattern.Fit(days)
		if err != nil {
			r.report(issues.KindMalformedRecord, record.Source, "bitfield %d: %s", record.ID, err)
			continue
		}

		r.bitfields[record.ID] = bitfield{source: record.Source, pattern: pattern}
	}
}

// days looks up a bitfield reference. Zero means every day and yields nil.
func (r *resolver) days(source hrdf.Source, id int) (*calendar.Pattern, bool) {
	if id == 0 {
		return nil, true
	}

	entry, ok := r.bitfields[id]
	if !ok {
		r.unresolved(source, "unknown bitfield %d", id)
		return nil, false
	}

	return &entry.pattern, true
}

func (r *resolver) resolveHolidays() {
	seen := map[time.Time]hrdf.Source{}

	for _, record := range r.set.Holidays {
		date := calendar.Day(record.Date)
		if existing, ok := seen[date]; ok {
			r.duplicate(record.Source, "holiday %s already defined at %s", date.Format(time.DateOnly), existing)
			continue
		}
		seen[date] = record.Source

		r.builder.AddHoliday(timetable.Holiday{Date: date, Names: timetable.Names(record.Names)})
	}
}
