package resolver

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/hrdf/pkg/dataimporter/formats/hrdf"
	"github.com/travigo/hrdf/pkg/timetable"
)

func (r *resolver) resolveTransfers() {
	for _, record := range r.set.OperatorTransfers {
		stop := timetable.StopRef(timetable.NoRef)
		if record.Stop != 0 {
			resolved := r.stop(record.Source, record.Stop)
			if resolved == nil {
				continue
			}
			stop = resolved.Ref
		}
		if !r.administration(record.Source, record.Administration1) || !r.administration(record.Source, record.Administration2) {
			continue
		}

		added := r.builder.AddOperatorTransfer(timetable.OperatorTransfer{
			Stop:            stop,
			Administration1: record.Administration1,
			Administration2: record.Administration2,
			Minutes:         record.Minutes,
		})
		if !added {
			r.duplicate(record.Source, "transfer between %s and %s at stop %d already defined", record.Administration1, record.Administration2, record.Stop)
		}
	}

	for _, record := range r.set.LineTransfers {
		stop := r.stop(record.Source, record.Stop)
		if stop == nil {
			continue
		}
		if !r.administration(record.Source, record.Administration1) || !r.administration(record.Source, record.Administration2) {
			continue
		}
		if !r.categoryCode(record.Source, record.Category1) || !r.categoryCode(record.Source, record.Category2) {
			continue
		}

		r.builder.AddLineTransfer(timetable.LineTransfer{
			Stop: stop.Ref,
			From: timetable.LineSide{
				Administration: record.Administration1,
				Category:       record.Category1,
				Line:           record.Line1,
				Direction:      record.Direction1,
			},
			To: timetable.LineSide{
				Administration: record.Administration2,
				Category:       record.Category2,
				Line:           record.Line2,
				Direction:      record.Direction2,
			},
			Minutes:    record.Minutes,
			Guaranteed: record.Guaranteed,
		})
	}

	for _, record := range r.set.JourneyTransfers {
		stop := r.stop(record.Source, record.Stop)
		if stop == nil {
			continue
		}
		from := r.journey(record.Source, record.Journey1, record.Administration1)
		to := r.journey(record.Source, record.Journey2, record.Administration2)
		if from == nil || to == nil {
			continue
		}
		days, ok := r.days(record.Source, record.Bitfield)
		if !ok {
			continue
		}

		r.builder.AddJourneyTransfer(timetable.JourneyTransfer{
			Stop:       stop.Ref,
			From:       from.Ref,
			To:         to.Ref,
			Minutes:    record.Minutes,
			Guaranteed: record.Guaranteed,
			Days:       days,
		})
	}
}

// administration checks that an administration code belongs to a known
// operator.
func (r *resolver) administration(source hrdf.Source, code string) bool {
	if _, ok := r.builder.OperatorByAdministration(code); !ok {
		r.unresolved(source, "unknown administration %s", code)
		return false
	}

	return true
}

// categoryCode checks a category of a line transfer rule. Wildcards and
// datasets without ZUGART pass.
func (r *resolver) categoryCode(source hrdf.Source, code string) bool {
	if code == "" || code == hrdf.Wildcard || len(r.set.Categories) == 0 {
		return true
	}
	if _, ok := r.builder.CategoryByCode(code); !ok {
		r.unresolved(source, "unknown category %s", code)
		return false
	}

	return true
}

// journey looks up a journey by key. A journey FPLAN defines but that was
// excluded for its own issues is not reported again.
func (r *resolver) journey(source hrdf.Source, number int, administration string) *timetable.Journey {
	key := timetable.JourneyKey{Number: number, Administration: administration}
	journey, ok := r.builder.JourneyByKey(key)
	if ok {
		return journey
	}

	if r.excluded[key] {
		log.Debug().Str("source", source.String()).Str("journey", key.String()).Msg("Dropped record of excluded journey")
	} else {
		r.unresolved(source, "unknown journey %s", key)
	}

	return nil
}

// resolveThroughServices links journeys passengers can stay on. Both
// journeys and both stops must resolve.
func (r *resolver) resolveThroughServices() {
	for _, record := range r.set.ThroughServices {
		from := r.journey(record.Source, record.Journey1, record.Administration1)
		to := r.journey(record.Source, record.Journey2, record.Administration2)
		fromStop := r.stop(record.Source, record.Stop1)
		toStop := r.stop(record.Source, record.Stop2)
		if from == nil || to == nil || fromStop == nil || toStop == nil {
			continue
		}
		days, ok := r.days(record.Source, record.Bitfield)
		if !ok {
			continue
		}

		from.Through = append(from.Through, timetable.ThroughLink{
			Journey:  to.Ref,
			FromStop: fromStop.Ref,
			ToStop:   toStop.Ref,
			Days:     days,
		})
	}
}
