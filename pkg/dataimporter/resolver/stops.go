package resolver

import (
	"github.com/travigo/hrdf/pkg/dataimporter/formats/hrdf"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"github.com/travigo/hrdf/pkg/timetable"
)

func (r *resolver) resolveStops() {
	for _, record := range r.set.Stops {
		_, ok := r.builder.AddStop(timetable.Stop{
			ID:           record.ID,
			Name:         record.Name,
			LongName:     record.LongName,
			Abbreviation: record.Abbreviation,
			Synonyms:     record.Synonyms,
			Priority:     timetable.DefaultStopPriority,
		})
		if !ok {
			r.duplicate(record.Source, "stop %d already defined", record.ID)
		}
	}

	r.resolveStopCoordinates(hrdf.LV95)
	r.resolveStopCoordinates(hrdf.WGS84)

	for _, record := range r.set.StopPriorities {
		if stop := r.stop(record.Source, record.Stop); stop != nil {
			stop.Priority = record.Priority
		}
	}

	for _, record := range r.set.StopTransferFlags {
		if stop := r.stop(record.Source, record.Stop); stop != nil {
			stop.TransferFlag = record.Flag
		}
	}

	for _, record := range r.set.StopTransferTimes {
		times := timetable.StopTransferTime{InterCity: record.InterCity, Other: record.Other}
		if record.Stop == hrdf.DefaultTransferStop {
			r.builder.SetDefaultTransferTime(times)
			continue
		}
		if stop := r.stop(record.Source, record.Stop); stop != nil {
			stop.TransferTime = &times
		}
	}

	for _, record := range r.set.StopTypes {
		stop := r.stop(record.Source, record.Stop)
		if stop == nil {
			continue
		}

		switch record.Kind {
		case hrdf.StopTypeRestriction:
			stop.Restriction = record.Number
		case hrdf.StopTypeSloid:
			stop.Sloid = record.Text
		case hrdf.StopTypeBoardingArea:
			stop.BoardingAreas = append(stop.BoardingAreas, record.Text)
		case hrdf.StopTypeCountry:
			stop.Country = record.Text
		case hrdf.StopTypeCanton:
			stop.Canton = record.Number
		}
	}
}

// stop resolves a stop number, reporting unknown ones.
func (r *resolver) stop(source hrdf.Source, id int) *timetable.Stop {
	stop, ok := r.builder.StopByID(id)
	if !ok {
		r.unresolved(source, "unknown stop %d", id)
		return nil
	}

	return stop
}

// resolveStopCoordinates fills one coordinate system. Both systems are
// independent; a second, different position in the same system is a
// conflict and the first one stays.
func (r *resolver) resolveStopCoordinates(system hrdf.CoordinateSystem) {
	for _, record := range r.set.Coordinates(system) {
		stop := r.stop(record.Source, record.Stop)
		if stop == nil {
			continue
		}

		coordinates := convertCoordinates(record.Coordinates)
		slot := &stop.LV95
		if system == hrdf.WGS84 {
			slot = &stop.WGS84
		}

		if *slot != nil {
			if **slot != *coordinates {
				r.report(issues.KindInconsistentVariantMerge, record.Source, "stop %d already has %s coordinates %.6f/%.6f", record.Stop, system, (*slot).X, (*slot).Y)
			}
			continue
		}
		*slot = coordinates
	}
}

func convertCoordinates(c hrdf.Coordinates) *timetable.Coordinates {
	return &timetable.Coordinates{
		System:   timetable.CoordinateSystem(c.System),
		X:        c.X,
		Y:        c.Y,
		Altitude: c.Altitude,
	}
}

func (r *resolver) resolveMetaStops() {
	for _, record := range r.set.MetaLinks {
		meta := r.stop(record.Source, record.Meta)
		target := r.stop(record.Source, record.Stop)
		if meta == nil || target == nil {
			continue
		}

		meta.MetaLinks = append(meta.MetaLinks, timetable.MetaLink{
			Stop:      target.Ref,
			Minutes:   record.Minutes,
			Attribute: record.Attribute,
		})
	}

	for _, record := range r.set.MetaGroups {
		meta := r.stop(record.Source, record.Meta)
		if meta == nil {
			continue
		}

		for _, id := range record.Stops {
			if member := r.stop(record.Source, id); member != nil {
				meta.Members = append(meta.Members, member.Ref)
			}
		}
	}
}
