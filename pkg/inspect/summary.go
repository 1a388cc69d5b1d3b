package inspect

import (
	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
	"github.com/travigo/hrdf/pkg/timetable"
)

// JourneySummary is a flat view of a journey. Filter expressions see its
// fields under their expr names, e.g. `category == "IC" && stops > 3`.
type JourneySummary struct {
	Number           int      `groups:"basic" expr:"number"`
	Administration   string   `groups:"basic" expr:"administration"`
	Operator         string   `groups:"basic" expr:"operator"`
	Category         string   `groups:"basic" expr:"category"`
	ProductClass     int      `groups:"detailed" expr:"product_class"`
	Line             string   `groups:"basic" expr:"line"`
	Direction        string   `groups:"basic" expr:"direction"`
	Origin           string   `groups:"basic" expr:"origin"`
	Destination      string   `groups:"basic" expr:"destination"`
	Departure        string   `groups:"basic" expr:"departure"`
	Arrival          string   `groups:"basic" expr:"arrival"`
	Stops            int      `groups:"detailed" expr:"stops"`
	RunningDays      int      `groups:"detailed" expr:"running_days"`
	Attributes       []string `groups:"detailed" expr:"attributes"`
	HolidaySensitive bool     `groups:"detailed" expr:"holiday_sensitive"`
}

// Summarize describes journey by the registry entries it references at its
// first visit.
func Summarize(model *timetable.Model, journey *timetable.Journey) JourneySummary {
	summary := JourneySummary{
		Number:           journey.Number,
		Administration:   journey.Administration,
		ProductClass:     -1,
		Stops:            len(journey.Visits),
		RunningDays:      journey.Days.Count(),
		HolidaySensitive: journey.HolidaySensitive,
	}

	if operator := model.Operator(journey.Operator); operator != nil {
		summary.Operator = operator.ShortName.Get(datasets.LanguageGerman)
	}

	if section, ok := journey.SectionAt(timetable.SectionCategory, 0); ok {
		summary.Category = section.Code
		if category := model.Category(timetable.CategoryRef(section.Ref)); category != nil {
			summary.ProductClass = category.ProductClass
		}
	}
	if section, ok := journey.SectionAt(timetable.SectionLine, 0); ok {
		summary.Line = section.Code
		if line := model.Line(timetable.LineRef(section.Ref)); line != nil {
			summary.Line = line.Name()
		}
	}
	if section, ok := journey.SectionAt(timetable.SectionDirection, 0); ok {
		summary.Direction = section.Code
		if direction := model.Direction(timetable.DirectionRef(section.Ref)); direction != nil {
			summary.Direction = direction.Text
		}
	}
	for _, section := range journey.SectionsAt(timetable.SectionAttribute, 0) {
		summary.Attributes = append(summary.Attributes, section.Code)
	}

	if len(journey.Visits) > 0 {
		first, last := journey.First(), journey.Last()
		summary.Origin = stopName(model, first.Stop)
		summary.Destination = stopName(model, last.Stop)
		if first.HasDeparture {
			summary.Departure = tokenizer.FormatTime(first.Departure)
		}
		if last.HasArrival {
			summary.Arrival = tokenizer.FormatTime(last.Arrival)
		}
	}

	return summary
}

func stopName(model *timetable.Model, ref timetable.StopRef) string {
	if stop := model.Stop(ref); stop != nil {
		return stop.Name
	}

	return ""
}
