package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kr/pretty"
	"github.com/liip/sheriff"
	"github.com/travigo/hrdf/pkg/timetable"
)

type OutputFormat string

const (
	OutputJSON   OutputFormat = "json"
	OutputPretty OutputFormat = "pretty"
)

// Group names select how much of an entity is rendered. Detailed output
// includes the basic fields.
const (
	GroupBasic    = "basic"
	GroupDetailed = "detailed"
)

func groupsFor(group string) ([]string, error) {
	switch group {
	case "", GroupBasic:
		return []string{GroupBasic}, nil
	case GroupDetailed:
		return []string{GroupBasic, GroupDetailed}, nil
	}

	return nil, fmt.Errorf("unknown group %q", group)
}

// Render writes value reduced to the fields of group.
func Render(w io.Writer, value any, group string, format OutputFormat) error {
	groups, err := groupsFor(group)
	if err != nil {
		return err
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{Groups: groups}, value)
	if err != nil {
		return err
	}

	switch format {
	case OutputPretty:
		_, err = pretty.Fprintf(w, "%# v\n", reduced)
		return err
	case "", OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(reduced)
	}

	return fmt.Errorf("unknown output format %q", format)
}

type StopDetail struct {
	Stop      *timetable.Stop       `groups:"basic"`
	Platforms []*timetable.Platform `groups:"detailed"`
	Members   []string              `groups:"detailed"`
}

func DescribeStop(model *timetable.Model, stop *timetable.Stop) StopDetail {
	detail := StopDetail{Stop: stop}
	for _, ref := range stop.Platforms {
		detail.Platforms = append(detail.Platforms, model.Platform(ref))
	}
	for _, ref := range stop.Members {
		detail.Members = append(detail.Members, stopName(model, ref))
	}

	return detail
}

type JourneyDetail struct {
	Summary JourneySummary     `groups:"basic"`
	Journey *timetable.Journey `groups:"basic"`
	// Dates are the running days as YYYY-MM-DD.
	Dates []string `groups:"detailed"`
}

func DescribeJourney(model *timetable.Model, journey *timetable.Journey) JourneyDetail {
	detail := JourneyDetail{
		Summary: Summarize(model, journey),
		Journey: journey,
	}
	for _, date := range model.Calendar.Window.Dates(journey.Days) {
		detail.Dates = append(detail.Dates, date.Format(time.DateOnly))
	}

	return detail
}
