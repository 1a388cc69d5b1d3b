package hrdf

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
)

var (
	journeyHeaderLayout = &tokenizer.Layout{
		Name: "FPLAN *Z",
		Fields: []tokenizer.Field{
			{Name: "number", From: 4, To: 9, Kind: tokenizer.Integer},
			{Name: "administration", From: 11, To: 16, Kind: tokenizer.Trimmed},
			{Name: "rest", From: 17, To: tokenizer.ToEnd, Kind: tokenizer.Trimmed, Optional: true},
		},
	}
	journeyCategoryLayout = &tokenizer.Layout{
		Name: "FPLAN *G",
		Fields: []tokenizer.Field{
			{Name: "category", From: 4, To: 6, Kind: tokenizer.Trimmed},
			{Name: "from", From: 8, To: 14, Kind: tokenizer.Integer, Optional: true},
			{Name: "until", From: 16, To: 22, Kind: tokenizer.Integer, Optional: true},
		},
	}
	journeyAttributeLayout = &tokenizer.Layout{
		Name: "FPLAN *A",
		Fields: []tokenizer.Field{
			{Name: "code", From: 4, To: 5, Kind: tokenizer.Trimmed},
			{Name: "from", From: 7, To: 13, Kind: tokenizer.Integer, Optional: true},
			{Name: "until", From: 15, To: 21, Kind: tokenizer.Integer, Optional: true},
			{Name: "bitfield", From: 23, To: 28, Kind: tokenizer.Integer, Optional: true},
		},
	}
	journeyInfoTextLayout = &tokenizer.Layout{
		Name: "FPLAN *I",
		Fields: []tokenizer.Field{
			{Name: "code", From: 4, To: 5, Kind: tokenizer.Trimmed},
			{Name: "from", From: 7, To: 13, Kind: tokenizer.Integer, Optional: true},
			{Name: "until", From: 15, To: 21, Kind: tokenizer.Integer, Optional: true},
			{Name: "bitfield", From: 23, To: 28, Kind: tokenizer.Integer, Optional: true},
			{Name: "infotext", From: 30, To: 38, Kind: tokenizer.Integer},
			{Name: "departure", From: 40, To: 45, Kind: tokenizer.Time, Optional: true},
			{Name: "arrival", From: 47, To: 52, Kind: tokenizer.Time, Optional: true},
		},
	}
	journeyLineLayout = &tokenizer.Layout{
		Name: "FPLAN *L",
		Fields: []tokenizer.Field{
			{Name: "line", From: 4, To: 11, Kind: tokenizer.Trimmed},
			{Name: "from", From: 13, To: 19, Kind: tokenizer.Integer, Optional: true},
			{Name: "until", From: 21, To: 27, Kind: tokenizer.Integer, Optional: true},
		},
	}
	journeyDirectionLayout = &tokenizer.Layout{
		Name: "FPLAN *R",
		Fields: []tokenizer.Field{
			{Name: "kind", From: 4, To: 4, Kind: tokenizer.Trimmed, Optional: true},
			{Name: "direction", From: 6, To: 12, Kind: tokenizer.Trimmed, Optional: true},
			{Name: "from", From: 14, To: 20, Kind: tokenizer.Integer, Optional: true},
			{Name: "until", From: 22, To: 28, Kind: tokenizer.Integer, Optional: true},
		},
	}
	journeyBoardingLayout = &tokenizer.Layout{
		Name: "FPLAN *CI/*CO",
		Fields: []tokenizer.Field{
			{Name: "minutes", From: 5, To: 8, Kind: tokenizer.Integer},
			{Name: "from", From: 10, To: 16, Kind: tokenizer.Integer, Optional: true},
			{Name: "until", From: 18, To: 24, Kind: tokenizer.Integer, Optional: true},
		},
	}
	visitLayout = &tokenizer.Layout{
		Name: "FPLAN stop",
		Fields: []tokenizer.Field{
			{Name: "stop", From: 1, To: 7, Kind: tokenizer.Integer},
			{Name: "arrival", From: 30, To: 35, Kind: tokenizer.Time, Optional: true},
			{Name: "departure", From: 37, To: 42, Kind: tokenizer.Time, Optional: true},
		},
	}
)

var errOutsideBlock = errors.New("record outside a journey block")

type blockState int

const (
	awaitingHeader blockState = iota
	inBlock
)

// journeyBlock is the journey being assembled. A rejected block has
// already reported why and is dropped when it closes.
type journeyBlock struct {
	journey  Journey
	rejected bool
	last     int
	hasLast  bool
}

// DecodeJourneys reads FPLAN. A *Z header opens a block, sub-records and
// stop rows attach to it, and the block closes at the next *Z or at the end
// of input. Blocks without stops yield EmptyJourneyBlock and any defect
// inside a block drops the whole journey.
func DecodeJourneys(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[Journey, error] {
	const file = datasets.FileFPLAN

	return func(yield func(Journey, error) bool) {
		state := awaitingHeader
		var block journeyBlock

		// closeBlock reports false when the consumer stopped.
		closeBlock := func() bool {
			if state != inBlock {
				return true
			}
			state = awaitingHeader

			if block.rejected {
				return true
			}
			if len(block.journey.Visits) == 0 {
				return yield(Journey{}, issues.New(issues.KindEmptyJourneyBlock, string(file), block.journey.Line,
					"journey %d/%s has no stop visits", block.journey.Number, block.journey.Administration))
			}

			return yield(block.journey, nil)
		}

		reject := func(err error, line int) bool {
			block.rejected = true
			return yield(Journey{}, positioned(err, file, line))
		}

		for line, err := range tokenizer.Lines(r, encoding) {
			if err != nil {
				yield(Journey{}, fmt.Errorf("%s: %w", file, err))
				return
			}

			if strings.HasPrefix(line.Text, "%") {
				continue
			}
			line.Text = withoutComment(line.Text)
			if line.Blank() {
				continue
			}

			if strings.HasPrefix(line.Text, "*Z") {
				if !closeBlock() {
					return
				}

				header, err := parseJourneyHeader(line)
				if err != nil {
					block = journeyBlock{rejected: true}
					state = inBlock
					if !yield(Journey{}, positioned(err, file, line.Number)) {
						return
					}
					continue
				}

				block = journeyBlock{journey: header}
				state = inBlock
				continue
			}

			if state == awaitingHeader {
				if !yield(Journey{}, malformed(file, line.Number, "%s", errOutsideBlock)) {
					return
				}
				continue
			}
			if block.rejected {
				continue
			}

			if err := block.add(line); err != nil {
				if !reject(err, line.Number) {
					return
				}
			}
		}

		closeBlock()
	}
}

// parseJourneyHeader reads *Z. After the administration come an optional
// variant code and an optional cycle count with its interval, e.g.
// "*Z 123456 000011   101 012 060".
func parseJourneyHeader(line tokenizer.Line) (Journey, error) {
	const file = datasets.FileFPLAN

	row, err := tokenizer.Tokenize(string(file), line, journeyHeaderLayout)
	if err != nil {
		return Journey{}, err
	}

	journey := Journey{
		Source:         Source{File: file, Line: line.Number},
		Number:         row.Int("number"),
		Administration: row.String("administration"),
	}

	rest := strings.Fields(row.String("rest"))
	if len(rest) == 3 {
		rest = rest[1:]
	}
	if len(rest) == 2 {
		if journey.Cycles, err = strconv.Atoi(rest[0]); err != nil {
			return Journey{}, malformed(file, line.Number, "cycle count %q is not an integer", rest[0])
		}
		if journey.CycleMinutes, err = strconv.Atoi(rest[1]); err != nil {
			return Journey{}, malformed(file, line.Number, "cycle interval %q is not an integer", rest[1])
		}
	}

	return journey, nil
}

func stopRange(row tokenizer.Row) StopRange {
	return StopRange{From: row.Int("from"), Until: row.Int("until")}
}

// add attaches one line of the open block.
func (b *journeyBlock) add(line tokenizer.Line) error {
	const file = datasets.FileFPLAN
	source := Source{File: file, Line: line.Number}
	journey := &b.journey
	text := line.Text

	tokenize := func(layout *tokenizer.Layout) (tokenizer.Row, error) {
		return tokenizer.Tokenize(string(file), line, layout)
	}

	switch {
	case strings.HasPrefix(text, "*G "), text == "*G":
		row, err := tokenize(journeyCategoryLayout)
		if err != nil {
			return err
		}
		journey.Categories = append(journey.Categories, CategoryAssignment{
			Source: source,
			Code:   row.String("category"),
			Range:  stopRange(row),
		})

	case strings.HasPrefix(text, "*GR"), strings.HasPrefix(text, "*SH"):
		// Border points and regions are not part of the Swiss export.

	case strings.HasPrefix(text, "*A "):
		row, err := tokenize(journeyAttributeLayout)
		if err != nil {
			return err
		}
		switch code := row.String("code"); code {
		case "VE", "NV":
			journey.Calendars = append(journey.Calendars, CalendarAssignment{
				Source:    source,
				Bitfield:  row.Int("bitfield"),
				Range:     stopRange(row),
				Exception: code == "NV",
			})
		default:
			journey.Attributes = append(journey.Attributes, AttributeAssignment{
				Source:   source,
				Code:     code,
				Range:    stopRange(row),
				Bitfield: row.Int("bitfield"),
			})
		}

	case strings.HasPrefix(text, "*I "):
		row, err := tokenize(journeyInfoTextLayout)
		if err != nil {
			return err
		}
		departure, _ := row.Time("departure")
		arrival, _ := row.Time("arrival")
		journey.InfoTexts = append(journey.InfoTexts, InfoTextAssignment{
			Source:       source,
			Code:         row.String("code"),
			InfoText:     row.Int("infotext"),
			Range:        stopRange(row),
			Bitfield:     row.Int("bitfield"),
			Departure:    departure,
			HasDeparture: row.Has("departure"),
			Arrival:      arrival,
			HasArrival:   row.Has("arrival"),
		})

	case strings.HasPrefix(text, "*L "):
		row, err := tokenize(journeyLineLayout)
		if err != nil {
			return err
		}
		assignment := LineAssignment{Source: source, Range: stopRange(row)}
		name := row.String("line")
		if reference, ok := strings.CutPrefix(name, "#"); ok {
			assignment.Reference, err = strconv.Atoi(reference)
			if err != nil {
				return malformed(file, line.Number, "line reference %q is not an integer", name)
			}
		} else {
			assignment.Name = name
		}
		journey.Lines = append(journey.Lines, assignment)

	case strings.HasPrefix(text, "*R"):
		row, err := tokenize(journeyDirectionLayout)
		if err != nil {
			return err
		}
		kind := row.String("kind")
		if kind != "" && kind != "H" && kind != "R" {
			return malformed(file, line.Number, "direction kind %q is neither H nor R", kind)
		}
		journey.Directions = append(journey.Directions, DirectionAssignment{
			Source:    source,
			Kind:      kind,
			Direction: row.String("direction"),
			Range:     stopRange(row),
		})

	case strings.HasPrefix(text, "*CI"), strings.HasPrefix(text, "*CO"):
		row, err := tokenize(journeyBoardingLayout)
		if err != nil {
			return err
		}
		journey.Boarding = append(journey.Boarding, BoardingAssignment{
			Source:   source,
			CheckOut: strings.HasPrefix(text, "*CO"),
			Minutes:  row.Int("minutes"),
			Range:    stopRange(row),
		})

	case strings.HasPrefix(text, "*"):
		return malformed(file, line.Number, "unknown journey sub-record %q", strings.Fields(text)[0])

	default:
		return b.addVisit(line, source)
	}

	return nil
}

// addVisit appends a stop row, keeping times non-decreasing along the
// journey.
func (b *journeyBlock) addVisit(line tokenizer.Line, source Source) error {
	row, err := tokenizer.Tokenize(string(datasets.FileFPLAN), line, visitLayout)
	if err != nil {
		return err
	}

	visit := Visit{
		Source:       source,
		Stop:         row.Int("stop"),
		HasArrival:   row.Has("arrival"),
		HasDeparture: row.Has("departure"),
	}
	visit.Arrival, visit.NoAlighting = row.Time("arrival")
	visit.Departure, visit.NoBoarding = row.Time("departure")

	for _, event := range []struct {
		present bool
		minutes int
	}{{visit.HasArrival, visit.Arrival}, {visit.HasDeparture, visit.Departure}} {
		if !event.present {
			continue
		}
		if b.hasLast && event.minutes < b.last {
			return malformed(datasets.FileFPLAN, line.Number, "journey %d/%s goes back in time at stop %d (%s after %s)",
				b.journey.Number, b.journey.Administration, visit.Stop,
				tokenizer.FormatTime(event.minutes), tokenizer.FormatTime(b.last))
		}
		b.last, b.hasLast = event.minutes, true
	}

	b.journey.Visits = append(b.journey.Visits, visit)

	return nil
}
