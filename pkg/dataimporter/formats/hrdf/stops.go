package hrdf

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
)

var stopLayout = &tokenizer.Layout{
	Name: "BAHNHOF",
	Fields: []tokenizer.Field{
		{Name: "id", From: 1, To: 7, Kind: tokenizer.Integer},
		{Name: "names", From: 13, To: tokenizer.ToEnd, Kind: tokenizer.Trimmed},
	},
}

// Name tags used in BAHNHOF.
const (
	nameTagPrimary      = 1
	nameTagLong         = 2
	nameTagAbbreviation = 3
	nameTagSynonym      = 4
)

// DecodeStops reads BAHNHOF lines such as "8500010     Basel SBB$<1>$BS$<3>".
func DecodeStops(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[Stop, error] {
	const file = datasets.FileBAHNHOF

	return decodeLines(file, r, encoding, lineOptions{}, func(line tokenizer.Line) (Stop, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, stopLayout)
		if err != nil {
			return Stop{}, false, err
		}

		stop := Stop{Source: Source{File: file, Line: line.Number}, ID: row.Int("id")}

		names, err := parseTaggedNames(row.String("names"))
		if err != nil {
			return Stop{}, false, malformed(file, line.Number, "stop %d: %s", stop.ID, err)
		}

		for _, name := range names {
			switch name.tag {
			case nameTagPrimary:
				stop.Name = name.value
			case nameTagLong:
				stop.LongName = name.value
			case nameTagAbbreviation:
				stop.Abbreviation = name.value
			case nameTagSynonym:
				stop.Synonyms = append(stop.Synonyms, name.value)
			}
		}

		if stop.Name == "" {
			return Stop{}, false, malformed(file, line.Number, "stop %d has no $<1> name", stop.ID)
		}

		return stop, true, nil
	})
}

type taggedName struct {
	tag   int
	value string
}

func parseTaggedNames(text string) ([]taggedName, error) {
	var names []taggedName

	for text != "" {
		marker := strings.Index(text, "$<")
		if marker < 0 {
			return nil, fmt.Errorf("name %q has no $<n> tag", text)
		}
		closing := strings.IndexByte(text[marker:], '>')
		if closing < 0 {
			return nil, fmt.Errorf("unterminated name tag in %q", text)
		}
		closing += marker

		tag, err := strconv.Atoi(text[marker+2 : closing])
		if err != nil || tag < nameTagPrimary || tag > nameTagSynonym {
			return nil, fmt.Errorf("invalid name tag %q", text[marker:closing+1])
		}

		names = append(names, taggedName{tag: tag, value: strings.TrimSpace(text[:marker])})

		text = strings.TrimPrefix(text[closing+1:], "$")
	}

	return names, nil
}

var coordinatesLayout = &tokenizer.Layout{
	Name:      "BFKOORD",
	Delimited: true,
	Fields: []tokenizer.Field{
		{Name: "stop", From: 1, Kind: tokenizer.Integer},
		{Name: "x", From: 2, Kind: tokenizer.Decimal},
		{Name: "y", From: 3, Kind: tokenizer.Decimal},
		{Name: "altitude", From: 4, Kind: tokenizer.Decimal, Optional: true},
	},
}

// DecodeStopCoordinates reads BFKOORD_LV95 or BFKOORD_WGS. WGS84 files store
// the longitude first; records hold latitude in X.
func DecodeStopCoordinates(file datasets.FileName, system CoordinateSystem, r io.Reader, encoding tokenizer.Encoding) iter.Seq2[StopCoordinates, error] {
	return decodeLines(file, r, encoding, lineOptions{comments: true}, func(line tokenizer.Line) (StopCoordinates, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, coordinatesLayout)
		if err != nil {
			return StopCoordinates{}, false, err
		}

		x, y := row.Float("x"), row.Float("y")
		if system == WGS84 {
			x, y = y, x
		}

		return StopCoordinates{
			Source: Source{File: file, Line: line.Number},
			Stop:   row.Int("stop"),
			Coordinates: Coordinates{
				System:   system,
				X:        x,
				Y:        y,
				Altitude: row.Float("altitude"),
			},
		}, true, nil
	})
}

func stopValueLayout(name string) *tokenizer.Layout {
	return &tokenizer.Layout{
		Name:      name,
		Delimited: true,
		Fields: []tokenizer.Field{
			{Name: "stop", From: 1, Kind: tokenizer.Integer},
			{Name: "value", From: 2, Kind: tokenizer.Integer},
			{Name: "name", From: 3, Kind: tokenizer.Trimmed, Optional: true},
		},
	}
}

var (
	priorityLayout     = stopValueLayout("BFPRIOS")
	transferFlagLayout = stopValueLayout("KMINFO")
)

// DecodeStopPriorities reads BFPRIOS.
func DecodeStopPriorities(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[StopPriority, error] {
	const file = datasets.FileBFPRIOS

	return decodeLines(file, r, encoding, lineOptions{}, func(line tokenizer.Line) (StopPriority, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, priorityLayout)
		if err != nil {
			return StopPriority{}, false, err
		}

		return StopPriority{
			Source:   Source{File: file, Line: line.Number},
			Stop:     row.Int("stop"),
			Priority: row.Int("value"),
		}, true, nil
	})
}

// DecodeStopTransferFlags reads KMINFO.
func DecodeStopTransferFlags(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[StopTransferFlag, error] {
	const file = datasets.FileKMINFO

	return decodeLines(file, r, encoding, lineOptions{}, func(line tokenizer.Line) (StopTransferFlag, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, transferFlagLayout)
		if err != nil {
			return StopTransferFlag{}, false, err
		}

		return StopTransferFlag{
			Source: Source{File: file, Line: line.Number},
			Stop:   row.Int("stop"),
			Flag:   row.Int("value"),
		}, true, nil
	})
}

var transferTimeLayout = &tokenizer.Layout{
	Name:      "UMSTEIGB",
	Delimited: true,
	Fields: []tokenizer.Field{
		{Name: "stop", From: 1, Kind: tokenizer.Integer},
		{Name: "intercity", From: 2, Kind: tokenizer.Integer},
		{Name: "other", From: 3, Kind: tokenizer.Integer},
		{Name: "name", From: 4, Kind: tokenizer.Trimmed, Optional: true},
	},
}

// DecodeStopTransferTimes reads UMSTEIGB. Stop 9999999 carries the global
// default.
func DecodeStopTransferTimes(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[StopTransferTime, error] {
	const file = datasets.FileUMSTEIGB

	return decodeLines(file, r, encoding, lineOptions{}, func(line tokenizer.Line) (StopTransferTime, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, transferTimeLayout)
		if err != nil {
			return StopTransferTime{}, false, err
		}

		return StopTransferTime{
			Source:    Source{File: file, Line: line.Number},
			Stop:      row.Int("stop"),
			InterCity: row.Int("intercity"),
			Other:     row.Int("other"),
		}, true, nil
	})
}

// DecodeStopTypes reads BHFART or BHFART_60: restrictions, SLOIDs, boarding
// areas, country codes and cantons.
func DecodeStopTypes(file datasets.FileName, r io.Reader, encoding tokenizer.Encoding) iter.Seq2[StopType, error] {
	return decodeLines(file, r, encoding, lineOptions{comments: true}, func(line tokenizer.Line) (StopType, bool, error) {
		fields := strings.Fields(line.Text)
		if len(fields) < 3 {
			return StopType{}, false, malformed(file, line.Number, "stop type line needs a stop, a code and a value")
		}

		stop, err := strconv.Atoi(fields[0])
		if err != nil {
			return StopType{}, false, malformed(file, line.Number, "stop %q is not an integer", fields[0])
		}

		record := StopType{Source: Source{File: file, Line: line.Number}, Stop: stop}

		switch {
		case fields[1] == "B":
			record.Kind = StopTypeRestriction
			record.Number, err = strconv.Atoi(fields[2])
		case fields[1] == "G" && len(fields) > 3 && fields[2] == "A":
			record.Kind = StopTypeSloid
			record.Text = fields[3]
		case fields[1] == "G" && len(fields) > 3 && fields[2] == "a":
			record.Kind = StopTypeBoardingArea
			record.Text = fields[3]
		case fields[1] == "L":
			record.Kind = StopTypeCountry
			record.Text = fields[2]
		case fields[1] == "I" && len(fields) > 3 && fields[2] == "KT":
			record.Kind = StopTypeCanton
			record.Number, err = strconv.Atoi(fields[3])
		default:
			return StopType{}, false, malformed(file, line.Number, "unknown stop type code %q", strings.Join(fields[1:], " "))
		}
		if err != nil {
			return StopType{}, false, malformed(file, line.Number, "stop %d %s value is not an integer", stop, record.Kind)
		}

		return record, true, nil
	})
}
