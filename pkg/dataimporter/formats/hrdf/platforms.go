package hrdf

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/formats"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
)

var journeyPlatformLayout = &tokenizer.Layout{
	Name: "GLEIS journey platform",
	Fields: []tokenizer.Field{
		{Name: "stop", From: 1, To: 7, Kind: tokenizer.Integer},
		{Name: "journey", From: 9, To: 14, Kind: tokenizer.Integer},
		{Name: "administration", From: 16, To: 21, Kind: tokenizer.Trimmed},
		{Name: "index", From: 24, To: 30, Kind: tokenizer.Integer},
		{Name: "time", From: 32, To: 35, Kind: tokenizer.Time, Optional: true},
		{Name: "bitfield", From: 37, To: 42, Kind: tokenizer.Integer, Optional: true},
	},
}

var platformLayout = &tokenizer.Layout{
	Name: "GLEIS platform",
	Fields: []tokenizer.Field{
		{Name: "stop", From: 1, To: 7, Kind: tokenizer.Integer},
		{Name: "index", From: 10, To: 16, Kind: tokenizer.Integer},
		{Name: "data", From: 18, To: tokenizer.ToEnd, Kind: tokenizer.Trimmed},
	},
}

var (
	errPlatformData         = errors.New("platform data is not a list of code 'value' pairs")
	errMissingPlatformLabel = errors.New("platform data has no G label")
	errPlatformCoordinates  = errors.New("coordinates need two decimal values")
)

type platformGrammar struct {
	sloidMarker       string
	coordinatesMarker string
}

var platformGrammars = map[datasets.Variant]platformGrammar{
	datasets.VariantLegacy:   {sloidMarker: "I A", coordinatesMarker: "K"},
	datasets.VariantExtended: {sloidMarker: "g A", coordinatesMarker: "k"},
}

// DecodePlatforms reads one GLEIS, GLEIS_LV95, GLEIS_WGS, GLEISE_LV95 or
// GLEISE_WGS file into table. The row type is decided by a marker: # in
// column 23 for journey platforms, G in column 18 for platforms, then SLOID
// and coordinate rows whose markers depend on the variant.
func DecodePlatforms(ctx context.Context, table *PlatformTable, r io.Reader, encoding tokenizer.Encoding) (formats.Result, error) {
	file := table.File
	grammar := platformGrammars[table.Variant]

	records := decodeLines(file, r, encoding, lineOptions{}, func(line tokenizer.Line) (struct{}, bool, error) {
		runes := []rune(line.Text)
		source := Source{File: file, Line: line.Number}

		switch {
		case markerAt(runes, 23, "#"):
			row, err := tokenizer.Tokenize(string(file), line, journeyPlatformLayout)
			if err != nil {
				return struct{}{}, false, err
			}
			minutes, _ := row.Time("time")
			table.Journeys = append(table.Journeys, JourneyPlatform{
				Source:         source,
				Stop:           row.Int("stop"),
				Journey:        row.Int("journey"),
				Administration: row.String("administration"),
				Platform:       row.Int("index"),
				Time:           minutes,
				HasTime:        row.Has("time"),
				Bitfield:       row.Int("bitfield"),
			})
		case markerAt(runes, 18, "G "):
			row, err := tokenizer.Tokenize(string(file), line, platformLayout)
			if err != nil {
				return struct{}{}, false, err
			}
			label, sectors, err := parsePlatformData(row.String("data"))
			if err != nil {
				return struct{}{}, false, malformed(file, line.Number, "platform %d#%d: %s", row.Int("stop"), row.Int("index"), err)
			}
			table.Platforms = append(table.Platforms, Platform{
				Source:  source,
				Stop:    row.Int("stop"),
				Index:   row.Int("index"),
				Label:   label,
				Sectors: sectors,
			})
		case markerAt(runes, 18, grammar.sloidMarker):
			stop, index, err := platformKey(file, line)
			if err != nil {
				return struct{}{}, false, err
			}
			sloid := ""
			if from := 17 + len(grammar.sloidMarker); len(runes) > from {
				sloid = strings.TrimSpace(string(runes[from:]))
			}
			if sloid == "" {
				return struct{}{}, false, malformed(file, line.Number, "platform %d#%d has an empty SLOID", stop, index)
			}
			table.Sloids = append(table.Sloids, PlatformSloid{Source: source, Stop: stop, Index: index, Sloid: sloid})
		case markerAt(runes, 18, grammar.coordinatesMarker+" "):
			stop, index, err := platformKey(file, line)
			if err != nil {
				return struct{}{}, false, err
			}
			if table.System == "" {
				return struct{}{}, false, malformed(file, line.Number, "coordinates in a file without a coordinate system")
			}
			coordinates, err := parsePlatformCoordinates(runes, table.System)
			if err != nil {
				return struct{}{}, false, malformed(file, line.Number, "platform %d#%d: %s", stop, index, err)
			}
			table.Coordinates = append(table.Coordinates, PlatformCoordinates{Source: source, Stop: stop, Index: index, Coordinates: coordinates})
		case table.Variant == datasets.VariantExtended && markerAt(runes, 18, "A "):
			// Sections are not modelled.
			return struct{}{}, false, nil
		default:
			return struct{}{}, false, malformed(file, line.Number, "unknown platform row")
		}

		return struct{}{}, true, nil
	})

	return collect(ctx, records, nil)
}

// markerAt reports whether runes hold marker starting at the 1-based column.
func markerAt(runes []rune, column int, marker string) bool {
	expected := []rune(marker)
	from := column - 1
	if len(expected) == 0 || from+len(expected) > len(runes) {
		return false
	}

	for i, r := range expected {
		if runes[from+i] != r {
			return false
		}
	}

	return true
}

var platformKeyLayout = &tokenizer.Layout{
	Name: "GLEIS key",
	Fields: []tokenizer.Field{
		{Name: "stop", From: 1, To: 7, Kind: tokenizer.Integer},
		{Name: "index", From: 10, To: 16, Kind: tokenizer.Integer},
	},
}

func platformKey(file datasets.FileName, line tokenizer.Line) (int, int, error) {
	row, err := tokenizer.Tokenize(string(file), line, platformKeyLayout)
	if err != nil {
		return 0, 0, err
	}

	return row.Int("stop"), row.Int("index"), nil
}

// parsePlatformData reads "G '7' A 'AB'" into label and sectors.
func parsePlatformData(data string) (string, string, error) {
	tokens, err := tokenizer.SplitQuoted(data, '\'')
	if err != nil {
		return "", "", err
	}
	if len(tokens)%2 != 0 {
		return "", "", errPlatformData
	}

	var label, sectors string
	hasLabel := false
	for i := 0; i < len(tokens); i += 2 {
		switch tokens[i] {
		case "G":
			label = tokens[i+1]
			hasLabel = true
		case "A":
			sectors = tokens[i+1]
		}
	}
	if !hasLabel {
		return "", "", errMissingPlatformLabel
	}

	return label, sectors, nil
}

func parsePlatformCoordinates(runes []rune, system CoordinateSystem) (Coordinates, error) {
	var fields []string
	if len(runes) >= 20 {
		fields = strings.Fields(string(runes[19:]))
	}
	if len(fields) < 2 {
		return Coordinates{}, errPlatformCoordinates
	}

	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Coordinates{}, errPlatformCoordinates
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Coordinates{}, errPlatformCoordinates
	}

	coordinates := Coordinates{System: system, X: x, Y: y}
	if system == WGS84 {
		coordinates.X, coordinates.Y = y, x
	}
	if len(fields) > 2 {
		coordinates.Altitude, _ = strconv.ParseFloat(fields[2], 64)
	}

	return coordinates, nil
}
