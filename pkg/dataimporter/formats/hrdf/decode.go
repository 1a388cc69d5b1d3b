package hrdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/formats"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
)

// Options carry the per-load settings every decoder needs.
type Options struct {
	Encoding tokenizer.Encoding
	Manifest datasets.Manifest
}

// parseFunc turns one line into a record. It returns false to skip lines
// that carry no record.
type parseFunc[T any] func(line tokenizer.Line) (T, bool, error)

type lineOptions struct {
	// comments strips everything from the first % on each line.
	comments bool
}

// decodeLines runs parse over every line of r. Recoverable defects are
// yielded as *issues.Issue errors; any other error ends the sequence.
func decodeLines[T any](file datasets.FileName, r io.Reader, encoding tokenizer.Encoding, options lineOptions, parse parseFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		for line, err := range tokenizer.Lines(r, encoding) {
			if err != nil {
				yield(zero, fmt.Errorf("%s: %w", file, err))
				return
			}

			if strings.HasPrefix(line.Text, "%") {
				continue
			}
			if options.comments {
				line.Text = withoutComment(line.Text)
			}
			if line.Blank() {
				continue
			}

			record, ok, err := parse(line)
			if err != nil {
				if !yield(zero, positioned(err, file, line.Number)) {
					return
				}
				continue
			}
			if !ok {
				continue
			}

			if !yield(record, nil) {
				return
			}
		}
	}
}

func withoutComment(text string) string {
	if index := strings.IndexByte(text, '%'); index >= 0 {
		return strings.TrimRight(text[:index], " \t")
	}

	return text
}

func positioned(err error, file datasets.FileName, line int) error {
	var issue *issues.Issue
	if errors.As(err, &issue) {
		return issue.At(string(file), line)
	}

	return err
}

func malformed(file datasets.FileName, line int, format string, args ...any) *issues.Issue {
	return issues.New(issues.KindMalformedRecord, string(file), line, format, args...)
}

// collect drains records into dst, turning issues into Result entries. The
// first non-issue error is returned and stops the file. A nil dst only
// counts records.
func collect[T any](ctx context.Context, records iter.Seq2[T, error], dst *[]T) (formats.Result, error) {
	var result formats.Result

	for record, err := range records {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}

		if err != nil {
			var issue *issues.Issue
			if errors.As(err, &issue) {
				result.Issues.Add(issue)
				continue
			}
			return result, err
		}

		if dst != nil {
			*dst = append(*dst, record)
		}
		result.Records++
	}

	return result, nil
}

var languages = []string{datasets.LanguageGerman, datasets.LanguageEnglish, datasets.LanguageFrench, datasets.LanguageItalian}

func languageIndex(language string) int {
	for i, l := range languages {
		if l == language {
			return i
		}
	}

	return -1
}

// RecordSet receives the records of every file of one load. Each file writes
// to its own field so decoders can run concurrently without locking.
type RecordSet struct {
	Metadata []Metadata
	Bitfields []Bitfield
	Holidays  []Holiday

	Stops             []Stop
	StopCoordinates   map[CoordinateSystem]*[]StopCoordinates
	StopPriorities    []StopPriority
	StopTransferFlags []StopTransferFlag
	StopTransferTimes []StopTransferTime
	StopTypes         []StopType

	Operators [4][]Operator
	InfoTexts [4][]InfoText

	Lines          []Line
	Directions     []Direction
	Categories     []Category
	CategoryTexts  []CategoryText
	Attributes     []Attribute
	AttributeTexts []AttributeText

	Platforms map[datasets.FileName]*PlatformTable

	OperatorTransfers []OperatorTransfer
	LineTransfers     []LineTransfer
	JourneyTransfers  []JourneyTransfer

	ThroughServices []ThroughService
	MetaLinks       []MetaLink
	MetaGroups      []MetaGroup

	Journeys []Journey
}

func NewRecordSet() *RecordSet {
	lv95, wgs := []StopCoordinates{}, []StopCoordinates{}

	return &RecordSet{
		StopCoordinates: map[CoordinateSystem]*[]StopCoordinates{LV95: &lv95, WGS84: &wgs},
		Platforms: map[datasets.FileName]*PlatformTable{
			datasets.FileGLEIS:      {File: datasets.FileGLEIS, Variant: datasets.VariantLegacy},
			datasets.FileGLEISLV95:  {File: datasets.FileGLEISLV95, Variant: datasets.VariantLegacy, System: LV95},
			datasets.FileGLEISWGS:   {File: datasets.FileGLEISWGS, Variant: datasets.VariantLegacy, System: WGS84},
			datasets.FileGLEISELV95: {File: datasets.FileGLEISELV95, Variant: datasets.VariantExtended, System: LV95},
			datasets.FileGLEISEWGS:  {File: datasets.FileGLEISEWGS, Variant: datasets.VariantExtended, System: WGS84},
		},
	}
}

// Coordinates returns the stop coordinates read for system.
func (s *RecordSet) Coordinates(system CoordinateSystem) []StopCoordinates {
	if records, ok := s.StopCoordinates[system]; ok {
		return *records
	}

	return nil
}

// Format returns the parser for file, writing into the record set. Files
// without a parser, like unused ones, report false.
func (s *RecordSet) Format(file datasets.FileSpec, options Options) (formats.Format, bool) {
	name := file.Name
	enc := options.Encoding

	switch name {
	case datasets.FileECKDATEN:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeMetadata(r, enc), &s.Metadata)
		}), true
	case datasets.FileBITFELD:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeBitfields(r, enc), &s.Bitfields)
		}), true
	case datasets.FileFEIERTAG:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeHolidays(r, enc), &s.Holidays)
		}), true
	case datasets.FileBAHNHOF:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeStops(r, enc), &s.Stops)
		}), true
	case datasets.FileBFKOORDLV95, datasets.FileBFKOORDWGS:
		system := LV95
		if name == datasets.FileBFKOORDWGS {
			system = WGS84
		}
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeStopCoordinates(name, system, r, enc), s.StopCoordinates[system])
		}), true
	case datasets.FileBFPRIOS:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeStopPriorities(r, enc), &s.StopPriorities)
		}), true
	case datasets.FileKMINFO:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeStopTransferFlags(r, enc), &s.StopTransferFlags)
		}), true
	case datasets.FileUMSTEIGB:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeStopTransferTimes(r, enc), &s.StopTransferTimes)
		}), true
	case datasets.FileBHFART, datasets.FileBHFART60:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeStopTypes(name, r, enc), &s.StopTypes)
		}), true
	case datasets.FileBETRIEBDE, datasets.FileBETRIEBEN, datasets.FileBETRIEBFR, datasets.FileBETRIEBIT:
		index := languageIndex(file.Language)
		if index < 0 {
			return nil, false
		}
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeOperators(name, file.Language, r, enc), &s.Operators[index])
		}), true
	case datasets.FileINFOTEXTDE, datasets.FileINFOTEXTEN, datasets.FileINFOTEXTFR, datasets.FileINFOTEXTIT:
		index := languageIndex(file.Language)
		if index < 0 {
			return nil, false
		}
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeInfoTexts(name, file.Language, r, enc), &s.InfoTexts[index])
		}), true
	case datasets.FileLINIE:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeLines(r, enc), &s.Lines)
		}), true
	case datasets.FileRICHTUNG:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeDirections(r, enc), &s.Directions)
		}), true
	case datasets.FileZUGART:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			var entries []categoryEntry
			result, err := collect(ctx, DecodeCategories(r, enc), &entries)
			for _, entry := range entries {
				if entry.category != nil {
					s.Categories = append(s.Categories, *entry.category)
				} else {
					s.CategoryTexts = append(s.CategoryTexts, *entry.text)
				}
			}
			return result, err
		}), true
	case datasets.FileATTRIBUT:
		column := options.Manifest.AttributeDescriptionColumn
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			var entries []attributeEntry
			result, err := collect(ctx, DecodeAttributes(r, enc, column), &entries)
			for _, entry := range entries {
				if entry.attribute != nil {
					s.Attributes = append(s.Attributes, *entry.attribute)
				} else {
					s.AttributeTexts = append(s.AttributeTexts, *entry.text)
				}
			}
			return result, err
		}), true
	case datasets.FileGLEIS, datasets.FileGLEISLV95, datasets.FileGLEISWGS, datasets.FileGLEISELV95, datasets.FileGLEISEWGS:
		table, ok := s.Platforms[name]
		if !ok {
			return nil, false
		}
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return DecodePlatforms(ctx, table, r, enc)
		}), true
	case datasets.FileUMSTEIGV:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeOperatorTransfers(r, enc), &s.OperatorTransfers)
		}), true
	case datasets.FileUMSTEIGL:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeLineTransfers(r, enc), &s.LineTransfers)
		}), true
	case datasets.FileUMSTEIGZ:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeJourneyTransfers(r, enc), &s.JourneyTransfers)
		}), true
	case datasets.FileDURCHBI:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeThroughServices(r, enc), &s.ThroughServices)
		}), true
	case datasets.FileMETABHF:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			var entries []metaEntry
			result, err := collect(ctx, DecodeMetaStops(r, enc), &entries)
			for _, entry := range entries {
				if entry.link != nil {
					s.MetaLinks = append(s.MetaLinks, *entry.link)
				} else {
					s.MetaGroups = append(s.MetaGroups, *entry.group)
				}
			}
			return result, err
		}), true
	case datasets.FileFPLAN:
		return formats.FormatFunc(func(ctx context.Context, r io.Reader) (formats.Result, error) {
			return collect(ctx, DecodeJourneys(r, enc), &s.Journeys)
		}), true
	}

	return nil, false
}
