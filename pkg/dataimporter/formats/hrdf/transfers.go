package hrdf

import (
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
)

var operatorTransferLayout = &tokenizer.Layout{
	Name: "UMSTEIGV",
	Fields: []tokenizer.Field{
		{Name: "stop", From: 1, To: 7, Kind: tokenizer.Trimmed},
		{Name: "administration1", From: 9, To: 14, Kind: tokenizer.Trimmed},
		{Name: "administration2", From: 16, To: 21, Kind: tokenizer.Trimmed},
		{Name: "minutes", From: 23, To: 24, Kind: tokenizer.Integer},
	},
}

// DecodeOperatorTransfers reads UMSTEIGV. A stop of @@@@@@@ makes the rule
// valid everywhere and is returned as stop 0.
func DecodeOperatorTransfers(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[OperatorTransfer, error] {
	const file = datasets.FileUMSTEIGV

	return decodeLines(file, r, encoding, lineOptions{comments: true}, func(line tokenizer.Line) (OperatorTransfer, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, operatorTransferLayout)
		if err != nil {
			return OperatorTransfer{}, false, err
		}

		stop, err := transferStop(row.String("stop"))
		if err != nil {
			return OperatorTransfer{}, false, malformed(file, line.Number, "stop %q is neither an id nor %s", row.String("stop"), AnyStop)
		}

		return OperatorTransfer{
			Source:          Source{File: file, Line: line.Number},
			Stop:            stop,
			Administration1: row.String("administration1"),
			Administration2: row.String("administration2"),
			Minutes:         row.Int("minutes"),
		}, true, nil
	})
}

func transferStop(value string) (int, error) {
	if value == AnyStop {
		return 0, nil
	}

	return strconv.Atoi(value)
}

var lineTransferLayout = &tokenizer.Layout{
	Name: "UMSTEIGL",
	Fields: []tokenizer.Field{
		{Name: "stop", From: 1, To: 7, Kind: tokenizer.Integer},
		{Name: "administration1", From: 9, To: 14, Kind: tokenizer.Trimmed},
		{Name: "category1", From: 16, To: 18, Kind: tokenizer.Trimmed},
		{Name: "line1", From: 20, To: 27, Kind: tokenizer.Trimmed},
		{Name: "direction1", From: 29, To: 29, Kind: tokenizer.Trimmed},
		{Name: "administration2", From: 31, To: 36, Kind: tokenizer.Trimmed},
		{Name: "category2", From: 38, To: 40, Kind: tokenizer.Trimmed},
		{Name: "line2", From: 42, To: 49, Kind: tokenizer.Trimmed},
		{Name: "direction2", From: 51, To: 51, Kind: tokenizer.Trimmed},
		{Name: "minutes", From: 53, To: 55, Kind: tokenizer.Integer},
		{Name: "guaranteed", From: 56, To: 56, Kind: tokenizer.Trimmed, Optional: true},
	},
}

// DecodeLineTransfers reads UMSTEIGL. Lines and directions may be * to
// match anything.
func DecodeLineTransfers(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[LineTransfer, error] {
	const file = datasets.FileUMSTEIGL

	return decodeLines(file, r, encoding, lineOptions{comments: true}, func(line tokenizer.Line) (LineTransfer, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, lineTransferLayout)
		if err != nil {
			return LineTransfer{}, false, err
		}

		return LineTransfer{
			Source:          Source{File: file, Line: line.Number},
			Stop:            row.Int("stop"),
			Administration1: row.String("administration1"),
			Category1:       row.String("category1"),
			Line1:           row.String("line1"),
			Direction1:      row.String("direction1"),
			Administration2: row.String("administration2"),
			Category2:       row.String("category2"),
			Line2:           row.String("line2"),
			Direction2:      row.String("direction2"),
			Minutes:         row.Int("minutes"),
			Guaranteed:      row.String("guaranteed") == "!",
		}, true, nil
	})
}

var journeyTransferLayout = &tokenizer.Layout{
	Name: "UMSTEIGZ",
	Fields: []tokenizer.Field{
		{Name: "stop", From: 1, To: 7, Kind: tokenizer.Integer},
		{Name: "journey1", From: 9, To: 14, Kind: tokenizer.Integer},
		{Name: "administration1", From: 16, To: 21, Kind: tokenizer.Trimmed},
		{Name: "journey2", From: 23, To: 28, Kind: tokenizer.Integer},
		{Name: "administration2", From: 30, To: 35, Kind: tokenizer.Trimmed},
		{Name: "minutes", From: 37, To: 39, Kind: tokenizer.Integer},
		{Name: "guaranteed", From: 40, To: 40, Kind: tokenizer.Trimmed, Optional: true},
		{Name: "bitfield", From: 42, To: 47, Kind: tokenizer.Integer, Optional: true},
	},
}

// DecodeJourneyTransfers reads UMSTEIGZ.
func DecodeJourneyTransfers(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[JourneyTransfer, error] {
	const file = datasets.FileUMSTEIGZ

	return decodeLines(file, r, encoding, lineOptions{comments: true}, func(line tokenizer.Line) (JourneyTransfer, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, journeyTransferLayout)
		if err != nil {
			return JourneyTransfer{}, false, err
		}

		return JourneyTransfer{
			Source:          Source{File: file, Line: line.Number},
			Stop:            row.Int("stop"),
			Journey1:        row.Int("journey1"),
			Administration1: row.String("administration1"),
			Journey2:        row.Int("journey2"),
			Administration2: row.String("administration2"),
			Minutes:         row.Int("minutes"),
			Guaranteed:      row.String("guaranteed") == "!",
			Bitfield:        row.Int("bitfield"),
		}, true, nil
	})
}

var throughServiceLayout = &tokenizer.Layout{
	Name: "DURCHBI",
	Fields: []tokenizer.Field{
		{Name: "journey1", From: 1, To: 6, Kind: tokenizer.Integer},
		{Name: "administration1", From: 8, To: 13, Kind: tokenizer.Trimmed},
		{Name: "stop1", From: 15, To: 21, Kind: tokenizer.Integer},
		{Name: "journey2", From: 23, To: 28, Kind: tokenizer.Integer},
		{Name: "administration2", From: 30, To: 35, Kind: tokenizer.Trimmed},
		{Name: "bitfield", From: 37, To: 42, Kind: tokenizer.Integer, Optional: true},
		{Name: "stop2", From: 44, To: 50, Kind: tokenizer.Integer, Optional: true},
	},
}

// DecodeThroughServices reads DURCHBI. When the second stop is missing the
// passengers stay at the first one.
func DecodeThroughServices(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[ThroughService, error] {
	const file = datasets.FileDURCHBI

	return decodeLines(file, r, encoding, lineOptions{comments: true}, func(line tokenizer.Line) (ThroughService, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, throughServiceLayout)
		if err != nil {
			return ThroughService{}, false, err
		}

		stop2, ok := row.OptionalInt("stop2")
		if !ok {
			stop2 = row.Int("stop1")
		}

		return ThroughService{
			Source:          Source{File: file, Line: line.Number},
			Journey1:        row.Int("journey1"),
			Administration1: row.String("administration1"),
			Stop1:           row.Int("stop1"),
			Journey2:        row.Int("journey2"),
			Administration2: row.String("administration2"),
			Bitfield:        row.Int("bitfield"),
			Stop2:           stop2,
		}, true, nil
	})
}

// metaEntry is either a link or a group of METABHF.
type metaEntry struct {
	link  *MetaLink
	group *MetaGroup
}

// DecodeMetaStops reads METABHF. A "*A CC" line tags the link that follows
// it.
func DecodeMetaStops(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[metaEntry, error] {
	const file = datasets.FileMETABHF
	attribute := ""

	return decodeLines(file, r, encoding, lineOptions{comments: true}, func(line tokenizer.Line) (metaEntry, bool, error) {
		text := strings.TrimSpace(line.Text)
		source := Source{File: file, Line: line.Number}

		if strings.HasPrefix(text, "*A") {
			attribute = strings.TrimSpace(strings.TrimPrefix(text, "*A"))
			return metaEntry{}, false, nil
		}

		if head, rest, ok := strings.Cut(text, ":"); ok {
			meta, err := strconv.Atoi(strings.TrimSpace(head))
			if err != nil {
				return metaEntry{}, false, malformed(file, line.Number, "meta stop %q is not an integer", head)
			}

			group := &MetaGroup{Source: source, Meta: meta}
			for _, field := range strings.Fields(rest) {
				stop, err := strconv.Atoi(field)
				if err != nil {
					return metaEntry{}, false, malformed(file, line.Number, "meta stop %d member %q is not an integer", meta, field)
				}
				group.Stops = append(group.Stops, stop)
			}
			return metaEntry{group: group}, true, nil
		}

		fields := strings.Fields(text)
		if len(fields) != 3 {
			return metaEntry{}, false, malformed(file, line.Number, "meta stop link needs a meta stop, a stop and minutes")
		}

		var values [3]int
		for i, field := range fields {
			value, err := strconv.Atoi(field)
			if err != nil {
				return metaEntry{}, false, malformed(file, line.Number, "meta stop link value %q is not an integer", field)
			}
			values[i] = value
		}

		link := &MetaLink{Source: source, Meta: values[0], Stop: values[1], Minutes: values[2], Attribute: attribute}
		attribute = ""

		return metaEntry{link: link}, true, nil
	})
}
