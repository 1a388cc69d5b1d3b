package hrdf

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
)

var eckdatenDate = &tokenizer.Layout{
	Name:   "ECKDATEN date",
	Fields: []tokenizer.Field{{Name: "date", From: 1, To: 10, Kind: tokenizer.Date}},
}

// DecodeMetadata reads ECKDATEN: the validity start, the validity end and a
// name$created$version$provider line. A single record is produced.
func DecodeMetadata(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[Metadata, error] {
	const file = datasets.FileECKDATEN

	return func(yield func(Metadata, error) bool) {
		metadata := Metadata{Source: Source{File: file}}
		count := 0

		for line, err := range tokenizer.Lines(r, encoding) {
			if err != nil {
				yield(Metadata{}, fmt.Errorf("%s: %w", file, err))
				return
			}

			text := withoutComment(line.Text)
			if strings.TrimSpace(text) == "" {
				continue
			}
			count++

			switch count {
			case 1, 2:
				row, err := tokenizer.Tokenize(string(file), tokenizer.Line{Number: line.Number, Text: text}, eckdatenDate)
				if err != nil {
					yield(Metadata{}, err)
					return
				}
				if count == 1 {
					metadata.Start = row.Date("date")
					metadata.Line = line.Number
				} else {
					metadata.End = row.Date("date")
				}
			case 3:
				parts := strings.Split(strings.TrimSpace(text), "$")
				metadata.Name = parts[0]
				if len(parts) > 1 {
					metadata.Created = parts[1]
				}
				if len(parts) > 2 {
					metadata.Version = parts[2]
				}
				if len(parts) > 3 {
					metadata.Provider = parts[3]
				}
			}
		}

		if count < 2 {
			yield(Metadata{}, issues.New(issues.KindMalformedRecord, string(file), 0, "expected a start and an end date, found %d lines", count))
			return
		}
		if metadata.End.Before(metadata.Start) {
			yield(Metadata{}, issues.New(issues.KindMalformedRecord, string(file), metadata.Line, "validity ends %s before it starts %s", metadata.End.Format("02.01.2006"), metadata.Start.Format("02.01.2006")))
			return
		}

		yield(metadata, nil)
	}
}
