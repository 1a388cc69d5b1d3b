package tokenizer

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/travigo/hrdf/pkg/dataimporter/issues"
)

const dateLayout = "02.01.2006"

// Tokenize splits line according to layout. A field that does not match its
// kind yields a MalformedRecord issue positioned at file and line.
func Tokenize(file string, line Line, layout *Layout) (Row, error) {
	var raw []string
	var present []bool
	var err error

	if layout.Delimited {
		raw, present, err = delimitedFields(line.Text, layout)
	} else {
		raw, present, err = fixedFields(line.Text, layout)
	}
	if err != nil {
		return Row{}, positioned(err, file, line.Number)
	}

	row := Row{layout: layout, values: make([]Value, len(layout.Fields))}
	for i, field := range layout.Fields {
		value, err := convert(raw[i], present[i], field)
		if err != nil {
			return Row{}, positioned(err, file, line.Number)
		}
		row.values[i] = value
	}

	return row, nil
}

func positioned(err error, file string, line int) error {
	if issue, ok := err.(*issues.Issue); ok {
		return issue.At(file, line)
	}

	return err
}

func malformed(field Field, format string, args ...any) *issues.Issue {
	issue := issues.New(issues.KindMalformedRecord, "", 0, format, args...)
	issue.Field = field.Name

	return issue
}

type columnText struct {
	text  string
	runes []rune
}

func newColumnText(text string) columnText {
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			return columnText{runes: []rune(text)}
		}
	}

	return columnText{text: text}
}

func (c columnText) len() int {
	if c.runes != nil {
		return len(c.runes)
	}

	return len(c.text)
}

func (c columnText) slice(from, to int) string {
	if c.runes != nil {
		return string(c.runes[from:to])
	}

	return c.text[from:to]
}

func fixedFields(text string, layout *Layout) ([]string, []bool, error) {
	columns := newColumnText(text)
	length := columns.len()

	raw := make([]string, len(layout.Fields))
	present := make([]bool, len(layout.Fields))

	for i, field := range layout.Fields {
		from := field.From - 1
		to := field.To
		if to == ToEnd || to > length {
			if field.Kind == Fixed && field.To != ToEnd && from < length && !field.Optional {
				return nil, nil, malformed(field, "%s expects columns %d-%d but the line ends at column %d", field.Name, field.From, field.To, length)
			}
			to = length
		}
		if from >= length || from >= to {
			continue
		}

		raw[i] = columns.slice(from, to)
		present[i] = true
	}

	return raw, present, nil
}

func delimitedFields(text string, layout *Layout) ([]string, []bool, error) {
	tokens, err := SplitQuoted(text, layout.Quote)
	if err != nil {
		issue := issues.New(issues.KindMalformedRecord, "", 0, "%s: %s", layout.Name, err.Error())
		return nil, nil, issue
	}

	raw := make([]string, len(layout.Fields))
	present := make([]bool, len(layout.Fields))

	for i, field := range layout.Fields {
		position := field.From - 1
		if position >= len(tokens) {
			continue
		}

		if field.To == ToEnd && field.Kind == Trimmed && i == len(layout.Fields)-1 {
			raw[i] = strings.Join(tokens[position:], " ")
		} else {
			raw[i] = tokens[position]
		}
		present[i] = true
	}

	return raw, present, nil
}

func convert(raw string, present bool, field Field) (Value, error) {
	trimmed := strings.TrimSpace(raw)

	if !present || (trimmed == "" && field.Kind != Fixed) {
		if field.Optional {
			return Value{}, nil
		}
		return Value{}, malformed(field, "%s is missing", field.Name)
	}

	switch field.Kind {
	case Integer:
		v, err := strconv.Atoi(trimmed)
		if err != nil {
			return Value{}, malformed(field, "%s is not an integer: %q", field.Name, trimmed)
		}
		return Value{Present: true, Int: v, Text: trimmed}, nil
	case Decimal:
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Value{}, malformed(field, "%s is not a decimal: %q", field.Name, trimmed)
		}
		return Value{Present: true, Float: v, Text: trimmed}, nil
	case Fixed:
		return Value{Present: true, Text: raw}, nil
	case Trimmed:
		return Value{Present: true, Text: trimmed}, nil
	case Date:
		v, err := time.Parse(dateLayout, trimmed)
		if err != nil {
			return Value{}, malformed(field, "%s is not a dd.mm.yyyy date: %q", field.Name, trimmed)
		}
		return Value{Present: true, Date: v, Text: trimmed}, nil
	case Time:
		minutes, negative, err := ParseTime(trimmed)
		if err != nil {
			return Value{}, malformed(field, "%s: %s", field.Name, err.Error())
		}
		return Value{Present: true, Minutes: minutes, Negative: negative, Text: trimmed}, nil
	}

	return Value{}, malformed(field, "%s has unknown kind %s", field.Name, field.Kind)
}
