package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "iso-8859-1"
)

const maxLineLength = 1024 * 1024

// Line is one physical line of a dataset file with its 1-based number.
type Line struct {
	Number int
	Text   string
}

// Blank reports whether the line carries no content.
func (l Line) Blank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// Lines reads r line by line, decoding it from the given encoding. The
// sequence stops after yielding the first read error.
func Lines(r io.Reader, encoding Encoding) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		reader, err := decodingReader(r, encoding)
		if err != nil {
			yield(Line{}, err)
			return
		}

		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

		number := 0
		for scanner.Scan() {
			number++
			text := strings.TrimRight(scanner.Text(), "\r")
			if number == 1 {
				text = strings.TrimPrefix(text, "\ufeff")
			}

			if !yield(Line{Number: number, Text: text}, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(Line{}, fmt.Errorf("read line %d: %w", number+1, err))
		}
	}
}

func decodingReader(r io.Reader, encoding Encoding) (io.Reader, error) {
	switch encoding {
	case EncodingUTF8, "":
		return r, nil
	case EncodingLatin1:
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}
