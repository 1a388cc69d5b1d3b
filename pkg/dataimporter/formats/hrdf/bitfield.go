package hrdf

import (
	"io"
	"iter"
	"strings"
	"time"

	"github.com/travigo/hrdf/pkg/calendar"
	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
)

var bitfieldLayout = &tokenizer.Layout{
	Name: "BITFELD",
	Fields: []tokenizer.Field{
		{Name: "id", From: 1, To: 6, Kind: tokenizer.Integer},
		{Name: "pattern", From: 8, To: tokenizer.ToEnd, Kind: tokenizer.Trimmed},
	},
}

// DecodeBitfields reads BITFELD. Patterns keep their full length; fitting
// them to the validity window happens during resolution.
func DecodeBitfields(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[Bitfield, error] {
	const file = datasets.FileBITFELD

	return decodeLines(file, r, encoding, lineOptions{comments: true}, func(line tokenizer.Line) (Bitfield, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, bitfieldLayout)
		if err != nil {
			return Bitfield{}, false, err
		}

		pattern, err := calendar.ParseHexPattern(row.String("pattern"))
		if err != nil {
			return Bitfield{}, false, malformed(file, line.Number, "bitfield %d: %s", row.Int("id"), err)
		}

		return Bitfield{
			Source:  Source{File: file, Line: line.Number},
			ID:      row.Int("id"),
			Pattern: pattern,
		}, true, nil
	})
}

var holidayLanguages = map[string]string{
	"deu": datasets.LanguageGerman,
	"fra": datasets.LanguageFrench,
	"ita": datasets.LanguageItalian,
	"eng": datasets.LanguageEnglish,
}

// DecodeHolidays reads FEIERTAG lines such as
// "25.12.2024 Weihnachtstag<deu>Noël<fra>Natale<ita>Christmas Day<eng>".
func DecodeHolidays(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[Holiday, error] {
	const file = datasets.FileFEIERTAG

	return decodeLines(file, r, encoding, lineOptions{}, func(line tokenizer.Line) (Holiday, bool, error) {
		text := []rune(line.Text)
		if len(text) < 10 {
			return Holiday{}, false, malformed(file, line.Number, "line too short for a holiday")
		}

		date, err := time.Parse("02.01.2006", string(text[:10]))
		if err != nil {
			return Holiday{}, false, malformed(file, line.Number, "holiday date %q is not dd.mm.yyyy", string(text[:10]))
		}

		names := map[string]string{}
		rest := strings.TrimSpace(string(text[10:]))
		for rest != "" {
			open := strings.IndexByte(rest, '<')
			closing := strings.IndexByte(rest, '>')
			if open < 0 || closing < open {
				return Holiday{}, false, malformed(file, line.Number, "holiday name %q has no language tag", rest)
			}

			language, ok := holidayLanguages[rest[open+1:closing]]
			if !ok {
				return Holiday{}, false, malformed(file, line.Number, "unknown holiday language %q", rest[open+1:closing])
			}
			names[language] = strings.TrimSpace(rest[:open])
			rest = rest[closing+1:]
		}

		return Holiday{
			Source: Source{File: file, Line: line.Number},
			Date:   date,
			Names:  names,
		}, true, nil
	})
}
