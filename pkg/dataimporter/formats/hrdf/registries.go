package hrdf

import (
	"errors"
	"io"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
)

var infoTextLayout = &tokenizer.Layout{
	Name: "INFOTEXT",
	Fields: []tokenizer.Field{
		{Name: "id", From: 1, To: 9, Kind: tokenizer.Integer},
		{Name: "text", From: 11, To: tokenizer.ToEnd, Kind: tokenizer.Trimmed, Optional: true},
	},
}

// DecodeInfoTexts reads one INFOTEXT_xx file.
func DecodeInfoTexts(file datasets.FileName, language string, r io.Reader, encoding tokenizer.Encoding) iter.Seq2[InfoText, error] {
	return decodeLines(file, r, encoding, lineOptions{}, func(line tokenizer.Line) (InfoText, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, infoTextLayout)
		if err != nil {
			return InfoText{}, false, err
		}

		return InfoText{
			Source:   Source{File: file, Line: line.Number},
			ID:       row.Int("id"),
			Language: language,
			Text:     row.String("text"),
		}, true, nil
	})
}

var directionLayout = &tokenizer.Layout{
	Name: "RICHTUNG",
	Fields: []tokenizer.Field{
		{Name: "id", From: 1, To: 7, Kind: tokenizer.Trimmed},
		{Name: "text", From: 9, To: tokenizer.ToEnd, Kind: tokenizer.Trimmed, Optional: true},
	},
}

// DecodeDirections reads RICHTUNG.
func DecodeDirections(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[Direction, error] {
	const file = datasets.FileRICHTUNG

	return decodeLines(file, r, encoding, lineOptions{}, func(line tokenizer.Line) (Direction, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, directionLayout)
		if err != nil {
			return Direction{}, false, err
		}

		return Direction{
			Source: Source{File: file, Line: line.Number},
			ID:     row.String("id"),
			Text:   row.String("text"),
		}, true, nil
	})
}

var lineIDLayout = &tokenizer.Layout{
	Name: "LINIE",
	Fields: []tokenizer.Field{
		{Name: "id", From: 1, To: 7, Kind: tokenizer.Integer},
		{Name: "property", From: 9, To: tokenizer.ToEnd, Kind: tokenizer.Trimmed},
	},
}

var lineProperties = []LineProperty{
	LineShortName, LineLongName, LineRegionName, LineDescription,
	LineKey, LineInternalName, LineColor, LineBackgroundColor, LineMain, LineInfoText,
}

// DecodeLines reads LINIE. Each line carries a single property of a line id.
func DecodeLines(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[Line, error] {
	const file = datasets.FileLINIE

	return decodeLines(file, r, encoding, lineOptions{}, func(line tokenizer.Line) (Line, bool, error) {
		row, err := tokenizer.Tokenize(string(file), line, lineIDLayout)
		if err != nil {
			return Line{}, false, err
		}

		record := Line{Source: Source{File: file, Line: line.Number}, ID: row.Int("id")}
		text := row.String("property")

		var value string
		for _, property := range lineProperties {
			if text == string(property) || strings.HasPrefix(text, string(property)+" ") {
				record.Property = property
				value = strings.TrimSpace(strings.TrimPrefix(text, string(property)))
				break
			}
		}
		if record.Property == "" {
			return Line{}, false, malformed(file, line.Number, "line %d has unknown property %q", record.ID, text)
		}

		switch record.Property {
		case LineColor, LineBackgroundColor:
			fields := strings.Fields(value)
			if len(fields) != 3 {
				return Line{}, false, malformed(file, line.Number, "line %d colour %q is not r g b", record.ID, value)
			}
			var rgb [3]int
			for i, field := range fields {
				rgb[i], err = strconv.Atoi(field)
				if err != nil || rgb[i] < 0 || rgb[i] > 255 {
					return Line{}, false, malformed(file, line.Number, "line %d colour component %q is invalid", record.ID, field)
				}
			}
			record.Color = Color{R: rgb[0], G: rgb[1], B: rgb[2]}
		case LineMain:
			record.MainLine, err = strconv.Atoi(value)
			if err != nil {
				return Line{}, false, malformed(file, line.Number, "line %d main line %q is not an integer", record.ID, value)
			}
		case LineInfoText:
			fields := strings.Fields(value)
			if len(fields) != 2 {
				return Line{}, false, malformed(file, line.Number, "line %d info text %q is not type and number", record.ID, value)
			}
			record.InfoType = fields[0]
			record.InfoText, err = strconv.Atoi(fields[1])
			if err != nil {
				return Line{}, false, malformed(file, line.Number, "line %d info text number %q is not an integer", record.ID, fields[1])
			}
		default:
			record.Text = value
		}

		return record, true, nil
	})
}

// categoryEntry is either a category definition or a localized text of
// ZUGART.
type categoryEntry struct {
	category *Category
	text     *CategoryText
}

// sectionLanguages maps the language section names of ZUGART and ATTRIBUT.
var sectionLanguages = map[string]string{
	"Deutsch":      datasets.LanguageGerman,
	"Franzoesisch": datasets.LanguageFrench,
	"Englisch":     datasets.LanguageEnglish,
	"Italienisch":  datasets.LanguageItalian,
	"deu":          datasets.LanguageGerman,
	"fra":          datasets.LanguageFrench,
	"eng":          datasets.LanguageEnglish,
	"ita":          datasets.LanguageItalian,
}

// sectionLanguage reads a "<Deutsch>" or "<deu>" section header.
func sectionLanguage(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "<") || !strings.HasSuffix(text, ">") {
		return "", false
	}

	language, ok := sectionLanguages[text[1:len(text)-1]]
	return language, ok
}

var categoryTextPrefixes = []CategoryTextKind{CategoryTextCategory, CategoryTextClass, CategoryTextOption}

// DecodeCategories reads ZUGART: category definitions followed by
// <text> sections with localized class, option and category names.
func DecodeCategories(r io.Reader, encoding tokenizer.Encoding) iter.Seq2[categoryEntry, error] {
	const file = datasets.FileZUGART
	language := datasets.LanguageGerman

	return decodeLines(file, r, encoding, lineOptions{comments: true}, func(line tokenizer.Line) (categoryEntry, bool, error) {
		text := strings.TrimSpace(line.Text)
		source := Source{File: file, Line: line.Number}

		switch {
		case text == "<text>":
			return categoryEntry{}, false, nil
		case strings.HasPrefix(text, "<"):
			code, ok := sectionLanguage(text)
			if !ok {
				return categoryEntry{}, false, malformed(file, line.Number, "unknown language section %q", text)
			}
			language = code
			return categoryEntry{}, false, nil
		case strings.HasPrefix(text, "*I"):
			return categoryEntry{}, false, nil
		}

		for _, kind := range categoryTextPrefixes {
			if !strings.HasPrefix(text, string(kind)) {
				continue
			}
			rest := text[len(kind):]
			digits := rest
			if space := strings.IndexByte(rest, ' '); space >= 0 {
				digits = rest[:space]
			}
			number, err := strconv.Atoi(digits)
			if err != nil {
				continue
			}
			return categoryEntry{text: &CategoryText{
				Source:   source,
				Language: language,
				Kind:     kind,
				Number:   number,
				Text:     strings.TrimSpace(rest[len(digits):]),
			}}, true, nil
		}

		category, err := parseCategory(text)
		if err != nil {
			return categoryEntry{}, false, malformed(file, line.Number, "category definition %q: %s", text, err)
		}
		category.Source = source

		return categoryEntry{category: &category}, true, nil
	})
}

var errCategoryFields = errors.New("expected code, class, tariff group, output control, name and surcharge")

// parseCategory reads "IC  1 A 0 IC       0   #014": code, product class,
// tariff group, output control, short name, surcharge, optional flag and
// optional #category reference.
func parseCategory(text string) (Category, error) {
	fields := strings.Fields(text)
	if len(fields) < 6 {
		return Category{}, errCategoryFields
	}

	category := Category{
		Code:           fields[0],
		TariffGroup:    fields[2],
		ShortName:      fields[4],
		CategoryNumber: -1,
	}

	var err error
	if category.ProductClass, err = strconv.Atoi(fields[1]); err != nil {
		return Category{}, err
	}
	if category.OutputControl, err = strconv.Atoi(fields[3]); err != nil {
		return Category{}, err
	}
	if category.Surcharge, err = strconv.Atoi(fields[5]); err != nil {
		return Category{}, err
	}

	for _, field := range fields[6:] {
		if strings.HasPrefix(field, "#") {
			if category.CategoryNumber, err = strconv.Atoi(field[1:]); err != nil {
				return Category{}, err
			}
		} else {
			category.Flag = field
		}
	}

	return category, nil
}

// attributeEntry is either an attribute definition or a localized
// description from ATTRIBUT.
type attributeEntry struct {
	attribute *Attribute
	text      *AttributeText
}

var attributeHeader = regexp.MustCompile(`^.{2} [0-9]( [0-9 ]{3}( [0-9 ]{2})?)?$`)

// DecodeAttributes reads ATTRIBUT. Descriptions start at descriptionColumn,
// which moved from 4 to 5 in 2.0.7.
func DecodeAttributes(r io.Reader, encoding tokenizer.Encoding, descriptionColumn int) iter.Seq2[attributeEntry, error] {
	const file = datasets.FileATTRIBUT
	if descriptionColumn < 4 {
		descriptionColumn = 4
	}

	header := &tokenizer.Layout{
		Name: "ATTRIBUT",
		Fields: []tokenizer.Field{
			{Name: "code", From: 1, To: 2, Kind: tokenizer.Trimmed},
			{Name: "scope", From: 4, To: 4, Kind: tokenizer.Integer},
			{Name: "priority", From: 6, To: 8, Kind: tokenizer.Integer, Optional: true},
			{Name: "secondary", From: 10, To: 11, Kind: tokenizer.Integer, Optional: true},
		},
	}
	description := &tokenizer.Layout{
		Name: "ATTRIBUT description",
		Fields: []tokenizer.Field{
			{Name: "code", From: 1, To: 2, Kind: tokenizer.Trimmed},
			{Name: "text", From: descriptionColumn, To: tokenizer.ToEnd, Kind: tokenizer.Trimmed, Optional: true},
		},
	}

	language := datasets.LanguageGerman

	return decodeLines(file, r, encoding, lineOptions{}, func(line tokenizer.Line) (attributeEntry, bool, error) {
		text := strings.TrimRight(line.Text, " ")
		source := Source{File: file, Line: line.Number}

		switch {
		case strings.HasPrefix(text, "#"):
			return attributeEntry{}, false, nil
		case strings.HasPrefix(text, "<"):
			code, ok := sectionLanguage(text)
			if !ok {
				return attributeEntry{}, false, malformed(file, line.Number, "unknown language section %q", text)
			}
			language = code
			return attributeEntry{}, false, nil
		case attributeHeader.MatchString(text):
			row, err := tokenizer.Tokenize(string(file), line, header)
			if err != nil {
				return attributeEntry{}, false, err
			}
			return attributeEntry{attribute: &Attribute{
				Source:            source,
				Code:              row.String("code"),
				StopScope:         row.Int("scope"),
				MainPriority:      row.Int("priority"),
				SecondaryPriority: row.Int("secondary"),
			}}, true, nil
		}

		row, err := tokenizer.Tokenize(string(file), line, description)
		if err != nil {
			return attributeEntry{}, false, err
		}

		return attributeEntry{text: &AttributeText{
			Source:   source,
			Language: language,
			Code:     row.String("code"),
			Text:     row.String("text"),
		}}, true, nil
	})
}
