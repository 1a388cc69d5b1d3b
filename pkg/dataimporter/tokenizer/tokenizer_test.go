package tokenizer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"golang.org/x/text/encoding/charmap"
)

var stopVisitLayout = &Layout{
	Name: "FPLAN stop",
	Fields: []Field{
		{Name: "stop", From: 1, To: 7, Kind: Integer},
		{Name: "name", From: 9, To: 29, Kind: Trimmed, Optional: true},
		{Name: "arrival", From: 30, To: 35, Kind: Time, Optional: true},
		{Name: "departure", From: 37, To: 42, Kind: Time, Optional: true},
	},
}

func collectLines(t *testing.T, input string, encoding Encoding) []Line {
	var lines []Line
	for line, err := range Lines(strings.NewReader(input), encoding) {
		require.NoError(t, err)
		lines = append(lines, line)
	}

	return lines
}

func TestLines(t *testing.T) {
	lines := collectLines(t, "\ufefffirst\r\nsecond\n\nfourth", EncodingUTF8)

	require.Len(t, lines, 4)
	assert.Equal(t, Line{Number: 1, Text: "first"}, lines[0])
	assert.Equal(t, Line{Number: 2, Text: "second"}, lines[1])
	assert.True(t, lines[2].Blank())
	assert.Equal(t, 4, lines[3].Number)
}

func TestLinesLatin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("8500010     Bâle CFF$<1>")
	require.NoError(t, err)

	lines := collectLines(t, encoded, EncodingLatin1)
	require.Len(t, lines, 1)
	assert.Equal(t, "8500010     Bâle CFF$<1>", lines[0].Text)
}

func TestLinesStopsEarly(t *testing.T) {
	count := 0
	for range Lines(strings.NewReader("a\nb\nc\n"), EncodingUTF8) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestLinesUnknownEncoding(t *testing.T) {
	for _, err := range Lines(bytes.NewReader(nil), Encoding("ebcdic")) {
		assert.Error(t, err)
	}
}

func TestTokenizeFixed(t *testing.T) {
	line := Line{Number: 3, Text: "8503000 Zürich HB             02016 -02018"}

	row, err := Tokenize("FPLAN", line, stopVisitLayout)
	require.NoError(t, err)

	assert.Equal(t, 8503000, row.Int("stop"))
	assert.Equal(t, "Zürich HB", row.String("name"))

	arrival, restricted := row.Time("arrival")
	assert.Equal(t, 20*60+16, arrival)
	assert.False(t, restricted)

	departure, restricted := row.Time("departure")
	assert.Equal(t, 20*60+18, departure)
	assert.True(t, restricted)
}

func TestTokenizeFixedOptionalMissing(t *testing.T) {
	row, err := Tokenize("FPLAN", Line{Number: 1, Text: "0000100 Central                      00800"}, stopVisitLayout)
	require.NoError(t, err)

	assert.False(t, row.Has("arrival"))
	assert.True(t, row.Has("departure"))

	departure, _ := row.Time("departure")
	assert.Equal(t, 8*60, departure)
}

func TestTokenizeMalformed(t *testing.T) {
	_, err := Tokenize("FPLAN", Line{Number: 42, Text: "85O3000 Zürich HB"}, stopVisitLayout)
	require.Error(t, err)

	var issue *issues.Issue
	require.True(t, errors.As(err, &issue))
	assert.Equal(t, issues.KindMalformedRecord, issue.Kind)
	assert.Equal(t, "FPLAN", issue.File)
	assert.Equal(t, 42, issue.Line)
	assert.Equal(t, "stop", issue.Field)
}

func TestTokenizeBadMinutes(t *testing.T) {
	_, err := Tokenize("FPLAN", Line{Number: 1, Text: "8503000                       01275"}, stopVisitLayout)

	kind, ok := issues.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, issues.KindMalformedRecord, kind)
}

func TestTokenizeFixedWidth(t *testing.T) {
	layout := &Layout{
		Name: "UMSTEIGV",
		Fields: []Field{
			{Name: "stop", From: 1, To: 7, Kind: Fixed},
			{Name: "administration", From: 9, To: 14, Kind: Fixed},
		},
	}

	row, err := Tokenize("UMSTEIGV", Line{Number: 1, Text: "@@@@@@@ 0000"}, layout)
	assert.Error(t, err)

	row, err = Tokenize("UMSTEIGV", Line{Number: 1, Text: "@@@@@@@ 000011"}, layout)
	require.NoError(t, err)
	assert.Equal(t, "@@@@@@@", row.String("stop"))
	assert.Equal(t, "000011", row.String("administration"))
}

func TestTokenizeDate(t *testing.T) {
	layout := &Layout{Name: "ECKDATEN", Fields: []Field{{Name: "date", From: 1, To: 10, Kind: Date}}}

	row, err := Tokenize("ECKDATEN", Line{Number: 1, Text: "15.12.2024"}, layout)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC), row.Date("date"))

	_, err = Tokenize("ECKDATEN", Line{Number: 1, Text: "2024-12-15"}, layout)
	assert.Error(t, err)
}

func TestTokenizeDelimited(t *testing.T) {
	layout := &Layout{
		Name:      "BFKOORD",
		Delimited: true,
		Fields: []Field{
			{Name: "stop", From: 1, Kind: Integer},
			{Name: "x", From: 2, Kind: Decimal},
			{Name: "y", From: 3, Kind: Decimal},
			{Name: "z", From: 4, Kind: Decimal, Optional: true},
		},
	}

	row, err := Tokenize("BFKOORD_WGS", Line{Number: 1, Text: "8500010    7.589563   47.547412 0"}, layout)
	require.NoError(t, err)
	assert.Equal(t, 8500010, row.Int("stop"))
	assert.InDelta(t, 7.589563, row.Float("x"), 1e-9)
	assert.InDelta(t, 47.547412, row.Float("y"), 1e-9)

	_, err = Tokenize("BFKOORD_WGS", Line{Number: 2, Text: "8500010 seven 47.5"}, layout)
	assert.Error(t, err)
}

func TestSplitQuoted(t *testing.T) {
	tokens, err := SplitQuoted(`00379 K "SBB" L "SBB" V "Schweizerische Bundesbahnen SBB"`, '"')
	require.NoError(t, err)
	assert.Equal(t, []string{"00379", "K", "SBB", "L", "SBB", "V", "Schweizerische Bundesbahnen SBB"}, tokens)

	tokens, err = SplitQuoted(`00379 K ""`, '"')
	require.NoError(t, err)
	assert.Equal(t, []string{"00379", "K", ""}, tokens)

	_, err = SplitQuoted(`00379 K "SBB`, '"')
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	minutes, negative, err := ParseTime("02515")
	require.NoError(t, err)
	assert.Equal(t, 25*60+15, minutes)
	assert.False(t, negative)
	assert.Equal(t, "25:15", FormatTime(minutes))

	_, _, err = ParseTime("12a0")
	assert.Error(t, err)
}
