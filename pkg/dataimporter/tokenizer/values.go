package tokenizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// ParseTime parses an HRDF service time such as "0814", "02515" or "-1230".
// It returns minutes after the start of the service day.
func ParseTime(value string) (int, bool, error) {
	negative := strings.HasPrefix(value, "-")
	digits := strings.TrimPrefix(value, "-")

	v, err := strconv.Atoi(digits)
	if err != nil || v < 0 {
		return 0, false, fmt.Errorf("%q is not an HHMM time", value)
	}

	hours, minutes := v/100, v%100
	if minutes >= 60 {
		return 0, false, fmt.Errorf("%q has %d minutes", value, minutes)
	}

	return hours*60 + minutes, negative, nil
}

// FormatTime renders minutes after the service day start as HH:MM, keeping
// hours past 24.
func FormatTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SplitQuoted splits text on runs of blanks. When quote is non-zero a token
// opening with quote runs up to the matching quote and may contain blanks;
// the quotes themselves are dropped.
func SplitQuoted(text string, quote rune) ([]string, error) {
	var tokens []string
	var current strings.Builder

	inToken := false
	inQuote := false

	for _, r := range text {
		switch {
		case inQuote:
			if r == quote {
				inQuote = false
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
				continue
			}
			current.WriteRune(r)
		case quote != 0 && r == quote && !inToken:
			inQuote = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			inToken = true
			current.WriteRune(r)
		}
	}

	if inQuote {
		return nil, errUnterminatedQuote
	}
	if inToken {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}
