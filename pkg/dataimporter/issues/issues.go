package issues

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

type Kind string

const (
	KindMalformedRecord          Kind = "MalformedRecord"
	KindDuplicateKey             Kind = "DuplicateKey"
	KindUnresolvedReference      Kind = "UnresolvedReference"
	KindInconsistentVariantMerge Kind = "InconsistentVariantMerge"
	KindDateOutOfRange           Kind = "DateOutOfRange"
	KindEmptyJourneyBlock        Kind = "EmptyJourneyBlock"
)

var AllKinds = []Kind{
	KindMalformedRecord,
	KindDuplicateKey,
	KindUnresolvedReference,
	KindInconsistentVariantMerge,
	KindDateOutOfRange,
	KindEmptyJourneyBlock,
}

// ErrDateOutOfRange matches any DateOutOfRange issue through errors.Is.
var ErrDateOutOfRange = errors.New("date outside the validity window")

// Issue is a single defect found in the dataset. File and Line point at the
// offending record; Line is 1-based and zero when the defect has no line.
type Issue struct {
	Kind        Kind   `groups:"basic"`
	File        string `groups:"basic"`
	Line        int    `groups:"basic"`
	Field       string `groups:"basic"`
	Description string `groups:"basic"`
}

func New(kind Kind, file string, line int, format string, args ...any) *Issue {
	return &Issue{
		Kind:        kind,
		File:        file,
		Line:        line,
		Description: fmt.Sprintf(format, args...),
	}
}

func (i *Issue) Error() string {
	var b strings.Builder

	if i.File != "" {
		b.WriteString(i.File)
		if i.Line > 0 {
			fmt.Fprintf(&b, ":%d", i.Line)
		}
		b.WriteString(": ")
	}

	b.WriteString(string(i.Kind))
	if i.Field != "" {
		fmt.Fprintf(&b, " (%s)", i.Field)
	}
	b.WriteString(": ")
	b.WriteString(i.Description)

	return b.String()
}

func (i *Issue) Is(target error) bool {
	return target == ErrDateOutOfRange && i.Kind == KindDateOutOfRange
}

// At returns a copy of the issue positioned at file and line.
func (i *Issue) At(file string, line int) *Issue {
	positioned := *i
	positioned.File = file
	positioned.Line = line

	return &positioned
}

// KindOf extracts the issue kind from err, if err wraps an Issue.
func KindOf(err error) (Kind, bool) {
	var issue *Issue
	if errors.As(err, &issue) {
		return issue.Kind, true
	}

	return "", false
}

// List collects issues without stopping at the first one.
type List []*Issue

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no issues"
	case 1:
		return l[0].Error()
	}

	return fmt.Sprintf("%s (and %d more issues)", l[0].Error(), len(l)-1)
}

func (l *List) Add(issue *Issue) {
	*l = append(*l, issue)
}

func (l *List) Addf(kind Kind, file string, line int, format string, args ...any) {
	l.Add(New(kind, file, line, format, args...))
}

func (l List) Count(kind Kind) int {
	count := 0
	for _, issue := range l {
		if issue.Kind == kind {
			count++
		}
	}

	return count
}

func (l List) OfKind(kind Kind) List {
	var filtered List
	for _, issue := range l {
		if issue.Kind == kind {
			filtered = append(filtered, issue)
		}
	}

	return filtered
}

func (l List) CountByKind() map[Kind]int {
	counts := map[Kind]int{}
	for _, issue := range l {
		counts[issue.Kind]++
	}

	return counts
}

// Sorted orders issues by file, line and kind so output does not depend on
// which decoder finished first.
func (l List) Sorted() List {
	sorted := slices.Clone(l)
	slices.SortStableFunc(sorted, func(a, b *Issue) int {
		if c := strings.Compare(a.File, b.File); c != 0 {
			return c
		}
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return strings.Compare(string(a.Kind), string(b.Kind))
	})

	return sorted
}

// Err returns the list as an error, or nil when it is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}

	return l
}
