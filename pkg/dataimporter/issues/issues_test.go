package issues

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueError(t *testing.T) {
	issue := New(KindUnresolvedReference, "FPLAN", 12, "line %d is not defined", 2)
	assert.Equal(t, "FPLAN:12: UnresolvedReference: line 2 is not defined", issue.Error())

	issue.Field = "line"
	assert.Equal(t, "FPLAN:12: UnresolvedReference (line): line 2 is not defined", issue.Error())

	bare := &Issue{Kind: KindDateOutOfRange, Description: "2024-01-01"}
	assert.Equal(t, "DateOutOfRange: 2024-01-01", bare.Error())
}

func TestDateOutOfRangeSentinel(t *testing.T) {
	err := fmt.Errorf("query: %w", New(KindDateOutOfRange, "", 0, "too late"))

	assert.True(t, errors.Is(err, ErrDateOutOfRange))
	assert.False(t, errors.Is(New(KindMalformedRecord, "", 0, "x"), ErrDateOutOfRange))

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindDateOutOfRange, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestListSortedAndCounts(t *testing.T) {
	var list List
	list.Addf(KindMalformedRecord, "FPLAN", 9, "b")
	list.Addf(KindDuplicateKey, "BAHNHOF", 3, "a")
	list.Addf(KindEmptyJourneyBlock, "FPLAN", 2, "c")
	list.Addf(KindMalformedRecord, "FPLAN", 2, "d")

	sorted := list.Sorted()
	require.Len(t, sorted, 4)
	assert.Equal(t, "BAHNHOF", sorted[0].File)
	assert.Equal(t, KindEmptyJourneyBlock, sorted[1].Kind)
	assert.Equal(t, KindMalformedRecord, sorted[2].Kind)
	assert.Equal(t, 9, sorted[3].Line)

	// the original order is untouched
	assert.Equal(t, 9, list[0].Line)

	assert.Equal(t, 2, list.Count(KindMalformedRecord))
	assert.Len(t, list.OfKind(KindDuplicateKey), 1)
	assert.Equal(t, map[Kind]int{
		KindMalformedRecord:   2,
		KindDuplicateKey:      1,
		KindEmptyJourneyBlock: 1,
	}, list.CountByKind())
}

func TestListErr(t *testing.T) {
	var list List
	assert.NoError(t, list.Err())

	list.Addf(KindDuplicateKey, "BAHNHOF", 3, "stop 100 defined twice")
	assert.EqualError(t, list.Err(), "BAHNHOF:3: DuplicateKey: stop 100 defined twice")

	list.Addf(KindDuplicateKey, "BAHNHOF", 4, "stop 101 defined twice")
	assert.EqualError(t, list.Err(), "BAHNHOF:3: DuplicateKey: stop 100 defined twice (and 1 more issues)")
}

func TestAtCopies(t *testing.T) {
	issue := New(KindMalformedRecord, "", 0, "bad")
	positioned := issue.At("BITFELD", 7)

	assert.Equal(t, "BITFELD", positioned.File)
	assert.Equal(t, 7, positioned.Line)
	assert.Equal(t, "", issue.File)
}
