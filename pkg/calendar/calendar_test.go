package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testWindow(t *testing.T, days int) Window {
	start := date(2024, time.December, 15)
	window, err := NewWindow(start, start.AddDate(0, 0, days-1))
	require.NoError(t, err)
	require.Equal(t, days, window.Days())

	return window
}

func TestParseHexPattern(t *testing.T) {
	// 0x20 = 0010 0000, the two padding bits drop and day 0 is set
	p, err := ParseHexPattern("20")
	require.NoError(t, err)
	assert.Equal(t, 6, p.Len())
	assert.Equal(t, []int{0}, p.Days())

	// 0xF = 1111: padding 11, days 0 and 1
	p, err = ParseHexPattern("F0")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, p.Days())

	p, err = ParseHexPattern("3FC")
	require.NoError(t, err)
	assert.Equal(t, "1111111100", p.String())

	_, err = ParseHexPattern("2G")
	assert.Error(t, err)

	_, err = ParseHexPattern("")
	assert.Error(t, err)
}

func TestParseFullYearPattern(t *testing.T) {
	hex := "FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFE00"
	p, err := ParseHexPattern(hex)
	require.NoError(t, err)

	assert.Equal(t, 96*4-2, p.Len())
	assert.True(t, p.Has(0))
	assert.True(t, p.Has(372))
	assert.False(t, p.Has(373))
	assert.Equal(t, 373, p.Count())
}

func TestPatternFit(t *testing.T) {
	p := PatternOf(10, 0, 4, 9)

	fitted, err := p.Fit(5)
	require.NoError(t, err)
	assert.Equal(t, 5, fitted.Len())
	assert.Equal(t, []int{0, 4}, fitted.Days())

	_, err = p.Fit(11)
	assert.Error(t, err)

	wide := PatternOf(130, 1, 64, 127, 129)
	fitted, err = wide.Fit(128)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 64, 127}, fitted.Days())
}

func TestPatternSetOperations(t *testing.T) {
	a := PatternOf(7, 1, 3, 5)
	b := PatternOf(7, 3, 6)

	assert.Equal(t, []int{1, 3, 5, 6}, a.Union(b).Days())
	assert.Equal(t, []int{3}, a.Intersect(b).Days())
	assert.Equal(t, []int{1, 5}, a.Subtract(b).Days())
	assert.True(t, a.Equal(PatternOf(7, 5, 3, 1)))
	assert.False(t, a.Equal(PatternOf(8, 5, 3, 1)))
	assert.True(t, NewPattern(3).Empty())
	assert.Equal(t, 3, Always(3).Count())
}

func TestWindow(t *testing.T) {
	window := testWindow(t, 3)

	index, err := window.Index(date(2024, time.December, 17))
	require.NoError(t, err)
	assert.Equal(t, 2, index)
	assert.Equal(t, date(2024, time.December, 16), window.Date(1))
	assert.Equal(t, "2024-12-15..2024-12-17", window.String())

	_, err = window.Index(date(2024, time.December, 18))
	assert.True(t, errors.Is(err, issues.ErrDateOutOfRange))

	_, err = window.Index(date(2024, time.December, 14))
	kind, ok := issues.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, issues.KindDateOutOfRange, kind)

	_, err = NewWindow(date(2024, time.December, 15), date(2024, time.December, 1))
	assert.Error(t, err)
}

func TestWindowIgnoresTimeOfDay(t *testing.T) {
	window := testWindow(t, 2)

	index, err := window.Index(time.Date(2024, time.December, 16, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, index)
}

// Every day set in an N-bit pattern over an N-day window runs, every other
// day does not, and dates outside the window are rejected.
func TestRunsOnRoundTrip(t *testing.T) {
	for _, size := range []int{1, 2, 7, 63, 64, 65, 128, 366} {
		window := testWindow(t, size)
		cal := New(window, nil, HolidayPolicyIgnore)

		var set []int
		for i := 0; i < size; i += 3 {
			set = append(set, i)
		}
		days := cal.Resolve(Schedule{Base: []Pattern{PatternOf(size, set...)}})

		expected := map[int]bool{}
		for _, day := range set {
			expected[day] = true
		}

		for i := 0; i < size; i++ {
			runs, err := cal.RunsOn(days, window.Date(i))
			require.NoError(t, err)
			assert.Equal(t, expected[i], runs, "size %d day %d", size, i)
		}

		_, err := cal.RunsOn(days, window.Start.AddDate(0, 0, -1))
		assert.ErrorIs(t, err, issues.ErrDateOutOfRange)
		_, err = cal.RunsOn(days, window.End.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, issues.ErrDateOutOfRange)
	}
}

func TestResolveDefaultsToEveryDay(t *testing.T) {
	cal := New(testWindow(t, 5), nil, HolidayPolicyIgnore)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, cal.Resolve(Schedule{}).Days())
}

func TestResolveUnionOfBasePatterns(t *testing.T) {
	cal := New(testWindow(t, 7), nil, HolidayPolicyIgnore)

	days := cal.Resolve(Schedule{Base: []Pattern{PatternOf(7, 0, 2), PatternOf(7, 2, 6)}})
	assert.Equal(t, []int{0, 2, 6}, days.Days())
}

func TestResolveExceptionSubtraction(t *testing.T) {
	cal := New(testWindow(t, 7), nil, HolidayPolicyIgnore)

	days := cal.Resolve(Schedule{
		Base:       []Pattern{PatternOf(7, 1, 3, 5)},
		Exceptions: []Pattern{PatternOf(7, 3)},
	})
	assert.Equal(t, []int{1, 5}, days.Days())

	// exceptions apply after every base pattern has been joined
	days = cal.Resolve(Schedule{
		Base:       []Pattern{PatternOf(7, 1), PatternOf(7, 3, 5)},
		Exceptions: []Pattern{PatternOf(7, 3), PatternOf(7, 1)},
	})
	assert.Equal(t, []int{5}, days.Days())

	// an exception on an always-running journey
	days = cal.Resolve(Schedule{Exceptions: []Pattern{PatternOf(7, 0, 6)}})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, days.Days())
}

func TestResolveHolidayPolicies(t *testing.T) {
	window := testWindow(t, 14)
	christmas := date(2024, time.December, 25)
	outside := date(2025, time.January, 1)

	base := Schedule{Base: []Pattern{Always(14)}}
	sensitive := Schedule{Base: []Pattern{Always(14)}, HolidaySensitive: true}

	ignore := New(window, []time.Time{christmas, outside}, HolidayPolicyIgnore)
	assert.Equal(t, 14, ignore.Resolve(sensitive).Count())
	assert.True(t, ignore.IsHoliday(christmas))
	assert.False(t, ignore.IsHoliday(outside))

	skip := New(window, []time.Time{christmas}, HolidayPolicySkip)
	days := skip.Resolve(sensitive)
	runs, err := skip.RunsOn(days, christmas)
	require.NoError(t, err)
	assert.False(t, runs)
	assert.Equal(t, 13, days.Count())

	// journeys that did not opt in are untouched
	assert.Equal(t, 14, skip.Resolve(base).Count())

	only := New(window, []time.Time{christmas}, HolidayPolicyOnly)
	assert.Equal(t, []int{10}, only.Resolve(sensitive).Days())
	assert.Equal(t, 14, only.Resolve(base).Count())
}

func TestParseHolidayPolicy(t *testing.T) {
	policy, err := ParseHolidayPolicy("")
	require.NoError(t, err)
	assert.Equal(t, HolidayPolicyIgnore, policy)

	policy, err = ParseHolidayPolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, HolidayPolicySkip, policy)

	_, err = ParseHolidayPolicy("sometimes")
	assert.Error(t, err)
}
