package inspect

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/hrdf/pkg/calendar"
	"github.com/travigo/hrdf/pkg/timetable"
)

func model(t *testing.T) *timetable.Model {
	t.Helper()

	window, err := calendar.NewWindow(
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	b := timetable.NewBuilder(calendar.New(window, nil, calendar.HolidayPolicyIgnore), time.UTC)

	basel, _ := b.AddStop(timetable.Stop{ID: 8500010, Name: "Basel SBB", Sloid: "ch:1:sloid:10"})
	zurich, _ := b.AddStop(timetable.Stop{ID: 8503000, Name: "Zürich HB"})
	b.AddPlatform(timetable.Platform{Stop: basel, Index: 1, Label: "7"})

	operator, _ := b.AddOperator(timetable.Operator{ID: 1, ShortName: timetable.Names{"de": "SBB"}})
	b.AddAdministration("000011", operator)

	ic, _ := b.AddCategory(timetable.Category{Code: "IC", ProductClass: 1})
	s, _ := b.AddCategory(timetable.Category{Code: "S", ProductClass: 5})
	line, _ := b.AddLine(timetable.Line{ID: 1, Key: "IC1"})

	visits := []timetable.Visit{
		{Stop: basel, Departure: 8 * 60, HasDeparture: true, CanBoard: true},
		{Stop: zurich, Arrival: 9 * 60, HasArrival: true, CanAlight: true},
	}

	b.AddJourney(timetable.Journey{
		Number: 1000, Administration: "000011", Operator: operator,
		Visits: visits,
		Sections: []timetable.Section{
			{Kind: timetable.SectionCategory, Until: 1, Ref: int(ic), Code: "IC"},
			{Kind: timetable.SectionLine, Until: 1, Ref: int(line), Code: "1"},
			{Kind: timetable.SectionAttribute, Until: 1, Ref: timetable.NoRef, Code: "WR"},
		},
		Days: calendar.PatternOf(3, 0, 2),
	})
	b.AddJourney(timetable.Journey{
		Number: 2000, Administration: "000011", Operator: timetable.NoRef,
		Visits: visits,
		Sections: []timetable.Section{
			{Kind: timetable.SectionCategory, Until: 1, Ref: int(s), Code: "S"},
			{Kind: timetable.SectionLine, Until: 1, Ref: timetable.NoRef, Code: "S3"},
		},
		Days: calendar.Always(3),
	})

	return b.Build()
}

func TestSummarize(t *testing.T) {
	m := model(t)
	journey, ok := m.JourneyByKey(timetable.JourneyKey{Number: 1000, Administration: "000011"})
	require.True(t, ok)

	assert.Equal(t, JourneySummary{
		Number:         1000,
		Administration: "000011",
		Operator:       "SBB",
		Category:       "IC",
		ProductClass:   1,
		Line:           "IC1",
		Origin:         "Basel SBB",
		Destination:    "Zürich HB",
		Departure:      "08:00",
		Arrival:        "09:00",
		Stops:          2,
		RunningDays:    2,
		Attributes:     []string{"WR"},
	}, Summarize(m, journey))

	other, _ := m.JourneyByKey(timetable.JourneyKey{Number: 2000, Administration: "000011"})
	summary := Summarize(m, other)
	assert.Equal(t, "S3", summary.Line)
	assert.Empty(t, summary.Operator)
}

func TestFilter(t *testing.T) {
	m := model(t)

	tests := []struct {
		expression string
		numbers    []int
	}{
		{`category == "IC"`, []int{1000}},
		{`product_class > 2`, []int{2000}},
		{`"WR" in attributes`, []int{1000}},
		{`running_days == 3 && origin == "Basel SBB"`, []int{2000}},
		{`number > 0`, []int{1000, 2000}},
		{`line startsWith "X"`, nil},
	}

	for _, test := range tests {
		t.Run(test.expression, func(t *testing.T) {
			filter, err := NewFilter(test.expression)
			require.NoError(t, err)

			summaries, err := Journeys(m, filter)
			require.NoError(t, err)

			var numbers []int
			for _, summary := range summaries {
				numbers = append(numbers, summary.Number)
			}
			assert.Equal(t, test.numbers, numbers)
		})
	}
}

func TestFilterRejectsInvalidExpressions(t *testing.T) {
	_, err := NewFilter(`category ==`)
	assert.Error(t, err)

	_, err = NewFilter(`number + 1`)
	assert.Error(t, err)

	_, err = NewFilter(`platform == "7"`)
	assert.Error(t, err)
}

func TestJourneysWithoutFilter(t *testing.T) {
	summaries, err := Journeys(model(t), nil)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestRenderGroups(t *testing.T) {
	m := model(t)
	journey, _ := m.JourneyByKey(timetable.JourneyKey{Number: 1000, Administration: "000011"})
	detail := DescribeJourney(m, journey)
	assert.Equal(t, []string{"2025-01-01", "2025-01-03"}, detail.Dates)

	var basic bytes.Buffer
	require.NoError(t, Render(&basic, detail, GroupBasic, OutputJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(basic.Bytes(), &decoded))
	assert.NotContains(t, decoded, "Dates")
	summary := decoded["Summary"].(map[string]any)
	assert.Equal(t, "IC", summary["Category"])
	assert.NotContains(t, summary, "Stops")

	var detailed bytes.Buffer
	require.NoError(t, Render(&detailed, detail, GroupDetailed, OutputJSON))
	require.NoError(t, json.Unmarshal(detailed.Bytes(), &decoded))
	assert.Contains(t, decoded, "Dates")
}

func TestRenderPrettyStop(t *testing.T) {
	m := model(t)
	stop, _ := m.StopByID(8500010)

	var out bytes.Buffer
	require.NoError(t, Render(&out, DescribeStop(m, stop), GroupDetailed, OutputPretty))
	assert.Contains(t, out.String(), "Basel SBB")
	assert.Contains(t, out.String(), "ch:1:sloid:10")
}

func TestRenderRejectsUnknownOptions(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, Render(&out, JourneySummary{}, "everything", OutputJSON))
	assert.Error(t, Render(&out, JourneySummary{}, GroupBasic, "xml"))
}
