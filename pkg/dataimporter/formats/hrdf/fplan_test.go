package hrdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
)

var basel = []string{
	"*Z 000003 000011   101         % Fahrt 3",
	"*G ICE 8500090 8503000",
	"*A VE 8500090 8503000 000001",
	"*A NV 8500090 8503000 000002",
	"*A VR 8500090 8503000",
	"*I JY                        000000001",
	"*L #0000022 8500090 8503000",
	"*R H",
	"*CI 0002 8500090 8500090",
	"8500090 Basel Bad Bf                 00740",
	"8500010 Basel SBB             00748  00806",
	"0000175 Hauenstein-Basistunn -00833 -00833",
	"8503000 Zürich HB             00900",
}

func TestDecodeJourneys(t *testing.T) {
	journeys, found := decodeAll(t, DecodeJourneys(input(basel...), tokenizer.EncodingUTF8))

	require.Empty(t, found)
	require.Len(t, journeys, 1)

	journey := journeys[0]
	assert.Equal(t, 3, journey.Number)
	assert.Equal(t, "000011", journey.Administration)
	assert.Equal(t, 1, journey.Line)
	assert.Zero(t, journey.Cycles)

	require.Len(t, journey.Categories, 1)
	assert.Equal(t, "ICE", journey.Categories[0].Code)
	assert.Equal(t, StopRange{From: 8500090, Until: 8503000}, journey.Categories[0].Range)

	require.Len(t, journey.Calendars, 2)
	assert.Equal(t, 1, journey.Calendars[0].Bitfield)
	assert.False(t, journey.Calendars[0].Exception)
	assert.Equal(t, 2, journey.Calendars[1].Bitfield)
	assert.True(t, journey.Calendars[1].Exception)

	require.Len(t, journey.Attributes, 1)
	assert.Equal(t, "VR", journey.Attributes[0].Code)
	assert.Zero(t, journey.Attributes[0].Bitfield)

	require.Len(t, journey.InfoTexts, 1)
	assert.Equal(t, "JY", journey.InfoTexts[0].Code)
	assert.Equal(t, 1, journey.InfoTexts[0].InfoText)
	assert.Equal(t, StopRange{}, journey.InfoTexts[0].Range)

	require.Len(t, journey.Lines, 1)
	assert.Equal(t, 22, journey.Lines[0].Reference)
	assert.Empty(t, journey.Lines[0].Name)

	require.Len(t, journey.Directions, 1)
	assert.Equal(t, "H", journey.Directions[0].Kind)
	assert.Empty(t, journey.Directions[0].Direction)

	require.Len(t, journey.Boarding, 1)
	assert.False(t, journey.Boarding[0].CheckOut)
	assert.Equal(t, 2, journey.Boarding[0].Minutes)

	require.Len(t, journey.Visits, 4)
	assert.Equal(t, Visit{
		Source:       Source{File: datasets.FileFPLAN, Line: 10},
		Stop:         8500090,
		Departure:    7*60 + 40,
		HasDeparture: true,
	}, journey.Visits[0])
	assert.Equal(t, 7*60+48, journey.Visits[1].Arrival)
	assert.Equal(t, 8*60+6, journey.Visits[1].Departure)
	assert.True(t, journey.Visits[2].NoAlighting)
	assert.True(t, journey.Visits[2].NoBoarding)
	assert.Equal(t, 8*60+33, journey.Visits[2].Arrival)
	assert.True(t, journey.Visits[3].HasArrival)
	assert.False(t, journey.Visits[3].HasDeparture)
}

func TestDecodeJourneysCycles(t *testing.T) {
	journeys, found := decodeAll(t, DecodeJourneys(input(
		"*Z 123456 000011   101 012 060",
		"8500010 Basel SBB                    00600",
		"8503000 Zürich HB             00700",
	), tokenizer.EncodingUTF8))

	require.Empty(t, found)
	require.Len(t, journeys, 1)
	assert.Equal(t, 12, journeys[0].Cycles)
	assert.Equal(t, 60, journeys[0].CycleMinutes)
}

func TestDecodeJourneysEmptyBlock(t *testing.T) {
	journeys, found := decodeAll(t, DecodeJourneys(input(
		"*Z 000001 000011",
		"*G IC",
		"*Z 000002 000011",
		"8500010 Basel SBB                    00600",
	), tokenizer.EncodingUTF8))

	require.Len(t, journeys, 1)
	assert.Equal(t, 2, journeys[0].Number)

	require.Len(t, found, 1)
	assert.Equal(t, issues.KindEmptyJourneyBlock, found[0].Kind)
	assert.Equal(t, 1, found[0].Line)
}

func TestDecodeJourneysEmptyBlockAtEnd(t *testing.T) {
	_, found := decodeAll(t, DecodeJourneys(input("*Z 000001 000011"), tokenizer.EncodingUTF8))

	require.Len(t, found, 1)
	assert.Equal(t, issues.KindEmptyJourneyBlock, found[0].Kind)
}

func TestDecodeJourneysRejectsTimeTravel(t *testing.T) {
	journeys, found := decodeAll(t, DecodeJourneys(input(
		"*Z 000001 000011",
		"8500010 Basel SBB             00748  00806",
		"8503000 Zürich HB             00700",
		"*Z 000002 000011",
		"8500010 Basel SBB                    00600",
		"8503000 Zürich HB             02515",
	), tokenizer.EncodingUTF8))

	require.Len(t, journeys, 1)
	assert.Equal(t, 2, journeys[0].Number)
	assert.Equal(t, 25*60+15, journeys[0].Visits[1].Arrival)

	require.Len(t, found, 1)
	assert.Equal(t, issues.KindMalformedRecord, found[0].Kind)
	assert.Equal(t, 3, found[0].Line)
}

func TestDecodeJourneysOutsideBlock(t *testing.T) {
	journeys, found := decodeAll(t, DecodeJourneys(input(
		"*G IC",
		"*Z 000001 000011",
		"*X something",
		"8500010 Basel SBB                    00600",
	), tokenizer.EncodingUTF8))

	assert.Empty(t, journeys)
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 3, found[1].Line)
}

func TestDecodeJourneysStopsEarly(t *testing.T) {
	lines := append(append([]string{}, basel...), basel...)

	count := 0
	for _, err := range DecodeJourneys(input(lines...), tokenizer.EncodingUTF8) {
		require.NoError(t, err)
		count++
		break
	}

	assert.Equal(t, 1, count)
}
