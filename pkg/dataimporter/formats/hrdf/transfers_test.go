package hrdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
)

func TestDecodeOperatorTransfers(t *testing.T) {
	records, found := decodeAll(t, DecodeOperatorTransfers(input(
		"@@@@@@@ 000011 000033 05",
		"8500010 000011 000011 03 % Basel SBB",
		"ABCDEFG 000011 000011 03",
	), tokenizer.EncodingUTF8))

	require.Len(t, records, 2)
	assert.Equal(t, OperatorTransfer{
		Source:          Source{File: datasets.FileUMSTEIGV, Line: 1},
		Administration1: "000011",
		Administration2: "000033",
		Minutes:         5,
	}, records[0])
	assert.Equal(t, 8500010, records[1].Stop)

	require.Len(t, found, 1)
	assert.Equal(t, 3, found[0].Line)
}

func TestDecodeLineTransfers(t *testing.T) {
	records, found := decodeAll(t, DecodeLineTransfers(input(
		"8500010 000011 IC  1        H 000011 IR  *        * 005!",
		"8500010 000011 IC  1        H 000011 IR  *        * 007",
	), tokenizer.EncodingUTF8))

	require.Empty(t, found)
	require.Len(t, records, 2)
	assert.Equal(t, LineTransfer{
		Source:          Source{File: datasets.FileUMSTEIGL, Line: 1},
		Stop:            8500010,
		Administration1: "000011",
		Category1:       "IC",
		Line1:           "1",
		Direction1:      "H",
		Administration2: "000011",
		Category2:       "IR",
		Line2:           Wildcard,
		Direction2:      Wildcard,
		Minutes:         5,
		Guaranteed:      true,
	}, records[0])
	assert.False(t, records[1].Guaranteed)
}

func TestDecodeJourneyTransfers(t *testing.T) {
	records, found := decodeAll(t, DecodeJourneyTransfers(input(
		"8500010 000003 000011 000004 000011 003! 000001",
		"8500010 000003 000011 000005 000011 004",
	), tokenizer.EncodingUTF8))

	require.Empty(t, found)
	require.Len(t, records, 2)
	assert.Equal(t, 3, records[0].Journey1)
	assert.Equal(t, 4, records[0].Journey2)
	assert.Equal(t, 3, records[0].Minutes)
	assert.True(t, records[0].Guaranteed)
	assert.Equal(t, 1, records[0].Bitfield)
	assert.Zero(t, records[1].Bitfield)
	assert.False(t, records[1].Guaranteed)
}

func TestDecodeThroughServices(t *testing.T) {
	records, found := decodeAll(t, DecodeThroughServices(input(
		"000003 000011 8503000 000004 000011 000001 8503001",
		"000005 000011 8503000 000006 000011 000000",
	), tokenizer.EncodingUTF8))

	require.Empty(t, found)
	require.Len(t, records, 2)
	assert.Equal(t, ThroughService{
		Source:          Source{File: datasets.FileDURCHBI, Line: 1},
		Journey1:        3,
		Administration1: "000011",
		Stop1:           8503000,
		Journey2:        4,
		Administration2: "000011",
		Bitfield:        1,
		Stop2:           8503001,
	}, records[0])
	assert.Equal(t, 8503000, records[1].Stop2)
}

func TestDecodeMetaStops(t *testing.T) {
	entries, found := decodeAll(t, DecodeMetaStops(input(
		"*A YB",
		"8500010 8500020 005",
		"8500010 8500030 007",
		"8500010: 8500020 8500030",
		"8500010 x 7",
	), tokenizer.EncodingUTF8))

	require.Len(t, entries, 3)
	require.NotNil(t, entries[0].link)
	assert.Equal(t, MetaLink{
		Source:    Source{File: datasets.FileMETABHF, Line: 2},
		Meta:      8500010,
		Stop:      8500020,
		Minutes:   5,
		Attribute: "YB",
	}, *entries[0].link)
	assert.Empty(t, entries[1].link.Attribute)

	require.NotNil(t, entries[2].group)
	assert.Equal(t, []int{8500020, 8500030}, entries[2].group.Stops)

	require.Len(t, found, 1)
	assert.Equal(t, 5, found[0].Line)
}
