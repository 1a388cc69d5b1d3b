package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/formats/hrdf"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"github.com/travigo/hrdf/pkg/timetable"
)

func withLegacyPlatforms(set *hrdf.RecordSet) {
	lv95 := set.Platforms[datasets.FileGLEISLV95]
	lv95.Journeys = []hrdf.JourneyPlatform{
		{Source: at(datasets.FileGLEISLV95, 1), Stop: 100, Journey: 1000, Administration: "000011", Platform: 1},
		{Source: at(datasets.FileGLEISLV95, 2), Stop: 100, Journey: 1000, Administration: "000011", Platform: 9, Time: 8 * 60, HasTime: true},
	}
	lv95.Platforms = []hrdf.Platform{{Source: at(datasets.FileGLEISLV95, 3), Stop: 100, Index: 1, Label: "7", Sectors: "AB"}}
	lv95.Coordinates = []hrdf.PlatformCoordinates{{Source: at(datasets.FileGLEISLV95, 4), Stop: 100, Index: 1, Coordinates: hrdf.Coordinates{System: hrdf.LV95, X: 2611363, Y: 1266310}}}

	wgs := set.Platforms[datasets.FileGLEISWGS]
	wgs.Journeys = []hrdf.JourneyPlatform{
		{Source: at(datasets.FileGLEISWGS, 1), Stop: 100, Journey: 1000, Administration: "000011", Platform: 1},
	}
	wgs.Platforms = []hrdf.Platform{{Source: at(datasets.FileGLEISWGS, 2), Stop: 100, Index: 1, Label: "7", Sectors: "AB"}}
	wgs.Coordinates = []hrdf.PlatformCoordinates{{Source: at(datasets.FileGLEISWGS, 3), Stop: 100, Index: 1, Coordinates: hrdf.Coordinates{System: hrdf.WGS84, X: 47.5, Y: 7.5}}}
}

func withExtendedPlatforms(set *hrdf.RecordSet) {
	lv95 := set.Platforms[datasets.FileGLEISELV95]
	lv95.Platforms = []hrdf.Platform{{Source: at(datasets.FileGLEISELV95, 1), Stop: 100, Index: 1, Label: "7A"}}
	lv95.Sloids = []hrdf.PlatformSloid{{Source: at(datasets.FileGLEISELV95, 2), Stop: 100, Index: 1, Sloid: "ch:1:sloid:100:7"}}
	lv95.Journeys = []hrdf.JourneyPlatform{
		{Source: at(datasets.FileGLEISELV95, 3), Stop: 200, Journey: 1000, Administration: "000011", Platform: 2},
	}
	lv95.Platforms = append(lv95.Platforms, hrdf.Platform{Source: at(datasets.FileGLEISELV95, 4), Stop: 200, Index: 2, Label: "1"})
}

func TestLegacyPlatforms(t *testing.T) {
	set := dataset()
	withLegacyPlatforms(set)
	withExtendedPlatforms(set)

	model, found := resolve(t, set, Options{VariantMode: datasets.VariantModeLegacyOnly})

	require.Len(t, found, 1)
	assert.Equal(t, issues.KindUnresolvedReference, found[0].Kind)
	assert.Equal(t, string(datasets.FileGLEISLV95), found[0].File)
	assert.Equal(t, 2, found[0].Line)

	central, _ := model.StopByID(100)
	platform, ok := model.PlatformAt(central.Ref, 1)
	require.True(t, ok)
	assert.Equal(t, "7", platform.Label)
	assert.Equal(t, "AB", platform.Sectors)
	assert.Empty(t, platform.Sloid)
	require.NotNil(t, platform.LV95)
	require.NotNil(t, platform.WGS84)
	assert.Equal(t, 47.5, platform.WGS84.X)

	journey, _ := model.JourneyByKey(timetable.JourneyKey{Number: 1000, Administration: "000011"})
	require.Len(t, journey.Platforms, 1)
	assert.Equal(t, platform.Ref, journey.Platforms[0].Platform)
	assert.Nil(t, journey.Platforms[0].Days)
}

func TestMergedPlatforms(t *testing.T) {
	set := dataset()
	withLegacyPlatforms(set)
	withExtendedPlatforms(set)

	model, found := resolve(t, set, Options{VariantMode: datasets.VariantModeBothPresentMerge})
	assert.Len(t, found, 1)

	central, _ := model.StopByID(100)
	platform, ok := model.PlatformAt(central.Ref, 1)
	require.True(t, ok)
	assert.Equal(t, "7A", platform.Label)
	assert.Equal(t, "AB", platform.Sectors)
	assert.Equal(t, "ch:1:sloid:100:7", platform.Sloid)
	assert.NotNil(t, platform.LV95)

	journey, _ := model.JourneyByKey(timetable.JourneyKey{Number: 1000, Administration: "000011"})
	assert.Len(t, journey.Platforms, 2)
}

func TestExtendedPlatformsOnly(t *testing.T) {
	set := dataset()
	withLegacyPlatforms(set)
	withExtendedPlatforms(set)

	model, found := resolve(t, set, Options{VariantMode: datasets.VariantModeExtendedOnly})
	assert.Empty(t, found)

	central, _ := model.StopByID(100)
	platform, ok := model.PlatformAt(central.Ref, 1)
	require.True(t, ok)
	assert.Equal(t, "7A", platform.Label)
	assert.Empty(t, platform.Sectors)
	assert.Nil(t, platform.LV95)
}

func TestConflictingLegacyPlatforms(t *testing.T) {
	set := dataset()
	withLegacyPlatforms(set)
	set.Platforms[datasets.FileGLEISWGS].Platforms[0].Label = "8"
	set.Platforms[datasets.FileGLEISWGS].Journeys[0].Platform = 2

	model, found := resolve(t, set, Options{VariantMode: datasets.VariantModeLegacyOnly})

	assert.Equal(t, 2, found.Count(issues.KindInconsistentVariantMerge))

	central, _ := model.StopByID(100)
	platform, ok := model.PlatformAt(central.Ref, 1)
	require.True(t, ok)
	assert.Equal(t, "7", platform.Label)
	assert.NotNil(t, platform.WGS84)
}

func TestTransfersAndThroughServices(t *testing.T) {
	set := dataset()
	set.Journeys = append(set.Journeys, journey(2000, 1))
	set.StopTransferTimes = []hrdf.StopTransferTime{{Source: at(datasets.FileUMSTEIGB, 1), Stop: hrdf.DefaultTransferStop, InterCity: 5, Other: 2}}
	set.OperatorTransfers = []hrdf.OperatorTransfer{
		{Source: at(datasets.FileUMSTEIGV, 1), Stop: 0, Administration1: "000011", Administration2: "000011", Minutes: 4},
		{Source: at(datasets.FileUMSTEIGV, 2), Stop: 0, Administration1: "000011", Administration2: "000011", Minutes: 6},
		{Source: at(datasets.FileUMSTEIGV, 3), Stop: 100, Administration1: "000011", Administration2: "000099", Minutes: 1},
	}
	set.JourneyTransfers = []hrdf.JourneyTransfer{
		{Source: at(datasets.FileUMSTEIGZ, 1), Stop: 200, Journey1: 1000, Administration1: "000011", Journey2: 2000, Administration2: "000011", Minutes: 1, Guaranteed: true},
		{Source: at(datasets.FileUMSTEIGZ, 2), Stop: 200, Journey1: 1000, Administration1: "000011", Journey2: 9999, Administration2: "000011", Minutes: 1},
	}
	set.ThroughServices = []hrdf.ThroughService{
		{Source: at(datasets.FileDURCHBI, 1), Journey1: 1000, Administration1: "000011", Stop1: 200, Journey2: 2000, Administration2: "000011", Stop2: 200},
		{Source: at(datasets.FileDURCHBI, 2), Journey1: 1000, Administration1: "000011", Stop1: 200, Journey2: 2000, Administration2: "000011", Stop2: 200, Bitfield: 42},
	}

	model, found := resolve(t, set, Options{})

	require.Len(t, found, 4)
	assert.Equal(t, string(datasets.FileDURCHBI), found[0].File)
	assert.Equal(t, issues.KindDuplicateKey, found[1].Kind)
	assert.Equal(t, issues.KindUnresolvedReference, found[2].Kind)
	assert.Equal(t, string(datasets.FileUMSTEIGZ), found[3].File)

	first, _ := model.JourneyByKey(timetable.JourneyKey{Number: 1000, Administration: "000011"})
	second, _ := model.JourneyByKey(timetable.JourneyKey{Number: 2000, Administration: "000011"})
	central, _ := model.StopByID(100)
	north, _ := model.StopByID(200)

	transfer, err := model.TransferTime(north.Ref, north.Ref, first.Ref, second.Ref, day(1))
	require.NoError(t, err)
	assert.Equal(t, timetable.Transfer{Minutes: 1, Guaranteed: true, Source: timetable.TransferJourneyPair}, transfer)

	transfer, err = model.TransferTime(central.Ref, central.Ref, second.Ref, first.Ref, day(1))
	require.NoError(t, err)
	assert.Equal(t, timetable.Transfer{Minutes: 4, Source: timetable.TransferOperatorAnywhere}, transfer)

	require.Len(t, first.Through, 1)
	assert.Equal(t, second.Ref, first.Through[0].Journey)
	assert.Equal(t, north.Ref, first.Through[0].ToStop)
}

func TestExcludedJourneyReportedOnce(t *testing.T) {
	set := dataset()
	set.Journeys = []hrdf.Journey{journey(1000, 2), journey(2000, 1)}
	withLegacyPlatforms(set)
	set.JourneyTransfers = []hrdf.JourneyTransfer{
		{Source: at(datasets.FileUMSTEIGZ, 1), Stop: 200, Journey1: 1000, Administration1: "000011", Journey2: 2000, Administration2: "000011", Minutes: 1},
	}
	set.ThroughServices = []hrdf.ThroughService{
		{Source: at(datasets.FileDURCHBI, 1), Journey1: 1000, Administration1: "000011", Stop1: 200, Journey2: 2000, Administration2: "000011", Stop2: 200},
	}

	model, found := resolve(t, set, Options{VariantMode: datasets.VariantModeLegacyOnly})

	require.Len(t, found, 1)
	assert.Equal(t, issues.KindUnresolvedReference, found[0].Kind)
	assert.Equal(t, string(datasets.FileFPLAN), found[0].File)
	assert.Contains(t, found[0].Description, "line 2")

	second, ok := model.JourneyByKey(timetable.JourneyKey{Number: 2000, Administration: "000011"})
	require.True(t, ok)
	assert.Empty(t, second.Through)
	assert.Len(t, model.Journeys(), 1)
}
