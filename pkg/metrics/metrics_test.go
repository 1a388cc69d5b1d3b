package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/hrdf/pkg/calendar"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"github.com/travigo/hrdf/pkg/timetable"
)

func model(t *testing.T) *timetable.Model {
	window, err := calendar.NewWindow(
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	builder := timetable.NewBuilder(calendar.New(window, nil, calendar.HolidayPolicyIgnore), time.UTC)
	builder.AddStop(timetable.Stop{ID: 1, Name: "One"})
	builder.AddStop(timetable.Stop{ID: 2, Name: "Two"})

	return builder.Build()
}

func TestRecorder(t *testing.T) {
	recorder := NewRecorder()

	recorder.ObserveRecords("BAHNHOF", 2)
	recorder.ObserveRecords("BAHNHOF", 3)
	recorder.ObserveIssues(issues.List{
		issues.New(issues.KindDuplicateKey, "BAHNHOF", 4, "stop 1 already defined"),
		issues.New(issues.KindDuplicateKey, "BAHNHOF", 5, "stop 2 already defined"),
		issues.New(issues.KindUnresolvedReference, "FPLAN", 1, "unknown stop 3"),
	})
	recorder.ObserveLoad(time.Second, model(t))

	assert.Equal(t, 5.0, testutil.ToFloat64(recorder.records.WithLabelValues("BAHNHOF")))
	assert.Equal(t, 2.0, testutil.ToFloat64(recorder.issues.WithLabelValues(string(issues.KindDuplicateKey))))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.issues.WithLabelValues(string(issues.KindUnresolvedReference))))
	assert.Equal(t, 2.0, testutil.ToFloat64(recorder.entities.WithLabelValues("stops")))
	assert.Equal(t, 0.0, testutil.ToFloat64(recorder.entities.WithLabelValues("journeys")))
	assert.Positive(t, testutil.ToFloat64(recorder.lastLoad))
}

func TestNilRecorder(t *testing.T) {
	var recorder *Recorder

	assert.NotPanics(t, func() {
		recorder.ObserveRecords("FPLAN", 1)
		recorder.ObserveIssues(nil)
		recorder.ObserveLoad(time.Second, nil)
	})
	assert.NoError(t, recorder.WriteTextfile("unused.prom"))
}

func TestWriteTextfile(t *testing.T) {
	recorder := NewRecorder()
	recorder.ObserveRecords("ZUGART", 7)

	path := filepath.Join(t.TempDir(), "hrdf.prom")
	require.NoError(t, recorder.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `hrdf_records_total{file="ZUGART"} 7`)
}
