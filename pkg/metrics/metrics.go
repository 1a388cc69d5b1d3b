package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"github.com/travigo/hrdf/pkg/timetable"
)

const namespace = "hrdf"

// Recorder collects the metrics of timetable loads. A nil Recorder records
// nothing.
type Recorder struct {
	registry *prometheus.Registry

	records      *prometheus.CounterVec
	issues       *prometheus.CounterVec
	loadDuration prometheus.Summary
	entities     *prometheus.GaugeVec
	lastLoad     prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Number of records decoded per file",
		}, []string{"file"}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Number of recoverable issues per kind",
		}, []string{"kind"}),
		loadDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace:  namespace,
			Name:       "load_duration_seconds",
			Help:       "Time taken to load a dataset",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Number of entities in the last loaded timetable",
		}, []string{"entity"}),
		lastLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_load_timestamp_seconds",
			Help:      "Unix time of the last successful load",
		}),
	}

	r.registry.MustRegister(r.records, r.issues, r.loadDuration, r.entities, r.lastLoad)

	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}

	return r.registry
}

func (r *Recorder) ObserveRecords(file string, count int) {
	if r == nil {
		return
	}

	r.records.With(prometheus.Labels{"file": file}).Add(float64(count))
}

func (r *Recorder) ObserveIssues(list issues.List) {
	if r == nil {
		return
	}

	for kind, count := range list.CountByKind() {
		r.issues.With(prometheus.Labels{"kind": string(kind)}).Add(float64(count))
	}
}

// ObserveLoad records a finished load and the entity counts of its model.
func (r *Recorder) ObserveLoad(duration time.Duration, model *timetable.Model) {
	if r == nil {
		return
	}

	r.loadDuration.Observe(duration.Seconds())
	if model == nil {
		return
	}

	summary := model.Summary()
	for entity, count := range map[string]int{
		"stops":      summary.Stops,
		"operators":  summary.Operators,
		"lines":      summary.Lines,
		"directions": summary.Directions,
		"categories": summary.Categories,
		"attributes": summary.Attributes,
		"info_texts": summary.InfoTexts,
		"platforms":  summary.Platforms,
		"journeys":   summary.Journeys,
		"holidays":   summary.Holidays,
	} {
		r.entities.With(prometheus.Labels{"entity": entity}).Set(float64(count))
	}
	r.lastLoad.SetToCurrentTime()
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}

	return prometheus.WriteToTextfile(path, r.registry)
}
