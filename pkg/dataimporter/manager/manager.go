package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/hrdf/pkg/config"
	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/formats/hrdf"
	"github.com/travigo/hrdf/pkg/dataimporter/issues"
	"github.com/travigo/hrdf/pkg/dataimporter/resolver"
	"github.com/travigo/hrdf/pkg/metrics"
	"github.com/travigo/hrdf/pkg/timetable"
)

var (
	ErrMissingFile         = errors.New("mandatory file missing")
	ErrStrictModeViolation = errors.New("dataset has issues and strict mode is enabled")
)

// FileReport describes the decoding of one file.
type FileReport struct {
	File     datasets.FileName `groups:"basic"`
	Records  int               `groups:"basic"`
	Issues   int               `groups:"basic"`
	Duration time.Duration     `groups:"detailed"`
}

type Result struct {
	Model    *timetable.Model
	Issues   issues.List
	Files    []FileReport
	Variants datasets.VariantMode
	Duration time.Duration
}

// Load reads the dataset cfg points at and resolves it into a model. Decoder
// and resolver issues are returned with the model; in strict mode any issue
// fails the load and no model is returned. A nil recorder records no
// metrics.
func Load(ctx context.Context, cfg config.Config, recorder *metrics.Recorder) (Result, error) {
	started := time.Now()

	version, err := cfg.DatasetVersion()
	if err != nil {
		return Result{}, err
	}
	policy, err := cfg.HolidayPolicy()
	if err != nil {
		return Result{}, err
	}

	dataset, err := datasets.OpenDataSet(cfg.Path, version)
	if err != nil {
		return Result{}, err
	}
	if missing := dataset.Missing(); len(missing) > 0 {
		return Result{}, fmt.Errorf("%w: %v", ErrMissingFile, missing)
	}

	mode := dataset.Manifest.VariantModeFor(dataset.Has)
	log.Info().
		Str("dataset", dataset.Identifier).
		Str("variants", string(mode)).
		Int("workers", cfg.WorkerCount()).
		Msg("Loading dataset")

	set := hrdf.NewRecordSet()
	reports, decodeIssues, err := decodeFiles(ctx, dataset, set, mode, cfg)
	if err != nil {
		return Result{}, err
	}
	for _, report := range reports {
		recorder.ObserveRecords(string(report.File), report.Records)
	}

	model, resolveIssues, err := resolver.Resolve(set, resolver.Options{
		Version:           version,
		VariantMode:       mode,
		HolidayPolicy:     policy,
		HolidayAttributes: cfg.Holidays.Attributes,
	})
	if err != nil {
		return Result{}, err
	}

	found := append(decodeIssues, resolveIssues...).Sorted()
	recorder.ObserveIssues(found)

	result := Result{
		Model:    model,
		Issues:   found,
		Files:    reports,
		Variants: mode,
		Duration: time.Since(started),
	}

	if cfg.Strict && len(found) > 0 {
		result.Model = nil
		recorder.ObserveLoad(result.Duration, nil)
		return result, errors.Join(fmt.Errorf("%w: %d issues", ErrStrictModeViolation, len(found)), found)
	}

	recorder.ObserveLoad(result.Duration, model)
	if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.Warn().Err(err).Str("path", cfg.Metrics.Textfile).Msg("Failed to write metrics textfile")
	}

	log.Info().
		Str("dataset", dataset.Identifier).
		Str("load", model.LoadID.String()).
		Int("journeys", model.Summary().Journeys).
		Int("issues", len(found)).
		Str("window", model.Calendar.Window.String()).
		Dur("duration", result.Duration).
		Msg("Loaded dataset")

	return result, nil
}

// decodeFiles runs the decoder of every present file on a bounded pool. Each
// file writes to its own part of set. The first read failure cancels the
// remaining files.
func decodeFiles(ctx context.Context, dataset *datasets.DataSet, set *hrdf.RecordSet, mode datasets.VariantMode, cfg config.Config) ([]FileReport, issues.List, error) {
	options := hrdf.Options{Encoding: cfg.TextEncoding(), Manifest: dataset.Manifest}

	var files []datasets.FileSpec
	for _, file := range dataset.Manifest.Readable() {
		if !dataset.Has(file.Name) {
			log.Debug().Str("file", string(file.Name)).Msg("Optional file not present")
			continue
		}
		if !mode.Reads(file.Variant) {
			log.Debug().Str("file", string(file.Name)).Str("variants", string(mode)).Msg("Skipping file of unused variant")
			continue
		}
		files = append(files, file)
	}

	reports := make([]FileReport, len(files))
	found := make([]issues.List, len(files))

	p := pool.New().
		WithErrors().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(cfg.WorkerCount())

	for index, file := range files {
		format, ok := set.Format(file, options)
		if !ok {
			continue
		}

		p.Go(func(ctx context.Context) error {
			started := time.Now()

			reader, err := dataset.Open(file.Name)
			if err != nil {
				return err
			}
			defer reader.Close()

			result, err := format.ParseFile(ctx, reader)
			if err != nil {
				return fmt.Errorf("decode %s: %w", file.Name, err)
			}

			reports[index] = FileReport{
				File:     file.Name,
				Records:  result.Records,
				Issues:   len(result.Issues),
				Duration: time.Since(started),
			}
			found[index] = result.Issues

			log.Debug().
				Str("file", string(file.Name)).
				Int("records", result.Records).
				Int("issues", len(result.Issues)).
				Msg("Decoded file")

			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, nil, err
	}

	var all issues.List
	var decoded []FileReport
	for index, report := range reports {
		if report.File == "" {
			continue
		}
		decoded = append(decoded, report)
		all = append(all, found[index]...)
	}

	return decoded, all, nil
}
