package dataimporter

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/senseyeio/duration"
	"github.com/travigo/hrdf/pkg/config"
	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/manager"
	"github.com/travigo/hrdf/pkg/inspect"
	"github.com/travigo/hrdf/pkg/metrics"
	"github.com/travigo/hrdf/pkg/timetable"
	"github.com/urfave/cli/v2"
)

// datasetFlags select and configure the dataset every command but versions
// loads. Flags win over the config file and the environment.
func datasetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file",
		},
		&cli.StringFlag{
			Name:  "path",
			Usage: "Directory holding the unpacked HRDF files",
		},
		&cli.StringFlag{
			Name:  "version",
			Usage: "HRDF format version, e.g. 2.0.7",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Fail the load on any dataset issue",
		},
		&cli.StringFlag{
			Name:  "encoding",
			Usage: "Text encoding of the files (utf-8 or iso-8859-1)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Files decoded in parallel, 0 for one per CPU",
		},
		&cli.StringFlag{
			Name:  "holiday-policy",
			Usage: "How holidays change holiday-sensitive journeys (ignore, skip or only)",
		},
	}
}

func configFromFlags(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if c.IsSet("path") {
		cfg.Path = c.String("path")
	}
	if c.IsSet("version") {
		cfg.Version = c.String("version")
	}
	if c.IsSet("strict") {
		cfg.Strict = c.Bool("strict")
	}
	if c.IsSet("encoding") {
		cfg.Encoding = c.String("encoding")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("holiday-policy") {
		cfg.Holidays.Policy = c.String("holiday-policy")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// loadModel loads the dataset selected by the flags. Issues of a lenient
// load are logged and the model returned.
func loadModel(c *cli.Context) (manager.Result, error) {
	cfg, err := configFromFlags(c)
	if err != nil {
		return manager.Result{}, err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := manager.Load(ctx, cfg, metrics.NewRecorder())
	if err != nil {
		return result, err
	}

	for kind, count := range result.Issues.CountByKind() {
		log.Warn().Str("kind", string(kind)).Int("count", count).Msg("Dataset issues")
	}

	return result, nil
}

func RegisterCLI() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "load",
			Usage: "Load a dataset and report its contents and issues",
			Flags: append(datasetFlags(),
				&cli.StringFlag{
					Name:  "format",
					Usage: "Output format (json or pretty)",
					Value: string(inspect.OutputJSON),
				},
			),
			Action: func(c *cli.Context) error {
				result, err := loadModel(c)
				printIssues(c.App.ErrWriter, result)
				if err != nil {
					return err
				}

				return inspect.Render(c.App.Writer, struct {
					Metadata timetable.Metadata   `groups:"basic"`
					Load     string               `groups:"basic"`
					Variants string               `groups:"basic"`
					Summary  timetable.Summary    `groups:"basic"`
					Files    []manager.FileReport `groups:"basic"`
					Issues   int                  `groups:"basic"`
					Duration string               `groups:"basic"`
				}{
					Metadata: result.Model.Metadata,
					Load:     result.Model.LoadID.String(),
					Variants: string(result.Variants),
					Summary:  result.Model.Summary(),
					Files:    result.Files,
					Issues:   len(result.Issues),
					Duration: result.Duration.String(),
				}, inspect.GroupBasic, inspect.OutputFormat(c.String("format")))
			},
		},
		{
			Name:  "runs-on",
			Usage: "Check whether a journey runs on a date",
			Flags: append(datasetFlags(),
				&cli.IntFlag{
					Name:     "journey",
					Usage:    "Journey number",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "admin",
					Usage:    "Administration code of the journey",
					Required: true,
				},
				&cli.TimestampFlag{
					Name:     "date",
					Usage:    "Service date (YYYY-MM-DD)",
					Layout:   time.DateOnly,
					Required: true,
				},
			),
			Action: func(c *cli.Context) error {
				result, err := loadModel(c)
				if err != nil {
					return err
				}

				key := timetable.JourneyKey{Number: c.Int("journey"), Administration: c.String("admin")}
				journey, ok := result.Model.JourneyByKey(key)
				if !ok {
					return fmt.Errorf("%w: %s", timetable.ErrUnknownJourney, key)
				}

				date := *c.Timestamp("date")
				runs, err := result.Model.RunsOn(journey.Ref, date)
				if err != nil {
					return err
				}

				fmt.Fprintf(c.App.Writer, "%s %s: %t\n", key, date.Format(time.DateOnly), runs)

				return nil
			},
		},
		{
			Name:  "departures",
			Usage: "List the departures from a stop",
			Flags: append(datasetFlags(),
				&cli.IntFlag{
					Name:     "stop",
					Usage:    "Stop id",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "from",
					Usage: "Start of the window (RFC3339), defaults to now",
				},
				&cli.StringFlag{
					Name:  "window",
					Usage: "Length of the window as an ISO-8601 duration",
					Value: "PT2H",
				},
			),
			Action: func(c *cli.Context) error {
				window, err := duration.ParseISO8601(c.String("window"))
				if err != nil {
					return fmt.Errorf("window: %w", err)
				}

				from := time.Now()
				if c.IsSet("from") {
					from, err = time.Parse(time.RFC3339, c.String("from"))
					if err != nil {
						return fmt.Errorf("from: %w", err)
					}
				}

				result, err := loadModel(c)
				if err != nil {
					return err
				}
				model := result.Model

				stop, ok := model.StopByID(c.Int("stop"))
				if !ok {
					return fmt.Errorf("unknown stop %d", c.Int("stop"))
				}

				departures, err := model.Departures(stop.Ref, from, window.Shift(from))
				if err != nil {
					return err
				}

				printDepartures(c.App.Writer, model, departures)

				return nil
			},
		},
		{
			Name:  "inspect",
			Usage: "Show a stop, a journey or the journeys matching a filter",
			Flags: append(datasetFlags(),
				&cli.IntFlag{
					Name:  "stop",
					Usage: "Stop id",
				},
				&cli.IntFlag{
					Name:  "journey",
					Usage: "Journey number",
				},
				&cli.StringFlag{
					Name:  "admin",
					Usage: "Administration code of the journey",
				},
				&cli.StringFlag{
					Name:  "group",
					Usage: "Level of detail (basic or detailed)",
					Value: inspect.GroupBasic,
				},
				&cli.StringFlag{
					Name:  "format",
					Usage: "Output format (json or pretty)",
					Value: string(inspect.OutputJSON),
				},
				&cli.StringFlag{
					Name:  "filter",
					Usage: `Journey filter expression, e.g. category == "IC"`,
				},
			),
			Action: func(c *cli.Context) error {
				var filter *inspect.Filter
				if c.IsSet("filter") {
					var err error
					filter, err = inspect.NewFilter(c.String("filter"))
					if err != nil {
						return err
					}
				}

				result, err := loadModel(c)
				if err != nil {
					return err
				}
				model := result.Model

				group := c.String("group")
				format := inspect.OutputFormat(c.String("format"))

				switch {
				case c.IsSet("stop"):
					stop, ok := model.StopByID(c.Int("stop"))
					if !ok {
						return fmt.Errorf("unknown stop %d", c.Int("stop"))
					}
					return inspect.Render(c.App.Writer, inspect.DescribeStop(model, stop), group, format)
				case c.IsSet("journey"):
					key := timetable.JourneyKey{Number: c.Int("journey"), Administration: c.String("admin")}
					journey, ok := model.JourneyByKey(key)
					if !ok {
						return fmt.Errorf("%w: %s", timetable.ErrUnknownJourney, key)
					}
					return inspect.Render(c.App.Writer, inspect.DescribeJourney(model, journey), group, format)
				default:
					summaries, err := inspect.Journeys(model, filter)
					if err != nil {
						return err
					}
					return inspect.Render(c.App.Writer, summaries, group, format)
				}
			},
		},
		{
			Name:  "versions",
			Usage: "List the supported HRDF versions",
			Action: func(c *cli.Context) error {
				manifests, err := datasets.Manifests()
				if err != nil {
					return err
				}

				for _, manifest := range manifests {
					fmt.Fprintf(c.App.Writer, "%s (%s) platforms=%s stop-types=%s\n",
						manifest.Version.Short(), manifest.Version, manifest.Platforms, manifest.StopTypes)
					for _, file := range manifest.Readable() {
						fmt.Fprintf(c.App.Writer, "  %-12s %-9s %s\n", file.Name, file.Role, file.Family)
					}
				}

				return nil
			},
		},
	}
}

func printIssues(w io.Writer, result manager.Result) {
	for _, issue := range result.Issues {
		fmt.Fprintln(w, issue.Error())
	}
}

func printDepartures(w io.Writer, model *timetable.Model, departures []timetable.Departure) {
	for _, departure := range departures {
		journey := model.Journey(departure.Journey)
		summary := inspect.Summarize(model, journey)

		platform := ""
		if p := model.Platform(departure.Platform); p != nil {
			platform = p.Label
		}

		fmt.Fprintf(w, "%s  %-4s %-6s %-30s %s\n",
			departure.Time.Format("2006-01-02 15:04"),
			summary.Category,
			summary.Line,
			summary.Destination,
			platform,
		)
	}
}
