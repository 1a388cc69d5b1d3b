package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/travigo/hrdf/pkg/calendar"
	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
	"github.com/travigo/hrdf/pkg/util"
	"gopkg.in/yaml.v3"
)

// EnvironmentPrefix is the prefix of every environment variable read by
// Load.
const EnvironmentPrefix = "HRDF_"

type Holidays struct {
	Policy string `yaml:"policy" validate:"omitempty,oneof=ignore skip only"`
	// Attributes are the attribute codes that opt a journey into the
	// holiday policy.
	Attributes []string `yaml:"attributes" validate:"dive,required"`
}

type Metrics struct {
	Textfile string `yaml:"textfile"`
}

type Config struct {
	Version  string   `yaml:"version" validate:"omitempty,hrdfversion"`
	Path     string   `yaml:"path" validate:"required"`
	Strict   bool     `yaml:"strict"`
	Encoding string   `yaml:"encoding" validate:"omitempty,oneof=utf-8 iso-8859-1"`
	Workers  int      `yaml:"workers" validate:"gte=0"`
	Holidays Holidays `yaml:"holidays"`
	Metrics  Metrics  `yaml:"metrics"`
}

func Default() Config {
	return Config{
		Version:  datasets.Latest.String(),
		Encoding: string(tokenizer.EncodingUTF8),
		Holidays: Holidays{Policy: string(calendar.HolidayPolicyIgnore)},
	}
}

// Load builds the configuration from the defaults, the optional YAML file
// at path, a .env file in the working directory and HRDF_* environment
// variables, each overriding the previous one. The result is not validated
// so callers can apply flags first.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	if err := cfg.applyEnvironment(util.GetEnvironmentVariables(EnvironmentPrefix)); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvironment(env map[string]string) error {
	for key, value := range env {
		switch key {
		case "VERSION":
			c.Version = value
		case "PATH":
			c.Path = value
		case "ENCODING":
			c.Encoding = value
		case "STRICT":
			strict, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvironmentPrefix, key, err)
			}
			c.Strict = strict
		case "WORKERS":
			workers, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvironmentPrefix, key, err)
			}
			c.Workers = workers
		case "HOLIDAY_POLICY":
			c.Holidays.Policy = value
		case "HOLIDAY_ATTRIBUTES":
			c.Holidays.Attributes = util.RemoveDuplicateStrings(strings.Split(strings.ReplaceAll(value, " ", ""), ","), nil)
		case "METRICS_TEXTFILE":
			c.Metrics.Textfile = value
		}
	}

	return nil
}

func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("hrdfversion", func(fl validator.FieldLevel) bool {
		_, err := datasets.ParseVersion(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}

	return validate.Struct(c)
}

func (c Config) DatasetVersion() (datasets.Version, error) {
	return datasets.ParseVersion(c.Version)
}

func (c Config) HolidayPolicy() (calendar.HolidayPolicy, error) {
	return calendar.ParseHolidayPolicy(c.Holidays.Policy)
}

func (c Config) TextEncoding() tokenizer.Encoding {
	if c.Encoding == "" {
		return tokenizer.EncodingUTF8
	}

	return tokenizer.Encoding(c.Encoding)
}

// WorkerCount is the decoder pool size; zero means one per CPU.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}

	return runtime.GOMAXPROCS(0)
}
