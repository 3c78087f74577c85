package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// =============================================================================
// CONFIGURATION - Flags, PPH21_* environment variables and .env
// =============================================================================

const envPrefix = "PPH21"

// Config holds the resolved CLI settings. Precedence: flag, environment,
// .env file, default.
type Config struct {
	RatesFile   string
	ProfileFile string
	PayrollFile string

	WithoutContributions bool
	Previous             decimal.Decimal
	First                decimal.Decimal

	Concurrency int
	Metrics     bool

	LogLevel  string
	LogFormat string
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("pph21", pflag.ContinueOnError)
	flags.String("rates", "", "YAML rate table (default: the embedded 2018 table)")
	flags.String("profile", "", "employee profile (.yaml or .json) for a single computation")
	flags.String("payroll", "", "payroll-year file (.yaml or .json) for a batch run")
	flags.Bool("without-contributions", false, "ignore BPJS contributions")
	flags.String("previous", "0", "annual tax computed in the previous cycle")
	flags.String("first", "0", "annual tax computed in the first cycle of the year")
	flags.Int("concurrency", 0, "employees processed in parallel (default: GOMAXPROCS)")
	flags.Bool("metrics", false, "print batch metrics in Prometheus text format to stderr")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "console", "log format: console or json")
	return flags
}

// loadConfig parses args and layers PPH21_* environment variables under them.
// A missing .env file is not an error.
func loadConfig(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return Config{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	previous, err := decimal.NewFromString(v.GetString("previous"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid --previous: %w", err)
	}
	first, err := decimal.NewFromString(v.GetString("first"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid --first: %w", err)
	}

	cfg := Config{
		RatesFile:            v.GetString("rates"),
		ProfileFile:          v.GetString("profile"),
		PayrollFile:          v.GetString("payroll"),
		WithoutContributions: v.GetBool("without-contributions"),
		Previous:             previous,
		First:                first,
		Concurrency:          v.GetInt("concurrency"),
		Metrics:              v.GetBool("metrics"),
		LogLevel:             v.GetString("log-level"),
		LogFormat:            v.GetString("log-format"),
	}

	switch {
	case cfg.ProfileFile == "" && cfg.PayrollFile == "":
		return Config{}, errors.New("one of --profile or --payroll is required")
	case cfg.ProfileFile != "" && cfg.PayrollFile != "":
		return Config{}, errors.New("--profile and --payroll are mutually exclusive")
	}
	return cfg, nil
}
