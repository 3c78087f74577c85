/*
main.go - Command-line entry point

PURPOSE:
  Computes PPh21 income tax and BPJS deductions from files and prints the
  result as JSON on stdout. Logs and metrics go to stderr.

MODES:
  1. Single computation (--profile): one profile, carries from flags
  2. Batch run (--payroll): every employee's cycles for a payroll year,
     carries threaded from cycle to cycle

COMMAND-LINE FLAGS:
  --rates                  YAML rate table (default: embedded 2018 table)
  --profile                Employee profile, .yaml or .json
  --payroll                Payroll-year file, .yaml or .json
  --without-contributions  Ignore BPJS contributions
  --previous, --first      Carries for a single computation
  --concurrency            Employees processed in parallel
  --metrics                Dump batch metrics to stderr
  --log-level, --log-format

ENVIRONMENT:
  Every flag can be set as PPH21_<FLAG>, dashes as underscores:
    PPH21_RATES=rates_2019.yaml PPH21_LOG_LEVEL=debug
  A .env file in the working directory is loaded first.

EXAMPLES:
  # One employee, first cycle of the year
  ./pph21 --profile=employee.yaml

  # March cycle after a February computation of 1,923,300
  ./pph21 --profile=employee.yaml --previous=1923300 --first=1923300

  # Whole payroll year with metrics
  ./pph21 --payroll=2018.yaml --concurrency=8 --metrics

SEE ALSO:
  - pph21/reconcile.go: Single computation
  - batch/runner.go: Batch run
  - factory/: File formats
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/batch"
	"github.com/warp/pph21-engine/factory"
	"github.com/warp/pph21-engine/payroll"
	"github.com/warp/pph21-engine/pph21"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "pph21: %v\n", err)
		os.Exit(1)
	}
}

// SingleOutput is the JSON document printed for a single computation.
type SingleOutput struct {
	EmployeeID    string          `json:"employee_id,omitempty"`
	CalculatedTax pph21.Result    `json:"calculated_tax"`
	Deduction     pph21.Deduction `json:"deduction"`
	TakeHomePay   decimal.Decimal `json:"take_home_pay"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	rates, err := loadRates(cfg.RatesFile)
	if err != nil {
		return err
	}
	logger.Debug().Str("rates", ratesSource(cfg.RatesFile)).Msg("rate table loaded")

	var opts []pph21.Option
	if cfg.WithoutContributions {
		opts = append(opts, pph21.WithoutContributions())
	}
	opts = append(opts, pph21.WithLogger(logger))

	if cfg.ProfileFile != "" {
		return runSingle(cfg, rates, opts, stdout)
	}
	return runBatch(ctx, cfg, rates, opts, logger, stdout, stderr)
}

func runSingle(cfg Config, rates *payroll.RateConfiguration, opts []pph21.Option, stdout io.Writer) error {
	profile, err := factory.LoadProfile(cfg.ProfileFile)
	if err != nil {
		return err
	}

	result, deduction, err := pph21.NewReconciler(rates, opts...).Calculate(profile, cfg.Previous, cfg.First)
	if err != nil {
		return err
	}

	return writeJSON(stdout, SingleOutput{
		EmployeeID:    profile.EmployeeID,
		CalculatedTax: result,
		Deduction:     deduction,
		TakeHomePay:   pph21.TakeHomePay(profile.TaxMethod, pph21.MonthlySalary(profile), deduction.MonthlyTax, deduction.Contributions()),
	})
}

func runBatch(ctx context.Context, cfg Config, rates *payroll.RateConfiguration, opts []pph21.Option, logger zerolog.Logger, stdout, stderr io.Writer) error {
	employees, err := factory.LoadPayroll(cfg.PayrollFile)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	runner := batch.NewRunner(rates, batch.NewCarryLedger(),
		batch.WithConcurrency(cfg.Concurrency),
		batch.WithLogger(logger),
		batch.WithMetrics(batch.NewMetrics(reg)),
		batch.WithReconcilerOptions(opts...),
	)

	report, err := runner.Run(ctx, employees)
	if err != nil {
		return err
	}
	if err := writeJSON(stdout, report); err != nil {
		return err
	}

	if cfg.Metrics {
		return dumpMetrics(reg, stderr)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func newLogger(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	switch cfg.LogFormat {
	case "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func loadRates(path string) (*payroll.RateConfiguration, error) {
	if path == "" {
		return factory.EmbeddedRates()
	}
	return factory.LoadRates(path)
}

func ratesSource(path string) string {
	if path == "" {
		return "embedded 2018"
	}
	return path
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func dumpMetrics(g prometheus.Gatherer, w io.Writer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
