package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/audit"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/config"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/constants"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/database"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/handlers"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/logging"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/matcher"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/preflight"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/server"
)

// Exit codes
const (
	exitValid   = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options holds the parsed command-line flags
type options struct {
	configPath string
	serve      bool
	rule       string
	digits     int
	places     int
	jsonOutput bool
	values     []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to configuration file (default: ./"+config.Defaults.ConfigPath+")")
	fs.BoolVar(&opts.serve, "serve", false, "run the HTTP API server")
	fs.StringVar(&opts.rule, "rule", "", "named rule to check values against (default: default_rule)")
	fs.IntVar(&opts.digits, "digits", 0, "maximum total significant digits for an ad-hoc rule")
	fs.IntVar(&opts.places, "places", -1, "maximum decimal places for an ad-hoc rule (negative: no limit)")
	fs.BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.digits < 0 {
		return nil, fmt.Errorf("-digits must not be negative")
	}
	opts.values = fs.Args()

	return opts, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintf(stderr, "Invalid arguments: %v\n", err)
		}
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return exitUsage
	}

	results, err := preflight.EnsureDirs(preflight.ChecksFor(cfg))
	if err != nil {
		fmt.Fprintf(stderr, "Preflight checks failed: %v\n", err)
		return exitUsage
	}
	for _, result := range results {
		if result.Created {
			fmt.Fprintf(stderr, "Created %s directory: %s\n", result.Purpose, result.Path)
		}
	}

	logging.Init(logging.LoggerConfig{
		Level:       logging.Level(cfg.Logging.Level),
		Format:      cfg.Logging.Format,
		Output:      stderr,
		FilePath:    cfg.Logging.Path,
		ServiceName: config.AppName,
		Version:     config.Version(),
	})
	logger := logging.GetLogger()

	rules, err := cfg.RuleSet()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to build rules: %v\n", err)
		return exitUsage
	}

	ctx := context.Background()

	var db database.Driver
	if cfg.Audit.Enabled {
		db, err = openAudit(ctx, cfg.Audit)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open audit database: %v\n", err)
			return exitUsage
		}
		defer db.Close()
		logger.WithField("connection", cfg.Audit.Connection).Infof("Audit trail enabled (%s)", db.Dialect())
	}

	if opts.serve {
		logConfigSummary(logger, cfg, rules)
		srv := server.New(cfg, rules, db, logger, config.Version())
		if err := srv.Run(); err != nil {
			logger.ErrorWithErr("Server error", err)
			return exitInvalid
		}
		logger.Info("Server stopped gracefully")
		return exitValid
	}

	ruleName, m, err := selectMatcher(opts, rules)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}

	values := opts.values
	if len(values) == 0 {
		values, err = readValues(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to read values: %v\n", err)
			return exitUsage
		}
	}
	if len(values) == 0 {
		fmt.Fprintln(stderr, "No values to check")
		return exitUsage
	}

	var recorder *audit.Recorder
	if db != nil {
		recorder = audit.NewRecorder(db)
	}

	resp, err := check(ctx, ruleName, m, values, recorder, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to record check: %v\n", err)
		return exitInvalid
	}

	if err := printResults(stdout, resp, opts.jsonOutput); err != nil {
		fmt.Fprintf(stderr, "Failed to write results: %v\n", err)
		return exitUsage
	}

	if !resp.Valid {
		return exitInvalid
	}
	return exitValid
}

// selectMatcher picks an ad-hoc matcher from -digits/-places or a named rule.
func selectMatcher(opts *options, rules *matcher.RuleSet) (string, matcher.Matcher, error) {
	if opts.digits > 0 || opts.places >= 0 {
		params := []int{constants.DefaultMaxTotalDigits}
		if opts.digits > 0 {
			params[0] = opts.digits
		}
		if opts.places >= 0 {
			params = append(params, opts.places)
		}
		m, err := matcher.NewDecimalNumberMatcherFromParams(params...)
		if err != nil {
			return "", nil, err
		}
		return "", m, nil
	}

	name, m, err := rules.Resolve(opts.rule)
	if err != nil {
		return "", nil, err
	}
	return name, m, nil
}

// readValues reads one value per line, skipping blank lines.
func readValues(r io.Reader) ([]string, error) {
	var values []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		values = append(values, line)
	}
	return values, scanner.Err()
}

func check(ctx context.Context, ruleName string, m matcher.Matcher, values []string, recorder *audit.Recorder, logger *logging.Logger) (handlers.ValidateResponse, error) {
	resp := handlers.ValidateResponse{
		Rule:    ruleName,
		Valid:   true,
		Results: make([]handlers.ValueResult, 0, len(values)),
	}

	checks := make([]audit.Check, 0, len(values))
	for _, value := range values {
		result := m.Match(value)
		logger.LogCheck(ruleName, value, result)

		item := handlers.ValueResult{
			Value:  value,
			Valid:  result.IsValid(),
			Errors: result.Errors,
		}
		if !item.Valid {
			resp.Valid = false
		}

		resp.Results = append(resp.Results, item)
		checks = append(checks, audit.Check{Value: value, Result: result})
	}

	if recorder != nil {
		writeCtx, cancel := context.WithTimeout(ctx, constants.AuditWriteTimeout)
		defer cancel()
		records, err := recorder.Record(writeCtx, ruleName, checks)
		if err != nil {
			return resp, err
		}
		for i := range resp.Results {
			resp.Results[i].CheckID = records[i].ID
		}
	}

	return resp, nil
}

func printResults(w io.Writer, resp handlers.ValidateResponse, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	for _, item := range resp.Results {
		status := "OK"
		if !item.Valid {
			parts := make([]string, 0, len(item.Errors))
			for _, e := range item.Errors {
				parts = append(parts, e.Code+" "+e.Message)
			}
			status = strings.Join(parts, "; ")
		}
		if _, err := fmt.Fprintf(w, "%v: %s\n", item.Value, status); err != nil {
			return err
		}
	}
	return nil
}

// openAudit connects to the audit store and creates its table
func openAudit(ctx context.Context, cfg config.AuditConfig) (database.Driver, error) {
	driver, err := database.NewDriver(database.Config{
		ConnectionString: cfg.Connection,
		MaxOpenConns:     cfg.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}

	if err := driver.Connect(ctx); err != nil {
		return nil, err
	}

	if err := audit.NewRecorder(driver).EnsureSchema(ctx); err != nil {
		driver.Close()
		return nil, err
	}

	return driver, nil
}

// logConfigSummary logs the loaded configuration
func logConfigSummary(logger *logging.Logger, cfg *config.AppConfig, rules *matcher.RuleSet) {
	logger.Info("=== Configuration Summary ===")
	logger.Infof("Server: %s:%d%s", cfg.Server.Host, cfg.Server.Port, cfg.Server.Prefix)
	logger.Infof("Batch max size: %d", cfg.Batch.MaxSize)
	logger.Infof("Audit enabled: %v", cfg.Audit.Enabled)
	def := rules.Default().Config()
	logger.Infof("Default rule: %q (max_total_digits=%d)", rules.DefaultName(), def.MaxTotalDigits)
	for _, name := range rules.Names() {
		m, _ := rules.Lookup(name)
		c := m.Config()
		if c.HasDecimalPlacesLimit() {
			logger.Infof("Rule %s: max_total_digits=%d max_decimal_places=%d", name, c.MaxTotalDigits, *c.MaxDecimalPlaces)
		} else {
			logger.Infof("Rule %s: max_total_digits=%d", name, c.MaxTotalDigits)
		}
	}
	logger.Info("============================")
}
