package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/s0up4200/csapi/commonsense"
	"github.com/s0up4200/csapi/config"
	"github.com/s0up4200/csapi/filter"
)

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	client   *commonsense.Client
	filters  *filter.Manager
	registry *prometheus.Registry

	version   = "dev"
	buildTime = "unknown"

	// Command flags
	platformName string
	debugMode    bool
	outputFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "csapi",
	Short: "Query the Common Sense content catalog",
	Long: `csapi is a CLI for the Common Sense content API. It lists, fetches and
searches catalog items, reads taxonomy vocabularies as term trees and can
filter results with expressions or reshape them with jq.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: reportMetrics,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion records build information shown by the version command.
func SetVersion(v, built string) {
	version = v
	buildTime = built
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&platformName, "platform", "", "platform: global, education or media (default from config)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "compose requests without sending them")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: json or table (default from config)")

	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipInit] == "true" {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging, os.Stderr)

	if platformName != "" {
		cfg.API.Platform = platformName
	}
	if cmd.Flags().Changed("debug") {
		cfg.API.Debug = debugMode
	}
	if outputFormat != "" {
		if outputFormat != formatJSON && outputFormat != formatTable {
			return fmt.Errorf("invalid output format: %s", outputFormat)
		}
		cfg.Output.Format = outputFormat
	}

	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return fmt.Errorf("invalid api configuration: %w", err)
	}

	registry = prometheus.NewRegistry()
	client, err = commonsense.NewClient(clientCfg, logger,
		commonsense.WithTimeout(cfg.API.Timeout),
		commonsense.WithRateLimit(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst),
		commonsense.WithMetrics(commonsense.NewMetrics(registry)),
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filters); err != nil {
		return fmt.Errorf("invalid filters in config: %w", err)
	}

	logger.Debug().
		Str("platform", client.Platform().String()).
		Str("host", clientCfg.Host).
		Bool("debug", clientCfg.Debug).
		Int("filters", len(cfg.Filters)).
		Msg("Initialized")

	return nil
}

// reportMetrics logs the request counters gathered during the command
func reportMetrics(cmd *cobra.Command, args []string) error {
	if registry == nil {
		return nil
	}
	families, err := registry.Gather()
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to gather metrics")
		return nil
	}
	for _, mf := range families {
		if mf.GetName() != "commonsense_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			ev := logger.Debug()
			for _, lp := range m.GetLabel() {
				ev = ev.Str(lp.GetName(), lp.GetValue())
			}
			ev.Float64("count", m.GetCounter().GetValue()).Msg("Requests")
		}
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(out),
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// skipInit marks commands that run without config or client.
const skipInit = "skip-init"

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{skipInit: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "csapi %s (built %s)\n", version, buildTime)
		return nil
	},
}
