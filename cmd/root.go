package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/dmdoc/internal/config"
	"github.com/zjrosen/dmdoc/internal/docsource"
	"github.com/zjrosen/dmdoc/internal/flags"
	"github.com/zjrosen/dmdoc/internal/log"
	"github.com/zjrosen/dmdoc/internal/tracing"
	"github.com/zjrosen/dmdoc/internal/xref"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config

	tracer          trace.Tracer = tracing.NoopTracer()
	tracingProvider *tracing.Provider
	logCleanup      func()
)

var rootCmd = &cobra.Command{
	Use:   "dmdoc",
	Short: "Cross-reference documentation for DM object trees",
	Long: `dmdoc scans documentation sources for dm:proc, dm:verb, dm:atom and dm:var
declarations, builds the path-addressed object registry and resolves every
dm:p, dm:v and dm:a cross-reference against it.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) { teardown() },
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .dmdoc/config.yaml, then ~/.config/dmdoc/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"log at debug level")
	rootCmd.PersistentFlags().Int("workers", 0, "parallel signature parsers (overrides config)")

	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("sources", defaults.Sources)
	viper.SetDefault("extensions", defaults.Extensions)
	viper.SetDefault("workers", defaults.Workers)
	viper.SetDefault("add_function_parentheses", defaults.AddFunctionParentheses)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .dmdoc/config.yaml (current directory)
		// 2. ~/.config/dmdoc/config.yaml (user config)
		if _, err := os.Stat(config.DefaultPath); err == nil {
			viper.SetConfigFile(config.DefaultPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "dmdoc"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// A missing config file leaves the defaults in place.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "dmdoc: reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setup validates configuration and starts logging and tracing.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "init" {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := log.ParseLevel(cfg.Log.Level)
	if debugFlag {
		level = log.LevelDebug
	}
	cleanup, err := log.Init(cfg.Log.Path, level)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	log.Debug(log.CatConfig, "Loaded config", "file", viper.ConfigFileUsed(), "sources", cfg.Sources)

	tc := cfg.Tracing
	if tc.Enabled && tc.Exporter == "file" && tc.FilePath == "" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tc)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	tracingProvider = provider
	tracer = provider.Tracer()
	return nil
}

func teardown() {
	if tracingProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingProvider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Failed to flush traces", err)
		}
	}
	if logCleanup != nil {
		logCleanup()
	}
}

// builderOptions maps configuration onto the build orchestrator.
func builderOptions(c config.Config, strict bool) xref.Options {
	fl := flags.New(c.Flags)
	if strict {
		fl = fl.With(flags.FlagStrictDuplicates, true)
	}
	return xref.Options{
		Workers:   c.Workers,
		AddParens: c.AddFunctionParentheses,
		CacheTTL:  c.Cache.TTL,
		Flags:     fl,
		Tracer:    tracer,
	}
}

// sourceRoots returns the directories named on the command line, or the
// configured sources.
func sourceRoots(c config.Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	return c.Sources
}

func loadDocuments(c config.Config, roots []string) ([]*docsource.Document, error) {
	docs, err := docsource.NewLoader(c.Extensions).LoadDirs(roots)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}
	return docs, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
