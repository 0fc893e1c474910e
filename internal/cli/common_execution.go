package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jekabs-s/urlookup/internal/config"
	"github.com/jekabs-s/urlookup/internal/engine"
	"github.com/jekabs-s/urlookup/internal/registry"
)

// lookupFlags are the engine overrides shared by lookup and serve.
type lookupFlags struct {
	workers  int
	attempts int
	backoff  time.Duration
	timeout  time.Duration
}

// register adds the engine override flags to cmd.
func (f *lookupFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.workers, "workers", config.DefaultWorkers, "number of shards queried concurrently")
	cmd.Flags().IntVar(&f.attempts, "attempts", config.DefaultAttempts, "registry attempts per name")
	cmd.Flags().DurationVar(&f.backoff, "backoff", config.DefaultBackoff, "fixed wait between attempts")
	cmd.Flags().DurationVar(&f.timeout, "timeout", config.DefaultTimeout, "per-request registry timeout")
}

// apply overrides cfg with explicitly set flags. CLI flags take precedence
// over environment variables and the config file.
func (f *lookupFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("workers") {
		cfg.Lookup.Workers = f.workers
	}
	if cmd.Flags().Changed("attempts") {
		cfg.Lookup.Attempts = f.attempts
	}
	if cmd.Flags().Changed("backoff") {
		cfg.Lookup.Backoff = f.backoff
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Registry.Timeout = f.timeout
	}
}

// effectiveConfig returns a copy of the global config with flag overrides
// applied, validated.
func effectiveConfig(cmd *cobra.Command, flags *lookupFlags) (*config.Config, error) {
	cfg := *config.GetGlobalConfig()
	flags.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// newEngine builds the registry client and lookup engine from cfg.
func newEngine(cfg *config.Config, metrics engine.MetricsRecorder) (*engine.Engine, error) {
	client, err := registry.NewClient(registry.Config{
		BaseURL:    cfg.Registry.BaseURL,
		ResourceID: cfg.Registry.ResourceID,
		Timeout:    cfg.Registry.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating registry client: %w", err)
	}

	eng, err := engine.New(client, engine.Config{
		Workers: cfg.Lookup.Workers,
		Retry: engine.RetryPolicy{
			Attempts: cfg.Lookup.Attempts,
			Backoff:  cfg.Lookup.Backoff,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return eng.WithMetrics(metrics), nil
}
