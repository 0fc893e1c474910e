package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jekabs-s/urlookup/internal/config"
	"github.com/jekabs-s/urlookup/internal/logging"
	"github.com/jekabs-s/urlookup/internal/metrics"
	"github.com/jekabs-s/urlookup/internal/server"
)

const bytesPerMB = 1 << 20

// NewServeCmd creates the serve command that exposes the upload endpoint.
func NewServeCmd() *cobra.Command {
	var (
		addr  string
		flags lookupFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the xlsx upload endpoint over HTTP",
		Long: `Starts an HTTP server. POST / with a multipart "file" field holding an xlsx
workbook returns the enriched workbook as entity_ur_data.xlsx. GET /healthz
reports liveness and GET /metrics exposes prometheus metrics.`,
		Example: `  urlookup serve
  urlookup serve --addr 127.0.0.1:9090 --workers 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := effectiveConfig(cmd, &flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			eng, err := newEngine(cfg, metrics.New(reg))
			if err != nil {
				return err
			}

			handler := server.NewHandler(eng, int64(cfg.Server.MaxUploadMB)*bytesPerMB)
			srv := server.New(cfg.Server.Addr, server.NewRouter(*logging.FromContext(cmd.Context()), handler, reg))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info().Ctx(ctx).
				Str("addr", cfg.Server.Addr).
				Int("workers", cfg.Lookup.Workers).
				Msg("serving upload endpoint")

			return server.ListenAndServe(ctx, srv, server.DefaultShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultServerAddr, "listen address")
	flags.register(cmd)

	return cmd
}
