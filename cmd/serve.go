package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/edp1096/spkline/internal/metrics"
	"github.com/edp1096/spkline/internal/server"
	"github.com/edp1096/spkline/pkg/analysis"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the calculation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}

			m, err := metrics.NewEngineMetrics(prometheus.NewRegistry())
			if err != nil {
				return err
			}
			engine, err := a.engine(analysis.WithObserver(m))
			if err != nil {
				return err
			}

			library := server.LibraryFunc(a.library)
			if ttl := a.cfg.Server.LibraryTTL; ttl > 0 {
				library = server.CachedLibrary(library, ttl)
			}
			srv := server.New(server.Config{
				Service:     analysis.NewService(engine),
				Library:     library,
				Metrics:     m,
				Log:         a.log,
				CORSOrigins: a.cfg.Server.CORSOrigins,
			})
			return srv.Run(a.cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
