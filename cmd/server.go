package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandlbn/crate-checker/internal/server"
)

var (
	serverPortFlag int
	serverHostFlag string
	serverCORSFlag bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the HTTP API server",
	Long: `Run an HTTP API exposing the checker over REST:

  GET  /health                            Liveness probe
  GET  /metrics                           Request and cache counters
  GET  /api/crates/{name}                 Crate metadata
  GET  /api/crates/{name}/{version}       Version existence check
  GET  /api/crates/{name}/{version}/deps  Dependencies
  GET  /api/crates/{name}/stats           Download statistics
  GET  /api/crates/{name}/status          Yank status classification
  GET  /api/search?q=...                  Crate search
  POST /api/batch                         Batch check (three JSON shapes)`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&serverPortFlag, "port", "p", 0, "listen port (default from config)")
	serverCmd.Flags().StringVar(&serverHostFlag, "host", "", "listen host (default from config)")
	serverCmd.Flags().BoolVar(&serverCORSFlag, "cors", false, "enable permissive CORS headers")
}

func runServer(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}

	cfg := deps.cfg
	if serverPortFlag != 0 {
		cfg.Server.Port = serverPortFlag
	}
	if serverHostFlag != "" {
		cfg.Server.Host = serverHostFlag
	}
	if serverCORSFlag {
		cfg.Server.EnableCORS = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, deps.logger)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
