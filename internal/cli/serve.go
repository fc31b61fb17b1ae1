package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/mergegate/internal/api"
	"github.com/sprite-ai/mergegate/internal/history"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the mergegate evaluation pipeline.

Endpoints:
  GET  /health          — Health check
  POST /api/classify    — Classify a change descriptor
  POST /api/evaluate    — Run the full gating pipeline
  POST /api/doc/upsert  — Upsert a managed document section
  GET  /api/history     — Evaluation audit log
  GET  /api/ws          — WebSocket for interactive sessions`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1", "address to listen on")
	serveCmd.Flags().IntP("port", "p", 6143, "port to listen on")
	serveCmd.Flags().String("history", "", "data directory for the evaluation audit log")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var hist *history.Store
	if dataDir, _ := cmd.Flags().GetString("history"); dataDir != "" {
		hist, err = history.Open(dataDir)
		if err != nil {
			return err
		}
		defer hist.Close()
	}

	addr, _ := cmd.Flags().GetString("addr")
	port, _ := cmd.Flags().GetInt("port")

	listen := fmt.Sprintf("%s:%d", addr, port)
	srv := api.New(listen, newEngine(cfg), hist)
	return srv.ListenAndServe()
}
