package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/fitlink/internal/control"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe backend candidates and show client health",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	app, err := control.NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize fitlink", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "CANDIDATE\tSTATUS\tLATENCY")
	for _, candidate := range cfg.Backend.Candidates {
		start := time.Now()
		status := "ok"
		if err := app.Ping(ctx, candidate); err != nil {
			status = err.Error()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", candidate, status, time.Since(start).Round(time.Millisecond))
	}
	_ = w.Flush()

	app.Client().Initialize(ctx)
	report := app.Health(ctx)

	_, _ = fmt.Fprintln(os.Stdout)
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintf(w, "SYSTEM\t%s\n", report.SystemStatus)
	_, _ = fmt.Fprintf(w, "BASE URL\t%s\n", report.Client.BaseURL)
	_, _ = fmt.Fprintf(w, "CONNECTED\t%t\n", report.Client.Connected)
	_, _ = fmt.Fprintf(w, "BREAKER\t%s\n", report.Backend.Breaker)
	_, _ = fmt.Fprintf(w, "MAX RETRIES\t%d\n", report.Client.MaxRetries)
	for _, reason := range report.Reasons {
		_, _ = fmt.Fprintf(w, "REASON\t%s\n", reason)
	}
	_ = w.Flush()

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = app.Stop(stopCtx)
}
