package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vietddude/fitlink/internal/client"
	"github.com/vietddude/fitlink/internal/control"
	"github.com/vietddude/fitlink/internal/core/domain"
)

var waitFor time.Duration

var configCmd = &cobra.Command{
	Use:   "config <exercise-type>",
	Short: "Fetch the analysis config for an exercise",
	Args:  cobra.ExactArgs(1),
	Run: oneShot(func(ctx context.Context, c *client.Client, args []string) (any, error) {
		cfg, err := c.GetExerciseConfig(ctx, args[0])
		if err != nil {
			return nil, err
		}
		slog.Info("Exercise config loaded", "exercise", cfg.ExerciseType, "source", cfg.Source)
		return cfg, nil
	}),
}

var frameImage string

var frameCmd = &cobra.Command{
	Use:   "frame <exercise-type>",
	Short: "Analyze a single camera frame",
	Args:  cobra.ExactArgs(1),
	Run: oneShot(func(ctx context.Context, c *client.Client, args []string) (any, error) {
		data, err := os.ReadFile(frameImage)
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		pose, err := c.AnalyzeFrame(ctx, base64.StdEncoding.EncodeToString(data), args[0])
		if err != nil {
			return nil, err
		}
		slog.Info("Frame analyzed", "stage", pose.Stage, "rep", pose.CurrentRep, "source", pose.Source)
		return pose, nil
	}),
}

var uploadCmd = &cobra.Command{
	Use:   "upload <video-file> <exercise-type>",
	Short: "Upload a recorded session for analysis",
	Args:  cobra.ExactArgs(2),
	Run: oneShot(func(ctx context.Context, c *client.Client, args []string) (any, error) {
		last := -1
		return c.UploadVideo(ctx, args[0], args[1], func(p domain.UploadProgress) {
			pct := int(p.Fraction() * 100)
			if pct/10 != last/10 {
				last = pct
				slog.Info("Uploading", "percent", pct, "sent", p.Sent, "total", p.Total)
			}
		})
	}),
}

var summaryReq domain.SessionSummaryRequest

var summaryCmd = &cobra.Command{
	Use:   "summary <exercise-type>",
	Short: "Submit a finished session summary",
	Args:  cobra.ExactArgs(1),
	Run: oneShot(func(ctx context.Context, c *client.Client, args []string) (any, error) {
		req := summaryReq
		req.ExerciseType = args[0]
		return c.SubmitSessionSummary(ctx, req)
	}),
}

func init() {
	for _, cmd := range []*cobra.Command{configCmd, frameCmd, uploadCmd, summaryCmd} {
		cmd.Flags().DurationVar(&waitFor, "wait", 0, "when offline, wait this long for the queued request to replay")
		rootCmd.AddCommand(cmd)
	}

	frameCmd.Flags().StringVar(&frameImage, "image", "", "path to a JPEG frame")
	_ = frameCmd.MarkFlagRequired("image")

	summaryCmd.Flags().Float64Var(&summaryReq.Duration, "duration", 0, "session duration in seconds")
	summaryCmd.Flags().IntVar(&summaryReq.TotalReps, "reps", 0, "total repetitions")
	summaryCmd.Flags().Float64Var(&summaryReq.AverageAccuracy, "accuracy", 0, "average accuracy (0-100)")
	summaryCmd.Flags().StringVar(&summaryReq.UserID, "user", "", "user id")
}

type operation func(ctx context.Context, c *client.Client, args []string) (any, error)

// oneShot runs a single client operation and prints its result as JSON.
func oneShot(op operation) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := runOperation(cmd, args, op); err != nil {
			slog.Error("Operation failed", "command", cmd.Name(), "error", err)
			os.Exit(1)
		}
	}
}

func runOperation(cmd *cobra.Command, args []string, op operation) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	app, err := control.NewApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := app.Client()
	c.Initialize(ctx)

	result, err := op(ctx, c, args)
	if id, ok := domain.AsDeferred(err); ok {
		if waitFor <= 0 {
			return printJSON(map[string]string{"queued": id})
		}
		slog.Info("Backend unreachable, waiting for replay", "request_id", id, "wait", waitFor)

		waitCtx, cancel := context.WithTimeout(ctx, waitFor)
		defer cancel()
		go app.WatchConnectivity(waitCtx)
		result, err = c.Await(waitCtx, id)
	}
	if err != nil {
		return err
	}
	return printJSON(result)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
