package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bug-reproducer/internal/application/port/input"
	"bug-reproducer/internal/di"
	"bug-reproducer/internal/domain/entity"
	"bug-reproducer/internal/infrastructure/userinteraction"
)

const (
	exitNotReproduced = 2
	exitTimedOut      = 3
)

// exitError carries a process exit code for a run that completed but did
// not reproduce the bug.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var (
	targetURL      string
	bugDescription string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Attempt to reproduce a bug on a web page",
	Example: `  repro run --url http://localhost:3000 \
    --bug "Adding an item twice shows a cart count of 1"`,
	RunE: runReproduce,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&targetURL, "url", "u", "", "target page URL")
	f.StringVarP(&bugDescription, "bug", "b", "", "natural-language bug description")
	f.Int("max-steps", 30, "maximum number of steps")
	f.Duration("timeout", 0, "wall-clock budget for the run (default 10m)")
	f.Bool("headless", true, "run the browser without a window")
	_ = runCmd.MarkFlagRequired("url")
	_ = runCmd.MarkFlagRequired("bug")

	_ = v.BindPFlag("run.max_steps", f.Lookup("max-steps"))
	_ = v.BindPFlag("run.timeout", f.Lookup("timeout"))
	_ = v.BindPFlag("run.headless", f.Lookup("headless"))

	rootCmd.AddCommand(runCmd)
}

func runReproduce(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(cfg, bugDescription, userinteraction.NewConsoleProgress())
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer container.Close()

	req := input.RunRequest{
		BugDescription: bugDescription,
		TargetURL:      targetURL,
		MaxSteps:       cfg.Run.MaxSteps,
		Timeout:        cfg.Run.Timeout,
		Headless:       cfg.Run.Headless,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	container.Logger.Info("Run started", "url", req.TargetURL, "maxSteps", req.MaxSteps, "timeout", req.Timeout)
	report, runErr := container.Reproducer.Run(ctx, req)
	if report == nil {
		return runErr
	}
	if runErr != nil {
		container.Logger.Error("Run failed", "error", runErr)
	}

	printSummary(ctx, cmd.OutOrStdout(), container, report)
	return exitFor(report.Status)
}

func printSummary(ctx context.Context, out io.Writer, c *di.Container, report *entity.RunReport) {
	fmt.Fprintf(out, "\nRun %s: %s\n", report.RunID, statusColor(report.Status).Sprint(report.Status))
	if report.Reason != "" {
		fmt.Fprintf(out, "Reason: %s\n", report.Reason)
	}
	fmt.Fprintf(out, "Steps: %d\n", len(report.Steps))

	key := report.ArtifactRefs.Report
	if key == "" {
		key = path.Join(report.RunID, "report.json")
	}
	if url, err := c.Store.GetURL(ctx, key); err == nil {
		fmt.Fprintf(out, "Report: %s\n", url)
	} else {
		c.Logger.Warn("Report URL unavailable", "key", key, "error", err)
	}
	if lp, ok := c.Logger.(interface{ Path() string }); ok && lp.Path() != "" {
		fmt.Fprintf(out, "Log: %s\n", lp.Path())
	}
}

func statusColor(status entity.RunStatus) *color.Color {
	switch status {
	case entity.RunReproduced:
		return color.New(color.FgGreen, color.Bold)
	case entity.RunTimedOut:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// exitFor maps a run outcome to the process exit status: 0 when the bug was
// reproduced.
func exitFor(status entity.RunStatus) error {
	switch status {
	case entity.RunReproduced:
		return nil
	case entity.RunTimedOut:
		return &exitError{code: exitTimedOut}
	default:
		return &exitError{code: exitNotReproduced}
	}
}
