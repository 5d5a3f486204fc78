package userinteraction

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressPort = (*ConsoleProgress)(nil)

// ConsoleProgress prints the reproduction loop as it runs.
type ConsoleProgress struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleProgress() *ConsoleProgress {
	return NewConsoleProgressTo(os.Stdout)
}

func NewConsoleProgressTo(out io.Writer) *ConsoleProgress {
	return &ConsoleProgress{out: out}
}

func (u *ConsoleProgress) ShowStep(_ context.Context, step, maxSteps int, url string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(u.out, "\n━━━ Step %d/%d ━━━\n", step, maxSteps)
	if url != "" {
		dim := color.New(color.Faint)
		dim.Fprintf(u.out, "   %s\n", url)
	}
}

func (u *ConsoleProgress) ShowThinking(_ context.Context, content string) {
	if content == "" {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	blue := color.New(color.FgBlue)
	blue.Fprint(u.out, "💭 Thought: ")

	dim := color.New(color.Faint)
	dim.Fprintln(u.out, truncate(content, 500))
}

func (u *ConsoleProgress) ShowAction(_ context.Context, action entity.Action) {
	u.mu.Lock()
	defer u.mu.Unlock()

	icon := actionIcon(action.Type)
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(u.out, "%s %s\n", icon, truncate(action.String(), 120))
}

func (u *ConsoleProgress) ShowActionResult(_ context.Context, result string, isError bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if isError {
		red := color.New(color.FgRed)
		red.Fprint(u.out, "❌ Error: ")

		dim := color.New(color.Faint)
		dim.Fprintln(u.out, truncate(result, 300))
		return
	}

	green := color.New(color.FgGreen)
	green.Fprintf(u.out, "✓ %s\n", truncate(result, 150))
}

func (u *ConsoleProgress) ShowOutcome(_ context.Context, report *entity.RunReport) {
	if report == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	var c *color.Color
	switch report.Status {
	case entity.RunReproduced:
		c = color.New(color.FgGreen, color.Bold)
	case entity.RunTimedOut:
		c = color.New(color.FgYellow, color.Bold)
	default:
		c = color.New(color.FgRed, color.Bold)
	}

	c.Fprintf(u.out, "\n■ %s after %d step(s)\n", report.Status, len(report.Steps))
	if report.Reason != "" {
		fmt.Fprintf(u.out, "  %s\n", report.Reason)
	}
	if n := len(report.ConsoleErrors); n > 0 {
		dim := color.New(color.Faint)
		dim.Fprintf(u.out, "  %d console error(s), first: %s\n", n, truncate(report.ConsoleErrors[0], 200))
	}
}

func actionIcon(t entity.ActionType) string {
	switch t {
	case entity.ActionClick:
		return "🖱️"
	case entity.ActionInput:
		return "✏️"
	case entity.ActionNavigate:
		return "🌐"
	case entity.ActionWait:
		return "⏳"
	case entity.ActionQueryDatabase:
		return "🗄️"
	}
	return "🔧"
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
