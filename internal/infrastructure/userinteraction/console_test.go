package userinteraction

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"bug-reproducer/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgress(t *testing.T) (*ConsoleProgress, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	buf := new(bytes.Buffer)
	return NewConsoleProgressTo(buf), buf
}

func TestConsoleProgress_Step(t *testing.T) {
	p, buf := newProgress(t)
	ctx := context.Background()

	p.ShowStep(ctx, 3, 30, "https://shop.test/cart")
	p.ShowThinking(ctx, "The cart badge should update")
	p.ShowThinking(ctx, "")

	click, err := entity.NewClick(`text="Add to Cart"`)
	require.NoError(t, err)
	p.ShowAction(ctx, click)
	p.ShowActionResult(ctx, "clicked", false)
	p.ShowActionResult(ctx, "element not found", true)

	out := buf.String()
	assert.Contains(t, out, "Step 3/30")
	assert.Contains(t, out, "https://shop.test/cart")
	assert.Contains(t, out, "Thought: The cart badge should update")
	assert.Contains(t, out, `click text="Add to Cart"`)
	assert.Contains(t, out, "✓ clicked")
	assert.Contains(t, out, "Error: element not found")
	assert.Equal(t, 1, strings.Count(out, "Thought:"))
}

func TestConsoleProgress_Outcome(t *testing.T) {
	p, buf := newProgress(t)

	p.ShowOutcome(context.Background(), &entity.RunReport{
		Status:        entity.RunReproduced,
		Reason:        "Badge shows 0 after adding an item",
		Steps:         make([]entity.ExecutionStep, 4),
		ConsoleErrors: []string{"TypeError: count is undefined"},
	})
	p.ShowOutcome(context.Background(), nil)

	out := buf.String()
	assert.Contains(t, out, "reproduced after 4 step(s)")
	assert.Contains(t, out, "Badge shows 0 after adding an item")
	assert.Contains(t, out, "1 console error(s), first: TypeError: count is undefined")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "абв...", truncate("абвгд", 3))
}
