package output

import (
	"context"

	"bug-reproducer/internal/domain/entity"
)

type ProgressPort interface {
	ShowStep(ctx context.Context, step, maxSteps int, url string)
	ShowThinking(ctx context.Context, content string)
	ShowAction(ctx context.Context, action entity.Action)
	ShowActionResult(ctx context.Context, result string, isError bool)
	ShowOutcome(ctx context.Context, report *entity.RunReport)
}
