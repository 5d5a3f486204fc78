package output

import (
	"context"

	"bug-reproducer/internal/domain/entity"
)

// DecisionPolicy chooses the next action. It never fails: implementations
// degrade to a safe fallback decision instead.
type DecisionPolicy interface {
	Decide(ctx context.Context, bugDescription string, obs entity.Observation, history entity.HistoryView) entity.PolicyResponse
}
