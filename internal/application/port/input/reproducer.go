package input

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"bug-reproducer/internal/domain/entity"
)

type RunRequest struct {
	BugDescription string
	TargetURL      string
	MaxSteps       int
	Timeout        time.Duration
	Headless       bool
}

func (r RunRequest) Validate() error {
	if strings.TrimSpace(r.BugDescription) == "" {
		return fmt.Errorf("%w: bug description is required", entity.ErrInvalidRunRequest)
	}
	u, err := url.Parse(r.TargetURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: target url %q must be absolute", entity.ErrInvalidRunRequest, r.TargetURL)
	}
	if r.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive", entity.ErrInvalidRunRequest)
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", entity.ErrInvalidRunRequest)
	}
	return nil
}

// Reproducer drives one reproduction attempt. It always returns a report,
// also when the returned error is non-nil.
type Reproducer interface {
	Run(ctx context.Context, req RunRequest) (*entity.RunReport, error)
}
