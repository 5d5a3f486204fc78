package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"bug-reproducer/internal/domain/entity"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

const maxRawInError = 500

type replyAction struct {
	Type     string `json:"type"`
	Selector string `json:"selector"`
	Text     string `json:"text"`
	URL      string `json:"url"`
	Query    string `json:"query"`
}

type reply struct {
	Thought string       `json:"thought"`
	Action  *replyAction `json:"action"`
	Status  string       `json:"status"`
	Reason  string       `json:"reason"`
}

// ParseResponse repairs and validates a model reply. The reply is read as
// JSON directly, then from the first fenced code block; anything else is a
// *entity.MalformedPolicyResponseError. Contract violations come back as
// *entity.PolicyValidationError.
func ParseResponse(raw string) (entity.PolicyResponse, error) {
	r, err := decodeReply(raw)
	if err != nil {
		return entity.PolicyResponse{}, err
	}

	if r.Action == nil || strings.TrimSpace(r.Action.Type) == "" {
		return entity.PolicyResponse{}, &entity.PolicyValidationError{Field: "action.type", Reason: "missing"}
	}

	status := entity.PolicyStatus(strings.ToLower(strings.TrimSpace(r.Status)))
	if status == "" {
		status = entity.PolicyInProgress
	}
	if !status.Valid() {
		return entity.PolicyResponse{}, &entity.PolicyValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", r.Status)}
	}

	reason := strings.TrimSpace(r.Reason)
	if status.Terminal() && reason == "" {
		return entity.PolicyResponse{}, &entity.PolicyValidationError{Field: "reason", Reason: "required when status is " + string(status)}
	}

	action, err := entity.ParseAction(r.Action.Type, r.Action.Selector, r.Action.Text, r.Action.URL, r.Action.Query)
	if err != nil {
		if !status.Terminal() {
			return entity.PolicyResponse{}, &entity.PolicyValidationError{Field: "action", Reason: err.Error()}
		}
		// A terminal decision does not execute its action.
		action, _ = entity.NewWait(0)
	}

	return entity.PolicyResponse{
		Thought: strings.TrimSpace(r.Thought),
		Action:  action,
		Status:  status,
		Reason:  reason,
	}, nil
}

func decodeReply(raw string) (reply, error) {
	var r reply
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return r, &entity.MalformedPolicyResponseError{Raw: raw, Err: errors.New("empty reply")}
	}

	directErr := json.Unmarshal([]byte(trimmed), &r)
	if directErr == nil {
		return r, nil
	}

	if m := fencedBlockRe.FindStringSubmatch(trimmed); m != nil {
		r = reply{}
		if err := json.Unmarshal([]byte(m[1]), &r); err != nil {
			return r, &entity.MalformedPolicyResponseError{Raw: clip(raw), Err: fmt.Errorf("fenced block: %w", err)}
		}
		return r, nil
	}

	return r, &entity.MalformedPolicyResponseError{Raw: clip(raw), Err: directErr}
}

func clip(s string) string {
	if len(s) > maxRawInError {
		return s[:maxRawInError] + "..."
	}
	return s
}
