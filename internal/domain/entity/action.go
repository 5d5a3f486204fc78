package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ActionType string

const (
	ActionClick         ActionType = "click"
	ActionInput         ActionType = "input"
	ActionWait          ActionType = "wait"
	ActionNavigate      ActionType = "navigate"
	ActionQueryDatabase ActionType = "query_database"
)

func (t ActionType) Valid() bool {
	switch t {
	case ActionClick, ActionInput, ActionWait, ActionNavigate, ActionQueryDatabase:
		return true
	}
	return false
}

// Action is one UI step chosen by the decision policy. The variant is
// selected by Type and each variant carries only its own fields. Values are
// obtained from the New* constructors or ParseAction, which reject
// incomplete variants.
type Action struct {
	Type     ActionType    `json:"type"`
	Selector string        `json:"selector,omitempty"`
	Text     string        `json:"text,omitempty"`
	URL      string        `json:"url,omitempty"`
	Query    string        `json:"query,omitempty"`
	Duration time.Duration `json:"-"`
}

func NewClick(selector string) (Action, error) {
	return newAction(Action{Type: ActionClick, Selector: selector})
}

func NewInput(selector, text string) (Action, error) {
	return newAction(Action{Type: ActionInput, Selector: selector, Text: text})
}

// NewWait builds a wait action. A zero duration means the executor default.
func NewWait(d time.Duration) (Action, error) {
	return newAction(Action{Type: ActionWait, Duration: d})
}

func NewNavigate(url string) (Action, error) {
	return newAction(Action{Type: ActionNavigate, URL: url})
}

func NewQueryDatabase(query string) (Action, error) {
	return newAction(Action{Type: ActionQueryDatabase, Query: query})
}

// ParseAction builds an action from loosely typed fields, as produced by a
// language model.
func ParseAction(actionType, selector, text, url, query string) (Action, error) {
	return newAction(Action{
		Type:     ActionType(strings.ToLower(strings.TrimSpace(actionType))),
		Selector: strings.TrimSpace(selector),
		Text:     text,
		URL:      strings.TrimSpace(url),
		Query:    query,
	})
}

func newAction(a Action) (Action, error) {
	if err := a.Validate(); err != nil {
		return Action{}, err
	}
	return a.normalized(), nil
}

func (a Action) Validate() error {
	switch a.Type {
	case "":
		return fmt.Errorf("%w: missing type", ErrInvalidAction)
	case ActionClick:
		if strings.TrimSpace(a.Selector) == "" {
			return fmt.Errorf("%w: click requires a selector", ErrInvalidAction)
		}
	case ActionInput:
		if strings.TrimSpace(a.Selector) == "" {
			return fmt.Errorf("%w: input requires a selector", ErrInvalidAction)
		}
		if a.Text == "" {
			return fmt.Errorf("%w: input requires text", ErrInvalidAction)
		}
	case ActionWait:
		if a.Duration < 0 {
			return fmt.Errorf("%w: negative wait duration", ErrInvalidAction)
		}
	case ActionNavigate:
		if strings.TrimSpace(a.URL) == "" {
			return fmt.Errorf("%w: navigate requires a url", ErrInvalidAction)
		}
	case ActionQueryDatabase:
		if strings.TrimSpace(a.Query) == "" {
			return fmt.Errorf("%w: query_database requires a query", ErrInvalidAction)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAction, a.Type)
	}
	return nil
}

// normalized drops fields that do not belong to the variant.
func (a Action) normalized() Action {
	switch a.Type {
	case ActionClick:
		return Action{Type: a.Type, Selector: a.Selector}
	case ActionInput:
		return Action{Type: a.Type, Selector: a.Selector, Text: a.Text}
	case ActionWait:
		return Action{Type: a.Type, Duration: a.Duration}
	case ActionNavigate:
		return Action{Type: a.Type, URL: a.URL}
	case ActionQueryDatabase:
		return Action{Type: a.Type, Query: a.Query}
	}
	return a
}

func (a Action) String() string {
	switch a.Type {
	case ActionClick:
		return fmt.Sprintf("click %s", a.Selector)
	case ActionInput:
		return fmt.Sprintf("input %q into %s", a.Text, a.Selector)
	case ActionWait:
		if a.Duration > 0 {
			return fmt.Sprintf("wait %s", a.Duration)
		}
		return "wait"
	case ActionNavigate:
		return fmt.Sprintf("navigate to %s", a.URL)
	case ActionQueryDatabase:
		return fmt.Sprintf("query_database %q", a.Query)
	}
	return string(a.Type)
}

type actionJSON struct {
	Type       ActionType `json:"type"`
	Selector   string     `json:"selector,omitempty"`
	Text       string     `json:"text,omitempty"`
	URL        string     `json:"url,omitempty"`
	Query      string     `json:"query,omitempty"`
	DurationMs int64      `json:"durationMs,omitempty"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionJSON{
		Type:       a.Type,
		Selector:   a.Selector,
		Text:       a.Text,
		URL:        a.URL,
		Query:      a.Query,
		DurationMs: a.Duration.Milliseconds(),
	})
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var raw actionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := newAction(Action{
		Type:     raw.Type,
		Selector: raw.Selector,
		Text:     raw.Text,
		URL:      raw.URL,
		Query:    raw.Query,
		Duration: time.Duration(raw.DurationMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
