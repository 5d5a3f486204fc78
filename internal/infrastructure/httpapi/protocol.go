// Package httpapi exposes a browser session over HTTP so the reproduction
// loop can run on a different host than the browser.
package httpapi

import (
	"errors"

	"bug-reproducer/internal/domain/entity"
)

// Error codes carried next to the message so clients can restore the
// sentinel errors the executor and orchestrator branch on.
const (
	CodeNotInitialized  = "not_initialized"
	CodeInvalidURL      = "invalid_url"
	CodeElementNotFound = "element_not_found"
	CodeBadRequest      = "bad_request"
	CodeInternal        = "internal"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type InitRequest struct {
	Headless bool `json:"headless"`
}

type NavigateRequest struct {
	URL string `json:"url"`
}

type ClickRequest struct {
	Selector string `json:"selector"`
}

type InputRequest struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
}

type StopRequest struct {
	TracingPath string `json:"tracingPath"`
}

type StopResponse struct {
	Success     bool   `json:"success"`
	TracingPath string `json:"tracingPath,omitempty"`
	VideoPath   string `json:"videoPath,omitempty"`
}

type BackendLogRequest struct {
	Lines []string `json:"lines"`
}

type DOMResponse struct {
	Elements []entity.PageElement `json:"elements"`
}

type NetworkResponse struct {
	Entries []entity.NetworkEntry `json:"entries"`
}

type ScreenshotResponse struct {
	Screenshot string `json:"screenshot"`
	Format     string `json:"format"`
	ImageType  string `json:"imageType,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

type HTMLResponse struct {
	HTML string `json:"html"`
}

type StatusResponse struct {
	Success bool `json:"success"`
}

// ErrorCode classifies err for the wire.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, entity.ErrNotInitialized):
		return CodeNotInitialized
	case errors.Is(err, entity.ErrInvalidURL):
		return CodeInvalidURL
	case errors.Is(err, entity.ErrElementNotFound):
		return CodeElementNotFound
	default:
		return CodeInternal
	}
}

// CodeError maps a wire code back to its sentinel, nil for unknown codes.
func CodeError(code string) error {
	switch code {
	case CodeNotInitialized:
		return entity.ErrNotInitialized
	case CodeInvalidURL:
		return entity.ErrInvalidURL
	case CodeElementNotFound:
		return entity.ErrElementNotFound
	default:
		return nil
	}
}
