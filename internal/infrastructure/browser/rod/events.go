package rod

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// subscribe feeds console and network events of page into the recorder
// until the page context is cancelled.
func (b *BrowserAdapter) subscribe(page *rod.Page) {
	rec := b.recorder

	wait := page.EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			if e.Request == nil {
				return
			}
			rec.RequestSent(e.Request.URL, e.Request.Method, headers(e.Request.Headers))
		},
		func(e *proto.NetworkResponseReceived) {
			if e.Response == nil {
				return
			}
			rec.ResponseReceived(e.Response.URL, e.Response.Status, headers(e.Response.Headers))
		},
		func(e *proto.RuntimeConsoleAPICalled) {
			rec.Console(string(e.Type), consoleText(e.Args))
		},
		func(e *proto.RuntimeExceptionThrown) {
			if e.ExceptionDetails == nil {
				return
			}
			text := e.ExceptionDetails.Text
			if ex := e.ExceptionDetails.Exception; ex != nil && ex.Description != "" {
				text = ex.Description
			}
			rec.Console("error", text)
		},
	)
	go wait()
}

func headers(h proto.NetworkHeaders) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = v.String()
	}
	return out
}

func consoleText(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == nil {
			continue
		}
		switch {
		case arg.Type == proto.RuntimeRemoteObjectTypeString:
			parts = append(parts, arg.Value.Str())
		case arg.Description != "":
			parts = append(parts, arg.Description)
		default:
			parts = append(parts, arg.Value.JSON("", ""))
		}
	}
	return strings.Join(parts, " ")
}
