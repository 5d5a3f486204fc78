package entity

type NetworkEntry struct {
	URL             string            `json:"url"`
	Method          string            `json:"method"`
	Status          *int              `json:"status"`
	TimestampMs     int64             `json:"timestampMs"`
	RequestHeaders  map[string]string `json:"requestHeaders,omitempty"`
	ResponseHeaders map[string]string `json:"responseHeaders,omitempty"`
}

// Completed reports whether a response has been matched to the request.
func (e NetworkEntry) Completed() bool {
	return e.Status != nil
}

// Clone returns a deep copy so snapshots never alias live capture buffers.
func (e NetworkEntry) Clone() NetworkEntry {
	out := e
	if e.Status != nil {
		s := *e.Status
		out.Status = &s
	}
	out.RequestHeaders = cloneHeaders(e.RequestHeaders)
	out.ResponseHeaders = cloneHeaders(e.ResponseHeaders)
	return out
}

func cloneHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

type ConsoleEntry struct {
	Level       string `json:"level"`
	Text        string `json:"text"`
	TimestampMs int64  `json:"timestampMs"`
}

type BrowserState struct {
	URL            string         `json:"url"`
	Title          string         `json:"title"`
	ConsoleErrors  []string       `json:"consoleErrors"`
	NetworkEntries []NetworkEntry `json:"networkEntries"`
	BackendLogs    []string       `json:"backendLogs,omitempty"`
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

type FinalizeResult struct {
	TracingPath string `json:"tracingPath,omitempty"`
	VideoPath   string `json:"videoPath,omitempty"`
}
