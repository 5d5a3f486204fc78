package entity

import (
	"sort"
	"time"
)

// HAR 1.2 subset used for the network artifact.

type HAR struct {
	Log HARLog `json:"log"`
}

type HARLog struct {
	Version string     `json:"version"`
	Creator HARCreator `json:"creator"`
	Entries []HAREntry `json:"entries"`
}

type HARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HAREntry struct {
	StartedDateTime time.Time   `json:"startedDateTime"`
	Time            float64     `json:"time"`
	Request         HARRequest  `json:"request"`
	Response        HARResponse `json:"response"`
}

type HARRequest struct {
	Method      string      `json:"method"`
	URL         string      `json:"url"`
	HTTPVersion string      `json:"httpVersion"`
	Headers     []HARHeader `json:"headers"`
}

type HARResponse struct {
	Status      int         `json:"status"`
	HTTPVersion string      `json:"httpVersion"`
	Headers     []HARHeader `json:"headers"`
}

type HARHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewHAR converts captured entries. Requests still awaiting a response get
// status 0, as HAR does for aborted requests.
func NewHAR(creator, version string, entries []NetworkEntry) HAR {
	out := make([]HAREntry, 0, len(entries))
	for _, e := range entries {
		status := 0
		if e.Status != nil {
			status = *e.Status
		}
		out = append(out, HAREntry{
			StartedDateTime: time.UnixMilli(e.TimestampMs).UTC(),
			Time:            -1,
			Request: HARRequest{
				Method:      e.Method,
				URL:         e.URL,
				HTTPVersion: "HTTP/1.1",
				Headers:     harHeaders(e.RequestHeaders),
			},
			Response: HARResponse{
				Status:      status,
				HTTPVersion: "HTTP/1.1",
				Headers:     harHeaders(e.ResponseHeaders),
			},
		})
	}
	return HAR{Log: HARLog{
		Version: "1.2",
		Creator: HARCreator{Name: creator, Version: version},
		Entries: out,
	}}
}

func harHeaders(h map[string]string) []HARHeader {
	out := make([]HARHeader, 0, len(h))
	for k, v := range h {
		out = append(out, HARHeader{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
