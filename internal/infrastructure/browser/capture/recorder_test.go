package capture

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder() *Recorder {
	r := NewRecorder()
	r.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return r
}

func TestRecorder_ResponseMatchesFirstPendingEntry(t *testing.T) {
	r := newTestRecorder()
	r.RequestSent("http://a/api", "GET", nil)
	r.RequestSent("http://a/api", "GET", nil)
	r.RequestSent("http://a/other", "POST", nil)

	assert.True(t, r.ResponseReceived("http://a/api", 200, map[string]string{"content-type": "json"}))
	assert.True(t, r.ResponseReceived("http://a/api", 500, nil))
	assert.False(t, r.ResponseReceived("http://a/api", 404, nil))

	entries := r.Network(0)
	require.Len(t, entries, 3)
	require.NotNil(t, entries[0].Status)
	assert.Equal(t, 200, *entries[0].Status)
	assert.Equal(t, "json", entries[0].ResponseHeaders["content-type"])
	require.NotNil(t, entries[1].Status)
	assert.Equal(t, 500, *entries[1].Status)
	assert.Nil(t, entries[2].Status)
	assert.Equal(t, int64(1700000000000), entries[2].TimestampMs)
}

func TestRecorder_NetworkSnapshotIsTruncatedCopy(t *testing.T) {
	r := newTestRecorder()
	for i := 0; i < 150; i++ {
		r.RequestSent("http://a/"+string(rune('a'+i%26)), "GET", nil)
	}

	snap := r.Network(DefaultSnapshotLimit)
	assert.Len(t, snap, 100)
	assert.Len(t, r.Network(0), 150)

	r.ResponseReceived(snap[0].URL, 200, nil)
	assert.Nil(t, snap[0].Status)
}

func TestRecorder_ConsoleErrors(t *testing.T) {
	r := newTestRecorder()
	r.Console("log", "hello")
	r.Console("ERROR", "TypeError: x is undefined")
	r.Console("warning", "deprecated")

	assert.Equal(t, []string{"TypeError: x is undefined"}, r.ConsoleErrors())
	assert.Len(t, r.ConsoleEntries(), 3)
}

func TestRecorder_WriteTrace(t *testing.T) {
	r := newTestRecorder()
	r.RequestSent("http://a/api", "POST", nil)
	r.AddBackendLog("500 POST /api/cart")

	var buf bytes.Buffer
	require.NoError(t, r.WriteTrace(&buf))

	assert.Contains(t, buf.String(), `"kind": "request"`)
	assert.Contains(t, buf.String(), "500 POST /api/cart")
	assert.Equal(t, []string{"500 POST /api/cart"}, r.BackendLogs())
}
