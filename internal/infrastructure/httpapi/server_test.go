package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bug-reproducer/internal/domain/entity"
	"bug-reproducer/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, browser *mocks.FakeBrowser) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(DefaultConfig(), browser, mocks.NopLogger{}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, &mocks.FakeBrowser{})

	resp, body := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_NotInitialized(t *testing.T) {
	browser := &mocks.FakeBrowser{DOMErr: entity.ErrNotInitialized}
	srv := newTestServer(t, browser)

	resp, body := do(t, http.MethodPost, srv.URL+"/navigate", NavigateRequest{URL: "https://example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, CodeNotInitialized, body["code"])
	assert.NotEmpty(t, body["error"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/dom", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_InitNavigateDOM(t *testing.T) {
	browser := &mocks.FakeBrowser{
		Elements: []entity.PageElement{{
			Text: "Add to Cart", Role: "button", Locator: "html:nth-of-type(1) > body:nth-of-type(1) > button:nth-of-type(1)",
			Clickable: true, SelectorHint: entity.SelectorHint{Text: "Add to Cart"}, TagName: "button",
		}},
	}
	srv := newTestServer(t, browser)

	resp, body := do(t, http.MethodPost, srv.URL+"/init", InitRequest{Headless: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/navigate", NavigateRequest{URL: "https://shop.test"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"https://shop.test"}, browser.Navigations)

	resp, body = do(t, http.MethodGet, srv.URL+"/dom", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	elements := body["elements"].([]any)
	require.Len(t, elements, 1)
	el := elements[0].(map[string]any)
	assert.Equal(t, `text="Add to Cart"`, el["selectorHint"])
	assert.Equal(t, true, el["clickable"])
}

func TestServer_ClickResolvesSelectors(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		want     string
	}{
		{"structural", "#checkout", "#checkout"},
		{"text form", `text="Add to Cart"`, "text:Add to Cart"},
		{"combined hint", `button.primary or text="Pay"`, "text:Pay"},
		{"bare text", "Sign in", "text:Sign in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser := &mocks.FakeBrowser{}
			srv := newTestServer(t, browser)

			resp, _ := do(t, http.MethodPost, srv.URL+"/click", ClickRequest{Selector: tt.selector})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, []string{tt.want}, browser.Clicks)
		})
	}
}

func TestServer_ClickErrors(t *testing.T) {
	browser := &mocks.FakeBrowser{ClickErr: entity.ErrElementNotFound}
	srv := newTestServer(t, browser)

	resp, body := do(t, http.MethodPost, srv.URL+"/click", ClickRequest{Selector: "#gone"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, CodeElementNotFound, body["code"])

	resp, body = do(t, http.MethodPost, srv.URL+"/click", ClickRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, CodeBadRequest, body["code"])
}

func TestServer_Input(t *testing.T) {
	browser := &mocks.FakeBrowser{}
	srv := newTestServer(t, browser)

	resp, _ := do(t, http.MethodPost, srv.URL+"/input", InputRequest{Selector: "#email", Text: "a@b.c"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, srv.URL+"/input", InputRequest{Selector: `text="Coupon"`, Text: "SAVE"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, [][2]string{{"#email", "a@b.c"}, {"text:Coupon", "SAVE"}}, browser.Fills)
}

func TestServer_Screenshot(t *testing.T) {
	browser := &mocks.FakeBrowser{Shot: &entity.Screenshot{Data: []byte("jpeg-bytes"), Format: "jpeg", Width: 10, Height: 5}}
	srv := newTestServer(t, browser)

	resp, body := do(t, http.MethodGet, srv.URL+"/screenshot", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "base64", body["format"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")), body["screenshot"])
}

func TestServer_StopAndClose(t *testing.T) {
	browser := &mocks.FakeBrowser{}
	srv := newTestServer(t, browser)

	resp, body := do(t, http.MethodPost, srv.URL+"/stop", StopRequest{TracingPath: "traces/run-1/trace.json"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "traces/run-1/trace.json", body["tracingPath"])
	assert.NotContains(t, body, "videoPath")

	resp, _ = do(t, http.MethodPost, srv.URL+"/close", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, browser.Finalized)
	assert.Equal(t, 1, browser.Closed)
}

func TestServer_BackendLogsUnsupported(t *testing.T) {
	srv := newTestServer(t, &mocks.FakeBrowser{})

	resp, _ := do(t, http.MethodPost, srv.URL+"/backend-logs", BackendLogRequest{Lines: []string{"500 on /api/cart"}})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestServer_InvalidBody(t *testing.T) {
	srv := newTestServer(t, &mocks.FakeBrowser{})

	resp, err := http.Post(srv.URL+"/navigate", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
