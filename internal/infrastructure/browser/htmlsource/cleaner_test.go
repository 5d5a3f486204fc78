package htmlsource

import (
	"strings"
	"testing"
)

func TestCleanSnapshot_RemovesScriptStyle(t *testing.T) {
	raw := `<html><head><script>alert(1)</script><style>.x{}</style><title>T</title></head>
<body><div id="main">Hello</div><script>track()</script></body></html>`

	out, err := CleanSnapshot(raw, nil)
	if err != nil {
		t.Fatalf("CleanSnapshot failed: %v", err)
	}

	if strings.Contains(out, "<script") || strings.Contains(out, "<style") {
		t.Errorf("script/style tags must be removed, output: %s", out)
	}
	if !strings.Contains(out, `id="main"`) {
		t.Errorf("expected to keep normal elements, output: %s", out)
	}
	if !strings.Contains(out, "<title>T</title>") {
		t.Errorf("expected to keep the title, output: %s", out)
	}
}

func TestCleanSnapshot_RemovesCommentsAndHandlers(t *testing.T) {
	raw := `<body><!-- secret --><button onclick="buy()" aria-label="Buy" style="color:red">Buy</button></body>`

	out, err := CleanSnapshot(raw, nil)
	if err != nil {
		t.Fatalf("CleanSnapshot failed: %v", err)
	}

	if strings.Contains(out, "secret") {
		t.Error("comments must be removed")
	}
	if strings.Contains(out, "onclick") || strings.Contains(out, "style=") {
		t.Errorf("handlers and inline styles must be removed, output: %s", out)
	}
	if !strings.Contains(out, `aria-label="Buy"`) {
		t.Errorf("aria attributes must be kept, output: %s", out)
	}
}

func TestCleanSnapshot_Truncates(t *testing.T) {
	raw := "<body>" + strings.Repeat("<p>lorem ipsum</p>", 100) + "</body>"

	out, err := CleanSnapshot(raw, &CleanConfig{MaxOutputSize: 200})
	if err != nil {
		t.Fatalf("CleanSnapshot failed: %v", err)
	}

	if !strings.HasSuffix(out, "<!-- snapshot truncated -->") {
		t.Errorf("expected truncation marker, output: %s", out)
	}
}
