package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func serve(t *testing.T, contentType, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCSVSourceFetch(t *testing.T) {
	srv := serve(t, "text/csv", "\ufeffID,Title\n1,Foo\n2,Bar\n", http.StatusOK)
	src, err := NewSource(Config{Source: SourceCSV, SheetCSVURL: srv.URL})
	require.NoError(t, err)

	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0].ID(), "byte order mark is stripped from the header")
	assert.Equal(t, "Bar", rows[1].Get("Title"))
}

func TestGVizSourceFetch(t *testing.T) {
	body := `/*O_o*/
google.visualization.Query.setResponse({"status":"ok","table":{"cols":[{"id":"A","label":"ID"},{"id":"B","label":"Title"}],"rows":[{"c":[{"v":"a1"},{"v":"Hello"}]}]}});`
	srv := serve(t, "application/javascript", body, http.StatusOK)

	src := &GVizSource{URL: srv.URL, Client: srv.Client()}
	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hello", rows[0].Get("Title"))
}

func TestAPISourceFetch(t *testing.T) {
	srv := serve(t, "application/json", `[{"ID":"x","Read":true}]`, http.StatusOK)

	src := &APISource{URL: srv.URL, Client: srv.Client()}
	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Flag("Read"))
}

func TestXLSXSourceFetch(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Clips"))
	require.NoError(t, f.SetCellValue("Clips", "A1", "ID"))
	require.NoError(t, f.SetCellValue("Clips", "B1", "Title"))
	require.NoError(t, f.SetCellValue("Clips", "A2", "v1"))
	require.NoError(t, f.SetCellValue("Clips", "B2", "Video"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	srv := serve(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.String(), http.StatusOK)
	src := &XLSXSource{URL: srv.URL, SheetName: "Clips", Client: srv.Client()}

	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Video", rows[0].Get("Title"))
	assert.Equal(t, SourceXLSX, src.Name())
}

func TestSourceHTMLPageIsMalformed(t *testing.T) {
	srv := serve(t, "text/html; charset=utf-8", `<!DOCTYPE html><html><head><title>Google Sheets - Sign in</title></head><body></body></html>`, http.StatusOK)

	src := &CSVSource{URL: srv.URL, Client: srv.Client()}
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.Contains(t, err.Error(), "Sign in")
}

func TestSourcePermanentStatusIsTransport(t *testing.T) {
	srv := serve(t, "text/plain", "forbidden", http.StatusForbidden)

	src := &CSVSource{URL: srv.URL + "/export?format=csv&secret=abc", Client: srv.Client()}
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotContains(t, err.Error(), "secret", "query string is redacted")
}

func TestNewSourceValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"api needs script", Config{Source: SourceAPI}, "SCRIPT_URL"},
		{"gviz needs sheet", Config{Source: SourceGViz}, "SHEET_ID"},
		{"csv needs sheet", Config{Source: SourceCSV}, "SHEET_ID"},
		{"xlsx needs sheet", Config{Source: SourceXLSX}, "SHEET_ID"},
		{"unknown", Config{Source: "ods"}, "unknown source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSource(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSheetURLs(t *testing.T) {
	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=7",
		CSVExportURL("abc", "7"))
	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/abc/export?format=xlsx",
		XLSXExportURL("abc"))

	u := GVizURL("abc", "Clips", "")
	assert.True(t, strings.HasPrefix(u, "https://docs.google.com/spreadsheets/d/abc/gviz/tq?"))
	assert.Contains(t, u, "tqx=out%3Ajson")
	assert.Contains(t, u, "sheet=Clips")
	assert.Contains(t, u, "headers=1")
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, looksLikeHTML("text/html", []byte("anything")))
	assert.True(t, looksLikeHTML("", []byte("  <html><body>")))
	assert.False(t, looksLikeHTML("text/csv", []byte("ID,Title")))
	assert.False(t, looksLikeHTML("", nil))
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, []string{"go", "rust", "zig", "c"}, SplitKeywords("go, rust,,zig , c, java", 4))
	assert.Equal(t, "2024-01-15", DatePrefix("2024-01-15T09:00:00.000Z"))
	assert.Equal(t, "-", DatePrefix("  "))
	assert.Equal(t, "https://script.google.com/macros/s/AKfycbxB…/exec",
		redactURL("https://script.google.com/macros/s/AKfycbxBCnqHFxCM5UzknZ0tixYjtcjX0YRWK8N2tArYNmx5emY67/exec?x=1"))
}
