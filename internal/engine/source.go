package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anatolykoptev/go_clip/internal/sheet"
)

// Source fetches the full clip collection from the remote sheet.
type Source interface {
	Fetch(ctx context.Context) (sheet.Collection, error)
	Name() string
}

// NewSource builds the source selected by cfg.Source.
func NewSource(cfg Config) (Source, error) {
	cfg = cfg.withDefaults()
	switch cfg.Source {
	case SourceAPI:
		if cfg.ScriptURL == "" {
			return nil, errors.New("SCRIPT_URL is required for source=api")
		}
		return &APISource{URL: cfg.ScriptURL, Client: cfg.HTTPClient, Timeout: cfg.FetchTimeout}, nil
	case SourceGViz:
		if cfg.SheetID == "" {
			return nil, errors.New("SHEET_ID is required for source=gviz")
		}
		return &GVizSource{URL: GVizURL(cfg.SheetID, cfg.SheetName, cfg.SheetGID), Client: cfg.HTTPClient, Timeout: cfg.FetchTimeout}, nil
	case SourceCSV:
		u := cfg.SheetCSVURL
		if u == "" {
			if cfg.SheetID == "" {
				return nil, errors.New("SHEET_ID or SHEET_CSV_URL is required for source=csv")
			}
			u = CSVExportURL(cfg.SheetID, cfg.SheetGID)
		}
		return &CSVSource{URL: u, Client: cfg.HTTPClient, Timeout: cfg.FetchTimeout}, nil
	case SourceXLSX:
		if cfg.SheetID == "" {
			return nil, errors.New("SHEET_ID is required for source=xlsx")
		}
		return &XLSXSource{URL: XLSXExportURL(cfg.SheetID), SheetName: cfg.SheetName, Client: cfg.HTTPClient, Timeout: cfg.FetchTimeout}, nil
	}
	return nil, fmt.Errorf("unknown source %q (want api, gviz, csv or xlsx)", cfg.Source)
}

// GVizURL builds the Visualization JSON feed URL for a sheet. headers=1
// pins the first sheet row as the header instead of letting Google guess.
func GVizURL(sheetID, sheetName, gid string) string {
	q := url.Values{"tqx": {"out:json"}, "headers": {"1"}}
	if sheetName != "" {
		q.Set("sheet", sheetName)
	}
	if gid != "" {
		q.Set("gid", gid)
	}
	return "https://docs.google.com/spreadsheets/d/" + url.PathEscape(sheetID) + "/gviz/tq?" + q.Encode()
}

// CSVExportURL builds the public CSV export URL for a sheet.
func CSVExportURL(sheetID, gid string) string {
	q := url.Values{"format": {"csv"}}
	if gid != "" {
		q.Set("gid", gid)
	}
	return "https://docs.google.com/spreadsheets/d/" + url.PathEscape(sheetID) + "/export?" + q.Encode()
}

// XLSXExportURL builds the whole-workbook export URL for a sheet.
func XLSXExportURL(sheetID string) string {
	return "https://docs.google.com/spreadsheets/d/" + url.PathEscape(sheetID) + "/export?format=xlsx"
}

// APISource reads rows from the Apps Script web app.
type APISource struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

func (s *APISource) Name() string { return SourceAPI }

func (s *APISource) Fetch(ctx context.Context) (sheet.Collection, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	body, ct, err := fetchBody(ctx, s.Client, s.URL, "application/json")
	if err != nil {
		return nil, err
	}
	if looksLikeHTML(ct, body) {
		return nil, htmlPageError(body)
	}
	return sheet.DecodeJSONRows(body)
}

// GVizSource reads the Visualization feed and unwraps its envelope.
type GVizSource struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

func (s *GVizSource) Name() string { return SourceGViz }

func (s *GVizSource) Fetch(ctx context.Context) (sheet.Collection, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	body, ct, err := fetchBody(ctx, s.Client, s.URL, "application/json,text/javascript,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	if looksLikeHTML(ct, body) {
		return nil, htmlPageError(body)
	}
	return sheet.DecodeGViz(body)
}

// CSVSource reads the public CSV export.
type CSVSource struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

func (s *CSVSource) Name() string { return SourceCSV }

func (s *CSVSource) Fetch(ctx context.Context) (sheet.Collection, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	body, ct, err := fetchBody(ctx, s.Client, s.URL, "text/csv,text/plain;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	if looksLikeHTML(ct, body) {
		return nil, htmlPageError(body)
	}
	text := strings.TrimPrefix(string(body), "\ufeff")
	return sheet.ParseCSV(text), nil
}

// XLSXSource reads one tab of the workbook export.
type XLSXSource struct {
	URL       string
	SheetName string // empty reads the first tab
	Client    *http.Client
	Timeout   time.Duration
}

func (s *XLSXSource) Name() string { return SourceXLSX }

func (s *XLSXSource) Fetch(ctx context.Context) (sheet.Collection, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	body, ct, err := fetchBody(ctx, s.Client, s.URL, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	if looksLikeHTML(ct, body) {
		return nil, htmlPageError(body)
	}
	return sheet.DecodeXLSX(body, s.SheetName)
}

// withTimeout applies d to ctx unless d is zero.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
