// Package sheet holds the clip row model and the decoders that turn Google
// Sheet payloads (CSV export, Visualization JSON, Apps Script JSON) into it.
package sheet

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Well-known column names used by the viewer and the mutation commands.
const (
	ColID          = "ID"
	ColTitle       = "Title"
	ColRead        = "Read"
	ColFavorite    = "Favorite"
	ColChannelName = "ChannelName"
	ColPublishDate = "PublishDate"
	ColImageURL    = "Image_URL"
	ColVideoURL    = "VideoURL"
	ColKeywords    = "Keywords"
	ColSummary     = "Summary"
	ColAnalysis    = "Analysis"
	ColInsights    = "Insights"
)

// idAliases are checked in order when looking up a row's identifier.
var idAliases = []string{"ID", "id", "Id", "아이디"}

// Row is one spreadsheet record keyed by column name.
// Index is the 1-based sheet row number, header included.
type Row struct {
	Index  int               `json:"rowIndex"`
	Fields map[string]string `json:"fields"`
}

// Collection is an ordered set of rows in source order.
type Collection []Row

// ID returns the trimmed business identifier of the row, or "".
func (r Row) ID() string {
	for _, k := range idAliases {
		if v, ok := r.Fields[k]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	for k, v := range r.Fields {
		if strings.EqualFold(k, "id") {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// IsIDColumn reports whether a header name is one of the identifier columns.
func IsIDColumn(name string) bool {
	for _, k := range idAliases {
		if name == k {
			return true
		}
	}
	return strings.EqualFold(name, "id")
}

// Get returns the named field, "" when absent.
func (r Row) Get(name string) string {
	return r.Fields[name]
}

// Flag reads a boolean-like field through Truthy.
func (r Row) Flag(name string) bool {
	return Truthy(r.Fields[name])
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	f := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		f[k] = v
	}
	return Row{Index: r.Index, Fields: f}
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	for i, r := range c {
		out[i] = r.Clone()
	}
	return out
}

// Find returns the position of the row with the given identifier, or -1.
func (c Collection) Find(id string) int {
	id = strings.TrimSpace(id)
	for i, r := range c {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

// Truthy is the single predicate for boolean-like cells. Sources emit either
// a native boolean (normalised to "TRUE"/"FALSE" on decode) or the literal
// string "TRUE", depending on cell formatting.
func Truthy(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "TRUE")
}

// FormatBool renders a boolean the way the sheet does.
func FormatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// HeaderName canonicalises a column name: surrounding space is trimmed and
// the text is NFC-normalised, so decomposed Hangul headers (exported from
// macOS) still match the identifier aliases.
func HeaderName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// keepIdentified drops rows whose identifier is blank.
func keepIdentified(rows Collection) Collection {
	out := rows[:0]
	for _, r := range rows {
		if r.ID() != "" {
			out = append(out, r)
		}
	}
	return out
}
