package engine

import (
	"net/url"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Korean titles, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// TruncateAtWord truncates a string to maxLen runes at a word boundary.
func TruncateAtWord(s string, maxLen int) string {
	return strutil.TruncateAtWord(s, maxLen)
}

// SplitKeywords returns at most limit trimmed, non-empty keywords from a
// comma-separated cell.
func SplitKeywords(s string, limit int) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if len(out) == limit {
			break
		}
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// DatePrefix returns the YYYY-MM-DD part of a sheet date, or "-".
func DatePrefix(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// redactURL drops the query string and shortens long deployment ids so logs
// and error messages do not carry the full script URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	parts := strings.Split(u.Path, "/")
	for i, p := range parts {
		if len(p) > 24 {
			parts[i] = p[:8] + "…"
		}
	}
	return u.Scheme + "://" + u.Host + strings.Join(parts, "/")
}
