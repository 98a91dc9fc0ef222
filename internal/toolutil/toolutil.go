// Package toolutil provides shared input helpers for go_clip MCP tools and
// the viewer's query parameters.
package toolutil

import (
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_clip/internal/board"
)

// MaxPageSize caps page sizes requested by clients.
const MaxPageSize = 100

// NormTab normalises a tab field: empty string → "unread".
func NormTab(tab string) board.Tab {
	return board.ParseTab(tab)
}

// NormPage normalises a 1-based page number: anything below 1 → 1.
func NormPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// NormSize clamps a page size to [1, MaxPageSize], using def when unset.
func NormSize(size, def int) int {
	if size <= 0 {
		size = def
	}
	return max(1, min(size, MaxPageSize))
}

// AtoiDefault parses s as an int, returning def on empty or invalid input.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
