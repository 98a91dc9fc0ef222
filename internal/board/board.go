// Package board is the view model over an ingested clip collection: tab
// filters, counters, pagination, neighbour navigation and card/detail
// projections shared by the HTML viewer and the MCP tools.
package board

import (
	"strings"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/sheet"
)

// Tab selects which rows a view shows.
type Tab string

const (
	TabUnread   Tab = "unread"
	TabFavorite Tab = "favorite"
	TabAll      Tab = "all"
)

// Placeholder values for missing card fields.
const (
	PlaceholderImage = "https://via.placeholder.com/640x360/1e1e2a/6b6b7b?text=No+Image"
	UnknownChannel   = "알 수 없는 채널"
	NoContent        = "내용 없음"
)

const (
	maxCardKeywords   = 4
	maxCardTitleRunes = 120
	maxSnippetRunes   = 280
)

// ParseTab maps user input to a Tab; anything unknown is the unread tab.
func ParseTab(s string) Tab {
	switch Tab(strings.ToLower(strings.TrimSpace(s))) {
	case TabFavorite, "fav", "favorites":
		return TabFavorite
	case TabAll:
		return TabAll
	}
	return TabUnread
}

// Match reports whether row belongs in the tab.
func (t Tab) Match(r sheet.Row) bool {
	switch t {
	case TabFavorite:
		return r.Flag(sheet.ColFavorite)
	case TabAll:
		return true
	}
	return !r.Flag(sheet.ColRead)
}

// Filter returns the rows of the tab in source order.
func Filter(rows sheet.Collection, tab Tab) sheet.Collection {
	out := make(sheet.Collection, 0, len(rows))
	for _, r := range rows {
		if tab.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Counts are the tab badges.
type Counts struct {
	Total    int `json:"total"`
	Unread   int `json:"unread"`
	Favorite int `json:"favorite"`
}

// Stats counts unread and favorite rows.
func Stats(rows sheet.Collection) Counts {
	c := Counts{Total: len(rows)}
	for _, r := range rows {
		if !r.Flag(sheet.ColRead) {
			c.Unread++
		}
		if r.Flag(sheet.ColFavorite) {
			c.Favorite++
		}
	}
	return c
}

// Paged is one page of rows.
type Paged struct {
	Rows    sheet.Collection `json:"-"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
	Total   int              `json:"total"`
	HasMore bool             `json:"has_more"`
}

// Page returns the 1-based page of rows. Out of range pages are empty.
func Page(rows sheet.Collection, page, size int) Paged {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	p := Paged{Page: page, Size: size, Total: len(rows), Rows: sheet.Collection{}}
	start := (page - 1) * size
	if start >= len(rows) {
		return p
	}
	end := min(start+size, len(rows))
	p.Rows = rows[start:end]
	p.HasMore = end < len(rows)
	return p
}

// Neighbor returns the id of the row before (step < 0) or after (step > 0)
// the row with id, wrapping around both ends. ok is false when id is not
// in rows.
func Neighbor(rows sheet.Collection, id string, step int) (string, bool) {
	i := rows.Find(id)
	if i < 0 {
		return "", false
	}
	n := len(rows)
	j := i
	switch {
	case step < 0:
		j = (i - 1 + n) % n
	case step > 0:
		j = (i + 1) % n
	}
	return rows[j].ID(), true
}

// Card is the grid projection of a row.
type Card struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Channel   string   `json:"channel"`
	Date      string   `json:"date"`
	ImageURL  string   `json:"image_url"`
	Keywords  []string `json:"keywords,omitempty"`
	Read      bool     `json:"read"`
	Favorite  bool     `json:"favorite"`
	RowNumber int      `json:"row"`
}

// NewCard projects a row for the grid. A missing image falls back to the
// video's YouTube thumbnail, then to a placeholder.
func NewCard(r sheet.Row) Card {
	c := Card{
		ID:        r.ID(),
		Title:     engine.TruncateRunes(strings.TrimSpace(r.Get(sheet.ColTitle)), maxCardTitleRunes, "…"),
		Channel:   strings.TrimSpace(r.Get(sheet.ColChannelName)),
		Date:      engine.DatePrefix(r.Get(sheet.ColPublishDate)),
		ImageURL:  strings.TrimSpace(r.Get(sheet.ColImageURL)),
		Keywords:  engine.SplitKeywords(r.Get(sheet.ColKeywords), maxCardKeywords),
		Read:      r.Flag(sheet.ColRead),
		Favorite:  r.Flag(sheet.ColFavorite),
		RowNumber: r.Index,
	}
	if c.Channel == "" {
		c.Channel = UnknownChannel
	}
	if c.ImageURL == "" {
		c.ImageURL = ThumbnailURL(r.Get(sheet.ColVideoURL))
	}
	if c.ImageURL == "" {
		c.ImageURL = PlaceholderImage
	}
	return c
}

// Cards projects every row.
func Cards(rows sheet.Collection) []Card {
	out := make([]Card, len(rows))
	for i, r := range rows {
		out[i] = NewCard(r)
	}
	return out
}

// Detail is the detail pane projection of a row.
type Detail struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Channel  string `json:"channel"`
	Date     string `json:"date"`
	ImageURL string `json:"image_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Summary  string `json:"summary"`
	Analysis string `json:"analysis"`
	Insights string `json:"insights"`
	Read     bool   `json:"read"`
	Favorite bool   `json:"favorite"`
	Prev     string `json:"prev,omitempty"`
	Next     string `json:"next,omitempty"`
}

// NewDetail builds the detail of row id. Prev and Next walk the rows of tab,
// so they are empty when the row is not part of it.
func NewDetail(rows sheet.Collection, tab Tab, id string) (Detail, bool) {
	i := rows.Find(id)
	if i < 0 {
		return Detail{}, false
	}
	r := rows[i]
	card := NewCard(r)
	d := Detail{
		ID:       card.ID,
		Title:    strings.TrimSpace(r.Get(sheet.ColTitle)),
		Channel:  card.Channel,
		Date:     card.Date,
		ImageURL: strings.TrimSpace(r.Get(sheet.ColImageURL)),
		VideoURL: strings.TrimSpace(r.Get(sheet.ColVideoURL)),
		Summary:  orNoContent(r.Get(sheet.ColSummary)),
		Analysis: orNoContent(r.Get(sheet.ColAnalysis)),
		Insights: orNoContent(r.Get(sheet.ColInsights)),
		Read:     card.Read,
		Favorite: card.Favorite,
	}
	filtered := Filter(rows, tab)
	if prev, ok := Neighbor(filtered, id, -1); ok {
		d.Prev = prev
		d.Next, _ = Neighbor(filtered, id, 1)
	}
	return d, true
}

// Snippet shortens a long text block for list output.
func Snippet(s string) string {
	return engine.TruncateAtWord(strings.TrimSpace(s), maxSnippetRunes)
}

func orNoContent(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return NoContent
}
