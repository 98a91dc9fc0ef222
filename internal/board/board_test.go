package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_clip/internal/sheet"
)

const boardCSV = `ID,Title,Read,Favorite,ChannelName,PublishDate,Image_URL,Keywords,Summary
1,First,FALSE,TRUE,Chan A,2024-01-15T09:00:00Z,http://img/1.jpg,"go, rust, zig, c, java",S1
2,Second,TRUE,TRUE,,,,,
3,Third,,FALSE,Chan C,2024-02-01,,,
4,Fourth,true,,Chan D,,,,`

func boardRows(t *testing.T) sheet.Collection {
	t.Helper()
	rows := sheet.ParseCSV(boardCSV)
	require.Len(t, rows, 4)
	return rows
}

func ids(rows sheet.Collection) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID()
	}
	return out
}

func TestFilterAndStats(t *testing.T) {
	rows := boardRows(t)

	assert.Equal(t, []string{"1", "3"}, ids(Filter(rows, TabUnread)))
	assert.Equal(t, []string{"1", "2"}, ids(Filter(rows, TabFavorite)))
	assert.Len(t, Filter(rows, TabAll), 4)

	assert.Equal(t, Counts{Total: 4, Unread: 2, Favorite: 2}, Stats(rows))
	assert.Equal(t, Counts{}, Stats(nil))
}

func TestParseTab(t *testing.T) {
	tests := map[string]Tab{
		"":          TabUnread,
		"unread":    TabUnread,
		"FAVORITE":  TabFavorite,
		" fav ":     TabFavorite,
		"all":       TabAll,
		"something": TabUnread,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseTab(in), "input %q", in)
	}
}

func TestPage(t *testing.T) {
	rows := boardRows(t)

	p := Page(rows, 1, 3)
	assert.Equal(t, []string{"1", "2", "3"}, ids(p.Rows))
	assert.True(t, p.HasMore)
	assert.Equal(t, 4, p.Total)

	p = Page(rows, 2, 3)
	assert.Equal(t, []string{"4"}, ids(p.Rows))
	assert.False(t, p.HasMore)

	p = Page(rows, 9, 3)
	assert.Empty(t, p.Rows)
	assert.False(t, p.HasMore)

	p = Page(rows, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.Size)
	assert.Equal(t, []string{"1"}, ids(p.Rows))
}

func TestNeighborWraps(t *testing.T) {
	rows := boardRows(t)

	next, ok := Neighbor(rows, "4", 1)
	require.True(t, ok)
	assert.Equal(t, "1", next)

	prev, ok := Neighbor(rows, "1", -1)
	require.True(t, ok)
	assert.Equal(t, "4", prev)

	prev, _ = Neighbor(rows, "3", -1)
	assert.Equal(t, "2", prev)

	_, ok = Neighbor(rows, "404", 1)
	assert.False(t, ok)

	single := rows[:1]
	next, ok = Neighbor(single, "1", 1)
	require.True(t, ok)
	assert.Equal(t, "1", next)
}

func TestNewCard(t *testing.T) {
	rows := boardRows(t)

	c := NewCard(rows[0])
	assert.Equal(t, "1", c.ID)
	assert.Equal(t, "Chan A", c.Channel)
	assert.Equal(t, "2024-01-15", c.Date)
	assert.Equal(t, "http://img/1.jpg", c.ImageURL)
	assert.Equal(t, []string{"go", "rust", "zig", "c"}, c.Keywords)
	assert.True(t, c.Favorite)
	assert.False(t, c.Read)
	assert.Equal(t, 2, c.RowNumber)

	c = NewCard(rows[1])
	assert.Equal(t, UnknownChannel, c.Channel)
	assert.Equal(t, "-", c.Date)
	assert.Equal(t, PlaceholderImage, c.ImageURL)
	assert.Empty(t, c.Keywords)

	assert.True(t, NewCard(rows[3]).Read, "lowercase true is truthy")
}

func TestNewDetail(t *testing.T) {
	rows := boardRows(t)

	d, ok := NewDetail(rows, TabUnread, "1")
	require.True(t, ok)
	assert.Equal(t, "First", d.Title)
	assert.Equal(t, "S1", d.Summary)
	assert.Equal(t, NoContent, d.Analysis)
	assert.Equal(t, NoContent, d.Insights)
	assert.Equal(t, "3", d.Prev)
	assert.Equal(t, "3", d.Next)

	d, ok = NewDetail(rows, TabUnread, "2")
	require.True(t, ok)
	assert.Empty(t, d.Prev, "row outside the tab has no neighbours")
	assert.Empty(t, d.ImageURL)

	_, ok = NewDetail(rows, TabAll, "404")
	assert.False(t, ok)
}

func TestVideoIDAndThumbnail(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ"},
		{"https://youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://example.com/video", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, VideoID(tt.url))
		})
	}

	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", ThumbnailURL("https://youtu.be/dQw4w9WgXcQ"))

	rows := sheet.ParseCSV("ID,VideoURL\n1,https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", NewCard(rows[0]).ImageURL)
}
