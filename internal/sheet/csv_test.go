package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_Basic(t *testing.T) {
	rows := ParseCSV("ID,Title\n1,Foo\n2,Bar")

	require.Len(t, rows, 2)
	assert.Equal(t, "Bar", rows[1].Get("Title"))
	assert.Equal(t, "1", rows[0].ID())
}

func TestParseCSV_RowIndexIncludesHeader(t *testing.T) {
	rows := ParseCSV("ID,Title\r\n7,First\r\n8,Second\r\n")

	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Index)
	assert.Equal(t, 3, rows[1].Index)
}

func TestParseCSV_QuotedComma(t *testing.T) {
	values := SplitCSVLine(`1,"Title, With Comma",2024-01-01`)
	require.Len(t, values, 3)
	assert.Equal(t, "Title, With Comma", values[1])

	rows := ParseCSV("ID,Title,PublishDate\n" + `1,"Title, With Comma",2024-01-01`)
	require.Len(t, rows, 1)
	assert.Equal(t, "Title, With Comma", rows[0].Get("Title"))
	assert.Equal(t, "2024-01-01", rows[0].Get("PublishDate"))
}

func TestParseCSV_EdgeCases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"header only", "ID,Title", 0},
		{"header and blank line", "ID,Title\n", 0},
		{"trailing blank line", "ID,Title\n1,a\n", 1},
		{"blank line in middle", "ID,Title\n1,a\n\n2,b", 2},
		{"blank id dropped", "ID,Title\n1,a\n ,b\n3,c", 2},
		{"missing id column", "Title\nfoo", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ParseCSV(tt.in), tt.want)
		})
	}
}

func TestParseCSV_ShortAndLongRows(t *testing.T) {
	rows := ParseCSV("ID,Title,Read\n1,short\n2,long,TRUE,extra,more")

	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0].Get("Read"))
	_, ok := rows[0].Fields["Read"]
	assert.True(t, ok, "short row should still carry the column")
	assert.Len(t, rows[1].Fields, 3)
	assert.True(t, rows[1].Flag("Read"))
}

func TestParseCSV_EmptyHeaderDropsValue(t *testing.T) {
	rows := ParseCSV("ID,,Title\n1,ignored,kept")

	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Fields, 2)
	assert.Equal(t, "kept", rows[0].Get("Title"))
}

func TestParseCSV_BlankLinesKeepSheetPosition(t *testing.T) {
	rows := ParseCSV("ID,Title\n1,a\n\n3,c")

	require.Len(t, rows, 2)
	assert.Equal(t, 4, rows[1].Index)
}

func TestSplitCSVLine_DoubledQuotesNotUnescaped(t *testing.T) {
	// Only one quote is stripped from each end.
	values := SplitCSVLine(`1,"say ""hi""",x`)
	require.Len(t, values, 3)
	assert.Equal(t, `say ""hi""`, values[1])
}

func TestRowID_Aliases(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{"upper", map[string]string{"ID": " 42 "}, "42"},
		{"lower", map[string]string{"id": "a"}, "a"},
		{"title", map[string]string{"Id": "b"}, "b"},
		{"localized", map[string]string{"아이디": "c"}, "c"},
		{"mixed case", map[string]string{"iD": "d"}, "d"},
		{"blank", map[string]string{"ID": "   "}, ""},
		{"absent", map[string]string{"Title": "x"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Row{Fields: tt.fields}.ID())
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy("TRUE"))
	assert.True(t, Truthy("true"))
	assert.True(t, Truthy(FormatBool(true)))
	assert.False(t, Truthy("FALSE"))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy("yes"))
}

func TestCollectionCloneIsDeep(t *testing.T) {
	orig := ParseCSV("ID,Read\n1,FALSE")
	cp := orig.Clone()
	cp[0].Fields["Read"] = "TRUE"

	assert.False(t, orig[0].Flag("Read"))
	assert.Equal(t, 0, orig.Find("1"))
	assert.Equal(t, -1, orig.Find("2"))
}

func TestParseCSV_DecomposedHangulHeader(t *testing.T) {
	// "아이디" spelled with conjoining jamo (NFD).
	nfd := "\u110b\u1161\u110b\u1175\u1103\u1175"
	rows := ParseCSV(nfd + ",Title\nk-1,Hello")
	require.Len(t, rows, 1)
	assert.Equal(t, "k-1", rows[0].ID())
}
