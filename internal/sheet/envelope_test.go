package sheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGViz = `/*O_o*/
google.visualization.Query.setResponse({"version":"0.6","reqId":"0","status":"ok","sig":"1","table":{"cols":[{"id":"A","label":"ID","type":"number","pattern":"General"},{"id":"B","label":"Title","type":"string"},{"id":"C","label":"Read","type":"boolean"},{"id":"D","label":"PublishDate","type":"date"},{"id":"E","label":"","type":"string"}],"rows":[{"c":[{"v":1.0,"f":"1"},{"v":"Go, in depth"},{"v":true,"f":"TRUE"},{"v":"Date(2024,0,15)","f":"2024. 1. 15"},{"v":"extra"}]},{"c":[{"v":2.0,"f":"2"},{"v":"Second"},{"v":false},null,null]},{"c":[null,{"v":"no id"},null,null,null]}],"parsedNumHeaders":1}});`

func TestDecodeGViz(t *testing.T) {
	rows, err := DecodeGViz([]byte(sampleGViz))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 2, first.Index)
	assert.Equal(t, "1", first.ID())
	assert.Equal(t, "Go, in depth", first.Get("Title"))
	assert.True(t, first.Flag("Read"))
	assert.Equal(t, "2024-01-15", first.Get("PublishDate"))
	assert.Equal(t, "extra", first.Get("E"), "unlabeled column falls back to its id")

	second := rows[1]
	assert.False(t, second.Flag("Read"))
	assert.Equal(t, "", second.Get("PublishDate"))
}

func TestDecodeGViz_ErrorStatus(t *testing.T) {
	body := `google.visualization.Query.setResponse({"status":"error","errors":[{"reason":"access_denied","message":"Access denied","detailed_message":"sheet is private"}]});`
	_, err := DecodeGViz([]byte(body))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedPayload))
	assert.Contains(t, err.Error(), "sheet is private")
}

func TestExtractEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", `setResponse({"a":1});`, `{"a":1}`, false},
		{"with prefix", "/*O_o*/\ngoogle.visualization.Query.setResponse( {\"a\":1} );\n", `{"a":1}`, false},
		{"no envelope", `{"a":1}`, "", true},
		{"not closed", `setResponse({"a":1}`, "", true},
		{"not an object", `setResponse([1]);`, "", true},
		{"html page", `<html><title>Sign in</title></html>`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractEnvelope([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedPayload))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecodeJSONRows(t *testing.T) {
	body := `[{"ID":1,"Title":"Foo","Read":true,"Favorite":"TRUE"},{"ID":"2","Title":"Bar","Read":false,"Favorite":null,"rowIndex":9},{"ID":"","Title":"dropped"}]`
	rows, err := DecodeJSONRows([]byte(body))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "1", rows[0].ID())
	assert.Equal(t, 2, rows[0].Index)
	assert.True(t, rows[0].Flag("Read"))
	assert.True(t, rows[0].Flag("Favorite"))

	assert.Equal(t, 9, rows[1].Index)
	assert.False(t, rows[1].Flag("Read"))
	assert.Equal(t, "", rows[1].Get("Favorite"))
	_, hasIndex := rows[1].Fields["rowIndex"]
	assert.False(t, hasIndex)
}

func TestDecodeJSONRows_StringWrapped(t *testing.T) {
	rows, err := DecodeJSONRows([]byte(`"[{\"ID\":\"a\",\"Title\":\"x\"}]"`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "x", rows[0].Get("Title"))
}

func TestDecodeJSONRows_Malformed(t *testing.T) {
	for _, in := range []string{`{"status":"error"}`, `not json`, `[{"ID":`, ``} {
		_, err := DecodeJSONRows([]byte(in))
		assert.ErrorIs(t, err, ErrMalformedPayload, "input %q", in)
	}
}

func TestDecodeGViz_HeaderRowNotDetected(t *testing.T) {
	body := `google.visualization.Query.setResponse({"status":"ok","table":{"cols":[{"id":"A","label":"","type":"string"},{"id":"B","label":"","type":"string"},{"id":"C","label":"","type":"string"}],"rows":[{"c":[{"v":"ID"},{"v":" Title "},{"v":"Read"}]},{"c":[{"v":"dQw4w9WgXcQ"},{"v":"First"},{"v":"TRUE"}]},{"c":[{"v":"9bZkp7q19f0"},{"v":"Second"}]}],"parsedNumHeaders":0}});`

	rows, err := DecodeGViz([]byte(body))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "dQw4w9WgXcQ", rows[0].ID())
	assert.Equal(t, 2, rows[0].Index, "first data row after the promoted header")
	assert.Equal(t, "First", rows[0].Get("Title"))
	assert.True(t, rows[0].Flag("Read"))

	assert.Equal(t, "9bZkp7q19f0", rows[1].ID())
	assert.Equal(t, 3, rows[1].Index)
	assert.Equal(t, "", rows[1].Get("Read"))
}

func TestDecodeGViz_NoIdentifierColumn(t *testing.T) {
	body := `setResponse({"status":"ok","table":{"cols":[{"id":"A","label":"Title"},{"id":"B","label":"Read"}],"rows":[{"c":[{"v":"x"},{"v":true}]}],"parsedNumHeaders":1}});`

	_, err := DecodeGViz([]byte(body))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.Contains(t, err.Error(), "no identifier column")
}

func TestDecodeGViz_EmptyTable(t *testing.T) {
	body := `setResponse({"status":"ok","table":{"cols":[{"id":"A","label":"ID"}],"rows":[],"parsedNumHeaders":1}});`

	rows, err := DecodeGViz([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeGViz_MultiRowHeader(t *testing.T) {
	body := `setResponse({"status":"ok","table":{"cols":[{"id":"A","label":"ID note"},{"id":"B","label":"Title"}],"rows":[{"c":[{"v":"a1"},{"v":"x"}]}],"parsedNumHeaders":2}});`

	_, err := DecodeGViz([]byte(body))
	assert.ErrorIs(t, err, ErrMalformedPayload, "merged header labels hide the identifier")

	body = `setResponse({"status":"ok","table":{"cols":[{"id":"A","label":"ID"},{"id":"B","label":"Title"}],"rows":[{"c":[{"v":"a1"},{"v":"x"}]}],"parsedNumHeaders":2}});`
	rows, err := DecodeGViz([]byte(body))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Index)
}

func TestIsIDColumn(t *testing.T) {
	for _, name := range []string{"ID", "id", "Id", "iD", "아이디"} {
		assert.True(t, IsIDColumn(name), name)
	}
	for _, name := range []string{"", "A", "VideoID", "ID note"} {
		assert.False(t, IsIDColumn(name), name)
	}
}
