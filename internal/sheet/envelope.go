package sheet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrMalformedPayload reports a remote response whose shape is not what the
// decoder expects.
var ErrMalformedPayload = errors.New("malformed remote payload")

const (
	envelopeOpen  = "setResponse("
	envelopeClose = ");"
)

// ExtractEnvelope returns the JSON object embedded in a Google Visualization
// callback response, e.g.
//
//	/*O_o*/
//	google.visualization.Query.setResponse({...});
func ExtractEnvelope(body []byte) ([]byte, error) {
	start := bytes.Index(body, []byte(envelopeOpen))
	if start < 0 {
		return nil, fmt.Errorf("%w: envelope %q not found", ErrMalformedPayload, envelopeOpen)
	}
	start += len(envelopeOpen)
	end := bytes.LastIndex(body, []byte(envelopeClose))
	if end < start {
		return nil, fmt.Errorf("%w: envelope not closed", ErrMalformedPayload)
	}
	inner := bytes.TrimSpace(body[start:end])
	if len(inner) == 0 || inner[0] != '{' {
		return nil, fmt.Errorf("%w: envelope does not wrap an object", ErrMalformedPayload)
	}
	return inner, nil
}

type gvizResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Reason          string `json:"reason"`
		Message         string `json:"message"`
		DetailedMessage string `json:"detailed_message"`
	} `json:"errors"`
	Table *struct {
		Cols []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
			Type  string `json:"type"`
		} `json:"cols"`
		Rows             []gvizRow `json:"rows"`
		ParsedNumHeaders int       `json:"parsedNumHeaders"`
	} `json:"table"`
}

type gvizRow struct {
	C []*gvizCell `json:"c"`
}

// cell returns column j, nil when the row is short.
func (r gvizRow) cell(j int) *gvizCell {
	if j < len(r.C) {
		return r.C[j]
	}
	return nil
}

type gvizCell struct {
	V any    `json:"v"`
	F string `json:"f"`
}

var gvizDateRe = regexp.MustCompile(`^Date\((\d+),(\d+),(\d+)(?:,(\d+),(\d+),(\d+))?\)$`)

// DecodeGViz decodes a Google Visualization response (envelope included)
// into rows. Column labels become field names and unlabeled columns fall
// back to their letter id. When the feed found no header row, the first row
// supplies the names. A non-empty table without an identifier column is
// malformed.
func DecodeGViz(body []byte) (Collection, error) {
	inner, err := ExtractEnvelope(body)
	if err != nil {
		return nil, err
	}
	var resp gvizResponse
	dec := json.NewDecoder(bytes.NewReader(inner))
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if resp.Status == "error" {
		msg := "query failed"
		if len(resp.Errors) > 0 {
			msg = resp.Errors[0].Message
			if d := resp.Errors[0].DetailedMessage; d != "" {
				msg += ": " + d
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, msg)
	}
	if resp.Table == nil {
		return nil, fmt.Errorf("%w: missing table", ErrMalformedPayload)
	}

	cols, data := resp.Table.Cols, resp.Table.Rows
	first := max(resp.Table.ParsedNumHeaders, 1) + 1
	names := make([]string, len(cols))
	labeled := false
	for i, c := range cols {
		names[i] = HeaderName(c.Label)
		labeled = labeled || names[i] != ""
	}
	// With no detected header row the feed leaves every label blank and
	// sends the header as the first data row.
	if !labeled && resp.Table.ParsedNumHeaders == 0 && len(data) > 0 {
		for j := range names {
			names[j] = HeaderName(gvizValue(data[0].cell(j)))
		}
		data, first = data[1:], 2
	}
	for i := range names {
		if names[i] == "" {
			names[i] = cols[i].ID
		}
	}
	if len(data) > 0 && !slices.ContainsFunc(names, IsIDColumn) {
		return nil, fmt.Errorf("%w: no identifier column among %q", ErrMalformedPayload, names)
	}

	rows := make(Collection, 0, len(data))
	for i, r := range data {
		fields := make(map[string]string, len(names))
		for j, name := range names {
			if name == "" {
				continue
			}
			fields[name] = gvizValue(r.cell(j))
		}
		rows = append(rows, Row{Index: i + first, Fields: fields})
	}
	return keepIdentified(rows), nil
}

func gvizValue(c *gvizCell) string {
	if c == nil || c.V == nil {
		return ""
	}
	if s, ok := c.V.(string); ok {
		if m := gvizDateRe.FindStringSubmatch(s); m != nil {
			return formatGVizDate(m)
		}
		return strings.TrimSpace(s)
	}
	return scalarString(c.V)
}

// formatGVizDate renders Date(y,m,d[,h,mi,s]) with the zero-based month fixed.
func formatGVizDate(m []string) string {
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if m[4] == "" {
		return fmt.Sprintf("%04d-%02d-%02d", y, mo+1, d)
	}
	h, _ := strconv.Atoi(m[4])
	mi, _ := strconv.Atoi(m[5])
	s, _ := strconv.Atoi(m[6])
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", y, mo+1, d, h, mi, s)
}

// scalarString normalises a decoded JSON scalar to its sheet text.
func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case bool:
		return FormatBool(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := x.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
