package sheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// DecodeJSONRows decodes the Apps Script GET payload: a JSON array of row
// objects, or a JSON string that itself holds that array. A numeric
// "rowIndex" member is used as the row index; otherwise rows are numbered
// from 2 in array order.
func DecodeJSONRows(body []byte) (Collection, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		body = bytes.TrimSpace([]byte(inner))
	}
	if len(body) == 0 || body[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array of rows", ErrMalformedPayload)
	}

	var raw []map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	rows := make(Collection, 0, len(raw))
	for i, obj := range raw {
		r := Row{Index: i + 2, Fields: make(map[string]string, len(obj))}
		for k, v := range obj {
			if k == "rowIndex" {
				if n, ok := v.(json.Number); ok {
					if idx, err := strconv.Atoi(n.String()); err == nil {
						r.Index = idx
					}
				}
				continue
			}
			r.Fields[HeaderName(k)] = scalarString(v)
		}
		rows = append(rows, r)
	}
	return keepIdentified(rows), nil
}
