package sheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DecodeXLSX reads a workbook export. The tab named sheetName is used, or the
// first tab when sheetName is empty. Row 1 is the header and each data row
// keeps its sheet row number as its index.
func DecodeXLSX(body []byte, sheetName string) (Collection, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	defer f.Close()

	if sheetName == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedPayload)
		}
		sheetName = list[0]
	}

	grid, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrMalformedPayload, sheetName, err)
	}
	if len(grid) < 2 {
		return Collection{}, nil
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = HeaderName(h)
	}

	rows := make(Collection, 0, len(grid)-1)
	for i, cells := range grid[1:] {
		if len(cells) == 0 {
			continue
		}
		fields := make(map[string]string, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(cells) {
				fields[h] = cells[j]
			} else {
				fields[h] = ""
			}
		}
		rows = append(rows, Row{Index: i + 2, Fields: fields})
	}
	return keepIdentified(rows), nil
}
