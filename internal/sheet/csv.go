package sheet

import (
	"regexp"
	"strings"
)

var lineSplitRe = regexp.MustCompile(`\r?\n`)

// ParseCSV converts a published-sheet CSV export into rows.
//
// The first line is the header. Fields may be double-quoted to embed commas;
// doubled quotes inside a quoted field are not unescaped. Rows with more
// values than headers lose the extras, short rows get "" for the rest, and
// rows without an identifier are dropped.
func ParseCSV(text string) Collection {
	lines := lineSplitRe.Split(text, -1)
	if len(lines) < 2 {
		return Collection{}
	}

	headers := strings.Split(lines[0], ",")
	for i := range headers {
		headers[i] = HeaderName(headers[i])
	}

	rows := make(Collection, 0, len(lines)-1)
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := SplitCSVLine(line)
		fields := make(map[string]string, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(values) {
				fields[h] = values[j]
			} else {
				fields[h] = ""
			}
		}
		rows = append(rows, Row{Index: i + 2, Fields: fields})
	}
	return keepIdentified(rows)
}

// SplitCSVLine splits one CSV line on commas that sit outside a quoted span,
// i.e. commas preceded by an even number of '"' on the line. Each field loses
// one leading and one trailing quote, then surrounding whitespace.
func SplitCSVLine(line string) []string {
	var fields []string
	quotes := 0
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quotes++
		case ',':
			if quotes%2 == 0 {
				fields = append(fields, cleanField(line[start:i]))
				start = i + 1
			}
		}
	}
	return append(fields, cleanField(line[start:]))
}

func cleanField(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.TrimSpace(s)
}
