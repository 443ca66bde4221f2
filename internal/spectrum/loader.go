package spectrum

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

type Format string

var (
	extensions = map[string]Format{
		".csv":  FormatCSV,
		".txt":  FormatText,
		".text": FormatText,
	}

	// a comma touching a digit on either side, e.g. "0,512" or "650 ,1"
	decimalComma = regexp.MustCompile(`\d,|,\d`)

	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
)

// Table is the raw cell grid read from an uploaded file, before any numeric
// coercion. Columns is the width of the first row.
type Table struct {
	Columns int
	Rows    [][]string
}

func newTable(rows [][]string) *Table {
	t := &Table{Rows: rows}
	if len(rows) > 0 {
		t.Columns = len(rows[0])
	}
	return t
}

// DetectFormat maps the file name extension onto a supported input format.
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := extensions[ext]
	if !ok {
		if ext == "" {
			return "", NewFormatError("file '%s' has no extension, expected .csv, .txt or .text", filename)
		}
		return "", NewFormatError("file format '%s' is not supported", ext)
	}
	return format, nil
}

// Load reads an uploaded file into a raw table according to its extension.
func Load(data []byte, filename string, marker MarkerRule, commaProbeLines int) (*Table, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return loadCSV(data)
	default:
		return loadText(data, marker, commaProbeLines)
	}
}

func loadCSV(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, NewFormatError("reading CSV: %s", err)
		}
		rows = append(rows, row)
	}

	return newTable(rows), nil
}

func loadText(data []byte, marker MarkerRule, commaProbeLines int) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, NewFormatError("file is not valid UTF-8 text")
	}

	lines := splitLines(string(data))

	start := -1
	for i, line := range lines {
		if marker.Matches(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, NewFormatError("data marker %s not found", marker)
	}

	dataLines := lines[start:]
	if usesDecimalComma(dataLines, commaProbeLines) {
		for i, line := range dataLines {
			dataLines[i] = strings.ReplaceAll(line, ",", ".")
		}
	}

	var rows [][]string
	for _, line := range dataLines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, fields)
	}

	return newTable(rows), nil
}

// splitLines breaks text on \n, \r\n and bare \r. A final terminator does
// not start an extra empty line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// usesDecimalComma inspects the first n lines for a comma next to a digit.
func usesDecimalComma(lines []string, n int) bool {
	if n > len(lines) {
		n = len(lines)
	}
	for _, line := range lines[:n] {
		if decimalComma.MatchString(line) {
			return true
		}
	}
	return false
}

func (t *Table) String() string {
	return fmt.Sprintf("table(%d rows x %d columns)", len(t.Rows), t.Columns)
}
