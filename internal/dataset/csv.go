package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// missingTokens are the cell values read as missing data
var missingTokens = map[string]struct{}{
	"":        {},
	"NaN":     {},
	"nan":     {},
	"-NaN":    {},
	"-nan":    {},
	"NA":      {},
	"N/A":     {},
	"n/a":     {},
	"NULL":    {},
	"null":    {},
	"#N/A":    {},
	"#NA":     {},
	"<NA>":    {},
	"None":    {},
	"1.#QNAN": {},
}

// table is a parsed CSV file: header plus raw string rows
type table struct {
	dataset string
	path    string
	header  []string
	index   map[string]int
	rows    [][]string
	lines   []int
}

// readTable reads a whole CSV file. A leading UTF-8 BOM is stripped and the
// content must be valid UTF-8. Rows shorter than the header are padded with
// empty cells; longer rows are an error.
func readTable(dataset, path string) (*table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newLoadError(dataset, path, ErrFileNotFound)
		}
		return nil, newLoadError(dataset, path, fmt.Errorf("%w: %v", ErrFileNotFound, err))
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, newLoadError(dataset, path, fmt.Errorf("%w: content is not valid UTF-8", ErrMalformedCSV))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newLoadError(dataset, path, fmt.Errorf("%w: no header row", ErrMalformedCSV))
		}
		return nil, parseError(dataset, path, err)
	}

	t := &table{
		dataset: dataset,
		path:    path,
		header:  header,
		index:   make(map[string]int, len(header)),
	}
	for i, name := range header {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(dataset, path, err)
		}

		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, &LoadError{
				Dataset: dataset,
				Path:    path,
				Line:    line,
				Err:     fmt.Errorf("%w: expected %d fields, saw %d", ErrMalformedCSV, len(header), len(record)),
			}
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		ln, _ := reader.FieldPos(0)
		t.rows = append(t.rows, record)
		t.lines = append(t.lines, ln)
	}

	return t, nil
}

func parseError(dataset, path string, err error) *LoadError {
	le := &LoadError{Dataset: dataset, Path: path, Err: fmt.Errorf("%w: %v", ErrMalformedCSV, err)}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		le.Line = pe.Line
	}
	return le
}

// require fails with ErrMissingColumn for the first absent column
func (t *table) require(columns ...string) error {
	for _, c := range columns {
		if _, ok := t.index[c]; !ok {
			return &LoadError{Dataset: t.dataset, Path: t.path, Column: c, Err: ErrMissingColumn}
		}
	}
	return nil
}

// requireWidth fails unless the header has exactly n columns
func (t *table) requireWidth(n int) error {
	var err error
	switch {
	case len(t.header) < n:
		err = fmt.Errorf("%w: expected %d columns, header has %d", ErrMissingColumn, n, len(t.header))
	case len(t.header) > n:
		err = fmt.Errorf("%w: expected %d columns, header has %d", ErrMalformedCSV, n, len(t.header))
	default:
		return nil
	}
	return &LoadError{Dataset: t.dataset, Path: t.path, Err: err}
}

// text returns the cell for column name in data row i with missing tokens normalised to ""
func (t *table) text(i int, name string) string {
	return cleanText(t.rows[i][t.index[name]])
}

// number parses the cell for column name in data row i; missing cells are NaN
func (t *table) number(i int, name string) (float64, error) {
	return t.numberAt(i, t.index[name])
}

func (t *table) numberAt(i, col int) (float64, error) {
	raw := strings.TrimSpace(t.rows[i][col])
	if isMissing(raw) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &LoadError{
			Dataset: t.dataset,
			Path:    t.path,
			Line:    t.lines[i],
			Column:  t.header[col],
			Err:     fmt.Errorf("%w: %q is not a number", ErrMalformedCSV, raw),
		}
	}
	return v, nil
}

func isMissing(s string) bool {
	_, ok := missingTokens[s]
	return ok
}

func cleanText(s string) string {
	if isMissing(strings.TrimSpace(s)) {
		return ""
	}
	return s
}
