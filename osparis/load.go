package osparis

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrParse is returned when the upload cannot be read as a ';'-delimited table.
var ErrParse = errors.New("parse error")

// Table is a header plus rows of string cells. Both the wide OS Paris export
// and every per-lane CanoeTrainer table use it.
type Table struct {
	Columns []string
	Rows    [][]string

	idx map[string]int
}

// NewTable builds a table and indexes its columns. Rows are not copied.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{Columns: columns, Rows: rows, idx: make(map[string]int, len(columns))}
	for i, c := range columns {
		t.idx[c] = i
	}
	return t
}

// Col returns the position of a column, or -1.
func (t *Table) Col(name string) int {
	if i, ok := t.idx[name]; ok {
		return i
	}
	return -1
}

// Has reports whether every named column exists.
func (t *Table) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := t.idx[n]; !ok {
			return false
		}
	}
	return true
}

var bom = []byte("\xef\xbb\xbf")

// Load reads an OS Paris export: ';' separator, header row first.
func Load(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", ErrParse, err)
	}
	raw = bytes.TrimPrefix(raw, bom)
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8 text", ErrParse)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrParse)
	}

	rdr := csv.NewReader(bytes.NewReader(raw))
	rdr.Comma = ';'

	header, err := rdr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrParse, err)
	}
	// names are kept verbatim: " Speed1" is not Speed1
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		if h == "" {
			return nil, fmt.Errorf("%w: header column %d is empty", ErrParse, i+1)
		}
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrParse, h)
		}
		seen[h] = struct{}{}
	}

	// csv.Reader pins FieldsPerRecord to the header width after the first read.
	rows, err := rdr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return NewTable(header, rows), nil
}
