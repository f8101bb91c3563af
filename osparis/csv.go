package osparis

import (
	"bytes"
	"encoding/csv"
)

// Encode serializes t to UTF-8 bytes with ';' separators and no index column.
// With decimalComma every '.' in the output becomes ',', including periods
// inside text fields.
func Encode(t *Table, decimalComma bool) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Comma = ';'
	if err := cw.Write(t.Columns); err != nil {
		return nil, err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if decimalComma {
		out = bytes.ReplaceAll(out, []byte("."), []byte(","))
	}
	return out, nil
}
