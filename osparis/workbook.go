package osparis

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is Excel's sheet name limit in characters.
const maxSheetName = 31

// Workbook renders every tab of a result as one sheet: the original upload
// first (active), then each lane in order.
func (r *Result) Workbook() ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	used := map[string]bool{}
	add := func(name string, t *Table, active bool) error {
		name = sheetName(name, used)
		idx, err := x.NewSheet(name)
		if err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
		rows := append([][]string{t.Columns}, t.Rows...)
		for ri, row := range rows {
			for ci, v := range row {
				cell, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				if err != nil {
					return err
				}
				if err := x.SetCellStr(name, cell, v); err != nil {
					return err
				}
			}
		}
		if active {
			x.SetActiveSheet(idx)
		}
		return nil
	}

	if err := add(OriginalTab, r.Original, true); err != nil {
		return nil, err
	}
	for _, l := range r.Lanes {
		if err := add(l.Name, l.Table, false); err != nil {
			return nil, err
		}
	}
	if err := x.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := x.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sheetName strips characters Excel rejects, truncates to 31 runes and makes
// the name unique within the workbook. Excel compares sheet names case-insensitively.
func sheetName(name string, used map[string]bool) string {
	clean := make([]rune, 0, len(name))
	for _, c := range name {
		switch c {
		case ':', '\\', '/', '?', '*', '[', ']':
			c = '_'
		}
		clean = append(clean, c)
	}
	base := strings.Trim(string(clean), "'")
	if base == "" || strings.EqualFold(base, "Sheet1") {
		base = "Lane"
	}
	base = truncRunes(base, maxSheetName)

	name = base
	for k := 2; used[strings.ToLower(name)]; k++ {
		suffix := fmt.Sprintf("_%d", k)
		name = truncRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
