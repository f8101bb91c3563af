package osparis

import (
	"fmt"
	"strconv"
	"strings"
)

/* ──────────── CanoeTrainer lane layout (keep order) ──────────── */

var targetHeader = []string{
	"Distance", "Speed", "Frequency", "Schlagvortrieb",
	"Acceleration", "Pace", "HR", "TimeFromStart",
}

// TargetHeader returns the fixed column order of every lane table.
func TargetHeader() []string { return append([]string(nil), targetHeader...) }

const distanceCol = "Distance"

// synthesized is the value of every column the export has no source for.
const synthesized = "0"

// Lane is one detected lane group, reshaped.
type Lane struct {
	Index int
	Name  string
	Table *Table
}

// laneCols names the source columns of lane group i.
type laneCols struct {
	speed, stroke, time, shortName string
}

func colsFor(i int) laneCols {
	s := strconv.Itoa(i)
	return laneCols{
		speed:     "Speed" + s,
		stroke:    "Stroke" + s,
		time:      "Time" + s,
		shortName: "ShortName" + s,
	}
}

func (c laneCols) required(withTime bool) []string {
	req := []string{distanceCol, c.speed, c.stroke, c.shortName}
	if withTime {
		req = append(req, c.time)
	}
	return req
}

// nameCounter counts base-name occurrences for one conversion run.
type nameCounter map[string]int

// next returns name on its first occurrence and name_k on the k-th.
func (n nameCounter) next(name string) string {
	n[name]++
	if k := n[name]; k > 1 {
		return fmt.Sprintf("%s_%d", name, k)
	}
	return name
}

// laneName is the first ShortName value; only a zero-row table falls back to "Lane i".
// An empty first value stays empty.
func laneName(t *Table, c laneCols, i int) string {
	if len(t.Rows) == 0 {
		return fmt.Sprintf("Lane %d", i)
	}
	return t.Rows[0][t.Col(c.shortName)]
}

// ExtractLanes returns one reshaped table per complete lane group, in slot order.
// Incomplete groups are skipped; no lanes at all is an empty, non-nil slice.
func ExtractLanes(t *Table, opt Options) []Lane {
	opt = opt.withDefaults()
	lanes := []Lane{}
	names := nameCounter{}

	for i := 1; i <= opt.LaneSlots; i++ {
		c := colsFor(i)
		if !t.Has(c.required(opt.HasTimeColumn)...) {
			continue
		}

		name := laneName(t, c, i)
		if opt.DedupNames {
			name = names.next(name)
		}
		lanes = append(lanes, Lane{Index: i, Name: name, Table: reshape(t, c, opt.HasTimeColumn)})
	}
	return lanes
}

// reshape copies Distance/Speed/Stroke(/Time) into the CanoeTrainer layout and
// fills the columns the export lacks with "0".
func reshape(t *Table, c laneCols, withTime bool) *Table {
	src := map[string]int{
		"Distance":  t.Col(distanceCol),
		"Speed":     t.Col(c.speed),
		"Frequency": t.Col(c.stroke),
	}
	if withTime {
		src["TimeFromStart"] = t.Col(c.time)
	}

	rows := make([][]string, len(t.Rows))
	for r, rec := range t.Rows {
		row := make([]string, len(targetHeader))
		for d, name := range targetHeader {
			if s, ok := src[name]; ok {
				row[d] = numericCell(rec[s])
			} else {
				row[d] = synthesized
			}
		}
		rows[r] = row
	}
	return NewTable(TargetHeader(), rows)
}

// numericCell drops the padding around a number so " 5.0" is written as 5.0,
// not as a quoted field. Anything else is copied as is.
func numericCell(v string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed == v {
		return v
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return v
	}
	return trimmed
}
