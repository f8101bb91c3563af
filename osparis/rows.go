package osparis

import (
	"strconv"
	"strings"
)

// DefaultDistanceThreshold is the longest race distance CanoeTrainer accepts.
const DefaultDistanceThreshold = 1000.0

// FilterDistance keeps rows whose Distance is at most max, in order.
// A blank or non-numeric Distance never passes the comparison.
func FilterDistance(t *Table, max float64) *Table {
	di := t.Col(distanceCol)
	if di < 0 {
		return t
	}
	kept := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		d, err := strconv.ParseFloat(strings.TrimSpace(row[di]), 64)
		if err != nil || !(d <= max) {
			continue
		}
		kept = append(kept, row)
	}
	return NewTable(t.Columns, kept)
}

// ReformatTime turns "M:SS.HH" into "{M*60+SS},HH". Values of any other
// shape come back unchanged.
func ReformatTime(s string) string {
	minutes, rest, ok := splitOnce(s, ":")
	if !ok {
		return s
	}
	seconds, hundredths, ok := splitOnce(rest, ".")
	if !ok {
		return s
	}
	m, err := strconv.Atoi(strings.TrimSpace(minutes))
	if err != nil {
		return s
	}
	sec, err := strconv.Atoi(strings.TrimSpace(seconds))
	if err != nil {
		return s
	}
	return strconv.Itoa(m*60+sec) + "," + hundredths
}

// splitOnce splits s around sep only when sep occurs exactly once.
func splitOnce(s, sep string) (string, string, bool) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// reformatTimes rewrites TimeFromStart in place on a freshly reshaped table.
func reformatTimes(t *Table) {
	ti := t.Col("TimeFromStart")
	if ti < 0 {
		return
	}
	for _, row := range t.Rows {
		row[ti] = ReformatTime(row[ti])
	}
}
