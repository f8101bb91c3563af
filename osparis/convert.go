// Package osparis converts OS Paris race-telemetry exports into per-lane
// CanoeTrainer CSV files.
//
// An export is one wide table: a shared Distance column and, for each lane
// slot i, Speed{i}, Stroke{i}, ShortName{i} and optionally Time{i}. Convert
// loads it, detects the complete lane groups, reshapes each into the fixed
// CanoeTrainer layout and post-processes the rows according to Options.
package osparis

import (
	"fmt"
	"io"
	"strings"
)

// Options selects the capabilities of a conversion run.
type Options struct {
	// HasTimeColumn requires Time{i} and maps it to TimeFromStart. Without it
	// TimeFromStart is synthesized as "0" and times are never reformatted.
	HasTimeColumn bool
	// ApplyDistanceFilter drops rows with Distance above DistanceThreshold.
	ApplyDistanceFilter bool
	// DedupNames suffixes repeated lane names with _2, _3, ...
	DedupNames bool
	// DecimalCommaOutput replaces every '.' with ',' in encoded CSV.
	DecimalCommaOutput bool

	LaneSlots         int     // 0 means 10
	DistanceThreshold float64 // 0 means DefaultDistanceThreshold
}

// DefaultLaneSlots is the number of lane groups an OS Paris export can carry.
const DefaultLaneSlots = 10

// TimedOptions is the full conversion: time column, distance filter, name
// dedup and decimal comma output.
func TimedOptions() Options {
	return Options{
		HasTimeColumn:       true,
		ApplyDistanceFilter: true,
		DedupNames:          true,
		DecimalCommaOutput:  true,
	}
}

// PlainOptions converts exports without Time columns and leaves rows,
// names and decimals untouched.
func PlainOptions() Options {
	return Options{}
}

// Profile resolves a profile name ("timed" or "plain").
func Profile(name string) (Options, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "timed":
		return TimedOptions(), nil
	case "plain":
		return PlainOptions(), nil
	}
	return Options{}, fmt.Errorf("unknown profile %q", name)
}

func (o Options) withDefaults() Options {
	if o.LaneSlots <= 0 {
		o.LaneSlots = DefaultLaneSlots
	}
	if o.DistanceThreshold == 0 {
		o.DistanceThreshold = DefaultDistanceThreshold
	}
	return o
}

// OriginalTab is the tab name of the unmodified upload.
const OriginalTab = "Original DataFrame"

// NoLanesMessage is shown when no complete lane group exists.
const NoLanesMessage = "No lanes with the required columns were found."

// DefaultFileTemplate is the CanoeTrainer import file name; {name} is the lane name.
const DefaultFileTemplate = "Boat x_600x_data_{name}_OS_2024_Paris.csv"

// FileName renders a lane's download name from a template containing {name}.
func FileName(template, lane string) string {
	if template == "" {
		template = DefaultFileTemplate
	}
	return strings.ReplaceAll(template, "{name}", lane)
}

// Result is one finished conversion.
type Result struct {
	Original *Table
	Lanes    []Lane
	Options  Options
}

// Convert runs the whole pipeline over one upload.
func Convert(r io.Reader, opt Options) (*Result, error) {
	wide, err := Load(r)
	if err != nil {
		return nil, err
	}
	return ConvertTable(wide, opt), nil
}

// ConvertTable runs lane extraction and row post-processing on a loaded table.
func ConvertTable(wide *Table, opt Options) *Result {
	opt = opt.withDefaults()
	lanes := ExtractLanes(wide, opt)
	for i := range lanes {
		lanes[i].Table = postProcess(lanes[i].Table, opt)
	}
	return &Result{Original: wide, Lanes: lanes, Options: opt}
}

// postProcess filters then reformats. Synthesized "0" times are left alone.
func postProcess(t *Table, opt Options) *Table {
	if opt.ApplyDistanceFilter {
		t = FilterDistance(t, opt.DistanceThreshold)
	}
	if opt.HasTimeColumn {
		reformatTimes(t)
	}
	return t
}

// Encode serializes one lane with the run's decimal setting.
func (r *Result) Encode(l Lane) ([]byte, error) {
	return Encode(l.Table, r.Options.DecimalCommaOutput)
}

// Empty reports whether no lane was detected.
func (r *Result) Empty() bool { return len(r.Lanes) == 0 }
