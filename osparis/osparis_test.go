package osparis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, lines ...string) *Table {
	t.Helper()
	tbl, err := Load(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	return tbl
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("reads header and rows", func(t *testing.T) {
		t.Parallel()
		tbl := load(t, "Distance;Speed1", "0;5.0", "10;5.1")
		assert.Equal(t, []string{"Distance", "Speed1"}, tbl.Columns)
		assert.Equal(t, [][]string{{"0", "5.0"}, {"10", "5.1"}}, tbl.Rows)
		assert.Equal(t, 1, tbl.Col("Speed1"))
		assert.Equal(t, -1, tbl.Col("Speed2"))
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		t.Parallel()
		tbl, err := Load(strings.NewReader("\xef\xbb\xbfDistance;Speed1\n0;1\n"))
		require.NoError(t, err)
		assert.True(t, tbl.Has("Distance"))
	})

	t.Run("header names are kept verbatim", func(t *testing.T) {
		t.Parallel()
		tbl := load(t, "Distance; Speed1;Stroke1;ShortName1", "0;5.0;40;A")
		assert.Equal(t, []string{"Distance", " Speed1", "Stroke1", "ShortName1"}, tbl.Columns)
		assert.False(t, tbl.Has("Speed1"))
		assert.Empty(t, ExtractLanes(tbl, PlainOptions()))
	})

	t.Run("header only is a valid empty table", func(t *testing.T) {
		t.Parallel()
		tbl := load(t, "Distance;Speed1")
		assert.Empty(t, tbl.Rows)
	})

	errCases := map[string]string{
		"empty":          "",
		"whitespace":     "  \n\n",
		"ragged rows":    "Distance;Speed1\n0;1;2\n",
		"not utf8":       "Distance;Speed1\n0;\xff\xfe\n",
		"duplicate name": "Distance;Distance\n0;1\n",
		"blank name":     "Distance;;Speed1\n0;1;2\n",
		"open quote":     "Distance;ShortName1\n0;\"A\n5;B\n",
		"merged rows":    "Distance;Speed1;Stroke1;ShortName1\n0;5.0;40;\"Crew A\n500;5.5;42;Crew A\n1200;5.6;43;Crew A\n",
	}
	for name, input := range errCases {
		input := input
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(strings.NewReader(input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestExtractLanes_Detection(t *testing.T) {
	t.Parallel()

	tbl := load(t,
		"Distance;Speed1;Stroke1;Time1;ShortName1;Speed2;Stroke2;ShortName2;Speed4;Stroke4;Time4;ShortName4",
		"0;5.0;40;0:00.00;GER;4.9;41;ITA;5.2;39;0:00.00;HUN",
	)

	t.Run("timed requires Time column", func(t *testing.T) {
		t.Parallel()
		lanes := ExtractLanes(tbl, TimedOptions())
		require.Len(t, lanes, 2)
		assert.Equal(t, 1, lanes[0].Index)
		assert.Equal(t, "GER", lanes[0].Name)
		assert.Equal(t, 4, lanes[1].Index)
		assert.Equal(t, "HUN", lanes[1].Name)
	})

	t.Run("plain ignores Time column", func(t *testing.T) {
		t.Parallel()
		lanes := ExtractLanes(tbl, PlainOptions())
		require.Len(t, lanes, 3)
		for i, want := range []int{1, 2, 4} {
			assert.Equal(t, want, lanes[i].Index)
			assert.Equal(t, targetHeader, lanes[i].Table.Columns)
		}
	})

	t.Run("lane slots bound the scan", func(t *testing.T) {
		t.Parallel()
		opt := PlainOptions()
		opt.LaneSlots = 2
		lanes := ExtractLanes(tbl, opt)
		require.Len(t, lanes, 2)
		assert.Equal(t, 2, lanes[1].Index)
	})

	t.Run("missing Distance yields no lanes", func(t *testing.T) {
		t.Parallel()
		noDist := load(t, "Speed1;Stroke1;ShortName1", "5;40;A")
		lanes := ExtractLanes(noDist, PlainOptions())
		assert.NotNil(t, lanes)
		assert.Empty(t, lanes)
	})
}

func TestExtractLanes_Names(t *testing.T) {
	t.Parallel()

	header := "Distance;Speed1;Stroke1;Time1;ShortName1;Speed2;Stroke2;Time2;ShortName2;Speed3;Stroke3;Time3;ShortName3"

	t.Run("dedup suffixes repeats", func(t *testing.T) {
		t.Parallel()
		tbl := load(t, header, "0;1;2;0:01.00;Crew A;1;2;0:01.00;Crew A;1;2;0:01.00;Crew A")
		lanes := ExtractLanes(tbl, TimedOptions())
		require.Len(t, lanes, 3)
		assert.Equal(t, "Crew A", lanes[0].Name)
		assert.Equal(t, "Crew A_2", lanes[1].Name)
		assert.Equal(t, "Crew A_3", lanes[2].Name)
	})

	t.Run("dedup state is per run", func(t *testing.T) {
		t.Parallel()
		tbl := load(t, header, "0;1;2;0:01.00;Crew A;1;2;0:01.00;Crew B;1;2;0:01.00;Crew C")
		first := ExtractLanes(tbl, TimedOptions())
		second := ExtractLanes(tbl, TimedOptions())
		assert.Equal(t, first[0].Name, second[0].Name)
		assert.Equal(t, "Crew A", second[0].Name)
	})

	t.Run("plain keeps repeats", func(t *testing.T) {
		t.Parallel()
		tbl := load(t, header, "0;1;2;0:01.00;Crew A;1;2;0:01.00;Crew A;1;2;0:01.00;Crew B")
		lanes := ExtractLanes(tbl, PlainOptions())
		require.Len(t, lanes, 3)
		assert.Equal(t, "Crew A", lanes[0].Name)
		assert.Equal(t, "Crew A", lanes[1].Name)
	})

	t.Run("zero rows fall back to lane index", func(t *testing.T) {
		t.Parallel()
		tbl := load(t, "Distance;Speed3;Stroke3;Time3;ShortName3")
		lanes := ExtractLanes(tbl, TimedOptions())
		require.Len(t, lanes, 1)
		assert.Equal(t, "Lane 3", lanes[0].Name)
		assert.Empty(t, lanes[0].Table.Rows)
	})

	t.Run("empty first value is kept", func(t *testing.T) {
		t.Parallel()
		tbl := load(t, "Distance;Speed1;Stroke1;ShortName1", "0;1;2;", "10;1;2;Crew X")
		lanes := ExtractLanes(tbl, PlainOptions())
		require.Len(t, lanes, 1)
		assert.Equal(t, "", lanes[0].Name)
	})
}

func TestReformatTime(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2:05.33":  "125,33",
		"0:09.00":  "9,00",
		"10:00.5":  "600,5",
		"abc":      "abc",
		"":         "",
		"1:2:3.4":  "1:2:3.4",
		"1:05":     "1:05",
		"1:05.3.4": "1:05.3.4",
		"x:05.33":  "x:05.33",
		"1:yy.33":  "1:yy.33",
		"0:00.00":  "0,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, ReformatTime(in), "input %q", in)
	}
}

func TestFilterDistance(t *testing.T) {
	t.Parallel()

	tbl := NewTable([]string{"Distance", "Speed"}, [][]string{
		{"0", "a"}, {"999.9", "b"}, {"1000", "c"}, {"1000.1", "d"}, {"", "e"}, {"n/a", "f"}, {"250", "g"},
	})
	got := FilterDistance(tbl, DefaultDistanceThreshold)

	want := [][]string{{"0", "a"}, {"999.9", "b"}, {"1000", "c"}, {"250", "g"}}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("FilterDistance rows mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, tbl.Rows, 7, "input table must not change")
}

func TestEncode(t *testing.T) {
	t.Parallel()

	tbl := NewTable([]string{"Distance", "Speed", "Note"}, [][]string{
		{"10.5", "4.25", "St. Louis"},
		{"20", "5", "a;b"},
	})

	t.Run("plain", func(t *testing.T) {
		t.Parallel()
		b, err := Encode(tbl, false)
		require.NoError(t, err)
		assert.Equal(t, "Distance;Speed;Note\n10.5;4.25;St. Louis\n20;5;\"a;b\"\n", string(b))
	})

	t.Run("decimal comma replaces every period", func(t *testing.T) {
		t.Parallel()
		b, err := Encode(tbl, true)
		require.NoError(t, err)
		assert.Equal(t, "Distance;Speed;Note\n10,5;4,25;St, Louis\n20;5;\"a;b\"\n", string(b))
	})
}

func TestConvert_EndToEnd(t *testing.T) {
	t.Parallel()

	input := "Distance;Speed1;Stroke1;ShortName1\n0;5.0;40;Crew X\n500;5.5;42;Crew X\n"

	res, err := Convert(strings.NewReader(input), PlainOptions())
	require.NoError(t, err)
	require.Len(t, res.Lanes, 1)

	lane := res.Lanes[0]
	assert.Equal(t, "Crew X", lane.Name)
	assert.Equal(t,
		[]string{"Distance", "Speed", "Frequency", "Schlagvortrieb", "Acceleration", "Pace", "HR", "TimeFromStart"},
		lane.Table.Columns)

	want := [][]string{
		{"0", "5.0", "40", "0", "0", "0", "0", "0"},
		{"500", "5.5", "42", "0", "0", "0", "0", "0"},
	}
	if diff := cmp.Diff(want, lane.Table.Rows); diff != "" {
		t.Errorf("lane rows mismatch (-want +got):\n%s", diff)
	}

	b, err := res.Encode(lane)
	require.NoError(t, err)
	assert.Equal(t,
		"Distance;Speed;Frequency;Schlagvortrieb;Acceleration;Pace;HR;TimeFromStart\n"+
			"0;5.0;40;0;0;0;0;0\n500;5.5;42;0;0;0;0;0\n",
		string(b))
	assert.Equal(t, []string{"Distance", "Speed1", "Stroke1", "ShortName1"}, res.Original.Columns)
}

func TestConvert_PaddedNumbers(t *testing.T) {
	t.Parallel()

	input := "Distance;Speed1;Stroke1;Time1;ShortName1\n 50; 5.0 ;40; 0:09.00;A\n"
	res, err := Convert(strings.NewReader(input), TimedOptions())
	require.NoError(t, err)
	require.Len(t, res.Lanes, 1)
	assert.Equal(t, []string{"50", "5.0", "40", "0", "0", "0", "0", "9,00"}, res.Lanes[0].Table.Rows[0])

	b, err := res.Encode(res.Lanes[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), "\n50;5,0;40;0;0;0;0;9,00\n")
	assert.NotContains(t, string(b), `"`)
	assert.Equal(t, " 5.0 ", res.Original.Rows[0][1], "original tab keeps the raw cell")
}

func TestConvert_Timed(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"ShortName1;Time1;Distance;Stroke1;Speed1",
		"GER;0:09.00;50;44;5.51",
		"GER;2:05.33;1000;41;5.02",
		"GER;2:06.10;1010;30;3.10",
	}, "\n")

	res, err := Convert(strings.NewReader(input), TimedOptions())
	require.NoError(t, err)
	require.Len(t, res.Lanes, 1)

	want := [][]string{
		{"50", "5.51", "44", "0", "0", "0", "0", "9,00"},
		{"1000", "5.02", "41", "0", "0", "0", "0", "125,33"},
	}
	if diff := cmp.Diff(want, res.Lanes[0].Table.Rows); diff != "" {
		t.Errorf("timed rows mismatch (-want +got):\n%s", diff)
	}

	b, err := res.Encode(res.Lanes[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), "50;5,51;44;0;0;0;0;9,00\n")
	assert.NotContains(t, string(b), ".")
	assert.Len(t, res.Original.Rows, 3, "original tab stays unfiltered")
}

func TestConvert_Idempotent(t *testing.T) {
	t.Parallel()

	input := []byte("Distance;Speed1;Stroke1;Time1;ShortName1;Speed2;Stroke2;Time2;ShortName2\n" +
		"0;5.0;40;0:00.00;A;4.0;38;0:00.00;A\n1200;5.5;42;4:01.20;A;4.5;39;4:10.00;A\n")

	encodeAll := func() [][]byte {
		res, err := Convert(bytes.NewReader(input), TimedOptions())
		require.NoError(t, err)
		var out [][]byte
		for _, l := range res.Lanes {
			b, err := res.Encode(l)
			require.NoError(t, err)
			out = append(out, b)
		}
		return out
	}
	assert.Equal(t, encodeAll(), encodeAll())
}

func TestConvert_ParseError(t *testing.T) {
	t.Parallel()
	_, err := Convert(strings.NewReader(""), TimedOptions())
	assert.ErrorIs(t, err, ErrParse)
}

func TestProfileAndFileName(t *testing.T) {
	t.Parallel()

	opt, err := Profile("PLAIN")
	require.NoError(t, err)
	assert.Equal(t, PlainOptions(), opt)

	opt, err = Profile("")
	require.NoError(t, err)
	assert.Equal(t, TimedOptions(), opt)

	_, err = Profile("fast")
	assert.Error(t, err)

	assert.Equal(t, "Boat x_600x_data_Crew A_2_OS_2024_Paris.csv", FileName("", "Crew A_2"))
	assert.Equal(t, "lane-GER.csv", FileName("lane-{name}.csv", "GER"))
}
