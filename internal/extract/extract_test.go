package extract_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/pmhbench/internal/extract"
)

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"42", "42"},
		{" -3.5 ", "-3.5"},
		{"+7", "7"},
		{"1.5e-05", "1.5e-05"},
		{"2E3", "2000"},
		{".5", "0.5"},
		{"[]", "[]"},
		{"[1, 2, 3]", "[1, 2, 3]"},
		{"[[1, 2], [], [3, [4]]]", "[[1, 2], [], [3, [4]]]"},
		{"[ -1 ,\t2 ]\n", "[-1, 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := extract.ParseLiteral(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestParseLiteralRejects(t *testing.T) {
	for _, in := range []string{
		"", "abc", "inf", "nan", "0x10", "1_000", "[1, 2", "[1 2]", "[1,]",
		"1 2", "__import__('os')", "(1, 2)", "1e", "-", "[1]]", "'1'",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := extract.ParseLiteral(in)
			var lerr *extract.LiteralError
			assert.True(t, errors.As(err, &lerr), "ParseLiteral(%q) err = %v", in, err)
		})
	}
}

func TestValueAccessors(t *testing.T) {
	v, err := extract.ParseLiteral("[1, 2.5]")
	require.NoError(t, err)
	fs, ok := v.Floats()
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2.5}, fs)
	_, ok = v.Float()
	assert.False(t, ok)

	nested, _ := extract.ParseLiteral("[[1]]")
	_, ok = nested.Floats()
	assert.False(t, ok)
	assert.Len(t, nested.Items(), 1)
}

func TestParseFile(t *testing.T) {
	rec, err := extract.Parse(filepath.Join("testdata", "steph_47.txt"))
	require.NoError(t, err)

	mw, err := extract.MediaWriteMB(rec)
	require.NoError(t, err)
	assert.Equal(t, 4096.5, mw, "last assignment wins")

	rt, err := extract.RehashTime(rec)
	require.NoError(t, err)
	assert.Equal(t, 1.25, rt)

	tp, err := extract.RunThroughput(rec)
	require.NoError(t, err)
	assert.Equal(t, 42.75, tp)

	lf, err := extract.LoadFactor(rec)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, lf, 1e-12)

	lat, err := extract.TailLatency(rec)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200, 300, 400, 500, 600, 700, 800}, lat)
	assert.Len(t, lat, len(extract.Percentiles))

	assert.True(t, rec.Has(extract.RTTP))
	assert.True(t, rec.Has(extract.RTTPOnly))
	assert.True(t, rec.Has(extract.AverageRehashTime))
}

func TestReadLineMatching(t *testing.T) {
	log := strings.Join([]string{
		"RTTP_only = [1, 2]",
		"RTTP = [3]",
		"op size = 10",
		"Unrelated = 5",
		"prefix text RunThroughput_inMops = 9",
		"LoadThroughput_inMops = not-a-number",
		"LoadThroughput_inMops=3",
	}, "\n")
	rec, err := extract.Read(strings.NewReader(log), "mem")
	require.NoError(t, err)

	only, err := rec.Series(extract.RTTPOnly)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, only)

	rttp, err := rec.Series(extract.RTTP)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, rttp)

	tp, err := rec.Scalar(extract.RunThroughputName)
	require.NoError(t, err)
	assert.Equal(t, 9.0, tp)

	assert.False(t, rec.Has(extract.LoadThroughput), "undecodable and spaceless lines are ignored")
	assert.Equal(t, 3, rec.Len())
}

func TestParseMissingFile(t *testing.T) {
	_, err := extract.Parse(filepath.Join(t.TempDir(), "absent.txt"))
	var perr *extract.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Path, "absent.txt")
}

func TestMissingMetric(t *testing.T) {
	rec := extract.NewRecord("empty.txt", nil)
	_, err := extract.MediaWriteMB(rec)
	assert.True(t, errors.Is(err, extract.ErrMetricMissing))
	_, err = extract.TailLatency(rec)
	assert.True(t, errors.Is(err, extract.ErrMetricMissing))
	_, err = extract.LoadFactor(rec)
	assert.True(t, errors.Is(err, extract.ErrMetricMissing))
}

func simulateTrim(series []float64) int {
	total := 0.0
	for _, x := range series {
		total += x
	}
	removed := 0.0
	n := len(series)
	for n > 1 {
		if (removed+series[n-1])*100 >= total {
			break
		}
		removed += series[n-1]
		n--
	}
	return n
}

func TestTrimTail(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   []float64
	}{
		{"single element", []float64{5}, []float64{5}},
		{"single zero", []float64{0}, []float64{0}},
		{"trailing one of ninety one", []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 1}, []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 1}},
		{"multi sample tail", []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 1, 2}, []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100}},
		{"partial interval", []float64{120, 130, 125, 128, 2}, []float64{120, 130, 125, 128}},
		{"all zero", []float64{0, 0, 0}, []float64{0, 0, 0}},
		{"tiny tail collapses", []float64{1000, 0.1, 0.1, 0.1}, []float64{1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]float64(nil), tt.series...)
			got := extract.TrimTail(in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, simulateTrim(tt.series), len(got))
			assert.Equal(t, tt.series, in, "input must not be modified")
		})
	}
}

func TestTrimTailProperties(t *testing.T) {
	seed := uint32(7)
	next := func() float64 {
		seed = seed*1664525 + 1013904223
		return float64(seed % 1000)
	}
	for i := 0; i < 200; i++ {
		n := 1 + i%17
		series := make([]float64, n)
		for j := range series {
			series[j] = next()
		}
		if i%5 == 0 {
			series[n-1] = 1
		}
		got := extract.TrimTail(series)
		require.NotEmpty(t, got)
		assert.Equal(t, series[:len(got)], got)
		total, removed := 0.0, 0.0
		for _, x := range series {
			total += x
		}
		for _, x := range series[len(got):] {
			removed += x
		}
		if len(got) < len(series) {
			assert.Less(t, removed*100, total)
		}
	}
}

func TestCharacteristic(t *testing.T) {
	s, err := extract.Characteristic([]float64{50, 60, 70, 0.5})
	require.NoError(t, err)
	assert.Equal(t, extract.Summary{Min: 50, Mean: 60, Max: 70}, s)

	_, err = extract.Characteristic(nil)
	assert.ErrorIs(t, err, extract.ErrEmptySeries)
}

func TestRealtime(t *testing.T) {
	rec, err := extract.Parse(filepath.Join("testdata", "steph_47.txt"))
	require.NoError(t, err)

	rt, err := extract.RealtimeWithResize(rec)
	require.NoError(t, err)
	assert.Equal(t, []float64{120, 130, 125, 128}, rt.Throughput)
	assert.Equal(t, []float64{0, 0, 5000, 0}, rt.Resize)
	assert.Equal(t, []float64{0, 0.1, 0.2, 0.3}, rt.Time)

	only, err := extract.RealtimeOnly(rec)
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 60, 70}, only)

	c, err := extract.RealtimeCharacteristic(rec)
	require.NoError(t, err)
	assert.Equal(t, 60.0, c.Mean)
}
