package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/signalnine/pmhbench/internal/competitor"
	"github.com/signalnine/pmhbench/internal/extract"
	"github.com/signalnine/pmhbench/internal/result"
)

const mib = 1024 * 1024

// Source locates result data for figure builders.
type Source struct {
	DataDir    string
	MaxThreads int
}

func (s Source) dir(configID string) string {
	return result.ConfigDir(s.DataDir, configID)
}

// Figure builds the tables behind one paper figure.
type Figure struct {
	ID          string
	Description string
	Build       func(Source) ([]*Table, error)
}

var figures = []Figure{
	{"2-realtime-motivation", "realtime throughput and resized KVs of the mixed 50/50 motivation run", realtimeMotivation},
	{"3-scalability-motivation", "mixed 50/50 scalability and PM bytes written", scalabilityMotivation},
	{"7-realtime-throughput", "realtime insert throughput and resized KVs", realtimeInsert},
	{"8-tail-latency", "insert tail latency", tailLatency("insert_rttp", "Sheet1")},
	{"9-resizing-write-loadfactor", "resizing time, PM bytes written and load factor", resizingWriteLoadFactor},
	{"10-breakdown", "SEPH technique breakdown", breakdown},
	{"11-operation-scalability", "per operation scalability", operationScalability},
	{"12-ycsb-realtime", "realtime throughput of mixed workloads", mixedRealtime},
	{"13-mixed-scalability", "scalability of mixed workloads", mixedScalability},
	{"14-ycsb-throughput", "YCSB min/avg/max throughput", ycsbThroughput},
	{"15-ycsb-tail-latency", "YCSB D tail latency", tailLatency("ycsbd_latency", "Tail Latency")},
}

func Figures() []Figure {
	return append([]Figure(nil), figures...)
}

func LookupFigure(id string) (Figure, error) {
	for _, f := range figures {
		if f.ID == id {
			return f, nil
		}
	}
	return Figure{}, fmt.Errorf("unknown figure %q", id)
}

// Build produces the tables for figure id.
func Build(id string, src Source) ([]*Table, error) {
	f, err := LookupFigure(id)
	if err != nil {
		return nil, err
	}
	tables, err := f.Build(src)
	if err != nil {
		return nil, fmt.Errorf("figure %s: %w", id, err)
	}
	return tables, nil
}

// Motivation figures only compare the prior designs.
var (
	motivationShort = []string{"PCLHT", "CCEH-C", "SEPH"}
	motivationFull  = []string{"PCLHT", "(EH-based) CCEH-C (Lock-Free)", "SEPH"}
)

var mixedSheets = []struct{ sheet, config string }{
	{"S30% I70%", "mixed_37"},
	{"S50% I50%", "mixed_55"},
	{"S70% I30%", "mixed_73"},
}

func realtimeTables(dir string, drop ...string) ([]*Table, error) {
	series, err := Collect(dir, extract.RealtimeWithResize)
	if err != nil {
		return nil, err
	}
	var tables []*Table
	for _, e := range Without(RenameAndOrder(series, competitor.Full), drop...) {
		rt := e.Value
		t := NewTable(e.Name, "time", formatLabels(rt.Time), []string{"throughput", "rehash"})
		for i := range rt.Time {
			t.Cells[i][0] = rt.Throughput[i]
			if i < len(rt.Resize) {
				t.Cells[i][1] = rt.Resize[i]
			}
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func realtimeMotivation(src Source) ([]*Table, error) {
	return realtimeTables(src.dir("mixed_55_motivation"), motivationFull...)
}

func realtimeInsert(src Source) ([]*Table, error) {
	return realtimeTables(src.dir("insert_rttp"))
}

// scalabilityTable lays out run throughput in ops/s with one row per
// requested thread count. Oversubscribed competitors ran one thread short
// at the maximum, so their effective count is mapped back.
func scalabilityTable(sheet string, src Source, configID string, drop ...string) (*Table, error) {
	tp, err := Collect(src.dir(configID), extract.RunThroughput)
	if err != nil {
		return nil, err
	}
	entries := Without(RenameAndOrder(ClusterByThreadCount(tp), competitor.Short), drop...)

	seen := map[int]bool{}
	var threads []int
	for _, e := range entries {
		for _, p := range e.Value {
			req := competitor.RequestedThreads(e.Token, p.Threads, src.MaxThreads)
			if !seen[req] {
				seen[req] = true
				threads = append(threads, req)
			}
		}
	}
	sort.Ints(threads)
	row := map[int]int{}
	labels := make([]string, len(threads))
	for i, n := range threads {
		row[n] = i
		labels[i] = strconv.Itoa(n)
	}

	columns := make([]string, len(entries))
	for j, e := range entries {
		columns[j] = e.Name
	}
	t := NewTable(sheet, "threads", labels, columns)
	for j, e := range entries {
		for _, p := range e.Value {
			req := competitor.RequestedThreads(e.Token, p.Threads, src.MaxThreads)
			t.Cells[row[req]][j] = p.Value * 1e6
		}
	}
	return t, nil
}

// scalarTable is a single-row table of one value per competitor.
func scalarTable(sheet, rowLabel string, entries []Entry[float64], scale float64) *Table {
	columns := make([]string, len(entries))
	for j, e := range entries {
		columns[j] = e.Name
	}
	t := NewTable(sheet, "", []string{rowLabel}, columns)
	for j, e := range entries {
		t.Cells[0][j] = e.Value * scale
	}
	return t
}

// withExpected appends a reference column.
func withExpected(t *Table, value float64) *Table {
	t.Columns = append(t.Columns, "Expected")
	for i := range t.Cells {
		t.Cells[i] = append(t.Cells[i], value)
	}
	return t
}

func scalarEntries(src Source, configID string, fn func(*extract.Record) (float64, error), drop ...string) ([]Entry[float64], error) {
	m, err := Collect(src.dir(configID), fn)
	if err != nil {
		return nil, err
	}
	return Without(RenameAndOrder(m, competitor.Short), drop...), nil
}

func scalabilityMotivation(src Source) ([]*Table, error) {
	scal, err := scalabilityTable("Average Throughput S50% I50%", src, "mixed_55_scalability", motivationShort...)
	if err != nil {
		return nil, err
	}
	writes, err := scalarEntries(src, "mixed_55_motivation", extract.MediaWriteMB, motivationShort...)
	if err != nil {
		return nil, err
	}
	return []*Table{
		scal,
		withExpected(scalarTable("Total Bytes Written to PM", "0", writes, mib), 24414062.5),
	}, nil
}

func tailLatency(configID, sheet string) func(Source) ([]*Table, error) {
	return func(src Source) ([]*Table, error) {
		lat, err := Collect(src.dir(configID), extract.TailLatency)
		if err != nil {
			return nil, err
		}
		entries := RenameAndOrder(lat, competitor.Short)
		columns := make([]string, len(entries))
		for j, e := range entries {
			columns[j] = e.Name
		}
		t := NewTable(sheet, "percentile", append([]string(nil), extract.Percentiles...), columns)
		for j, e := range entries {
			for i, v := range e.Value {
				if i < len(t.Rows) {
					t.Cells[i][j] = v
				}
			}
		}
		return []*Table{t}, nil
	}
}

func resizingWriteLoadFactor(src Source) ([]*Table, error) {
	rehash, err := scalarEntries(src, "insert_rttp", extract.RehashTime)
	if err != nil {
		return nil, err
	}
	writes, err := scalarEntries(src, "insert_rttp", extract.MediaWriteMB)
	if err != nil {
		return nil, err
	}
	lf, err := scalarEntries(src, "load_factor", extract.LoadFactor)
	if err != nil {
		return nil, err
	}
	return []*Table{
		scalarTable("Total Resizing Time (s)", "0", rehash, 1),
		withExpected(scalarTable("Total Bytes Written to PM (B)", "0", writes, mib), 51200000000),
		scalarTable("Loadfactor", "0", lf, 1),
	}, nil
}

var breakdownVariants = []struct{ column, config string }{
	{"Base", "breakdown_base"},
	{"S", "breakdown_s"},
	{"SO", "breakdown_so"},
	{"SOD", "breakdown_sod"},
}

func breakdown(src Source) ([]*Table, error) {
	threads := competitor.EffectiveThreads(competitor.BreakdownToken, src.MaxThreads, src.MaxThreads)
	name := result.FileName(competitor.BreakdownToken, threads)
	columns := make([]string, len(breakdownVariants))
	for j, v := range breakdownVariants {
		columns[j] = v.column
	}

	tp := NewTable("MinAvgMax Throughput", "", []string{"Min", "Avg", "Max"}, columns)
	writes := NewTable("Total Bytes Written to PM", "", []string{"B"}, columns)
	rehash := NewTable("Total Resizing Time (s)", "", []string{"S"}, columns)
	for j, v := range breakdownVariants {
		rec, err := extract.Parse(filepath.Join(src.dir(v.config), name))
		if err != nil {
			return nil, err
		}
		c, err := extract.RealtimeCharacteristic(rec)
		if err != nil {
			return nil, err
		}
		tp.Cells[0][j], tp.Cells[1][j], tp.Cells[2][j] = c.Min, c.Mean, c.Max

		reason, err := extract.Parse(filepath.Join(src.dir(v.config+"_reason"), name))
		if err != nil {
			return nil, err
		}
		mw, err := extract.MediaWriteMB(reason)
		if err != nil {
			return nil, err
		}
		writes.Cells[0][j] = mw * mib
		rt, err := extract.RehashTime(reason)
		if err != nil {
			return nil, err
		}
		rehash.Cells[0][j] = rt
	}
	return []*Table{tp, writes, rehash}, nil
}

func operationScalability(src Source) ([]*Table, error) {
	sheets := []struct{ sheet, config string }{
		{"Insertion", "scalability_insert"},
		{"Update", "scalability_update"},
		{"Deletion", "scalability_delete"},
		{"Search", "scalability_search"},
	}
	var tables []*Table
	for _, s := range sheets {
		t, err := scalabilityTable(s.sheet, src, s.config)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func mixedRealtime(src Source) ([]*Table, error) {
	var tables []*Table
	for _, s := range mixedSheets {
		series, err := Collect(src.dir(s.config), extract.RealtimeOnly)
		if err != nil {
			return nil, err
		}
		entries := RenameAndOrder(series, competitor.Short)
		longest := 0
		for _, e := range entries {
			longest = max(longest, len(e.Value))
		}
		columns := make([]string, len(entries))
		for j, e := range entries {
			columns[j] = e.Name
		}
		t := NewTable(s.sheet, "time", formatLabels(extract.TimeAxis(longest)), columns)
		for j, e := range entries {
			for i, v := range e.Value {
				t.Cells[i][j] = v
			}
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func mixedScalability(src Source) ([]*Table, error) {
	var tables []*Table
	for _, s := range mixedSheets {
		t, err := scalabilityTable(s.sheet, src, s.config+"_scalability")
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func ycsbThroughput(src Source) ([]*Table, error) {
	sheets := []struct{ sheet, config string }{
		{"Workload Load I100p", "ycsb_load"},
		{"Workload A S50p U50p", "ycsba"},
		{"Workload B S95p U5p", "ycsbb"},
		{"Workload C S100p", "ycsbc"},
		{"Workload D S95p I5p", "ycsbd"},
		{"Workload F S95p RMW5p", "ycsbf"},
	}
	var tables []*Table
	for _, s := range sheets {
		chars, err := Collect(src.dir(s.config), extract.RealtimeCharacteristic)
		if err != nil {
			return nil, err
		}
		entries := RenameAndOrder(chars, competitor.Short)
		columns := make([]string, len(entries))
		for j, e := range entries {
			columns[j] = e.Name
		}
		t := NewTable(s.sheet, "", []string{"Min", "Avg", "Max"}, columns)
		for j, e := range entries {
			t.Cells[0][j], t.Cells[1][j], t.Cells[2][j] = e.Value.Min, e.Value.Mean, e.Value.Max
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func formatLabels(xs []float64) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = strconv.FormatFloat(x, 'f', -1, 64)
	}
	return out
}
