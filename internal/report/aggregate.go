package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/signalnine/pmhbench/internal/competitor"
	"github.com/signalnine/pmhbench/internal/extract"
)

// Collect applies fn to every *.txt file in dir, keyed by file name. Any
// failure aborts the whole call.
func Collect[V any](dir string, fn func(*extract.Record) (V, error)) (map[string]V, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading result dir: %w", err)
	}
	out := map[string]V{}
	for _, de := range entries {
		if !strings.HasSuffix(de.Name(), ".txt") {
			continue
		}
		rec, err := extract.Parse(filepath.Join(dir, de.Name()))
		if err != nil {
			return nil, err
		}
		v, err := fn(rec)
		if err != nil {
			return nil, fmt.Errorf("extracting %s: %w", de.Name(), err)
		}
		out[de.Name()] = v
	}
	return out, nil
}

// Point is one value measured at a thread count.
type Point[V any] struct {
	Threads int
	Value   V
}

var resultName = regexp.MustCompile(`^(\w+)_(\d+)\.txt$`)

// ParseFileName splits "<competitor>_<threads>.txt".
func ParseFileName(name string) (string, int, bool) {
	m := resultName.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	threads, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], threads, true
}

// ClusterByThreadCount groups values by competitor token, each group sorted
// by ascending thread count. Names that do not parse are skipped.
func ClusterByThreadCount[V any](m map[string]V) map[string][]Point[V] {
	out := map[string][]Point[V]{}
	for _, name := range sortedKeys(m) {
		token, threads, ok := ParseFileName(name)
		if !ok {
			log.WithField("file", name).Warn("unidentified result file name")
			continue
		}
		out[token] = append(out[token], Point[V]{Threads: threads, Value: m[name]})
	}
	for _, pts := range out {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Threads < pts[j].Threads })
	}
	return out
}

// Entry is a value under its canonical competitor name.
type Entry[V any] struct {
	Name  string
	Rank  int
	Token string
	Value V
}

// RenameAndOrder resolves every key to a competitor and returns the values
// in canonical rank order under the style's display name. Keys naming no
// competitor are dropped. When two keys resolve to the same competitor the
// lexically greater key wins.
func RenameAndOrder[V any](m map[string]V, style competitor.Style) []Entry[V] {
	byRank := map[int]Entry[V]{}
	for _, key := range sortedKeys(m) {
		c, ok := competitor.Resolve(key)
		if !ok {
			continue
		}
		byRank[c.Rank] = Entry[V]{Name: c.Name(style), Rank: c.Rank, Token: c.Token, Value: m[key]}
	}
	out := make([]Entry[V], 0, len(byRank))
	for _, c := range competitor.All() {
		if e, ok := byRank[c.Rank]; ok {
			out = append(out, e)
		}
	}
	return out
}

// EntryMap turns renamed entries back into a name-keyed map.
func EntryMap[V any](entries []Entry[V]) map[string]V {
	out := make(map[string]V, len(entries))
	for _, e := range entries {
		out[e.Name] = e.Value
	}
	return out
}

// Without drops entries whose display name is listed.
func Without[V any](entries []Entry[V], names ...string) []Entry[V] {
	var out []Entry[V]
	for _, e := range entries {
		drop := false
		for _, n := range names {
			if e.Name == n {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, e)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
