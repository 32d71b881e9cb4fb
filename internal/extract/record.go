// Package extract decodes benchmark result logs into metric records and
// derives the summarized values the report tables are built from.
package extract

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Name string

const (
	MediaWrite        Name = "MediaWrite_inMB"
	RTTP              Name = "RTTP"
	ResizeKV          Name = "RESIZEKV"
	Doubling          Name = "DOUBLING"
	TailLatencyName   Name = "TailLatency"
	TotalRehashTime   Name = "TotalRehashTime_inSecond"
	AverageRehashTime Name = "AverageRehashTime_inMicroSecond"
	LoadThroughput    Name = "LoadThroughput_inMops"
	RunThroughputName Name = "RunThroughput_inMops"
	LoadFactorName    Name = "LoadFactor"
	RTTPOnly          Name = "RTTP_only"
)

// Names is the order assignment lines are matched in. The first name whose
// "<Name> = " occurs in a line claims it.
var Names = []Name{
	MediaWrite,
	RTTP,
	ResizeKV,
	Doubling,
	TailLatencyName,
	TotalRehashTime,
	AverageRehashTime,
	LoadThroughput,
	RunThroughputName,
	LoadFactorName,
	RTTPOnly,
}

var ErrMetricMissing = errors.New("metric missing")

// A ParseError means a result file could not be read.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Record maps recognized metric names to their last decoded value.
type Record struct {
	Path   string
	values map[Name]Value
}

func NewRecord(path string, values map[Name]Value) *Record {
	if values == nil {
		values = map[Name]Value{}
	}
	return &Record{Path: path, values: values}
}

func (r *Record) Get(n Name) (Value, bool) {
	v, ok := r.values[n]
	return v, ok
}

func (r *Record) Has(n Name) bool {
	_, ok := r.values[n]
	return ok
}

func (r *Record) Len() int { return len(r.values) }

func (r *Record) Scalar(n Name) (float64, error) {
	v, ok := r.values[n]
	if !ok {
		return 0, fmt.Errorf("%s: %w: %s", r.Path, ErrMetricMissing, n)
	}
	f, ok := v.Float()
	if !ok {
		return 0, fmt.Errorf("%s: %s is a sequence, want a number", r.Path, n)
	}
	return f, nil
}

func (r *Record) Series(n Name) ([]float64, error) {
	v, ok := r.values[n]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", r.Path, ErrMetricMissing, n)
	}
	fs, ok := v.Floats()
	if !ok {
		return nil, fmt.Errorf("%s: %s is not a flat number sequence", r.Path, n)
	}
	return fs, nil
}

// Parse reads the result file at path.
func Parse(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()
	return Read(f, path)
}

// maxLine bounds a single log line; realtime throughput series run to
// hundreds of thousands of samples.
const maxLine = 64 << 20

// Read parses a result log from r. name is used in errors and diagnostics.
func Read(r io.Reader, name string) (*Record, error) {
	rec := NewRecord(name, nil)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for s.Scan() {
		line++
		text := s.Text()
		n, ok := matchName(text)
		if !ok {
			continue
		}
		literal := text[strings.Index(text, "=")+1:]
		v, err := ParseLiteral(literal)
		if err != nil {
			log.WithFields(log.Fields{
				"file":   name,
				"line":   line,
				"metric": string(n),
			}).Warnf("skipping undecodable value: %v", err)
			continue
		}
		rec.values[n] = v
	}
	if err := s.Err(); err != nil {
		return nil, &ParseError{Path: name, Err: fmt.Errorf("line %d: %w", line, err)}
	}
	return rec, nil
}

func matchName(line string) (Name, bool) {
	for _, n := range Names {
		if strings.Contains(line, string(n)+" = ") {
			return n, true
		}
	}
	return "", false
}
