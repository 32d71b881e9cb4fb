package extract

import (
	"errors"
	"fmt"

	"github.com/aclements/go-moremath/stats"
)

var ErrEmptySeries = errors.New("empty series")

// Percentiles labels the TailLatency sequence.
var Percentiles = []string{"50%", "75%", "90%", "99%", "99.9%", "99.99%", "99.999%", "100%"}

// SamplesPerSecond is the realtime throughput sampling rate.
const SamplesPerSecond = 10

// TrimTail drops trailing samples while their combined mass stays under 1%
// of the series total. The result is a prefix of series and is never empty
// for non-empty input.
func TrimTail(series []float64) []float64 {
	var total float64
	for _, x := range series {
		total += x
	}
	var removed float64
	n := len(series)
	for n > 1 && (removed+series[n-1])*100 < total {
		removed += series[n-1]
		n--
	}
	return series[:n]
}

type Summary struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// Characteristic summarizes the trimmed series.
func Characteristic(series []float64) (Summary, error) {
	if len(series) == 0 {
		return Summary{}, ErrEmptySeries
	}
	trimmed := TrimTail(series)
	lo, hi := stats.Bounds(trimmed)
	return Summary{Min: lo, Mean: stats.Mean(trimmed), Max: hi}, nil
}

// TailLatency returns the stored percentile sequence unmodified.
func TailLatency(r *Record) ([]float64, error) {
	return r.Series(TailLatencyName)
}

// LoadFactor averages the per-interval load factor samples.
func LoadFactor(r *Record) (float64, error) {
	samples, err := r.Series(LoadFactorName)
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, fmt.Errorf("%s: %s: %w", r.Path, LoadFactorName, ErrEmptySeries)
	}
	return stats.Mean(samples), nil
}

// MediaWriteMB is the PM media write volume in MB.
func MediaWriteMB(r *Record) (float64, error) {
	return r.Scalar(MediaWrite)
}

// RehashTime is the total rehash time in seconds.
func RehashTime(r *Record) (float64, error) {
	return r.Scalar(TotalRehashTime)
}

// RunThroughput is the run phase throughput in Mops.
func RunThroughput(r *Record) (float64, error) {
	return r.Scalar(RunThroughputName)
}

// Realtime is a trimmed realtime throughput trace with the matching count of
// key-values moved by resizing in each interval.
type Realtime struct {
	Time       []float64 `json:"time"`
	Throughput []float64 `json:"throughput"`
	Resize     []float64 `json:"resize"`
}

func RealtimeWithResize(r *Record) (*Realtime, error) {
	rttp, err := r.Series(RTTP)
	if err != nil {
		return nil, err
	}
	if len(rttp) == 0 {
		return nil, fmt.Errorf("%s: %s: %w", r.Path, RTTP, ErrEmptySeries)
	}
	resize, err := r.Series(ResizeKV)
	if err != nil {
		return nil, err
	}
	rttp = TrimTail(rttp)
	if len(resize) > len(rttp) {
		resize = resize[:len(rttp)]
	}
	return &Realtime{
		Time:       TimeAxis(len(rttp)),
		Throughput: rttp,
		Resize:     resize,
	}, nil
}

// RealtimeOnly is the trimmed standalone realtime throughput trace.
func RealtimeOnly(r *Record) ([]float64, error) {
	series, err := r.Series(RTTPOnly)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%s: %s: %w", r.Path, RTTPOnly, ErrEmptySeries)
	}
	return TrimTail(series), nil
}

// RealtimeCharacteristic summarizes the standalone realtime trace.
func RealtimeCharacteristic(r *Record) (Summary, error) {
	series, err := r.Series(RTTPOnly)
	if err != nil {
		return Summary{}, err
	}
	return Characteristic(series)
}

// TimeAxis returns n sample timestamps in seconds.
func TimeAxis(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / SamplesPerSecond
	}
	return out
}
