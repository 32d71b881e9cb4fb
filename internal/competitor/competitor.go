// Package competitor maps the hash table tokens embedded in result filenames
// to canonical display names and presentation ranks.
package competitor

import (
	"sort"
	"strings"
)

type Style int

const (
	Short Style = iota
	Full
)

func ParseStyle(s string) (Style, bool) {
	switch s {
	case "short":
		return Short, true
	case "full":
		return Full, true
	}
	return Short, false
}

type Competitor struct {
	Token string
	Short string
	Full  string
	Rank  int
	// Oversubscribed hash tables run one thread short at the machine's
	// maximum thread count.
	Oversubscribed bool
}

func (c Competitor) Name(style Style) string {
	if style == Full {
		return c.Full
	}
	return c.Short
}

// Table is in presentation rank order.
var table = []Competitor{
	{Token: "pclht", Short: "PCLHT", Full: "PCLHT", Rank: 0},
	{Token: "level", Short: "Level", Full: "(Level-based) Level Hashing", Rank: 1},
	{Token: "clevel", Short: "Clevel", Full: "(Level-based) Clevel Hashing", Rank: 2, Oversubscribed: true},
	{Token: "cceh", Short: "CCEH", Full: "(EH-based) CCEH", Rank: 3},
	{Token: "cceh_cow", Short: "CCEH-C", Full: "(EH-based) CCEH-C (Lock-Free)", Rank: 4},
	{Token: "dash", Short: "Dash", Full: "(EH-based) Dash-EH", Rank: 5},
	{Token: "steph", Short: "SEPH", Full: "SEPH", Rank: 6, Oversubscribed: true},
}

// BreakdownToken is the only competitor run by breakdown experiments.
const BreakdownToken = "steph"

// roster is the launch order of the benchmark's hash tables.
var roster = []string{"steph", "level", "cceh", "cceh_cow", "dash", "clevel", "pclht"}

// byLength holds the table sorted longest token first, so a token that
// contains another (cceh_cow, cceh) is tried before it.
var byLength = func() []Competitor {
	out := append([]Competitor(nil), table...)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Token) > len(out[j].Token)
	})
	return out
}()

func All() []Competitor {
	return append([]Competitor(nil), table...)
}

// Roster returns the tokens to launch, either the full set or just the
// breakdown target.
func Roster(breakdown bool) []string {
	if breakdown {
		return []string{BreakdownToken}
	}
	return append([]string(nil), roster...)
}

func ByToken(token string) (Competitor, bool) {
	for _, c := range table {
		if c.Token == token {
			return c, true
		}
	}
	return Competitor{}, false
}

// Resolve identifies the competitor named by s. An exact canonical display
// name wins; otherwise the longest token contained in s is used.
func Resolve(s string) (Competitor, bool) {
	for _, c := range table {
		if s == c.Short || s == c.Full {
			return c, true
		}
	}
	for _, c := range byLength {
		if strings.Contains(s, c.Token) {
			return c, true
		}
	}
	return Competitor{}, false
}

// EffectiveThreads is the thread count handed to the benchmark for a
// requested count.
func EffectiveThreads(token string, requested, maxThreads int) int {
	c, ok := ByToken(token)
	if ok && c.Oversubscribed && requested == maxThreads && requested > 0 {
		return requested - 1
	}
	return requested
}

// RequestedThreads inverts EffectiveThreads for row alignment.
func RequestedThreads(token string, effective, maxThreads int) int {
	c, ok := ByToken(token)
	if ok && c.Oversubscribed && effective == maxThreads-1 && maxThreads > 0 {
		return maxThreads
	}
	return effective
}
