package result

import (
	"fmt"
	"path/filepath"

	"github.com/signalnine/pmhbench/internal/catalog"
	"github.com/signalnine/pmhbench/internal/competitor"
)

// Slot is one planned benchmark invocation and the file it must produce.
type Slot struct {
	ConfigID   string
	Competitor string
	Requested  int
	Effective  int
	Path       string
}

func ConfigDir(dataDir, configID string) string {
	return filepath.Join(dataDir, configID)
}

func FileName(token string, threads int) string {
	return fmt.Sprintf("%s_%d.txt", token, threads)
}

func Path(dataDir, configID, token string, threads int) string {
	return filepath.Join(ConfigDir(dataDir, configID), FileName(token, threads))
}

// PlanExperiment expands e into slots: thread counts in declared order, each
// crossed with the roster. Requests that land on the same file (47 and 48
// for steph and clevel at 48 max) keep only the first slot.
func PlanExperiment(e catalog.Experiment, dataDir string, maxThreads int) []Slot {
	var slots []Slot
	seen := make(map[string]bool)
	for _, requested := range e.ThreadNums {
		for _, token := range competitor.Roster(e.IsBreakdown()) {
			eff := competitor.EffectiveThreads(token, requested, maxThreads)
			path := Path(dataDir, e.ID, token, eff)
			if seen[path] {
				continue
			}
			seen[path] = true
			slots = append(slots, Slot{
				ConfigID:   e.ID,
				Competitor: token,
				Requested:  requested,
				Effective:  eff,
				Path:       path,
			})
		}
	}
	return slots
}

// Plan expands every experiment in the catalog.
func Plan(cat *catalog.Catalog, dataDir string, maxThreads int) []Slot {
	var slots []Slot
	for _, e := range cat.All() {
		slots = append(slots, PlanExperiment(e, dataDir, maxThreads)...)
	}
	return slots
}
