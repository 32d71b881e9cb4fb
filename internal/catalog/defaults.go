package catalog

var (
	scalabilityThreads = []int{48, 24, 16, 8, 4, 2, 1}
	fullThreads        = []int{48}
)

const (
	smallLoad = 10_000_000
	smallRun  = 200_000_000
	bigLoad   = 64_000_000
)

func sod(latency bool) BuildFlags {
	return BuildFlags{Latency: latency, BreakdownSOD: true}
}

func exp(id, workload string, threads []int, flags BuildFlags, load, run int64) Experiment {
	return Experiment{
		ID:         id,
		Workload:   workload,
		ThreadNums: threads,
		BuildFlags: flags,
		LoadNum:    load,
		RunNum:     run,
	}
}

// DefaultExperiments returns the experiments behind every paper figure, in
// launch order.
func DefaultExperiments() []Experiment {
	return []Experiment{
		// realtime throughput, latency, resizing time and PM writes
		exp("insert_rttp", "workload_load", fullThreads, sod(true), smallLoad, smallRun),
		exp("insert_latency", "workload_load", fullThreads, sod(true), smallLoad, smallRun),

		exp("scalability_insert", "workload_load", scalabilityThreads, sod(false), smallLoad, smallRun),
		exp("scalability_search", "workloadc", scalabilityThreads, sod(false), smallLoad, smallRun),
		exp("scalability_update", "workload_update", scalabilityThreads, sod(false), smallLoad, smallRun),
		exp("scalability_delete", "workload_delete", scalabilityThreads, sod(false), smallLoad, smallLoad),

		exp("mixed_55_scalability", "workload55", scalabilityThreads, sod(false), smallLoad, smallRun),
		exp("mixed_37_scalability", "workload37", scalabilityThreads, sod(false), smallLoad, smallRun),
		exp("mixed_73_scalability", "workload73", scalabilityThreads, sod(false), smallLoad, smallRun),

		exp("mixed_55", "workload55", fullThreads, sod(false), smallLoad, smallRun),
		exp("mixed_37", "workload37", fullThreads, sod(false), smallLoad, smallRun),
		exp("mixed_73", "workload73", fullThreads, sod(false), smallLoad, smallRun),
		exp("mixed_55_motivation", "workload55", fullThreads, sod(true), smallLoad, smallRun),

		exp("ycsb_load", "workload_load_big", fullThreads, sod(false), 0, bigLoad),
		exp("ycsba", "workloada_big", fullThreads, sod(false), bigLoad, smallRun),
		exp("ycsbb", "workloadb_big", fullThreads, sod(false), bigLoad, smallRun),
		exp("ycsbc", "workloadc_big", fullThreads, sod(false), bigLoad, smallRun),
		exp("ycsbd", "workloadd_big", fullThreads, sod(false), bigLoad, 2_000_000_000),
		exp("ycsbf", "workloadf_big", fullThreads, sod(false), bigLoad, 299_000_000),

		exp("ycsbd_latency", "workloadd_big", fullThreads, sod(true), bigLoad, 2_000_000_000),

		exp("load_factor", "workload_load", fullThreads,
			BuildFlags{LoadFactor: true, BreakdownSOD: true}, smallLoad, smallRun),

		exp("breakdown_sod", "workload_load", fullThreads, BuildFlags{BreakdownSOD: true}, smallLoad, smallRun),
		exp("breakdown_so", "workload_load", fullThreads, BuildFlags{BreakdownSO: true}, smallLoad, smallRun),
		exp("breakdown_s", "workload_load", fullThreads, BuildFlags{BreakdownS: true}, smallLoad, smallRun),
		exp("breakdown_base", "workload_load", fullThreads, BuildFlags{BreakdownBase: true}, smallLoad, smallRun),

		exp("breakdown_sod_reason", "workload_load", fullThreads,
			BuildFlags{Latency: true, BreakdownSOD: true}, smallLoad, smallRun),
		exp("breakdown_so_reason", "workload_load", fullThreads,
			BuildFlags{Latency: true, BreakdownSO: true}, smallLoad, smallRun),
		exp("breakdown_s_reason", "workload_load", fullThreads,
			BuildFlags{Latency: true, BreakdownS: true}, smallLoad, smallRun),
		exp("breakdown_base_reason", "workload_load", fullThreads,
			BuildFlags{Latency: true, BreakdownBase: true}, smallLoad, smallRun),
	}
}

// Default builds the catalog of DefaultExperiments followed by extra.
func Default(extra ...Experiment) (*Catalog, error) {
	return New(append(DefaultExperiments(), extra...)...)
}
