package metrics

import (
	"sync/atomic"
	"time"
)

// SearchMetric summarizes one planning search: how many growth passes ran,
// how many expansions created new action branches, and how many simulated
// outcomes deduplicated onto existing nodes.
type SearchMetric struct {
	Exploration  float64
	BranchFactor int
	Duration     time.Duration
	Passes       int
	Expansions   int
	DedupHits    int
}

// CycleMetric ties a search to its planning cycle in the outer control loop.
type CycleMetric struct {
	Cycle int
	Trace float64 // Covariance trace after applying the chosen action
	SearchMetric
}

type Collector interface {
	Start(branchFactor int, exploration float64)
	AddPass()
	AddExpansion()
	AddDedupHit()
	Complete() SearchMetric
}

type collector struct {
	branchFactor int
	exploration  float64
	startTime    time.Time
	passes       atomic.Int32
	expansions   atomic.Int32
	dedupHits    atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(branchFactor int, exploration float64) {
	m.startTime = time.Now()
	m.branchFactor = branchFactor
	m.exploration = exploration
}

func (m *collector) AddPass() {
	m.passes.Add(1)
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) AddDedupHit() {
	m.dedupHits.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Exploration:  m.exploration,
		BranchFactor: m.branchFactor,
		Duration:     time.Since(m.startTime),
		Passes:       int(m.passes.Load()),
		Expansions:   int(m.expansions.Load()),
		DedupHits:    int(m.dedupHits.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(branchFactor int, exploration float64) {}
func (m *dummyCollector) AddPass()                                    {}
func (m *dummyCollector) AddExpansion()                               {}
func (m *dummyCollector) AddDedupHit()                                {}
func (m *dummyCollector) Complete() SearchMetric                      { return SearchMetric{} }
