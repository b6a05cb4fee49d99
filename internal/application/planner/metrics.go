package planner

// Metrics records planner activity. The monitoring package provides the
// Prometheus implementation.
type Metrics interface {
	VariantsGenerated(style string)
	GenerationFailed(reason string)
	MenuHealth(score float64)
	ProposalCache(result string)
	SessionsActive(n int)
}

// Cache lookup outcomes reported to Metrics.ProposalCache.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) VariantsGenerated(string) {}
func (NopMetrics) GenerationFailed(string)  {}
func (NopMetrics) MenuHealth(float64)       {}
func (NopMetrics) ProposalCache(string)     {}
func (NopMetrics) SessionsActive(int)       {}
