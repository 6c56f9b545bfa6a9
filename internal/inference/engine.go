package inference

import (
	"time"

	"meshmap/internal/domain"
)

// Result is the full output of one inference pass.
type Result struct {
	Connections []domain.Connection `json:"connections"`
	Unlinked    []string            `json:"unlinked,omitempty"`
	Stats       domain.PassStats    `json:"stats"`
}

// Infer runs one complete pass over a snapshot: co-location first (its
// connections take precedence), hop-parent ranking second, then aggregation.
// The caller injects the pass timestamp so repeated runs over the same input
// differ only in that field. An empty snapshot yields an empty result, never
// an error: the engine's whole purpose is a best-effort reading of imperfect
// field data.
func Infer(snapshot *domain.Snapshot, opts Options, at time.Time) *Result {
	opts = opts.withDefaults()

	groups := DetectColocated(snapshot.Nodes, opts)
	colocated := ColocationConnections(groups, opts)
	hopDerived, unlinked := RankHopParents(snapshot, opts)

	connections := Aggregate(colocated, hopDerived, at)

	return &Result{
		Connections: connections,
		Unlinked:    unlinked,
		Stats:       domain.NewPassStats(connections),
	}
}
