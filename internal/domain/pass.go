package domain

import "time"

// SnapshotRecord is a stored capture document plus the metadata needed to
// list and re-aggregate captures without re-parsing every document.
type SnapshotRecord struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	CollectedAt time.Time `json:"collected_at"`
	NodeCount   int       `json:"node_count"`
	Document    []byte    `json:"-"`
}

// PassStats summarizes one inference pass by connection type and confidence.
type PassStats struct {
	ByType       map[ConnectionType]int `json:"by_type"`
	ByConfidence map[Confidence]int     `json:"by_confidence"`
}

// NewPassStats tallies connections into a stats summary.
func NewPassStats(connections []Connection) PassStats {
	stats := PassStats{
		ByType:       make(map[ConnectionType]int),
		ByConfidence: make(map[Confidence]int),
	}
	for _, c := range connections {
		stats.ByType[c.Type]++
		stats.ByConfidence[c.Confidence]++
	}
	return stats
}

// InferencePass is one complete run of the engine over a snapshot: the full
// re-derived connection list, the nodes that received no inferable link, and
// summary statistics. Passes are immutable once stored; a re-run produces a
// new pass.
type InferencePass struct {
	ID          string       `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	Connections []Connection `json:"connections"`
	Unlinked    []string     `json:"unlinked,omitempty"`
	Stats       PassStats    `json:"stats"`
}
