package inference

import (
	"sort"
	"time"

	"meshmap/internal/domain"
)

// Aggregate merges the co-location and hop-parent connection sets into the
// final list: exactly one connection per unordered node pair, each stamped
// with the pass timestamp, in deterministic (from, to) order.
//
// Merge rules: a co-location connection is authoritative for its pair and
// absorbs the evidence counts of any hop-derived connection it displaces.
// Between hop-derived connections the higher confidence wins, ties break
// toward routing validation, and evidence counts sum either way.
func Aggregate(colocated, hopDerived []domain.Connection, at time.Time) []domain.Connection {
	merged := make(map[string]*domain.Connection)

	for i := range colocated {
		conn := colocated[i]
		if existing, ok := merged[conn.Key()]; ok {
			// Duplicate co-location connection for the same pair (overlapping
			// groups cannot produce this, but tolerate it): keep the first,
			// fold the count in.
			existing.EvidenceCount += conn.EvidenceCount
			continue
		}
		merged[conn.Key()] = &conn
	}

	for i := range hopDerived {
		conn := hopDerived[i]
		existing, ok := merged[conn.Key()]
		if !ok {
			merged[conn.Key()] = &conn
			continue
		}
		if existing.Type == domain.ConnColocated {
			// GPS proximity is authoritative; the hop inference still counts
			// as supporting evidence.
			existing.EvidenceCount += conn.EvidenceCount
			continue
		}
		if supersedes(&conn, existing) {
			conn.EvidenceCount += existing.EvidenceCount
			merged[conn.Key()] = &conn
		} else {
			existing.EvidenceCount += conn.EvidenceCount
		}
	}

	out := make([]domain.Connection, 0, len(merged))
	for _, conn := range merged {
		conn.Timestamp = domain.Timestamp(at)
		out = append(out, *conn)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// supersedes reports whether a hop-derived connection should replace another
// for the same pair: higher confidence wins, then routing validation.
func supersedes(candidate, existing *domain.Connection) bool {
	if candidate.Confidence.Rank() != existing.Confidence.Rank() {
		return candidate.Confidence.Rank() > existing.Confidence.Rank()
	}
	return candidate.Evidence == domain.EvidenceRoutingValidated &&
		existing.Evidence != domain.EvidenceRoutingValidated
}
