package inference

import (
	"sort"

	"meshmap/internal/domain"
)

// pairEvidence accumulates routing observations for one unordered node pair.
type pairEvidence struct {
	count  int
	snrSum float64
	snrN   int
}

// meanSNR returns the average per-hop reading across observations, or nil
// when no observation carried one.
func (e *pairEvidence) meanSNR() *float64 {
	if e.snrN == 0 {
		return nil
	}
	mean := e.snrSum / float64(e.snrN)
	return &mean
}

// buildEvidenceIndex counts, per unordered pair, how many distinct
// observations traversed that adjacency, and collects the per-hop SNR
// readings. An observation touching a pair more than once still counts once.
func buildEvidenceIndex(observations []domain.RoutingObservation) map[string]*pairEvidence {
	index := make(map[string]*pairEvidence)
	for i := range observations {
		obs := &observations[i]
		seen := make(map[string]bool)
		for j := 0; j+1 < len(obs.Hops); j++ {
			key := domain.PairKey(obs.Hops[j].NodeID, obs.Hops[j+1].NodeID)
			if seen[key] {
				continue
			}
			seen[key] = true

			ev := index[key]
			if ev == nil {
				ev = &pairEvidence{}
				index[key] = ev
			}
			ev.count++
			if snr := obs.Hops[j].SNR; snr != nil {
				ev.snrSum += *snr
				ev.snrN++
			}
		}
	}
	return index
}

// RankHopParents selects, for every node at hop distance h > 0, up to
// opts.MaxParents plausible previous-hop relays from the nodes at exactly
// h-1, and emits one connection per selection. Routing-validated candidates
// always outrank SNR-only guesses; remaining slots fill by descending
// reported SNR. Nodes whose candidate pool is empty come back as unlinked,
// an absence rather than a failure.
func RankHopParents(snapshot *domain.Snapshot, opts Options) (conns []domain.Connection, unlinked []string) {
	opts = opts.withDefaults()

	evidence := buildEvidenceIndex(snapshot.Observations)
	byHop := snapshot.NodesByHop()

	levels := make([]int, 0, len(byHop))
	for h := range byHop {
		if h > 0 {
			levels = append(levels, h)
		}
	}
	sort.Ints(levels)

	for _, h := range levels {
		pool := byHop[h-1]
		for _, node := range byHop[h] {
			if len(pool) == 0 {
				unlinked = append(unlinked, node.ID)
				continue
			}
			conns = append(conns, selectParents(node, pool, evidence, opts)...)
		}
	}
	return conns, unlinked
}

// selectParents ranks one node's candidate pool and emits its connections.
func selectParents(node domain.Node, pool []domain.Node, evidence map[string]*pairEvidence, opts Options) []domain.Connection {
	connType := domain.ConnInferredHop
	if h, _ := node.Hops(); h-1 == domain.HopsCollectionNode {
		connType = domain.ConnInferredDirect
	}

	var validated []domain.Node
	var rest []domain.Node
	for _, cand := range pool {
		if ev := evidence[domain.PairKey(cand.ID, node.ID)]; ev != nil && ev.count > 0 {
			validated = append(validated, cand)
		} else {
			rest = append(rest, cand)
		}
	}

	// Validated candidates ordered by how often a packet was actually seen
	// crossing the link. The pool is id-sorted, so ties stay deterministic.
	sort.SliceStable(validated, func(i, j int) bool {
		evI := evidence[domain.PairKey(validated[i].ID, node.ID)]
		evJ := evidence[domain.PairKey(validated[j].ID, node.ID)]
		return evI.count > evJ.count
	})

	// Heuristic candidates ordered by reported SNR, missing readings last.
	sort.SliceStable(rest, func(i, j int) bool {
		si, sj := rest[i].SNR, rest[j].SNR
		switch {
		case si == nil:
			return false
		case sj == nil:
			return true
		default:
			return *si > *sj
		}
	})

	conns := make([]domain.Connection, 0, opts.MaxParents)
	for _, cand := range validated {
		if len(conns) == opts.MaxParents {
			return conns
		}
		ev := evidence[domain.PairKey(cand.ID, node.ID)]
		snr := ev.meanSNR()
		if snr == nil {
			snr = firstSNR(node.SNR, cand.SNR)
		}
		conns = append(conns, domain.Connection{
			From:          cand.ID,
			To:            node.ID,
			SNR:           snr,
			Type:          connType,
			Confidence:    domain.ConfidenceHigh,
			Evidence:      domain.EvidenceRoutingValidated,
			EvidenceCount: ev.count,
		})
	}

	for _, cand := range rest {
		if len(conns) == opts.MaxParents {
			break
		}
		snr := firstSNR(cand.SNR, node.SNR)
		conns = append(conns, domain.Connection{
			From:          cand.ID,
			To:            node.ID,
			SNR:           snr,
			Type:          connType,
			Confidence:    domain.ConfidenceForSNR(snr),
			Evidence:      domain.EvidenceSNRHeuristic,
			EvidenceCount: 1,
		})
	}
	return conns
}

// firstSNR returns a copy of the first non-nil reading.
func firstSNR(readings ...*float64) *float64 {
	for _, r := range readings {
		if r != nil {
			v := *r
			return &v
		}
	}
	return nil
}
