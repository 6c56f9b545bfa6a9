package inference

import (
	"sort"

	"meshmap/internal/domain"
)

// SiteGroup is a set of two or more nodes whose positions round to the same
// grid cell.
type SiteGroup struct {
	Key   string
	Nodes []domain.Node
}

// DetectColocated groups nodes by rounded GPS position and returns the groups
// holding more than one node. Nodes without a position are never grouped:
// missing data matching missing data is not co-location. Groups and their
// members come back sorted so downstream passes are deterministic.
func DetectColocated(nodes []domain.Node, opts Options) []SiteGroup {
	opts = opts.withDefaults()

	byCell := make(map[string][]domain.Node)
	for _, n := range nodes {
		if !n.HasPosition() {
			continue
		}
		key := n.Position.RoundedKey(opts.GPSPrecision)
		byCell[key] = append(byCell[key], n)
	}

	groups := make([]SiteGroup, 0)
	for key, members := range byCell {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		groups = append(groups, SiteGroup{Key: key, Nodes: members})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })

	return groups
}

// ColocationConnections emits the full pairwise mesh within each site group.
// GPS proximity is the strongest evidence this engine has, so every pair is
// high confidence regardless of any SNR reading.
func ColocationConnections(groups []SiteGroup, opts Options) []domain.Connection {
	opts = opts.withDefaults()

	var conns []domain.Connection
	for _, group := range groups {
		for i := 0; i < len(group.Nodes); i++ {
			for j := i + 1; j < len(group.Nodes); j++ {
				a, b := group.Nodes[i], group.Nodes[j]
				from, to := orientColocated(a, b)
				conns = append(conns, domain.Connection{
					From:          from,
					To:            to,
					SNR:           colocatedSNR(a, b, opts.ColocatedSNR),
					Type:          domain.ConnColocated,
					Confidence:    domain.ConfidenceHigh,
					Evidence:      domain.EvidenceSameLocation,
					EvidenceCount: 1,
				})
			}
		}
	}
	return conns
}

// orientColocated picks a stable From/To order: the collection node leads
// when exactly one side is it, otherwise lexical by id (the group is already
// id-sorted, so a comes first).
func orientColocated(a, b domain.Node) (from, to string) {
	if b.IsCollectionNode() && !a.IsCollectionNode() {
		return b.ID, a.ID
	}
	return a.ID, b.ID
}

// colocatedSNR takes the better of the two readings, or the configured
// default when neither node reports one.
func colocatedSNR(a, b domain.Node, fallback float64) *float64 {
	var best *float64
	for _, snr := range []*float64{a.SNR, b.SNR} {
		if snr != nil && (best == nil || *snr > *best) {
			v := *snr
			best = &v
		}
	}
	if best == nil {
		best = &fallback
	}
	return best
}
