package domain

// RoutingHop is one step of an observed packet path. SNR is the reading
// measured on the link leaving this hop, nil when the radio did not report
// one.
type RoutingHop struct {
	NodeID string   `json:"node_id"`
	SNR    *float64 `json:"snr,omitempty"`
}

// RoutingObservation records a path actually traversed by a packet, ordered
// from origin to collection point. Observations validate inferred links; they
// do not form a spanning structure on their own.
type RoutingObservation struct {
	Hops       []RoutingHop `json:"hops"`
	PacketType string       `json:"packet_type,omitempty"`
}

// ContainsAdjacent reports whether a and b appear as neighboring hops, in
// either order, and returns the SNR recorded on that link if any.
func (o *RoutingObservation) ContainsAdjacent(a, b string) (snr *float64, ok bool) {
	for i := 0; i+1 < len(o.Hops); i++ {
		x, y := o.Hops[i], o.Hops[i+1]
		if (x.NodeID == a && y.NodeID == b) || (x.NodeID == b && y.NodeID == a) {
			return x.SNR, true
		}
	}
	return nil, false
}
