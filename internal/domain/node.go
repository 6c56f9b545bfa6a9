package domain

import (
	"fmt"
	"math"
)

// Hop distance sentinels. Positive values count mesh relays between the
// collection node and the observed node.
const (
	// HopsCollectionSource marks the Bluetooth-paired radio the snapshot was
	// collected through. It is not a hop-counted mesh participant.
	HopsCollectionSource = -1
	// HopsCollectionNode marks the mesh node whose routing table was read.
	HopsCollectionNode = 0
)

// Position is a GPS fix in decimal degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RoundedKey collapses the position to a grid cell key at the given decimal
// precision. 4 decimals is roughly 11 m, enough to absorb GPS jitter while
// still separating distinct sites.
func (p Position) RoundedKey(precision int) string {
	scale := math.Pow(10, float64(precision))
	lat := math.Round(p.Latitude*scale) / scale
	lon := math.Round(p.Longitude*scale) / scale
	return fmt.Sprintf("%.*f,%.*f", precision, lat, precision, lon)
}

// Node represents one observed mesh participant.
type Node struct {
	ID        string `json:"id"`
	LongName  string `json:"long_name,omitempty"`
	ShortName string `json:"short_name,omitempty"`

	// HopsAway is nil when the collector never learned a hop distance for
	// this node. Such nodes still participate in co-location grouping but
	// never in hop-parent ranking.
	HopsAway *int `json:"hops_away,omitempty"`

	// SNR is the last signal reading reported for this node, in dB.
	SNR *float64 `json:"snr,omitempty"`

	// Position is absent when the node never reported a GPS fix.
	Position *Position `json:"position,omitempty"`

	// LastHeard is the unix timestamp of the most recent packet from this
	// node, used when merging overlapping captures.
	LastHeard int64 `json:"last_heard,omitempty"`
}

// NewNode creates a node with the given id and hop distance.
func NewNode(id string, hopsAway int) *Node {
	h := hopsAway
	return &Node{ID: id, HopsAway: &h}
}

// Hops returns the hop distance and whether one is known.
func (n *Node) Hops() (int, bool) {
	if n.HopsAway == nil {
		return 0, false
	}
	return *n.HopsAway, true
}

// IsCollectionSource reports whether this is the Bluetooth-paired radio the
// snapshot was read through.
func (n *Node) IsCollectionSource() bool {
	h, ok := n.Hops()
	return ok && h == HopsCollectionSource
}

// IsCollectionNode reports whether this is the node whose routing table was
// read.
func (n *Node) IsCollectionNode() bool {
	h, ok := n.Hops()
	return ok && h == HopsCollectionNode
}

// HasPosition reports whether the node ever reported a GPS fix.
func (n *Node) HasPosition() bool {
	return n.Position != nil
}

// DisplayName returns the human label, falling back to a short form of the id.
func (n *Node) DisplayName() string {
	if n.LongName != "" {
		return n.LongName
	}
	if len(n.ID) > 8 {
		return n.ID[:8]
	}
	return n.ID
}
