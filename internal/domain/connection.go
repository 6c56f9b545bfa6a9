package domain

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// ConnectionType classifies how a connection was inferred.
type ConnectionType string

const (
	// ConnColocated links nodes sharing a physical site (matching rounded GPS).
	ConnColocated ConnectionType = "colocated"
	// ConnInferredDirect links the collection node to a one-hop neighbor.
	ConnInferredDirect ConnectionType = "inferred_direct"
	// ConnInferredHop links a node at hop N to an inferred parent at hop N-1, N >= 2.
	ConnInferredHop ConnectionType = "inferred_hop"
)

// Evidence names what justified a connection.
type Evidence string

const (
	EvidenceSameLocation     Evidence = "same_gps_location"
	EvidenceRoutingValidated Evidence = "routing_validated"
	EvidenceSNRHeuristic     Evidence = "snr_heuristic"
)

// TimestampLayout is the wire format for connection timestamps, matching the
// collector's local ISO form without zone.
const TimestampLayout = "2006-01-02T15:04:05"

// Timestamp marshals as the collector's zone-less ISO form.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid timestamp %q", s)
	}
	parsed, err := time.Parse(TimestampLayout, s[1:len(s)-1])
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Connection is one inferred link between two nodes. The pair is unordered:
// a connection is the same regardless of which endpoint is listed first, but
// the stored From/To orientation is chosen deterministically at creation time
// (lower hop count first, or for co-location the collection node first, else
// lexical by id).
type Connection struct {
	From          string         `json:"from"`
	To            string         `json:"to"`
	SNR           *float64       `json:"snr"`
	Type          ConnectionType `json:"type"`
	Confidence    Confidence     `json:"confidence"`
	Evidence      Evidence       `json:"evidence"`
	EvidenceCount int            `json:"evidence_count"`
	Timestamp     Timestamp      `json:"timestamp"`
}

// PairKey returns the canonical key for an unordered node pair.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Key returns the connection's unordered pair key.
func (c *Connection) Key() string {
	return PairKey(c.From, c.To)
}

// ID derives a deterministic identifier from the endpoints and type, stable
// regardless of orientation.
func (c *Connection) ID() string {
	from, to := c.From, c.To
	if from > to {
		from, to = to, from
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%s", from, to, c.Type)))
	return fmt.Sprintf("%x", hash[:8])
}

// Involves checks whether the connection touches the given node id.
func (c *Connection) Involves(nodeID string) bool {
	return c.From == nodeID || c.To == nodeID
}

// OtherEnd returns the endpoint opposite the given node id.
func (c *Connection) OtherEnd(nodeID string) string {
	if c.From == nodeID {
		return c.To
	}
	return c.From
}
