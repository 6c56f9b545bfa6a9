package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"meshmap/internal/domain"
)

// Top-level document fields owned by the typed model; everything else is
// passed through untouched.
const (
	fieldNodes       = "nodes"
	fieldPaths       = "routingPaths"
	fieldConnections = "connections"
)

// TopologyCodec reads and writes the collector's JSON capture documents.
// Parsing is tolerant: a malformed node record is skipped, never fatal, and
// routingPaths may be absent entirely. Only a document that does not decode
// as a JSON object fails, with no partial result.
type TopologyCodec struct{}

// NewTopologyCodec creates a new topology document codec.
func NewTopologyCodec() *TopologyCodec {
	return &TopologyCodec{}
}

// Format returns the codec format identifier.
func (c *TopologyCodec) Format() string {
	return "json"
}

// nodeRecord is the loose shape of one collector node entry.
type nodeRecord struct {
	User struct {
		LongName  string `json:"longName"`
		ShortName string `json:"shortName"`
	} `json:"user"`
	HopsAway *int     `json:"hopsAway"`
	SNR      *float64 `json:"snr"`
	Position *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"position"`
	LastHeard int64 `json:"lastHeard"`
}

// pathRecord is the loose shape of one routing path entry. Newer collectors
// write an ordered node id path with per-link SNR readings; older captures
// carry a single observed adjacency as from/to.
type pathRecord struct {
	Path       []string  `json:"path"`
	SNR        []float64 `json:"snr"`
	PacketType string    `json:"packetType"`

	From   string   `json:"from"`
	To     string   `json:"to"`
	HopSNR *float64 `json:"hopSnr"`
}

// Parse decodes a capture document into a typed snapshot, keeping the raw
// fields for passthrough.
func (c *TopologyCodec) Parse(r io.Reader) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return nil, fmt.Errorf("invalid snapshot document: %w", err)
	}

	doc := NewDocument()

	if raw, ok := top[fieldNodes]; ok {
		var records map[string]json.RawMessage
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("invalid snapshot document: nodes: %w", err)
		}
		ids := make([]string, 0, len(records))
		for id := range records {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			node, ok := parseNode(id, records[id])
			if !ok {
				doc.SkippedNodes++
				continue
			}
			doc.Snapshot.AddNode(*node)
			doc.Nodes[id] = records[id]
		}
	}

	if raw, ok := top[fieldPaths]; ok {
		var records []json.RawMessage
		if err := json.Unmarshal(raw, &records); err == nil {
			for _, rec := range records {
				obs, ok := parsePath(rec)
				if !ok {
					continue
				}
				doc.Snapshot.AddObservation(*obs)
				doc.Paths = append(doc.Paths, rec)
			}
		}
	}

	for key, raw := range top {
		if key == fieldNodes || key == fieldPaths || key == fieldConnections {
			continue
		}
		doc.Extra[key] = raw
	}

	return doc, nil
}

// parseNode validates one raw node record. A record with no id or with
// fields of the wrong shape is reported as unusable, not an error.
func parseNode(id string, raw json.RawMessage) (*domain.Node, bool) {
	if id == "" {
		return nil, false
	}
	var rec nodeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}

	node := &domain.Node{
		ID:        id,
		LongName:  rec.User.LongName,
		ShortName: rec.User.ShortName,
		HopsAway:  rec.HopsAway,
		SNR:       rec.SNR,
		LastHeard: rec.LastHeard,
	}
	// A zero coordinate is an unset GPS, not a fix on the null island.
	if rec.Position != nil && rec.Position.Latitude != 0 && rec.Position.Longitude != 0 {
		node.Position = &domain.Position{
			Latitude:  rec.Position.Latitude,
			Longitude: rec.Position.Longitude,
		}
	}
	return node, true
}

// parsePath validates one raw routing path record in either collector shape.
func parsePath(raw json.RawMessage) (*domain.RoutingObservation, bool) {
	var rec pathRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}

	if len(rec.Path) >= 2 {
		obs := &domain.RoutingObservation{
			Hops:       make([]domain.RoutingHop, len(rec.Path)),
			PacketType: rec.PacketType,
		}
		for i, id := range rec.Path {
			hop := domain.RoutingHop{NodeID: id}
			if i < len(rec.SNR) {
				v := rec.SNR[i]
				hop.SNR = &v
			}
			obs.Hops[i] = hop
		}
		return obs, true
	}

	if rec.From != "" && rec.To != "" {
		return &domain.RoutingObservation{
			Hops: []domain.RoutingHop{
				{NodeID: rec.From, SNR: rec.HopSNR},
				{NodeID: rec.To},
			},
			PacketType: rec.PacketType,
		}, true
	}

	return nil, false
}

// Export re-emits the document: every passthrough field unchanged, the node
// records as parsed, and the inferred connections appended. Key order is
// stable, so identical input yields identical output.
func (c *TopologyCodec) Export(doc *Document, w io.Writer) error {
	out := make(map[string]json.RawMessage, len(doc.Extra)+3)
	for key, raw := range doc.Extra {
		out[key] = raw
	}

	nodes, err := json.Marshal(doc.Nodes)
	if err != nil {
		return fmt.Errorf("marshal nodes: %w", err)
	}
	out[fieldNodes] = nodes

	if len(doc.Paths) > 0 {
		paths, err := json.Marshal(doc.Paths)
		if err != nil {
			return fmt.Errorf("marshal routing paths: %w", err)
		}
		out[fieldPaths] = paths
	}

	conns := doc.Connections
	if conns == nil {
		conns = []domain.Connection{}
	}
	connections, err := json.Marshal(conns)
	if err != nil {
		return fmt.Errorf("marshal connections: %w", err)
	}
	out[fieldConnections] = connections

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}
