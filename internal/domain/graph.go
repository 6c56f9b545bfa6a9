package domain

import (
	"fmt"
	"sort"
)

// Graph is the derived view handed to the rendering layer. The renderer
// colors nodes by hop group and weights edges by type, confidence, and SNR;
// nothing here performs any rendering.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode represents a node in the renderer document.
type GraphNode struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Group    string    `json:"group"`
	Title    string    `json:"title"`
	HopsAway *int      `json:"hops_away,omitempty"`
	Position *Position `json:"position,omitempty"`
}

// GraphEdge represents an inferred connection in the renderer document.
type GraphEdge struct {
	ID            string         `json:"id"`
	From          string         `json:"from"`
	To            string         `json:"to"`
	Label         string         `json:"label"`
	Type          ConnectionType `json:"type"`
	Confidence    Confidence     `json:"confidence"`
	SNR           *float64       `json:"snr,omitempty"`
	EvidenceCount int            `json:"evidence_count"`
}

// DeriveGraph projects a snapshot and its inferred connections into the
// renderer document.
func DeriveGraph(snapshot *Snapshot, connections []Connection) *Graph {
	graph := &Graph{
		Nodes: make([]GraphNode, 0, len(snapshot.Nodes)),
		Edges: make([]GraphEdge, 0, len(connections)),
	}

	for _, node := range snapshot.Nodes {
		graph.Nodes = append(graph.Nodes, GraphNode{
			ID:       node.ID,
			Label:    node.DisplayName(),
			Group:    hopGroup(&node),
			Title:    buildTooltip(&node),
			HopsAway: node.HopsAway,
			Position: node.Position,
		})
	}
	sort.Slice(graph.Nodes, func(i, j int) bool { return graph.Nodes[i].ID < graph.Nodes[j].ID })

	for i := range connections {
		conn := &connections[i]
		graph.Edges = append(graph.Edges, GraphEdge{
			ID:            conn.ID(),
			From:          conn.From,
			To:            conn.To,
			Label:         fmt.Sprintf("%s/%s", conn.Type, conn.Confidence),
			Type:          conn.Type,
			Confidence:    conn.Confidence,
			SNR:           conn.SNR,
			EvidenceCount: conn.EvidenceCount,
		})
	}

	return graph
}

// hopGroup buckets a node for renderer coloring.
func hopGroup(node *Node) string {
	h, ok := node.Hops()
	switch {
	case !ok:
		return "unknown"
	case h == HopsCollectionSource:
		return "source"
	case h == HopsCollectionNode:
		return "collection"
	case h < 0:
		return "unknown"
	default:
		return fmt.Sprintf("hop%d", h)
	}
}

func buildTooltip(node *Node) string {
	tooltip := node.DisplayName()
	if node.ShortName != "" {
		tooltip += fmt.Sprintf(" (%s)", node.ShortName)
	}
	if h, ok := node.Hops(); ok {
		tooltip += fmt.Sprintf("\nhops: %d", h)
	}
	if node.SNR != nil {
		tooltip += fmt.Sprintf("\nsnr: %.1f dB", *node.SNR)
	}
	return tooltip
}
