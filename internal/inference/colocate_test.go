package inference

import (
	"testing"

	"meshmap/internal/domain"
)

// Shared builders for the inference tests.

func fptr(v float64) *float64 { return &v }

func testNode(id string, hops int, snr *float64, pos *domain.Position) domain.Node {
	node := *domain.NewNode(id, hops)
	node.SNR = snr
	node.Position = pos
	return node
}

func pos(lat, lon float64) *domain.Position {
	return &domain.Position{Latitude: lat, Longitude: lon}
}

func TestDetectColocated(t *testing.T) {
	t.Run("groups nodes at the same rounded position", func(t *testing.T) {
		nodes := []domain.Node{
			testNode("!a", 0, nil, pos(30.48731, -97.85839)),
			testNode("!b", 1, nil, pos(30.48734, -97.85841)),
			testNode("!c", 2, nil, pos(30.5000, -97.9000)),
		}

		groups := DetectColocated(nodes, DefaultOptions())
		if len(groups) != 1 {
			t.Fatalf("expected 1 group, got %d", len(groups))
		}
		if len(groups[0].Nodes) != 2 {
			t.Fatalf("expected 2 members, got %d", len(groups[0].Nodes))
		}
		if groups[0].Nodes[0].ID != "!a" || groups[0].Nodes[1].ID != "!b" {
			t.Errorf("unexpected members: %s, %s", groups[0].Nodes[0].ID, groups[0].Nodes[1].ID)
		}
	})

	t.Run("never groups nodes without a position", func(t *testing.T) {
		nodes := []domain.Node{
			testNode("!a", -1, nil, nil),
			testNode("!b", 0, nil, nil),
		}
		if groups := DetectColocated(nodes, DefaultOptions()); len(groups) != 0 {
			t.Errorf("expected no groups for positionless nodes, got %d", len(groups))
		}
	})

	t.Run("discards singleton groups", func(t *testing.T) {
		nodes := []domain.Node{
			testNode("!a", 0, nil, pos(30.4873, -97.8584)),
			testNode("!b", 1, nil, pos(31.0000, -98.0000)),
		}
		if groups := DetectColocated(nodes, DefaultOptions()); len(groups) != 0 {
			t.Errorf("expected no groups, got %d", len(groups))
		}
	})
}

func TestColocationConnections(t *testing.T) {
	t.Run("basic co-location scenario", func(t *testing.T) {
		// A has no position and must get no connection; B and C share a site.
		nodes := []domain.Node{
			testNode("!a", -1, nil, nil),
			testNode("!b", 0, fptr(7.5), pos(30.4873, -97.8584)),
			testNode("!c", 0, nil, pos(30.4873, -97.8584)),
		}

		conns := ColocationConnections(DetectColocated(nodes, DefaultOptions()), DefaultOptions())
		if len(conns) != 1 {
			t.Fatalf("expected 1 connection, got %d", len(conns))
		}

		conn := conns[0]
		if conn.Key() != domain.PairKey("!b", "!c") {
			t.Errorf("expected the B-C pair, got %s -> %s", conn.From, conn.To)
		}
		if conn.Type != domain.ConnColocated {
			t.Errorf("expected colocated, got %s", conn.Type)
		}
		if conn.Confidence != domain.ConfidenceHigh {
			t.Errorf("expected high confidence, got %s", conn.Confidence)
		}
		if conn.Evidence != domain.EvidenceSameLocation {
			t.Errorf("expected same_gps_location, got %s", conn.Evidence)
		}
		if conn.SNR == nil || *conn.SNR != 7.5 {
			t.Errorf("expected snr 7.5, got %v", conn.SNR)
		}
		if conn.EvidenceCount != 1 {
			t.Errorf("expected evidence count 1, got %d", conn.EvidenceCount)
		}
	})

	t.Run("full mesh within a group", func(t *testing.T) {
		nodes := []domain.Node{
			testNode("!a", 1, nil, pos(30.4873, -97.8584)),
			testNode("!b", 2, nil, pos(30.4873, -97.8584)),
			testNode("!c", 3, nil, pos(30.4873, -97.8584)),
		}

		conns := ColocationConnections(DetectColocated(nodes, DefaultOptions()), DefaultOptions())
		if len(conns) != 3 {
			t.Fatalf("expected 3 pairwise connections, got %d", len(conns))
		}
	})

	t.Run("default SNR when neither node reports one", func(t *testing.T) {
		nodes := []domain.Node{
			testNode("!a", 1, nil, pos(30.4873, -97.8584)),
			testNode("!b", 2, nil, pos(30.4873, -97.8584)),
		}

		conns := ColocationConnections(DetectColocated(nodes, DefaultOptions()), DefaultOptions())
		if len(conns) != 1 {
			t.Fatalf("expected 1 connection, got %d", len(conns))
		}
		if conns[0].SNR == nil || *conns[0].SNR != DefaultColocatedSNR {
			t.Errorf("expected default snr %v, got %v", DefaultColocatedSNR, conns[0].SNR)
		}
	})

	t.Run("better reading wins", func(t *testing.T) {
		nodes := []domain.Node{
			testNode("!a", 1, fptr(-2), pos(30.4873, -97.8584)),
			testNode("!b", 2, fptr(4), pos(30.4873, -97.8584)),
		}

		conns := ColocationConnections(DetectColocated(nodes, DefaultOptions()), DefaultOptions())
		if conns[0].SNR == nil || *conns[0].SNR != 4 {
			t.Errorf("expected snr 4, got %v", conns[0].SNR)
		}
	})

	t.Run("collection node leads the orientation", func(t *testing.T) {
		nodes := []domain.Node{
			testNode("!src", -1, nil, pos(30.4873, -97.8584)),
			testNode("!zcol", 0, nil, pos(30.4873, -97.8584)),
		}

		conns := ColocationConnections(DetectColocated(nodes, DefaultOptions()), DefaultOptions())
		if conns[0].From != "!zcol" || conns[0].To != "!src" {
			t.Errorf("expected !zcol -> !src, got %s -> %s", conns[0].From, conns[0].To)
		}
	})
}
