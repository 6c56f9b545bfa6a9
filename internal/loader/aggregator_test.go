package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meshmap/internal/codec"
)

func parseDoc(t *testing.T, raw string) *codec.Document {
	t.Helper()
	doc, err := codec.NewTopologyCodec().Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestAggregatorAdd(t *testing.T) {
	t.Run("most recently heard record wins", func(t *testing.T) {
		agg := NewAggregator()
		agg.Add(parseDoc(t, `{"nodes": {"!a": {"snr": 1.0, "lastHeard": 100}}}`), "first.json")
		agg.Add(parseDoc(t, `{"nodes": {"!a": {"snr": 2.0, "lastHeard": 200}}}`), "second.json")
		agg.Add(parseDoc(t, `{"nodes": {"!a": {"snr": 3.0, "lastHeard": 150}}}`), "third.json")

		doc := agg.Document()
		if len(doc.Snapshot.Nodes) != 1 {
			t.Fatalf("expected 1 node, got %d", len(doc.Snapshot.Nodes))
		}
		node := doc.Snapshot.Nodes[0]
		if node.SNR == nil || *node.SNR != 2.0 {
			t.Errorf("expected the lastHeard 200 record to win, got snr %v", node.SNR)
		}
	})

	t.Run("routing observations accumulate across captures", func(t *testing.T) {
		agg := NewAggregator()
		agg.Add(parseDoc(t, `{"routingPaths": [{"path": ["!a", "!b"]}]}`), "first.json")
		agg.Add(parseDoc(t, `{"routingPaths": [{"path": ["!b", "!c"]}]}`), "second.json")

		doc := agg.Document()
		if len(doc.Snapshot.Observations) != 2 {
			t.Errorf("expected 2 observations, got %d", len(doc.Snapshot.Observations))
		}
	})

	t.Run("tracks every contributing source", func(t *testing.T) {
		agg := NewAggregator()
		agg.Add(parseDoc(t, `{"nodes": {"!a": {}, "!b": {}}}`), "first.json")
		agg.Add(parseDoc(t, `{"nodes": {"!a": {}}}`), "second.json")

		sources := agg.Sources()
		if len(sources) != 2 {
			t.Fatalf("expected 2 sources, got %d", len(sources))
		}
		if sources[0].Name != "first.json" || sources[0].NodeCount != 2 {
			t.Errorf("unexpected first source: %+v", sources[0])
		}
	})

	t.Run("nodes come back in id order", func(t *testing.T) {
		agg := NewAggregator()
		agg.Add(parseDoc(t, `{"nodes": {"!c": {}, "!a": {}, "!b": {}}}`), "capture.json")

		doc := agg.Document()
		ids := make([]string, 0, len(doc.Snapshot.Nodes))
		for _, n := range doc.Snapshot.Nodes {
			ids = append(ids, n.ID)
		}
		for i := 1; i < len(ids); i++ {
			if ids[i-1] >= ids[i] {
				t.Fatalf("nodes out of order: %v", ids)
			}
		}
	})
}

func TestLoadDirectory(t *testing.T) {
	t.Run("merges matching files and skips the rest", func(t *testing.T) {
		dir := t.TempDir()
		files := map[string]string{
			"network_topology_1.json": `{"nodes": {"!a": {"lastHeard": 100}}}`,
			"network_topology_2.json": `{"nodes": {"!b": {"lastHeard": 100}}}`,
			"notes.txt":               "not a capture",
		}
		for name, content := range files {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
				t.Fatalf("write %s: %v", name, err)
			}
		}

		agg := NewAggregator()
		loaded, err := agg.LoadDirectory(dir, "network_topology_*.json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded != 2 {
			t.Errorf("expected 2 files loaded, got %d", loaded)
		}
		if n := len(agg.Document().Snapshot.Nodes); n != 2 {
			t.Errorf("expected 2 nodes, got %d", n)
		}
	})

	t.Run("keeps going past an unreadable capture", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "network_topology_1.json"), []byte(`not json`), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "network_topology_2.json"), []byte(`{"nodes": {"!a": {}}}`), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}

		agg := NewAggregator()
		loaded, err := agg.LoadDirectory(dir, "network_topology_*.json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded != 1 {
			t.Errorf("expected 1 file loaded, got %d", loaded)
		}
	})

	t.Run("empty directory loads nothing", func(t *testing.T) {
		agg := NewAggregator()
		loaded, err := agg.LoadDirectory(t.TempDir(), "network_topology_*.json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded != 0 {
			t.Errorf("expected 0 files loaded, got %d", loaded)
		}
	})
}
