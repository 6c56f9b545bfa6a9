// Package loader merges capture documents from multiple collection sessions
// into one aggregate document for inference.
package loader

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"meshmap/internal/codec"
	"meshmap/internal/domain"
)

// Source records one capture that contributed to the aggregate.
type Source struct {
	Name      string `json:"name"`
	NodeCount int    `json:"node_count"`
}

// Aggregator combines capture documents. When the same node appears in
// several captures the record heard most recently wins; routing observations
// are evidence and always accumulate.
type Aggregator struct {
	codec   *codec.TopologyCodec
	merged  *codec.Document
	nodes   map[string]domain.Node
	sources []Source
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		codec:  codec.NewTopologyCodec(),
		merged: codec.NewDocument(),
		nodes:  make(map[string]domain.Node),
	}
}

// Add merges one parsed document into the aggregate.
func (a *Aggregator) Add(doc *codec.Document, source string) {
	for _, node := range doc.Snapshot.Nodes {
		existing, ok := a.nodes[node.ID]
		if ok && existing.LastHeard >= node.LastHeard {
			continue
		}
		a.nodes[node.ID] = node
		a.merged.Nodes[node.ID] = doc.Nodes[node.ID]
	}

	a.merged.Snapshot.Observations = append(a.merged.Snapshot.Observations, doc.Snapshot.Observations...)
	a.merged.Paths = append(a.merged.Paths, doc.Paths...)

	// Passthrough fields: first capture wins.
	for key, raw := range doc.Extra {
		if _, ok := a.merged.Extra[key]; !ok {
			a.merged.Extra[key] = raw
		}
	}

	a.sources = append(a.sources, Source{Name: source, NodeCount: len(doc.Snapshot.Nodes)})
}

// AddFile parses and merges one capture file.
func (a *Aggregator) AddFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	doc, err := a.codec.Parse(f)
	if err != nil {
		return fmt.Errorf("parse capture %s: %w", path, err)
	}
	if doc.SkippedNodes > 0 {
		log.Printf("Skipped %d malformed node records in %s", doc.SkippedNodes, path)
	}

	a.Add(doc, filepath.Base(path))
	return nil
}

// LoadDirectory merges every capture file in dir matching pattern, in name
// order. Unreadable files are logged and skipped; the aggregate keeps
// whatever loaded. Returns the number of files merged.
func (a *Aggregator) LoadDirectory(dir, pattern string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, fmt.Errorf("glob captures: %w", err)
	}
	sort.Strings(matches)

	loaded := 0
	for _, path := range matches {
		if err := a.AddFile(path); err != nil {
			log.Printf("Failed to load %s: %v", path, err)
			continue
		}
		loaded++
	}
	return loaded, nil
}

// Sources lists the captures merged so far.
func (a *Aggregator) Sources() []Source {
	return a.sources
}

// Document returns the merged document with its snapshot rebuilt from the
// winning node records, in id order.
func (a *Aggregator) Document() *codec.Document {
	ids := make([]string, 0, len(a.nodes))
	for id := range a.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	a.merged.Snapshot.Nodes = a.merged.Snapshot.Nodes[:0]
	for _, id := range ids {
		a.merged.Snapshot.AddNode(a.nodes[id])
	}
	return a.merged
}
