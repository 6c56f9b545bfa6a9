// Package service implements the business logic tying captures, inference,
// and persistence together.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"meshmap/internal/codec"
	"meshmap/internal/domain"
	"meshmap/internal/inference"
	"meshmap/internal/loader"
	"meshmap/internal/repository"
)

// TopologyService orchestrates the pipeline: captures are imported or
// reloaded from disk, aggregated into one working document, run through the
// inference engine, and the resulting pass is persisted and broadcast.
//
// The engine itself is a pure function; the service owns the mutable state
// around it (the current aggregate document and the latest pass).
type TopologyService struct {
	repo       repository.Repository
	eventBus   *EventBus
	codec      *codec.TopologyCodec
	opts       inference.Options
	captureDir string
	pattern    string

	mu      sync.RWMutex
	agg     *loader.Aggregator
	current *codec.Document
	latest  *domain.InferencePass
}

// NewTopologyService creates the service around a repository and event bus.
func NewTopologyService(repo repository.Repository, eventBus *EventBus, opts inference.Options, captureDir, pattern string) *TopologyService {
	return &TopologyService{
		repo:       repo,
		eventBus:   eventBus,
		codec:      codec.NewTopologyCodec(),
		opts:       opts,
		captureDir: captureDir,
		pattern:    pattern,
		agg:        loader.NewAggregator(),
		current:    codec.NewDocument(),
	}
}

// ImportCapture parses one capture document, stores it, and merges it into
// the working aggregate. The raw document is kept verbatim so it can be
// re-exported with connections appended.
func (s *TopologyService) ImportCapture(ctx context.Context, r io.Reader, source string) (*domain.SnapshotRecord, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}

	doc, err := s.codec.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if doc.SkippedNodes > 0 {
		log.Printf("Skipped %d malformed node records from %s", doc.SkippedNodes, source)
	}

	rec := &domain.SnapshotRecord{
		ID:          uuid.NewString(),
		Source:      source,
		CollectedAt: time.Now(),
		NodeCount:   len(doc.Snapshot.Nodes),
		Document:    raw,
	}
	if err := s.repo.SaveSnapshot(ctx, rec); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.agg.Add(doc, source)
	s.current = s.agg.Document()
	s.mu.Unlock()

	s.eventBus.Publish(Event{
		Type: EventSnapshotImported,
		Payload: map[string]interface{}{
			"snapshot_id": rec.ID,
			"source":      source,
			"nodes":       rec.NodeCount,
		},
	})

	return rec, nil
}

// Reload rebuilds the working aggregate from the capture directory.
func (s *TopologyService) Reload(ctx context.Context) (int, error) {
	agg := loader.NewAggregator()
	loaded, err := agg.LoadDirectory(s.captureDir, s.pattern)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.agg = agg
	s.current = agg.Document()
	nodeCount := len(s.current.Snapshot.Nodes)
	s.mu.Unlock()

	log.Printf("Reloaded %d captures (%d nodes) from %s", loaded, nodeCount, s.captureDir)
	s.eventBus.Publish(Event{
		Type: EventCapturesReloaded,
		Payload: map[string]interface{}{
			"captures": loaded,
			"nodes":    nodeCount,
		},
	})

	return loaded, nil
}

// RunInference executes one pass over the current aggregate, persists it,
// and attaches the connections to the working document.
func (s *TopologyService) RunInference(ctx context.Context) (*domain.InferencePass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	result := inference.Infer(s.current.Snapshot, s.opts, now)

	pass := &domain.InferencePass{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		Connections: result.Connections,
		Unlinked:    result.Unlinked,
		Stats:       result.Stats,
	}
	if err := s.repo.SavePass(ctx, pass); err != nil {
		return nil, err
	}

	s.current.Connections = pass.Connections
	s.latest = pass

	log.Printf("Inference pass %s: %d connections, %d unlinked nodes", pass.ID, len(pass.Connections), len(pass.Unlinked))
	s.eventBus.Publish(Event{
		Type: EventInferenceCompleted,
		Payload: map[string]interface{}{
			"pass_id":     pass.ID,
			"connections": len(pass.Connections),
			"unlinked":    pass.Unlinked,
			"stats":       pass.Stats,
		},
	})

	return pass, nil
}

// Refresh reloads the capture directory and runs a fresh inference pass.
// Used by the directory watcher and the manual reload endpoint.
func (s *TopologyService) Refresh(ctx context.Context) error {
	if _, err := s.Reload(ctx); err != nil {
		return err
	}
	_, err := s.RunInference(ctx)
	return err
}

// ExportTopology writes the current document with the latest pass's
// connections appended; all other input fields pass through unchanged.
func (s *TopologyService) ExportTopology(ctx context.Context, w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codec.Export(s.current, w)
}

// Graph returns the renderer-facing view of the current topology.
func (s *TopologyService) Graph(ctx context.Context) *domain.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conns []domain.Connection
	if s.latest != nil {
		conns = s.latest.Connections
	}
	return domain.DeriveGraph(s.current.Snapshot, conns)
}

// Sources lists the captures contributing to the current aggregate.
func (s *TopologyService) Sources() []loader.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agg.Sources()
}

// ListSnapshots lists stored capture metadata.
func (s *TopologyService) ListSnapshots(ctx context.Context) ([]domain.SnapshotRecord, error) {
	return s.repo.ListSnapshots(ctx)
}

// GetPass retrieves a stored inference pass.
func (s *TopologyService) GetPass(ctx context.Context, id string) (*domain.InferencePass, error) {
	pass, err := s.repo.GetPass(ctx, id)
	if err != nil {
		return nil, err
	}
	if pass == nil {
		return nil, fmt.Errorf("pass %s not found", id)
	}
	return pass, nil
}

// ListPasses lists stored inference passes, newest first.
func (s *TopologyService) ListPasses(ctx context.Context, limit int) ([]domain.InferencePass, error) {
	return s.repo.ListPasses(ctx, limit)
}

// LatestPass returns the most recent pass, preferring the in-memory one.
func (s *TopologyService) LatestPass(ctx context.Context) (*domain.InferencePass, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}
	return s.repo.LatestPass(ctx)
}
