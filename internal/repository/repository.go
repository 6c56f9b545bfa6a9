// Package repository defines the data access interfaces for meshmap.
//
// The actual implementation is in the sqlite subpackage, which stores raw
// capture documents alongside indexed metadata and the immutable results of
// each inference pass.
package repository

import (
	"context"

	"meshmap/internal/domain"
)

// Repository persists capture snapshots and inference passes.
type Repository interface {
	// Snapshots
	SaveSnapshot(ctx context.Context, rec *domain.SnapshotRecord) error
	GetSnapshot(ctx context.Context, id string) (*domain.SnapshotRecord, error)
	ListSnapshots(ctx context.Context) ([]domain.SnapshotRecord, error)

	// Inference passes
	SavePass(ctx context.Context, pass *domain.InferencePass) error
	GetPass(ctx context.Context, id string) (*domain.InferencePass, error)
	LatestPass(ctx context.Context) (*domain.InferencePass, error)
	ListPasses(ctx context.Context, limit int) ([]domain.InferencePass, error)

	Close() error
}
