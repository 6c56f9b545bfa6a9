package codec

import (
	"encoding/json"
	"io"

	"meshmap/internal/domain"
)

// Document is a capture document in transit: the typed snapshot the engine
// consumes, plus the raw fields needed to re-emit the document unchanged with
// connections appended.
type Document struct {
	Snapshot *domain.Snapshot

	// Connections is filled by an inference pass before export.
	Connections []domain.Connection

	// Nodes holds each node's raw record so unknown per-node fields survive a
	// parse/export round trip.
	Nodes map[string]json.RawMessage
	// Paths holds the raw routing path records.
	Paths []json.RawMessage
	// Extra holds every top-level field outside the typed model.
	Extra map[string]json.RawMessage

	// SkippedNodes counts node records dropped as malformed.
	SkippedNodes int
}

// NewDocument creates an empty document with initialized collections.
func NewDocument() *Document {
	return &Document{
		Snapshot: domain.NewSnapshot(),
		Nodes:    make(map[string]json.RawMessage),
		Extra:    make(map[string]json.RawMessage),
	}
}

// Importer parses capture documents from an external collector.
type Importer interface {
	Parse(r io.Reader) (*Document, error)
	Format() string
}

// Exporter writes a document, with its inferred connections, back out.
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Format() string
}
