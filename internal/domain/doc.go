// Package domain defines the core domain types for the meshmap topology
// inference system.
//
// This package contains the entities that represent one collected view of a
// wireless mesh network and the connections inferred from it.
//
// # Snapshot Model
//
// Node represents one observed mesh participant: an opaque id, a hop distance
// from the collection node, and optional SNR and GPS position readings.
// Hop distance carries two sentinels: -1 is the Bluetooth-paired radio the
// snapshot was read through (the collection source), 0 is the mesh node whose
// routing table was read (the collection node).
//
// RoutingObservation records a packet path actually traversed through the
// mesh, with per-hop SNR readings. Observations are evidence, not a spanning
// structure; multiple observations may cover overlapping sub-paths.
//
// Snapshot bundles the node set and observations. It is the immutable input
// to the inference engine.
//
// # Inferred Output
//
// Connection is the engine's unit of output: an unordered node pair with a
// connection type (colocated, inferred_direct, inferred_hop), a confidence
// tier, the evidence that justified it, and a supporting observation count.
//
// Confidence tiers for SNR-only inferences come from an ordered band table so
// the thresholds are data rather than control flow.
//
// # Derived View
//
// Graph is the renderer-facing projection of a snapshot plus its inferred
// connections. The rendering itself is out of scope; only the document shape
// the renderer consumes lives here.
//
// # Design Principles
//
// - Immutable value objects where possible
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
package domain
