package domain

import "sort"

// Snapshot is one collected view of the mesh: every node the collection
// node's routing table knew about, plus any packet paths observed while
// listening. It is the immutable input to an inference pass.
type Snapshot struct {
	Nodes        []Node               `json:"nodes"`
	Observations []RoutingObservation `json:"observations,omitempty"`
}

// NewSnapshot creates an empty snapshot with initialized collections.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Nodes:        make([]Node, 0),
		Observations: make([]RoutingObservation, 0),
	}
}

// AddNode appends a node to the snapshot.
func (s *Snapshot) AddNode(node Node) {
	s.Nodes = append(s.Nodes, node)
}

// AddObservation appends a routing observation to the snapshot.
func (s *Snapshot) AddObservation(obs RoutingObservation) {
	s.Observations = append(s.Observations, obs)
}

// Node returns the node with the given id, or nil.
func (s *Snapshot) Node(id string) *Node {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// NodesByHop buckets nodes by known hop distance. Nodes without a hop
// distance are excluded. Buckets are sorted by node id so ranking passes are
// deterministic for identical input.
func (s *Snapshot) NodesByHop() map[int][]Node {
	byHop := make(map[int][]Node)
	for _, n := range s.Nodes {
		h, ok := n.Hops()
		if !ok {
			continue
		}
		byHop[h] = append(byHop[h], n)
	}
	for h := range byHop {
		bucket := byHop[h]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].ID < bucket[j].ID })
	}
	return byHop
}

// MaxHop returns the largest known hop distance, or -1 when no node carries
// a non-negative one.
func (s *Snapshot) MaxHop() int {
	max := -1
	for _, n := range s.Nodes {
		if h, ok := n.Hops(); ok && h > max {
			max = h
		}
	}
	return max
}
