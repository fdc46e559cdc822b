package domain

import (
	"encoding/json"
	"strconv"
)

type NodeType string

const (
	NodeStart   NodeType = "PARTNER_START"
	NodePickup  NodeType = "PICKUP"
	NodeDropoff NodeType = "DROPOFF"
	NodeEnd     NodeType = "PARTNER_END"
)

const (
	StartNodeID = "START"
	EndNodeID   = "END"
)

func PickupNodeID(orderID int64) string  { return "P" + strconv.FormatInt(orderID, 10) }
func DropoffNodeID(orderID int64) string { return "D" + strconv.FormatInt(orderID, 10) }

// Vertex of the delivery graph. A drop-off node names its paired pickup in
// RequiresPickup; it may only be scheduled after that pickup.
type Node struct {
	ID             string   `json:"id"`
	Type           NodeType `json:"type"`
	Location       Location `json:"location"`
	Address        string   `json:"address"`
	OrderID        *int64   `json:"order_id,omitempty"`
	Packages       int      `json:"packages,omitempty"`
	RequiresPickup string   `json:"requires_pickup,omitempty"`
}

// Directed edge weighted by travel duration in seconds.
type Edge struct {
	From           string `json:"from"`
	To             string `json:"to"`
	Weight         int    `json:"weight"`
	DistanceMeters int    `json:"distance"`
	// Fallback marks weights derived from great-circle distance.
	Fallback bool `json:"fallback,omitempty"`
}

type edgeKey struct{ from, to string }

// Graph over partner start, order endpoints and partner end. Nodes keep
// insertion order: START, then pickup/drop-off pairs in order sequence, then END.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	nodeIdx map[string]int
	edgeIdx map[edgeKey]int
}

// NewGraph indexes nodes and edges for lookup. Later duplicates of an edge
// are ignored.
func NewGraph(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		Nodes:   nodes,
		Edges:   make([]Edge, 0, len(edges)),
		nodeIdx: make(map[string]int, len(nodes)),
		edgeIdx: make(map[edgeKey]int, len(edges)),
	}
	for i, n := range nodes {
		g.nodeIdx[n.ID] = i
	}
	for _, e := range edges {
		k := edgeKey{e.From, e.To}
		if _, ok := g.edgeIdx[k]; ok {
			continue
		}
		g.edgeIdx[k] = len(g.Edges)
		g.Edges = append(g.Edges, e)
	}
	return g
}

func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

func (g *Graph) Edge(from, to string) (Edge, bool) {
	i, ok := g.edgeIdx[edgeKey{from, to}]
	if !ok {
		return Edge{}, false
	}
	return g.Edges[i], true
}

// Outgoing returns edges leaving id in insertion order.
func (g *Graph) Outgoing(id string) []Edge {
	out := make([]Edge, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if e, ok := g.Edge(id, n.ID); ok {
			out = append(out, e)
		}
	}
	return out
}

// NodesOfType returns nodes of type t in insertion order.
func (g *Graph) NodesOfType(t NodeType) []Node {
	out := make([]Node, 0)
	for _, n := range g.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) FallbackEdgeCount() int {
	n := 0
	for _, e := range g.Edges {
		if e.Fallback {
			n++
		}
	}
	return n
}

// UnmarshalJSON restores lookup indexes for graphs loaded from storage.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw struct {
		Nodes []Node `json:"nodes"`
		Edges []Edge `json:"edges"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = *NewGraph(raw.Nodes, raw.Edges)
	return nil
}
