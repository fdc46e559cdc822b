package domain

type StepKind string

const (
	StepCheckPassed    StepKind = "CONSTRAINT_CHECK_PASSED"
	StepCheckFailed    StepKind = "CONSTRAINT_CHECK_FAILED"
	StepGraphBuilt     StepKind = "GRAPH_BUILT"
	StepDijkstraInit   StepKind = "DIJKSTRA_INIT"
	StepVisitNode      StepKind = "VISITING_NODE"
	StepRelax          StepKind = "DISTANCE_UPDATED"
	StepDijkstraDone   StepKind = "DIJKSTRA_COMPLETED"
	StepRouteSynthesis StepKind = "ROUTE_SYNTHESIZED"
)

// Step is one entry of the optimization trace. Exactly one payload pointer,
// the one matching Kind, is non-nil; build steps with the New*Step
// constructors.
type Step struct {
	Seq         int      `json:"step"`
	Kind        StepKind `json:"action"`
	Description string   `json:"description"`

	CheckPassed *CheckPassedDetail `json:"check_passed,omitempty"`
	CheckFailed *CheckFailedDetail `json:"check_failed,omitempty"`
	GraphBuilt  *GraphBuiltDetail  `json:"graph_built,omitempty"`
	Init        *InitDetail        `json:"init,omitempty"`
	Visit       *VisitDetail       `json:"visit,omitempty"`
	Relax       *RelaxDetail       `json:"relax,omitempty"`
	Done        *DoneDetail        `json:"done,omitempty"`
	Route       *RouteDetail       `json:"route,omitempty"`
}

type CheckPassedDetail struct {
	TotalPackages  int `json:"total_packages"`
	MaxAllowed     int `json:"max_allowed"`
	EstimatedMins  int `json:"estimated_time"`
	MaxTimeMinutes int `json:"max_time_allowed"`
}

type CheckFailedDetail struct {
	Violations []string `json:"violations"`
}

type NodeSummary struct {
	ID      string   `json:"id"`
	Type    NodeType `json:"type"`
	Address string   `json:"address"`
}

type GraphBuiltDetail struct {
	TotalNodes    int           `json:"total_nodes"`
	TotalEdges    int           `json:"total_edges"`
	FallbackEdges int           `json:"fallback_edges"`
	Locations     []NodeSummary `json:"locations"`
}

type InitDetail struct {
	StartNode      string   `json:"start_node"`
	Nodes          []string `json:"nodes"`
	UnvisitedCount int      `json:"unvisited_count"`
}

type VisitDetail struct {
	NodeID             string   `json:"node_id"`
	NodeType           NodeType `json:"node_type"`
	CurrentDistance    float64  `json:"current_distance"`
	RemainingUnvisited int      `json:"remaining_unvisited"`
}

// OldDistance is nil when the neighbor was previously unreached.
type RelaxDetail struct {
	Neighbor    string   `json:"neighbor"`
	Via         string   `json:"via"`
	OldDistance *float64 `json:"old_distance"`
	NewDistance float64  `json:"new_distance"`
	EdgeWeight  int      `json:"edge_weight"`
}

type DoneDetail struct {
	VisitedNodes     int      `json:"visited_nodes"`
	UnreachableNodes []string `json:"unreachable_nodes,omitempty"`
	// START to END along predecessors; empty when END was not reached.
	PathToEnd []string `json:"path_to_end,omitempty"`
}

type RouteDetail struct {
	TotalTime     int  `json:"total_time"`
	TotalDistance int  `json:"total_distance"`
	PathLength    int  `json:"path_length"`
	IsOptimal     bool `json:"is_optimal"`
}

func NewCheckPassedStep(d CheckPassedDetail) Step {
	return Step{Kind: StepCheckPassed, Description: "All constraints satisfied - proceeding with optimization", CheckPassed: &d}
}

func NewCheckFailedStep(violations []string) Step {
	return Step{
		Kind:        StepCheckFailed,
		Description: "Constraint validation failed - assignment cannot proceed",
		CheckFailed: &CheckFailedDetail{Violations: violations},
	}
}

func NewGraphBuiltStep(g *Graph) Step {
	locs := make([]NodeSummary, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		locs = append(locs, NodeSummary{ID: n.ID, Type: n.Type, Address: n.Address})
	}
	return Step{
		Kind:        StepGraphBuilt,
		Description: "Graph representation created with all locations and distances",
		GraphBuilt: &GraphBuiltDetail{
			TotalNodes:    len(g.Nodes),
			TotalEdges:    len(g.Edges),
			FallbackEdges: g.FallbackEdgeCount(),
			Locations:     locs,
		},
	}
}

func NewInitStep(d InitDetail) Step {
	return Step{Kind: StepDijkstraInit, Description: "Initialized distances and unvisited set", Init: &d}
}

func NewVisitStep(d VisitDetail) Step {
	return Step{Kind: StepVisitNode, Description: "Visiting node " + d.NodeID, Visit: &d}
}

func NewRelaxStep(d RelaxDetail) Step {
	return Step{Kind: StepRelax, Description: "Updated distance to " + d.Neighbor, Relax: &d}
}

func NewDoneStep(d DoneDetail) Step {
	return Step{Kind: StepDijkstraDone, Description: "Dijkstra algorithm completed", Done: &d}
}

func NewRouteStep(r *Route) Step {
	return Step{
		Kind:        StepRouteSynthesis,
		Description: "Route built: pickups first, then deliveries, then return to base",
		Route: &RouteDetail{
			TotalTime:     r.TotalTime,
			TotalDistance: r.TotalDistance,
			PathLength:    r.TotalStops(),
			IsOptimal:     r.IsOptimal,
		},
	}
}
