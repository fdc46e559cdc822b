package domain

// ConstraintSummary reports the limits the optimization ran against.
type ConstraintSummary struct {
	MaxPackages int      `json:"max_packages"`
	MaxTime     int      `json:"max_time"`
	Violations  []string `json:"violations"`
}

// OptimizationResult is produced per request and owned by whoever stores it.
// Graph and FinalRoute are nil when the constraint check failed.
type OptimizationResult struct {
	PartnerID   int64             `json:"partner_id"`
	PartnerName string            `json:"partner_name"`
	TotalOrders int               `json:"total_orders"`
	Steps       []Step            `json:"steps"`
	Graph       *Graph            `json:"graph"`
	FinalRoute  *Route            `json:"final_route"`
	Constraints ConstraintSummary `json:"constraints"`
}

// AddStep appends s with the next sequence number.
func (r *OptimizationResult) AddStep(s Step) {
	s.Seq = len(r.Steps) + 1
	r.Steps = append(r.Steps, s)
}

func (r *OptimizationResult) HasViolations() bool {
	return len(r.Constraints.Violations) > 0
}

const (
	ReasonConstraintsViolated = "CONSTRAINTS_VIOLATED"
	ReasonPartnerUnavailable  = "PARTNER_UNAVAILABLE"
	ReasonOrderNotPending     = "ORDER_NOT_PENDING"
)

// AssignmentOutcome is the result of an assign call. Success is false with a
// Reason when nothing was mutated.
type AssignmentOutcome struct {
	Success      bool                `json:"success"`
	Reason       string              `json:"reason,omitempty"`
	Violations   []string            `json:"violations,omitempty"`
	Partner      *Partner            `json:"partner"`
	Orders       []*Order            `json:"orders"`
	Optimization *OptimizationResult `json:"optimization"`
}
