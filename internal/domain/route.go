package domain

type StopType string

const (
	StopStart    StopType = "START"
	StopPickup   StopType = "PICKUP"
	StopDelivery StopType = "DELIVERY"
	StopReturn   StopType = "RETURN"
)

// Represents a single stop in a partner route. Times are seconds, distances meters.
// Load is the number of packages carried when leaving the stop.
type RouteStop struct {
	NodeID               string   `json:"node_id"`
	Type                 StopType `json:"type"`
	Action               string   `json:"action"`
	Location             Location `json:"location"`
	Address              string   `json:"address"`
	OrderID              *int64   `json:"order_id,omitempty"`
	Packages             int      `json:"packages"`
	Load                 int      `json:"load"`
	TimeFromPrevious     int      `json:"time_from_previous"`
	DistanceFromPrevious int      `json:"distance_from_previous"`
	CumulativeTime       int      `json:"cumulative_time"`
}

// Represents the planned visiting sequence for one partner.
// Skipped lists node ids that had no usable edge from the previous stop.
type Route struct {
	Stops         []RouteStop `json:"path"`
	TotalTime     int         `json:"total_time"`
	TotalDistance int         `json:"total_distance"`
	IsOptimal     bool        `json:"is_optimal"`
	Skipped       []string    `json:"skipped,omitempty"`
}

func (r *Route) TotalStops() int { return len(r.Stops) }
