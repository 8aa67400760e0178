package domain

// Position is a train's live geographic position
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Consist describes the rolling stock of a train
type Consist struct {
	Coaches        int    `json:"coaches,omitempty"`
	ACCoaches      int    `json:"ac_coaches,omitempty"`
	SleeperCoaches int    `json:"sleeper_coaches,omitempty"`
	Wagons         int    `json:"wagons,omitempty"`
	Weight         string `json:"weight,omitempty"`
}

// Train is a live train as reported by the backend. It is replaced wholesale on
// every full snapshot; fields are never patched individually.
type Train struct {
	ID               string   `json:"id" validate:"required"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Priority         string   `json:"priority" validate:"omitempty,oneof=high medium low"`
	FromStation      string   `json:"from_station"`
	ToStation        string   `json:"to_station"`
	CurrentStation   string   `json:"current_station"`
	Position         Position `json:"position"`
	Delay            float64  `json:"delay" validate:"gte=0"`
	Speed            float64  `json:"speed"`
	Status           string   `json:"status" validate:"omitempty,oneof=on_time slight_delay delayed"`
	LastUpdated      string   `json:"last_updated"`
	ScheduledArrival string   `json:"scheduled_arrival,omitempty"`
	Platform         *int     `json:"platform,omitempty"`
	Consist          *Consist `json:"consist,omitempty"`
	Occupancy        *float64 `json:"occupancy,omitempty"`
}

// TrainRef is a denormalized copy of a train involved in a conflict. It is not
// linked to the Train collection.
type TrainRef struct {
	ID               string  `json:"id" validate:"required"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Priority         string  `json:"priority"`
	CurrentDelay     float64 `json:"current_delay"`
	EstimatedArrival string  `json:"estimated_arrival,omitempty"`
}

// Conflict is a detected scheduling clash between two trains
type Conflict struct {
	ID               string   `json:"id" validate:"required"`
	Type             string   `json:"type" validate:"omitempty,oneof=train_crossing platform_conflict signal_conflict track_maintenance"`
	Priority         string   `json:"priority" validate:"omitempty,oneof=high medium low"`
	Location         string   `json:"location"`
	EstimatedTime    string   `json:"estimated_time,omitempty"`
	Train1           TrainRef `json:"train1"`
	Train2           TrainRef `json:"train2"`
	Severity         string   `json:"conflict_severity" validate:"omitempty,oneof=high medium low"`
	PotentialDelay   float64  `json:"potential_delay"`
	Status           string   `json:"status" validate:"omitempty,oneof=active resolved"`
	DetectedAt       string   `json:"detected_at,omitempty"`
	ResolvedAt       string   `json:"resolved_at,omitempty"`
	ResolutionMethod string   `json:"resolution_method,omitempty"`
}

// TrainAction is one train-level step of an optimization option
type TrainAction struct {
	TrainID          string   `json:"train_id"`
	Action           string   `json:"action" validate:"required"`
	Duration         *float64 `json:"duration,omitempty"`
	Location         string   `json:"location,omitempty"`
	AlternativeRoute string   `json:"alternative_route,omitempty"`
	AdditionalTime   *float64 `json:"additional_time,omitempty"`
}

// OptimizationOption is one ranked way of resolving a conflict
type OptimizationOption struct {
	ID                     string        `json:"id"`
	Name                   string        `json:"name"`
	Strategy               string        `json:"strategy" validate:"omitempty,oneof=priority_based balanced rerouting"`
	Actions                []TrainAction `json:"actions" validate:"dive"`
	ExpectedDelayReduction float64       `json:"expected_delay_reduction"`
	ThroughputImpact       string        `json:"throughput_impact,omitempty"`
	Description            string        `json:"description,omitempty"`
}

// ImpactAnalysis estimates the effect of applying a suggestion
type ImpactAnalysis struct {
	DelayReduction    float64 `json:"delay_reduction"`
	ThroughputGain    string  `json:"throughput_gain,omitempty"`
	PassengerImpact   string  `json:"passenger_impact,omitempty"`
	NetworkEfficiency string  `json:"network_efficiency,omitempty"`
	FuelSavings       string  `json:"fuel_savings,omitempty"`
	Confidence        float64 `json:"confidence" validate:"gte=0,lte=100"`
}

// Suggestion is a proposed resolution for one conflict. ConflictID is not
// enforced locally; it may dangle.
type Suggestion struct {
	ID                string               `json:"id" validate:"required"`
	ConflictID        string               `json:"conflict_id"`
	Type              string               `json:"type,omitempty"`
	Priority          string               `json:"priority,omitempty"`
	Options           []OptimizationOption `json:"options" validate:"dive"`
	RecommendedOption *OptimizationOption  `json:"recommended_option,omitempty"`
	Explanation       string               `json:"explanation"`
	ImpactAnalysis    ImpactAnalysis       `json:"impact_analysis"`
	Timestamp         string               `json:"timestamp,omitempty"`
}

// KPIMetrics is a flat snapshot of network-wide statistics. Each field is
// independently authoritative from the server.
type KPIMetrics struct {
	AvgDelayReduced      float64 `json:"avg_delay_reduced"`
	ThroughputIncrease   float64 `json:"throughput_increase"`
	ReplanTime           float64 `json:"replan_time"`
	SuggestionAcceptance float64 `json:"suggestion_acceptance"`
}

// DefaultKPIs are the values shown before the first server update arrives
func DefaultKPIs() KPIMetrics {
	return KPIMetrics{
		AvgDelayReduced:      -6,
		ThroughputIncrease:   12,
		ReplanTime:           4,
		SuggestionAcceptance: 78,
	}
}

// SimulationScenario is the what-if input edited by the operator
type SimulationScenario struct {
	Name             string `json:"name" validate:"required,max=120"`
	PriorityBoost    int    `json:"priority_boost" validate:"gte=0,lte=50"`
	DelayTolerance   int    `json:"delay_tolerance" validate:"gte=1,lte=15"`
	ReroutingEnabled bool   `json:"rerouting_enabled"`
}

// DefaultScenario is the simulator's starting point
func DefaultScenario() SimulationScenario {
	return SimulationScenario{
		Name:             "Peak Hour Optimization",
		PriorityBoost:    20,
		DelayTolerance:   5,
		ReroutingEnabled: true,
	}
}

// SimulationFigures are the before/after numbers of a what-if run
type SimulationFigures struct {
	AvgDelay   float64 `json:"avg_delay"`
	Throughput float64 `json:"throughput"`
	Conflicts  float64 `json:"conflicts"`
	Efficiency float64 `json:"efficiency"`
}

// SimulationResult is computed by the backend; the client never fabricates it
type SimulationResult struct {
	ID           string         `json:"id"`
	ScenarioName string         `json:"scenario_name"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Results      struct {
		Before       SimulationFigures `json:"before"`
		After        SimulationFigures `json:"after"`
		Improvements map[string]string `json:"improvements,omitempty"`
	} `json:"results"`
	Recommendations []string `json:"recommendations,omitempty"`
	Confidence      float64  `json:"confidence"`
	ExecutionTime   string   `json:"execution_time,omitempty"`
	Timestamp       string   `json:"timestamp,omitempty"`
}
