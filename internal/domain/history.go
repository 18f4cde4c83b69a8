package domain

import "time"

// SolveRecord es una fila del histórico de solves.
type SolveRecord struct {
	RunID         string
	SolvedAt      time.Time
	Scenario      string
	Chip          string
	CostCap       *float64 // nil = sin límite
	Drivers       []string
	Constructors  []string
	BoostedDriver string
	TransfersUsed int
	Penalty       float64
	TotalXPts     float64
	TeamCost      float64
	Committed     bool
}
