package model

import "time"

// SystemState is the process-wide aggregate for one run.
type SystemState struct {
	RunID         string         `json:"run_id"`
	TotalEarnings float64        `json:"total_earnings"`
	CycleCount    int            `json:"cycle_count"`
	StartTime     time.Time      `json:"start_time"`
	Streams       []IncomeStream `json:"streams"`
}

// Targets mirrors the configured earnings goals.
type Targets struct {
	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// Report is a snapshot of SystemState plus derived fields.
type Report struct {
	RunID             string         `json:"run_id"`
	GeneratedAt       time.Time      `json:"generated_at"`
	TotalEarnings     float64        `json:"total_earnings"`
	RuntimeHours      float64        `json:"runtime_hours"`
	CycleCount        int            `json:"cycle_count"`
	ActiveStreams     int            `json:"active_streams"`
	MonthlyProjection float64        `json:"monthly_projection"`
	AnnualProjection  float64        `json:"annual_projection"`
	Efficiency        float64        `json:"efficiency"`
	Targets           Targets        `json:"targets"`
	Streams           []IncomeStream `json:"streams"`
}
