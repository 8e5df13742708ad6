package schemas

import "time"

// CycleReport summarizes one ingestion cycle of a source.
type CycleReport struct {
	Source    string        `json:"source"`
	Cycle     uint64        `json:"cycle"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Symbols   int           `json:"symbols"`
	Stored    int           `json:"stored"`
	Failed    []string      `json:"failed,omitempty"`
	Error     string        `json:"error,omitempty"`
}

type RollupResponse struct {
	StartDate Date `json:"start_date"`
	EndDate   Date `json:"end_date"`
	Days      int  `json:"days"`
}

type RefreshResponse struct {
	Rates int `json:"rates"`
}

type CollectorStatus struct {
	Source     string       `json:"source"`
	LastReport *CycleReport `json:"last_report"`
}

type ScheduleStatus struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
}

type IngestionStatusResponse struct {
	Collectors []CollectorStatus `json:"collectors"`
	Schedules  []ScheduleStatus  `json:"schedules"`
}
