package model

import "time"

type AIRequestType string

const (
	AIRequestGeneratePlan AIRequestType = "generate_plan"
	AIRequestReroll       AIRequestType = "reroll"
	AIRequestAdjust       AIRequestType = "adjust"
)

type AIRequestStatus string

const (
	AIRequestStatusOK    AIRequestStatus = "ok"
	AIRequestStatusError AIRequestStatus = "error"
)

// AIPlanRequest logs one plan-generation request and its outcome.
type AIPlanRequest struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      AIRequestType   `json:"type"`
	Goal      string          `json:"goal"`
	Level     string          `json:"level"`
	DaysCount int             `json:"days_count"`
	Status    AIRequestStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// AIPlanDay is one generated training day.
type AIPlanDay struct {
	Day   int      `json:"day"`
	Focus string   `json:"focus"`
	Items []string `json:"items"`
}

// AIPlan is the generated weekly plan. Generation is a deterministic stub;
// external model calls are out of scope.
type AIPlan struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	RequestID string      `json:"request_id"`
	Goal      string      `json:"goal"`
	Level     string      `json:"level"`
	Days      []AIPlanDay `json:"days"`
	CreatedAt time.Time   `json:"created_at"`
}
