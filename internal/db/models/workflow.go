package models

import "time"

// Workflow statuses.
const (
	WorkflowStatusDraft  = "Draft"
	WorkflowStatusActive = "Active"
	WorkflowStatusPaused = "Paused"
)

// Workflow represents a committed automation workflow. The ID is
// assigned at commit time from the service clock (UnixMilli), so
// listing by ID descending yields newest first.
type Workflow struct {
	ID           int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title        string    `gorm:"index" json:"title"`
	Description  string    `json:"description"`
	Template     string    `json:"template"`
	Triggers     []string  `gorm:"serializer:json" json:"triggers"`
	Actions      []string  `gorm:"serializer:json" json:"actions"`
	Schedule     string    `json:"schedule"`
	Enabled      bool      `json:"enabled"`
	Status       string    `json:"status"`
	Executions   int64     `json:"executions"`
	SuccessCount int64     `json:"-"`
	SuccessRate  float64   `json:"successRate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
