// Package history records conversion runs in the SQLite store.
package history

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is the audit record of one EDL conversion.
type Run struct {
	ID                 string    `json:"id"`
	InputPath          string    `json:"input_path"`
	OutputPath         string    `json:"output_path,omitempty"`
	SourceLabel        string    `json:"source_label"`
	FrameRate          float64   `json:"frame_rate"`
	FrameStart         int       `json:"frame_start"`
	HandleSize         int       `json:"handle_size"`
	ShotCount          int       `json:"shot_count"`
	ExportedCount      int       `json:"exported_count"`
	NeutralGrades      int       `json:"neutral_grades"`
	DefaultSaturations int       `json:"default_saturations"`
	Status             string    `json:"status"`
	Error              string    `json:"error,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Result is what a finished run reports back to the store.
type Result struct {
	OutputPath         string
	ShotCount          int
	ExportedCount      int
	NeutralGrades      int
	DefaultSaturations int
	Err                error
}

func NewID() string {
	return uuid.NewString()
}
