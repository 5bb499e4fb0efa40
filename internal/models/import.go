package models

import "time"

// ImportState is the state machine position of an import job.
type ImportState string

const (
	ImportStateIdle             ImportState = "idle"
	ImportStateDownloading      ImportState = "downloading"
	ImportStateExtracting       ImportState = "extracting"
	ImportStateAwaitingDecision ImportState = "awaitingUserDecision"
	ImportStateParsing          ImportState = "parsing"
	ImportStateStoringContent   ImportState = "storingContent"
	ImportStateCompleted        ImportState = "completed"
	ImportStateFailed           ImportState = "failed"
)

// Terminal reports whether no further transition can occur from s.
// Idle is terminal only after an explicit abort or cancellation.
func (s ImportState) Terminal() bool {
	return s == ImportStateCompleted || s == ImportStateFailed || s == ImportStateIdle
}

// ImportJob is the externally visible snapshot of one import attempt.
type ImportJob struct {
	ID          string          `json:"id"`
	SourceName  string          `json:"sourceName"`
	SourceURL   string          `json:"sourceUrl,omitempty"`
	State       ImportState     `json:"state"`
	Progress    float64         `json:"progress"` // 0-100
	Stage       string          `json:"stage,omitempty"`
	Issues      []ImportIssue   `json:"issues,omitempty"`
	Result      *ParseResult    `json:"result,omitempty"`
	ErrorKind   ImportErrorKind `json:"errorKind,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}
