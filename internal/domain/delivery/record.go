// internal/domain/delivery/record.go
package delivery

import (
	"database/sql"
	"time"
)

// Status is the lifecycle state of a queued statement.
// Transitions are Pending -> Sent or Pending -> Failed; both are terminal.
type Status int

const (
	StatusPending Status = 0
	StatusSent    Status = 1
	StatusFailed  Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusSent:
		return "SENT"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Record is one durable row of the statement queue.
// Corresponds to the 'xapi_statements' table.
type Record struct {
	ID           int64
	Statement    []byte // serialized xAPI statement (JSON)
	Status       Status
	Attempts     int // delivery attempts made; only ever increases
	ErrorMessage sql.NullString
	CreatedAt    time.Time
	ModifiedAt   time.Time
}

// QueueStats is a read-only count of queue rows by status.
type QueueStats struct {
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// ProcessSummary is the aggregated outcome of one queue drain pass.
type ProcessSummary struct {
	Processed  int      `json:"processed"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// AddError records a failure message, keeping the list distinct.
func (s *ProcessSummary) AddError(msg string) {
	if msg == "" {
		return
	}
	for _, existing := range s.Errors {
		if existing == msg {
			return
		}
	}
	s.Errors = append(s.Errors, msg)
}
