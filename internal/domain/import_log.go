package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportLogEntry captures a record or field level failure of an import run.
type ImportLogEntry struct {
	ID           uuid.UUID `json:"id"`
	RunID        uuid.UUID `json:"run_id"`
	ListTitle    string    `json:"list_title"`
	FileName     string    `json:"file_name"`
	RowNumber    *int      `json:"row_number,omitempty"`
	RecordKey    string    `json:"record_key,omitempty"`
	Field        string    `json:"field,omitempty"`
	FailureKind  string    `json:"failure_kind"`
	ErrorMessage string    `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}
