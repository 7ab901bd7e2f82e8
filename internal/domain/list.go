package domain

import (
	"time"

	"github.com/google/uuid"
)

// List is a named collection of items in the target store.
type List struct {
	ID    uuid.UUID
	Title string
}

// ListItem is a persisted item of a list.
type ListItem struct {
	ID         int64          `json:"id"`
	ListID     uuid.UUID      `json:"list_id"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
}
