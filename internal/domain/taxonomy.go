package domain

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultLCID is the locale used for term label matching (English-US).
const DefaultLCID = 1033

// TermStore is a taxonomy store attached to the target site.
type TermStore struct {
	ID        uuid.UUID
	Name      string
	IsDefault bool
}

// TermSet is a hierarchical vocabulary inside a term store.
type TermSet struct {
	ID          uuid.UUID
	TermStoreID uuid.UUID
	Name        string
}

// Term is a node of a term set. Path is its ltree position within the set.
type Term struct {
	ID                    uuid.UUID
	TermSetID             uuid.UUID
	Name                  string
	Path                  string
	IsAvailableForTagging bool
}

// LabelMatch describes a label search within a term set.
type LabelMatch struct {
	LCID            int
	TrimUnavailable bool
	TermLabel       string
}

// NewLabelMatch builds a match for label, trimming surrounding whitespace.
func NewLabelMatch(label string, lcid int, trimUnavailable bool) LabelMatch {
	if lcid <= 0 {
		lcid = DefaultLCID
	}
	return LabelMatch{
		LCID:            lcid,
		TrimUnavailable: trimUnavailable,
		TermLabel:       strings.TrimSpace(label),
	}
}
