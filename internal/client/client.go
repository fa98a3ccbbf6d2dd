package client

import (
	"time"

	"github.com/google/uuid"
)

// Alias is a canonical client identity. Free-text spellings resolve to it.
type Alias struct {
	ID             uuid.UUID  `json:"id"`
	OriginalName   string     `json:"original_name"`
	NormalizedName string     `json:"normalized_name"`
	Country        string     `json:"country"`
	UsageCount     int        `json:"usage_count"`
	MergedInto     *uuid.UUID `json:"merged_into,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type ResolutionKind string

const (
	ResolutionAuto   ResolutionKind = "auto"
	ResolutionManual ResolutionKind = "manual"
	ResolutionMerge  ResolutionKind = "merge"
)

// Resolution remembers that a free-text name maps to an alias.
type Resolution struct {
	OriginalName   string
	NormalizedName string
	ResolvedTo     uuid.UUID
	Kind           ResolutionKind
}

type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchAccepted MatchStatus = "accepted"
	MatchRejected MatchStatus = "rejected"
)

// Match is a candidate duplicate pair found by the similarity sweep.
// AliasA always sorts before AliasB.
type Match struct {
	ID         uuid.UUID   `json:"id"`
	AliasA     uuid.UUID   `json:"alias_a"`
	AliasB     uuid.UUID   `json:"alias_b"`
	NameA      string      `json:"name_a"`
	NameB      string      `json:"name_b"`
	Score      int         `json:"score"`
	Status     MatchStatus `json:"status"`
	Notes      string      `json:"notes"`
	ReviewedAt *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}
