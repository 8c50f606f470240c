package domain

import "time"

// ResolutionRecord is the diagnostic view of one resolution cache entry.
type ResolutionRecord struct {
	Method     string    `json:"method"`
	Type       string    `json:"type"`
	Dispatch   string    `json:"dispatch,omitempty"`
	Owner      string    `json:"owner,omitzero"`
	Path       []int     `json:"path,omitempty"`
	TypeArgs   []string  `json:"type_args,omitempty"`
	ResolvedAt time.Time `json:"resolved_at,omitzero"`
}
