package ordsync

import "time"

// Result describes a completed sync run.
type Result struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	Cursor string `json:"cursor" yaml:"cursor"`

	// Path is the committed document. Empty when nothing was written.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// RecordCount is the number of records written.
	RecordCount int `json:"record_count" yaml:"record_count"`

	// TotalCount is the count announced by the change feed, nil when unknown.
	TotalCount *int `json:"total_count,omitempty" yaml:"total_count,omitempty"`

	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Written reports whether the run committed a document.
func (r *Result) Written() bool {
	return r != nil && r.Path != ""
}
