// Package ingest holds what every import source reports back.
package ingest

// Result is the outcome of one import.
type Result struct {
	SessionsReceived int      `json:"sessions_received"`
	SetsReceived     int      `json:"sets_received"`
	WarmupsIgnored   int      `json:"warmups_ignored,omitempty"`
	BatchesApplied   int      `json:"batches_applied"`
	BatchesSkipped   int      `json:"batches_skipped"`
	UnknownSessions  []string `json:"unknown_sessions,omitempty"`
	RejectedSessions []string `json:"rejected_sessions,omitempty"`
	DryRun           bool     `json:"dry_run,omitempty"`
	Message          string   `json:"message,omitempty"`
}
