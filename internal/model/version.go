package model

import "time"

// VersionProbe records the outcome of the contract-version probe the
// engine issues at Start. A failed probe is recorded too (Error set,
// Logs empty) so the operator can see which program build the cluster
// was running even when the probe itself misbehaved.
type VersionProbe struct {
	Logs     []string  `json:"logs,omitempty"`
	Error    string    `json:"error,omitempty"`
	ProbedAt time.Time `json:"probed_at"`
}
