package model

import "time"

// Session is an append-only record of one Start→Stop interval of a worker.
type Session struct {
	WorkerID  string    `json:"worker_id"`
	StartedAt time.Time `json:"started_at"`
	StoppedAt time.Time `json:"stopped_at"`
	Reason    string    `json:"reason"`

	FinalStats Statistics `json:"final_stats"`

	PoolID          string `json:"pool_id"`
	NetVolumeImpact uint64 `json:"net_volume_impact"`
}
