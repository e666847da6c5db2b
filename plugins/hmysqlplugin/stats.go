package hmysqlplugin

import "go.uber.org/atomic"

// Stats 插件生命周期计数，所有请求共享
type Stats struct {
	Opened          atomic.Int64
	OpenFailures    atomic.Int64
	Rejected        atomic.Int64
	Committed       atomic.Int64
	RolledBack      atomic.Int64
	Closed          atomic.Int64
	CleanupFailures atomic.Int64
	InFlight        atomic.Int64
}

type StatsSnapshot struct {
	Opened          int64 `json:"opened"`
	OpenFailures    int64 `json:"open_failures"`
	Rejected        int64 `json:"rejected"`
	Committed       int64 `json:"committed"`
	RolledBack      int64 `json:"rolled_back"`
	Closed          int64 `json:"closed"`
	CleanupFailures int64 `json:"cleanup_failures"`
	InFlight        int64 `json:"in_flight"`
}

func (this *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Opened:          this.Opened.Load(),
		OpenFailures:    this.OpenFailures.Load(),
		Rejected:        this.Rejected.Load(),
		Committed:       this.Committed.Load(),
		RolledBack:      this.RolledBack.Load(),
		Closed:          this.Closed.Load(),
		CleanupFailures: this.CleanupFailures.Load(),
		InFlight:        this.InFlight.Load(),
	}
}
