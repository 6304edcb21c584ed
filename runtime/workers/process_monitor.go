package workers

import (
	"context"
	"dialog-hub/contract"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats is a sample of this process' own resource usage.
type ProcessStats struct {
	PID        int32     `json:"pid"`
	Status     string    `json:"status"`
	CPUPercent float64   `json:"cpu_percent"`
	RSSBytes   uint64    `json:"rss_bytes"`
	SampledAt  time.Time `json:"sampled_at"`
}

var _ contract.Worker = (*ProcessMonitor)(nil)

// ProcessMonitor samples CPU and memory of the running process at a fixed interval.
type ProcessMonitor struct {
	log      *slog.Logger
	interval time.Duration
	latest   atomic.Pointer[ProcessStats]
}

func NewProcessMonitor(log *slog.Logger, interval time.Duration) *ProcessMonitor {
	return &ProcessMonitor{log: log, interval: interval}
}

func (w *ProcessMonitor) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	w.sample(p)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.sample(p)
		}
	}
}

// Latest returns the last sample, ok is false before the first one.
func (w *ProcessMonitor) Latest() (ProcessStats, bool) {
	stats := w.latest.Load()
	if stats == nil {
		return ProcessStats{}, false
	}
	return *stats, true
}

func (w *ProcessMonitor) sample(p *process.Process) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		w.log.Debug("Failed to collect memory stats", "error", err)
		return
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		w.log.Debug("Failed to collect cpu stats", "error", err)
		return
	}
	status, err := p.Status()
	if err != nil {
		status = "unknown"
	}
	w.latest.Store(&ProcessStats{
		PID:        p.Pid,
		Status:     status,
		CPUPercent: cpuPercent,
		RSSBytes:   memInfo.RSS,
		SampledAt:  time.Now(),
	})
}
