package metrics

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// Collector periodically logs CPU and memory usage during long conversions.
type Collector struct {
	interval time.Duration
	logger   *zap.Logger
	proc     *process.Process
}

// NewCollector creates a metrics collector. Intervals below one second are
// raised to the 30 second default.
func NewCollector(interval time.Duration, logger *zap.Logger) *Collector {
	if interval < time.Second {
		interval = 30 * time.Second
	}

	proc, _ := process.NewProcess(int32(os.Getpid()))

	return &Collector{
		interval: interval,
		logger:   logger,
		proc:     proc,
	}
}

// Start begins periodic collection and returns when the context is cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Metrics collection stopped")
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

// collect gathers one sample and logs it.
func (c *Collector) collect() {
	fields := make([]zap.Field, 0, 4)

	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		fields = append(fields, zap.Float64("cpu_pct", cpuPercent[0]))
	}
	if c.proc != nil {
		if procCPU, err := c.proc.Percent(0); err == nil {
			fields = append(fields, zap.Float64("proc_cpu_pct", procCPU))
		}
	}
	if vmem, err := mem.VirtualMemory(); err == nil {
		fields = append(fields,
			zap.Float64("mem_used_gb", float64(vmem.Used)/(1024*1024*1024)),
			zap.Float64("mem_pct", vmem.UsedPercent))
	}

	c.logger.Info("System metrics", fields...)
}
