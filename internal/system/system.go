// Package system holds host-level concerns: file-descriptor headroom for
// wide export batches and the host snapshot printed with -stats.
package system

import (
	"context"
	"fmt"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/avilov/skyshot/internal/logging"
)

// InitResourceLimits raises the open-file soft limit so a wide batch can
// keep every artifact stream open at once. Failure is logged, not fatal.
func InitResourceLimits(ctx context.Context, log logging.Logger) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn(ctx, "read file limit", logging.Err(err))
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn(ctx, "raise file limit", logging.Err(err))
		return
	}
	log.Debug(ctx, "file limit raised", logging.Int("limit", int(rLimit.Cur)))
}

// HostReport is a snapshot of the machine a batch ran on.
type HostReport struct {
	Hostname      string
	OS            string
	Platform      string
	PhysicalCores int
	LogicalCores  int
	TotalMemMB    uint64
	UsedMemMB     uint64
}

// CollectHostReport gathers the snapshot. Fields that cannot be read stay
// zero; partial information is still worth printing.
func CollectHostReport(ctx context.Context) HostReport {
	var report HostReport

	if info, err := host.InfoWithContext(ctx); err == nil {
		report.Hostname = info.Hostname
		report.OS = info.OS
		report.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
	}
	if physical, err := cpu.CountsWithContext(ctx, false); err == nil {
		report.PhysicalCores = physical
	}
	if logical, err := cpu.CountsWithContext(ctx, true); err == nil {
		report.LogicalCores = logical
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		report.TotalMemMB = vm.Total / (1 << 20)
		report.UsedMemMB = vm.Used / (1 << 20)
	}

	return report
}

func (r HostReport) String() string {
	return fmt.Sprintf("host=%s os=%s platform=%s cores=%d/%d mem=%d/%dMB",
		r.Hostname, r.OS, r.Platform, r.PhysicalCores, r.LogicalCores, r.UsedMemMB, r.TotalMemMB)
}
