package netscan

import (
	"context"
	"log/slog"
	"os/exec"
	"runtime"
	"time"
)

// DefaultProbeTimeout bounds a single echo round-trip. One second is long
// enough for any host on the local segment to answer.
const DefaultProbeTimeout = time.Second

// Prober reports whether a host answers a single network-layer echo.
type Prober interface {
	Reachable(ctx context.Context, ip string) bool
}

// PingProber sends one ICMP echo request through the host's native ping
// tool. The call blocks for up to the configured timeout; there is no
// retry, a single failed echo means unreachable.
type PingProber struct {
	timeout time.Duration
	logger  *slog.Logger
}

func NewPingProber(timeout time.Duration, logger *slog.Logger) *PingProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &PingProber{timeout: timeout, logger: logger}
}

// Reachable sends exactly one echo and reports whether a reply arrived
// before the timeout. A started probe runs to completion even when the
// caller goes away; the timeout is the only bound.
func (p *PingProber) Reachable(ctx context.Context, ip string) bool {
	probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	countFlag := "-c"
	if runtime.GOOS == "windows" {
		countFlag = "-n"
	}

	err := exec.CommandContext(probeCtx, "ping", countFlag, "1", ip).Run()
	if err != nil {
		p.logger.Debug("echo probe failed", "ip", ip, "error", err)
		return false
	}
	return true
}
