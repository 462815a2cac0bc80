package process

import (
	"context"
	"fmt"
	"strings"

	gops "github.com/shirou/gopsutil/v3/process"
)

// Terminate asks the OS process with the given pid to exit gracefully
// (SIGTERM on POSIX). Used by stop escalation when the watcher's own signal
// and join did not release the engine's port.
func Terminate(ctx context.Context, pid int) error {
	p, err := gops.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := p.TerminateWithContext(ctx); err != nil {
		return fmt.Errorf("terminate process %d: %w", pid, err)
	}
	return nil
}

// Kill force-kills the OS process with the given pid (SIGKILL on POSIX).
func Kill(ctx context.Context, pid int) error {
	p, err := gops.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := p.KillWithContext(ctx); err != nil {
		return fmt.Errorf("kill process %d: %w", pid, err)
	}
	return nil
}

// Snapshot returns one "pid name cmdline" line per running process, for the
// diagnostic dump logged when a stopped engine's port stays open. limit <= 0
// means no cap.
func Snapshot(ctx context.Context, limit int) []string {
	procs, err := gops.ProcessesWithContext(ctx)
	if err != nil {
		return []string{fmt.Sprintf("process table unavailable: %v", err)}
	}

	lines := make([]string, 0, len(procs))
	for _, p := range procs {
		if limit > 0 && len(lines) >= limit {
			break
		}
		name, _ := p.NameWithContext(ctx)
		cmdline, _ := p.CmdlineWithContext(ctx)
		lines = append(lines, strings.TrimSpace(fmt.Sprintf("%d %s %s", p.Pid, name, cmdline)))
	}
	return lines
}
