package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"
	"time"
)

// startSleeper spawns a sleep child whose exit the test collects itself.
func startSleeper(t *testing.T) *exec.Cmd {
	t.Helper()
	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start sleep: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
	})
	return cmd
}

// waitSignal waits for the child and returns the signal that ended it.
func waitSignal(t *testing.T, cmd *exec.Cmd) syscall.Signal {
	t.Helper()
	err := cmd.Wait()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected signal exit, got %v", err)
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		t.Fatalf("unexpected Sys type %T", exitErr.Sys())
	}
	return status.Signal()
}

func TestTerminate(t *testing.T) {
	t.Parallel()

	cmd := startSleeper(t)

	if err := Terminate(context.Background(), cmd.Process.Pid); err != nil {
		t.Fatalf("Terminate() error: %v", err)
	}
	if sig := waitSignal(t, cmd); sig != syscall.SIGTERM {
		t.Errorf("child ended by %v, want SIGTERM", sig)
	}
}

func TestKill(t *testing.T) {
	t.Parallel()

	cmd := startSleeper(t)

	if err := Kill(context.Background(), cmd.Process.Pid); err != nil {
		t.Fatalf("Kill() error: %v", err)
	}
	if sig := waitSignal(t, cmd); sig != syscall.SIGKILL {
		t.Errorf("child ended by %v, want SIGKILL", sig)
	}
}

func TestTerminate_UnknownPid(t *testing.T) {
	t.Parallel()

	// Far beyond any real pid space.
	if err := Terminate(context.Background(), 1<<30); err == nil {
		t.Fatal("Terminate() = nil for unknown pid")
	}
}

func TestKill_UnknownPid(t *testing.T) {
	t.Parallel()

	if err := Kill(context.Background(), 1<<30); err == nil {
		t.Fatal("Kill() = nil for unknown pid")
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lines := Snapshot(ctx, 0)
	if len(lines) == 0 {
		t.Fatal("Snapshot() returned no processes")
	}

	// The test's own process must be in the table.
	self := fmt.Sprintf("%d ", os.Getpid())
	found := false
	for _, line := range lines {
		if strings.HasPrefix(line, self) {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("own pid %d missing from snapshot of %d processes", os.Getpid(), len(lines))
	}
}

func TestSnapshot_Limit(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lines := Snapshot(ctx, 3)
	if len(lines) > 3 {
		t.Errorf("Snapshot(limit=3) returned %d lines", len(lines))
	}
}
