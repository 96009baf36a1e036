package executor

import (
	"fmt"
	"io"

	"github.com/codeclash/judge/internal/sandbox"
	"github.com/codeclash/judge/internal/verdict"
)

// MaxCaptureBytes caps how much of a program's stdout/stderr is retained.
// Everything past the cap is discarded, never buffered; a submission that
// prints gigabytes must not exhaust judge-host memory.
const MaxCaptureBytes = 64 * 1024

// Result is the outcome of one program execution inside the sandbox.
// It is folded into a test case result and then discarded.
type Result struct {
	Classification verdict.Classification
	ExitCode       int64
	ExitSignal     *int64

	Stdout          []byte
	StdoutTruncated bool
	Stderr          []byte
	StderrTruncated bool

	CpuMillis  int64
	WallMillis int64
	MemoryKiB  int64
}

// Executor runs programs under hard wall-clock and memory ceilings. The
// ceilings are enforced by the sandbox independent of the program's own
// behavior.
type Executor struct {
	extraWallTimeSec float64
}

func New() *Executor {
	return &Executor{extraWallTimeSec: 2.0}
}

// Run executes command inside box bounded by timeLimitMs and
// memoryLimitMiB, feeding stdin and capturing capped output.
func (e *Executor) Run(box *sandbox.Box, command string, stdin io.Reader, timeLimitMs int, memoryLimitMiB int) (*Result, error) {
	memLimitKiB := int64(memoryLimitMiB) * 1024
	constraints := sandbox.Constraints{
		CpuTimeLimInSec:      float64(timeLimitMs) / 1000.0,
		ExtraCpuTimeLimInSec: 0.5,
		WallTimeLimInSec:     float64(timeLimitMs)/1000.0 + e.extraWallTimeSec,
		MemoryLimitInKiB:     memLimitKiB,
		MaxProcesses:         64,
		MaxOpenFiles:         64,
	}

	process, err := box.Run(command, stdin, &constraints)
	if err != nil {
		return nil, fmt.Errorf("failed to run command in sandbox: %w", err)
	}

	stdout, stdoutTrunc, err := readCapped(process.Stdout())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdout: %w", err)
	}
	stderr, stderrTrunc, err := readCapped(process.Stderr())
	if err != nil {
		return nil, fmt.Errorf("failed to read stderr: %w", err)
	}

	metrics, err := process.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to collect sandbox metrics: %w", err)
	}

	if metrics.Status == sandbox.StatusInternalError {
		return nil, fmt.Errorf("sandbox failure: %s", metrics.Message)
	}

	return &Result{
		Classification:  classify(metrics, memLimitKiB),
		ExitCode:        metrics.ExitCode,
		ExitSignal:      metrics.ExitSignal,
		Stdout:          stdout,
		StdoutTruncated: stdoutTrunc,
		Stderr:          stderr,
		StderrTruncated: stderrTrunc,
		CpuMillis:       int64(metrics.CpuTimeSec * 1000),
		WallMillis:      int64(metrics.WallTimeSec * 1000),
		MemoryKiB:       peakMemoryKiB(metrics),
	}, nil
}

// classify maps sandbox metrics onto an exit classification. Precedence
// is fixed: memory ceiling, then wall clock, then runtime failure, then
// normal.
func classify(m *sandbox.Metrics, memLimitKiB int64) verdict.Classification {
	if m.CgOomKilled || peakMemoryKiB(m) > memLimitKiB {
		return verdict.ClassMemoryLimit
	}
	if m.Status == sandbox.StatusTimedOut {
		return verdict.ClassTimeLimit
	}
	if m.Status == sandbox.StatusRuntimeError || m.Status == sandbox.StatusSignalled || m.ExitCode != 0 {
		return verdict.ClassRuntimeError
	}
	return verdict.ClassNormal
}

func peakMemoryKiB(m *sandbox.Metrics) int64 {
	if m.CgMemKiB > m.MaxRssKiB {
		return m.CgMemKiB
	}
	return m.MaxRssKiB
}

func readCapped(r io.Reader) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxCaptureBytes))
	if err != nil {
		return nil, false, err
	}
	truncated := false
	if int64(len(data)) == MaxCaptureBytes {
		// drain the rest so the child never blocks on a full pipe
		n, err := io.Copy(io.Discard, r)
		if err != nil {
			return nil, false, err
		}
		truncated = n > 0
	}
	return data, truncated, nil
}
