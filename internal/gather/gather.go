package gather

import (
	"github.com/codeclash/judge/internal/verdict"
)

// Gatherer receives judging progress as it happens. The pipeline only
// reports through this interface; delivery (in-process store updates,
// NATS events, terminal output) is a pluggable concern behind it.
type Gatherer interface {
	StartJob()

	StartCompile()
	FinishCompile(exitCode int64, diagnostics string)

	ReachTest(index int)
	FinishTest(res verdict.TestResult)

	// InternalError is reported for operator attention before the job
	// finishes with an internal error verdict.
	InternalError(msg string)

	// FinishJob is called exactly once per submission.
	FinishJob(v verdict.Verdict, score int, timeMs int64, memKiB int64)
}

// Noop discards all events.
type Noop struct{}

func (Noop) StartJob()                                    {}
func (Noop) StartCompile()                                {}
func (Noop) FinishCompile(int64, string)                  {}
func (Noop) ReachTest(int)                                {}
func (Noop) FinishTest(verdict.TestResult)                {}
func (Noop) InternalError(string)                         {}
func (Noop) FinishJob(verdict.Verdict, int, int64, int64) {}

// Multi fans events out to several gatherers in order.
type Multi []Gatherer

func (m Multi) StartJob() {
	for _, g := range m {
		g.StartJob()
	}
}

func (m Multi) StartCompile() {
	for _, g := range m {
		g.StartCompile()
	}
}

func (m Multi) FinishCompile(exitCode int64, diagnostics string) {
	for _, g := range m {
		g.FinishCompile(exitCode, diagnostics)
	}
}

func (m Multi) ReachTest(index int) {
	for _, g := range m {
		g.ReachTest(index)
	}
}

func (m Multi) FinishTest(res verdict.TestResult) {
	for _, g := range m {
		g.FinishTest(res)
	}
}

func (m Multi) InternalError(msg string) {
	for _, g := range m {
		g.InternalError(msg)
	}
}

func (m Multi) FinishJob(v verdict.Verdict, score int, timeMs int64, memKiB int64) {
	for _, g := range m {
		g.FinishJob(v, score, timeMs, memKiB)
	}
}
