package judge

import (
	"context"
	"fmt"

	"github.com/codeclash/judge/internal/compiler"
	"github.com/codeclash/judge/internal/executor"
	"github.com/codeclash/judge/internal/lang"
	"github.com/codeclash/judge/internal/problems"
	"github.com/codeclash/judge/internal/verdict"
)

// SingleRunner executes an artifact once against one input.
type SingleRunner interface {
	RunOnce(artifact *compiler.Artifact, input []byte, limits problems.Limits) (*executor.Result, error)
}

// adHocLimits bound /test runs, which have no problem to inherit limits
// from.
var adHocLimits = problems.Limits{
	TimeLimitMs:    5000,
	MemoryLimitMiB: 256,
	MaxPoints:      1,
}

// AdHocResult is the outcome of one ad hoc run. Never persisted.
type AdHocResult struct {
	CompileFailed  bool
	CompileOutput  string
	Classification verdict.Classification
	ExitCode       int64
	Stdout         []byte
	Stderr         []byte
	CpuMillis      int64
	MemoryKiB      int64
}

// AdHoc compiles and runs code against a caller-supplied input, skipping
// the test-case runner and verdict engine entirely.
type AdHoc struct {
	builder Builder
	runner  SingleRunner
}

func NewAdHoc(builder Builder, runner SingleRunner) *AdHoc {
	return &AdHoc{builder: builder, runner: runner}
}

func (a *AdHoc) Run(ctx context.Context, language lang.Language, code string, input []byte) (*AdHocResult, error) {
	artifact, failure, err := a.builder.Build(language, code)
	if err != nil {
		return nil, fmt.Errorf("failed to build code: %w", err)
	}
	if failure != nil {
		return &AdHocResult{
			CompileFailed: true,
			CompileOutput: failure.Diagnostics,
		}, nil
	}

	res, err := a.runner.RunOnce(artifact, input, adHocLimits)
	if err != nil {
		return nil, fmt.Errorf("failed to run code: %w", err)
	}

	return &AdHocResult{
		Classification: res.Classification,
		ExitCode:       res.ExitCode,
		Stdout:         res.Stdout,
		Stderr:         res.Stderr,
		CpuMillis:      res.CpuMillis,
		MemoryKiB:      res.MemoryKiB,
	}, nil
}
