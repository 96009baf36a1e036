package runner

import (
	"bytes"
	"context"
	"fmt"

	"github.com/codeclash/judge/internal/compiler"
	"github.com/codeclash/judge/internal/executor"
	"github.com/codeclash/judge/internal/gather"
	"github.com/codeclash/judge/internal/problems"
	"github.com/codeclash/judge/internal/sandbox"
	"github.com/codeclash/judge/internal/verdict"
)

// Runner drives the executor once per test case, in fixed index order.
// Test cases run sequentially; partial credit requires every case to be
// attempted independently, so a failing case does not abort the rest.
type Runner struct {
	sb   *sandbox.Sandbox
	exec *executor.Executor
}

func New(sb *sandbox.Sandbox, exec *executor.Executor) *Runner {
	return &Runner{sb: sb, exec: exec}
}

// RunAll judges artifact against every test case under limits. When an
// artifact-level failure makes continuation unsafe, the remaining cases
// are recorded as failed (not excluded from the scoring denominator) and
// the error is returned alongside the results.
func (r *Runner) RunAll(ctx context.Context, artifact *compiler.Artifact, tests []problems.TestCase,
	limits problems.Limits, gath gather.Gatherer) ([]verdict.TestResult, error) {

	results := make([]verdict.TestResult, 0, len(tests))

	for i, test := range tests {
		if err := ctx.Err(); err != nil {
			return markRemainingFailed(results, tests, i), fmt.Errorf("judging deadline exceeded: %w", err)
		}

		gath.ReachTest(test.Index)
		res, err := r.runOne(artifact, test, limits)
		if err != nil {
			return markRemainingFailed(results, tests, i), err
		}
		gath.FinishTest(*res)
		results = append(results, *res)
	}

	return results, nil
}

func (r *Runner) runOne(artifact *compiler.Artifact, test problems.TestCase, limits problems.Limits) (*verdict.TestResult, error) {
	box, err := r.sb.NewBox()
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox box: %w", err)
	}
	defer box.Close()

	if err := box.AddFile(artifact.Filename, artifact.Content); err != nil {
		return nil, fmt.Errorf("failed to add executable to box: %w", err)
	}

	execRes, err := r.exec.Run(box, artifact.ExecCmd, bytes.NewReader(test.Input),
		limits.TimeLimitMs, limits.MemoryLimitMiB)
	if err != nil {
		return nil, fmt.Errorf("test %d: %w", test.Index, err)
	}

	result := verdict.TestResult{
		Index:          test.Index,
		Classification: execRes.Classification,
		CpuMillis:      execRes.CpuMillis,
		WallMillis:     execRes.WallMillis,
		MemoryKiB:      execRes.MemoryKiB,
		Sample:         test.Sample,
	}

	if execRes.Classification == verdict.ClassNormal {
		result.Passed = OutputsMatch(execRes.Stdout, test.Answer)
	}

	// only sample cases surface program output to the team
	if test.Sample {
		result.Stdout = execRes.Stdout
		result.Stderr = execRes.Stderr
	}

	return &result, nil
}

// markRemainingFailed records test cases from index from onward as failed
// so they still count against the scoring denominator.
func markRemainingFailed(results []verdict.TestResult, tests []problems.TestCase, from int) []verdict.TestResult {
	for i := from; i < len(tests); i++ {
		results = append(results, verdict.TestResult{
			Index:          tests[i].Index,
			Passed:         false,
			Classification: verdict.ClassNotRun,
			Sample:         tests[i].Sample,
		})
	}
	return results
}
