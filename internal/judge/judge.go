package judge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codeclash/judge/internal/compiler"
	"github.com/codeclash/judge/internal/gather"
	"github.com/codeclash/judge/internal/lang"
	"github.com/codeclash/judge/internal/problems"
	"github.com/codeclash/judge/internal/verdict"
)

// Request is everything needed to judge one submission. Limits and test
// cases were snapshotted at enqueue time; later problem edits do not
// affect a request already built.
type Request struct {
	ID        string
	ProblemID string
	Language  lang.Language
	Code      string
	Limits    problems.Limits
	Tests     []problems.TestCase
}

// Outcome is the terminal result of judging one submission.
type Outcome struct {
	Verdict         verdict.Verdict
	Score           int
	CompileExitCode int64
	CompileOutput   string
	TestResults     []verdict.TestResult
	TimeMs          int64
	MemoryKiB       int64
}

// Builder compiles a submission into a runnable artifact.
type Builder interface {
	Build(language lang.Language, sourceCode string) (*compiler.Artifact, *compiler.Failure, error)
}

// TestRunner drives an artifact through every test case.
type TestRunner interface {
	RunAll(ctx context.Context, artifact *compiler.Artifact, tests []problems.TestCase,
		limits problems.Limits, gath gather.Gatherer) ([]verdict.TestResult, error)
}

// FileAwaiter resolves test case blobs referenced by sha256 key.
type FileAwaiter interface {
	Await(key string) ([]byte, error)
}

// Pipeline judges submissions: prepare (resolve test files in parallel
// with compiling), run all test cases, reduce to a verdict and score.
type Pipeline struct {
	builder Builder
	runner  TestRunner
	files   FileAwaiter
}

func NewPipeline(builder Builder, runner TestRunner, files FileAwaiter) *Pipeline {
	return &Pipeline{builder: builder, runner: runner, files: files}
}

// overheadPerTest pads the lifecycle deadline beyond the declared limits.
const overheadPerTest = 3 * time.Second

// LifecycleTimeout bounds how long one submission may occupy a worker:
// the compile limit plus every test case's time limit plus fixed
// overhead. A submission that somehow outlives it is forced to an
// internal error rather than left stuck.
func LifecycleTimeout(limits problems.Limits, testCount int) time.Duration {
	perTest := time.Duration(limits.TimeLimitMs)*time.Millisecond + overheadPerTest
	return time.Minute + perTest*time.Duration(testCount)
}

// Judge runs req to a terminal outcome. It never returns an error:
// anything unexpected, panics included, maps to the internal error
// verdict so the submission cannot be left non-terminal.
func (p *Pipeline) Judge(ctx context.Context, req Request, gath gather.Gatherer) (out Outcome) {
	logger := slog.With("subm_uuid", req.ID, "problem_id", req.ProblemID, "lang", req.Language.ID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic during judging", "panic", r)
			msg := fmt.Sprintf("panic during judging: %v", r)
			gath.InternalError(msg)
			out = Outcome{Verdict: verdict.VerdictInternalError}
			gath.FinishJob(out.Verdict, 0, 0, 0)
		}
	}()

	gath.StartJob()
	logger.Info("judging started", "tests", len(req.Tests))

	ctx, cancel := context.WithTimeout(ctx, LifecycleTimeout(req.Limits, len(req.Tests)))
	defer cancel()

	var artifact *compiler.Artifact
	var failure *compiler.Failure
	var tests []problems.TestCase

	errs, _ := errgroup.WithContext(ctx)

	errs.Go(func() error {
		var err error
		tests, err = p.resolveTests(req.Tests)
		return err
	})

	errs.Go(func() error {
		gath.StartCompile()
		var err error
		artifact, failure, err = p.builder.Build(req.Language, req.Code)
		if err != nil {
			return fmt.Errorf("failed to build submission: %w", err)
		}
		if failure != nil {
			gath.FinishCompile(failure.ExitCode, failure.Diagnostics)
		} else {
			gath.FinishCompile(0, "")
		}
		return nil
	})

	if err := errs.Wait(); err != nil {
		return p.internalError(logger, gath, err)
	}

	if failure != nil {
		// compile failure is fatal: zero test cases run, score zero
		logger.Info("compilation failed", "exit_code", failure.ExitCode)
		out = Outcome{
			Verdict:         verdict.VerdictCompilationError,
			CompileExitCode: failure.ExitCode,
			CompileOutput:   failure.Diagnostics,
		}
		gath.FinishJob(out.Verdict, 0, 0, 0)
		return out
	}

	results, runErr := p.runner.RunAll(ctx, artifact, tests, req.Limits, gath)

	v, score, err := verdict.Reduce(false, results, req.Limits.MaxPoints)
	if err != nil {
		return p.internalError(logger, gath, err)
	}
	if runErr != nil {
		// remaining cases were recorded as failed; the score stands but
		// the verdict reflects the infrastructure failure
		logger.Error("test run aborted", "error", runErr)
		gath.InternalError(runErr.Error())
		v = verdict.VerdictInternalError
	}

	timeMs, memKiB := aggregate(results)
	out = Outcome{
		Verdict:     v,
		Score:       score,
		TestResults: results,
		TimeMs:      timeMs,
		MemoryKiB:   memKiB,
	}
	gath.FinishJob(out.Verdict, out.Score, out.TimeMs, out.MemoryKiB)
	logger.Info("judging finished", "verdict", v, "score", score, "time_ms", timeMs, "mem_kib", memKiB)
	return out
}

func (p *Pipeline) internalError(logger *slog.Logger, gath gather.Gatherer, err error) Outcome {
	logger.Error("judging failed", "error", err)
	gath.InternalError(err.Error())
	gath.FinishJob(verdict.VerdictInternalError, 0, 0, 0)
	return Outcome{Verdict: verdict.VerdictInternalError}
}

// resolveTests returns a copy of tests with content referenced by file
// store keys filled in. The input slice stays untouched: the queue hands
// out the same test cases to pollers, so filling blobs in place would be
// a data race.
func (p *Pipeline) resolveTests(tests []problems.TestCase) ([]problems.TestCase, error) {
	resolved := make([]problems.TestCase, len(tests))
	copy(resolved, tests)
	for i := range resolved {
		t := &resolved[i]
		if t.Input == nil && t.InputKey != "" {
			if p.files == nil {
				return nil, fmt.Errorf("test %d references file %s but no file store is configured", t.Index, t.InputKey)
			}
			data, err := p.files.Await(t.InputKey)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch input of test %d: %w", t.Index, err)
			}
			t.Input = data
		}
		if t.Answer == nil && t.AnswerKey != "" {
			if p.files == nil {
				return nil, fmt.Errorf("test %d references file %s but no file store is configured", t.Index, t.AnswerKey)
			}
			data, err := p.files.Await(t.AnswerKey)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch answer of test %d: %w", t.Index, err)
			}
			t.Answer = data
		}
	}
	return resolved, nil
}

func aggregate(results []verdict.TestResult) (timeMs int64, memKiB int64) {
	for _, r := range results {
		if r.CpuMillis > timeMs {
			timeMs = r.CpuMillis
		}
		if r.MemoryKiB > memKiB {
			memKiB = r.MemoryKiB
		}
	}
	return timeMs, memKiB
}
