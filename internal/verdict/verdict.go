package verdict

import (
	"errors"
	"math"
)

// Classification is the per-test-case exit classification produced by the
// executor.
type Classification string

const (
	ClassNormal       Classification = "normal"
	ClassTimeLimit    Classification = "time_limit"
	ClassMemoryLimit  Classification = "memory_limit"
	ClassRuntimeError Classification = "runtime_error"
	ClassNotRun       Classification = "not_run"
)

// Verdict is the terminal outcome of a submission.
type Verdict string

const (
	VerdictAccepted            Verdict = "accepted"
	VerdictWrongAnswer         Verdict = "wrong_answer"
	VerdictTimeLimitExceeded   Verdict = "time_limit_exceeded"
	VerdictMemoryLimitExceeded Verdict = "memory_limit_exceeded"
	VerdictRuntimeError        Verdict = "runtime_error"
	VerdictCompilationError    Verdict = "compilation_error"
	VerdictInternalError       Verdict = "internal_error"
)

// TestResult is the outcome of a single test case run. Stdout is retained
// only for sample test cases; hidden cases carry pass/fail and resource
// usage alone.
type TestResult struct {
	Index          int
	Passed         bool
	Classification Classification
	CpuMillis      int64
	WallMillis     int64
	MemoryKiB      int64
	Stdout         []byte
	Stderr         []byte
	Sample         bool
}

// ErrNoTestCases is returned when a reduction is attempted over zero test
// cases. Scoring is undefined in that situation and must not silently
// award full or zero credit.
var ErrNoTestCases = errors.New("problem has no test cases")

// severity orders failure classifications from most to least severe.
// A single test case of a more severe kind dominates the verdict even
// when every other case passed.
var severity = []struct {
	class   Classification
	verdict Verdict
}{
	{ClassRuntimeError, VerdictRuntimeError},
	{ClassMemoryLimit, VerdictMemoryLimitExceeded},
	{ClassTimeLimit, VerdictTimeLimitExceeded},
}

// Reduce folds per-test-case results into a single verdict and a
// partial-credit score. The verdict reflects the worst outcome observed;
// the score reflects the fraction of test cases passed, each test case
// weighing maxPoints/total with round-half-up.
func Reduce(compileFailed bool, results []TestResult, maxPoints int) (Verdict, int, error) {
	if compileFailed {
		return VerdictCompilationError, 0, nil
	}
	if len(results) == 0 {
		return VerdictInternalError, 0, ErrNoTestCases
	}

	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	score := Score(maxPoints, passed, len(results))

	for _, s := range severity {
		for _, r := range results {
			if r.Classification == s.class {
				return s.verdict, score, nil
			}
		}
	}

	if passed == len(results) {
		return VerdictAccepted, score, nil
	}
	return VerdictWrongAnswer, score, nil
}

// Score computes round-half-up equal-weight partial credit.
func Score(maxPoints, passed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(maxPoints)*float64(passed)/float64(total) + 0.5))
}

// IsTerminal reports whether v is one of the closed verdict set.
func IsTerminal(v Verdict) bool {
	switch v {
	case VerdictAccepted, VerdictWrongAnswer, VerdictTimeLimitExceeded,
		VerdictMemoryLimitExceeded, VerdictRuntimeError,
		VerdictCompilationError, VerdictInternalError:
		return true
	}
	return false
}
