package verdict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeclash/judge/internal/verdict"
)

func passed(index int) verdict.TestResult {
	return verdict.TestResult{Index: index, Passed: true, Classification: verdict.ClassNormal}
}

func failed(index int, class verdict.Classification) verdict.TestResult {
	return verdict.TestResult{Index: index, Passed: false, Classification: class}
}

func TestReduceAllPassed(t *testing.T) {
	v, score, err := verdict.Reduce(false, []verdict.TestResult{
		passed(1), passed(2), passed(3),
	}, 100)
	require.NoError(t, err)
	assert.Equal(t, verdict.VerdictAccepted, v)
	assert.Equal(t, 100, score)
}

func TestReduceCompileFailureShortCircuits(t *testing.T) {
	v, score, err := verdict.Reduce(true, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, verdict.VerdictCompilationError, v)
	assert.Equal(t, 0, score)
}

func TestReduceZeroTestCases(t *testing.T) {
	v, score, err := verdict.Reduce(false, nil, 100)
	require.ErrorIs(t, err, verdict.ErrNoTestCases)
	assert.Equal(t, verdict.VerdictInternalError, v)
	assert.Equal(t, 0, score)
}

func TestReducePartialCreditRoundsHalfUp(t *testing.T) {
	// 3 of 4 passed, 100 * 3/4 = 75
	v, score, err := verdict.Reduce(false, []verdict.TestResult{
		passed(1), passed(2), passed(3),
		failed(4, verdict.ClassNormal),
	}, 100)
	require.NoError(t, err)
	assert.Equal(t, verdict.VerdictWrongAnswer, v)
	assert.Equal(t, 75, score)

	// 1 of 3 passed, 100/3 = 33.33 rounds down
	_, score, err = verdict.Reduce(false, []verdict.TestResult{
		passed(1),
		failed(2, verdict.ClassNormal),
		failed(3, verdict.ClassNormal),
	}, 100)
	require.NoError(t, err)
	assert.Equal(t, 33, score)

	// 1 of 2 passed with odd max points, 25 * 1/2 = 12.5 rounds up
	_, score, err = verdict.Reduce(false, []verdict.TestResult{
		passed(1),
		failed(2, verdict.ClassNormal),
	}, 25)
	require.NoError(t, err)
	assert.Equal(t, 13, score)
}

func TestReduceSeverityPrecedence(t *testing.T) {
	// RE beats MLE beats TLE beats WA regardless of order
	results := []verdict.TestResult{
		failed(1, verdict.ClassNormal),
		failed(2, verdict.ClassTimeLimit),
		failed(3, verdict.ClassMemoryLimit),
		failed(4, verdict.ClassRuntimeError),
	}
	v, _, err := verdict.Reduce(false, results, 100)
	require.NoError(t, err)
	assert.Equal(t, verdict.VerdictRuntimeError, v)

	v, _, err = verdict.Reduce(false, results[:3], 100)
	require.NoError(t, err)
	assert.Equal(t, verdict.VerdictMemoryLimitExceeded, v)

	v, _, err = verdict.Reduce(false, results[:2], 100)
	require.NoError(t, err)
	assert.Equal(t, verdict.VerdictTimeLimitExceeded, v)

	v, _, err = verdict.Reduce(false, results[:1], 100)
	require.NoError(t, err)
	assert.Equal(t, verdict.VerdictWrongAnswer, v)
}

func TestReduceSingleSevereFailureDominates(t *testing.T) {
	v, score, err := verdict.Reduce(false, []verdict.TestResult{
		passed(1), passed(2), passed(3), passed(4),
		failed(5, verdict.ClassRuntimeError),
	}, 100)
	require.NoError(t, err)
	assert.Equal(t, verdict.VerdictRuntimeError, v)
	assert.Equal(t, 80, score)
}

func TestReduceNotRunCountsInDenominator(t *testing.T) {
	v, score, err := verdict.Reduce(false, []verdict.TestResult{
		passed(1),
		failed(2, verdict.ClassNotRun),
		failed(3, verdict.ClassNotRun),
		failed(4, verdict.ClassNotRun),
	}, 100)
	require.NoError(t, err)
	assert.Equal(t, verdict.VerdictWrongAnswer, v)
	assert.Equal(t, 25, score)
}

func TestScoreBounds(t *testing.T) {
	assert.Equal(t, 0, verdict.Score(100, 0, 7))
	assert.Equal(t, 100, verdict.Score(100, 7, 7))
	assert.Equal(t, 0, verdict.Score(100, 0, 0))
	assert.Equal(t, 1, verdict.Score(1, 1, 2))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, verdict.IsTerminal(verdict.VerdictAccepted))
	assert.True(t, verdict.IsTerminal(verdict.VerdictInternalError))
	assert.False(t, verdict.IsTerminal(verdict.Verdict("judging")))
	assert.False(t, verdict.IsTerminal(verdict.Verdict("")))
}
