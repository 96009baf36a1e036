package queue_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeclash/judge/internal/gather"
	"github.com/codeclash/judge/internal/judge"
	"github.com/codeclash/judge/internal/lang"
	"github.com/codeclash/judge/internal/problems"
	"github.com/codeclash/judge/internal/queue"
	"github.com/codeclash/judge/internal/verdict"
)

func testSubmission() *queue.Submission {
	return &queue.Submission{
		ProblemID: "sum",
		Language:  "cpp17",
		Code:      "int main() {}",
		Limits:    problems.Limits{TimeLimitMs: 1000, MemoryLimitMiB: 256, MaxPoints: 100},
		Tests:     []problems.TestCase{{Index: 1, Input: []byte("1 2\n"), Answer: []byte("3\n")}},
	}
}

func acceptAll(ctx context.Context, req judge.Request, gath gather.Gatherer) judge.Outcome {
	return judge.Outcome{Verdict: verdict.VerdictAccepted, Score: req.Limits.MaxPoints}
}

func awaitTerminal(t *testing.T, pool *queue.Pool, id string) *queue.Submission {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		sub, ok := pool.Poll(id)
		require.True(t, ok)
		if sub.Status == queue.StatusFinished {
			return sub
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("submission never reached a terminal state")
	return nil
}

func TestPoolJudgesSubmission(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := queue.NewPool(2, 16, lang.DefaultRegistry(), acceptAll)
	pool.Start(ctx)

	id, err := pool.Enqueue(testSubmission())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sub := awaitTerminal(t, pool, id)
	require.NotNil(t, sub.Outcome)
	assert.Equal(t, verdict.VerdictAccepted, sub.Outcome.Verdict)
	assert.Equal(t, 100, sub.Outcome.Score)
	assert.NotNil(t, sub.StartedAt)
	assert.NotNil(t, sub.FinishedAt)
}

func TestPollUnknownSubmission(t *testing.T) {
	pool := queue.NewPool(1, 4, lang.DefaultRegistry(), acceptAll)
	_, ok := pool.Poll("no-such-id")
	assert.False(t, ok)
}

func TestPollTerminalSnapshotsIdentical(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := queue.NewPool(1, 4, lang.DefaultRegistry(), acceptAll)
	pool.Start(ctx)

	id, err := pool.Enqueue(testSubmission())
	require.NoError(t, err)

	first := awaitTerminal(t, pool, id)
	second, ok := pool.Poll(id)
	require.True(t, ok)
	assert.Same(t, first, second)
}

func TestEnqueueFullQueue(t *testing.T) {
	// no workers started, capacity 1: second enqueue must be rejected
	pool := queue.NewPool(1, 1, lang.DefaultRegistry(), acceptAll)

	id, err := pool.Enqueue(testSubmission())
	require.NoError(t, err)

	_, err = pool.Enqueue(testSubmission())
	require.ErrorIs(t, err, queue.ErrQueueUnavailable)

	// the accepted submission is still pending and pollable
	sub, ok := pool.Poll(id)
	require.True(t, ok)
	assert.Equal(t, queue.StatusPending, sub.Status)
}

func TestEnqueueAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := queue.NewPool(1, 4, lang.DefaultRegistry(), acceptAll)
	pool.Start(ctx)
	require.NoError(t, pool.Shutdown(context.Background()))

	_, err := pool.Enqueue(testSubmission())
	assert.ErrorIs(t, err, queue.ErrQueueUnavailable)
}

func TestEnqueueRacingShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := queue.NewPool(2, 64, lang.DefaultRegistry(), acceptAll)
	pool.Start(ctx)

	// hammer Enqueue while Shutdown closes the queue; every call must
	// return an id or ErrQueueUnavailable, never panic
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, err := pool.Enqueue(testSubmission())
				if err != nil {
					assert.ErrorIs(t, err, queue.ErrQueueUnavailable)
					return
				}
			}
		}()
	}

	time.Sleep(time.Millisecond)
	require.NoError(t, pool.Shutdown(context.Background()))
	wg.Wait()

	_, err := pool.Enqueue(testSubmission())
	assert.ErrorIs(t, err, queue.ErrQueueUnavailable)
}

func TestPanickingJudgeFuncStillTerminates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	panicky := func(ctx context.Context, req judge.Request, gath gather.Gatherer) judge.Outcome {
		panic("executor exploded")
	}
	pool := queue.NewPool(1, 4, lang.DefaultRegistry(), panicky)
	pool.Start(ctx)

	id, err := pool.Enqueue(testSubmission())
	require.NoError(t, err)

	sub := awaitTerminal(t, pool, id)
	require.NotNil(t, sub.Outcome)
	assert.Equal(t, verdict.VerdictInternalError, sub.Outcome.Verdict)
}

func TestNonTerminalVerdictCoerced(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bogus := func(ctx context.Context, req judge.Request, gath gather.Gatherer) judge.Outcome {
		return judge.Outcome{Verdict: verdict.Verdict("still thinking")}
	}
	pool := queue.NewPool(1, 4, lang.DefaultRegistry(), bogus)
	pool.Start(ctx)

	id, err := pool.Enqueue(testSubmission())
	require.NoError(t, err)

	sub := awaitTerminal(t, pool, id)
	assert.Equal(t, verdict.VerdictInternalError, sub.Outcome.Verdict)
}

func TestUnknownLanguageBecomesInternalError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := queue.NewPool(1, 4, lang.DefaultRegistry(), acceptAll)
	pool.Start(ctx)

	sub := testSubmission()
	sub.Language = "cobol"
	id, err := pool.Enqueue(sub)
	require.NoError(t, err)

	out := awaitTerminal(t, pool, id)
	assert.Equal(t, verdict.VerdictInternalError, out.Outcome.Verdict)
}

func TestEachSubmissionJudgedExactlyOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	seen := map[string]int{}
	counting := func(ctx context.Context, req judge.Request, gath gather.Gatherer) judge.Outcome {
		mu.Lock()
		seen[req.ID]++
		mu.Unlock()
		return judge.Outcome{Verdict: verdict.VerdictAccepted, Score: 100}
	}

	pool := queue.NewPool(4, 64, lang.DefaultRegistry(), counting)
	pool.Start(ctx)

	ids := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		id, err := pool.Enqueue(testSubmission())
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for _, id := range ids {
		awaitTerminal(t, pool, id)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 20)
	for id, n := range seen {
		assert.Equal(t, 1, n, "submission %s judged %d times", id, n)
	}
}

func TestShutdownWaitsForInFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var finished atomic.Bool
	slow := func(ctx context.Context, req judge.Request, gath gather.Gatherer) judge.Outcome {
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
		return judge.Outcome{Verdict: verdict.VerdictAccepted}
	}
	pool := queue.NewPool(1, 4, lang.DefaultRegistry(), slow)
	pool.Start(ctx)

	_, err := pool.Enqueue(testSubmission())
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond) // let the worker claim it

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.True(t, finished.Load())
}

func TestGathererFactoryReceivesSubmissionID(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var gathered []string
	factory := func(submissionID string) gather.Gatherer {
		mu.Lock()
		gathered = append(gathered, submissionID)
		mu.Unlock()
		return gather.Noop{}
	}

	pool := queue.NewPool(1, 4, lang.DefaultRegistry(), acceptAll,
		queue.WithGathererFactory(factory))
	pool.Start(ctx)

	id, err := pool.Enqueue(testSubmission())
	require.NoError(t, err)
	awaitTerminal(t, pool, id)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, gathered, 1)
	assert.Equal(t, id, gathered[0])
}
