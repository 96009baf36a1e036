package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/codeclash/judge/internal/gather"
	"github.com/codeclash/judge/internal/judge"
	"github.com/codeclash/judge/internal/lang"
	"github.com/codeclash/judge/internal/verdict"
)

// ErrQueueUnavailable is returned when the queue cannot accept a
// submission (full or shut down). The submission is not created.
var ErrQueueUnavailable = errors.New("submission queue unavailable")

// JudgeFunc judges one request to a terminal outcome. It must not return
// a non-terminal result.
type JudgeFunc func(ctx context.Context, req judge.Request, gath gather.Gatherer) judge.Outcome

// GathererFactory builds the status event gatherer for one submission.
type GathererFactory func(submissionID string) gather.Gatherer

// Pool is the submission queue plus a fixed-size worker pool. Claims are
// exclusive: the jobs channel delivers every submission id to exactly
// one worker, and each worker judges one submission end-to-end before
// claiming the next. Ordering is FIFO best-effort across workers.
type Pool struct {
	langs       *lang.Registry
	judge       JudgeFunc
	newGatherer GathererFactory

	workers int
	store   *xsync.MapOf[string, *Submission]
	jobs    chan string

	// closeMu serializes sends on jobs with its close; a send that
	// raced the close would panic, select-default or not
	closeMu sync.Mutex
	closed  bool
	wg      sync.WaitGroup
}

type Option func(*Pool)

// WithGathererFactory installs per-submission status event delivery.
func WithGathererFactory(f GathererFactory) Option {
	return func(p *Pool) { p.newGatherer = f }
}

func NewPool(workers int, capacity int, langs *lang.Registry, judgeFn JudgeFunc, opts ...Option) *Pool {
	p := &Pool{
		langs:       langs,
		judge:       judgeFn,
		newGatherer: func(string) gather.Gatherer { return gather.Noop{} },
		workers:     workers,
		store:       xsync.NewMapOf[string, *Submission](),
		jobs:        make(chan string, capacity),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the worker pool. Workers exit when ctx is cancelled and
// the queue has been shut down.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			p.workerLoop(ctx, workerID)
		}(i)
	}
}

// Shutdown stops accepting submissions and waits for in-flight judging
// to reach terminal states, up to ctx's deadline.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.closeMu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.closeMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue accepts a submission for judging and returns its id. It is
// fast and never blocks on judging; it fails only when the queue itself
// cannot take the job.
func (p *Pool) Enqueue(sub *Submission) (string, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.QueuedAt = now
	sub.Status = StatusPending

	p.store.Store(sub.ID, sub)

	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		p.store.Delete(sub.ID)
		return "", ErrQueueUnavailable
	}
	select {
	case p.jobs <- sub.ID:
		p.closeMu.Unlock()
		queueDepth.Inc()
		return sub.ID, nil
	default:
		p.closeMu.Unlock()
		p.store.Delete(sub.ID)
		return "", ErrQueueUnavailable
	}
}

// Poll returns the current snapshot of a submission. It never blocks;
// terminal submissions return identical snapshots forever.
func (p *Pool) Poll(id string) (*Submission, bool) {
	return p.store.Load(id)
}

func (p *Pool) workerLoop(ctx context.Context, workerID int) {
	logger := slog.With("worker", workerID)
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-p.jobs:
			if !ok {
				return
			}
			queueDepth.Dec()
			p.processOne(ctx, logger, id)
		}
	}
}

func (p *Pool) processOne(ctx context.Context, logger *slog.Logger, id string) {
	sub, ok := p.store.Load(id)
	if !ok {
		logger.Error("claimed unknown submission", "subm_uuid", id)
		return
	}

	claimed := sub.clone()
	started := time.Now()
	claimed.Status = StatusJudging
	claimed.StartedAt = &started
	p.store.Store(id, claimed)

	outcome := p.judgeSafely(ctx, logger, claimed)

	// terminal transition happens exactly once; a terminal record is
	// never recomputed or overwritten
	if cur, ok := p.store.Load(id); ok && cur.Status == StatusFinished {
		logger.Error("submission already terminal, dropping duplicate outcome", "subm_uuid", id)
		return
	}

	finished := claimed.clone()
	finishedAt := time.Now()
	finished.Status = StatusFinished
	finished.Outcome = &outcome
	finished.FinishedAt = &finishedAt
	p.store.Store(id, finished)

	submissionsTotal.WithLabelValues(string(outcome.Verdict)).Inc()
	judgeDuration.Observe(time.Since(started).Seconds())
}

// judgeSafely guards the worker against a misbehaving judge function: a
// panic or a non-terminal result still produces a terminal outcome, so
// no submission is ever left stuck in judging.
func (p *Pool) judgeSafely(ctx context.Context, logger *slog.Logger, sub *Submission) (out judge.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("judge function panicked", "subm_uuid", sub.ID, "panic", r)
			out = judge.Outcome{Verdict: verdict.VerdictInternalError}
		}
	}()

	language, ok := p.langs.Get(sub.Language)
	if !ok {
		// validated at submit time; reaching this is an engine bug
		logger.Error("submission with unknown language reached a worker", "subm_uuid", sub.ID, "lang", sub.Language)
		return judge.Outcome{Verdict: verdict.VerdictInternalError}
	}

	req := judge.Request{
		ID:        sub.ID,
		ProblemID: sub.ProblemID,
		Language:  language,
		Code:      sub.Code,
		Limits:    sub.Limits,
		Tests:     sub.Tests,
	}

	out = p.judge(ctx, req, p.newGatherer(sub.ID))
	if !verdict.IsTerminal(out.Verdict) {
		logger.Error("judge function returned non-terminal verdict", "subm_uuid", sub.ID, "verdict", out.Verdict)
		out = judge.Outcome{Verdict: verdict.VerdictInternalError}
	}
	return out
}
