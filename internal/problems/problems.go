package problems

import (
	"fmt"
	"sync"
)

// Limits bounds every test case run of a problem. They are copied onto a
// submission at enqueue time so later problem edits cannot change
// in-flight judging.
type Limits struct {
	TimeLimitMs    int
	MemoryLimitMiB int
	MaxPoints      int
}

const (
	MinTimeLimitMs    = 100
	MaxTimeLimitMs    = 30000
	MinMemoryLimitMiB = 16
	MaxMemoryLimitMiB = 2048
)

func (l Limits) Validate() error {
	if l.TimeLimitMs < MinTimeLimitMs || l.TimeLimitMs > MaxTimeLimitMs {
		return fmt.Errorf("time limit %d ms outside [%d, %d]",
			l.TimeLimitMs, MinTimeLimitMs, MaxTimeLimitMs)
	}
	if l.MemoryLimitMiB < MinMemoryLimitMiB || l.MemoryLimitMiB > MaxMemoryLimitMiB {
		return fmt.Errorf("memory limit %d MiB outside [%d, %d]",
			l.MemoryLimitMiB, MinMemoryLimitMiB, MaxMemoryLimitMiB)
	}
	if l.MaxPoints < 1 {
		return fmt.Errorf("max points %d must be at least 1", l.MaxPoints)
	}
	return nil
}

// TestCase is a single ordered test of a problem. Content is carried
// inline or referenced by sha256 key into the file store; referenced
// blobs are resolved once at judging start.
type TestCase struct {
	Index  int
	Sample bool

	Input     []byte
	InputKey  string
	Answer    []byte
	AnswerKey string
}

type Problem struct {
	ID     string
	Limits Limits
	Tests  []TestCase
}

// Registry is an in-memory read-only view of problems available for
// judging. The platform upstream owns the durable problem storage; the
// engine only needs a consistent snapshot per submission.
type Registry struct {
	mu       sync.RWMutex
	problems map[string]*Problem
}

func NewRegistry() *Registry {
	return &Registry{problems: make(map[string]*Problem)}
}

func (r *Registry) Put(p *Problem) error {
	if err := p.Limits.Validate(); err != nil {
		return fmt.Errorf("problem %s: %w", p.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.problems[p.ID] = p
	return nil
}

// Snapshot returns a deep copy of the problem's limits and test cases in
// fixed index order. The copy is owned by the caller.
func (r *Registry) Snapshot(id string) (Limits, []TestCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.problems[id]
	if !ok {
		return Limits{}, nil, fmt.Errorf("unknown problem: %s", id)
	}

	tests := make([]TestCase, len(p.Tests))
	copy(tests, p.Tests)
	return p.Limits, tests, nil
}
