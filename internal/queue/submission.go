package queue

import (
	"time"

	"github.com/codeclash/judge/internal/judge"
	"github.com/codeclash/judge/internal/problems"
)

// Status is the non-terminal judging state of a submission. Terminal
// submissions additionally carry a verdict in their outcome.
type Status string

const (
	StatusPending  Status = "pending"
	StatusJudging  Status = "judging"
	StatusFinished Status = "finished"
)

// Submission is one judging job. Limits and test cases are snapshotted at
// enqueue time. The record is owned by the queue until claimed, then by
// the judging worker; once finished it is immutable and only read by
// pollers.
type Submission struct {
	ID        string
	ProblemID string
	Language  string
	Code      string

	Limits problems.Limits
	Tests  []problems.TestCase

	Status  Status
	Outcome *judge.Outcome

	CreatedAt  time.Time
	QueuedAt   time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// clone returns a shallow copy. Workers transition a submission by
// storing a fresh copy, never by mutating a record a poller may hold.
func (s *Submission) clone() *Submission {
	c := *s
	return &c
}
