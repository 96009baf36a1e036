package server

import (
	"github.com/codeclash/judge/api"
	"github.com/codeclash/judge/internal/gather"
	"github.com/codeclash/judge/internal/problems"
	"github.com/codeclash/judge/internal/queue"
)

// submissionView maps a submission snapshot onto the polling response.
// Sample test cases expose their input, expected answer and actual
// output (trimmed to a bounded rectangle); hidden cases expose only
// pass/fail and resource usage.
func submissionView(sub *queue.Submission) api.SubmissionResponse {
	resp := api.SubmissionResponse{
		SubmissionID: sub.ID,
		Status:       string(sub.Status),
	}
	if sub.Outcome == nil {
		return resp
	}

	out := sub.Outcome
	v := string(out.Verdict)
	resp.Verdict = &v
	resp.Score = &out.Score
	resp.ExecutionTimeMs = &out.TimeMs
	resp.MemoryUsedKiB = &out.MemoryKiB
	if out.CompileOutput != "" {
		co := gather.TrimToRect(out.CompileOutput, api.MaxStreamHeight, api.MaxStreamWidth)
		resp.CompileOutput = &co
	}

	byIndex := make(map[int]problems.TestCase, len(sub.Tests))
	for _, tc := range sub.Tests {
		byIndex[tc.Index] = tc
	}

	for _, r := range out.TestResults {
		tcr := api.TestCaseResult{
			Index:          r.Index,
			Passed:         r.Passed,
			Classification: string(r.Classification),
			TimeMs:         r.CpuMillis,
			MemoryKiB:      r.MemoryKiB,
		}
		if r.Sample {
			if tc, ok := byIndex[r.Index]; ok {
				input := gather.TrimToRect(string(tc.Input), api.MaxStreamHeight, api.MaxStreamWidth)
				expected := gather.TrimToRect(string(tc.Answer), api.MaxStreamHeight, api.MaxStreamWidth)
				tcr.Input = &input
				tcr.Expected = &expected
			}
			actual := gather.TrimToRect(string(r.Stdout), api.MaxStreamHeight, api.MaxStreamWidth)
			tcr.Actual = &actual
		}
		resp.TestCaseResults = append(resp.TestCaseResults, tcr)
	}
	return resp
}
