package api

// SubmitResponse is the body returned by POST /submit.
type SubmitResponse struct {
	SubmissionID string `json:"submission_id"`
}

// SubmissionResponse is the polling snapshot returned by
// GET /submissions/:id. Terminal submissions return identical snapshots
// on every poll.
type SubmissionResponse struct {
	SubmissionID    string           `json:"submission_id"`
	Status          string           `json:"status"`
	Verdict         *string          `json:"verdict,omitempty"`
	Score           *int             `json:"score,omitempty"`
	ExecutionTimeMs *int64           `json:"execution_time_ms,omitempty"`
	MemoryUsedKiB   *int64           `json:"memory_used_kib,omitempty"`
	CompileOutput   *string          `json:"compile_output,omitempty"`
	TestCaseResults []TestCaseResult `json:"test_case_results,omitempty"`
}

// TestCaseResult is one test case's outcome in a polling snapshot.
// Input, Expected and Actual are populated for sample test cases only;
// hidden cases never surface content to the team.
type TestCaseResult struct {
	Index          int     `json:"index"`
	Passed         bool    `json:"passed"`
	Classification string  `json:"classification"`
	TimeMs         int64   `json:"time_ms"`
	MemoryKiB      int64   `json:"memory_kib"`
	Input          *string `json:"input,omitempty"`
	Expected       *string `json:"expected,omitempty"`
	Actual         *string `json:"actual,omitempty"`
}

// TestRunResponse is the body returned by POST /test.
type TestRunResponse struct {
	Classification  string `json:"classification"`
	ExitCode        int64  `json:"exit_code"`
	Output          string `json:"output"`
	StderrOutput    string `json:"stderr_output"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	MemoryUsedKiB   int64  `json:"memory_used_kib"`
	CompileOutput   string `json:"compile_output,omitempty"`
}

// ErrorResponse is the uniform error body. Internal engine state is never
// exposed; a terse reason is all a caller gets.
type ErrorResponse struct {
	Error string `json:"error"`
}
