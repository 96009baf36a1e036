package api

// SubmitRequest is the body of POST /submit.
type SubmitRequest struct {
	ProblemID string `json:"problem_id"`
	Language  string `json:"language"`
	Code      string `json:"code"`
}

// TestRunRequest is the body of POST /test: an ad hoc single run outside
// the scoring pipeline. Nothing is persisted.
type TestRunRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Input    string `json:"input"`
}
