package api

// MsgType is a message type for streamed status events
type MsgType string

// Streaming message type constants
const (
	StartJobMsg      MsgType = "job_start"
	StartCompileMsg  MsgType = "compile_start"
	FinishCompileMsg MsgType = "compile_finish"
	ReachTestMsg     MsgType = "test_reach"
	FinishTestMsg    MsgType = "test_finish"
	FinishJobMsg     MsgType = "job_finish"
)

// Output size constraints for streamed events
const (
	MaxStreamHeight = 40
	MaxStreamWidth  = 80
)

// Header is the common header for all streamed status events
type Header struct {
	SubmUuid string  `json:"subm_uuid"`
	MsgType  MsgType `json:"msg_type"`
}

// StartJob event sent when judging begins
type StartJob struct {
	Header
	StartedTime string `json:"started_time"`
}

// StartCompile event sent when compilation begins
type StartCompile struct {
	Header
}

// FinishCompile event sent when compilation ends
type FinishCompile struct {
	Header
	ExitCode    int64  `json:"exit_code"`
	Diagnostics string `json:"diagnostics,omitempty"`
}

// ReachTest event sent when a test case is about to run
type ReachTest struct {
	Header
	TestIndex int `json:"test_index"`
}

// FinishTest event sent when a test case finished
type FinishTest struct {
	Header
	TestIndex      int    `json:"test_index"`
	Passed         bool   `json:"passed"`
	Classification string `json:"classification"`
	TimeMs         int64  `json:"time_ms"`
	MemoryKiB      int64  `json:"mem_kib"`
	Stdout         string `json:"stdout,omitempty"`
}

// FinishJob event sent exactly once when the submission reaches a
// terminal state
type FinishJob struct {
	Header
	Verdict       string `json:"verdict"`
	Score         int    `json:"score"`
	TimeMs        int64  `json:"time_ms"`
	MemoryKiB     int64  `json:"mem_kib"`
	InternalError bool   `json:"internal_error"`
}
