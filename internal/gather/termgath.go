package gather

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/codeclash/judge/internal/verdict"
)

// TermGatherer prints judging progress to the terminal. Used by the
// `judge run` command for local ad hoc runs.
type TermGatherer struct{}

var _ Gatherer = TermGatherer{}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func (TermGatherer) StartJob() {
	fmt.Println(faint("judging started"))
}

func (TermGatherer) StartCompile() {
	fmt.Println(faint("compiling..."))
}

func (TermGatherer) FinishCompile(exitCode int64, diagnostics string) {
	if exitCode == 0 {
		fmt.Println(faint("compiled"))
		return
	}
	fmt.Printf("%s (exit %d)\n", red("compilation failed"), exitCode)
	if diagnostics != "" {
		fmt.Println(diagnostics)
	}
}

func (TermGatherer) ReachTest(index int) {
	fmt.Printf("test %d: ", index)
}

func (TermGatherer) FinishTest(res verdict.TestResult) {
	status := red("fail")
	if res.Passed {
		status = green("pass")
	}
	fmt.Printf("%s [%s] %d ms, %d KiB\n",
		status, res.Classification, res.CpuMillis, res.MemoryKiB)
}

func (TermGatherer) InternalError(msg string) {
	fmt.Printf("%s: %s\n", red("internal error"), msg)
}

func (TermGatherer) FinishJob(v verdict.Verdict, score int, timeMs int64, memKiB int64) {
	c := red
	switch v {
	case verdict.VerdictAccepted:
		c = green
	case verdict.VerdictWrongAnswer:
		c = yellow
	}
	fmt.Printf("verdict: %s, score: %d (%d ms, %d KiB)\n", c(string(v)), score, timeMs, memKiB)
}
