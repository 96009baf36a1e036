package runner

import (
	"bytes"
	"fmt"

	"github.com/codeclash/judge/internal/compiler"
	"github.com/codeclash/judge/internal/executor"
	"github.com/codeclash/judge/internal/problems"
)

// RunOnce executes artifact against a single input under limits, outside
// the scoring pipeline. Used by ad hoc test runs.
func (r *Runner) RunOnce(artifact *compiler.Artifact, input []byte, limits problems.Limits) (*executor.Result, error) {
	box, err := r.sb.NewBox()
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox box: %w", err)
	}
	defer box.Close()

	if err := box.AddFile(artifact.Filename, artifact.Content); err != nil {
		return nil, fmt.Errorf("failed to add executable to box: %w", err)
	}

	return r.exec.Run(box, artifact.ExecCmd, bytes.NewReader(input),
		limits.TimeLimitMs, limits.MemoryLimitMiB)
}
