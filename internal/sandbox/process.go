package sandbox

import (
	"errors"
	"io"
	"os"
	"os/exec"
)

// Process is a started isolate invocation. Stdout and Stderr must be
// drained before Wait, otherwise the child can block on a full pipe.
type Process struct {
	cmd          *exec.Cmd
	stdout       io.ReadCloser
	stderr       io.ReadCloser
	metaFilePath string
}

func newProcess(isolateArgs []string, stdin io.Reader, metaFilePath string) *Process {
	cmd := exec.Command("isolate", isolateArgs...)
	cmd.Stdin = stdin
	return &Process{cmd: cmd, metaFilePath: metaFilePath}
}

func (p *Process) start() error {
	var err error
	p.stdout, err = p.cmd.StdoutPipe()
	if err != nil {
		return err
	}
	p.stderr, err = p.cmd.StderrPipe()
	if err != nil {
		return err
	}
	return p.cmd.Start()
}

func (p *Process) Stdout() io.Reader {
	return p.stdout
}

func (p *Process) Stderr() io.Reader {
	return p.stderr
}

// Wait blocks until the isolate process exits and parses its meta file.
// A non-zero exit of isolate itself is expected whenever the boxed
// program fails; the meta file carries the actual outcome.
func (p *Process) Wait() (*Metrics, error) {
	err := p.cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
	}

	defer os.Remove(p.metaFilePath)
	metaBytes, err := os.ReadFile(p.metaFilePath)
	if err != nil {
		return nil, err
	}

	return parseMetaFile(metaBytes), nil
}
