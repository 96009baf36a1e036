package compiler

import (
	"fmt"
	"io"
	"log"

	"github.com/codeclash/judge/internal/lang"
	"github.com/codeclash/judge/internal/sandbox"
)

// MaxSourceBytes caps accepted submission size. Oversized submissions are
// rejected before any sandbox resource is spent.
const MaxSourceBytes = 256 * 1024

// compileWallTimeSec bounds the compile step itself, independent of the
// problem's run-time limit, so a pathological compile cannot stall a
// worker indefinitely.
const compileWallTimeSec = 30.0

const maxDiagnosticBytes = 32 * 1024

// Artifact is a built executable the executor can invoke directly. For
// interpreted languages the artifact is the source itself.
type Artifact struct {
	Content  []byte
	Filename string
	ExecCmd  string
}

// Failure carries the captured compiler diagnostics of a failed build.
// It short-circuits the whole submission to a compilation error.
type Failure struct {
	Diagnostics string
	ExitCode    int64
}

var ErrSourceTooLarge = fmt.Errorf("source code exceeds %d bytes", MaxSourceBytes)

// Compiler builds submissions inside a scoped sandbox box that is
// destroyed on every exit path.
type Compiler struct {
	sb *sandbox.Sandbox
}

func New(sb *sandbox.Sandbox) *Compiler {
	return &Compiler{sb: sb}
}

// Build compiles sourceCode for language. Exactly one of artifact and
// failure is non-nil on a nil error; a non-nil error means the build
// could not be attempted at all.
func (c *Compiler) Build(language lang.Language, sourceCode string) (*Artifact, *Failure, error) {
	if len(sourceCode) > MaxSourceBytes {
		return nil, nil, ErrSourceTooLarge
	}

	if language.CompileCmd == nil {
		return &Artifact{
			Content:  []byte(sourceCode),
			Filename: language.CodeFilename,
			ExecCmd:  language.ExecCmd,
		}, nil, nil
	}

	box, err := c.sb.NewBox()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sandbox box: %w", err)
	}
	defer func() {
		if err := box.Close(); err != nil {
			// the box is erased again on the next allocation of the
			// same id, so a failed close is not fatal
			log.Printf("failed to close sandbox box: %v", err)
		}
	}()

	if err := box.AddFile(language.CodeFilename, []byte(sourceCode)); err != nil {
		return nil, nil, fmt.Errorf("failed to add source code to box: %w", err)
	}

	constraints := sandbox.DefaultConstraints()
	constraints.WallTimeLimInSec = compileWallTimeSec
	constraints.CpuTimeLimInSec = compileWallTimeSec

	process, err := box.Run(*language.CompileCmd, nil, &constraints)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to run compilation: %w", err)
	}

	stdout, err := readDiagnostics(process.Stdout())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read compiler stdout: %w", err)
	}
	stderr, err := readDiagnostics(process.Stderr())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read compiler stderr: %w", err)
	}

	metrics, err := process.Wait()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to collect compilation metrics: %w", err)
	}

	if metrics.ExitCode != 0 || !box.HasFile(*language.CompiledFilename) {
		diagnostics := string(stderr)
		if diagnostics == "" {
			diagnostics = string(stdout)
		}
		if metrics.Status == sandbox.StatusTimedOut {
			diagnostics = "compilation timed out"
		}
		return nil, &Failure{Diagnostics: diagnostics, ExitCode: metrics.ExitCode}, nil
	}

	compiled, err := box.GetFile(*language.CompiledFilename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve compiled executable: %w", err)
	}

	return &Artifact{
		Content:  compiled,
		Filename: *language.CompiledFilename,
		ExecCmd:  language.ExecCmd,
	}, nil, nil
}

// readDiagnostics keeps the first maxDiagnosticBytes and drains the
// rest so the compiler never blocks on a full pipe.
func readDiagnostics(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDiagnosticBytes))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) == maxDiagnosticBytes {
		if _, err := io.Copy(io.Discard, r); err != nil {
			return nil, err
		}
	}
	return data, nil
}
