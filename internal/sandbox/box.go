package sandbox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Box is a single initialized isolate box. It is owned by exactly one
// submission between NewBox and Close; Close erases all of its contents.
type Box struct {
	id      int
	path    string
	sandbox *Sandbox
}

func (box *Box) Id() int {
	return box.id
}

func (box *Box) Path() string {
	return box.path
}

func (box *Box) Close() error {
	return box.sandbox.release(box.id)
}

// Run starts command inside the box under the given constraints. The
// returned process has been started; the caller reads its output and
// calls Wait to collect metrics.
func (box *Box) Run(command string, stdin io.Reader, constraints *Constraints) (*Process, error) {
	if constraints == nil {
		c := DefaultConstraints()
		constraints = &c
	}

	metaFilePath, err := newMetaFilePath()
	if err != nil {
		return nil, fmt.Errorf("failed to create meta file: %w", err)
	}

	args := []string{
		"--cg",
		fmt.Sprintf("--box-id=%d", box.id),
		"--env=HOME=/box",
		"--meta=" + metaFilePath,
	}
	args = append(args, constraints.ToArgs()...)
	args = append(args, "--run", "--", "/usr/bin/env")
	args = append(args, strings.Fields(command)...)

	process := newProcess(args, stdin, metaFilePath)
	if err := process.start(); err != nil {
		return nil, fmt.Errorf("failed to start isolate: %w", err)
	}

	return process, nil
}

func newMetaFilePath() (string, error) {
	file, err := os.CreateTemp("", "isolate.*.txt")
	if err != nil {
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (box *Box) AddFile(path string, content []byte) error {
	path = filepath.Join(box.path, "box", path)
	return os.WriteFile(path, content, 0644)
}

func (box *Box) HasFile(path string) bool {
	path = filepath.Join(box.path, "box", path)
	_, err := os.Stat(path)
	return err == nil
}

func (box *Box) GetFile(path string) ([]byte, error) {
	path = filepath.Join(box.path, "box", path)
	return os.ReadFile(path)
}
