package sandbox

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Sandbox allocates numbered isolate boxes. Every box id is owned by at
// most one caller between NewBox and Box.Close.
type Sandbox struct {
	mu    sync.Mutex
	inUse mapset.Set[int]
}

func New() *Sandbox {
	return &Sandbox{inUse: mapset.NewThreadUnsafeSet[int]()}
}

// NewBox initializes the lowest free isolate box and returns a handle to it.
func (s *Sandbox) NewBox() (*Box, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := 0
	for s.inUse.Contains(id) {
		id++
	}

	if err := cleanupBox(id); err != nil {
		return nil, fmt.Errorf("failed to cleanup isolate box %d: %w", id, err)
	}

	path, err := initBox(id)
	if err != nil {
		return nil, fmt.Errorf("failed to init isolate box %d: %w", id, err)
	}

	s.inUse.Add(id)

	return &Box{id: id, path: path, sandbox: s}, nil
}

func (s *Sandbox) release(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := cleanupBox(id)
	s.inUse.Remove(id)
	return err
}

func cleanupBox(boxId int) error {
	cmd := exec.Command("isolate", "--cg", "--cleanup", "--box-id", fmt.Sprint(boxId))
	_, err := cmd.CombinedOutput()
	return err
}

// initBox initializes a new box with the given id and returns the path to the box
func initBox(boxId int) (string, error) {
	cmd := exec.Command("isolate", "--cg", "--init", "--box-id", fmt.Sprint(boxId))
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}
