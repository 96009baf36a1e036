package problems

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

type manifestTest struct {
	Index  int    `toml:"index"`
	Sample bool   `toml:"sample"`
	Input  string `toml:"input"`
	Answer string `toml:"answer"`

	InputKey  string `toml:"input_key"`
	InputURL  string `toml:"input_url"`
	AnswerKey string `toml:"answer_key"`
	AnswerURL string `toml:"answer_url"`
}

type manifestProblem struct {
	ID             string         `toml:"id"`
	TimeLimitMs    int            `toml:"time_limit_ms"`
	MemoryLimitMiB int            `toml:"memory_limit_mib"`
	MaxPoints      int            `toml:"max_points"`
	Tests          []manifestTest `toml:"tests"`
}

type manifest struct {
	Problems []manifestProblem `toml:"problems"`
}

// Scheduler accepts sha256-keyed blob downloads. Satisfied by FileStore.
type Scheduler interface {
	Schedule(key string, url string) error
}

// LoadManifest reads a TOML problem manifest into the registry. Test
// content is either inline or referenced by sha256 key plus download
// URL; referenced blobs are scheduled on fs for background download.
func LoadManifest(path string, r *Registry, fs Scheduler) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read problem manifest: %w", err)
	}

	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse problem manifest: %w", err)
	}

	for _, mp := range m.Problems {
		p := &Problem{
			ID: mp.ID,
			Limits: Limits{
				TimeLimitMs:    mp.TimeLimitMs,
				MemoryLimitMiB: mp.MemoryLimitMiB,
				MaxPoints:      mp.MaxPoints,
			},
		}
		for _, mt := range mp.Tests {
			tc := TestCase{
				Index:     mt.Index,
				Sample:    mt.Sample,
				InputKey:  mt.InputKey,
				AnswerKey: mt.AnswerKey,
			}
			if mt.InputKey == "" {
				tc.Input = []byte(mt.Input)
			} else if fs != nil {
				if err := fs.Schedule(mt.InputKey, mt.InputURL); err != nil {
					return fmt.Errorf("problem %s test %d: %w", mp.ID, mt.Index, err)
				}
			}
			if mt.AnswerKey == "" {
				tc.Answer = []byte(mt.Answer)
			} else if fs != nil {
				if err := fs.Schedule(mt.AnswerKey, mt.AnswerURL); err != nil {
					return fmt.Errorf("problem %s test %d: %w", mp.ID, mt.Index, err)
				}
			}
			p.Tests = append(p.Tests, tc)
		}
		sort.Slice(p.Tests, func(i, j int) bool {
			return p.Tests[i].Index < p.Tests[j].Index
		})
		if err := r.Put(p); err != nil {
			return err
		}
	}
	return nil
}
