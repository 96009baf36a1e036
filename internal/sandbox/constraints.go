package sandbox

import (
	"fmt"
)

type Constraints struct {
	CpuTimeLimInSec      float64
	ExtraCpuTimeLimInSec float64
	WallTimeLimInSec     float64
	MemoryLimitInKiB     int64
	MaxProcesses         int
	MaxOpenFiles         int
}

func DefaultConstraints() Constraints {
	return Constraints{
		CpuTimeLimInSec:      50.0,
		ExtraCpuTimeLimInSec: 0.5,
		WallTimeLimInSec:     60.0,
		MemoryLimitInKiB:     2048 * 1024,
		MaxProcesses:         128,
		MaxOpenFiles:         128,
	}
}

func (c *Constraints) ToArgs() []string {
	return []string{
		fmt.Sprintf("--time=%f", c.CpuTimeLimInSec),
		fmt.Sprintf("--extra-time=%f", c.ExtraCpuTimeLimInSec),
		fmt.Sprintf("--wall-time=%f", c.WallTimeLimInSec),
		fmt.Sprintf("--cg-mem=%d", c.MemoryLimitInKiB),
		fmt.Sprintf("--processes=%d", c.MaxProcesses),
		fmt.Sprintf("--open-files=%d", c.MaxOpenFiles),
	}
}
