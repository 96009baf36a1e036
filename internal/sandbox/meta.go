package sandbox

import (
	"strconv"
	"strings"
)

// Isolate status values as written to the meta file.
const (
	StatusRuntimeError  = "RE" // non-zero exit code
	StatusSignalled     = "SG" // killed by a signal
	StatusTimedOut      = "TO" // cpu or wall clock limit
	StatusInternalError = "XX" // isolate itself failed
)

// Metrics is the parsed contents of an isolate meta file.
type Metrics struct {
	CpuTimeSec   float64
	WallTimeSec  float64
	MaxRssKiB    int64
	CgMemKiB     int64
	CgOomKilled  bool
	Killed       bool
	ExitCode     int64
	ExitSignal   *int64
	CswVoluntary int64
	CswForced    int64
	Status       string
	Message      string
}

func parseMetaFile(content []byte) *Metrics {
	metrics := &Metrics{}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		switch key {
		case "time":
			metrics.CpuTimeSec, _ = strconv.ParseFloat(value, 64)
		case "time-wall":
			metrics.WallTimeSec, _ = strconv.ParseFloat(value, 64)
		case "max-rss":
			metrics.MaxRssKiB, _ = strconv.ParseInt(value, 10, 64)
		case "cg-mem":
			metrics.CgMemKiB, _ = strconv.ParseInt(value, 10, 64)
		case "cg-oom-killed":
			metrics.CgOomKilled = value == "1"
		case "killed":
			metrics.Killed = value == "1"
		case "exitcode":
			metrics.ExitCode, _ = strconv.ParseInt(value, 10, 64)
		case "exitsig":
			if sig, err := strconv.ParseInt(value, 10, 64); err == nil {
				metrics.ExitSignal = &sig
			}
		case "csw-voluntary":
			metrics.CswVoluntary, _ = strconv.ParseInt(value, 10, 64)
		case "csw-forced":
			metrics.CswForced, _ = strconv.ParseInt(value, 10, 64)
		case "status":
			metrics.Status = value
		case "message":
			metrics.Message = value
		}
	}

	return metrics
}
