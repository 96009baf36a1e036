package gather

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/codeclash/judge/api"
	"github.com/codeclash/judge/internal/verdict"
)

// NatsGatherer publishes judging events to a NATS subject. Clients that
// prefer push delivery over polling subscribe to judge.submissions.<uuid>.
type NatsGatherer struct {
	conn     *nats.Conn
	subject  string
	submUuid string
}

func NewNatsGatherer(conn *nats.Conn, submUuid string) *NatsGatherer {
	return &NatsGatherer{
		conn:     conn,
		subject:  "judge.submissions." + submUuid,
		submUuid: submUuid,
	}
}

var _ Gatherer = (*NatsGatherer)(nil)

func (n *NatsGatherer) header(msgType api.MsgType) api.Header {
	return api.Header{SubmUuid: n.submUuid, MsgType: msgType}
}

func (n *NatsGatherer) send(msg interface{}) {
	b, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal status event", "error", err)
		return
	}
	if err := n.conn.Publish(n.subject, b); err != nil {
		slog.Error("failed to publish status event", "subject", n.subject, "error", err)
	}
}

func (n *NatsGatherer) StartJob() {
	n.send(api.StartJob{
		Header:      n.header(api.StartJobMsg),
		StartedTime: time.Now().Format(time.RFC3339),
	})
}

func (n *NatsGatherer) StartCompile() {
	n.send(api.StartCompile{Header: n.header(api.StartCompileMsg)})
}

func (n *NatsGatherer) FinishCompile(exitCode int64, diagnostics string) {
	n.send(api.FinishCompile{
		Header:      n.header(api.FinishCompileMsg),
		ExitCode:    exitCode,
		Diagnostics: TrimToRect(diagnostics, api.MaxStreamHeight, api.MaxStreamWidth),
	})
}

func (n *NatsGatherer) ReachTest(index int) {
	n.send(api.ReachTest{
		Header:    n.header(api.ReachTestMsg),
		TestIndex: index,
	})
}

func (n *NatsGatherer) FinishTest(res verdict.TestResult) {
	msg := api.FinishTest{
		Header:         n.header(api.FinishTestMsg),
		TestIndex:      res.Index,
		Passed:         res.Passed,
		Classification: string(res.Classification),
		TimeMs:         res.CpuMillis,
		MemoryKiB:      res.MemoryKiB,
	}
	if res.Sample {
		msg.Stdout = TrimToRect(string(res.Stdout), api.MaxStreamHeight, api.MaxStreamWidth)
	}
	n.send(msg)
}

func (n *NatsGatherer) InternalError(msg string) {
	slog.Error("internal judging error", "subm_uuid", n.submUuid, "error", msg)
}

func (n *NatsGatherer) FinishJob(v verdict.Verdict, score int, timeMs int64, memKiB int64) {
	n.send(api.FinishJob{
		Header:        n.header(api.FinishJobMsg),
		Verdict:       string(v),
		Score:         score,
		TimeMs:        timeMs,
		MemoryKiB:     memKiB,
		InternalError: v == verdict.VerdictInternalError,
	})
}
