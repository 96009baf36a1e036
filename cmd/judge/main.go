package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/codeclash/judge/internal/compiler"
	"github.com/codeclash/judge/internal/environment"
	"github.com/codeclash/judge/internal/executor"
	"github.com/codeclash/judge/internal/gather"
	"github.com/codeclash/judge/internal/ingress"
	"github.com/codeclash/judge/internal/judge"
	"github.com/codeclash/judge/internal/lang"
	"github.com/codeclash/judge/internal/problems"
	"github.com/codeclash/judge/internal/queue"
	"github.com/codeclash/judge/internal/runner"
	"github.com/codeclash/judge/internal/sandbox"
	"github.com/codeclash/judge/internal/server"
	"github.com/codeclash/judge/internal/verdict"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))

	cmd := &cli.Command{
		Name:  "judge",
		Usage: "contest submission judging engine",
		Commands: []*cli.Command{
			serveCommand(),
			runCommand(),
			healthCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the judging server",
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, _ *cli.Command) error {
	cfg, err := environment.ReadEnvConfig()
	if err != nil {
		return err
	}

	langs := lang.DefaultRegistry()
	if cfg.LangsTomlPath != "" {
		if err := langs.LoadTOML(cfg.LangsTomlPath); err != nil {
			return err
		}
	}

	downl, err := problems.S3DownloadFunc(cfg.AwsRegion)
	if err != nil {
		slog.Warn("test file downloads disabled", "error", err)
		cause := err
		downl = func(url, path string) error {
			return fmt.Errorf("file downloads disabled: %w", cause)
		}
	}
	files, err := problems.NewFileStore(cfg.FileStoreDir, cfg.FileStoreTmpDir, downl)
	if err != nil {
		return err
	}
	files.Start()

	registry := problems.NewRegistry()
	if cfg.ProblemsTomlPath != "" {
		if err := problems.LoadManifest(cfg.ProblemsTomlPath, registry, files); err != nil {
			return err
		}
	}

	sb := sandbox.New()
	comp := compiler.New(sb)
	run := runner.New(sb, executor.New())
	pipeline := judge.NewPipeline(comp, run, files)

	opts := []queue.Option{}
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL,
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(-1))
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Close()
		opts = append(opts, queue.WithGathererFactory(func(submissionID string) gather.Gatherer {
			return gather.NewNatsGatherer(nc, submissionID)
		}))
		slog.Info("status events enabled", "nats_url", cfg.NatsURL)
	}

	pool := queue.NewPool(cfg.Workers, cfg.QueueCapacity, langs, pipeline.Judge, opts...)
	pool.Start(ctx)

	if cfg.SqsQueueURL != "" {
		consumer, err := ingress.NewSqsConsumer(ctx, cfg.AwsRegion, cfg.SqsQueueURL, pool, registry, langs)
		if err != nil {
			return fmt.Errorf("failed to create SQS consumer: %w", err)
		}
		go consumer.Run(ctx)
		slog.Info("queue ingress enabled", "queue_url", cfg.SqsQueueURL)
	}

	adhoc := judge.NewAdHoc(comp, run)
	srv := server.New(pool, registry, langs, adhoc)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		slog.Error("queue shutdown incomplete", "error", err)
		return err
	}
	slog.Info("shutdown complete")
	return nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "judge a local source file against a problem",
		ArgsUsage: "<source-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "problems", Usage: "problem manifest TOML", Required: true},
			&cli.StringFlag{Name: "problem", Usage: "problem id", Required: true},
			&cli.StringFlag{Name: "lang", Usage: "language id", Required: true},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("expected exactly one source file argument")
	}
	code, err := os.ReadFile(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}

	langs := lang.DefaultRegistry()
	language, ok := langs.Get(cmd.String("lang"))
	if !ok {
		return fmt.Errorf("unsupported language: %s (known: %s)",
			cmd.String("lang"), strings.Join(langs.IDs(), ", "))
	}

	registry := problems.NewRegistry()
	if err := problems.LoadManifest(cmd.String("problems"), registry, nil); err != nil {
		return err
	}
	limits, tests, err := registry.Snapshot(cmd.String("problem"))
	if err != nil {
		return err
	}

	sb := sandbox.New()
	comp := compiler.New(sb)
	run := runner.New(sb, executor.New())
	pipeline := judge.NewPipeline(comp, run, nil)

	outcome := pipeline.Judge(ctx, judge.Request{
		ID:        "local",
		ProblemID: cmd.String("problem"),
		Language:  language,
		Code:      string(code),
		Limits:    limits,
		Tests:     tests,
	}, gather.TermGatherer{})

	if outcome.Verdict == verdict.VerdictInternalError {
		return errors.New("judging failed with an internal error")
	}
	return nil
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "check that the isolate sandbox is functional",
		Action: healthAction,
	}
}

func healthAction(_ context.Context, _ *cli.Command) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	cleanup := exec.Command("isolate", "--cg", "--cleanup")
	if out, err := cleanup.CombinedOutput(); err != nil {
		fmt.Printf("%s isolate cleanup: %v: %s\n", red("FAIL"), err, out)
		return errors.New("isolate is not functional")
	}
	fmt.Printf("%s isolate binary responds\n", green("OK"))

	sb := sandbox.New()
	box, err := sb.NewBox()
	if err != nil {
		fmt.Printf("%s box allocation: %v\n", red("FAIL"), err)
		return errors.New("isolate is not functional")
	}
	if err := box.Close(); err != nil {
		fmt.Printf("%s box cleanup: %v\n", red("FAIL"), err)
		return errors.New("isolate is not functional")
	}
	fmt.Printf("%s box init and cleanup\n", green("OK"))
	return nil
}
