package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codeclash/judge/api"
	"github.com/codeclash/judge/internal/compiler"
	"github.com/codeclash/judge/internal/gather"
	"github.com/codeclash/judge/internal/judge"
	"github.com/codeclash/judge/internal/lang"
	"github.com/codeclash/judge/internal/problems"
	"github.com/codeclash/judge/internal/queue"
)

// AdHocRunner serves POST /test outside the scoring pipeline.
type AdHocRunner interface {
	Run(ctx context.Context, language lang.Language, code string, input []byte) (*judge.AdHocResult, error)
}

// Server is the HTTP surface the contest platform talks to: submit code,
// poll submissions, run ad hoc tests.
type Server struct {
	pool     *queue.Pool
	problems *problems.Registry
	langs    *lang.Registry
	adhoc    AdHocRunner
	engine   *gin.Engine
}

func New(pool *queue.Pool, registry *problems.Registry, langs *lang.Registry, adhoc AdHocRunner) *Server {
	s := &Server{
		pool:     pool,
		problems: registry,
		langs:    langs,
		adhoc:    adhoc,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.POST("/submit", s.handleSubmit)
	engine.GET("/submissions/:id", s.handleGetSubmission)
	engine.POST("/test", s.handleTestRun)
	engine.GET("/health", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleSubmit(c *gin.Context) {
	var req api.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Code == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "code is required"})
		return
	}
	if len(req.Code) > compiler.MaxSourceBytes {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "code exceeds size limit"})
		return
	}
	if _, ok := s.langs.Get(req.Language); !ok {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unsupported language: " + req.Language})
		return
	}

	limits, tests, err := s.problems.Snapshot(req.ProblemID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "unknown problem: " + req.ProblemID})
		return
	}
	if len(tests) == 0 {
		// scoring over zero test cases is undefined; reject instead of
		// silently awarding credit
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "problem has no test cases"})
		return
	}

	id, err := s.pool.Enqueue(&queue.Submission{
		ProblemID: req.ProblemID,
		Language:  req.Language,
		Code:      req.Code,
		Limits:    limits,
		Tests:     tests,
	})
	if err != nil {
		if errors.Is(err, queue.ErrQueueUnavailable) {
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "queue unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to enqueue submission"})
		return
	}

	c.JSON(http.StatusOK, api.SubmitResponse{SubmissionID: id})
}

func (s *Server) handleGetSubmission(c *gin.Context) {
	sub, ok := s.pool.Poll(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "unknown submission"})
		return
	}
	c.JSON(http.StatusOK, submissionView(sub))
}

func (s *Server) handleTestRun(c *gin.Context) {
	var req api.TestRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Code) > compiler.MaxSourceBytes {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "code exceeds size limit"})
		return
	}
	language, ok := s.langs.Get(req.Language)
	if !ok {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unsupported language: " + req.Language})
		return
	}

	res, err := s.adhoc.Run(c.Request.Context(), language, req.Code, []byte(req.Input))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "test run failed"})
		return
	}

	if res.CompileFailed {
		c.JSON(http.StatusOK, api.TestRunResponse{
			Classification: "compilation_error",
			CompileOutput:  gather.TrimToRect(res.CompileOutput, api.MaxStreamHeight, api.MaxStreamWidth),
		})
		return
	}

	c.JSON(http.StatusOK, api.TestRunResponse{
		Classification:  string(res.Classification),
		ExitCode:        res.ExitCode,
		Output:          string(res.Stdout),
		StderrOutput:    string(res.Stderr),
		ExecutionTimeMs: res.CpuMillis,
		MemoryUsedKiB:   res.MemoryKiB,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
