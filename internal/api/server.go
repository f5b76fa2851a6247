// Package api serves the progress ledger over HTTP for the web dashboard.
package api

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yufin/yufin/internal/progress"
	"github.com/yufin/yufin/internal/store"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// Server is the HTTP front of a Ledger.
type Server struct {
	ledger       *progress.Ledger
	events       store.EventRepo
	logger       *log.Logger
	defaultGrade string

	app *fiber.App
}

// Option configures a Server.
type Option func(*Server)

// WithEvents enables the event history route.
func WithEvents(repo store.EventRepo) Option {
	return func(s *Server) { s.events = repo }
}

// WithLogger sets the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithDefaultGrade sets the grade used when the dashboard route has to
// create a record and no ?grade= is given.
func WithDefaultGrade(grade string) Option {
	return func(s *Server) { s.defaultGrade = grade }
}

// New builds a Server with all routes registered.
func New(ledger *progress.Ledger, opts ...Option) *Server {
	s := &Server{
		ledger:       ledger,
		logger:       log.New(io.Discard, "", 0),
		defaultGrade: "6º Ano",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "yufin",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		// Params and bodies outlive the handler inside the ledger's event log.
		Immutable: true,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	s.app.Use(requestLogger(s.logger))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return success(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})

	p := s.app.Group("/api/progress/:userId")
	p.Get("", s.getProgress)
	p.Post("", s.initProgress)
	p.Get("/dashboard", s.getDashboard)
	p.Post("/lessons", s.completeLesson)
	p.Put("/module", s.setModule)
	p.Post("/reset", s.reset)
	p.Get("/stats", s.getStats)
	p.Get("/events", s.getEvents)
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Printf("listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) getProgress(c *fiber.Ctx) error {
	rec := s.ledger.Get(c.UserContext(), c.Params("userId"))
	if rec == nil {
		return notFound(c)
	}
	return success(c, fiber.StatusOK, rec)
}

func (s *Server) initProgress(c *fiber.Ctx) error {
	var body struct {
		GradeID string `json:"gradeId"`
	}
	if err := decodeBody(initSchema, c.Body(), &body); err != nil {
		return s.badPayload(c, err)
	}

	rec, created := s.ledger.InitializeIfAbsent(c.UserContext(), c.Params("userId"), body.GradeID)
	if !created {
		return fail(c, fiber.StatusConflict, "progress already initialized")
	}
	return success(c, fiber.StatusCreated, rec)
}

func (s *Server) getDashboard(c *fiber.Ctx) error {
	grade := c.Query("grade", s.defaultGrade)
	d := s.ledger.LoadDashboard(c.UserContext(), c.Params("userId"), grade)
	return success(c, fiber.StatusOK, d)
}

func (s *Server) completeLesson(c *fiber.Ctx) error {
	var res progress.LessonResult
	if err := decodeBody(lessonSchema, c.Body(), &res); err != nil {
		return s.badPayload(c, err)
	}

	rec := s.ledger.CompleteLesson(c.UserContext(), c.Params("userId"), res)
	if rec == nil {
		return notFound(c)
	}
	return success(c, fiber.StatusOK, rec)
}

func (s *Server) setModule(c *fiber.Ctx) error {
	var body struct {
		Module int `json:"module"`
	}
	if err := decodeBody(moduleSchema, c.Body(), &body); err != nil {
		return s.badPayload(c, err)
	}

	rec := s.ledger.SetCurrentModule(c.UserContext(), c.Params("userId"), body.Module)
	if rec == nil {
		return notFound(c)
	}
	return success(c, fiber.StatusOK, rec)
}

func (s *Server) reset(c *fiber.Ctx) error {
	var body struct {
		GradeID string `json:"gradeId"`
		Confirm bool   `json:"confirm"`
	}
	if err := decodeBody(resetSchema, c.Body(), &body); err != nil {
		return s.badPayload(c, err)
	}
	if !body.Confirm {
		return fail(c, fiber.StatusBadRequest, "reset requires confirm: true")
	}

	rec := s.ledger.Reset(c.UserContext(), c.Params("userId"), body.GradeID)
	return success(c, fiber.StatusOK, rec)
}

func (s *Server) getStats(c *fiber.Ctx) error {
	stats := s.ledger.Stats(c.UserContext(), c.Params("userId"))
	if stats == nil {
		return notFound(c)
	}
	return success(c, fiber.StatusOK, stats)
}

func (s *Server) getEvents(c *fiber.Ctx) error {
	if s.events == nil {
		return fail(c, fiber.StatusNotFound, "event log not available for this store")
	}

	limit := c.QueryInt("limit", defaultEventLimit)
	if limit < 1 || limit > maxEventLimit {
		return fail(c, fiber.StatusBadRequest, "limit must be between 1 and 500")
	}

	events, err := s.events.QueryLedgerEvents(c.UserContext(), c.Params("userId"), store.QueryOpts{Limit: limit})
	if err != nil {
		s.logger.Printf("warning: query events: %v", err)
		return fail(c, fiber.StatusInternalServerError, "could not read event log")
	}
	if events == nil {
		events = []store.LedgerEventRecord{}
	}
	return success(c, fiber.StatusOK, events)
}

func (s *Server) badPayload(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrInvalidPayload) {
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	s.logger.Printf("warning: %v", err)
	return fail(c, fiber.StatusInternalServerError, "could not validate request")
}
