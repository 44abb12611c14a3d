// Package api exposes the engine boundary over HTTP for the form layer:
// load a report's records, run calculations, remove records, reset, and
// read current results. It is glue only; every invariant lives in the
// engine. No authentication: access control is the deployment's concern.
package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ghgledger/ghgledger/internal/engine"
	"github.com/ghgledger/ghgledger/internal/store"
)

// ReportStore is the report-document side of the storage collaborator.
type ReportStore interface {
	CreateReport(ctx context.Context, title, company string, year int) (store.Report, error)
	GetReport(ctx context.Context, id uuid.UUID) (store.Report, error)
	ListReports(ctx context.Context) ([]store.Report, error)
}

// Server hosts the HTTP API. One engine session is held per report; a
// report's session is the single writer for its in-memory ledger.
type Server struct {
	app     *fiber.App
	repo    engine.Repository
	reports ReportStore
	logger  zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*engine.Session
}

// New builds the server and mounts the routes.
func New(repo engine.Repository, reports ReportStore, logger zerolog.Logger) *Server {
	s := &Server{
		app:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		repo:     repo,
		reports:  reports,
		logger:   logger,
		sessions: make(map[string]*engine.Session),
	}

	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	v1 := s.app.Group("/api/v1")
	v1.Get("/health", s.handleHealth)
	v1.Get("/reports", s.handleListReports)
	v1.Post("/reports", s.handleCreateReport)

	rep := v1.Group("/reports/:reportId")
	rep.Get("/records", s.handleListRecords)
	rep.Get("/results", s.handleResults)
	rep.Post("/calculate", s.handleCalculate)
	rep.Post("/records/:recordId/edit", s.handleBeginEdit)
	rep.Post("/edit/cancel", s.handleCancelEdit)
	rep.Delete("/records/:recordId", s.handleRemoveRecord)
	rep.Post("/reset", s.handleReset)

	return s
}

// Listen serves until the context is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Listen(addr) }()

	select {
	case <-ctx.Done():
		return s.app.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Test dispatches a request against the in-process router.
func (s *Server) Test(req *http.Request, msTimeout ...int) (*http.Response, error) {
	return s.app.Test(req, msTimeout...)
}

// session returns the engine session for a report, loading persisted
// records on first use. The session is cached only after a successful
// Load: a failed load surfaces as an error and the next request retries
// from scratch instead of serving an empty ledger. Holding the lock
// across Load also keeps a concurrent first request from touching a
// half-initialized session.
func (s *Server) session(ctx context.Context, reportID string) (*engine.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[reportID]; ok {
		return sess, nil
	}

	sess := engine.NewSession(reportID, s.repo)
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}
	s.sessions[reportID] = sess
	return sess, nil
}
