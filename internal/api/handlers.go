package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"github.com/ghgledger/ghgledger/internal/engine"
	"github.com/ghgledger/ghgledger/internal/logging"
	"github.com/ghgledger/ghgledger/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(errorResponse{Error: msg})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type createReportRequest struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Year    int    `json:"year"`
}

func (s *Server) handleCreateReport(c *fiber.Ctx) error {
	var req createReportRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return jsonError(c, fiber.StatusBadRequest, "title is required")
	}

	rep, err := s.reports.CreateReport(c.Context(), req.Title, req.Company, req.Year)
	if err != nil {
		s.logger.Error().Err(err).Msg("create report failed")
		return jsonError(c, fiber.StatusInternalServerError, "could not create report")
	}
	return c.Status(fiber.StatusCreated).JSON(rep)
}

func (s *Server) handleListReports(c *fiber.Ctx) error {
	reps, err := s.reports.ListReports(c.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list reports failed")
		return jsonError(c, fiber.StatusInternalServerError, "could not list reports")
	}
	return c.JSON(reps)
}

// reportSession resolves the report ID path parameter and its session.
func (s *Server) reportSession(c *fiber.Ctx) (*engine.Session, error) {
	// Copy the route param: it is used as a session-map key that outlives
	// the request, but fiber's zero-allocation strings do not.
	reportID := utils.CopyString(c.Params("reportId"))
	if s.reports != nil {
		id, err := uuid.Parse(reportID)
		if err != nil {
			return nil, jsonError(c, fiber.StatusBadRequest, "invalid report id")
		}
		if _, err := s.reports.GetReport(c.Context(), id); err != nil {
			if errors.Is(err, store.ErrReportNotFound) {
				return nil, jsonError(c, fiber.StatusNotFound, "report not found")
			}
			s.logger.Error().Err(err).Msg("report lookup failed")
			return nil, jsonError(c, fiber.StatusInternalServerError, "could not load report")
		}
	}

	ctx := logging.WithContext(c.Context(), s.logger)
	sess, err := s.session(ctx, reportID)
	if err != nil {
		s.logger.Error().Err(err).Str("report_id", reportID).Msg("session load failed")
		return nil, jsonError(c, fiber.StatusInternalServerError, "could not load calculation records")
	}
	return sess, nil
}

type recordsResponse struct {
	Logs    engine.Logs    `json:"logs"`
	Results engine.Results `json:"results"`
}

func (s *Server) handleListRecords(c *fiber.Ctx) error {
	sess, err := s.reportSession(c)
	if sess == nil {
		return err
	}
	return c.JSON(recordsResponse{Logs: sess.Logs(), Results: sess.Results()})
}

func (s *Server) handleResults(c *fiber.Ctx) error {
	sess, err := s.reportSession(c)
	if sess == nil {
		return err
	}
	return c.JSON(sess.Results())
}

type calculateRequest struct {
	Scope engine.Scope `json:"scope"`
	Input engine.Input `json:"input"`
}

type calculateResponse struct {
	Calculated bool           `json:"calculated"`
	Record     *engine.Record `json:"record,omitempty"`
	Results    engine.Results `json:"results"`
}

// handleCalculate runs one scope's calculation against the submitted input
// and confirms it into the ledger: an add when idle, a replace when the
// session is editing. "Nothing to calculate" is a 200 with calculated:
// false, not an error.
func (s *Server) handleCalculate(c *fiber.Ctx) error {
	sess, err := s.reportSession(c)
	if sess == nil {
		return err
	}

	var req calculateRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	sess.UpdateInput(func(in *engine.Input) { *in = req.Input })

	ctx := logging.WithContext(c.Context(), s.logger)
	rec, ok, err := sess.Calculate(ctx, req.Scope)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownScope) {
			return jsonError(c, fiber.StatusBadRequest, "unknown scope")
		}
		s.logger.Error().Err(err).Msg("calculation save failed")
		return jsonError(c, fiber.StatusBadGateway, "could not save calculation record")
	}

	resp := calculateResponse{Calculated: ok, Results: sess.Results()}
	if ok {
		resp.Record = &rec
	}
	return c.JSON(resp)
}

func (s *Server) handleBeginEdit(c *fiber.Ctx) error {
	sess, err := s.reportSession(c)
	if sess == nil {
		return err
	}

	// Copy the route param: fiber's zero-allocation strings are only
	// valid for the lifetime of the request, and BeginEdit retains it.
	if err := sess.BeginEdit(utils.CopyString(c.Params("recordId"))); err != nil {
		if errors.Is(err, engine.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "record not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "could not begin edit")
	}
	return c.JSON(fiber.Map{"editing": sess.EditingID(), "input": sess.Input()})
}

func (s *Server) handleCancelEdit(c *fiber.Ctx) error {
	sess, err := s.reportSession(c)
	if sess == nil {
		return err
	}

	if err := sess.CancelEdit(); err != nil {
		return jsonError(c, fiber.StatusConflict, "not editing")
	}
	return c.JSON(fiber.Map{"editing": ""})
}

func (s *Server) handleRemoveRecord(c *fiber.Ctx) error {
	sess, err := s.reportSession(c)
	if sess == nil {
		return err
	}

	ctx := logging.WithContext(c.Context(), s.logger)
	found, err := sess.RemoveRecord(ctx, c.Params("recordId"))
	if err != nil {
		s.logger.Error().Err(err).Msg("record deletion failed")
		return jsonError(c, fiber.StatusBadGateway, "could not delete calculation record")
	}
	if !found {
		return jsonError(c, fiber.StatusNotFound, "record not found")
	}
	return c.JSON(recordsResponse{Logs: sess.Logs(), Results: sess.Results()})
}

type resetRequest struct {
	Scope string `json:"scope"` // scope1 | scope2 | scope3 | all
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	sess, err := s.reportSession(c)
	if sess == nil {
		return err
	}

	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	ctx := logging.WithContext(c.Context(), s.logger)
	switch req.Scope {
	case "all", "":
		err = sess.ResetAll(ctx)
	default:
		err = sess.ResetScope(ctx, engine.Scope(req.Scope))
	}
	if err != nil {
		if errors.Is(err, engine.ErrUnknownScope) {
			return jsonError(c, fiber.StatusBadRequest, "unknown scope")
		}
		s.logger.Error().Err(err).Msg("reset failed")
		return jsonError(c, fiber.StatusBadGateway, "could not reset")
	}
	return c.JSON(recordsResponse{Logs: sess.Logs(), Results: sess.Results()})
}
