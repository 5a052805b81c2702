package webserver

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"invoicedash/internal/backend"
	"invoicedash/internal/dashboard"
)

// jsonSink maps one action invocation onto one JSON response body. The
// loading phase has no visible counterpart over HTTP; only the settled
// outcome is written.
type jsonSink struct {
	result *backend.Result
	err    error
}

func (s *jsonSink) Loading(string)              {}
func (s *jsonSink) Success(res *backend.Result) { s.result = res }
func (s *jsonSink) Failure(err error)           { s.err = err }

func (s *Server) HealthAction(c *fiber.Ctx) error {
	return s.runAction(c, s.health, "")
}

func (s *Server) OpenItemsAction(c *fiber.Ctx) error {
	return s.runAction(c, s.openItems, c.Query("organization_id"))
}

func (s *Server) ConsoleAction(c *fiber.Ctx) error {
	return s.runAction(c, s.console, c.Query("path"))
}

func (s *Server) runAction(c *fiber.Ctx, a *dashboard.Action, input string) error {
	sink := &jsonSink{}
	if !a.Run(c.Context(), input, sink) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"state":   "loading",
			"message": "action already in flight",
		})
	}

	if sink.err != nil {
		status := fiber.StatusBadGateway
		var ve *dashboard.ValidationError
		if errors.As(sink.err, &ve) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"state":   "error",
			"message": sink.err.Error(),
		})
	}

	body := fiber.Map{
		"state":      "success",
		"structured": sink.result.Structured,
	}
	if sink.result.Structured {
		body["data"] = sink.result.JSON
	} else {
		body["text"] = sink.result.Text
	}
	return c.JSON(body)
}

func (s *Server) History(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "history is disabled",
		})
	}

	records, err := s.store.QueryHistory(c.Query("action"), c.QueryInt("limit"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	items := make([]fiber.Map, 0, len(records))
	for _, r := range records {
		items = append(items, fiber.Map{
			"id":         r.ID,
			"action":     r.Action,
			"path":       r.Path,
			"statusCode": r.StatusCode,
			"outcome":    r.Outcome,
			"detail":     r.Detail,
			"durationMs": r.DurationMS,
			"createdAt":  r.CreatedAt,
		})
	}
	return c.JSON(items)
}
