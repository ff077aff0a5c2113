package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/goliatone/go-blog/internal/logging"
)

const (
	HeaderRequestID = "X-Request-ID"
	localRequestID  = "request_id"
)

// requestID tags every request with an id, reusing the client's when sent,
// and carries it in the user context for loggers.
func (s *Server) requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localRequestID, id)
		c.Set(HeaderRequestID, id)
		c.SetUserContext(logging.ContextWithFields(c.UserContext(), map[string]any{localRequestID: id}))
		return c.Next()
	}
}

// requestLogger logs one line per request once the handler chain returns.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _ = mapError(err)
		}
		logger := s.logger.WithContext(c.UserContext())
		args := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start).String(),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("http.request", append(args, "error", err)...)
		} else {
			logger.Info("http.request", args...)
		}
		return err
	}
}

// timeout bounds the user context of each request.
func (s *Server) timeout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.requestTimeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), s.requestTimeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status, payload := mapError(err)
	if id, ok := c.Locals(localRequestID).(string); ok {
		payload.RequestID = id
	}
	return c.Status(status).JSON(payload)
}
