package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/viant/contentflow/model"
)

// StatusOf maps engine errors onto HTTP status codes.
func StatusOf(err error) int {
	var fiberErr *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, model.ErrLinkInvalid), errors.Is(err, model.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrInvalidTransition), errors.Is(err, model.ErrTerminalState), errors.Is(err, model.ErrConcurrencyConflict):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// errorHandler renders every error as {"status":"error","message":...}.
// Review link failures share one message so callers cannot tell an
// expired link from an unknown one.
func errorHandler(logger *logrus.Entry) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := StatusOf(err)
		message := err.Error()
		switch {
		case errors.Is(err, model.ErrLinkInvalid):
			message = model.ErrLinkInvalid.Error()
		case code == fiber.StatusInternalServerError:
			logger.WithError(err).WithFields(logrus.Fields{"method": c.Method(), "path": c.Path()}).Error("request failed")
			message = "internal server error"
		}
		return c.Status(code).JSON(fiber.Map{"status": "error", "message": message})
	}
}
