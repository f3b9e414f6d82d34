// Package handler contains the HTTP layer.  Handlers stay thin: they
// bind and validate request shapes, call into the engine and translate
// typed domain errors onto HTTP status codes.  All business rules live
// in the engine.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

// writeError maps a domain error onto an HTTP response.  Validation
// problems become 400, missing resources 404, conflicts and illegal
// state transitions 409, and everything else a generic 500 so internal
// detail never leaks to clients.
func writeError(c echo.Context, err error) error {
	switch {
	case model.IsValidation(err):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case model.IsNotFound(err):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case model.IsConflict(err), model.IsState(err):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
