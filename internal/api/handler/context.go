package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// bindAndValidate decodes the request body into req and runs the struct
// validator. Malformed bodies are reported as validation errors.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	return c.Validate(req)
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id must be a positive integer", "id")
	}
	return id, nil
}
