package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/core/ports"
	"github.com/samirrijal/mapoverlay/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, degenerate_configuration, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "unavailable", msg)
}

// domainErrors maps sentinel errors to a status and a stable code.
// Order matters only for errors that wrap more than one sentinel.
var domainErrors = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInsufficientReferencePoints, 422, "insufficient_reference_points"},
	{domain.ErrDegenerateConfiguration, 422, "degenerate_configuration"},
	{domain.ErrNonInvertibleTransform, 422, "non_invertible_transform"},
	{domain.ErrMismatchedPointCounts, 422, "mismatched_point_counts"},
	{domain.ErrInvalidOpacity, 422, "invalid_opacity"},
	{domain.ErrInvalidRectangle, 422, "invalid_rectangle"},
	{domain.ErrInvalidCoordinate, 422, "invalid_coordinate"},
	{domain.ErrInvalidBounds, 422, "invalid_bounds"},
	{usecases.ErrPageImageTooLarge, 413, "payload_too_large"},
	{usecases.ErrUnsupportedImageType, 415, "unsupported_media_type"},
	{ports.ErrNotFound, 404, "not_found"},
}

// errFromDomain turns a service error into an API error response.
func errFromDomain(c *fiber.Ctx, err error) error {
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			return newError(c, d.status, d.code, err.Error())
		}
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}
