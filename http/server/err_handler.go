package server

import (
	"errors"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/rise-and-shine/filemanager/meta"
)

// codeRouterError marks errors raised by fiber itself (unknown route, body too large, ...).
const codeRouterError = "ROUTER_ERROR"

//nolint:gochecknoglobals // static lookup tables
var (
	statusByType = map[errx.Type]int{
		errx.T_Authentication: fiber.StatusUnauthorized,
		errx.T_Forbidden:      fiber.StatusForbidden,
		errx.T_NotFound:       fiber.StatusNotFound,
		errx.T_Validation:     fiber.StatusBadRequest,
		errx.T_Conflict:       fiber.StatusConflict,
		errx.T_Throttling:     fiber.StatusTooManyRequests,
	}

	typeByFiberStatus = map[int]errx.Type{
		fiber.StatusUnauthorized:    errx.T_Authentication,
		fiber.StatusForbidden:       errx.T_Forbidden,
		fiber.StatusNotFound:        errx.T_NotFound,
		fiber.StatusConflict:        errx.T_Conflict,
		fiber.StatusTooManyRequests: errx.T_Throttling,
	}
)

// errorSchema is the "error" member of every error response.
type errorSchema struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Cause   string            `json:"cause"`
	Trace   string            `json:"trace,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
}

// WriteErrorResponse writes err as
//
//	{"trace_id": "...", "error": {"code", "message", "cause", "trace", "fields", "details"}}
//
// with the status derived from its errx type. Trace and details are omitted when hideDetails is set.
// It returns err converted to errx.ErrorX.
func WriteErrorResponse(c *fiber.Ctx, err error, hideDetails bool) error {
	e := toErrorX(err)
	status := statusOf(e.Type())

	schema := errorSchema{
		Code:    e.Code(),
		Message: utils.StatusMessage(status),
		Cause:   e.Error(),
		Fields:  e.Fields(),
	}
	if !hideDetails {
		schema.Trace = e.Trace()
		schema.Details = e.Details()
	}

	c.Status(status)
	_ = c.JSON(fiber.Map{
		"trace_id": c.UserContext().Value(meta.TraceID),
		"error":    schema,
	})

	return e
}

// StatusCode maps err to its HTTP status code. Unknown and untyped errors are 500.
func StatusCode(err error) int {
	return statusOf(toErrorX(err).Type())
}

// customErrorHandler is the fiber-level fallback for errors no middleware answered.
// A response that already carries an error status is left untouched.
func customErrorHandler(hideDetails bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if r := c.Response(); r != nil && r.StatusCode() >= fiber.StatusBadRequest {
			return nil
		}

		_ = WriteErrorResponse(c, err, hideDetails)
		return nil
	}
}

func statusOf(t errx.Type) int {
	if status, ok := statusByType[t]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// toErrorX converts err to errx.ErrorX. A *fiber.Error keeps its meaning: known statuses map
// to their type, other 4xx become validation errors and the rest are internal.
func toErrorX(err error) errx.ErrorX {
	var fiberErr *fiber.Error
	if !errors.As(err, &fiberErr) {
		return errx.AsErrorX(err)
	}

	t, ok := typeByFiberStatus[fiberErr.Code]
	switch {
	case ok:
	case fiberErr.Code >= fiber.StatusBadRequest && fiberErr.Code < fiber.StatusInternalServerError:
		t = errx.T_Validation
	default:
		t = errx.T_Internal
	}

	return errx.AsErrorX(errx.New(
		fiberErr.Message,
		errx.WithCode(codeRouterError),
		errx.WithType(t),
		errx.WithDetails(errx.D{
			"fiber_code": fiberErr.Code,
			"fiber_msg":  fiberErr.Message,
		}),
	))
}
