// Package forward adapts use cases to fiber handlers: it decodes the request into the
// use case input, validates it, executes the use case and writes the JSON response.
package forward

import (
	"fmt"
	"reflect"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filemanager/mask"
	"github.com/rise-and-shine/filemanager/meta"
	"github.com/rise-and-shine/filemanager/observability/logger"
	"github.com/rise-and-shine/filemanager/ucdef"
	"github.com/rise-and-shine/filemanager/val"
)

const maxLogAllowedSize = 8 << 10 // 8KB

// StatusCoder lets a response choose its own success status code.
type StatusCoder interface {
	StatusCode() int
}

// ToUserAction forwards a request to a use case that returns a response.
// Path params, query params and the body (JSON or multipart form) are decoded into I,
// which must be a pointer to a struct.
func ToUserAction[I, O any](uc ucdef.UserAction[I, O]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := newRequest[I]()
		if err != nil {
			return errx.Wrap(err)
		}

		if err = decodePath(c, req); err != nil {
			return errx.Wrap(err)
		}
		if err = decodeQuery(c, req); err != nil {
			return errx.Wrap(err)
		}
		if err = decodeBody(c, req); err != nil {
			return errx.Wrap(err)
		}

		ctx := meta.InjectMetaToContext(c.UserContext(), map[meta.ContextKey]string{
			meta.OperationID: uc.OperationID(),
		})
		c.SetUserContext(ctx)

		log := logger.
			Named("http.handler").
			WithContext(ctx).
			With("request", mask.StructToOrdMap(req))

		// Validate the request schema based on validate tags of the struct
		if err = val.ValidateSchema(req); err != nil {
			log.Warnx(err)
			return errx.Wrap(err)
		}

		resp, err := uc.Execute(ctx, req)
		if err != nil {
			log.Warnx(err)
			return errx.Wrap(err)
		}

		if sc, ok := any(resp).(StatusCoder); ok {
			c.Status(sc.StatusCode())
		}

		size, err := writeJSON(c, resp)
		if err != nil {
			log.Errorx(err)
			return errx.Wrap(err)
		}

		// Include response body in log if it's size is not too large
		if size <= maxLogAllowedSize {
			log = log.With("response_body", mask.StructToOrdMap(resp))
		} else {
			log = log.With("response_body", fmt.Sprintf("too large for logging: %d bytes", size))
		}

		log.Debug("use case executed")
		return nil
	}
}

// newRequest creates a new request of type I.
// It ensures that I is a pointer to a struct.
func newRequest[I any]() (I, error) {
	var req I

	reqType := reflect.TypeOf((*I)(nil)).Elem()
	if reqType.Kind() != reflect.Pointer || reqType.Elem().Kind() != reflect.Struct {
		return req, errx.New("input type I must be a pointer to a struct")
	}

	reqVal := reflect.New(reqType.Elem()).Interface().(I) //nolint:errcheck // safe type assertion
	return reqVal, nil
}

func writeJSON(c *fiber.Ctx, data any) (int, error) {
	raw, err := c.App().Config().JSONEncoder(data)
	if err != nil {
		return 0, errx.Wrap(err)
	}

	c.Response().SetBodyRaw(raw)
	c.Response().Header.SetContentType(fiber.MIMEApplicationJSON)
	return len(raw), nil
}
