package forward

import (
	"io"
	"net/url"
	"reflect"
	"strings"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
)

// File is an uploaded multipart file read into memory. Request fields of type *File
// tagged `file:"<form field>"` are filled from the multipart form; tag them `form:"-"`
// as well so the form value parser leaves them alone.
type File struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Body        []byte `json:"-"`
}

//nolint:gochecknoglobals // type lookup
var fileType = reflect.TypeOf((*File)(nil))

// decodeBody decodes a JSON or multipart form body into the given request struct.
func decodeBody[I any](c *fiber.Ctx, req I) error {
	if len(c.Body()) == 0 {
		return nil // No body to decode
	}

	contentType := strings.ToLower(c.Get(fiber.HeaderContentType))
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		if err := c.BodyParser(req); err != nil {
			return errx.Wrap(err, errx.WithType(errx.T_Validation), errx.WithCode(codeInvalidJSONBody))
		}
		return nil

	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		if err := c.BodyParser(req); err != nil {
			return errx.Wrap(err, errx.WithType(errx.T_Validation), errx.WithCode(codeInvalidFormBody))
		}
		return decodeFiles(c, req)

	default:
		return errx.New(
			"content type must be application/json or multipart/form-data",
			errx.WithType(errx.T_Validation),
			errx.WithCode(codeInvalidContentType),
			errx.WithDetails(errx.D{"content_type": contentType}),
		)
	}
}

// decodeFiles reads the multipart files named by `file` tags. A missing part leaves
// the field nil so that validation can report it.
func decodeFiles[I any](c *fiber.Ctx, req I) error {
	v := reflect.ValueOf(req).Elem()
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		name := field.Tag.Get("file")
		if name == "" || field.Type != fileType {
			continue
		}

		fh, err := c.FormFile(name)
		if err != nil {
			continue
		}

		f, err := fh.Open()
		if err != nil {
			return errx.Wrap(err, errx.WithType(errx.T_Validation), errx.WithCode(codeInvalidFile))
		}
		body, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return errx.Wrap(err, errx.WithType(errx.T_Validation), errx.WithCode(codeInvalidFile))
		}

		v.Field(i).Set(reflect.ValueOf(&File{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Body:        body,
		}))
	}
	return nil
}

// decodeQuery decodes the query params into the given request struct.
func decodeQuery[I any](c *fiber.Ctx, req I) error {
	if len(c.Queries()) == 0 {
		return nil // No query params to decode
	}

	if err := c.QueryParser(req); err != nil {
		return errx.Wrap(err, errx.WithType(errx.T_Validation), errx.WithCode(codeInvalidQueryParams))
	}

	return nil
}

// decodePath sets string fields tagged `params:"<name>"` to the unescaped route param.
func decodePath[I any](c *fiber.Ctx, req I) error {
	v := reflect.ValueOf(req).Elem()
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		name := field.Tag.Get("params")
		if name == "" || field.Type.Kind() != reflect.String {
			continue
		}

		raw := c.Params(name)
		value, err := url.PathUnescape(raw)
		if err != nil {
			return errx.Wrap(
				err,
				errx.WithType(errx.T_Validation),
				errx.WithCode(codeInvalidPathParams),
				errx.WithDetails(errx.D{"param": name, "value": raw}),
			)
		}
		v.Field(i).SetString(value)
	}
	return nil
}
