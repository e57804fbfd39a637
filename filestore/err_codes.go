package filestore

import "github.com/code19m/errx"

const (
	// CodeFileNotFound is returned when no object exists under the requested key.
	CodeFileNotFound = "FILE_NOT_FOUND"

	// CodeStoreError covers transport, auth and service failures of the underlying store.
	CodeStoreError = "STORE_ERROR"
)

// NotFound builds the error returned for a missing key.
func NotFound(key string) error {
	return errx.New(
		"file not found: "+key,
		errx.WithCode(CodeFileNotFound),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{"key": key}),
	)
}

// StoreError wraps a backend failure for op on key.
func StoreError(err error, op, key string) error {
	return errx.Wrap(
		err,
		errx.WithCode(CodeStoreError),
		errx.WithType(errx.T_Internal),
		errx.WithDetails(errx.D{"operation": op, "key": key}),
	)
}

// IsNotFound reports whether err is a not-found error from a Store.
func IsNotFound(err error) bool {
	return errx.IsCodeIn(err, CodeFileNotFound)
}
