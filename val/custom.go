package val

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxStorageKeyBytes is the longest object key S3 accepts.
const MaxStorageKeyBytes = 1024

func registerCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("storage_key", func(fl validator.FieldLevel) bool {
		return IsStorageKey(fl.Field().String())
	})
}

// IsStorageKey checks that key is a usable object key: non-empty valid UTF-8 of at most
// MaxStorageKeyBytes bytes without control characters.
func IsStorageKey(key string) bool {
	if key == "" || len(key) > MaxStorageKeyBytes || !utf8.ValidString(key) {
		return false
	}
	return strings.IndexFunc(key, unicode.IsControl) < 0
}
