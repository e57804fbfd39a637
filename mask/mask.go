// Package mask flattens request and response values into ordered maps for logging,
// hiding fields tagged `mask:"true"` and summarizing raw byte content.
package mask

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	tagName = "mask"

	// Masked replaces the value of a masked field.
	Masked = "***masked***"
)

//nolint:gochecknoglobals // type lookups
var (
	bytesType         = reflect.TypeOf([]byte(nil))
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// StructToOrdMap returns an ordered map of the fields of v, flattening nested structs
// into dotted names. Field names follow the json tag, then the yaml tag, then the Go
// name; fields tagged "-" are left out. Values that are not structs are stored under
// the empty key.
func StructToOrdMap(v any) *orderedmap.OrderedMap[string, any] {
	if v == nil {
		return nil
	}
	return toOrdMap(reflect.ValueOf(v), "")
}

func toOrdMap(val reflect.Value, prefix string) *orderedmap.OrderedMap[string, any] {
	om := orderedmap.New[string, any]()

	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			om.Set(prefix, nil)
			return om
		}
		val = val.Elem()
	}

	if !isExpandable(val) {
		om.Set(prefix, leafValue(val))
		return om
	}

	typ := val.Type()
	for i := range val.NumField() {
		fieldType := typ.Field(i)
		if !fieldType.IsExported() {
			continue
		}

		fieldName, skip := extractFieldName(fieldType)
		if skip {
			continue
		}

		name := fieldName
		if prefix != "" {
			name = prefix + "." + name
		}

		field := val.Field(i)
		switch {
		case strings.EqualFold(fieldType.Tag.Get(tagName), "true"):
			om.Set(name, maskValue(field))
		case isExpandable(deref(field)):
			nested := toOrdMap(field, name)
			for pair := nested.Oldest(); pair != nil; pair = pair.Next() {
				om.Set(pair.Key, pair.Value)
			}
		default:
			om.Set(name, leafValue(field))
		}
	}

	return om
}

func deref(val reflect.Value) reflect.Value {
	if val.Kind() == reflect.Pointer && !val.IsNil() {
		return val.Elem()
	}
	return val
}

// isExpandable reports whether val is a struct that should be flattened. Structs
// with their own text form (time.Time) are kept whole.
func isExpandable(val reflect.Value) bool {
	if val.Kind() != reflect.Struct {
		return false
	}
	return !val.Type().Implements(textMarshalerType) &&
		!reflect.PointerTo(val.Type()).Implements(textMarshalerType)
}

func leafValue(val reflect.Value) any {
	if !val.IsValid() {
		return nil
	}
	if val.Type() == bytesType {
		return fmt.Sprintf("<%d bytes>", val.Len())
	}
	return val.Interface()
}

// maskValue hides val unless it is nil or zero, so absent secrets stay visible.
func maskValue(val reflect.Value) any {
	switch val.Kind() { //nolint:exhaustive // other kinds have no nil state
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		if val.IsNil() {
			return nil
		}
	}
	if val.IsZero() {
		return val.Interface()
	}
	return Masked
}

// extractFieldName extracts the field name from struct tags with priority:
// json tag, yaml tag, struct field name. skip is true for fields tagged "-".
func extractFieldName(field reflect.StructField) (string, bool) {
	for _, tag := range []string{"json", "yaml"} {
		v, ok := field.Tag.Lookup(tag)
		if !ok {
			continue
		}
		if v == "-" {
			return "", true
		}
		if idx := strings.Index(v, ","); idx != -1 {
			v = v[:idx]
		}
		if v != "" {
			return v, false
		}
	}

	return field.Name, false
}
