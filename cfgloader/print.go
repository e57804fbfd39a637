package cfgloader

import (
	"log/slog"
	"reflect"

	"gopkg.in/yaml.v3"
)

const maskedValue = "********"

func printConfig(cfg any) {
	out, err := yaml.Marshal(Masked(cfg))
	if err != nil {
		slog.Error("[cfgloader]: failed to marshal config", "error", err.Error())
		return
	}
	slog.Info("[cfgloader]: loaded config:\n" + string(out))
}

// Masked returns a deep copy of cfg in which every string field tagged `mask:"true"`
// (at any nesting level) is replaced by a fixed placeholder. Empty secrets stay empty
// so a missing credential is still visible in the printed config.
func Masked(cfg any) any {
	val := reflect.ValueOf(cfg)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	return maskValue(val).Interface()
}

func maskValue(val reflect.Value) reflect.Value {
	if !val.IsValid() {
		return val
	}

	switch val.Kind() { //nolint:exhaustive // only container kinds need recursion
	case reflect.Ptr:
		if val.IsNil() {
			return val
		}
		ptr := reflect.New(val.Elem().Type())
		ptr.Elem().Set(maskValue(val.Elem()))
		return ptr

	case reflect.Struct:
		out := reflect.New(val.Type()).Elem()
		for i := range val.NumField() {
			field := val.Type().Field(i)
			if !field.IsExported() {
				continue
			}
			fv := val.Field(i)
			if field.Tag.Get("mask") == "true" && fv.Kind() == reflect.String {
				if fv.String() != "" {
					out.Field(i).SetString(maskedValue)
				}
				continue
			}
			out.Field(i).Set(maskValue(fv))
		}
		return out

	default:
		return val
	}
}
