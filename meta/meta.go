// Package meta carries request metadata (trace id, caller, client info) through context.Context
// so that loggers, spans and error responses can be correlated without explicit plumbing.
package meta

import (
	"context"

	"github.com/code19m/errx"
)

// ContextKey is the type of keys stored in a context by this package.
type ContextKey string

const (
	// TraceID correlates all log lines and spans of a single request.
	TraceID ContextKey = "trace_id"

	// ActorType is the kind of caller, set by the (external) authentication layer.
	ActorType ContextKey = "actor_type"

	// ActorID identifies the caller, set by the (external) authentication layer.
	ActorID ContextKey = "actor_id"

	// IPAddress is the client's IP address.
	IPAddress ContextKey = "ip_address"

	// UserAgent is the client's user agent header.
	UserAgent ContextKey = "user_agent"

	// ServiceName is the name of the running service.
	ServiceName ContextKey = "service_name"

	// ServiceVersion is the version of the running service.
	ServiceVersion ContextKey = "service_version"

	// OperationID names the registry operation being executed.
	OperationID ContextKey = "operation_id"
)

//nolint:gochecknoglobals // fixed extraction order
var knownKeys = []ContextKey{
	TraceID,
	ActorType,
	ActorID,
	IPAddress,
	UserAgent,
	ServiceName,
	ServiceVersion,
	OperationID,
}

// InjectMetaToContext returns a context carrying every non-empty value of data.
func InjectMetaToContext(ctx context.Context, data map[ContextKey]string) context.Context {
	for k, v := range data {
		if v != "" {
			ctx = context.WithValue(ctx, k, v) //nolint:fatcontext // finite number of keys
		}
	}
	return ctx
}

// ExtractMetaFromContext collects all known, non-empty string values from ctx.
func ExtractMetaFromContext(ctx context.Context) map[ContextKey]string {
	data := make(map[ContextKey]string)
	for _, k := range knownKeys {
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			data[k] = v
		}
	}
	return data
}

// ShouldGetMeta returns the string stored under key, failing when it is missing or not a string.
func ShouldGetMeta(ctx context.Context, key ContextKey) (string, error) {
	raw := ctx.Value(key)
	if raw == nil {
		return "", errx.New("meta: key not found", errx.WithDetails(errx.D{"key": string(key)}))
	}
	v, ok := raw.(string)
	if !ok {
		return "", errx.New("meta: type mismatch", errx.WithDetails(errx.D{"key": string(key)}))
	}
	return v, nil
}
