// Package conflict finds an existing object that carries the same original filename
// as a new upload.
//
// The authoritative lookup is a full scan: list every object and compare the
// original-filename metadata of each one. An optional Index short-circuits the scan
// when it already knows a key for the name; index answers are always verified
// against the store before they are trusted.
package conflict

import (
	"context"

	"github.com/rise-and-shine/filemanager/filestore"
	"github.com/rise-and-shine/filemanager/observability/logger"
	"github.com/rise-and-shine/filemanager/observability/metrics"
)

// Index results reported to metrics.
const (
	lookupHit   = "hit"
	lookupMiss  = "miss"
	lookupStale = "stale"
	lookupError = "error"
)

// Index maps original filenames to the smallest key known to hold them, which is the
// first such key in listing order, so an index answer equals the scan's answer.
type Index interface {
	// Lookup returns the key recorded for name.
	Lookup(ctx context.Context, name string) (key string, found bool, err error)

	// Record notes that key holds name. name is mapped to key unless it already maps to a
	// key that sorts before it. A mapping of another name to key is dropped.
	Record(ctx context.Context, name, key string) error

	// ForgetKey drops the mapping that points to key, if any.
	ForgetKey(ctx context.Context, key string) error

	// ForgetName drops the mapping of name only if it still points to key.
	ForgetName(ctx context.Context, name, key string) error
}

// Resolver looks up same-name objects in a store.
type Resolver struct {
	store   filestore.Store
	index   Index
	metrics *metrics.Metrics
	logger  logger.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithIndex enables the name index fast path.
func WithIndex(idx Index) Option {
	return func(r *Resolver) { r.index = idx }
}

// WithMetrics records scan failures and index lookups on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver over store.
func New(store filestore.Store, opts ...Option) *Resolver {
	r := &Resolver{store: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Named("conflict")
	}
	return r
}

// FindExisting returns the key of an object whose original-filename equals name
// (exact, case-sensitive). Store failures never surface: a failed listing yields
// no match and an object whose metadata cannot be read is skipped. Both are logged
// and counted.
func (r *Resolver) FindExisting(ctx context.Context, name string) (string, bool) {
	if key, ok := r.lookupIndex(ctx, name); ok {
		return key, true
	}

	key, ok := r.scan(ctx, name)
	if ok {
		r.Remember(ctx, name, key)
	}
	return key, ok
}

// Remember records that key now holds name. No-op without an index.
func (r *Resolver) Remember(ctx context.Context, name, key string) {
	if r.index == nil {
		return
	}
	if err := r.index.Record(ctx, name, key); err != nil {
		r.logger.WithContext(ctx).With("name", name, "key", key).Warnx(err)
	}
}

// Forget drops the index entry of a deleted key. No-op without an index.
func (r *Resolver) Forget(ctx context.Context, key string) {
	if r.index == nil {
		return
	}
	if err := r.index.ForgetKey(ctx, key); err != nil {
		r.logger.WithContext(ctx).With("key", key).Warnx(err)
	}
}

func (r *Resolver) lookupIndex(ctx context.Context, name string) (string, bool) {
	if r.index == nil {
		return "", false
	}

	key, found, err := r.index.Lookup(ctx, name)
	if err != nil {
		r.metrics.RecordIndexLookup(lookupError)
		r.logger.WithContext(ctx).With("name", name).Warnx(err)
		return "", false
	}
	if !found {
		r.metrics.RecordIndexLookup(lookupMiss)
		return "", false
	}

	info, err := r.store.Head(ctx, key)
	switch {
	case err == nil && info.OriginalName == name:
		r.metrics.RecordIndexLookup(lookupHit)
		return key, true
	case err == nil || filestore.IsNotFound(err):
		r.metrics.RecordIndexLookup(lookupStale)
		if ferr := r.index.ForgetName(ctx, name, key); ferr != nil {
			r.logger.WithContext(ctx).With("name", name, "key", key).Warnx(ferr)
		}
	default:
		r.metrics.RecordIndexLookup(lookupError)
		r.logger.WithContext(ctx).With("name", name, "key", key).Warnx(err)
	}
	return "", false
}

func (r *Resolver) scan(ctx context.Context, name string) (string, bool) {
	objects, err := r.store.List(ctx)
	if err != nil {
		r.metrics.RecordScanFailure(metrics.StageList)
		r.logger.WithContext(ctx).With("stage", metrics.StageList).Warnx(err)
		return "", false
	}

	for _, obj := range objects {
		if ctx.Err() != nil {
			return "", false
		}
		info, err := r.store.Head(ctx, obj.Key)
		if err != nil {
			r.metrics.RecordScanFailure(metrics.StageHead)
			r.logger.WithContext(ctx).With("stage", metrics.StageHead, "key", obj.Key).Warnx(err)
			continue
		}
		if info.OriginalName == name {
			return obj.Key, true
		}
	}
	return "", false
}
