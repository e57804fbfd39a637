// Package registry manages user files in an object store: listing, search, upload with
// same-name conflict handling, download, delete and upload completion polling.
package registry

import (
	"context"
	"strings"

	"github.com/code19m/errx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rise-and-shine/filemanager/conflict"
	"github.com/rise-and-shine/filemanager/filestore"
	"github.com/rise-and-shine/filemanager/keynamer"
	"github.com/rise-and-shine/filemanager/observability/logger"
	"github.com/rise-and-shine/filemanager/observability/metrics"
	"github.com/rise-and-shine/filemanager/observability/tracing"
	"github.com/rise-and-shine/filemanager/uploadstatus"
)

const scope = "registry"

// Upload outcomes reported to metrics.
const (
	outcomeCreated   = "created"
	outcomeConflict  = "conflict"
	outcomeReplaced  = "replaced"
	outcomeKeptBoth  = "kept_both"
	outcomeCancelled = "cancelled"
)

// Registry orchestrates the key namer, the conflict resolver and the store.
// It owns the upload status tracker.
type Registry struct {
	store    filestore.Store
	resolver *conflict.Resolver
	namer    *keynamer.Namer
	status   *uploadstatus.Tracker
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithResolver replaces the default scan-only resolver.
func WithResolver(r *conflict.Resolver) Option {
	return func(reg *Registry) { reg.resolver = r }
}

// WithNamer sets the key namer, e.g. one with a fixed clock.
func WithNamer(n *keynamer.Namer) Option {
	return func(reg *Registry) { reg.namer = n }
}

// WithMetrics records upload outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(reg *Registry) { reg.metrics = m }
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l logger.Logger) Option {
	return func(reg *Registry) { reg.logger = l }
}

// New creates a Registry over store.
func New(store filestore.Store, opts ...Option) *Registry {
	reg := &Registry{
		store:  store,
		namer:  keynamer.New(),
		status: uploadstatus.New(),
	}
	for _, opt := range opts {
		opt(reg)
	}
	if reg.logger == nil {
		reg.logger = logger.Named(scope)
	}
	if reg.resolver == nil {
		reg.resolver = conflict.New(store, conflict.WithMetrics(reg.metrics), conflict.WithLogger(reg.logger))
	}
	return reg
}

// ListFiles returns every stored file with its display name and a fresh download URL.
func (r *Registry) ListFiles(ctx context.Context) (_ []FileInfo, err error) {
	ctx, end := tracing.StartSpan(ctx, scope, "registry.ListFiles")
	defer func() { end(err) }()

	files, err := r.describeAll(ctx)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	r.logger.WithContext(ctx).With("count", len(files)).Debug("listed files")
	return files, nil
}

// SearchFiles returns files whose display name or key contains query, ignoring case.
// An empty query matches everything.
func (r *Registry) SearchFiles(ctx context.Context, query string) (_ []FileInfo, err error) {
	ctx, end := tracing.StartSpan(ctx, scope, "registry.SearchFiles", attribute.String("query", query))
	defer func() { end(err) }()

	objects, err := r.store.List(ctx)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	q := strings.ToLower(query)
	matches := make([]FileInfo, 0)
	for _, obj := range objects {
		name, err := r.displayName(ctx, obj.Key)
		if r.vanished(ctx, obj.Key, err) {
			continue
		}
		if err != nil {
			return nil, errx.Wrap(err)
		}
		if !strings.Contains(strings.ToLower(name), q) && !strings.Contains(strings.ToLower(obj.Key), q) {
			continue
		}

		info, err := r.describe(ctx, obj, name)
		if r.vanished(ctx, obj.Key, err) {
			continue
		}
		if err != nil {
			return nil, errx.Wrap(err)
		}
		matches = append(matches, info)
	}

	r.logger.WithContext(ctx).With("query", query, "matches", len(matches), "scanned", len(objects)).
		Debug("searched files")
	return matches, nil
}

// UploadFile stores a new file. If a file with the same name exists, nothing is written
// and the result carries the Conflict for the caller to resolve.
func (r *Registry) UploadFile(ctx context.Context, up Upload) (_ *UploadResult, err error) {
	ctx, end := tracing.StartSpan(ctx, scope, "registry.UploadFile", attribute.String("filename", up.Filename))
	defer func() { end(err) }()

	if len(up.Body) == 0 {
		return nil, errEmptyFile()
	}

	if up.Filename != "" {
		if existing, found := r.resolver.FindExisting(ctx, up.Filename); found {
			r.metrics.RecordUpload(outcomeConflict)
			r.logger.WithContext(ctx).With("filename", up.Filename, "existing_key", existing).
				Info("file name conflict detected")
			return &UploadResult{
				Conflict: &Conflict{OriginalFilename: up.Filename, ExistingKey: existing},
			}, nil
		}
	}

	res, err := r.write(ctx, r.namer.Generate(up.Filename), up)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	r.metrics.RecordUpload(outcomeCreated)
	return res, nil
}

// ResolveConflict applies action to an upload whose name was taken.
// The action is parsed case-insensitively; replace overwrites existingKey in place,
// keepBoth stores the upload under a fresh key and cancel writes nothing.
func (r *Registry) ResolveConflict(
	ctx context.Context,
	up Upload,
	action, existingKey string,
) (_ *UploadResult, err error) {
	ctx, end := tracing.StartSpan(ctx, scope, "registry.ResolveConflict",
		attribute.String("filename", up.Filename),
		attribute.String("action", action),
	)
	defer func() { end(err) }()

	if len(up.Body) == 0 {
		return nil, errEmptyFile()
	}

	act, err := ParseAction(action)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	var res *UploadResult
	switch act {
	case ActionCancel:
		r.metrics.RecordUpload(outcomeCancelled)
		return &UploadResult{Action: act, Cancelled: true}, nil

	case ActionReplace:
		if existingKey == "" {
			return nil, errExistingKeyRequired()
		}
		if _, err = r.store.Head(ctx, existingKey); err != nil {
			return nil, errx.Wrap(err)
		}
		res, err = r.write(ctx, existingKey, up)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		r.metrics.RecordUpload(outcomeReplaced)

	case ActionKeepBoth:
		res, err = r.write(ctx, r.namer.Generate(up.Filename), up)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		r.metrics.RecordUpload(outcomeKeptBoth)
	}

	res.Action = act
	return res, nil
}

// DownloadFile returns the content stored under key.
func (r *Registry) DownloadFile(ctx context.Context, key string) (_ *Download, err error) {
	ctx, end := tracing.StartSpan(ctx, scope, "registry.DownloadFile", attribute.String("key", key))
	defer func() { end(err) }()

	obj, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	contentType := obj.Info.ContentType
	if contentType == "" {
		contentType = filestore.ContentTypeOctetStream
	}
	return &Download{Key: key, ContentType: contentType, Body: obj.Body}, nil
}

// DeleteFile removes key. Deleting a missing key succeeds.
func (r *Registry) DeleteFile(ctx context.Context, key string) (_ bool, err error) {
	ctx, end := tracing.StartSpan(ctx, scope, "registry.DeleteFile", attribute.String("key", key))
	defer func() { end(err) }()

	deleted, err := r.store.Delete(ctx, key)
	if err != nil {
		return false, errx.Wrap(err)
	}
	if deleted {
		r.resolver.Forget(ctx, key)
		r.logger.WithContext(ctx).With("key", key).Info("file deleted")
	}
	return deleted, nil
}

// GetUploadStatus reports whether an upload of key completed since the last poll.
// A true answer is given once.
func (r *Registry) GetUploadStatus(key string) bool {
	return r.status.Take(key)
}

// RebuildIndex records every stored file's name in the conflict index. The index keeps
// the first key in listing order per name, so the result does not depend on write history.
// It returns the number of files indexed.
func (r *Registry) RebuildIndex(ctx context.Context) (_ int, err error) {
	ctx, end := tracing.StartSpan(ctx, scope, "registry.RebuildIndex")
	defer func() { end(err) }()

	objects, err := r.store.List(ctx)
	if err != nil {
		return 0, errx.Wrap(err)
	}

	for _, obj := range objects {
		info, err := r.store.Head(ctx, obj.Key)
		if err != nil {
			return 0, errx.Wrap(err)
		}
		if info.OriginalName != "" {
			r.resolver.Remember(ctx, info.OriginalName, obj.Key)
		}
	}
	return len(objects), nil
}

// write stores up under key, records the name in the index and signs a download URL.
// The upload is marked completed only once the URL is signed.
func (r *Registry) write(ctx context.Context, key string, up Upload) (*UploadResult, error) {
	contentType := filestore.DetectContentType(up.ContentType, up.Filename, up.Body)

	key, err := r.store.Put(ctx, key, up.Body, contentType, up.Filename)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if up.Filename != "" {
		r.resolver.Remember(ctx, up.Filename, key)
	}

	url, err := filestore.PresignDownload(ctx, r.store, key)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	r.status.MarkCompleted(key)

	r.logger.WithContext(ctx).With("key", key, "filename", up.Filename, "size", len(up.Body)).
		Info("file stored")
	return &UploadResult{Key: key, DownloadURL: url}, nil
}

func (r *Registry) describeAll(ctx context.Context) ([]FileInfo, error) {
	objects, err := r.store.List(ctx)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	files := make([]FileInfo, 0, len(objects))
	for _, obj := range objects {
		name, err := r.displayName(ctx, obj.Key)
		if r.vanished(ctx, obj.Key, err) {
			continue
		}
		if err != nil {
			return nil, errx.Wrap(err)
		}
		info, err := r.describe(ctx, obj, name)
		if r.vanished(ctx, obj.Key, err) {
			continue
		}
		if err != nil {
			return nil, errx.Wrap(err)
		}
		files = append(files, info)
	}
	return files, nil
}

// vanished reports whether err means key was deleted after it was listed, and logs the skip.
func (r *Registry) vanished(ctx context.Context, key string, err error) bool {
	if err == nil || !filestore.IsNotFound(err) {
		return false
	}
	r.logger.WithContext(ctx).With("key", key).Warn("listed file vanished, skipping")
	return true
}

func (r *Registry) describe(ctx context.Context, obj filestore.ObjectInfo, name string) (FileInfo, error) {
	url, err := filestore.PresignDownload(ctx, r.store, obj.Key)
	if err != nil {
		return FileInfo{}, errx.Wrap(err)
	}
	return FileInfo{
		Key:          obj.Key,
		OriginalName: name,
		Size:         obj.Size,
		LastModified: obj.LastModified,
		DownloadURL:  url,
	}, nil
}

// displayName reads the original-filename metadata of key, falling back to the
// stem encoded in the key.
func (r *Registry) displayName(ctx context.Context, key string) (string, error) {
	info, err := r.store.Head(ctx, key)
	if err != nil {
		return "", errx.Wrap(err)
	}
	if info.OriginalName != "" {
		return info.OriginalName, nil
	}
	return keynamer.StemFromKey(key), nil
}
