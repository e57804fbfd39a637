// Package memstore is an in-process filestore.Store used for local runs and tests.
package memstore

import (
	"context"
	"crypto/md5" //nolint:gosec // etag only
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filemanager/filestore"
)

// Config configures the in-memory backend.
type Config struct {
	// BaseURL prefixes presigned download URLs.
	BaseURL string `yaml:"base_url" default:"http://localhost:8080/memstore"`
}

// Store keeps objects in a map guarded by a mutex. Listing is sorted by key,
// matching S3 ordering.
type Store struct {
	mu      sync.RWMutex
	objects map[string]filestore.Object
	baseURL string
	now     func() time.Time

	// FailHead makes Head fail with a store error for the returned keys.
	FailHead func(key string) bool

	// FailList makes List fail with a store error.
	FailList bool

	// FailPresign makes PresignGet fail with a store error.
	FailPresign bool
}

var _ filestore.Store = (*Store)(nil)

// New creates an empty store.
func New(cfg Config) *Store {
	return &Store{
		objects: make(map[string]filestore.Object),
		baseURL: cfg.BaseURL,
		now:     time.Now,
	}
}

func (s *Store) Put(
	_ context.Context,
	key string,
	body []byte,
	contentType, originalFilename string,
) (string, error) {
	sum := md5.Sum(body) //nolint:gosec // etag only
	data := append([]byte(nil), body...)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = filestore.Object{
		Info: filestore.ObjectInfo{
			Key:          key,
			OriginalName: originalFilename,
			Size:         int64(len(data)),
			LastModified: s.now().UTC(),
			ContentType:  contentType,
			ETag:         hex.EncodeToString(sum[:]),
		},
		Body: data,
	}
	return key, nil
}

func (s *Store) Get(_ context.Context, key string) (*filestore.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, filestore.NotFound(key)
	}
	obj.Body = append([]byte(nil), obj.Body...)
	return &obj, nil
}

func (s *Store) Head(_ context.Context, key string) (*filestore.ObjectInfo, error) {
	if s.FailHead != nil && s.FailHead(key) {
		return nil, filestore.StoreError(errx.New("injected head failure"), "head", key)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, filestore.NotFound(key)
	}
	info := obj.Info
	return &info, nil
}

func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return true, nil
}

// List returns objects sorted by key. OriginalName is left empty, as with real backends.
func (s *Store) List(_ context.Context) ([]filestore.ObjectInfo, error) {
	if s.FailList {
		return nil, filestore.StoreError(errx.New("injected list failure"), "list", "memory")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]filestore.ObjectInfo, 0, len(s.objects))
	for _, obj := range s.objects {
		info := obj.Info
		info.OriginalName = ""
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// PresignGet builds an unsigned URL under BaseURL with the expiry as a query parameter.
func (s *Store) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	if s.FailPresign {
		return "", filestore.StoreError(errx.New("injected presign failure"), "presign", "memory")
	}
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(int64(expiry.Seconds()), 10))
	return s.baseURL + "/" + url.PathEscape(key) + "?" + q.Encode(), nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
