// Package filestore is the object store facade used by the file registry.
//
// Every object carries exactly one custom metadata entry, original-filename, holding
// the user visible name it was uploaded with. Backends live in sub packages
// (miniowr, s3wr, memstore) and must be safe for concurrent use.
package filestore

import (
	"context"
	"mime"
	"strings"
	"time"

	"github.com/code19m/errx"
)

const (
	// MetaOriginalFilename is the metadata key storing the user visible filename.
	MetaOriginalFilename = "original-filename"

	// DownloadURLExpiry is how long presigned download URLs stay valid.
	DownloadURLExpiry = time.Hour
)

var metaDecoder = new(mime.WordDecoder)

// Store is the blob store contract: put/get/head/delete/list plus presigned reads.
type Store interface {
	// Put writes body under key with the original-filename metadata and returns key.
	// An existing object under key is overwritten.
	Put(ctx context.Context, key string, body []byte, contentType, originalFilename string) (string, error)

	// Get returns the object bytes. Fails with CodeFileNotFound if key does not exist.
	Get(ctx context.Context, key string) (*Object, error)

	// Head returns size and metadata without the body. Fails with CodeFileNotFound if key does not exist.
	Head(ctx context.Context, key string) (*ObjectInfo, error)

	// Delete removes key. A key that is already absent counts as deleted.
	Delete(ctx context.Context, key string) (bool, error)

	// List returns every object in the bucket, following pagination. OriginalName is not populated.
	List(ctx context.Context) ([]ObjectInfo, error)

	// PresignGet returns a credential-free GET URL for key valid for expiry. It does not check existence.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	OriginalName string // empty when the object carries no original-filename metadata
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// Object is an object's content with its info.
type Object struct {
	Info ObjectInfo
	Body []byte
}

// PresignDownload checks that key exists and returns a download URL valid for DownloadURLExpiry,
// so callers get a not-found error instead of a dead link.
func PresignDownload(ctx context.Context, s Store, key string) (string, error) {
	if _, err := s.Head(ctx, key); err != nil {
		return "", errx.Wrap(err)
	}

	u, err := s.PresignGet(ctx, key, DownloadURLExpiry)
	if err != nil {
		return "", errx.Wrap(err)
	}
	return u, nil
}

// EncodeMetaValue makes name safe for S3 user metadata, which only carries ASCII.
// Non-ASCII names become RFC 2047 encoded-words; ASCII names are stored as is.
func EncodeMetaValue(name string) string {
	return mime.QEncoding.Encode("utf-8", name)
}

// DecodeMetaValue reverses EncodeMetaValue. Plain values, including ones written by other
// tools, come back unchanged.
func DecodeMetaValue(v string) string {
	decoded, err := metaDecoder.DecodeHeader(v)
	if err != nil {
		return v
	}
	return decoded
}

// OriginalNameFromMeta finds the original-filename entry in user metadata. Backends differ in
// how they present keys (canonical header case, with or without the x-amz-meta- prefix), so the
// match is case-insensitive and prefix tolerant.
func OriginalNameFromMeta(md map[string]string) (string, bool) {
	for k, v := range md {
		name := strings.ToLower(k)
		name = strings.TrimPrefix(name, "x-amz-meta-")
		if name == MetaOriginalFilename {
			return DecodeMetaValue(v), true
		}
	}
	return "", false
}
