// Package miniowr implements filestore.Store on top of the MinIO client.
package miniowr

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/code19m/errx"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rise-and-shine/filemanager/filestore"
)

const (
	codeNoSuchKey = "NoSuchKey"
	codeNotFound  = "NotFound"
)

// Client implements filestore.Store using MinIO.
type Client struct {
	client *minio.Client
	bucket string
}

var _ filestore.Store = (*Client)(nil)

// New connects to MinIO and, when cfg.CreateBucket is set, makes sure the bucket exists.
func New(ctx context.Context, cfg Config) (*Client, error) {
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"endpoint": cfg.Endpoint}))
	}

	if cfg.CreateBucket {
		exists, err := cl.BucketExists(ctx, cfg.Bucket)
		if err != nil {
			return nil, filestore.StoreError(err, "bucket_exists", cfg.Bucket)
		}
		if !exists {
			err = cl.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region})
			if err != nil {
				return nil, filestore.StoreError(err, "make_bucket", cfg.Bucket)
			}
		}
	}

	return &Client{client: cl, bucket: cfg.Bucket}, nil
}

// Put uploads body under key with the original-filename metadata.
func (c *Client) Put(
	ctx context.Context,
	key string,
	body []byte,
	contentType, originalFilename string,
) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			filestore.MetaOriginalFilename: filestore.EncodeMetaValue(originalFilename),
		},
	})
	if err != nil {
		return "", c.wrapMinioError(err, "put", key)
	}
	return key, nil
}

// Get downloads the whole object.
func (c *Client) Get(ctx context.Context, key string) (*filestore.Object, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, c.wrapMinioError(err, "get", key)
	}
	defer obj.Close()

	// GetObject is lazy; the first request is made by Stat.
	stat, err := obj.Stat()
	if err != nil {
		return nil, c.wrapMinioError(err, "get", key)
	}

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, c.wrapMinioError(err, "get", key)
	}

	return &filestore.Object{Info: toObjectInfo(stat), Body: body}, nil
}

// Head returns object info including the original filename.
func (c *Client) Head(ctx context.Context, key string) (*filestore.ObjectInfo, error) {
	stat, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, c.wrapMinioError(err, "head", key)
	}
	info := toObjectInfo(stat)
	return &info, nil
}

// Delete removes key. S3 semantics make deleting a missing key a success.
func (c *Client) Delete(ctx context.Context, key string) (bool, error) {
	err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return true, nil
		}
		return false, c.wrapMinioError(err, "delete", key)
	}
	return true, nil
}

// List walks the whole bucket. The channel API follows continuation tokens internally.
func (c *Client) List(ctx context.Context) ([]filestore.ObjectInfo, error) {
	var out []filestore.ObjectInfo
	for obj := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			// a 404 here means the bucket is gone, which is not a missing file
			return nil, filestore.StoreError(obj.Err, "list", c.bucket)
		}
		out = append(out, filestore.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         obj.ETag,
			ContentType:  obj.ContentType,
		})
	}
	return out, nil
}

// PresignGet signs a GET URL for key.
func (c *Client) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := c.client.PresignedGetObject(ctx, c.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", c.wrapMinioError(err, "presign", key)
	}
	return u.String(), nil
}

func toObjectInfo(stat minio.ObjectInfo) filestore.ObjectInfo {
	name, _ := filestore.OriginalNameFromMeta(stat.UserMetadata)
	return filestore.ObjectInfo{
		Key:          stat.Key,
		OriginalName: name,
		Size:         stat.Size,
		LastModified: stat.LastModified,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
	}
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == codeNoSuchKey || resp.Code == codeNotFound || resp.StatusCode == http.StatusNotFound
}

// wrapMinioError converts MinIO errors to filestore error codes.
func (c *Client) wrapMinioError(err error, op, key string) error {
	if isNotFound(err) {
		return filestore.NotFound(key)
	}
	return filestore.StoreError(err, op, key)
}
