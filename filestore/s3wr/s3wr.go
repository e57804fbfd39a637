// Package s3wr implements filestore.Store on top of the AWS SDK v2 S3 client.
package s3wr

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/code19m/errx"
	"github.com/rise-and-shine/filemanager/filestore"
)

// Client implements filestore.Store using S3.
type Client struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

var _ filestore.Store = (*Client)(nil)

// New builds an S3 client from cfg using the default AWS configuration chain.
func New(ctx context.Context, cfg Config) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"region": cfg.Region}))
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewWithClient(client, cfg.Bucket), nil
}

// NewWithClient wraps an already configured S3 client.
func NewWithClient(client *s3.Client, bucket string) *Client {
	return &Client{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}
}

// Put uploads body under key with the original-filename metadata.
func (c *Client) Put(
	ctx context.Context,
	key string,
	body []byte,
	contentType, originalFilename string,
) (string, error) {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
		Metadata: map[string]string{
			filestore.MetaOriginalFilename: filestore.EncodeMetaValue(originalFilename),
		},
	})
	if err != nil {
		return "", wrapS3Error(err, "put", key)
	}
	return key, nil
}

// Get downloads the whole object.
func (c *Client) Get(ctx context.Context, key string) (*filestore.Object, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, "get", key)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, wrapS3Error(err, "get", key)
	}

	name, _ := filestore.OriginalNameFromMeta(out.Metadata)
	return &filestore.Object{
		Info: filestore.ObjectInfo{
			Key:          key,
			OriginalName: name,
			Size:         aws.ToInt64(out.ContentLength),
			LastModified: aws.ToTime(out.LastModified),
			ContentType:  aws.ToString(out.ContentType),
			ETag:         aws.ToString(out.ETag),
		},
		Body: body,
	}, nil
}

// Head returns object info including the original filename.
func (c *Client) Head(ctx context.Context, key string) (*filestore.ObjectInfo, error) {
	out, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, "head", key)
	}

	name, _ := filestore.OriginalNameFromMeta(out.Metadata)
	return &filestore.ObjectInfo{
		Key:          key,
		OriginalName: name,
		Size:         aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         aws.ToString(out.ETag),
	}, nil
}

// Delete removes key. S3 acknowledges deletes of missing keys, which keeps this idempotent.
func (c *Client) Delete(ctx context.Context, key string) (bool, error) {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return true, nil
		}
		return false, wrapS3Error(err, "delete", key)
	}
	return true, nil
}

// List walks every page of ListObjectsV2.
func (c *Client) List(ctx context.Context) ([]filestore.ObjectInfo, error) {
	var out []filestore.ObjectInfo

	p := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, filestore.StoreError(err, "list", c.bucket)
		}
		for _, obj := range page.Contents {
			out = append(out, filestore.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         aws.ToString(obj.ETag),
			})
		}
	}
	return out, nil
}

// PresignGet signs a GET URL for key.
func (c *Client) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", wrapS3Error(err, "presign", key)
	}
	return req.URL, nil
}

// isNotFoundError reports whether err means the object does not exist.
func isNotFoundError(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}

func wrapS3Error(err error, op, key string) error {
	if isNotFoundError(err) {
		return filestore.NotFound(key)
	}
	return filestore.StoreError(err, op, key)
}
