package miniowr

import (
	"net/http"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/filemanager/filestore"
)

func TestWrapMinioError(t *testing.T) {
	c := &Client{bucket: "files"}

	tests := []struct {
		name     string
		err      error
		wantCode string
		wantType errx.Type
	}{
		{
			name:     "no such key",
			err:      minio.ErrorResponse{Code: codeNoSuchKey, StatusCode: http.StatusNotFound},
			wantCode: filestore.CodeFileNotFound,
			wantType: errx.T_NotFound,
		},
		{
			name:     "head 404 without body",
			err:      minio.ErrorResponse{StatusCode: http.StatusNotFound},
			wantCode: filestore.CodeFileNotFound,
			wantType: errx.T_NotFound,
		},
		{
			name:     "access denied",
			err:      minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden},
			wantCode: filestore.CodeStoreError,
			wantType: errx.T_Internal,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.wrapMinioError(tc.err, "head", "a_1.txt")

			assert.True(t, errx.IsCodeIn(got, tc.wantCode))
			assert.Equal(t, tc.wantType, errx.GetType(got))
		})
	}
}

func TestToObjectInfo(t *testing.T) {
	now := time.Now()
	info := toObjectInfo(minio.ObjectInfo{
		Key:          "r%C3%A9sum%C3%A9_1.pdf",
		Size:         42,
		LastModified: now,
		ContentType:  "application/pdf",
		UserMetadata: minio.StringMap{"Original-Filename": "=?utf-8?q?r=C3=A9sum=C3=A9.pdf?="},
	})

	assert.Equal(t, "résumé.pdf", info.OriginalName)
	assert.Equal(t, int64(42), info.Size)
	assert.Equal(t, now, info.LastModified)
}
