package registry_test

import (
	"context"
	"time"

	"github.com/rise-and-shine/filemanager/filestore"
	"github.com/rise-and-shine/filemanager/filestore/memstore"
)

// staleListStore lists keys that were deleted after the listing was taken.
type staleListStore struct {
	*memstore.Store
	gone []string
}

func (s *staleListStore) List(ctx context.Context) ([]filestore.ObjectInfo, error) {
	objects, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range s.gone {
		objects = append(objects, filestore.ObjectInfo{Key: key, Size: 1, LastModified: time.Now()})
	}
	return objects, nil
}
