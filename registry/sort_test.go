package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/filemanager/registry"
)

func TestSortFiles(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	files := func() []registry.FileInfo {
		return []registry.FileInfo{
			{Key: "b_2.txt", OriginalName: "b.txt", Size: 10, LastModified: t0.Add(2 * time.Hour)},
			{Key: "A_1.txt", OriginalName: "A.txt", Size: 30, LastModified: t0},
			{Key: "c_3.txt", OriginalName: "c.txt", Size: 10, LastModified: t0.Add(time.Hour)},
		}
	}
	keys := func(fs []registry.FileInfo) []string {
		out := make([]string, 0, len(fs))
		for _, f := range fs {
			out = append(out, f.Key)
		}
		return out
	}

	tests := []struct {
		name string
		sort string
		want []string
	}{
		{"empty keeps order", "", []string{"b_2.txt", "A_1.txt", "c_3.txt"}},
		{"newest first", "lastModified:desc", []string{"b_2.txt", "c_3.txt", "A_1.txt"}},
		{"name ignores case", "originalName:asc", []string{"A_1.txt", "b_2.txt", "c_3.txt"}},
		{"size then key", "size:asc,key:desc", []string{"c_3.txt", "b_2.txt", "A_1.txt"}},
		{"unknown field", "owner:asc", []string{"b_2.txt", "A_1.txt", "c_3.txt"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := files()
			registry.SortFiles(fs, tc.sort)
			assert.Equal(t, tc.want, keys(fs))
		})
	}
}

func TestSortFields(t *testing.T) {
	assert.Equal(t, []string{"key", "lastModified", "originalName", "size"}, registry.SortFields())
}
