package registry

import (
	"cmp"
	"strings"

	"github.com/rise-and-shine/filemanager/sorter"
)

//nolint:gochecknoglobals // static lookup table
var fileComparators = sorter.Comparators[FileInfo]{
	"key": func(a, b FileInfo) int { return cmp.Compare(a.Key, b.Key) },
	"originalName": func(a, b FileInfo) int {
		return cmp.Compare(strings.ToLower(a.OriginalName), strings.ToLower(b.OriginalName))
	},
	"size":         func(a, b FileInfo) int { return cmp.Compare(a.Size, b.Size) },
	"lastModified": func(a, b FileInfo) int { return a.LastModified.Compare(b.LastModified) },
}

// SortFields lists the fields SortFiles accepts.
func SortFields() []string {
	return fileComparators.Fields()
}

// SortFiles orders files in place by a sort string such as "lastModified:desc,key:asc".
// Unknown fields and malformed pairs are ignored; an empty string keeps the store order.
func SortFiles(files []FileInfo, sort string) {
	sorter.Apply(files, sorter.MakeFromStr(sort, SortFields()...), fileComparators)
}
