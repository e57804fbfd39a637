// Package sorter parses sort strings such as "size:desc,originalName:asc" and applies them
// to in-memory slices.
package sorter

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

type (
	SortOpts []Opt

	SortDirection string
)

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"

	// expectedPartsCount is the expected number of parts in a sort option (field:direction).
	expectedPartsCount = 2
)

// MakeFromStr parses a sorting string (e.g., "size:desc,key:asc") into a slice of Opt.
// Invalid pairs and fields missing from allowedFields are dropped. Direction is case-insensitive.
func MakeFromStr(sortString string, allowedFields ...string) SortOpts {
	if sortString == "" {
		return nil
	}

	var options []Opt
	pairs := strings.SplitSeq(sortString, ",")
	for pair := range pairs {
		parts := strings.Split(pair, ":")
		if len(parts) != expectedPartsCount {
			continue
		}

		key := strings.TrimSpace(parts[0])
		if !slices.Contains(allowedFields, key) {
			continue
		}

		direction := strings.ToLower(strings.TrimSpace(parts[1]))
		if direction != string(Asc) && direction != string(Desc) {
			continue
		}

		options = append(options, Opt{
			F: key,
			D: SortDirection(direction),
		})
	}

	return options
}

// Make creates a slice of Opt from a variadic list of Opt.
func Make(sortOptions ...Opt) SortOpts {
	return sortOptions
}

// Opt represents a single sorting option, consisting of a field and a direction.
type Opt struct {
	F string        // F is the field to sort by.
	D SortDirection // D is the sorting direction (asc or desc).
}

// Comparators maps a field name to a three-way comparison of two items on that field.
type Comparators[T any] map[string]func(a, b T) int

// Fields lists the field names cmp can sort by.
func (cmp Comparators[T]) Fields() []string {
	fields := lo.Keys(cmp)
	slices.Sort(fields)
	return fields
}

// Apply sorts items in place by opts, earlier options taking precedence. The sort is stable,
// so items equal on every option keep their order. Options with no comparator are ignored.
func Apply[T any](items []T, opts SortOpts, cmp Comparators[T]) {
	if len(opts) == 0 {
		return
	}

	slices.SortStableFunc(items, func(a, b T) int {
		for _, o := range opts {
			fn, ok := cmp[o.F]
			if !ok {
				continue
			}
			c := fn(a, b)
			if o.D == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}
