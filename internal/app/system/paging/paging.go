// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 100

// MaxPageSize bounds any caller-requested limit.
const MaxPageSize = 500

// Limit resolves the page size for a request: the "limit" query parameter
// when present and valid, otherwise def. The result is clamped to
// [1, MaxPageSize].
func Limit(r *http.Request, def int) int {
	n := def
	if s := query.Get(r, "limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			n = v
		}
	}
	return Clamp(n)
}

// Clamp bounds n to [1, MaxPageSize]; non-positive values become
// DefaultPageSize.
func Clamp(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// TrimPage trims rows fetched with limit size+1 down to size and reports
// whether another page exists.
func TrimPage[T any](rows *[]T, size int) (hasNext bool) {
	if len(*rows) > size {
		*rows = (*rows)[:size]
		return true
	}
	return false
}

// NextCursor encodes the keyset position after the last row, or "" when
// there is no next page.
func NextCursor[T any](rows []T, hasNext bool, keyFn func(T) string, idFn func(T) primitive.ObjectID) string {
	if !hasNext || len(rows) == 0 {
		return ""
	}
	last := rows[len(rows)-1]
	return wafflemongo.EncodeCursor(keyFn(last), idFn(last))
}

// DescendingWindow returns the filter that selects rows strictly after the
// cursor in (field desc, _id desc) order, or nil when the cursor is empty or
// malformed.
func DescendingWindow(field, cursor string) bson.M {
	if cursor == "" {
		return nil
	}
	c, ok := wafflemongo.DecodeCursor(cursor)
	if !ok {
		return nil
	}
	return wafflemongo.KeysetWindow(field, "lt", c.CI, c.ID)
}
