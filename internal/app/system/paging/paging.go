// internal/app/system/paging/paging.go

// Package paging implements keyset pagination over time-ordered lists
// (members by joined_at, feedback and notifications by created_at). Cursors
// encode the boundary row's sort timestamp plus its _id; _id is the tiebreak
// so rows created in the same millisecond page deterministically in
// insertion order.
package paging

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the default number of rows in paged lists.
const PageSize = 50

// LimitPlusOne returns PageSize+1 as int64 for look-ahead pagination
// (fetch one extra row to detect hasNext).
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// Cursor is a decoded pagination boundary.
type Cursor struct {
	At time.Time
	ID primitive.ObjectID
}

// EncodeCursor packs a row's sort timestamp and _id into an opaque token.
func EncodeCursor(at time.Time, id primitive.ObjectID) string {
	raw := strconv.FormatInt(at.UTC().UnixNano(), 10) + ":" + id.Hex()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor unpacks a token produced by EncodeCursor. Returns false for
// anything malformed; callers treat a bad cursor as "no cursor".
func DecodeCursor(token string) (Cursor, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, false
	}
	at, idHex, found := strings.Cut(string(raw), ":")
	if !found {
		return Cursor{}, false
	}
	nanos, err := strconv.ParseInt(at, 10, 64)
	if err != nil {
		return Cursor{}, false
	}
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return Cursor{}, false
	}
	return Cursor{At: time.Unix(0, nanos).UTC(), ID: id}, true
}

// Window describes one keyset query: the sort to apply and the cursor (if
// any) to window past.
type Window struct {
	// SortOrder is the effective Mongo sort for the query (1 or -1).
	SortOrder int
	// Reversed is true when paging backwards: rows come back in reverse
	// display order and the caller must reverse them after trimming.
	Reversed bool
	// Cursor is the decoded boundary, nil on the first page.
	Cursor *Cursor
}

// Keyset determines the query window for a list whose display order sorts
// the key field by base (1 ascending, -1 descending). A "before" cursor
// flips the query direction to fetch the preceding page.
func Keyset(base int, before, after string) Window {
	w := Window{SortOrder: base}
	if before != "" {
		w.SortOrder = -base
		w.Reversed = true
		if c, ok := DecodeCursor(before); ok {
			w.Cursor = &c
		}
	} else if after != "" {
		if c, ok := DecodeCursor(after); ok {
			w.Cursor = &c
		}
	}
	return w
}

// Filter returns the cursor condition for the query filter on sortField,
// or nil when there is no cursor.
func (w Window) Filter(sortField string) bson.M {
	if w.Cursor == nil {
		return nil
	}
	op := "$gt"
	if w.SortOrder < 0 {
		op = "$lt"
	}
	at := primitive.NewDateTimeFromTime(w.Cursor.At)
	return bson.M{"$or": []bson.M{
		{sortField: bson.M{op: at}},
		{sortField: at, "_id": bson.M{op: w.Cursor.ID}},
	}}
}

// ApplyToFind sets sort (with _id tiebreak) and the look-ahead limit.
func (w Window) ApplyToFind(find *options.FindOptions, sortField string) {
	find.SetSort(bson.D{
		{Key: sortField, Value: w.SortOrder},
		{Key: "_id", Value: w.SortOrder},
	}).SetLimit(LimitPlusOne())
}

// Result holds the output of TrimPage.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage trims a fetched slice after a look-ahead query. Call with the
// same before/after values passed to Keyset. It modifies the slice in place
// and returns pagination indicators. When paging backwards, Reverse the rows
// first so the look-ahead extra sits at the front, then TrimPage.
func TrimPage[T any](rows *[]T, before, after string) Result {
	orig := len(*rows)
	var res Result
	if before != "" {
		if orig > PageSize {
			*rows = (*rows)[1:]
			res.HasPrev = true
		}
		res.HasNext = true
	} else {
		if orig > PageSize {
			*rows = (*rows)[:PageSize]
			res.HasNext = true
		}
		res.HasPrev = after != ""
	}
	return res
}

// Reverse reverses a slice in place. Use after fetching with a "before"
// cursor to restore display order.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
