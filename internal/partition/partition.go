// Package partition extracts partition column values from a record and
// derives the on-disk directory they map to (spec.md §4.5).
package partition

import (
	"fmt"
	"path/filepath"

	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/rwerrors"
)

// Partition removes each configured column (in configured order) from rec
// and returns the directory those values map to, rooted at basePath, along
// with the record that remains after removal.
//
// The extracted string is placed literally in the path segment: it is not
// URL-escaped or quoted. Callers must ensure partition values do not contain
// path separators.
func Partition(basePath string, rec record.Record, columns []record.ColumnPath) (string, record.Record, error) {
	dir := basePath
	cur := rec

	for _, col := range columns {
		val, remaining, err := cur.Remove(col)
		if err != nil {
			return "", record.Record{}, err
		}

		if val == nil {
			return "", record.Record{}, rwerrors.NewBadPartition(fmt.Sprintf("missing field '%s'", col.String()))
		}

		switch v := val.(type) {
		case record.Null:
			return "", record.Record{}, rwerrors.NewBadPartition(fmt.Sprintf("null field '%s'", col.String()))
		case record.Binary:
			dir = filepath.Join(dir, fmt.Sprintf("%s=%s", col.String(), v.AsString()))
		default:
			return "", record.Record{}, rwerrors.NewBadPartition(fmt.Sprintf("non-string field '%s'", col.String()))
		}

		cur = remaining
	}

	return dir, cur, nil
}
