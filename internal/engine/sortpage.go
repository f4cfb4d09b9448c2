package engine

import (
	"sort"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

// sortRows orders rows by the multi-key sort using the same type-aware
// comparator as the ordering operators. Later keys break ties among
// earlier keys; DESC applies as a sign flip. The sort is stable, so
// fully tied rows keep their input order.
//
// The slice sorted here is always the pipeline's own copy (fetch clones
// at entry), never an array owned by the store.
func (e *Engine) sortRows(rows []record.Record, keys []query.SortKey) []record.Record {
	if len(keys) == 0 {
		return rows
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range keys {
			cmp := compareValues(rows[i][key.Field], rows[j][key.Field])
			if key.Direction == query.Desc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return rows
}

// paginate slices [offset, offset+limit) after sorting. limit<0 means
// unbounded.
func paginate(rows []record.Record, offset, limit int) []record.Record {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
