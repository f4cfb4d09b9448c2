package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/roach88/quarry/internal/record"
)

// Pebble stores tables in a pebble key-value database, one JSON-encoded
// row per key. Keys are "t/{table}/{seq}" with a zero-padded sequence
// so iteration order is insertion order.
type Pebble struct {
	db *pebble.DB
}

// OpenPebble opens (or creates) a pebble database at dir.
func OpenPebble(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %q: %w", dir, err)
	}
	return &Pebble{db: db}, nil
}

// Close closes the database.
func (p *Pebble) Close() error {
	return p.db.Close()
}

// GetTable returns the named table's rows in key order. An absent
// prefix is an empty sequence, per the Provider contract.
func (p *Pebble) GetTable(_ context.Context, name string) ([]record.Record, error) {
	prefix := []byte("t/" + name + "/")
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate table %q: %w", name, err)
	}
	defer iter.Close()

	var out []record.Record
	for iter.First(); iter.Valid(); iter.Next() {
		var raw map[string]any
		if err := json.Unmarshal(iter.Value(), &raw); err != nil {
			return nil, fmt.Errorf("decode row %q: %w", iter.Key(), err)
		}
		out = append(out, record.Record(raw))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate table %q: %w", name, err)
	}
	return out, nil
}

// PutTable replaces the named table's rows in one batch.
func (p *Pebble) PutTable(name string, rows []record.Record) error {
	batch := p.db.NewBatch()
	defer batch.Close()

	prefix := []byte("t/" + name + "/")
	if err := batch.DeleteRange(prefix, prefixEnd(prefix), nil); err != nil {
		return fmt.Errorf("clear table %q: %w", name, err)
	}
	for i, rec := range rows {
		data, err := json.Marshal(map[string]any(rec))
		if err != nil {
			return fmt.Errorf("encode row %d of %q: %w", i, name, err)
		}
		key := fmt.Sprintf("t/%s/%08d", name, i)
		if err := batch.Set([]byte(key), data, nil); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i, name, err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit table %q: %w", name, err)
	}
	return nil
}

// prefixEnd returns the smallest key greater than every key with the
// given prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
