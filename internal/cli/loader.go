package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
	"github.com/roach88/quarry/internal/store"
)

// LoadQueryDef reads a query definition from a .cue, .yaml/.yml, or
// .json file, by extension.
func LoadQueryDef(path string) (*query.Def, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query file: %w", err)
	}

	var def query.Def
	switch ext := filepath.Ext(path); ext {
	case ".cue":
		ctx := cuecontext.New()
		v := ctx.CompileBytes(data)
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("compile %s: %w", path, err)
		}
		if err := v.Decode(&def); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported query file extension %q (want .cue, .yaml, or .json)", ext)
	}

	if def.Table == "" {
		return nil, fmt.Errorf("%s: query definition has no table", path)
	}
	return &def, nil
}

// LoadDataset reads a YAML file mapping table names to row lists into
// an in-memory store.
func LoadDataset(path string) (*store.Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var raw map[string][]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}

	tables := make(map[string][]record.Record, len(raw))
	for name, rows := range raw {
		recs := make([]record.Record, len(rows))
		for i, row := range rows {
			recs[i] = record.Record(row)
		}
		tables[name] = recs
	}
	return store.NewMemoryFrom(tables), nil
}

// OpenStore resolves the mutually exclusive store flags to a provider.
// Exactly one of dataset/sqlite/pebbleDir must be set. The returned
// closer is nil for the in-memory backend.
func OpenStore(dataset, sqlite, pebbleDir string) (store.Provider, func() error, error) {
	set := 0
	for _, s := range []string{dataset, sqlite, pebbleDir} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, nil, fmt.Errorf("exactly one of --data, --db, or --pebble is required")
	}

	switch {
	case dataset != "":
		m, err := LoadDataset(dataset)
		if err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	case sqlite != "":
		s, err := store.OpenSQLite(sqlite)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		p, err := store.OpenPebble(pebbleDir)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	}
}
