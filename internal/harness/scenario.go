package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

// Scenario defines a conformance test scenario: a dataset, a query to
// run over it, and the rows the query must return.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name for RunWithGolden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dataset maps table names to their rows. Each run seeds a fresh
	// in-memory store from this map.
	Dataset map[string][]map[string]any `yaml:"dataset"`

	// Query is the serializable query definition to execute.
	Query query.Def `yaml:"query"`

	// Expect lists the rows the query must produce, in order. Rows are
	// compared by canonical serialization, so key order and numeric
	// representation do not matter.
	Expect []map[string]any `yaml:"expect"`

	// ExpectWarnings, when set, requires at least one diagnostic whose
	// message contains each listed substring.
	ExpectWarnings []string `yaml:"expect_warnings,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	if s.Query.Table == "" {
		return nil, fmt.Errorf("scenario %s: query has no table", path)
	}
	return &s, nil
}

// tables converts the YAML dataset into store-ready records.
func (s *Scenario) tables() map[string][]record.Record {
	out := make(map[string][]record.Record, len(s.Dataset))
	for name, rows := range s.Dataset {
		recs := make([]record.Record, len(rows))
		for i, row := range rows {
			recs[i] = record.Record(row)
		}
		out[name] = recs
	}
	return out
}

// expectedRecords converts the expect clause into records.
func (s *Scenario) expectedRecords() []record.Record {
	out := make([]record.Record, len(s.Expect))
	for i, row := range s.Expect {
		out[i] = record.Record(row)
	}
	return out
}
