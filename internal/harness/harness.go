package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/quarry/internal/engine"
	"github.com/roach88/quarry/internal/record"
	"github.com/roach88/quarry/internal/store"
)

// Result holds everything a scenario run produced.
type Result struct {
	Passed      bool
	Rows        []record.Record
	Diagnostics []engine.Diagnostic
	Failures    []string
}

// Run executes a scenario against a fresh in-memory store and checks
// the produced rows against the expect clause. Row comparison uses
// canonical serialization and is order-sensitive.
func Run(scenario *Scenario) *Result {
	collector := &engine.Collector{}
	eng := engine.New(store.NewMemoryFrom(scenario.tables()), engine.WithSink(collector))

	rows := eng.ExecutePlan(context.Background(), scenario.Query.Plan())

	result := &Result{
		Rows:        rows,
		Diagnostics: collector.Diagnostics(),
	}

	expected := scenario.expectedRecords()
	if len(rows) != len(expected) {
		result.fail("expected %d rows, got %d", len(expected), len(rows))
	}
	for i := range expected {
		if i >= len(rows) {
			break
		}
		want := record.Canonical(expected[i])
		got := record.Canonical(rows[i])
		if want != got {
			result.fail("row %d: expected %s, got %s", i, want, got)
		}
	}

	for _, want := range scenario.ExpectWarnings {
		if !containsDiagnostic(result.Diagnostics, want) {
			result.fail("no diagnostic containing %q", want)
		}
	}

	result.Passed = len(result.Failures) == 0
	return result
}

func (r *Result) fail(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

func containsDiagnostic(diags []engine.Diagnostic, substr string) bool {
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}
