package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/quarry/internal/record"
)

// RunWithGolden executes a scenario and compares a canonical snapshot
// of the result against testdata/golden/{scenario.Name}.golden.
//
// The snapshot covers the produced rows and any diagnostics, one per
// line, so golden diffs read row by row. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result := Run(scenario)

	var buf bytes.Buffer
	buf.WriteString("scenario: " + scenario.Name + "\n")
	buf.WriteString("rows:\n")
	for _, row := range result.Rows {
		buf.WriteString("  " + record.Canonical(row) + "\n")
	}
	if len(result.Diagnostics) > 0 {
		buf.WriteString("diagnostics:\n")
		for _, d := range result.Diagnostics {
			buf.WriteString("  [" + d.Stage + "] " + d.Message + "\n")
		}
	}

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, scenario.Name, buf.Bytes())
	return result
}
