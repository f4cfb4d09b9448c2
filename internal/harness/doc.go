// Package harness provides a conformance testing framework for the query
// engine.
//
// Scenarios are YAML files pairing a dataset (tables of rows) with a
// serializable query definition and the rows the query must produce.
// Each scenario runs against a fresh in-memory store, so runs are
// isolated and deterministic.
//
// Golden-file comparison is available through RunWithGolden: the result
// snapshot (rows plus any diagnostics) is serialized canonically and
// compared against testdata/golden/{scenario.Name}.golden. Regenerate
// golden files with:
//
//	go test ./internal/harness -update
package harness
