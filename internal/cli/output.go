package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/roach88/quarry/internal/engine"
	"github.com/roach88/quarry/internal/record"
)

// writeResult renders query results in the requested format. Text
// output is a fixed-width table over the union of row fields; JSON
// output is {data, count, warnings}.
func writeResult(w io.Writer, format string, rows []record.Record, diags []engine.Diagnostic) error {
	if format == "json" {
		payload := map[string]any{
			"data":  rows,
			"count": len(rows),
		}
		if rows == nil {
			payload["data"] = []record.Record{}
		}
		if len(diags) > 0 {
			payload["warnings"] = diags
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	for _, d := range diags {
		fmt.Fprintf(w, "%s [%s] %s\n", color.YellowString("warning:"), d.Stage, d.Message)
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "no rows")
		return nil
	}

	columns := columnUnion(rows)
	widths := columnWidths(columns, rows)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = pad(col, widths[i])
	}
	fmt.Fprintln(w, color.New(color.Bold).Sprint(strings.Join(header, "  ")))

	for _, rec := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = pad(cellString(rec, col), widths[i])
		}
		fmt.Fprintln(w, strings.Join(cells, "  "))
	}
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

// columnUnion collects every field name appearing in any row, sorted.
func columnUnion(rows []record.Record) []string {
	seen := make(map[string]struct{})
	var columns []string
	for _, rec := range rows {
		for k := range rec {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

func columnWidths(columns []string, rows []record.Record) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
		for _, rec := range rows {
			if n := len(cellString(rec, col)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func cellString(rec record.Record, col string) string {
	v, ok := rec.Get(col)
	if !ok || v == nil {
		return ""
	}
	return record.KeyString(v)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
