package engine

import (
	"fmt"
	"log/slog"
	"sync"
)

// Diagnostic is one non-fatal event raised during plan execution.
// Diagnostics replace ad hoc console warnings: tests assert on a
// collecting sink instead of capturing log output.
type Diagnostic struct {
	Stage   string
	Message string
}

// Pipeline stage names used in diagnostics.
const (
	StageStore    = "store"
	StageFilter   = "filter"
	StageJoin     = "join"
	StageGroup    = "group"
	StageSubquery = "subquery"
	StageUnion    = "union"
	StageCalc     = "calc"
	StageConvert  = "convert"
)

// Sink receives diagnostics. Implementations must be safe for use from
// a single goroutine; the engine itself never reports concurrently.
type Sink interface {
	Report(d Diagnostic)
}

// Collector is a Sink that retains every diagnostic, for tests and for
// surfacing warnings through the CLI and HTTP API.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// Report appends the diagnostic.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.diags...)
}

// Reset discards collected diagnostics.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = nil
}

// logSink forwards diagnostics to slog at warn level. The default sink
// when no collector is installed.
type logSink struct {
	logger *slog.Logger
}

func (s logSink) Report(d Diagnostic) {
	s.logger.Warn(d.Message, "stage", d.Stage)
}

func (e *Engine) reportf(stage, format string, args ...any) {
	e.diag.Report(Diagnostic{Stage: stage, Message: fmt.Sprintf(format, args...)})
}
