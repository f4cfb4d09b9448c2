// Package query provides the declarative query plan model.
//
// This package contains plan types and pure analysis functions only; it
// performs no execution. The engine package builds plans through its
// fluent builder and interprets them; the sqlexport package renders them
// as SQL text. Plans are also constructible from serialized definitions
// (Def) loaded from CUE, YAML, or JSON files.
//
// A Plan is the immutable snapshot produced by Explain(): the only input
// accepted by the SQL exporter and the performance analyzer.
//
// Calculated fields use a sealed variant (CalcExpr): only CaseExpr,
// FuncExpr, and ConvertExpr implement it. The marker method pattern
// prevents external implementations and enables exhaustive type switches
// in the engine and exporter.
package query
