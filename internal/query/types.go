package query

import (
	"github.com/roach88/quarry/internal/record"
)

// Operator identifies a single-condition comparison.
//
// Unknown operator strings are not rejected at plan-build time; the
// engine reports a diagnostic and evaluates the condition false.
type Operator string

const (
	OpEq         Operator = "eq"
	OpNeq        Operator = "neq"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpRegex      Operator = "regex"
	OpIn         Operator = "in"
	OpNotIn      Operator = "notIn"
	OpIsNull     Operator = "isNull"
	OpIsNotNull  Operator = "isNotNull"
	OpDateEq     Operator = "dateEquals"
	OpDateBefore Operator = "dateBefore"
	OpDateAfter  Operator = "dateAfter"
)

// Connective links two predicate evaluations in a condition chain.
//
// The connective stored on condition i governs how condition i+1 folds
// into the running result — NOT condition i itself. The first condition
// in a chain carries ConnNone. This shifted-by-one placement, combined
// with a plain left fold, means there is no AND/OR precedence: the chain
// reads strictly left to right, unlike SQL where AND binds tighter.
type Connective string

const (
	ConnNone Connective = ""
	ConnAnd  Connective = "AND"
	ConnOr   Connective = "OR"
)

// Filter is a single field/operator/value predicate in a WHERE or
// HAVING chain. Chains preserve declaration order.
type Filter struct {
	Field      string
	Op         Operator
	Value      any
	Connective Connective
}

// Direction orders a sort key.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// SortKey is one key of a multi-key sort. Later keys break ties among
// earlier keys.
type SortKey struct {
	Field     string
	Direction Direction
}

// JoinType selects the relational join flavour.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
	JoinFull  JoinType = "full"
)

// JoinSpec joins the current record sequence against a named table by
// equality on LocalField = right.JoinField. Joins apply in declaration
// order; the output of join k is the left input of join k+1.
type JoinSpec struct {
	Table      string
	JoinField  string
	LocalField string
	Type       JoinType
}

// SyntheticKey is the field name under which the matching right-side
// record is attached to each output row.
func (j JoinSpec) SyntheticKey() string {
	return j.Table + "_" + j.JoinField
}

// AggFunc names an aggregation function.
type AggFunc string

const (
	AggCount         AggFunc = "count"
	AggCountDistinct AggFunc = "countDistinct"
	AggSum           AggFunc = "sum"
	AggAvg           AggFunc = "avg"
	AggMin           AggFunc = "min"
	AggMax           AggFunc = "max"
	AggFirst         AggFunc = "first"
	AggLast          AggFunc = "last"
	AggStringAgg     AggFunc = "stringAgg"
)

// Aggregation reduces a group of records to one value stored under
// Alias. An empty Field with AggCount means COUNT(*). Aliases must be
// unique within a plan; a duplicate silently wins (last write).
type Aggregation struct {
	Func  AggFunc
	Field string
	Alias string
}

// SubqueryOp tests an outer record against a nested query's result set.
type SubqueryOp string

const (
	SubExists    SubqueryOp = "exists"
	SubNotExists SubqueryOp = "notExists"
	SubIn        SubqueryOp = "in"
	SubNotIn     SubqueryOp = "notIn"
)

// Subquery is a nested plan participating in the outer WHERE stage.
//
// The nested plan receives no outer-record context: it is re-executed
// independently for each outer record, so its result set is identical
// across rows. This is deliberate — true correlation is out of scope.
type Subquery struct {
	Field      string
	Op         SubqueryOp
	Plan       *Plan
	Connective Connective
}

// UnionEntry concatenates a nested plan's full result after the main
// pipeline completes. All preserves duplicates; otherwise the combined
// result is deduplicated by structural row equality.
type UnionEntry struct {
	Plan *Plan
	All  bool
}

// CalcExpr is the sealed calculated-field variant: exactly one of
// CaseExpr, FuncExpr, or ConvertExpr.
type CalcExpr interface {
	calcExpr() // marker - seals interface to this package
}

// FieldRef marks a CASE result or default as row-derived: the value is
// read from the named field of the row being evaluated, rather than
// taken as a literal.
type FieldRef string

// CaseBranch is one predicate→result arm of a CASE expression.
type CaseBranch struct {
	Field  string
	Op     Operator
	Value  any
	Result any // literal, or FieldRef for a row-derived result
}

// CaseExpr evaluates its branches in order using single-condition
// filter semantics; the first match wins. Default (literal or FieldRef)
// applies when no branch matches.
type CaseExpr struct {
	Branches []CaseBranch
	Default  any
}

func (CaseExpr) calcExpr() {}

// FuncExpr derives a value through a user callback. A panicking
// callback is caught and reported; the field is set to nil and the
// query continues.
type FuncExpr struct {
	Fn func(record.Record) any
}

func (FuncExpr) calcExpr() {}

// ConvertFunc names a built-in conversion.
type ConvertFunc string

const (
	ConvToString  ConvertFunc = "toString"
	ConvToNumber  ConvertFunc = "toNumber"
	ConvToDate    ConvertFunc = "toDate"
	ConvToBoolean ConvertFunc = "toBoolean"
	ConvLength    ConvertFunc = "length"
	ConvUpper     ConvertFunc = "upper"
	ConvLower     ConvertFunc = "lower"
	ConvTrim      ConvertFunc = "trim"
	ConvSubstring ConvertFunc = "substring"
	ConvConcat    ConvertFunc = "concat"
	ConvRound     ConvertFunc = "round"
	ConvFloor     ConvertFunc = "floor"
	ConvCeil      ConvertFunc = "ceil"
	ConvAbs       ConvertFunc = "abs"
)

// ConvertParams parameterizes the conversions that need arguments.
type ConvertParams struct {
	Start     int    `yaml:"start" json:"start"`         // substring
	Length    int    `yaml:"length" json:"length"`       // substring (0 = to end)
	With      any    `yaml:"with" json:"with"`           // concat suffix
	Precision int    `yaml:"precision" json:"precision"` // round
	Layout    string `yaml:"layout" json:"layout"`       // toDate (defaults applied by engine)
}

// ConvertExpr applies one named conversion to a source field. Unknown
// functions pass the value through unchanged with a warning.
type ConvertExpr struct {
	SourceField string
	Fn          ConvertFunc
	Params      ConvertParams
}

func (ConvertExpr) calcExpr() {}

// CalculatedField appends one derived value per surviving row, after
// pagination and before field projection.
type CalculatedField struct {
	Name string
	Expr CalcExpr
}
