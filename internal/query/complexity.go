package query

// Complexity buckets a plan's weighted feature count.
type Complexity string

const (
	ComplexityLow    Complexity = "LOW"
	ComplexityMedium Complexity = "MEDIUM"
	ComplexityHigh   Complexity = "HIGH"
)

// Fixed feature weights for the complexity score.
const (
	weightFilter      = 1
	weightSort        = 2
	weightJoin        = 5
	weightGroupField  = 3
	weightAggregation = 2
	weightHaving      = 2
	weightSubquery    = 4
	weightUnion       = 3
	weightCalculated  = 2
)

// ComplexityScore is the weighted sum over the plan's feature counts.
// Nested plans are not descended into; the subquery and union weights
// already price the nesting.
func (p *Plan) ComplexityScore() int {
	return len(p.Filters)*weightFilter +
		len(p.Sorts)*weightSort +
		len(p.Joins)*weightJoin +
		len(p.GroupBy)*weightGroupField +
		len(p.Aggregations)*weightAggregation +
		len(p.Having)*weightHaving +
		len(p.Subqueries)*weightSubquery +
		len(p.Unions)*weightUnion +
		len(p.Calculated)*weightCalculated
}

// EstimateComplexity maps the score to LOW (≤2), MEDIUM (≤8), or HIGH.
func (p *Plan) EstimateComplexity() Complexity {
	score := p.ComplexityScore()
	switch {
	case score <= 2:
		return ComplexityLow
	case score <= 8:
		return ComplexityMedium
	default:
		return ComplexityHigh
	}
}
