package sqlexport

// Dialect names a SQL syntax variant targeted by the exporter.
type Dialect string

const (
	Standard   Dialect = "standard"
	MySQL      Dialect = "mysql"
	PostgreSQL Dialect = "postgresql"
	SQLite     Dialect = "sqlite"
)

// Dialects lists the supported dialects.
var Dialects = []Dialect{Standard, MySQL, PostgreSQL, SQLite}

// Valid reports whether d is a supported dialect.
func (d Dialect) Valid() bool {
	for _, known := range Dialects {
		if d == known {
			return true
		}
	}
	return false
}

// castType returns the dialect's cast target for a conversion class.
func (d Dialect) castType(class string) string {
	switch class {
	case "number":
		switch d {
		case MySQL:
			return "DECIMAL"
		case SQLite:
			return "REAL"
		default:
			return "NUMERIC"
		}
	case "string":
		switch d {
		case MySQL:
			return "CHAR"
		case Standard:
			return "VARCHAR"
		default:
			return "TEXT"
		}
	case "date":
		switch d {
		case MySQL, SQLite:
			return "DATETIME"
		default:
			return "TIMESTAMP"
		}
	default:
		return "TEXT"
	}
}

// lengthFunc returns the dialect's character-length function name.
func (d Dialect) lengthFunc() string {
	switch d {
	case MySQL:
		return "CHAR_LENGTH"
	case Standard:
		return "CHARACTER_LENGTH"
	default:
		return "LENGTH"
	}
}

// regexCondition renders a regex predicate for the dialect.
func (d Dialect) regexCondition(field, pattern string) string {
	if d == PostgreSQL {
		return field + " ~* " + pattern
	}
	return field + " REGEXP " + pattern
}

// stringAgg renders the dialect's string-aggregation call.
func (d Dialect) stringAgg(field string) string {
	switch d {
	case MySQL:
		return "GROUP_CONCAT(" + field + " SEPARATOR ', ')"
	case SQLite:
		return "GROUP_CONCAT(" + field + ", ', ')"
	default:
		return "STRING_AGG(" + field + ", ', ')"
	}
}

// pagination renders the dialect's result-window clause, or "" when the
// plan is unbounded with no offset. Standard SQL uses OFFSET..FETCH;
// the other three use LIMIT/OFFSET.
func (d Dialect) pagination(limit, offset int) string {
	if limit < 0 && offset == 0 {
		return ""
	}
	if d == Standard {
		clause := sprintf(" OFFSET %d ROWS", offset)
		if limit >= 0 {
			clause += sprintf(" FETCH NEXT %d ROWS ONLY", limit)
		}
		return clause
	}
	clause := ""
	if limit >= 0 {
		clause = sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		clause += sprintf(" OFFSET %d", offset)
	}
	return clause
}
