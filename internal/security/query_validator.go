package security

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/schema"
)

// forbiddenKeywords are mutating, administrative, and transaction-control
// verbs. Matching is whole-token after quote-aware tokenization, so UPDATE
// inside a string literal does not trip it.
var forbiddenKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "DROP": true,
	"TRUNCATE": true, "ALTER": true, "CREATE": true, "RENAME": true,
	"GRANT": true, "REVOKE": true, "MERGE": true, "COPY": true,
	"CALL": true, "DO": true, "EXEC": true, "EXECUTE": true,
	"COMMIT": true, "ROLLBACK": true, "BEGIN": true, "SAVEPOINT": true,
	"SET": true, "RESET": true, "LOCK": true, "VACUUM": true,
	"REINDEX": true, "CLUSTER": true, "LISTEN": true, "NOTIFY": true,
	"REFRESH": true, "IMPORT": true, "INTO": true, // SELECT INTO writes a table
}

// forbiddenFunctions are system-introspection or side-effecting functions.
// Any pg_-prefixed identifier is rejected wholesale, mirroring the narrow
// denylist the source system used.
var forbiddenFunctions = map[string]bool{
	"LO_IMPORT": true, "LO_EXPORT": true, "DBLINK": true,
	"PGP_SYM_DECRYPT": true, "QUERY_TO_XML": true,
}

// keywords that terminate a table-reference clause while scanning FROM/JOIN.
var tableClauseStop = map[string]bool{
	"WHERE": true, "GROUP": true, "ORDER": true, "HAVING": true,
	"LIMIT": true, "OFFSET": true, "ON": true, "USING": true,
	"JOIN": true, "LEFT": true, "RIGHT": true, "INNER": true,
	"OUTER": true, "FULL": true, "CROSS": true, "UNION": true,
	"INTERSECT": true, "EXCEPT": true, "AS": true, "SELECT": true,
	"WITH": true, "FROM": true,
}

var dateLiteralRe = regexp.MustCompile(`^'\d{4}-\d{2}-\d{2}'$`)

// Validator runs the layered guardrail checks over a candidate query. It is
// stateless: given the same candidate text, tenant id, and schema context
// the verdict is identical every time.
type Validator struct {
	schema         *schema.Context
	strictTimezone bool
}

// NewValidator builds a validator bound to one schema context. strictTimezone
// escalates the missing-timezone-conversion warning to a hard rejection.
func NewValidator(sc *schema.Context, strictTimezone bool) *Validator {
	return &Validator{schema: sc, strictTimezone: strictTimezone}
}

// Validate checks a candidate statement for the given tenant. Layers run in
// fixed order and every layer is evaluated even after a rejection, so the
// verdict carries the complete diagnostic; only whitespace normalization and
// comment stripping are ever applied to the text, and both happen before any
// keyword check.
func (v *Validator) Validate(candidate string, tenantID int64) Verdict {
	normalized := normalizeWhitespace(stripComments(candidate))
	toks := tokenize(normalized)

	var verdict Verdict
	verdict.rejections = append(verdict.rejections, v.structuralLayer(toks)...)
	verdict.rejections = append(verdict.rejections, v.denylistLayer(toks)...)
	verdict.rejections = append(verdict.rejections, v.tenantScopeLayer(toks, tenantID)...)

	tzRejections, tzWarnings := v.timezoneLayer(toks)
	verdict.rejections = append(verdict.rejections, tzRejections...)
	verdict.warnings = append(verdict.warnings, tzWarnings...)

	if len(verdict.rejections) == 0 {
		verdict.normalized = NormalizedQuery{sql: normalized, tenantID: tenantID}
	}
	return verdict
}

// structuralLayer: exactly one statement, beginning with SELECT (or WITH for
// a CTE, which is still read-only; mutating CTE bodies are caught by the
// denylist layer).
func (v *Validator) structuralLayer(toks []token) []Rejection {
	var rejections []Rejection
	if len(toks) == 0 {
		return []Rejection{{Code: ReasonNotReadOnly, Token: ""}}
	}
	first := toks[0]
	if first.kind != tokWord {
		rejections = append(rejections, Rejection{Code: ReasonNotReadOnly, Token: first.text})
	} else if up := strings.ToUpper(first.text); up != "SELECT" && up != "WITH" {
		rejections = append(rejections, Rejection{Code: ReasonNotReadOnly, Token: first.text})
	}
	for _, t := range toks {
		if t.kind == tokSymbol && t.text == ";" {
			rejections = append(rejections, Rejection{Code: ReasonNotReadOnly, Token: ";"})
			break
		}
	}
	return rejections
}

// denylistLayer rejects whole-token matches of mutating/administrative
// keywords and dangerous function names. Literal and quoted-identifier
// contents are exempt by construction of the token stream.
func (v *Validator) denylistLayer(toks []token) []Rejection {
	var rejections []Rejection
	for _, t := range toks {
		if t.kind != tokWord {
			continue
		}
		up := strings.ToUpper(t.text)
		if forbiddenKeywords[up] || forbiddenFunctions[up] || strings.HasPrefix(up, "PG_") {
			rejections = append(rejections, Rejection{Code: ReasonForbiddenKeyword, Token: t.text})
		}
	}
	return rejections
}

type tableRef struct {
	name  string // lowercased physical name
	alias string // lowercased alias, or name when none
}

// tenantScopeLayer requires the caller's tenant predicate on every
// tenant-owned table the statement references. The generator is instructed
// to include the filter, but its compliance is never trusted. With more than
// one tenant table in play each predicate must be qualified by the table's
// name or alias; an unqualified predicate only counts when exactly one
// tenant table is referenced.
func (v *Validator) tenantScopeLayer(toks []token, tenantID int64) []Rejection {
	refs := collectTableRefs(toks)

	var tenantRefs []tableRef
	for _, r := range refs {
		if v.schema.IsTenantTable(r.name) {
			tenantRefs = append(tenantRefs, r)
		}
	}
	if len(tenantRefs) == 0 {
		return nil
	}

	preds := collectTenantPredicates(toks, tenantID)

	var rejections []Rejection
	for _, r := range tenantRefs {
		col := strings.ToLower(v.schema.TenantColumn(r.name))
		satisfied := false
		for _, p := range preds {
			if p.col != col {
				continue
			}
			switch p.qualifier {
			case r.alias, r.name:
				satisfied = true
			case "":
				if len(tenantRefs) == 1 {
					satisfied = true
				}
			}
			if satisfied {
				break
			}
		}
		if !satisfied {
			rejections = append(rejections, Rejection{Code: ReasonMissingTenantScope, Token: r.name})
		}
	}
	return rejections
}

// timezoneLayer flags date predicates over stored UTC timestamp columns that
// lack an explicit AT TIME ZONE conversion. Dropping a day boundary is a
// correctness bug rather than a safety bug, so the default outcome is a
// warning; strict mode turns it into a rejection.
func (v *Validator) timezoneLayer(toks []token) ([]Rejection, []Warning) {
	var tsCol string
	for _, t := range toks {
		if t.kind == tokWord && v.schema.IsTimestampColumn(t.text) {
			tsCol = t.text
			break
		}
	}
	if tsCol == "" {
		return nil, nil
	}

	hasDateCoercion := false
	hasConversion := false
	for i, t := range toks {
		if t.kind == tokWord {
			up := strings.ToUpper(t.text)
			switch {
			case (up == "DATE" || up == "DATE_TRUNC") && i+1 < len(toks) && toks[i+1].kind == tokSymbol && toks[i+1].text == "(":
				hasDateCoercion = true
			case up == "AT" && i+2 < len(toks) &&
				strings.EqualFold(toks[i+1].text, "TIME") && strings.EqualFold(toks[i+2].text, "ZONE"):
				hasConversion = true
			case up == "TIMEZONE" && i+1 < len(toks) && toks[i+1].kind == tokSymbol && toks[i+1].text == "(":
				hasConversion = true
			}
		}
		if t.kind == tokSymbol && t.text == "::" && i+1 < len(toks) && strings.EqualFold(toks[i+1].text, "date") {
			hasDateCoercion = true
		}
		if t.kind == tokString && dateLiteralRe.MatchString(t.text) {
			hasDateCoercion = true
		}
	}

	if !hasDateCoercion || hasConversion {
		return nil, nil
	}
	if v.strictTimezone {
		return []Rejection{{Code: ReasonMissingTimezone, Token: tsCol}}, nil
	}
	return nil, []Warning{{
		Code:   ReasonMissingTimezone,
		Detail: "date predicate over UTC column " + tsCol + " without AT TIME ZONE conversion",
	}}
}

// collectTableRefs extracts (table, alias) pairs following FROM and JOIN.
// Subqueries are skipped; their inner FROM clauses are reached by the same
// linear scan.
func collectTableRefs(toks []token) []tableRef {
	var refs []tableRef
	for i := 0; i < len(toks); i++ {
		if toks[i].kind != tokWord {
			continue
		}
		up := strings.ToUpper(toks[i].text)
		if up != "FROM" && up != "JOIN" {
			continue
		}
		j := i + 1
		for j < len(toks) {
			if toks[j].kind == tokSymbol && toks[j].text == "(" {
				break // derived table; inner refs found by the outer loop
			}
			if toks[j].kind != tokWord {
				break
			}
			name := strings.ToLower(toks[j].text)
			j++
			// schema-qualified name: keep the last segment
			for j+1 < len(toks) && toks[j].kind == tokSymbol && toks[j].text == "." && toks[j+1].kind == tokWord {
				name = strings.ToLower(toks[j+1].text)
				j += 2
			}
			alias := name
			if j < len(toks) && toks[j].kind == tokWord && strings.ToUpper(toks[j].text) == "AS" {
				j++
			}
			if j < len(toks) && toks[j].kind == tokWord && !tableClauseStop[strings.ToUpper(toks[j].text)] {
				alias = strings.ToLower(toks[j].text)
				j++
			}
			refs = append(refs, tableRef{name: name, alias: alias})

			// comma-separated FROM list
			if up == "FROM" && j < len(toks) && toks[j].kind == tokSymbol && toks[j].text == "," {
				j++
				continue
			}
			break
		}
	}
	return refs
}

type tenantPredicate struct {
	qualifier string // alias or table name, "" when unqualified
	col       string
}

// collectTenantPredicates finds equality predicates binding a column to the
// caller's numeric tenant id, in either operand order.
func collectTenantPredicates(toks []token, tenantID int64) []tenantPredicate {
	id := strconv.FormatInt(tenantID, 10)
	var preds []tenantPredicate
	for i := 0; i < len(toks); i++ {
		if toks[i].kind != tokSymbol || toks[i].text != "=" {
			continue
		}
		// col = id
		if col, qual, ok := columnBefore(toks, i); ok && i+1 < len(toks) &&
			toks[i+1].kind == tokNumber && toks[i+1].text == id {
			preds = append(preds, tenantPredicate{qualifier: qual, col: col})
		}
		// id = col
		if i-1 >= 0 && toks[i-1].kind == tokNumber && toks[i-1].text == id && i+1 < len(toks) {
			if col, qual, ok := columnAfter(toks, i); ok {
				preds = append(preds, tenantPredicate{qualifier: qual, col: col})
			}
		}
	}
	return preds
}

func columnBefore(toks []token, eq int) (col, qualifier string, ok bool) {
	if eq-1 < 0 || toks[eq-1].kind != tokWord {
		return "", "", false
	}
	col = strings.ToLower(toks[eq-1].text)
	if eq-3 >= 0 && toks[eq-2].kind == tokSymbol && toks[eq-2].text == "." && toks[eq-3].kind == tokWord {
		qualifier = strings.ToLower(toks[eq-3].text)
	}
	return col, qualifier, true
}

func columnAfter(toks []token, eq int) (col, qualifier string, ok bool) {
	if eq+1 >= len(toks) || toks[eq+1].kind != tokWord {
		return "", "", false
	}
	if eq+3 < len(toks) && toks[eq+2].kind == tokSymbol && toks[eq+2].text == "." && toks[eq+3].kind == tokWord {
		return strings.ToLower(toks[eq+3].text), strings.ToLower(toks[eq+1].text), true
	}
	return strings.ToLower(toks[eq+1].text), "", true
}
