package security

// ReasonCode is the closed set of validation outcomes. New codes are a
// reviewed change, never an ad-hoc string.
type ReasonCode string

const (
	ReasonNotReadOnly        ReasonCode = "not_read_only"
	ReasonForbiddenKeyword   ReasonCode = "forbidden_keyword"
	ReasonDestructiveIntent  ReasonCode = "destructive_intent"
	ReasonMissingTenantScope ReasonCode = "missing_tenant_scope"
	ReasonMissingTimezone    ReasonCode = "missing_timezone_conversion"
)

// Rejection is one failed validation layer. Token carries the offending
// token or table name for diagnostics; it is never shown to the end user.
type Rejection struct {
	Code  ReasonCode
	Token string
}

// Warning is a non-blocking finding attached to an accepted verdict.
type Warning struct {
	Code   ReasonCode
	Detail string
}

// NormalizedQuery is the capability produced by a successful validation: the
// normalized statement bound to the tenant it was validated for. The fields
// are unexported so the only way to obtain one is Validator.Validate; the
// executor takes this type, which makes "validate for A, execute for B"
// inexpressible.
type NormalizedQuery struct {
	sql      string
	tenantID int64
}

// SQL returns the normalized statement text.
func (q NormalizedQuery) SQL() string { return q.sql }

// TenantID returns the tenant the statement was validated for.
func (q NormalizedQuery) TenantID() int64 { return q.tenantID }

// Zero reports whether the capability was never issued by a validator.
func (q NormalizedQuery) Zero() bool { return q.sql == "" }

// Verdict is the complete outcome of validating one candidate query. All
// layers run even after the first rejection so the verdict is a full
// diagnostic; callers act on First().
type Verdict struct {
	rejections []Rejection
	warnings   []Warning
	normalized NormalizedQuery
}

// Accepted reports whether the candidate passed every blocking layer.
func (v Verdict) Accepted() bool { return len(v.rejections) == 0 }

// Normalized returns the execution capability. ok is false on rejection.
func (v Verdict) Normalized() (NormalizedQuery, bool) {
	if !v.Accepted() {
		return NormalizedQuery{}, false
	}
	return v.normalized, true
}

// First returns the highest-priority rejection (layers run in fixed order).
func (v Verdict) First() (Rejection, bool) {
	if len(v.rejections) == 0 {
		return Rejection{}, false
	}
	return v.rejections[0], true
}

// Rejections returns every layer failure, in layer order.
func (v Verdict) Rejections() []Rejection { return v.rejections }

// Warnings returns non-blocking findings.
func (v Verdict) Warnings() []Warning { return v.warnings }
