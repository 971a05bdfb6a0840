package security

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog/log"
)

// AuditLogger records security-relevant pipeline events. Question and
// statement text are hashed so refusals can be correlated and investigated
// without storing user content in logs.
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

func hashStr(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// LogDestructiveIntent records a question refused before generation because
// its surface form asked for a write.
func (a *AuditLogger) LogDestructiveIntent(tenantID int64, question, stem string) {
	if !a.enabled {
		return
	}
	log.Warn().
		Str("event", "destructive_intent").
		Int64("tenant_id", tenantID).
		Str("question_hash", hashStr(question)[:16]).
		Str("stem", stem).
		Msg("audit")
}

// LogVerdict records the full validation outcome for one candidate. The
// internal rejection code lands here even though the user only ever sees the
// generic refusal.
func (a *AuditLogger) LogVerdict(tenantID int64, sql string, v Verdict) {
	if !a.enabled {
		return
	}
	evt := log.Info().
		Str("event", "query_verdict").
		Int64("tenant_id", tenantID).
		Str("sql_hash", hashStr(sql)[:16]).
		Bool("accepted", v.Accepted())

	if r, ok := v.First(); ok {
		evt = evt.Str("rejection", string(r.Code)).Str("token", r.Token)
	}
	if ws := v.Warnings(); len(ws) > 0 {
		codes := make([]string, len(ws))
		for i, w := range ws {
			codes[i] = string(w.Code)
		}
		evt = evt.Strs("warnings", codes)
	}
	evt.Msg("audit")
}

// LogOutcome records the terminal state of one question. code and reason are
// empty on success.
func (a *AuditLogger) LogOutcome(tenantID int64, question, state, code, reason string, elapsed time.Duration) {
	if !a.enabled {
		return
	}
	evt := log.Info().
		Str("event", "pipeline_outcome").
		Int64("tenant_id", tenantID).
		Str("question_hash", hashStr(question)[:16]).
		Str("state", state).
		Dur("elapsed", elapsed)
	if code != "" {
		evt = evt.Str("error_code", code)
	}
	if reason != "" {
		evt = evt.Str("reason", reason)
	}
	evt.Msg("audit")
}
