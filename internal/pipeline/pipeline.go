// Package pipeline orchestrates one question through a forward-only state
// machine: intent scan, classification, query generation, guardrail
// validation, scoped execution, shaping, interpretation. States never move
// backwards and every question ends in exactly one terminal state.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/ai"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/answer"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/schema"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/security"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/store"
)

// State names a position in the question lifecycle.
type State string

const (
	StateReceived         State = "received"
	StateClassified       State = "classified"
	StateRoutedToRegister State = "routed_to_register"
	StateGenerating       State = "generating"
	StateValidating       State = "validating"
	StateExecuting        State = "executing"
	StateInterpreting     State = "interpreting"
	StateAnswered         State = "answered"
	StateRejected         State = "rejected"
	StateFailed           State = "failed"
)

// Collaborator is the generative surface the pipeline depends on. Its output
// carries no safety contract; everything it returns is re-checked here.
type Collaborator interface {
	ClassifyIntent(ctx context.Context, utterance string) (ai.Intent, error)
	GenerateQuery(ctx context.Context, in ai.GenerationInput) (string, error)
	InterpretResult(ctx context.Context, question, resultsJSON string) (string, error)
}

// QueryExecutor runs a validated statement under tenant scope.
type QueryExecutor interface {
	Execute(ctx context.Context, nq security.NormalizedQuery, rowCap int, timeout time.Duration) (*store.ExecutionResult, error)
}

// SettingsSource resolves per-tenant presentation settings.
type SettingsSource interface {
	Lookup(ctx context.Context, tenantID int64) store.TenantSettings
}

// Options bound each stage. Zero values fall back to defaults in New.
type Options struct {
	RowCap           int
	ClassifyTimeout  time.Duration
	GenerateTimeout  time.Duration
	ExecuteTimeout   time.Duration
	InterpretTimeout time.Duration
}

// Outcome is the terminal result of one question. Answer is the complete
// user-visible text; internal diagnostics travel on the returned error.
type Outcome struct {
	State  State
	Intent ai.Intent
	Answer string
}

// Pipeline wires the stages together. It holds no per-question state; one
// Pipeline serves all tenants concurrently.
type Pipeline struct {
	collab    Collaborator
	exec      QueryExecutor
	settings  SettingsSource
	validator *security.Validator
	schema    *schema.Context
	audit     *security.AuditLogger
	opts      Options
}

func New(collab Collaborator, exec QueryExecutor, settings SettingsSource, validator *security.Validator, sc *schema.Context, audit *security.AuditLogger, opts Options) *Pipeline {
	if opts.RowCap <= 0 {
		opts.RowCap = 100
	}
	if opts.ClassifyTimeout <= 0 {
		opts.ClassifyTimeout = 10 * time.Second
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 20 * time.Second
	}
	if opts.ExecuteTimeout <= 0 {
		opts.ExecuteTimeout = 10 * time.Second
	}
	if opts.InterpretTimeout <= 0 {
		opts.InterpretTimeout = 20 * time.Second
	}
	return &Pipeline{
		collab:    collab,
		exec:      exec,
		settings:  settings,
		validator: validator,
		schema:    sc,
		audit:     audit,
		opts:      opts,
	}
}

// AnswerQuestion drives one question to a terminal state. The returned
// Outcome always carries a complete user-visible answer (except for the
// register route, which the transport layer hands off); the error, when
// non-nil, is a *Error with the internal code and reason.
func (p *Pipeline) AnswerQuestion(ctx context.Context, tenantID int64, question string, refTime time.Time) (Outcome, error) {
	start := time.Now()
	if refTime.IsZero() {
		refTime = time.Now().UTC()
	}

	finish := func(o Outcome, err error) (Outcome, error) {
		code, reason := "", ""
		var perr *Error
		if errors.As(err, &perr) {
			code, reason = string(perr.Code), perr.Reason
		}
		p.audit.LogOutcome(tenantID, question, string(o.State), code, reason, time.Since(start))
		return o, err
	}

	// Surface-form scan runs before any model call: a question that asks for
	// a write never reaches the generator.
	if hit, stem := security.ScanDestructiveIntent(question); hit {
		p.audit.LogDestructiveIntent(tenantID, question, stem)
		return finish(
			Outcome{State: StateRejected, Answer: msgDestructiveRefusal},
			newError(CodeDestructiveIntent, stem, nil),
		)
	}

	intent := p.classify(ctx, question)
	switch intent {
	case ai.IntentRegister:
		return finish(Outcome{State: StateRoutedToRegister, Intent: intent}, nil)
	case ai.IntentUnknown:
		return finish(Outcome{State: StateAnswered, Intent: intent, Answer: msgClarify}, nil)
	}

	settings := p.settings.Lookup(ctx, tenantID)
	loc := answer.LocationFor(settings.Timezone)

	genCtx, genCancel := context.WithTimeout(ctx, p.opts.GenerateTimeout)
	candidate, err := p.collab.GenerateQuery(genCtx, ai.GenerationInput{
		Question:     question,
		SchemaPrompt: p.schema.PromptText(),
		TenantID:     tenantID,
		Timezone:     settings.Timezone,
		LocalDate:    answer.LocalDate(refTime, loc),
	})
	genCancel()
	if err != nil {
		return finish(
			Outcome{State: StateFailed, Intent: intent, Answer: msgUnavailable},
			newError(CodeGenerationFailed, "", err),
		)
	}

	// The generator's own refusal sentinel means it recognized a write
	// request the surface scan missed. Same refusal, same audit trail.
	if ai.IsActionNotAllowed(candidate) {
		p.audit.LogDestructiveIntent(tenantID, question, "generator_sentinel")
		return finish(
			Outcome{State: StateRejected, Intent: intent, Answer: msgDestructiveRefusal},
			newError(CodeDestructiveIntent, "generator_sentinel", nil),
		)
	}

	verdict := p.validator.Validate(candidate, tenantID)
	p.audit.LogVerdict(tenantID, candidate, verdict)
	for _, w := range verdict.Warnings() {
		log.Warn().
			Int64("tenant_id", tenantID).
			Str("code", string(w.Code)).
			Str("detail", w.Detail).
			Msg("validator warning on accepted query")
	}
	nq, ok := verdict.Normalized()
	if !ok {
		rejection, _ := verdict.First()
		return finish(
			Outcome{State: StateRejected, Intent: intent, Answer: msgGenericRefusal},
			newError(CodeQueryRejected, string(rejection.Code), nil),
		)
	}

	result, err := p.exec.Execute(ctx, nq, p.opts.RowCap, p.opts.ExecuteTimeout)
	if err != nil {
		code := CodeExecutionFault
		if errors.Is(err, store.ErrTimeout) {
			code = CodeExecutionTimeout
		}
		return finish(
			Outcome{State: StateFailed, Intent: intent, Answer: msgUnavailable},
			newError(code, "", err),
		)
	}

	payload := answer.Shape(result, p.schema, settings)

	intCtx, intCancel := context.WithTimeout(ctx, p.opts.InterpretTimeout)
	text, err := p.collab.InterpretResult(intCtx, question, payload.JSON())
	intCancel()
	if err != nil {
		// Interpretation is best-effort: the data is already safe and shaped,
		// so a model outage degrades to the templated summary.
		log.Warn().Err(err).Int64("tenant_id", tenantID).Msg("interpreter unavailable, using templated summary")
		return finish(Outcome{State: StateAnswered, Intent: intent, Answer: answer.TemplatedSummary(payload)}, nil)
	}

	return finish(Outcome{State: StateAnswered, Intent: intent, Answer: text}, nil)
}

// classify fails closed: any classifier error becomes IntentUnknown, which
// routes to the clarifying fallback instead of guessing a route.
func (p *Pipeline) classify(ctx context.Context, question string) ai.Intent {
	cCtx, cancel := context.WithTimeout(ctx, p.opts.ClassifyTimeout)
	defer cancel()
	intent, err := p.collab.ClassifyIntent(cCtx, question)
	if err != nil {
		log.Warn().Err(err).Msg("intent classification failed, treating as unknown")
		return ai.IntentUnknown
	}
	return intent
}
