package pipeline

import "fmt"

// Code is the closed pipeline error taxonomy. Lower layers return structured
// outcomes; only the orchestrator maps codes to user-visible phrasing, and
// raw engine or model error text never reaches the end user.
type Code string

const (
	CodeClassificationFailed Code = "classification_failed"
	CodeDestructiveIntent    Code = "destructive_intent_detected"
	CodeGenerationFailed     Code = "generation_failed"
	CodeQueryRejected        Code = "query_rejected"
	CodeExecutionTimeout     Code = "execution_timeout"
	CodeExecutionFault       Code = "execution_fault"
	CodeInterpretationFailed Code = "interpretation_failed"
)

// Error is a terminal pipeline failure. Reason carries the internal detail
// (e.g. the validator's rejection code) for diagnostics and audit only.
type Error struct {
	Code   Code
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("pipeline: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("pipeline: %s", e.Code)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(code Code, reason string, cause error) *Error {
	return &Error{Code: code, Reason: reason, cause: cause}
}

// Fixed user-facing vocabulary. Validator rejections all share one generic
// refusal so a probing caller learns nothing about which layer fired.
const (
	msgDestructiveRefusal = "⛔ Lo siento, soy un analista de datos y solo puedo leer y consultar tu información. Para borrar o modificar datos, usa los comandos manuales o el menú."
	msgGenericRefusal     = "😅 No pude procesar tu consulta. Intenta reformularla o usa comandos específicos como /reporte_mes."
	msgClarify            = "🤔 No estoy seguro de qué necesitas. ¿Quieres registrar un gasto o consultar tu información? Por ejemplo: \"¿Cuánto gasté este mes?\""
	msgUnavailable        = "😅 No pude completar tu consulta en este momento. Intenta nuevamente en unos minutos."
)
