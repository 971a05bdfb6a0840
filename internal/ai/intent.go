package ai

import "strings"

// Intent is the closed classification of a user utterance.
type Intent string

const (
	IntentRegister Intent = "register"
	IntentQuery    Intent = "query"
	IntentUnknown  Intent = "unknown"
)

// ParseIntent maps a raw model label to the closed enum. Anything the model
// says that is not an exact known label becomes Unknown — never a guess.
func ParseIntent(label string) Intent {
	cleaned := strings.ToLower(strings.TrimSpace(label))
	cleaned = strings.Trim(cleaned, `"'.`)
	switch cleaned {
	case "register":
		return IntentRegister
	case "query":
		return IntentQuery
	default:
		return IntentUnknown
	}
}
