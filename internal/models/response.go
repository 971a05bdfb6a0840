package models

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// AskResponse is returned by POST /api/v1/ask. Answer is the complete
// user-visible text; State tells the gateway how the question ended. The
// register route returns no answer and the gateway runs its own flow.
type AskResponse struct {
	Status string `json:"status"`
	Intent string `json:"intent,omitempty"`
	State  string `json:"state"`
	Answer string `json:"answer,omitempty"`
}
