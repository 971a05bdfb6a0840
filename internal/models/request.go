package models

import (
	"errors"
	"strings"
	"time"
)

// AskRequest for POST /api/v1/ask. ReferenceTime is RFC 3339 and optional;
// the gateway sets it to the message timestamp so "hoy" means the same thing
// even if the request is replayed later.
type AskRequest struct {
	CallerID      int64  `json:"caller_id"`
	Question      string `json:"question"`
	ReferenceTime string `json:"reference_time,omitempty"`
}

func (r *AskRequest) Validate(maxQuestionLen int) error {
	if r.CallerID <= 0 {
		return errors.New("caller_id is required")
	}
	r.Question = strings.TrimSpace(r.Question)
	if r.Question == "" {
		return errors.New("question is required")
	}
	if maxQuestionLen > 0 && len(r.Question) > maxQuestionLen {
		return errors.New("question too long")
	}
	if r.ReferenceTime != "" {
		if _, err := time.Parse(time.RFC3339, r.ReferenceTime); err != nil {
			return errors.New("reference_time must be RFC 3339")
		}
	}
	return nil
}

// RefTime returns the parsed reference time, zero when absent.
func (r *AskRequest) RefTime() time.Time {
	if r.ReferenceTime == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, r.ReferenceTime)
	if err != nil {
		return time.Time{}
	}
	return t
}
