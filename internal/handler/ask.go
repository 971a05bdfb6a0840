package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/middleware"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/models"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/pipeline"
)

// AskHandler handles POST /api/v1/ask: one natural-language question in, one
// terminal pipeline outcome out.
type AskHandler struct {
	pipe           *pipeline.Pipeline
	maxQuestionLen int
}

func NewAskHandler(pipe *pipeline.Pipeline, maxQuestionLen int) *AskHandler {
	return &AskHandler{pipe: pipe, maxQuestionLen: maxQuestionLen}
}

// Ask handles POST /api/v1/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(h.maxQuestionLen); err != nil {
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.pipe.AnswerQuestion(r.Context(), req.CallerID, req.Question, req.RefTime())
	if err != nil {
		// Refusals and fallbacks still carry a complete user-visible answer;
		// the error is internal diagnostics only.
		var perr *pipeline.Error
		if errors.As(err, &perr) {
			log.Info().
				Str("request_id", middleware.GetRequestID(r.Context())).
				Str("code", string(perr.Code)).
				Str("reason", perr.Reason).
				Msg("question ended in refusal or failure")
		} else {
			log.Error().
				Str("request_id", middleware.GetRequestID(r.Context())).
				Err(err).
				Msg("pipeline error")
		}
	}

	status := "success"
	if outcome.State == pipeline.StateRejected || outcome.State == pipeline.StateFailed {
		status = "refused"
	}
	models.WriteJSON(w, http.StatusOK, models.AskResponse{
		Status: status,
		Intent: string(outcome.Intent),
		State:  string(outcome.State),
		Answer: outcome.Answer,
	})
}
