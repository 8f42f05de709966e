package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	scherrors "scholar/internal/errors"
	"scholar/internal/id"
	"scholar/internal/llm"
	"scholar/internal/logging"
	"scholar/internal/observability"
	"scholar/internal/review"
	jsonx "scholar/internal/shared/json"
	"scholar/internal/store"
)

const (
	msgMissingProposal = "Please provide a research proposal text"
	msgMissingModel    = "Model name is required when using custom API settings"
	msgBadTemperature  = "Temperature must be between 0 and 2"
	msgNoAPI           = "No API configured. Please set environment variables (DEEPSEEK_API_KEY or OPENAI_API_KEY) or use custom API settings in the web interface."
)

type evaluateRequest struct {
	ProposalText    string       `json:"proposal_text"`
	CallForProposal string       `json:"call_for_proposal"`
	APISettings     *APISettings `json:"api_settings"`
}

type turnPayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type evaluatePayload struct {
	Success         bool                        `json:"success"`
	Review          map[string]any              `json:"review"`
	ScoringCriteria map[string]review.Criterion `json:"scoring_criteria"`
	ThinkingProcess []turnPayload               `json:"thinking_process"`
	EvaluationID    string                      `json:"evaluation_id"`
	Aggregation     *review.AggregationReport   `json:"aggregation,omitempty"`
	Truncated       bool                        `json:"truncated,omitempty"`
}

type evaluateOutcome struct {
	payload *evaluatePayload
	err     error
}

func (s *Server) handleEvaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ProposalText) == "" {
		errorJSON(c, http.StatusBadRequest, msgMissingProposal)
		return
	}

	temperature := s.deps.Review.Temperature
	gen := s.deps.Generator
	modelLabel := s.deps.ModelLabel
	if settings := req.APISettings; settings != nil {
		if settings.custom() && strings.TrimSpace(settings.ModelName) == "" {
			errorJSON(c, http.StatusBadRequest, msgMissingModel)
			return
		}
		if settings.Temperature != nil {
			if *settings.Temperature < 0 || *settings.Temperature > 2 {
				errorJSON(c, http.StatusBadRequest, msgBadTemperature)
				return
			}
			temperature = *settings.Temperature
		}
		if settings.custom() {
			custom, err := s.deps.Factory(*settings)
			if err != nil {
				errorJSON(c, http.StatusBadRequest, err.Error())
				return
			}
			gen, modelLabel = custom, settings.ModelName
		}
	}
	if gen == nil {
		errorJSON(c, http.StatusBadRequest, msgNoAPI)
		return
	}

	reviewReq, err := s.reviewRequest(req, temperature)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	evaluationID := id.NewEvaluationID()
	ctx := observability.ContextWithReviewID(c.Request.Context(), evaluationID)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan evaluateOutcome, 1)
	go func() {
		payload, err := s.runReview(ctx, gen, modelLabel, evaluationID, req, reviewReq)
		done <- evaluateOutcome{payload: payload, err: err}
	}()

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ticker := time.NewTicker(s.deps.Server.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case out := <-done:
			s.writeFinal(c, out)
			return
		case <-ticker.C:
			if _, err := c.Writer.Write([]byte(" ")); err != nil {
				s.logger.Warn("heartbeat write failed for %s: %v", evaluationID, err)
				return
			}
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			s.logger.Warn("client went away during %s", evaluationID)
			return
		}
	}
}

func (s *Server) reviewRequest(req evaluateRequest, temperature float64) (review.Request, error) {
	cfg := s.deps.Review
	rubric, err := review.ParseRubricKind(cfg.Rubric)
	if err != nil {
		return review.Request{}, err
	}
	polarity, err := review.ParsePolarity(cfg.Polarity)
	if err != nil {
		return review.Request{}, err
	}
	return review.Request{
		Proposal:            req.ProposalText,
		CallForProposal:     req.CallForProposal,
		Rubric:              rubric,
		Polarity:            polarity,
		NumFewShot:          cfg.NumFewShot,
		EnsembleSize:        cfg.EnsembleSize,
		NumReflections:      cfg.NumReflections,
		Temperature:         temperature,
		EnsembleTemperature: cfg.EnsembleTemperature,
		ReturnHistory:       true,
	}, nil
}

func (s *Server) runReview(ctx context.Context, gen llm.Generator, model, evaluationID string, req evaluateRequest, reviewReq review.Request) (*evaluatePayload, error) {
	logger := logging.WithReviewID(s.logger, evaluationID)
	opts := []review.Option{
		review.WithLogger(logger),
		review.WithMaxProposalTokens(s.deps.Review.MaxProposalTokens),
		review.WithTimeout(s.deps.Review.Timeout),
	}
	if obs := s.deps.Obs; obs != nil {
		opts = append(opts, review.WithMetrics(obs.Review), review.WithTracer(obs.Tracer))
	}
	reviewer, err := review.NewReviewer(gen, opts...)
	if err != nil {
		return nil, err
	}

	res, err := reviewer.Review(ctx, reviewReq)
	if err != nil {
		return nil, err
	}

	criteria := res.Rubric.Criteria()
	record := res.Record.Clone()
	for key, crit := range criteria {
		if _, ok := record[key]; ok {
			record[key+"_criteria"] = crit
		}
	}
	turns := make([]turnPayload, 0, len(res.Transcript))
	stored := make([]store.Turn, 0, len(res.Transcript))
	for _, m := range res.Transcript {
		turns = append(turns, turnPayload{Role: string(m.Role), Content: m.Content})
		stored = append(stored, store.Turn{Role: string(m.Role), Content: m.Content})
	}

	if _, err := s.deps.Store.SaveEvaluation(ctx, store.Evaluation{
		ID:              evaluationID,
		ProposalText:    req.ProposalText,
		CallForProposal: req.CallForProposal,
		Review:          res.Record,
		ThinkingProcess: stored,
		Model:           model,
	}); err != nil {
		logger.Error("failed to log evaluation: %v", err)
	}

	logger.Info("review complete: %s", res)
	return &evaluatePayload{
		Success:         true,
		Review:          record,
		ScoringCriteria: criteria,
		ThinkingProcess: turns,
		EvaluationID:    evaluationID,
		Aggregation:     res.Aggregation,
		Truncated:       res.Truncated,
	}, nil
}

func (s *Server) writeFinal(c *gin.Context, out evaluateOutcome) {
	var body any = out.payload
	if out.err != nil {
		s.logger.Error("evaluation failed (%s): %v", scherrors.GetErrorType(out.err), out.err)
		body = gin.H{"success": false, "error": scherrors.FormatForUser(out.err)}
	}
	data, err := jsonx.MarshalPlain(body)
	if err != nil {
		s.logger.Error("encode evaluation response: %v", err)
		data = []byte(`{"success":false,"error":"failed to encode response"}`)
	}
	if _, err := c.Writer.Write(data); err != nil {
		s.logger.Warn("write evaluation response: %v", err)
		return
	}
	c.Writer.Flush()
}
