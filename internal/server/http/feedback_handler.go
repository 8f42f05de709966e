package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"scholar/internal/id"
	"scholar/internal/review"
	"scholar/internal/store"
)

type feedbackRequest struct {
	Feature      string `json:"feature"`
	Action       string `json:"action"`
	EvaluationID string `json:"evaluation_id"`
	ExtractionID string `json:"extraction_id"`
	Details      string `json:"details"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	entry := store.Feedback{
		ID:           id.NewFeedbackID(),
		Feature:      store.Feature(strings.TrimSpace(req.Feature)),
		Action:       store.Action(strings.TrimSpace(req.Action)),
		EvaluationID: req.EvaluationID,
		ExtractionID: req.ExtractionID,
		Details:      req.Details,
	}
	if err := entry.Validate(); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.deps.Store.SaveFeedback(c.Request.Context(), entry)
	if err != nil {
		s.logger.Error("save feedback: %v", err)
		errorJSON(c, http.StatusInternalServerError, "failed to save feedback")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "feedback_id": saved.ID})
}

func (s *Server) handleGetEvaluation(c *gin.Context) {
	evaluation, err := s.deps.Store.GetEvaluation(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "evaluation not found")
		return
	}
	if err != nil {
		s.logger.Error("load evaluation: %v", err)
		errorJSON(c, http.StatusInternalServerError, "failed to load evaluation")
		return
	}
	c.JSON(http.StatusOK, evaluation)
}

func (s *Server) handleCriteria(c *gin.Context) {
	kind, err := review.ParseRubricKind(c.DefaultQuery("rubric", s.deps.Review.Rubric))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	rubric := review.SelectRubric(kind, c.Query("call_for_proposal"))
	c.JSON(http.StatusOK, gin.H{"rubric": kind, "scoring_criteria": rubric.Criteria()})
}
