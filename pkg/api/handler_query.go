package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsreasoner/opsreasoner/pkg/models"
	"github.com/opsreasoner/opsreasoner/pkg/orchestrator"
)

// submitQueryHandler handles POST /query: one full orchestration run.
func (s *Server) submitQueryHandler(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	state, err := s.orch.Run(c.Request.Context(), orchestrator.QueryInput{
		Question: req.Question,
		UserID:   req.UserID,
		Metadata: req.Metadata,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.toQueryResponse(c.Request.Context(), state))
}

// resumeQueryHandler handles POST /query/resume: continue a run suspended at
// the approval gate. Unknown thread ids are a 404.
func (s *Server) resumeQueryHandler(c *gin.Context) {
	var req ResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	state, err := s.orch.Resume(c.Request.Context(), req.ThreadID, req.ApprovedActionIDs, req.RejectedActionIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, s.toQueryResponse(c.Request.Context(), state))
}

// toQueryResponse renders the terminal state of a run, joining in the
// durable pending-action rows the run proposed.
func (s *Server) toQueryResponse(ctx context.Context, state *models.GraphState) QueryResponse {
	resp := QueryResponse{
		Answer:         state.FinalAnswer,
		Diagnostics:    state.Diagnostics,
		PendingActions: []PendingActionResponse{},
		ThreadID:       state.ThreadID,
		HITLWaiting:    state.HITLWait,
	}
	if rows, err := s.actions.ListByThread(ctx, state.ThreadID); err == nil {
		resp.PendingActions = toActionResponses(rows)
	}
	return resp
}
