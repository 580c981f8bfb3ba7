package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opsreasoner/opsreasoner/pkg/models"
	"github.com/opsreasoner/opsreasoner/pkg/orchestrator"
)

// listPendingActionsHandler handles GET /actions/pending.
func (s *Server) listPendingActionsHandler(c *gin.Context) {
	rows, err := s.actions.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PendingActionsListResponse{Items: toActionResponses(rows)})
}

// approveActionHandler handles POST /actions/approve/:id: records the human
// decision and, when asked, executes immediately.
func (s *Server) approveActionHandler(c *gin.Context) {
	id, ok := actionID(c)
	if !ok {
		return
	}

	var req ApproveActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	switch req.Status {
	case "approved":
		row, err := s.actions.Approve(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if req.ExecuteImmediately {
			s.runApprovedAction(c, row)
			return
		}
		c.JSON(http.StatusOK, ApproveActionResponse{
			Action:  toActionResponse(row),
			Message: "action approved; execute via POST /actions/execute/" + strconv.FormatInt(id, 10),
		})

	case "rejected":
		row, err := s.actions.Reject(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ApproveActionResponse{
			Action:  toActionResponse(row),
			Message: "action rejected",
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": `status must be "approved" or "rejected"`})
	}
}

// executeActionHandler handles POST /actions/execute/:id for actions already
// approved.
func (s *Server) executeActionHandler(c *gin.Context) {
	id, ok := actionID(c)
	if !ok {
		return
	}

	row, err := s.actions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if row.Status != models.PendingActionApproved {
		c.JSON(http.StatusConflict, gin.H{"detail": "action is " + string(row.Status) + ", not approved"})
		return
	}
	s.runApprovedAction(c, row)
}

// runApprovedAction invokes the executor and records the outcome. An
// executor fault leaves the stored status untouched so the operator may
// retry, and surfaces as a structured failure payload.
func (s *Server) runApprovedAction(c *gin.Context, row *models.PendingAction) {
	result, err := s.executor.Execute(c.Request.Context(), row)
	if err != nil {
		var execErr *orchestrator.ExecutionError
		if errors.As(err, &execErr) {
			c.JSON(http.StatusBadGateway, execErr.Payload())
			return
		}
		respondError(c, err)
		return
	}

	updated, err := s.actions.Execute(c.Request.Context(), row.ID, result)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExecuteActionResponse{
		Success: true,
		Action:  toActionResponse(updated),
		Result:  result,
	})
}

func actionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid action id"})
		return 0, false
	}
	return id, true
}
