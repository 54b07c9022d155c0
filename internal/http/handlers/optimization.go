package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/briarkeep/briarkeep-backend/internal/http/response"
	"github.com/briarkeep/briarkeep-backend/internal/platform/ctxutil"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
	"github.com/briarkeep/briarkeep-backend/internal/services"
)

// OptimizationHandler fronts the recommendation lifecycle: the active
// snapshot, regeneration, staleness checks and both undo surfaces.
type OptimizationHandler struct {
	log            *logger.Logger
	recommendation services.RecommendationService
	mutation       services.MutationService
	gate           *services.StalenessGate
}

func NewOptimizationHandler(
	log *logger.Logger,
	recommendation services.RecommendationService,
	mutation services.MutationService,
	gate *services.StalenessGate,
) *OptimizationHandler {
	return &OptimizationHandler{
		log:            log.With("handler", "OptimizationHandler"),
		recommendation: recommendation,
		mutation:       mutation,
		gate:           gate,
	}
}

// GET /api/optimization/current
func (oh *OptimizationHandler) GetCurrent(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	snapshot, err := oh.recommendation.GetActive(c.Request.Context(), userID)
	if err != nil {
		oh.respondLifecycleError(c, "get_current_failed", err)
		return
	}
	if snapshot == nil {
		response.RespondError(c, http.StatusNotFound, "no_active_snapshot", services.ErrNoActiveSnapshot)
		return
	}
	response.RespondOK(c, gin.H{"snapshot": snapshot})
}

// POST /api/optimization/regenerate
func (oh *OptimizationHandler) Regenerate(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	snapshot, err := oh.recommendation.Regenerate(c.Request.Context(), userID)
	if err != nil {
		oh.respondLifecycleError(c, "regenerate_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"snapshot": snapshot})
}

// GET /api/optimization/staleness
//
// Staleness itself is always reported; "notify" additionally consults the
// per-session gate so clients can show the out-of-date prompt at most once
// per session per snapshot.
func (oh *OptimizationHandler) CheckStaleness(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	result, err := oh.recommendation.CheckStaleness(c.Request.Context(), userID)
	if err != nil {
		oh.respondLifecycleError(c, "staleness_check_failed", err)
		return
	}

	notify := false
	if result.Stale && result.Snapshot != nil {
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.SessionID != "" {
			notify = oh.gate.ShouldNotify(rd.SessionID, result.Snapshot.ID)
		}
	}

	body := gin.H{"stale": result.Stale, "notify": notify}
	if result.Snapshot != nil {
		body["snapshot_id"] = result.Snapshot.ID
	}
	response.RespondOK(c, body)
}

// POST /api/optimization/undo
func (oh *OptimizationHandler) UndoToPrevious(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	snapshot, err := oh.recommendation.UndoToPrevious(c.Request.Context(), userID)
	if err != nil {
		oh.respondLifecycleError(c, "undo_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"snapshot": snapshot})
}

type applyBatchRequest struct {
	BatchKind string                 `json:"batch_kind"`
	Targets   []services.BatchTarget `json:"targets" binding:"required"`
}

// POST /api/optimization/batches
func (oh *OptimizationHandler) ApplyBatch(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req applyBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.Targets) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("no targets provided"))
		return
	}
	result, err := oh.mutation.ApplyBatch(c.Request.Context(), userID, req.BatchKind, req.Targets)
	if err != nil {
		oh.respondLifecycleError(c, "apply_batch_failed", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// POST /api/optimization/batches/:batch_id/undo
func (oh *OptimizationHandler) UndoBatch(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	batchID, err := uuid.Parse(c.Param("batch_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid batch_id"))
		return
	}
	result, err := oh.mutation.UndoBatch(c.Request.Context(), userID, batchID)
	if err != nil {
		oh.respondLifecycleError(c, "undo_batch_failed", err)
		return
	}
	response.RespondOK(c, result)
}

func (oh *OptimizationHandler) respondLifecycleError(c *gin.Context, code string, err error) {
	switch {
	case errors.Is(err, services.ErrNoActiveSnapshot):
		response.RespondError(c, http.StatusConflict, "no_active_snapshot", err)
	case errors.Is(err, services.ErrNoPriorVersion):
		response.RespondError(c, http.StatusConflict, "no_prior_version", err)
	case errors.Is(err, services.ErrRegenerationInProgress):
		response.RespondError(c, http.StatusConflict, "regeneration_in_progress", err)
	case errors.Is(err, services.ErrBatchNotFound):
		response.RespondError(c, http.StatusNotFound, "batch_not_found", err)
	case errors.Is(err, services.ErrAdvisorUnavailable):
		response.RespondError(c, http.StatusBadGateway, "advisor_unavailable", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, code, err)
	}
}
