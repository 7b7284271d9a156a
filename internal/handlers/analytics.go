package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/nudgr/delegation-api/internal/errors"
	"github.com/nudgr/delegation-api/internal/middleware"
	"github.com/nudgr/delegation-api/internal/services"
)

// AnalyticsHandler serves the read-only charting aggregates.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetUserAnalysis returns the collective completion stats for a user.
func (h *AnalyticsHandler) GetUserAnalysis(c *gin.Context) {
	userID, ok := h.targetUserID(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.GetCollectiveStats(userID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Analysis fetched successfully",
		"collectiveStats": stats,
	})
}

// GetTrends returns monthly completed-task buckets.
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	userID, ok := h.targetUserID(c)
	if !ok {
		return
	}

	trends, err := h.analyticsService.GetProductivityTrends(userID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, trends)
}

// GetPeakHours returns hour-of-day completed-task buckets.
func (h *AnalyticsHandler) GetPeakHours(c *gin.Context) {
	userID, ok := h.targetUserID(c)
	if !ok {
		return
	}

	peaks, err := h.analyticsService.GetPeakHours(userID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, peaks)
}

func (h *AnalyticsHandler) targetUserID(c *gin.Context) (uint64, bool) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "")
		return 0, false
	}

	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return 0, false
	}

	return userID, true
}
