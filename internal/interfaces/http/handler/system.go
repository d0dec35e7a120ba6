package handler

import (
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/receivables/internal/infrastructure/scheduler"
	"github.com/erp/receivables/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime      time.Time
	sweepScheduler *scheduler.SweepScheduler
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(sweepScheduler *scheduler.SweepScheduler) *SystemHandler {
	return &SystemHandler{
		startTime:      time.Now(),
		sweepScheduler: sweepScheduler,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Receivables Ledger API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping is a simple endpoint to check if the API is responsive
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetSweepStatus reports the overdue sweep scheduler's state
func (h *SystemHandler) GetSweepStatus(c *gin.Context) {
	if h.sweepScheduler == nil {
		h.NotFound(c, "Sweep scheduler is not enabled")
		return
	}
	h.Success(c, h.sweepScheduler.GetStatus())
}

// TriggerSweepRun starts a scheduler-wide sweep across all tenants
func (h *SystemHandler) TriggerSweepRun(c *gin.Context) {
	if h.sweepScheduler == nil {
		h.NotFound(c, "Sweep scheduler is not enabled")
		return
	}
	if err := h.sweepScheduler.TriggerManualRun(c.Request.Context()); err != nil {
		if errors.Is(err, scheduler.ErrSchedulerNotRunning) {
			h.Error(c, http.StatusConflict, dto.ErrCodeConflict, err.Error())
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "sweep run triggered"})
}

// RegisterRoutes registers all system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
		system.GET("/ping", h.Ping)
		system.GET("/sweep/status", h.GetSweepStatus)
		system.POST("/sweep/run", h.TriggerSweepRun)
	}
}
