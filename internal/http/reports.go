package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

// ReportsController serves the overdue report and its background runs.
type ReportsController struct {
	reporter OverdueReporter
	runner   ReportRunner
	status   TaskStatusReader
}

// NewReportsController accepts nil runner and status; the matching
// endpoints then answer 503.
func NewReportsController(reporter OverdueReporter, runner ReportRunner, status TaskStatusReader) *ReportsController {
	return &ReportsController{reporter: reporter, runner: runner, status: status}
}

// Overdue computes the report synchronously.
// GET /api/reports/overdue
func (rc *ReportsController) Overdue(c *gin.Context) {
	report, err := rc.reporter.OverdueReport()
	if err != nil {
		respondInternalError(c, err, "overdue report")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generated_on":    report.GeneratedOn.Format(time.DateOnly),
		"entries":         report.Entries,
		"total_projected": report.TotalProjected(),
	})
}

// Run dispatches a background report run.
// POST /api/reports/overdue/run
func (rc *ReportsController) Run(c *gin.Context) {
	if rc.runner == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "report scheduling is disabled"})
		return
	}

	runID, err := rc.runner.RunNow()
	if err != nil {
		respondInternalError(c, err, "dispatch overdue report")
		return
	}

	resp := gin.H{"run_id": runID, "message": "overdue report dispatched"}
	if next := rc.runner.NextRunTime(); next != nil {
		resp["next_scheduled_run"] = next.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusAccepted, resp)
}

// TaskStatus reports the state of a queued task.
// GET /api/tasks/:id
func (rc *ReportsController) TaskStatus(c *gin.Context) {
	if rc.status == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "task queue is disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	taskID := c.Param("id")
	status, err := rc.status.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "task not found", Code: "not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
