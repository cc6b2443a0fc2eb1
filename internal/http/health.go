package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	componentUp         = "up"
	componentDown       = "down"
	componentSkipped    = "not configured"
	componentScheduled  = "scheduled"
	componentManualOnly = "manual"
	componentQueued     = "queued"
	componentInline     = "inline"
)

// ComponentStatus is the state of one dependency of the lending service.
type ComponentStatus struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type HealthResponse struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	CheckedAt  string                     `json:"checked_at"`
	Components map[string]ComponentStatus `json:"components"`
}

// HealthController reports readiness. Only the database decides the HTTP
// status; the report schedule and queue mode are informational.
type HealthController struct {
	db      Pinger
	reports ReportRunner
	queued  bool
	version string
}

func NewHealthController(cfg RouterConfig) *HealthController {
	return &HealthController{
		db:      cfg.Database,
		reports: cfg.ReportRunner,
		queued:  cfg.TaskStatus != nil,
		version: cfg.Version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	database := h.databaseStatus()

	resp := HealthResponse{
		Status:    "ok",
		Version:   h.version,
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
		Components: map[string]ComponentStatus{
			"database":       database,
			"overdue_report": h.reportStatus(),
			"task_queue":     h.queueStatus(),
		},
	}

	code := http.StatusOK
	if database.Status == componentDown {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}

func (h *HealthController) databaseStatus() ComponentStatus {
	if h.db == nil {
		return ComponentStatus{Status: componentSkipped}
	}
	if err := h.db.Ping(); err != nil {
		return ComponentStatus{Status: componentDown, Detail: err.Error()}
	}
	return ComponentStatus{Status: componentUp}
}

func (h *HealthController) reportStatus() ComponentStatus {
	if h.reports == nil {
		return ComponentStatus{Status: componentSkipped}
	}
	next := h.reports.NextRunTime()
	if next == nil {
		return ComponentStatus{Status: componentManualOnly}
	}
	return ComponentStatus{Status: componentScheduled, Detail: next.UTC().Format(time.RFC3339)}
}

func (h *HealthController) queueStatus() ComponentStatus {
	if h.queued {
		return ComponentStatus{Status: componentQueued}
	}
	return ComponentStatus{Status: componentInline}
}
