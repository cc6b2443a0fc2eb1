package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/entities"
)

type AuditController struct {
	audit AuditReader
}

func NewAuditController(audit AuditReader) *AuditController {
	return &AuditController{audit: audit}
}

// GetAuditEvents returns paginated audit events, optionally narrowed to an
// event type or an entity key.
// GET /api/audit?type=&entity=&page=&limit=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	ac.list(c, c.Query("entity"))
}

// GetLendingEvents returns the audit trail of one lending.
// GET /api/lendings/:year/:seq/audit
func (ac *AuditController) GetLendingEvents(c *gin.Context) {
	number, ok := lendingNumberParam(c)
	if !ok {
		return
	}
	ac.list(c, number)
}

func (ac *AuditController) list(c *gin.Context, entityKey string) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	offset := (page.Number - 1) * page.Limit

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	if eventType := c.Query("type"); eventType != "" {
		if !knownEventType(entities.AuditEventType(eventType)) {
			respondBadRequest(c, "unknown event type "+eventType)
			return
		}
		events, total, err = ac.audit.GetEventsByType(entities.AuditEventType(eventType), entityKey, page.Limit, offset)
	} else {
		events, total, err = ac.audit.GetEvents(entityKey, page.Limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(events, total, page))
}

func knownEventType(t entities.AuditEventType) bool {
	switch t {
	case entities.AuditEventLendingIssued,
		entities.AuditEventLendingReturned,
		entities.AuditEventFineAssessed,
		entities.AuditEventLendingRejected,
		entities.AuditEventLendingDeleted,
		entities.AuditEventOverdueReport,
		entities.AuditEventImport:
		return true
	}
	return false
}
