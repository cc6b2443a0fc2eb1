package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librarian/internal/lending"
	"github.com/mrlokans/librarian/internal/services"
)

const maxPageLimit = 100

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // per-field validation errors
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

func newPaginatedResponse(data any, total int64, page services.Page) PaginatedResponse {
	totalPages := int((total + int64(page.Limit) - 1) / int64(page.Limit))
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page.Number,
		Limit:      page.Limit,
		TotalPages: totalPages,
		HasMore:    page.Number < totalPages,
	}
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "invalid_argument"})
}

// respondValidationError reports ozzo field errors under details.
func respondValidationError(c *gin.Context, err error) {
	var fields validation.Errors
	if errors.As(err, &fields) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Code: "invalid_argument", Details: fields})
		return
	}
	respondBadRequest(c, err.Error())
}

// respondInternalError logs the error and hides it from the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error().Err(err).Str("context", context).Str("path", c.FullPath()).Msg("Internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondServiceError maps service and domain errors to HTTP statuses.
func respondServiceError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, lending.ErrStaleState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "stale_state"})
	case errors.Is(err, lending.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "forbidden"})
	case errors.Is(err, lending.ErrInvalidArgument):
		respondValidationError(c, err)
	default:
		var fields validation.Errors
		if errors.As(err, &fields) {
			respondValidationError(c, err)
			return
		}
		respondInternalError(c, err, context)
	}
}

// --- Parameter Parsing ---

// lendingNumberParam rebuilds "{year}/{sequence}" from the :year and :seq
// path segments.
func lendingNumberParam(c *gin.Context) (string, bool) {
	number := c.Param("year") + "/" + c.Param("seq")
	if _, err := lending.ParseNumber(number); err != nil {
		respondBadRequest(c, err.Error())
		return "", false
	}
	return number, true
}

// parsePage reads page and limit query parameters.
func parsePage(c *gin.Context) (services.Page, bool) {
	page := services.Page{Number: services.DefaultPageNumber, Limit: services.DefaultPageLimit}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondBadRequest(c, "page must be a positive integer")
			return services.Page{}, false
		}
		page.Number = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageLimit {
			respondBadRequest(c, "limit must be between 1 and 100")
			return services.Page{}, false
		}
		page.Limit = n
	}
	return page, true
}

// parseOptionalBool reads a boolean query parameter; absent means nil.
func parseOptionalBool(c *gin.Context, name string) (*bool, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return nil, false
	}
	return &b, true
}
