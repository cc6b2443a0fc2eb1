package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mrlokans/librarian/internal/services"
)

type LendingsController struct {
	lendings LendingOperations
}

func NewLendingsController(lendings LendingOperations) *LendingsController {
	return &LendingsController{lendings: lendings}
}

// Create lends a book to a reader.
// POST /api/lendings
func (lc *LendingsController) Create(c *gin.Context) {
	var body CreateLendingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	if err := body.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}

	l, err := lc.lendings.Create(services.CreateLendingRequest{ISBN: body.ISBN, ReaderNumber: body.ReaderNumber})
	if err != nil {
		respondServiceError(c, err, "create lending")
		return
	}

	c.Header("ETag", etag(l.Version()))
	c.JSON(http.StatusCreated, newLendingResponse(l))
}

// Get returns one lending.
// GET /api/lendings/:year/:seq
func (lc *LendingsController) Get(c *gin.Context) {
	number, ok := lendingNumberParam(c)
	if !ok {
		return
	}

	l, err := lc.lendings.FindByLendingNumber(number)
	if err != nil {
		respondServiceError(c, err, "find lending")
		return
	}

	c.Header("ETag", etag(l.Version()))
	c.JSON(http.StatusOK, newLendingResponse(l))
}

// Return closes a lending. The expected version comes from If-Match or the
// body; a stale version yields 409.
// PATCH /api/lendings/:year/:seq/return
func (lc *LendingsController) Return(c *gin.Context) {
	number, ok := lendingNumberParam(c)
	if !ok {
		return
	}

	var body ReturnLendingBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			respondBadRequest(c, "invalid JSON body")
			return
		}
	}
	if header := c.GetHeader("If-Match"); header != "" {
		version, err := parseETag(header)
		if err != nil {
			respondBadRequest(c, "invalid If-Match header")
			return
		}
		body.ExpectedVersion = &version
	}
	if err := body.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}

	l, fine, err := lc.lendings.SetReturned(number, *body.ExpectedVersion, body.Commentary)
	if err != nil {
		respondServiceError(c, err, "return lending")
		return
	}

	resp := ReturnResponse{Lending: newLendingResponse(l)}
	if fine != nil {
		f := newFineResponse(fine)
		resp.Fine = &f
	}
	c.Header("ETag", etag(l.Version()))
	c.JSON(http.StatusOK, resp)
}

// Fine returns the fine stored when an overdue lending was returned.
// GET /api/lendings/:year/:seq/fine
func (lc *LendingsController) Fine(c *gin.Context) {
	number, ok := lendingNumberParam(c)
	if !ok {
		return
	}

	fine, err := lc.lendings.FineFor(number)
	if err != nil {
		respondServiceError(c, err, "find fine")
		return
	}
	c.JSON(http.StatusOK, newFineResponse(fine))
}

// Delete removes a lending and its fine.
// DELETE /api/lendings/:year/:seq
func (lc *LendingsController) Delete(c *gin.Context) {
	number, ok := lendingNumberParam(c)
	if !ok {
		return
	}

	if err := lc.lendings.Delete(number); err != nil {
		respondServiceError(c, err, "delete lending")
		return
	}
	c.Status(http.StatusNoContent)
}

// Search filters lendings by reader, book, state and start date range.
// GET /api/lendings?reader_number=&isbn=&returned=&start_date=&end_date=&page=&limit=
func (lc *LendingsController) Search(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	returned, ok := parseOptionalBool(c, "returned")
	if !ok {
		return
	}

	res, err := lc.lendings.Search(page, services.SearchQuery{
		ReaderNumber: c.Query("reader_number"),
		ISBN:         c.Query("isbn"),
		Returned:     returned,
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
	})
	if err != nil {
		respondServiceError(c, err, "search lendings")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(newLendingResponses(res.Lendings), res.Total, res.Page))
}

// Overdue lists unreturned lendings past their limit date, oldest first.
// GET /api/lendings/overdue?page=&limit=
func (lc *LendingsController) Overdue(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}

	res, err := lc.lendings.Overdue(page)
	if err != nil {
		respondServiceError(c, err, "list overdue lendings")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(newLendingResponses(res.Lendings), res.Total, res.Page))
}

// AverageDuration is the mean lending duration in days, optionally for one ISBN.
// GET /api/lendings/stats/average-duration?isbn=
func (lc *LendingsController) AverageDuration(c *gin.Context) {
	isbn := c.Query("isbn")

	var (
		avg decimal.Decimal
		err error
	)
	if isbn == "" {
		avg, err = lc.lendings.AverageDuration()
	} else {
		avg, err = lc.lendings.AverageDurationByISBN(isbn)
	}
	if err != nil {
		respondServiceError(c, err, "average duration")
		return
	}
	c.JSON(http.StatusOK, AverageDurationResponse{ISBN: isbn, AverageDurationDays: avg})
}

// ReaderLendings lists a reader's lendings of one book.
// GET /api/readers/:year/:seq/lendings?isbn=&returned=
func (lc *LendingsController) ReaderLendings(c *gin.Context) {
	readerNumber := c.Param("year") + "/" + c.Param("seq")
	isbn := c.Query("isbn")
	if isbn == "" {
		respondBadRequest(c, "isbn is required")
		return
	}
	returned, ok := parseOptionalBool(c, "returned")
	if !ok {
		return
	}

	ls, err := lc.lendings.ListByReaderNumberAndISBN(readerNumber, isbn, returned)
	if err != nil {
		respondServiceError(c, err, "list reader lendings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lendings": newLendingResponses(ls)})
}

func etag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

// parseETag accepts both quoted and bare versions, and weak validators.
func parseETag(v string) (int64, error) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "W/")
	return strconv.ParseInt(strings.Trim(v, `"`), 10, 64)
}
