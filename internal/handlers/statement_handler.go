package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fluxo/internal/pagination"
	"fluxo/internal/report"
	"fluxo/internal/services"
)

// StatementHandler serves the read side of the ledger: statements, summary
// totals, the category report and the PDF export.
type StatementHandler struct {
	movementService services.MovementServicer
	reportService   services.ReportServicer
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(movementService services.MovementServicer, reportService services.ReportServicer) *StatementHandler {
	return &StatementHandler{movementService: movementService, reportService: reportService}
}

// ListMovements returns movements newest first
// @Summary     List movements
// @Description Paginated statement, optionally filtered by box, category and date range
// @Tags        statement
// @Produce     json
// @Security    BearerAuth
// @Param       box_id    query string false "Box ID or Principal"
// @Param       category  query string false "Category"
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date   query string false "End date (YYYY-MM-DD)"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Movement]
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /extrato [get]
func (h *StatementHandler) ListMovements(c *gin.Context) {
	h.list(c, c.Query("box_id"))
}

// ListBoxMovements returns the statement of one box
// @Summary     Box statement
// @Tags        statement
// @Produce     json
// @Security    BearerAuth
// @Param       boxId path string true "Box ID or Principal"
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Movement]
// @Failure     400 {object} ErrorResponse "Invalid id"
// @Router      /extrato/{boxId} [get]
func (h *StatementHandler) ListBoxMovements(c *gin.Context) {
	h.list(c, c.Param("boxId"))
}

func (h *StatementHandler) list(c *gin.Context, boxID string) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	filter := services.MovementFilter{
		BoxID:    boxID,
		Category: c.Query("category"),
	}
	var err error
	if filter.FromDate, err = parseOptionalDate("from_date", queryPtr(c, "from_date")); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ToDate, err = parseOptionalDate("to_date", queryPtr(c, "to_date")); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ToDate != nil && len(c.Query("to_date")) == len("2006-01-02") {
		// A bare date includes the whole day.
		end := filter.ToDate.Add(24*time.Hour - time.Nanosecond)
		filter.ToDate = &end
	}

	result, err := h.movementService.ListMovements(c.Request.Context(), page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Summary returns total inflows, outflows and net balance
// @Summary     Ledger summary
// @Tags        statement
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Summary
// @Router      /extrato/resumo [get]
func (h *StatementHandler) Summary(c *gin.Context) {
	summary, err := h.reportService.Summary(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CategoryReport returns expenses, loans, opening balances and income
// grouped by category, with the percentage targets
// @Summary     Category report
// @Tags        statement
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.CategoryReport
// @Router      /extrato/categorias [get]
func (h *StatementHandler) CategoryReport(c *gin.Context) {
	result, err := h.reportService.CategoryReport(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PDFReport renders the ledger as a PDF document
// @Summary     PDF report
// @Tags        statement
// @Produce     application/pdf
// @Security    BearerAuth
// @Success     200 {file} file "PDF document"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /relatorio-pdf [get]
func (h *StatementHandler) PDFReport(c *gin.Context) {
	data, err := h.reportService.PDFData(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, data); err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("relatorio-%s.pdf", data.GeneratedAt.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func queryPtr(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	return &v
}
