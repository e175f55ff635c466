package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"condomanager/internal/services"
)

// ReportHandler serves expense reports.
type ReportHandler struct {
	reportService services.ReportServicer
	auditService  services.AuditServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer, auditService services.AuditServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService, auditService: auditService}
}

// DownloadReport renders the expense report of a condominium as PDF
// @Summary     Download expense report
// @Description Render the expenses of a condominium as a PDF. Both dates are inclusive; a date-only to_date covers that whole day.
// @Tags        reports
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       id        path  string true  "Condominium ID"
// @Param       from_date query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param       to_date   query string false "End date (YYYY-MM-DD or RFC3339)"
// @Success     200 {file} file "PDF report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Condominium not found"
// @Failure     502 {object} ErrorResponse "Report rendering failed"
// @Router      /condominiums/{id}/report [get]
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	p, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.GenerateReport(p, id, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(p.UserID, "GENERATE_REPORT", "condominium", id, c.ClientIP(),
		map[string]interface{}{"file_name": report.FileName})

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
