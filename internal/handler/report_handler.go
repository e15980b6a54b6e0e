package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dojokai/dojo-api/internal/service"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
	"github.com/dojokai/dojo-api/pkg/response"
)

// ReportHandler exposes report download endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func serveReport(c *gin.Context, file *service.ReportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}

// MonthlyCollection godoc
// @Summary Download the monthly collection report
// @Tags Reports
// @Produce application/octet-stream
// @Param month query int false "Month (defaults to current)"
// @Param year query int false "Year (defaults to current)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /reports/collection [get]
func (h *ReportHandler) MonthlyCollection(c *gin.Context) {
	now := time.Now()
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be a number"))
		return
	}
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
		return
	}
	file, err := h.reports.MonthlyCollection(c.Request.Context(), month, year, c.DefaultQuery("format", service.ReportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, file)
}

// Receipt godoc
// @Summary Download a payment receipt
// @Tags Reports
// @Produce application/pdf
// @Param payment_id path string true "Payment ID"
// @Success 200 {file} binary
// @Router /reports/receipt/{payment_id} [get]
func (h *ReportHandler) Receipt(c *gin.Context) {
	file, err := h.reports.Receipt(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, file)
}
