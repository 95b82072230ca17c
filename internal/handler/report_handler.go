package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/credilocker/credilocker-api/internal/models"
	"github.com/credilocker/credilocker-api/internal/service"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/response"
)

// ReportHandler exposes report generation and download endpoints.
type ReportHandler struct {
	reports *service.ReportService
	metrics *service.MetricsService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService, metrics *service.MetricsService) *ReportHandler {
	return &ReportHandler{reports: reports, metrics: metrics}
}

// Generate godoc
// @Summary Generate a class report
// @Description Renders a report and returns a signed, time-limited download link
// @Tags Reports
// @Produce json
// @Param track path string true "Report track" Enums(field-project, cep, attendance)
// @Param class query string true "Class code"
// @Param format query string false "File format" Enums(xlsx, csv, pdf) default(xlsx)
// @Success 200 {object} response.Envelope
// @Router /reports/{track} [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	track := service.ReportTrack(c.Param("track"))
	class := c.Query("class")
	if class == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "class is required"))
		return
	}
	format := models.ReportFormat(c.DefaultQuery("format", string(models.ReportFormatXLSX)))

	file, err := h.reports.Generate(c.Request.Context(), track, class, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordReport(string(track), string(format))
	response.JSON(c, http.StatusOK, file, nil)
}

// Download godoc
// @Summary Download a generated report
// @Description Serves the file behind a signed download token
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /reports/download/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	path, err := h.reports.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
