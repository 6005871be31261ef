package handler

import (
	"context"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	reportapp "github.com/stockroom/backend/internal/application/report"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

// ReportHandler serves the dashboard and spreadsheet exports
type ReportHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
	exportService    *reportapp.ExportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(dashboardService *reportapp.DashboardService, exportService *reportapp.ExportService) *ReportHandler {
	return &ReportHandler{dashboardService: dashboardService, exportService: exportService}
}

// Dashboard handles GET /admin/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.dashboardService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ExportProducts handles GET /admin/exports/products
func (h *ReportHandler) ExportProducts(c *gin.Context) {
	h.export(c, h.exportService.ExportProducts)
}

// ExportOrders handles GET /admin/exports/orders
func (h *ReportHandler) ExportOrders(c *gin.Context) {
	h.export(c, h.exportService.ExportOrders)
}

func (h *ReportHandler) export(c *gin.Context, render func(context.Context, reportapp.Format) (*reportapp.File, error)) {
	var req reportapp.ExportRequest
	if !h.bindQuery(c, &req) {
		return
	}
	format, ok := reportapp.ParseFormat(req.Format)
	if !ok {
		h.fieldError(c, "format", "must be one of: csv xlsx")
		return
	}
	if req.Store && !h.exportService.CanStore() {
		h.ErrorWithCode(c, dto.ErrCodeStorageDisabled, "Export storage is not enabled")
		return
	}

	ctx := c.Request.Context()
	file, err := render(ctx, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Store {
		stored, err := h.exportService.Store(ctx, file)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Created(c, stored)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
