package handlers

import (
	"net/http"
	"time"

	"pos-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService SettingsServiceInterface
	reportService   ReportServiceInterface
	now             func() time.Time
}

func NewSettingsHandler(settingsService SettingsServiceInterface, reportService ReportServiceInterface) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		reportService:   reportService,
		now:             time.Now,
	}
}

// RegisterRoutes registers the public settings read, the admin update and the dashboard report
func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup, admin *gin.RouterGroup) {
	router.GET("/settings", h.GetSettings)
	admin.GET("/settings", h.GetSettings)
	admin.PUT("/settings", h.UpdateSettings)
	admin.GET("/reports/dashboard", h.Dashboard)
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Dashboard godoc
// @Summary Sales dashboard over an inclusive date range
// @Tags admin
// @Produce json
// @Param from query string false "YYYY-MM-DD, defaults to 29 days before to"
// @Param to query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} services.DashboardReport
// @Failure 400 {object} ErrorResponse
// @Router /admin/reports/dashboard [get]
func (h *SettingsHandler) Dashboard(c *gin.Context) {
	from, to, err := services.ParseReportRange(c.Query("from"), c.Query("to"), h.now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.reportService.Dashboard(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
