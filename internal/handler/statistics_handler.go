package handler

import (
	"fmt"
	"net/http"
	"time"

	"freightledger/internal/middleware"
	"freightledger/internal/model"
	"freightledger/internal/service"
	"freightledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	authService       service.AuthService
}

func NewStatisticsHandler(statisticsService service.StatisticsService, authService service.AuthService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, authService: authService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/statistics", middleware.RequireRole(h.authService))
	{
		stats.GET("", h.GetStatistics)
		stats.GET("/charts", h.GetAllCharts)
		stats.GET("/charts/:kind", h.GetChart)
	}
}

// @Summary      Get dashboard statistics
// @Description  Daily, weekly, monthly and yearly profit plus order counts, recomputed on every call
// @Tags         statistics
// @Produce      json
// @Param        at   query     string  false  "Reference time (RFC3339), defaults to now"
// @Success      200  {object}  response.Response{data=model.Statistics}
// @Failure      400  {object}  response.Response  "Invalid reference time"
// @Failure      401  {object}  response.Response
// @Security     BearerAuth
// @Router       /api/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	at, err := referenceTime(c)
	if err != nil {
		writeError(c, err)
		return
	}

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), at)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(stats))
}

// @Summary      Get one chart series
// @Tags         statistics
// @Produce      json
// @Param        kind  path      string  true   "daily, weekly or monthly"
// @Param        at    query     string  false  "Reference time (RFC3339), defaults to now"
// @Success      200   {object}  response.Response{data=[]model.ChartPoint}
// @Failure      400   {object}  response.Response  "Unknown chart kind"
// @Security     BearerAuth
// @Router       /api/statistics/charts/{kind} [get]
func (h *StatisticsHandler) GetChart(c *gin.Context) {
	kind, err := model.ParseChartKind(c.Param("kind"))
	if err != nil {
		writeError(c, err)
		return
	}
	at, err := referenceTime(c)
	if err != nil {
		writeError(c, err)
		return
	}

	points, err := h.statisticsService.GetChart(c.Request.Context(), kind, at)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(points))
}

// @Summary      Get all chart series
// @Tags         statistics
// @Produce      json
// @Param        at   query     string  false  "Reference time (RFC3339), defaults to now"
// @Success      200  {object}  response.Response{data=model.ChartSet}
// @Security     BearerAuth
// @Router       /api/statistics/charts [get]
func (h *StatisticsHandler) GetAllCharts(c *gin.Context) {
	at, err := referenceTime(c)
	if err != nil {
		writeError(c, err)
		return
	}

	set, err := h.statisticsService.AllCharts(c.Request.Context(), at)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(set))
}

// referenceTime parses the optional ?at= parameter; zero means now.
func referenceTime(c *gin.Context) (time.Time, error) {
	raw := c.Query("at")
	if raw == "" {
		return time.Time{}, nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid at, expected RFC3339", model.ErrValidation)
	}
	return at, nil
}
