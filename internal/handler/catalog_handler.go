package handler

import (
	"net/http"

	"freightledger/internal/middleware"
	"freightledger/internal/model"
	"freightledger/internal/service"
	"freightledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// Option is a value with its display label
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Catalog struct {
	Categories      []string                    `json:"categories"`
	Cities          []string                    `json:"cities"`
	PaymentStatuses []Option                    `json:"payment_statuses"`
	PaymentMethods  []model.PaymentMethodOption `json:"payment_methods"`
}

type CatalogHandler struct {
	authService service.AuthService
}

func NewCatalogHandler(authService service.AuthService) *CatalogHandler {
	return &CatalogHandler{authService: authService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/catalog", middleware.RequireRole(h.authService), h.GetCatalog)
}

// @Summary      Reference catalogs
// @Description  Categories, cities, payment statuses and payment methods accepted by the order endpoints
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=Catalog}
// @Router       /api/catalog [get]
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	statuses := make([]Option, 0, len(model.PaymentStatusLabels))
	for _, s := range []string{model.PaymentStatusPending, model.PaymentStatusVerified, model.PaymentStatusCollected} {
		statuses = append(statuses, Option{Value: s, Label: model.PaymentStatusLabels[s]})
	}
	methods := make([]model.PaymentMethodOption, 0, len(model.PaymentMethods))
	for _, m := range model.PaymentMethods {
		methods = append(methods, m.Option())
	}

	c.JSON(http.StatusOK, response.Success(Catalog{
		Categories:      model.Categories,
		Cities:          model.Cities,
		PaymentStatuses: statuses,
		PaymentMethods:  methods,
	}))
}

// Health is the unauthenticated liveness probe
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(gin.H{"status": "ok"}))
}
