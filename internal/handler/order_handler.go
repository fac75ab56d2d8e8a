package handler

import (
	"fmt"
	"net/http"

	"freightledger/internal/middleware"
	"freightledger/internal/model"
	"freightledger/internal/service"
	"freightledger/pkg/pagination"
	"freightledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService    service.OrderService
	authService     service.AuthService
	defaultPageSize int
	maxPageSize     int
}

func NewOrderHandler(orderService service.OrderService, authService service.AuthService, defaultPageSize, maxPageSize int) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		authService:     authService,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders", middleware.RequireRole(h.authService))
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", middleware.RequireRole(h.authService, model.RoleAdmin), h.DeleteOrder)
	}
}

// ListOrders godoc
// @Summary      List orders
// @Description  Filters orders, newest first, and returns one page
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page            query     int     false  "Page (>= 1)"
// @Param        page_size       query     int     false  "Page size (capped at the configured maximum)"
// @Param        category        query     string  false  "Category"
// @Param        payment_status  query     string  false  "pending, verified or collected"
// @Param        origin          query     string  false  "Origin city"
// @Param        destination     query     string  false  "Destination city"
// @Param        search          query     string  false  "Substring of id, driver or plate number"
// @Param        start_date      query     string  false  "RFC3339 or YYYY-MM-DD"
// @Param        end_date        query     string  false  "RFC3339 or YYYY-MM-DD (whole day)"
// @Success      200  {object}  response.Response{data=pagination.Page[service.OrderResponse]}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, err := pagination.Parse(c, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		writeError(c, fmt.Errorf("%w: %v", model.ErrValidation, err))
		return
	}

	var req service.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query: "+err.Error())
		return
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), req, page)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// CreateOrder godoc
// @Summary      Create an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateOrderRequest  true  "Order"
// @Success      201      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(order))
}

// GetOrder godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(order))
}

// UpdateOrder godoc
// @Summary      Update an order
// @Description  Merges the supplied fields; id and created_at never change
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Order ID"
// @Param        payload  body      service.UpdateOrderRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(order))
}

// DeleteOrder godoc
// @Summary      Delete an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := h.orderService.DeleteOrder(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(gin.H{"id": id}, "order deleted"))
}
