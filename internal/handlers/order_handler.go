package handlers

import (
	"net/http"

	"pos-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService OrderServiceInterface
}

func NewOrderHandler(orderService OrderServiceInterface) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes registers the back-office order routes on an admin group
func (h *OrderHandler) RegisterRoutes(admin *gin.RouterGroup) {
	orders := admin.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id/status", h.UpdateStatus)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}

// ListOrders godoc
// @Summary List orders
// @Tags admin
// @Produce json
// @Param status query string false "Order status"
// @Param q query string false "Order number, customer name or phone"
// @Param sort query string false "newest, oldest, total_desc or total_asc"
// @Success 200 {object} services.OrderList
// @Failure 400 {object} ErrorResponse
// @Router /admin/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	limit, offset := paging(c)
	list, err := h.orderService.ListOrders(c.Request.Context(), services.OrderQuery{
		Status: c.Query("status"),
		Query:  c.Query("q"),
		Sort:   c.DefaultQuery("sort", "newest"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateStatus godoc
// @Summary Move an order to its next status
// @Tags admin
// @Accept json
// @Produce json
// @Param request body services.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} models.Order
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
