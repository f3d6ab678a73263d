package handlers

import (
	"net/http"

	"pos-storefront-backend/internal/middleware"
	"pos-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutService CheckoutServiceInterface
}

func NewCheckoutHandler(checkoutService CheckoutServiceInterface) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

type ValidateStepRequest struct {
	Step string                `json:"step" binding:"required"`
	Form services.CheckoutForm `json:"form"`
}

type PlaceOrderRequest struct {
	Form services.CheckoutForm `json:"form"`
}

// RegisterRoutes registers the checkout routes. The group must run behind
// middleware.CartSession.
func (h *CheckoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	checkout := router.Group("/checkout")
	{
		checkout.POST("/validate", h.ValidateStep)
		checkout.POST("", h.PlaceOrder)
	}
}

// ValidateStep godoc
// @Summary Validate a checkout step and every step before it
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body ValidateStepRequest true "Step and form"
// @Success 200 {object} services.StepValidation
// @Failure 400 {object} ErrorResponse
// @Router /checkout/validate [post]
func (h *CheckoutHandler) ValidateStep(c *gin.Context) {
	var req ValidateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.checkoutService.ValidateStep(req.Step, req.Form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PlaceOrder godoc
// @Summary Turn the session cart into an order
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body PlaceOrderRequest true "Checkout form"
// @Success 201 {object} services.PlaceOrderResult
// @Failure 400 {object} ValidationErrorResponse
// @Router /checkout [post]
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.checkoutService.PlaceOrder(c.Request.Context(), middleware.GetCartSession(c), middleware.GetLanguage(c), req.Form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
