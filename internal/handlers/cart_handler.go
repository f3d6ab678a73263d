package handlers

import (
	"net/http"

	"pos-storefront-backend/internal/middleware"
	"pos-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartService CartServiceInterface
}

func NewCartHandler(cartService CartServiceInterface) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// RegisterRoutes registers the routes for the session cart. The group must
// run behind middleware.CartSession.
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	cart := router.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/items", h.AddItem)
		cart.GET("/items/:product_id", h.GetItemStatus)
		cart.PUT("/items/:product_id", h.UpdateItem)
		cart.DELETE("/items/:product_id", h.RemoveItem)
		cart.GET("/whatsapp", h.GetMessageLink)
	}
}

// GetCart godoc
// @Summary Get the session cart
// @Tags cart
// @Produce json
// @Success 200 {object} services.CartResponse
// @Failure 400 {object} ErrorResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	resp, err := h.cartService.GetCart(c.Request.Context(), middleware.GetCartSession(c), middleware.GetLanguage(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddItem godoc
// @Summary Add a product to the cart
// @Description Quantity defaults to 1 and is reduced to the remaining stock
// @Tags cart
// @Accept json
// @Produce json
// @Param request body services.AddToCartRequest true "Product and quantity"
// @Success 200 {object} services.CartResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req services.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.cartService.AddItem(c.Request.Context(), middleware.GetCartSession(c), middleware.GetLanguage(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req services.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.cartService.UpdateQuantity(c.Request.Context(), middleware.GetCartSession(c), middleware.GetLanguage(c),
		c.Param("product_id"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	resp, err := h.cartService.RemoveItem(c.Request.Context(), middleware.GetCartSession(c), middleware.GetLanguage(c), c.Param("product_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	resp, err := h.cartService.Clear(c.Request.Context(), middleware.GetCartSession(c), middleware.GetLanguage(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetItemStatus reports whether a product is in the cart and in what quantity.
func (h *CartHandler) GetItemStatus(c *gin.Context) {
	status, err := h.cartService.ItemStatus(c.Request.Context(), middleware.GetCartSession(c), c.Param("product_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetMessageLink godoc
// @Summary Chat deep link carrying the cart summary
// @Tags cart
// @Produce json
// @Success 200 {object} services.MessageLinkResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /cart/whatsapp [get]
func (h *CartHandler) GetMessageLink(c *gin.Context) {
	link, err := h.cartService.MessageLink(c.Request.Context(), middleware.GetCartSession(c), middleware.GetLanguage(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}
