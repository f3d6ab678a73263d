package handlers

import (
	"net/http"
	"strconv"

	"pos-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService  ProductServiceInterface
	categoryService CategoryServiceInterface
}

func NewProductHandler(productService ProductServiceInterface, categoryService CategoryServiceInterface) *ProductHandler {
	return &ProductHandler{
		productService:  productService,
		categoryService: categoryService,
	}
}

// RegisterRoutes registers the public catalog routes and the admin catalog routes
func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup, admin *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
	}
	router.GET("/categories", h.ListCategories)

	adminProducts := admin.Group("/products")
	{
		adminProducts.GET("", h.AdminListProducts)
		adminProducts.GET("/:id", h.AdminGetProduct)
		adminProducts.POST("", h.CreateProduct)
		adminProducts.PUT("/:id", h.UpdateProduct)
		adminProducts.DELETE("/:id", h.DeleteProduct)
	}

	adminCategories := admin.Group("/categories")
	{
		adminCategories.GET("", h.AdminListCategories)
		adminCategories.POST("", h.CreateCategory)
		adminCategories.PUT("/:id", h.UpdateCategory)
		adminCategories.DELETE("/:id", h.DeleteCategory)
	}
}

func productQuery(c *gin.Context, includeInactive bool) services.ProductQuery {
	limit, offset := paging(c)
	featured, _ := strconv.ParseBool(c.DefaultQuery("featured", "false"))
	return services.ProductQuery{
		CategoryID:      c.Query("category_id"),
		Query:           c.Query("q"),
		FeaturedOnly:    featured,
		IncludeInactive: includeInactive,
		Limit:           limit,
		Offset:          offset,
	}
}

// ListProducts godoc
// @Summary List active products
// @Tags products
// @Produce json
// @Param category_id query string false "Category ID"
// @Param q query string false "Search in both names and SKU"
// @Param featured query bool false "Featured only"
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} services.ProductList
// @Router /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	list, err := h.productService.ListProducts(c.Request.Context(), productQuery(c, false))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetActiveProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *ProductHandler) AdminListProducts(c *gin.Context) {
	list, err := h.productService.ListProducts(c.Request.Context(), productQuery(c, true))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) AdminGetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct godoc
// @Summary Create a product
// @Tags admin
// @Accept json
// @Produce json
// @Param request body services.CreateProductRequest true "Product"
// @Success 201 {object} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /admin/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) AdminListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *ProductHandler) UpdateCategory(c *gin.Context) {
	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory answers 409 while products still reference the category.
func (h *ProductHandler) DeleteCategory(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
