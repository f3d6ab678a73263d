package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pos-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Error  string               `json:"error"`
	Step   string               `json:"step"`
	Fields services.FieldErrors `json:"fields"`
}

type errorMapping struct {
	target error
	status int
	title  string
}

// ordered: the first match wins
var errorMappings = []errorMapping{
	{services.ErrProductNotFound, http.StatusNotFound, "Product not found"},
	{services.ErrCategoryNotFound, http.StatusNotFound, "Category not found"},
	{services.ErrOrderNotFound, http.StatusNotFound, "Order not found"},
	{services.ErrOutOfStock, http.StatusConflict, "Out of stock"},
	{services.ErrProductUnavailable, http.StatusConflict, "Product unavailable"},
	{services.ErrCategoryInUse, http.StatusConflict, "Category in use"},
	{services.ErrInvalidStatusTransition, http.StatusConflict, "Invalid status transition"},
	{services.ErrEmptyCart, http.StatusBadRequest, "Cart is empty"},
	{services.ErrUnknownStep, http.StatusBadRequest, "Unknown checkout step"},
	{services.ErrInvalidInput, http.StatusBadRequest, "Invalid request"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{services.ErrInvalidRefreshToken, http.StatusUnauthorized, "Invalid refresh token"},
	{services.ErrNoMessagingNumber, http.StatusServiceUnavailable, "Messaging unavailable"},
}

// respondError writes the ErrorResponse matching err. Unmapped errors are
// reported as 500 without leaking their text.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "Validation failed",
			Step:   verr.Step,
			Fields: verr.Fields,
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, ErrorResponse{Error: m.title, Message: err.Error()})
			return
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal server error",
		Message: "Something went wrong, please try again",
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request body",
		Message: err.Error(),
	})
}

// paging reads limit and offset query parameters; services clamp the values.
func paging(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}
