package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pos-storefront-backend/internal/middleware"
	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCartService struct {
	err        error
	lastSess   string
	lastLang   string
	lastAdd    *services.AddToCartRequest
	lastQty    int
	lastProdID string
}

func (s *stubCartService) response() *services.CartResponse {
	return &services.CartResponse{
		Items:      []services.CartItemResponse{},
		TotalItems: s.lastQty,
		TotalPrice: decimal.RequireFromString("10.5"),
	}
}

func (s *stubCartService) GetCart(_ context.Context, sessionID, lang string) (*services.CartResponse, error) {
	s.lastSess, s.lastLang = sessionID, lang
	return s.response(), s.err
}

func (s *stubCartService) AddItem(_ context.Context, sessionID, lang string, req *services.AddToCartRequest) (*services.CartResponse, error) {
	s.lastSess, s.lastLang, s.lastAdd = sessionID, lang, req
	if s.err != nil {
		return nil, s.err
	}
	return s.response(), nil
}

func (s *stubCartService) UpdateQuantity(_ context.Context, sessionID, lang, productID string, quantity int) (*services.CartResponse, error) {
	s.lastSess, s.lastLang, s.lastProdID, s.lastQty = sessionID, lang, productID, quantity
	if s.err != nil {
		return nil, s.err
	}
	return s.response(), nil
}

func (s *stubCartService) RemoveItem(_ context.Context, sessionID, lang, productID string) (*services.CartResponse, error) {
	s.lastSess, s.lastProdID = sessionID, productID
	return s.response(), s.err
}

func (s *stubCartService) Clear(_ context.Context, sessionID, lang string) (*services.CartResponse, error) {
	s.lastSess = sessionID
	return s.response(), s.err
}

func (s *stubCartService) ItemStatus(_ context.Context, sessionID, productID string) (*services.CartItemStatus, error) {
	s.lastSess, s.lastProdID = sessionID, productID
	return &services.CartItemStatus{ProductID: productID, InCart: true, Quantity: 2}, s.err
}

func (s *stubCartService) MessageLink(_ context.Context, sessionID, lang string) (*services.MessageLinkResponse, error) {
	s.lastSess, s.lastLang = sessionID, lang
	if s.err != nil {
		return nil, s.err
	}
	return &services.MessageLinkResponse{URL: "https://wa.me/966500000000?text=hi", Message: "hi"}, nil
}

type stubCheckoutService struct {
	validateErr error
	placeErr    error
	lastForm    services.CheckoutForm
}

func (s *stubCheckoutService) ValidateStep(step string, form services.CheckoutForm) (*services.StepValidation, error) {
	s.lastForm = form
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return &services.StepValidation{Valid: true, Step: step, NextStep: services.StepShipping}, nil
}

func (s *stubCheckoutService) PlaceOrder(_ context.Context, _, _ string, form services.CheckoutForm) (*services.PlaceOrderResult, error) {
	s.lastForm = form
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return &services.PlaceOrderResult{Order: &models.Order{OrderNumber: "ORD-20260101-ABCDEF"}}, nil
}

func newShopRouter(cartSvc CartServiceInterface, checkoutSvc CheckoutServiceInterface) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Language("ar"))
	shop := r.Group("/api/v1")
	shop.Use(middleware.CartSession(false))
	NewCartHandler(cartSvc).RegisterRoutes(shop)
	NewCheckoutHandler(checkoutSvc).RegisterRoutes(shop)
	return r
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCartRoutesUseSessionAndLanguage(t *testing.T) {
	svc := &stubCartService{}
	r := newShopRouter(svc, &stubCheckoutService{})

	w := do(r, http.MethodGet, "/api/v1/cart", "", map[string]string{
		middleware.CartSessionHeader: "session-abc-123",
		"Accept-Language":            "en-US,en;q=0.9",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "session-abc-123", svc.lastSess)
	assert.Equal(t, "en", svc.lastLang)

	var body services.CartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, decimal.RequireFromString("10.5").Equal(body.TotalPrice))
}

func TestCartIssuesSessionWhenMissing(t *testing.T) {
	svc := &stubCartService{}
	r := newShopRouter(svc, &stubCheckoutService{})

	w := do(r, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, svc.lastSess)
	assert.Equal(t, svc.lastSess, w.Header().Get(middleware.CartSessionHeader))
	assert.Equal(t, "ar", svc.lastLang)
}

func TestAddItemBindsBody(t *testing.T) {
	svc := &stubCartService{}
	r := newShopRouter(svc, &stubCheckoutService{})

	w := do(r, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1","quantity":3}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastAdd)
	assert.Equal(t, "p1", svc.lastAdd.ProductID)
	assert.Equal(t, 3, svc.lastAdd.Quantity)

	w = do(r, http.MethodPost, "/api/v1/cart/items", `{"quantity":3}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndRemoveItemUseRouteParam(t *testing.T) {
	svc := &stubCartService{}
	r := newShopRouter(svc, &stubCheckoutService{})

	w := do(r, http.MethodPut, "/api/v1/cart/items/p9", `{"quantity":0}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p9", svc.lastProdID)
	assert.Equal(t, 0, svc.lastQty)

	w = do(r, http.MethodDelete, "/api/v1/cart/items/p7", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p7", svc.lastProdID)

	w = do(r, http.MethodGet, "/api/v1/cart/items/p5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"product_id":"p5","in_cart":true,"quantity":2}`, w.Body.String())
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{services.ErrProductNotFound, http.StatusNotFound},
		{fmt.Errorf("add: %w", services.ErrOutOfStock), http.StatusConflict},
		{services.ErrProductUnavailable, http.StatusConflict},
		{services.ErrInvalidInput, http.StatusBadRequest},
		{services.ErrEmptyCart, http.StatusBadRequest},
		{services.ErrNoMessagingNumber, http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := &stubCartService{err: tc.err}
		r := newShopRouter(svc, &stubCheckoutService{})
		w := do(r, http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1"}`, nil)
		assert.Equal(t, tc.code, w.Code, "err=%v", tc.err)
	}
}

func TestInternalErrorDoesNotLeakMessage(t *testing.T) {
	svc := &stubCartService{err: fmt.Errorf("redis: connection refused")}
	r := newShopRouter(svc, &stubCheckoutService{})

	w := do(r, http.MethodGet, "/api/v1/cart/whatsapp", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "redis")
}

func TestMessageLinkRoute(t *testing.T) {
	svc := &stubCartService{}
	r := newShopRouter(svc, &stubCheckoutService{})

	w := do(r, http.MethodGet, "/api/v1/cart/whatsapp?lang=en", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "en", svc.lastLang)
	assert.Contains(t, w.Body.String(), "wa.me")
}

func TestCheckoutValidateStep(t *testing.T) {
	checkout := &stubCheckoutService{}
	r := newShopRouter(&stubCartService{}, checkout)

	w := do(r, http.MethodPost, "/api/v1/checkout/validate",
		`{"step":"contact","form":{"full_name":"سارة","phone":"+966500000000"}}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "سارة", checkout.lastForm.FullName)

	w = do(r, http.MethodPost, "/api/v1/checkout/validate", `{"form":{}}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutValidationErrorCarriesFields(t *testing.T) {
	checkout := &stubCheckoutService{placeErr: &services.ValidationError{
		Step:   services.StepShipping,
		Fields: services.FieldErrors{"city": "required"},
	}}
	r := newShopRouter(&stubCartService{}, checkout)

	w := do(r, http.MethodPost, "/api/v1/checkout", `{"form":{"full_name":"Sara"}}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, services.StepShipping, body.Step)
	assert.Equal(t, "required", body.Fields["city"])
}

func TestPlaceOrderCreated(t *testing.T) {
	r := newShopRouter(&stubCartService{}, &stubCheckoutService{})

	w := do(r, http.MethodPost, "/api/v1/checkout", `{"form":{"full_name":"Sara"}}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "ORD-20260101-ABCDEF")
}

func TestPaging(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		limit, offset := paging(c)
		c.JSON(http.StatusOK, gin.H{"limit": limit, "offset": offset})
	})

	w := do(r, http.MethodGet, "/", "", nil)
	assert.JSONEq(t, `{"limit":20,"offset":0}`, w.Body.String())

	w = do(r, http.MethodGet, "/?limit=5&offset=10", "", nil)
	assert.JSONEq(t, `{"limit":5,"offset":10}`, w.Body.String())
}
