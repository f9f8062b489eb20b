package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"commerce-backoffice/internal/app"
	"commerce-backoffice/internal/core"
)

// fakeService lets each test script the facade's behavior.
type fakeService struct {
	app.ApplicationService
	posCheckout func(context.Context, app.POSCheckoutRequest) (*app.OrderResult, error)
	getOrder    func(context.Context, int) (*app.OrderResult, error)
	stockLevels func(context.Context) (*app.StockResult, error)
}

func (f *fakeService) CheckoutPOS(ctx context.Context, req app.POSCheckoutRequest) (*app.OrderResult, error) {
	return f.posCheckout(ctx, req)
}

func (f *fakeService) GetOrder(ctx context.Context, id int) (*app.OrderResult, error) {
	return f.getOrder(ctx, id)
}

func (f *fakeService) GetStockLevels(ctx context.Context) (*app.StockResult, error) {
	return f.stockLevels(ctx)
}

func newTestHandler(svc app.ApplicationService) http.Handler {
	return NewHandler(svc, "", zap.NewNop())
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestPOSCheckout_Success(t *testing.T) {
	order := &core.Order{ID: 1, OrderNumber: "POS-ABC", Total: decimal.NewFromInt(210)}
	svc := &fakeService{
		posCheckout: func(_ context.Context, req app.POSCheckoutRequest) (*app.OrderResult, error) {
			assert.Equal(t, "cust-local", req.CustomerKey)
			return &app.OrderResult{Order: order}, nil
		},
	}
	h := newTestHandler(svc)

	body := `{"customer_key":"cust-local","lines":[{"sku":"TEA-250","quantity":2}],"payment_method":"cash","operator":"till-1"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/pos/checkout", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var res app.OrderResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "POS-ABC", res.Order.OrderNumber)
}

func TestPOSCheckout_DomainErrorsMapToStatusCodes(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{core.ErrInsufficientStock, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{core.ErrEmptyCart, http.StatusUnprocessableEntity, "EMPTY_CART"},
		{core.ErrAlreadyProcessing, http.StatusConflict, "ALREADY_PROCESSING"},
		{core.ErrCouponExpired, http.StatusUnprocessableEntity, "COUPON_REJECTED"},
	}

	for _, tc := range cases {
		svc := &fakeService{
			posCheckout: func(context.Context, app.POSCheckoutRequest) (*app.OrderResult, error) {
				return nil, tc.err
			},
		}
		h := newTestHandler(svc)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/pos/checkout",
			strings.NewReader(`{"customer_key":"x"}`)))

		assert.Equal(t, tc.wantStatus, rec.Code, "error %v", tc.err)
		assert.Contains(t, rec.Body.String(), tc.wantCode)
	}
}

func TestPOSCheckout_MalformedJSON(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/pos/checkout", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BAD_REQUEST")
}

func TestGetOrder_InvalidID(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStockLevels(t *testing.T) {
	svc := &fakeService{
		stockLevels: func(context.Context) (*app.StockResult, error) {
			return &app.StockResult{Items: []core.InventoryItem{
				{ID: 1, SKU: "TEA-250", Quantity: 20, Status: core.StatusInStock},
			}}, nil
		},
	}
	h := newTestHandler(svc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stock", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "TEA-250")
}

func TestRequestIDHeaderIsAlwaysSet(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	// A well-formed caller ID is preserved.
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "caller-id-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id-1", rec.Header().Get("X-Request-ID"))

	// A malformed one is replaced.
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "bad id with spaces")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id with spaces", rec.Header().Get("X-Request-ID"))
}
