package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mittal-parth/agentic-commerce/internal/cart"
	"github.com/mittal-parth/agentic-commerce/internal/catalogue"
	"github.com/mittal-parth/agentic-commerce/internal/checkout"
	"github.com/mittal-parth/agentic-commerce/internal/domain"
	"github.com/mittal-parth/agentic-commerce/internal/payment"
	"github.com/mittal-parth/agentic-commerce/internal/store"
)

type apiFixture struct {
	store  *store.Store
	signer *payment.Signer
	server *httptest.Server
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations("../store/migrations"))
	t.Cleanup(func() {
		s.Close()
	})

	catalogueSvc := catalogue.NewService(s, nil)
	cartSvc := cart.NewService(s, catalogueSvc)
	merchant := checkout.Merchant{VPA: "merchant@upi", Name: "Test Merchant"}
	checkoutSvc := checkout.NewService(s, catalogueSvc, merchant, 15*time.Minute)
	signer := payment.NewSigner("test-secret")
	reconciler := payment.NewReconciler(s, signer, nil)
	discovery := NewDiscoveryDocument("http://localhost:8080", merchant.Name, merchant.VPA, []string{"Handicrafts", "Textiles"})

	handler := NewHandler(cartSvc, catalogueSvc, checkoutSvc, reconciler, s, discovery)
	server := httptest.NewServer(handler.Router(10 * time.Second))
	t.Cleanup(server.Close)

	return &apiFixture{store: s, signer: signer, server: server}
}

func (f *apiFixture) seedProduct(t *testing.T, id string, pricePaise, stock int64) {
	t.Helper()
	err := f.store.UpsertProduct(context.Background(), &domain.Product{
		ID:           id,
		Title:        "Product " + id,
		PricePaise:   pricePaise,
		InventoryQty: stock,
		Category:     "Handicrafts",
	})
	require.NoError(t, err)
}

// do issues a request with the protocol headers and decodes the JSON
// body into out (when non-nil).
func (f *apiFixture) do(t *testing.T, method, path string, headers map[string]string, body, out interface{}) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func buyerHeaders(key string) map[string]string {
	h := map[string]string{HeaderAgent: "agent-1"}
	if key != "" {
		h[HeaderIdempotencyKey] = key
	}
	return h
}

func decodeErrorCode(t *testing.T, envelope map[string]interface{}) string {
	t.Helper()
	inner, ok := envelope["error"].(map[string]interface{})
	require.True(t, ok, "missing error envelope: %v", envelope)
	code, _ := inner["code"].(string)
	return code
}

func TestDiscovery_Shape(t *testing.T) {
	f := setupAPI(t)

	var doc map[string]interface{}
	resp := f.do(t, http.MethodGet, "/.well-known/ucp", nil, nil, &doc)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ucp, ok := doc["ucp"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2026-01-01", ucp["version"])
	assert.NotEmpty(t, ucp["shop_id"])
	assert.Contains(t, ucp["capabilities"], "checkout")

	paymentDoc, ok := doc["payment"].(map[string]interface{})
	require.True(t, ok)
	handlers, ok := paymentDoc["handlers"].([]interface{})
	require.True(t, ok)
	require.Len(t, handlers, 1)
	handler := handlers[0].(map[string]interface{})
	assert.Equal(t, "upi", handler["method"])
	assert.Equal(t, "merchant@upi", handler["vpa"])
}

func TestRequestID_Echoed(t *testing.T) {
	f := setupAPI(t)

	resp := f.do(t, http.MethodGet, "/health", map[string]string{HeaderRequestID: "req-42"}, nil, nil)
	assert.Equal(t, "req-42", resp.Header.Get(HeaderRequestID))

	resp = f.do(t, http.MethodGet, "/health", nil, nil, nil)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))
}

func TestProducts_ListAndGet(t *testing.T) {
	f := setupAPI(t)
	f.seedProduct(t, "p1", 120000, 10)
	f.seedProduct(t, "p2", 800000, 2)

	var list map[string]interface{}
	resp := f.do(t, http.MethodGet, "/products", nil, nil, &list)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	products, ok := list["products"].([]interface{})
	require.True(t, ok)
	assert.Len(t, products, 2)

	var product map[string]interface{}
	resp = f.do(t, http.MethodGet, "/products/p1", nil, nil, &product)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Product p1", product["title"])
	assert.Equal(t, float64(120000), product["price_paise"])

	var envelope map[string]interface{}
	resp = f.do(t, http.MethodGet, "/products/ghost", nil, nil, &envelope)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decodeErrorCode(t, envelope))
}

func TestCommerceRoutes_RequireAgentHeader(t *testing.T) {
	f := setupAPI(t)

	for _, path := range []string{"/cart", "/orders"} {
		resp := f.do(t, http.MethodGet, path, nil, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestMutations_RequireIdempotencyKey(t *testing.T) {
	f := setupAPI(t)
	f.seedProduct(t, "p1", 120000, 10)

	var envelope map[string]interface{}
	resp := f.do(t, http.MethodPost, "/cart/items", buyerHeaders(""),
		addItemRequestDTO{ProductID: "p1", Quantity: 1}, &envelope)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", decodeErrorCode(t, envelope))

	resp = f.do(t, http.MethodPost, "/checkout-sessions/", buyerHeaders(""), nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCart_AddViewUpdateRemove(t *testing.T) {
	f := setupAPI(t)
	f.seedProduct(t, "p1", 120000, 10)

	var view cartDTO
	resp := f.do(t, http.MethodPost, "/cart/items", buyerHeaders("k1"),
		addItemRequestDTO{ProductID: "p1", Quantity: 2}, &view)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(240000), view.TotalPaise)

	resp = f.do(t, http.MethodPut, "/cart/items/p1", buyerHeaders("k2"),
		updateQuantityRequestDTO{Quantity: 5}, &view)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(600000), view.TotalPaise)

	resp = f.do(t, http.MethodGet, "/cart", buyerHeaders(""), nil, &view)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "agent-1", view.BuyerID)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(5), view.Items[0].Quantity)

	resp = f.do(t, http.MethodDelete, "/cart/items/p1", buyerHeaders("k3"), nil, &view)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, view.Items)
}

func TestCart_AddOverstockConflicts(t *testing.T) {
	f := setupAPI(t)
	f.seedProduct(t, "p1", 120000, 2)

	var envelope map[string]interface{}
	resp := f.do(t, http.MethodPost, "/cart/items", buyerHeaders("k1"),
		addItemRequestDTO{ProductID: "p1", Quantity: 5}, &envelope)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "insufficient_inventory", decodeErrorCode(t, envelope))
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	f := setupAPI(t)

	var envelope map[string]interface{}
	resp := f.do(t, http.MethodPost, "/checkout-sessions/", buyerHeaders("k1"), nil, &envelope)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", decodeErrorCode(t, envelope))
}

func (f *apiFixture) createSession(t *testing.T) checkoutSessionDTO {
	t.Helper()
	f.seedProduct(t, "p1", 120000, 10)

	resp := f.do(t, http.MethodPost, "/cart/items", buyerHeaders("add-1"),
		addItemRequestDTO{ProductID: "p1", Quantity: 2}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session checkoutSessionDTO
	resp = f.do(t, http.MethodPost, "/checkout-sessions/", buyerHeaders("co-1"), nil, &session)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return session
}

func (f *apiFixture) sign(session checkoutSessionDTO) string {
	return f.signer.Sign(&domain.CheckoutSession{
		ID:         session.ID,
		BuyerID:    session.BuyerID,
		TotalPaise: session.TotalPaise,
	})
}

func TestCheckout_CreateAndGet(t *testing.T) {
	f := setupAPI(t)
	session := f.createSession(t)

	assert.Equal(t, "pending", session.Status)
	assert.Equal(t, int64(240000), session.TotalPaise)
	assert.Contains(t, session.PaymentLink, "upi://pay?")
	assert.Contains(t, session.PaymentLink, "am=2400.00")
	assert.NotEmpty(t, session.QRImage)

	var got checkoutSessionDTO
	resp := f.do(t, http.MethodGet, "/checkout-sessions/"+session.ID, buyerHeaders(""), nil, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.PaymentLink, got.PaymentLink)
}

func TestCompleteCheckout_RequiresSignatureHeader(t *testing.T) {
	f := setupAPI(t)
	session := f.createSession(t)

	var envelope map[string]interface{}
	resp := f.do(t, http.MethodPost, "/checkout-sessions/"+session.ID+"/complete",
		buyerHeaders("pay-1"), completeCheckoutRequestDTO{UTR: "UTR123"}, &envelope)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", decodeErrorCode(t, envelope))
}

func TestCompleteCheckout_BadSignature(t *testing.T) {
	f := setupAPI(t)
	session := f.createSession(t)

	headers := buyerHeaders("pay-1")
	headers[HeaderSignature] = "deadbeef"

	var envelope map[string]interface{}
	resp := f.do(t, http.MethodPost, "/checkout-sessions/"+session.ID+"/complete",
		headers, completeCheckoutRequestDTO{UTR: "UTR123"}, &envelope)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_signature", decodeErrorCode(t, envelope))
}

func TestCompleteCheckout_HappyPathAndReplay(t *testing.T) {
	f := setupAPI(t)
	session := f.createSession(t)

	headers := buyerHeaders("pay-1")
	headers[HeaderSignature] = f.sign(session)

	var result paymentResultDTO
	resp := f.do(t, http.MethodPost, "/checkout-sessions/"+session.ID+"/complete",
		headers, completeCheckoutRequestDTO{UTR: "UTR123"}, &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "paid", result.Status)
	assert.NotEmpty(t, result.OrderID)

	// Replay with the same key observes the identical result
	var replay paymentResultDTO
	resp = f.do(t, http.MethodPost, "/checkout-sessions/"+session.ID+"/complete",
		headers, completeCheckoutRequestDTO{UTR: "UTR123"}, &replay)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, result.OrderID, replay.OrderID)

	// A fresh key against the settled session conflicts
	headers2 := buyerHeaders("pay-2")
	headers2[HeaderSignature] = f.sign(session)
	var envelope map[string]interface{}
	resp = f.do(t, http.MethodPost, "/checkout-sessions/"+session.ID+"/complete",
		headers2, completeCheckoutRequestDTO{UTR: "UTR456"}, &envelope)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", decodeErrorCode(t, envelope))

	// The order is queryable by session
	var order orderDTO
	resp = f.do(t, http.MethodGet, "/orders/"+session.ID, buyerHeaders(""), nil, &order)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, result.OrderID, order.ID)
	assert.Equal(t, "completed", order.Status)
	assert.Equal(t, "UTR123", order.UTR)
}

func TestCompleteCheckout_MissingUTR(t *testing.T) {
	f := setupAPI(t)
	session := f.createSession(t)

	headers := buyerHeaders("pay-1")
	headers[HeaderSignature] = f.sign(session)

	var envelope map[string]interface{}
	resp := f.do(t, http.MethodPost, "/checkout-sessions/"+session.ID+"/complete",
		headers, completeCheckoutRequestDTO{}, &envelope)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", decodeErrorCode(t, envelope))
}

func TestCancelCheckout_RecordsFailedOrder(t *testing.T) {
	f := setupAPI(t)
	session := f.createSession(t)

	headers := buyerHeaders("cancel-1")
	headers[HeaderSignature] = f.sign(session)

	var result paymentResultDTO
	resp := f.do(t, http.MethodPost, "/checkout-sessions/"+session.ID+"/cancel",
		headers, nil, &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "failed", result.Status)

	// Stock was never touched
	var product map[string]interface{}
	resp = f.do(t, http.MethodGet, "/products/p1", nil, nil, &product)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(10), product["inventory_qty"])
}

func TestCompleteCheckout_ExpiredSessionGone(t *testing.T) {
	f := setupAPI(t)
	f.seedProduct(t, "p1", 120000, 10)

	now := time.Now().UTC()
	session := &domain.CheckoutSession{
		ID:         "cs-stale",
		BuyerID:    "agent-1",
		LineItems:  []domain.LineItem{{ProductID: "p1", Title: "Product p1", Quantity: 1, UnitPricePaise: 120000, SubtotalPaise: 120000}},
		TotalPaise: 120000,
		Status:     domain.CheckoutStatusPending,
		CreatedAt:  now.Add(-time.Hour),
		UpdatedAt:  now.Add(-time.Hour),
		ExpiresAt:  now.Add(-45 * time.Minute),
	}
	require.NoError(t, f.store.CreateCheckoutSession(context.Background(), session))

	headers := buyerHeaders("pay-1")
	headers[HeaderSignature] = f.signer.Sign(session)

	var envelope map[string]interface{}
	resp := f.do(t, http.MethodPost, "/checkout-sessions/cs-stale/complete",
		headers, completeCheckoutRequestDTO{UTR: "UTR123"}, &envelope)
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Equal(t, "expired", decodeErrorCode(t, envelope))

	// Reading the session back shows expired
	var got checkoutSessionDTO
	resp = f.do(t, http.MethodGet, "/checkout-sessions/cs-stale", buyerHeaders(""), nil, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "expired", got.Status)
}

func TestOrders_ListByBuyer(t *testing.T) {
	f := setupAPI(t)
	session := f.createSession(t)

	headers := buyerHeaders("pay-1")
	headers[HeaderSignature] = f.sign(session)
	resp := f.do(t, http.MethodPost, "/checkout-sessions/"+session.ID+"/complete",
		headers, completeCheckoutRequestDTO{UTR: "UTR123"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list map[string]interface{}
	resp = f.do(t, http.MethodGet, "/orders", buyerHeaders(""), nil, &list)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), list["count"])

	var envelope map[string]interface{}
	resp = f.do(t, http.MethodGet, "/orders/ghost", buyerHeaders(""), nil, &envelope)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decodeErrorCode(t, envelope))
}
