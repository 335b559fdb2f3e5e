// README: Handler tests for request parsing and role gating.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"parcelbid/internal/http/handlers"
	httpmiddleware "parcelbid/internal/http/middleware"
	"parcelbid/internal/infra"
	"parcelbid/internal/modules/order"
)

// stubTokenVerifier is a test double for infra.TokenVerifier.
type stubTokenVerifier struct {
	token *infra.IdentityToken
	err   error
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.IdentityToken, error) {
	return s.token, s.err
}

// buildTestRouter wires a minimal engine with the auth middleware and the
// handlers under test. order.NewService(nil, nil, nil, nil) is safe here
// because every exercised path fails before any service method is called.
func buildTestRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := order.NewService(nil, nil, nil, nil)
	r := gin.New()
	r.Use(httpmiddleware.Auth(verifier))

	orderHandler := handlers.NewOrderHandler(svc)
	driverHandler := handlers.NewDriverHandler(svc, nil)

	customer := r.Group("", httpmiddleware.RequireRole(httpmiddleware.RoleCustomer))
	customer.POST("/api/orders", orderHandler.Create)

	driver := r.Group("/api/drivers", httpmiddleware.RequireRole(httpmiddleware.RoleDriver))
	driver.POST("/orders/:id/bids", driverHandler.PlaceBid)
	return r
}

func makeVerifier(uid, role string) *stubTokenVerifier {
	claims := map[string]interface{}{}
	if role != "" {
		claims["role"] = role
	}
	return &stubTokenVerifier{token: &infra.IdentityToken{UID: uid, Claims: claims}}
}

func doRequest(r *gin.Engine, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrder_Unauthenticated(t *testing.T) {
	r := buildTestRouter(makeVerifier("cust1", "customer"))
	w := doRequest(r, http.MethodPost, "/api/orders", map[string]any{"title": "Books"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestCreateOrder_DriverRoleRejected(t *testing.T) {
	r := buildTestRouter(makeVerifier("drv1", "driver"))
	w := doRequest(r, http.MethodPost, "/api/orders", map[string]any{"title": "Books"}, "Bearer t")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestCreateOrder_BadPrice(t *testing.T) {
	r := buildTestRouter(makeVerifier("cust1", "customer"))
	body := map[string]any{
		"title":    "Books",
		"pickup":   map[string]any{"address": "1 Main St"},
		"delivery": map[string]any{"address": "2 Oak Ave"},
		"price":    "25.001",
	}
	w := doRequest(r, http.MethodPost, "/api/orders", body, "Bearer t")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPlaceBid_BadPrice(t *testing.T) {
	r := buildTestRouter(makeVerifier("drv1", "driver"))
	body := map[string]any{"driver_name": "Dana", "price": "abc"}
	w := doRequest(r, http.MethodPost, "/api/drivers/orders/o1/bids", body, "Bearer t")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPlaceBid_CustomerRoleRejected(t *testing.T) {
	r := buildTestRouter(makeVerifier("cust1", "customer"))
	body := map[string]any{"driver_name": "Dana", "price": "20.00"}
	w := doRequest(r, http.MethodPost, "/api/drivers/orders/o1/bids", body, "Bearer t")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
