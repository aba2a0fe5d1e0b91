package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/omnicart/fulfillment/internal/domain/errors"
	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/server/http/dto"
	"github.com/omnicart/fulfillment/internal/test"
)

func newTestRouter(facade ServiceFacade) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	orderHandler := NewOrderHandler(facade)
	itemHandler := NewItemHandler(facade)
	healthHandler := NewHealthHandler(facade)

	engine.GET("/health", healthHandler.Check)
	engine.POST("/api/v1/orders", orderHandler.Create)
	engine.GET("/api/v1/orders", orderHandler.List)
	engine.GET("/api/v1/orders/:id", orderHandler.Get)
	engine.PUT("/api/v1/orders/:id", orderHandler.Update)
	engine.DELETE("/api/v1/orders/:id", orderHandler.Delete)
	engine.GET("/api/v1/items", itemHandler.List)
	engine.GET("/api/v1/items/:id", itemHandler.Get)
	return engine
}

func performJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderReturnsCreated(t *testing.T) {
	facade := test.ServiceFacadeStub{
		CreateOrderFn: func(ctx context.Context, items []model.OrderItem) (*model.Order, error) {
			if len(items) != 1 || items[0].Name != "keyboard" {
				t.Fatalf("unexpected items %+v", items)
			}
			return &model.Order{
				ID:     42,
				UserID: 7,
				Owner:  &model.UserProfile{ID: 7, Name: "Jordan", Surname: "Lee"},
				Status: model.OrderStatusNew,
				Items:  items,
			}, nil
		},
	}
	engine := newTestRouter(facade)

	body := dto.CreateOrderRequest{Items: []dto.OrderItemRequest{
		{ItemID: 1, Name: "keyboard", Price: decimal.RequireFromString("10.00"), Quantity: 2},
	}}
	rec := performJSON(t, engine, http.MethodPost, "/api/v1/orders", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != 42 || !resp.TotalAmount.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.User == nil || resp.User.Name != "Jordan" {
		t.Fatalf("expected embedded owner profile, got %+v", resp.User)
	}
}

func TestCreateOrderRejectsMalformedBody(t *testing.T) {
	engine := newTestRouter(test.ServiceFacadeStub{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateOrderMapsValidationError(t *testing.T) {
	facade := test.ServiceFacadeStub{
		CreateOrderFn: func(context.Context, []model.OrderItem) (*model.Order, error) {
			return nil, domainErrors.Validation("items", "order must contain at least one item")
		},
	}
	rec := performJSON(t, newTestRouter(facade), http.MethodPost, "/api/v1/orders", dto.CreateOrderRequest{})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Field != "items" {
		t.Fatalf("expected field items, got %q", resp.Field)
	}
}

func TestGetOrderStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"denied", domainErrors.ErrAuthorizationDenied, http.StatusForbidden},
		{"missing", domainErrors.ErrNotFound, http.StatusNotFound},
		{"conflict", domainErrors.ErrAlreadyExists, http.StatusConflict},
		{"unavailable", domainErrors.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"downstream", &domainErrors.ExternalAPIError{Service: "user-service"}, http.StatusBadGateway},
		{"unknown", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facade := test.ServiceFacadeStub{
				OrderFn: func(context.Context, int64) (*model.Order, error) { return nil, tc.err },
			}
			rec := performJSON(t, newTestRouter(facade), http.MethodGet, "/api/v1/orders/5", nil)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
		})
	}
}

func TestGetOrderRejectsNonNumericID(t *testing.T) {
	rec := performJSON(t, newTestRouter(test.ServiceFacadeStub{}), http.MethodGet, "/api/v1/orders/abc", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestListOrdersParsesFilter(t *testing.T) {
	var captured model.OrderFilter
	facade := test.ServiceFacadeStub{
		OrdersFn: func(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
			captured = filter
			return []model.Order{{ID: 1, Status: model.OrderStatusNew}}, nil
		},
	}
	rec := performJSON(t, newTestRouter(facade), http.MethodGet,
		"/api/v1/orders?ids=1,2&statuses=NEW,PROCESSING&userId=7", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(captured.IDs) != 2 || captured.IDs[1] != 2 {
		t.Fatalf("unexpected ids %v", captured.IDs)
	}
	if len(captured.Statuses) != 2 || captured.Statuses[1] != model.OrderStatusProcessing {
		t.Fatalf("unexpected statuses %v", captured.Statuses)
	}
	if captured.UserID == nil || *captured.UserID != 7 {
		t.Fatalf("unexpected user filter %v", captured.UserID)
	}
}

func TestListOrdersRejectsBadIDs(t *testing.T) {
	rec := performJSON(t, newTestRouter(test.ServiceFacadeStub{}), http.MethodGet, "/api/v1/orders?ids=1,x", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestUpdateOrderRequiresStatus(t *testing.T) {
	rec := performJSON(t, newTestRouter(test.ServiceFacadeStub{}), http.MethodPut,
		"/api/v1/orders/5", dto.UpdateOrderRequest{})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestUpdateOrderSucceeds(t *testing.T) {
	rec := performJSON(t, newTestRouter(test.ServiceFacadeStub{}), http.MethodPut,
		"/api/v1/orders/5", dto.UpdateOrderRequest{Status: "CANCELLED"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dto.OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "CANCELLED" {
		t.Fatalf("unexpected status %q", resp.Status)
	}
}

func TestDeleteOrderReturnsNoContent(t *testing.T) {
	rec := performJSON(t, newTestRouter(test.ServiceFacadeStub{}), http.MethodDelete, "/api/v1/orders/5", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	rec := performJSON(t, newTestRouter(test.ServiceFacadeStub{}), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	failing := test.ServiceFacadeStub{
		HealthFn: func(context.Context) error { return context.DeadlineExceeded },
	}
	rec = performJSON(t, newTestRouter(failing), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestListItemsReturnsCatalog(t *testing.T) {
	facade := test.ServiceFacadeStub{
		ItemsFn: func(context.Context) ([]model.Item, error) {
			return []model.Item{
				{ID: 1, Name: "keyboard", Price: decimal.RequireFromString("10.00")},
				{ID: 2, Name: "mouse", Price: decimal.RequireFromString("5.50")},
			}, nil
		},
	}

	rec := performJSON(t, newTestRouter(facade), http.MethodGet, "/api/v1/items", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp []dto.ItemResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 || resp[1].Name != "mouse" {
		t.Fatalf("unexpected catalog %+v", resp)
	}
}

func TestGetItemMapsNotFound(t *testing.T) {
	facade := test.ServiceFacadeStub{
		ItemFn: func(context.Context, int64) (*model.Item, error) {
			return nil, domainErrors.ErrNotFound
		},
	}
	rec := performJSON(t, newTestRouter(facade), http.MethodGet, "/api/v1/items/9", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetItemRejectsBadID(t *testing.T) {
	rec := performJSON(t, newTestRouter(test.ServiceFacadeStub{}), http.MethodGet, "/api/v1/items/zero", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
