package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agamariel/orderdesk/internal/models"
	"github.com/shopspring/decimal"
)

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":1,"order_number":"PO-1","date":"2024-05-01","status":"Pending","total_price":"29.97"}]`)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	orders, err := client.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].OrderNumber != "PO-1" {
		t.Errorf("unexpected order number %q", orders[0].OrderNumber)
	}
	if !orders[0].TotalPrice.Equal(decimal.RequireFromString("29.97")) {
		t.Errorf("unexpected total %s", orders[0].TotalPrice)
	}
}

func TestClient_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/orders/42" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			io.WriteString(w, `{"id":42,"order_number":"PO-42","date":"2024-05-01","status":"Completed","total_price":"0","items":[]}`)
		}))
		defer srv.Close()

		order, err := New(srv.URL, time.Second).Get(context.Background(), 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.ID != 42 || order.Status != models.OrderStatusCompleted {
			t.Errorf("unexpected order: %+v", order)
		}
	})

	t.Run("not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := New(srv.URL, time.Second).Get(context.Background(), 99)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestClient_Create(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":7,"order_number":"PO-1","date":"2024-05-01","status":"Pending","total_price":"29.97"}`)
	}))
	defer srv.Close()

	payload := &models.OrderPayload{
		OrderNumber: "PO-1",
		Date:        "2024-05-01",
		Status:      models.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: 1, Name: "Widget", UnitPrice: decimal.RequireFromString("9.99"), Quantity: 3},
		},
	}

	order, err := New(srv.URL, time.Second).Create(context.Background(), payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 7 {
		t.Errorf("expected assigned id 7, got %d", order.ID)
	}

	// Итог не отправляется: его считает бэкенд
	if strings.Contains(gotBody, "total_price") {
		t.Errorf("payload must not contain total_price: %s", gotBody)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(gotBody), &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	for _, key := range []string{"order_number", "date", "status", "items"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("payload missing %q: %s", key, gotBody)
		}
	}
	if !strings.Contains(gotBody, `"unit_price":"9.99"`) {
		t.Errorf("unit_price must cross the wire as a decimal string: %s", gotBody)
	}
}

func TestClient_Update(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		io.WriteString(w, `{"id":42,"order_number":"PO-42","date":"2024-05-01","status":"InProgress","total_price":"5.50"}`)
	}))
	defer srv.Close()

	payload := &models.OrderPayload{OrderNumber: "PO-42", Date: "2024-05-01", Status: models.OrderStatusInProgress, Items: []models.OrderItem{}}
	if _, err := New(srv.URL, time.Second).Update(context.Background(), 42, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/orders/42" {
		t.Errorf("expected PUT /orders/42, got %s %s", gotMethod, gotPath)
	}
}

func TestClient_Delete(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := New(srv.URL, time.Second).Delete(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/orders/5" {
		t.Errorf("expected DELETE /orders/5, got %s %s", gotMethod, gotPath)
	}
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "boom")
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).List(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusInternalServerError {
		t.Errorf("unexpected code %d", statusErr.Code)
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // закрываем сразу, чтобы получить сетевую ошибку

	_, err := New(srv.URL, time.Second).List(context.Background())
	if err == nil {
		t.Fatal("expected network error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("network failure must not map to ErrNotFound")
	}
}

func TestClient_ListProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `[{"id":1,"name":"Widget","unit_price":"9.99"},{"id":2,"name":"Gadget","unit_price":"5.50"}]`)
	}))
	defer srv.Close()

	products, err := New(srv.URL, time.Second).ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[1].Name != "Gadget" || !products[1].UnitPrice.Equal(decimal.RequireFromString("5.50")) {
		t.Errorf("unexpected product: %+v", products[1])
	}
}
