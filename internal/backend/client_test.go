package backend

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

	"github.com/Spok95/supply-bot/internal/domain/supplies"
	"github.com/Spok95/supply-bot/internal/infra/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, nil, metrics.New(prometheus.NewRegistry()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const zipperList = `{
  "success": true,
  "message": "ok",
  "data": [{
    "id_supply": 7, "description": "Zipper", "active": true,
    "id_supply_type": 3, "measuring_uom_id": 4,
    "type_name": "Closures", "category_name": "Haberdashery", "uom_description": "unidad",
    "total_stock": 3,
    "variants": [
      {"id_supply_variant": 71, "id_supply_color": 1, "color_name": "Red", "stock_actual": 3},
      {"id_supply_variant": 72, "id_supply_color": 2, "color_name": "Blue", "stock_actual": 0}
    ]
  }]
}`

func TestListSupplies_FlattensVariants(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/inventory/supplies" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("Expected X-Request-ID header")
		}
		_, _ = io.WriteString(w, zipperList)
	})

	list, err := c.ListSupplies(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("Expected list to succeed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 supplies, got %d", len(list))
	}
	if list[0].Description != "Zipper - Red" || supplies.Status(list[0].Stock) != supplies.StatusLowStock {
		t.Errorf("Unexpected first row: %+v", list[0])
	}
	if list[1].Description != "Zipper - Blue" || supplies.Status(list[1].Stock) != supplies.StatusNoStock {
		t.Errorf("Unexpected second row: %+v", list[1])
	}
}

func TestListSupplies_QueryFilters(t *testing.T) {
	testCases := []struct {
		name   string
		filter ListFilter
		want   string
	}{
		{"none", ListFilter{}, ""},
		{"description", ListFilter{Description: "zip per"}, "description=zip+per"},
		{"all", ListFilter{Description: "a", TypeID: 3, ColorID: 2}, "description=a&id_supply_color=2&id_supply_type=3"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.RawQuery
				_, _ = io.WriteString(w, `{"success":true,"message":"","data":[]}`)
			})
			if _, err := c.ListSupplies(context.Background(), tc.filter); err != nil {
				t.Fatalf("Expected success: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected query %q, got %q", tc.want, got)
			}
		})
	}
}

func TestListSupplies_EnvelopeFailures(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"success false", `{"success":false,"message":"db down","data":[]}`},
		{"data not a list", `{"success":true,"message":"","data":{"id_supply":1}}`},
		{"data missing", `{"success":true,"message":""}`},
		{"not json", `<html>oops</html>`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := c.ListSupplies(context.Background(), ListFilter{})
			if !errors.Is(err, ErrUnexpectedFormat) {
				t.Errorf("Expected ErrUnexpectedFormat, got %v", err)
			}
		})
	}
}

func TestHTTPError_Message(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message from body", http.StatusBadRequest, `{"message":"insufficient stock"}`, "insufficient stock"},
		{"empty body", http.StatusInternalServerError, ``, "Error 500: Internal Server Error"},
		{"unparseable body", http.StatusBadGateway, `bad gateway`, "Error 502: Bad Gateway"},
		{"body without message", http.StatusNotFound, `{"error":"nope"}`, "Error 404: Not Found"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			err := c.AddVariantStock(context.Background(), 7, supplies.VariantQuantityOperation{ColorID: 2, Quantity: 5})
			var he *HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("Expected *HTTPError, got %T (%v)", err, err)
			}
			if he.StatusCode != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, he.StatusCode)
			}
			if err.Error() != tc.want {
				t.Errorf("Expected message %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestVariantStockRequests(t *testing.T) {
	testCases := []struct {
		name string
		path string
		call func(c *Client, op supplies.VariantQuantityOperation) error
	}{
		{"add", "/api/inventory/supplies/7/variants/add-stock", func(c *Client, op supplies.VariantQuantityOperation) error {
			return c.AddVariantStock(context.Background(), 7, op)
		}},
		{"subtract", "/api/inventory/supplies/7/variants/subtract-stock", func(c *Client, op supplies.VariantQuantityOperation) error {
			return c.SubtractVariantStock(context.Background(), 7, op)
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var body map[string]any
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != tc.path {
					t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("Expected JSON content type, got %q", ct)
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok"})
			})
			if err := tc.call(c, supplies.VariantQuantityOperation{ColorID: 2, Quantity: 5, Notes: "restock"}); err != nil {
				t.Fatalf("Expected success: %v", err)
			}
			if body["id_supply_color"] != float64(2) || body["quantity"] != float64(5) || body["notes"] != "restock" {
				t.Errorf("Unexpected body %v", body)
			}
		})
	}
}

func TestVariantStock_OmitsEmptyNotes(t *testing.T) {
	var raw string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.AddVariantStock(context.Background(), 1, supplies.VariantQuantityOperation{ColorID: 1, Quantity: 1.5}); err != nil {
		t.Fatalf("Expected success on empty body: %v", err)
	}
	if strings.Contains(raw, "notes") {
		t.Errorf("Expected notes to be omitted, got %s", raw)
	}
}

func TestVoidOperation_ExplicitFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"locked"}`)
	})
	err := c.DeleteSupply(context.Background(), 3)
	if !errors.Is(err, ErrUnexpectedFormat) {
		t.Errorf("Expected ErrUnexpectedFormat, got %v", err)
	}
	if err == nil || err.Error() != "locked" {
		t.Errorf("Expected backend message %q, got %v", "locked", err)
	}
}

func TestListSupplies_RejectedMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"db down","data":[]}`)
	})
	_, err := c.ListSupplies(context.Background(), ListFilter{})
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("Expected *RejectedError, got %T (%v)", err, err)
	}
	if rejected.Message != "db down" || err.Error() != "db down" {
		t.Errorf("Expected message %q, got %q", "db down", err.Error())
	}
	if !errors.Is(err, ErrUnexpectedFormat) {
		t.Errorf("Expected ErrUnexpectedFormat, got %v", err)
	}
}

func TestGetSupplyAndMutations(t *testing.T) {
	row := map[string]any{
		"id_supply": 4, "description": "Button", "active": true, "id_supply_color": 2,
		"id_supply_type": 8, "measuring_uom_id": 1, "color_name": "Blue", "type_name": "Fasteners",
		"category_name": "Haberdashery", "uom_description": "paquete", "stock_actual": 15,
	}
	var methods []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok", "data": row})
	})
	ctx := context.Background()

	s, err := c.GetSupply(ctx, 4)
	if err != nil {
		t.Fatalf("Expected get to succeed: %v", err)
	}
	if s.Description != "Button" || s.Unit.Code != "PAQ" || s.Stock.ID != 4 {
		t.Errorf("Unexpected supply %+v", s)
	}
	if _, err := c.CreateSupply(ctx, supplies.CreateSupplyData{Description: "Button", ColorID: 2, TypeID: 8, MeasuringUoMID: 1}); err != nil {
		t.Fatalf("Expected create to succeed: %v", err)
	}
	desc := "Big button"
	if _, err := c.UpdateSupply(ctx, 4, supplies.UpdateSupplyData{Description: &desc}); err != nil {
		t.Fatalf("Expected update to succeed: %v", err)
	}
	if err := c.DeleteSupply(ctx, 4); err != nil {
		t.Fatalf("Expected delete to succeed: %v", err)
	}

	want := []string{
		"GET /api/inventory/supplies/4",
		"POST /api/inventory/supplies",
		"PUT /api/inventory/supplies/4",
		"DELETE /api/inventory/supplies/4",
	}
	if strings.Join(methods, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, methods)
	}
}

func TestGetStock(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/inventory/supplies/71/stock" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"stockActual":"4.50"}`)
	})
	st, err := c.GetStock(context.Background(), 71)
	if err != nil {
		t.Fatalf("Expected success: %v", err)
	}
	if supplies.FormatStock(st) != "4.50" || st.ID != 71 {
		t.Errorf("Unexpected stock %+v", st)
	}
}

func TestGetMovements(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		limit     int
		wantQuery string
		wantLen   int
		wantTotal int
	}{
		{"bare array with defaults", `[{"id":1,"supplyId":7,"movementType":"add","quantity":5}]`, 0, "limit=20&offset=0", 1, 1},
		{"paged object", `{"movements":[{"id":1},{"id":2}],"total":40}`, 2, "limit=2&offset=0", 2, 40},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var query string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.RawQuery
				_, _ = io.WriteString(w, tc.body)
			})
			page, err := c.GetMovements(context.Background(), 7, tc.limit, 0)
			if err != nil {
				t.Fatalf("Expected success: %v", err)
			}
			if query != tc.wantQuery {
				t.Errorf("Expected query %q, got %q", tc.wantQuery, query)
			}
			if len(page.Movements) != tc.wantLen || page.Total != tc.wantTotal {
				t.Errorf("Expected %d/%d, got %d/%d", tc.wantLen, tc.wantTotal, len(page.Movements), page.Total)
			}
		})
	}
}

func TestGetLowStock(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "",
			"data": []map[string]any{
				{"id_supply": 1, "description": "Thread", "color_name": "Black", "uom_description": "rollo", "stock_actual": 2},
			},
		})
	})
	list, err := c.GetLowStock(context.Background(), 0)
	if err != nil {
		t.Fatalf("Expected success: %v", err)
	}
	if query != "threshold=10" {
		t.Errorf("Expected default threshold, got %q", query)
	}
	if len(list) != 1 || !supplies.HasLowStock(list[0].Stock) {
		t.Errorf("Unexpected list %+v", list)
	}
}
