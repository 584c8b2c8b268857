package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Spok95/supply-bot/internal/domain/supplies"
)

const (
	DefaultMovementsLimit    = 20
	DefaultLowStockThreshold = supplies.LowStockThreshold
)

// ListFilter: серверные фильтры списка; нулевые поля не передаются.
type ListFilter struct {
	Description string
	TypeID      int64
	ColorID     int64
}

func (f ListFilter) values() url.Values {
	q := url.Values{}
	if f.Description != "" {
		q.Set("description", f.Description)
	}
	if f.TypeID != 0 {
		q.Set("id_supply_type", strconv.FormatInt(f.TypeID, 10))
	}
	if f.ColorID != 0 {
		q.Set("id_supply_color", strconv.FormatInt(f.ColorID, 10))
	}
	return q
}

// MovementsPage: история движений; Total может быть 0, если бэкенд отдал голый массив.
type MovementsPage struct {
	Movements []supplies.Movement `json:"movements"`
	Total     int                 `json:"total"`
}

func supplyPath(id int64) string {
	return "/supplies/" + strconv.FormatInt(id, 10)
}

// ListSupplies отдаёт плоский список: по строке на каждый цветовой вариант.
func (c *Client) ListSupplies(ctx context.Context, f ListFilter) ([]supplies.Supply, error) {
	var list []supplies.BackendSupplyWithVariants
	err := c.call(ctx, "list_supplies", http.MethodGet, "/supplies", f.values(), nil, func(raw []byte) error {
		return unwrap(raw, &list)
	})
	if err != nil {
		return nil, err
	}
	return supplies.Flatten(list), nil
}

func (c *Client) GetSupply(ctx context.Context, id int64) (supplies.Supply, error) {
	var b supplies.BackendSupply
	err := c.call(ctx, "get_supply", http.MethodGet, supplyPath(id), nil, nil, func(raw []byte) error {
		return unwrap(raw, &b)
	})
	if err != nil {
		return supplies.Supply{}, err
	}
	return supplies.FromBackend(b), nil
}

func (c *Client) CreateSupply(ctx context.Context, data supplies.CreateSupplyData) (supplies.Supply, error) {
	var b supplies.BackendSupply
	err := c.call(ctx, "create_supply", http.MethodPost, "/supplies", nil, data, func(raw []byte) error {
		return unwrap(raw, &b)
	})
	if err != nil {
		return supplies.Supply{}, err
	}
	return supplies.FromBackend(b), nil
}

func (c *Client) UpdateSupply(ctx context.Context, id int64, data supplies.UpdateSupplyData) (supplies.Supply, error) {
	var b supplies.BackendSupply
	err := c.call(ctx, "update_supply", http.MethodPut, supplyPath(id), nil, data, func(raw []byte) error {
		return unwrap(raw, &b)
	})
	if err != nil {
		return supplies.Supply{}, err
	}
	return supplies.FromBackend(b), nil
}

func (c *Client) DeleteSupply(ctx context.Context, id int64) error {
	return c.call(ctx, "delete_supply", http.MethodDelete, supplyPath(id), nil, nil, unwrapVoid)
}

// AddVariantStock приходует количество на вариант (цвет) материала.
func (c *Client) AddVariantStock(ctx context.Context, supplyID int64, op supplies.VariantQuantityOperation) error {
	return c.call(ctx, "add_variant_stock", http.MethodPost,
		supplyPath(supplyID)+"/variants/add-stock", nil, op, unwrapVoid)
}

// SubtractVariantStock списывает количество с варианта (цвета) материала.
func (c *Client) SubtractVariantStock(ctx context.Context, supplyID int64, op supplies.VariantQuantityOperation) error {
	return c.call(ctx, "subtract_variant_stock", http.MethodPost,
		supplyPath(supplyID)+"/variants/subtract-stock", nil, op, unwrapVoid)
}

// GetStock: текущий остаток строкой, без конверта.
func (c *Client) GetStock(ctx context.Context, supplyID int64) (*supplies.StockInfo, error) {
	var resp supplies.StockResponse
	err := c.call(ctx, "get_stock", http.MethodGet, supplyPath(supplyID)+"/stock", nil, nil, func(raw []byte) error {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &supplies.StockInfo{ID: supplyID, Quantity: resp.StockActual}, nil
}

// GetMovements: история с пагинацией; limit <= 0 берёт значение по умолчанию.
func (c *Client) GetMovements(ctx context.Context, supplyID int64, limit, offset int) (MovementsPage, error) {
	if limit <= 0 {
		limit = DefaultMovementsLimit
	}
	if offset < 0 {
		offset = 0
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var page MovementsPage
	err := c.call(ctx, "get_movements", http.MethodGet, supplyPath(supplyID)+"/movements", q, nil, func(raw []byte) error {
		return decodeMovements(raw, &page)
	})
	return page, err
}

// decodeMovements понимает и голый массив, и {movements, total}.
func decodeMovements(raw []byte, page *MovementsPage) error {
	var list []supplies.Movement
	if err := json.Unmarshal(raw, &list); err == nil {
		page.Movements = list
		page.Total = len(list)
		return nil
	}
	if err := json.Unmarshal(raw, page); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
	}
	return nil
}

// GetLowStock: отчёт по материалам с остатком ниже порога; threshold <= 0 берёт порог по умолчанию.
func (c *Client) GetLowStock(ctx context.Context, threshold float64) ([]supplies.Supply, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	q := url.Values{}
	q.Set("threshold", strconv.FormatFloat(threshold, 'f', -1, 64))

	var list []supplies.BackendSupply
	err := c.call(ctx, "low_stock", http.MethodGet, "/reports/low-stock", q, nil, func(raw []byte) error {
		return unwrap(raw, &list)
	})
	if err != nil {
		return nil, err
	}
	out := make([]supplies.Supply, 0, len(list))
	for _, b := range list {
		out = append(out, supplies.FromBackend(b))
	}
	return out, nil
}
