package supplies

import "time"

// Supply: строка представления: одна на пару (базовый материал, цвет).
// ID общий для всех вариантов одного материала, идентичность варианта, Stock.ID.
type Supply struct {
	ID             int64         `json:"idSupply"`
	Description    string        `json:"description"`
	Active         bool          `json:"active"`
	ColorID        int64         `json:"idSupplyColor"`
	TypeID         int64         `json:"idSupplyType"`
	MeasuringUoMID int64         `json:"measuringUomId"`
	Color          Color         `json:"supplyColor"`
	Type           Type          `json:"supplyType"`
	Unit           UnitOfMeasure `json:"unitOfMeasure"`
	Stock          *StockInfo    `json:"stock"`
}

type Color struct {
	ID   int64  `json:"idSupplyColor"`
	Name string `json:"name"`
}

type Category struct {
	ID     int64  `json:"idSupplyCategory"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type Type struct {
	ID         int64    `json:"idSupplyType"`
	Name       string   `json:"name"`
	CategoryID int64    `json:"idSupplyCategory"`
	Category   Category `json:"supplyCategory"`
}

type UnitOfMeasure struct {
	ID          int64  `json:"idUom"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// StockInfo: остаток строки-носителя. Quantity хранится строкой, как отдаёт бэкенд.
type StockInfo struct {
	ID       int64  `json:"idSupply"`
	Quantity string `json:"stockActual"`
}

/* Wire shapes */

type BackendVariant struct {
	ID          int64   `json:"id_supply_variant"`
	ColorID     int64   `json:"id_supply_color"`
	ColorName   string  `json:"color_name"`
	StockActual float64 `json:"stock_actual"`
}

type BackendSupplyWithVariants struct {
	ID             int64            `json:"id_supply"`
	Description    string           `json:"description"`
	Active         bool             `json:"active"`
	TypeID         int64            `json:"id_supply_type"`
	MeasuringUoMID int64            `json:"measuring_uom_id"`
	TypeName       string           `json:"type_name"`
	CategoryName   string           `json:"category_name"`
	UoMDescription string           `json:"uom_description"`
	TotalStock     float64          `json:"total_stock"`
	Variants       []BackendVariant `json:"variants"`
}

// BackendSupply: плоская форма (одна строка = один цвет), её отдают get/create/update и отчёт по остаткам.
type BackendSupply struct {
	ID             int64   `json:"id_supply"`
	Description    string  `json:"description"`
	Active         bool    `json:"active"`
	ColorID        int64   `json:"id_supply_color"`
	TypeID         int64   `json:"id_supply_type"`
	MeasuringUoMID int64   `json:"measuring_uom_id"`
	ColorName      string  `json:"color_name"`
	TypeName       string  `json:"type_name"`
	CategoryName   string  `json:"category_name"`
	UoMDescription string  `json:"uom_description"`
	StockActual    float64 `json:"stock_actual"`
}

type VariantQuantityOperation struct {
	ColorID  int64   `json:"id_supply_color"`
	Quantity float64 `json:"quantity"`
	Notes    string  `json:"notes,omitempty"`
}

type CreateSupplyData struct {
	Description    string `json:"description"`
	ColorID        int64  `json:"id_supply_color"`
	TypeID         int64  `json:"id_supply_type"`
	MeasuringUoMID int64  `json:"measuring_uom_id"`
}

type UpdateSupplyData struct {
	Description    *string `json:"description,omitempty"`
	ColorID        *int64  `json:"id_supply_color,omitempty"`
	TypeID         *int64  `json:"id_supply_type,omitempty"`
	MeasuringUoMID *int64  `json:"measuring_uom_id,omitempty"`
}

type MoveType string

const (
	MoveAdd      MoveType = "add"
	MoveSubtract MoveType = "subtract"
)

type Movement struct {
	ID           int64     `json:"id"`
	SupplyID     int64     `json:"supplyId"`
	MovementType MoveType  `json:"movementType"`
	Quantity     float64   `json:"quantity"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type StockResponse struct {
	StockActual string `json:"stockActual"`
}
