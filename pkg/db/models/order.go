package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/enums"
)

// Order is the customer purchase aggregate. It exclusively owns its line
// items, cutouts and monetary state; all mutation goes through the order
// service's guarded transitions.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string    `gorm:"column:order_number;not null;uniqueIndex"`

	CustomerName    string              `gorm:"column:customer_name;not null"`
	CustomerEmail   string              `gorm:"column:customer_email;not null"`
	CustomerPhone   string              `gorm:"column:customer_phone;not null"`
	CustomerGSTIN   *string             `gorm:"column:customer_gstin"`
	CustomerCompany *string             `gorm:"column:customer_company"`
	CustomerClass   enums.CustomerClass `gorm:"column:customer_class;type:text;not null;default:'standard'"`
	BuyerStateCode  string              `gorm:"column:buyer_state_code;not null"`

	Subtotal        decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DiscountAmount  decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	TaxAmount       decimal.Decimal `gorm:"column:tax_amount;type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	AdvancePercent  int             `gorm:"column:advance_percent;not null"`
	AdvanceAmount   decimal.Decimal `gorm:"column:advance_amount;type:numeric(12,2);not null"`
	PaidAmount      decimal.Decimal `gorm:"column:paid_amount;type:numeric(12,2);not null;default:0"`
	RemainingAmount decimal.Decimal `gorm:"column:remaining_amount;type:numeric(12,2);not null"`

	PaymentStatus    enums.PaymentStatus    `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	ProductionStatus enums.ProductionStatus `gorm:"column:production_status;type:text;not null;default:'pending'"`
	CashPreferred    bool                   `gorm:"column:cash_preferred;not null;default:false"`

	DeliveryAddress *string `gorm:"column:delivery_address"`

	GatewayOrderID *string `gorm:"column:gateway_order_id;index"`

	InvoiceID *uuid.UUID `gorm:"column:invoice_id;type:uuid"`

	Items []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CanceledAt *time.Time `gorm:"column:canceled_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Cutout describes one shaped hole on a glass line item. Coordinates and
// dimensions are inches on the glass plane.
type Cutout struct {
	Shape  enums.CutoutShape `json:"shape"`
	X      float64           `json:"x"`
	Y      float64           `json:"y"`
	Width  float64           `json:"width,omitempty"`
	Height float64           `json:"height,omitempty"`
	// Diameter is used by circle, heart and star variants.
	Diameter float64 `json:"diameter,omitempty"`
}

// OrderLineItem is one priced glass piece specification on an order.
type OrderLineItem struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	Product     string          `gorm:"column:product;not null"`
	HSNCode     string          `gorm:"column:hsn_code;not null;default:'7007'"`
	ThicknessMM decimal.Decimal `gorm:"column:thickness_mm;type:numeric(5,2);not null"`
	WidthInch   decimal.Decimal `gorm:"column:width_inch;type:numeric(8,2);not null"`
	HeightInch  decimal.Decimal `gorm:"column:height_inch;type:numeric(8,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`

	Edging     bool `gorm:"column:edging;not null;default:false"`
	Tempering  bool `gorm:"column:tempering;not null;default:false"`
	Lamination bool `gorm:"column:lamination;not null;default:false"`

	Cutouts []Cutout `gorm:"column:cutouts;type:jsonb;serializer:json"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
