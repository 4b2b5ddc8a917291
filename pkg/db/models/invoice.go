package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLine is one HSN-tagged row frozen into the invoice at
// materialization time.
type InvoiceLine struct {
	Description string          `json:"description"`
	HSNCode     string          `json:"hsn_code"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Taxable     decimal.Decimal `json:"taxable"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	IGST        decimal.Decimal `json:"igst"`
}

// Invoice is the materialized view of an order after dispatch. Exactly one
// invoice exists per order; the unique index on order_id enforces it.
type Invoice struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber string    `gorm:"column:invoice_number;not null;uniqueIndex"`
	OrderID       uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`

	CustomerName   string  `gorm:"column:customer_name;not null"`
	CustomerGSTIN  *string `gorm:"column:customer_gstin"`
	BuyerStateCode string  `gorm:"column:buyer_state_code;not null"`

	Lines []InvoiceLine `gorm:"column:lines;type:jsonb;serializer:json"`

	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	CGST           decimal.Decimal `gorm:"column:cgst;type:numeric(12,2);not null;default:0"`
	SGST           decimal.Decimal `gorm:"column:sgst;type:numeric(12,2);not null;default:0"`
	IGST           decimal.Decimal `gorm:"column:igst;type:numeric(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
