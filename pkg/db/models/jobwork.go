package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/enums"
)

// JobworkOrder is the order variant for customer-supplied glass: the company
// charges labour only, under a signed liability disclaimer.
type JobworkOrder struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	JobworkNumber string    `gorm:"column:jobwork_number;not null;uniqueIndex"`

	CustomerName   string `gorm:"column:customer_name;not null"`
	CustomerEmail  string `gorm:"column:customer_email"`
	CustomerPhone  string `gorm:"column:customer_phone;not null"`
	BuyerStateCode string `gorm:"column:buyer_state_code;not null"`

	DisclaimerAccepted bool   `gorm:"column:disclaimer_accepted;not null"`
	DisclaimerText     string `gorm:"column:disclaimer_text;not null"`

	Subtotal        decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount       decimal.Decimal `gorm:"column:tax_amount;type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	AdvancePercent  int             `gorm:"column:advance_percent;not null"`
	AdvanceAmount   decimal.Decimal `gorm:"column:advance_amount;type:numeric(12,2);not null"`
	PaidAmount      decimal.Decimal `gorm:"column:paid_amount;type:numeric(12,2);not null;default:0"`
	RemainingAmount decimal.Decimal `gorm:"column:remaining_amount;type:numeric(12,2);not null"`

	PaymentStatus    enums.PaymentStatus    `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	ProductionStatus enums.ProductionStatus `gorm:"column:production_status;type:text;not null;default:'pending'"`

	GatewayOrderID *string `gorm:"column:gateway_order_id;index"`

	Items []JobworkItem `gorm:"foreignKey:JobworkID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// JobworkItem is one customer-supplied glass piece batch; labour is billed
// per square foot from the thickness rate table.
type JobworkItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	JobworkID uuid.UUID `gorm:"column:jobwork_id;type:uuid;not null;index"`

	GlassType      string          `gorm:"column:glass_type;not null"`
	ThicknessMM    decimal.Decimal `gorm:"column:thickness_mm;type:numeric(5,2);not null"`
	WidthInch      decimal.Decimal `gorm:"column:width_inch;type:numeric(8,2);not null"`
	HeightInch     decimal.Decimal `gorm:"column:height_inch;type:numeric(8,2);not null"`
	Pieces         int             `gorm:"column:pieces;not null"`
	LabourRateSqft decimal.Decimal `gorm:"column:labour_rate_sqft;type:numeric(12,2);not null"`
	Total          decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`

	Cutouts []Cutout `gorm:"column:cutouts;type:jsonb;serializer:json"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
