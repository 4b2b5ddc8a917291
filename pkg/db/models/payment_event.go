package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/enums"
)

// PaymentEvent is an append-only record of money movement against an order.
// No update or delete API exists for this table.
type PaymentEvent struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	Kind   enums.PaymentEventKind `gorm:"column:kind;type:text;not null"`
	Amount decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null"`

	GatewayOrderID    string `gorm:"column:gateway_order_id;not null;default:''"`
	GatewayPaymentID  string `gorm:"column:gateway_payment_id;not null;default:'';uniqueIndex:idx_payment_events_gateway_payment,where:gateway_payment_id <> ''"`
	SignatureVerified bool   `gorm:"column:signature_verified;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
