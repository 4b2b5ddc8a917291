package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/enums"
)

// ProductionOrder is the job card shadowing an order line through the
// manufacturing stages. It references the customer order by id but is
// independently owned.
type ProductionOrder struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	JobCardNumber string    `gorm:"column:job_card_number;not null;uniqueIndex"`

	OrderID    uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	LineItemID *uuid.UUID `gorm:"column:line_item_id;type:uuid"`

	GlassType    string          `gorm:"column:glass_type;not null"`
	ThicknessMM  decimal.Decimal `gorm:"column:thickness_mm;type:numeric(5,2);not null"`
	WidthInch    decimal.Decimal `gorm:"column:width_inch;type:numeric(8,2);not null"`
	HeightInch   decimal.Decimal `gorm:"column:height_inch;type:numeric(8,2);not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	Priority     int             `gorm:"column:priority;not null;default:0"`
	CurrentStage enums.ProductionStatus `gorm:"column:current_stage;type:text;not null;default:'pending'"`

	ClosedAt  *time.Time `gorm:"column:closed_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BreakageEvent is an append-only loss record at a specific stage. Breakage
// never reduces the order line quantity; it is a cost and visibility event.
type BreakageEvent struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductionOrderID uuid.UUID `gorm:"column:production_order_id;type:uuid;not null;index"`
	OrderID           uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	Stage     enums.ProductionStatus `gorm:"column:stage;type:text;not null"`
	Operator  string                 `gorm:"column:operator;not null"`
	GlassType string                 `gorm:"column:glass_type;not null"`
	Quantity  int                    `gorm:"column:quantity;not null"`
	UnitCost  decimal.Decimal        `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	Reason    string                 `gorm:"column:reason"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
