package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/enums"
)

// NumberSequence backs the human-readable numbering service. One row per
// (prefix, period); seq only ever moves forward.
type NumberSequence struct {
	Prefix    string    `gorm:"column:prefix;primaryKey"`
	Period    string    `gorm:"column:period;primaryKey"`
	Seq       int64     `gorm:"column:seq;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AdvanceSettings is the process-wide advance policy singleton. Only one row
// exists; updates go through the settings service which invalidates the cache.
type AdvanceSettings struct {
	ID                         int             `gorm:"column:id;primaryKey"`
	NoAdvanceUpto              decimal.Decimal `gorm:"column:no_advance_upto;type:numeric(12,2);not null"`
	MinAdvancePercentUpto5000  int             `gorm:"column:min_advance_percent_upto_5000;not null"`
	MinAdvancePercentAbove5000 int             `gorm:"column:min_advance_percent_above_5000;not null"`
	CreditEnabled              bool            `gorm:"column:credit_enabled;not null;default:false"`
	UpdatedBy                  string          `gorm:"column:updated_by"`
	CreatedAt                  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// SchedulerLog is the append-only audit row written after every job run,
// manual or scheduled.
type SchedulerLog struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Job       string    `gorm:"column:job;not null;index"`
	Status    string    `gorm:"column:status;not null"`
	Result    string    `gorm:"column:result"`
	Error     *string   `gorm:"column:error"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// User is an authenticated back-office account.
type User struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string         `gorm:"column:name;not null"`
	Email         string         `gorm:"column:email;not null;uniqueIndex"`
	Phone         string         `gorm:"column:phone"`
	PasswordHash  string         `gorm:"column:password_hash;not null"`
	Role          enums.UserRole `gorm:"column:role;type:text;not null;default:'operator'"`
	EmailOptIn    bool           `gorm:"column:email_opt_in;not null;default:true"`
	WhatsAppOptIn bool           `gorm:"column:whatsapp_opt_in;not null;default:true"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// BlogPost backs the public CMS surface.
type BlogPost struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	Title     string    `gorm:"column:title;not null"`
	Category  string    `gorm:"column:category;index"`
	Body      string    `gorm:"column:body;not null"`
	Published bool      `gorm:"column:published;not null;default:false"`
	ViewCount int64     `gorm:"column:view_count;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Vendor is a supplier the business buys glass and consumables from.
type Vendor struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Phone     string    `gorm:"column:phone"`
	Email     string    `gorm:"column:email"`
	GSTIN     *string   `gorm:"column:gstin"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PurchaseOrder feeds COGS in the P&L and the weekly vendor summary.
type PurchaseOrder struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID  uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	GSTAmount decimal.Decimal `gorm:"column:gst_amount;type:numeric(12,2);not null;default:0"`
	Status    string          `gorm:"column:status;not null;default:'open'"`
	DueDate   *time.Time      `gorm:"column:due_date"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// VendorPayment records money paid out against a purchase order.
type VendorPayment struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID        uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null;index"`
	PurchaseOrderID *uuid.UUID      `gorm:"column:purchase_order_id;type:uuid"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Completed       bool            `gorm:"column:completed;not null;default:false"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// AuditEntry is the append-only audit trail for privileged mutations.
type AuditEntry struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Actor     string    `gorm:"column:actor;not null"`
	Action    string    `gorm:"column:action;not null"`
	EntityID  string    `gorm:"column:entity_id;index"`
	Detail    string    `gorm:"column:detail"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
