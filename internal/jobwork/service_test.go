package jobwork

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

func setupJobworkTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE jobwork_orders (
  id TEXT PRIMARY KEY,
  jobwork_number TEXT NOT NULL UNIQUE,
  customer_name TEXT NOT NULL,
  customer_email TEXT,
  customer_phone TEXT NOT NULL,
  buyer_state_code TEXT NOT NULL,
  disclaimer_accepted INTEGER NOT NULL,
  disclaimer_text TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  tax_amount TEXT NOT NULL DEFAULT '0',
  total TEXT NOT NULL,
  advance_percent INTEGER NOT NULL,
  advance_amount TEXT NOT NULL,
  paid_amount TEXT NOT NULL DEFAULT '0',
  remaining_amount TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  production_status TEXT NOT NULL DEFAULT 'pending',
  gateway_order_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE jobwork_items (
  id TEXT PRIMARY KEY,
  jobwork_id TEXT NOT NULL,
  glass_type TEXT NOT NULL,
  thickness_mm TEXT NOT NULL,
  width_inch TEXT NOT NULL,
  height_inch TEXT NOT NULL,
  pieces INTEGER NOT NULL,
  labour_rate_sqft TEXT NOT NULL,
  total TEXT NOT NULL,
  cutouts TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedJobworkOrder(t *testing.T, db *gorm.DB, payStatus enums.PaymentStatus, paid int64) *models.JobworkOrder {
	t.Helper()

	total := decimal.NewFromInt(1000)
	order := &models.JobworkOrder{
		ID:                 uuid.New(),
		JobworkNumber:      "JW-20260901-" + uuid.NewString()[:8],
		CustomerName:       "Patel Glassworks",
		CustomerPhone:      "+919812345678",
		BuyerStateCode:     "27",
		DisclaimerAccepted: true,
		DisclaimerText:     "disclaimer",
		Subtotal:           decimal.NewFromInt(848),
		TaxAmount:          decimal.NewFromInt(152),
		Total:              total,
		AdvancePercent:     50,
		AdvanceAmount:      decimal.NewFromInt(500),
		PaidAmount:         decimal.NewFromInt(paid),
		RemainingAmount:    total.Sub(decimal.NewFromInt(paid)),
		PaymentStatus:      payStatus,
		ProductionStatus:   enums.ProductionStatusPending,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func newJobworkTestService(db *gorm.DB) *Service {
	return NewService(nil, NewRepository(db), nil, nil, "27", nil)
}

func TestAdvanceStageRequiresAdvancePayment(t *testing.T) {
	db := setupJobworkTestDB(t)
	svc := newJobworkTestService(db)

	unpaid := seedJobworkOrder(t, db, enums.PaymentStatusUnpaid, 0)
	_, err := svc.AdvanceStage(context.Background(), unpaid.ID, enums.ProductionStatusCutting, enums.UserRoleSupervisor)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	funded := seedJobworkOrder(t, db, enums.PaymentStatusAdvancePaid, 500)
	updated, err := svc.AdvanceStage(context.Background(), funded.ID, enums.ProductionStatusCutting, enums.UserRoleSupervisor)
	require.NoError(t, err)
	assert.Equal(t, enums.ProductionStatusCutting, updated.ProductionStatus)
}

func TestRecordPaymentSettlesAdvanceThenBalance(t *testing.T) {
	db := setupJobworkTestDB(t)
	svc := newJobworkTestService(db)

	order := seedJobworkOrder(t, db, enums.PaymentStatusUnpaid, 0)

	updated, err := svc.RecordPayment(context.Background(), order.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusAdvancePaid, updated.PaymentStatus)
	assert.True(t, updated.RemainingAmount.Equal(decimal.NewFromInt(500)))

	updated, err = svc.RecordPayment(context.Background(), order.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFullyPaid, updated.PaymentStatus)
	assert.True(t, updated.RemainingAmount.IsZero())
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	db := setupJobworkTestDB(t)
	svc := newJobworkTestService(db)

	order := seedJobworkOrder(t, db, enums.PaymentStatusUnpaid, 0)

	_, err := svc.RecordPayment(context.Background(), order.ID, decimal.NewFromInt(5000))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	partial := seedJobworkOrder(t, db, enums.PaymentStatusAdvancePaid, 500)
	_, err = svc.RecordPayment(context.Background(), partial.ID, decimal.NewFromInt(501))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	stored, err := svc.Get(context.Background(), partial.ID)
	require.NoError(t, err)
	assert.True(t, stored.PaidAmount.Equal(decimal.NewFromInt(500)))

	// one paisa over still settles within tolerance
	updated, err := svc.RecordPayment(context.Background(), partial.ID, decimal.NewFromFloat(500.01))
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFullyPaid, updated.PaymentStatus)
	assert.True(t, updated.RemainingAmount.IsZero())
}
