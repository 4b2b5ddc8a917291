package production

import (
	"context"
	"fmt"
	"testing"
	"time"

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

func setupProductionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE production_orders (
  id TEXT PRIMARY KEY,
  job_card_number TEXT NOT NULL UNIQUE,
  order_id TEXT NOT NULL,
  line_item_id TEXT,
  glass_type TEXT NOT NULL,
  thickness_mm TEXT NOT NULL,
  width_inch TEXT NOT NULL,
  height_inch TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  priority INTEGER NOT NULL DEFAULT 0,
  current_stage TEXT NOT NULL DEFAULT 'pending',
  closed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE breakage_events (
  id TEXT PRIMARY KEY,
  production_order_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  stage TEXT NOT NULL,
  operator TEXT NOT NULL,
  glass_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_cost TEXT NOT NULL,
  reason TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedCard(t *testing.T, db *gorm.DB, stage enums.ProductionStatus, closed bool) *models.ProductionOrder {
	t.Helper()

	card := &models.ProductionOrder{
		ID:            uuid.New(),
		JobCardNumber: "JC-20260901-" + uuid.NewString()[:8],
		OrderID:       uuid.New(),
		GlassType:     "toughened_clear",
		ThicknessMM:   decimal.NewFromInt(8),
		WidthInch:     decimal.NewFromInt(24),
		HeightInch:    decimal.NewFromInt(36),
		Quantity:      2,
		CurrentStage:  stage,
	}
	if closed {
		now := time.Now().UTC()
		card.ClosedAt = &now
	}
	require.NoError(t, db.Create(card).Error)
	return card
}

func newTestService(db *gorm.DB) *Service {
	return NewService(nil, NewRepository(db), nil, nil)
}

func TestAdvanceStageWalksForward(t *testing.T) {
	db := setupProductionTestDB(t)
	svc := newTestService(db)

	card := seedCard(t, db, enums.ProductionStatusPending, false)

	updated, err := svc.AdvanceStage(context.Background(), card.ID, enums.ProductionStatusCutting, enums.UserRoleOperator)
	require.NoError(t, err)
	assert.Equal(t, enums.ProductionStatusCutting, updated.CurrentStage)

	updated, err = svc.AdvanceStage(context.Background(), card.ID, enums.ProductionStatusPolishing, enums.UserRoleOperator)
	require.NoError(t, err)
	assert.Equal(t, enums.ProductionStatusPolishing, updated.CurrentStage)

	stored, err := svc.Get(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ProductionStatusPolishing, stored.CurrentStage)
}

func TestAdvanceStageRejectsJumps(t *testing.T) {
	db := setupProductionTestDB(t)
	svc := newTestService(db)

	card := seedCard(t, db, enums.ProductionStatusPending, false)

	_, err := svc.AdvanceStage(context.Background(), card.ID, enums.ProductionStatusPolishing, enums.UserRoleAdmin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	card = seedCard(t, db, enums.ProductionStatusCutting, false)
	_, err = svc.AdvanceStage(context.Background(), card.ID, enums.ProductionStatusPending, enums.UserRoleAdmin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestAdvanceStageGrindingSkip(t *testing.T) {
	db := setupProductionTestDB(t)
	svc := newTestService(db)

	card := seedCard(t, db, enums.ProductionStatusPolishing, false)

	_, err := svc.AdvanceStage(context.Background(), card.ID, enums.ProductionStatusToughening, enums.UserRoleOperator)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	updated, err := svc.AdvanceStage(context.Background(), card.ID, enums.ProductionStatusToughening, enums.UserRoleSupervisor)
	require.NoError(t, err)
	assert.Equal(t, enums.ProductionStatusToughening, updated.CurrentStage)
}

func TestAdvanceStageClosedCard(t *testing.T) {
	db := setupProductionTestDB(t)
	svc := newTestService(db)

	card := seedCard(t, db, enums.ProductionStatusPacking, true)

	_, err := svc.AdvanceStage(context.Background(), card.ID, enums.ProductionStatusDispatched, enums.UserRoleAdmin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestSetPriority(t *testing.T) {
	db := setupProductionTestDB(t)
	svc := newTestService(db)

	card := seedCard(t, db, enums.ProductionStatusCutting, false)

	updated, err := svc.SetPriority(context.Background(), card.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Priority)

	_, err = svc.SetPriority(context.Background(), card.ID, -1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.SetPriority(context.Background(), uuid.New(), 3)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRecordBreakageStampsCurrentStage(t *testing.T) {
	db := setupProductionTestDB(t)
	svc := newTestService(db)

	card := seedCard(t, db, enums.ProductionStatusToughening, false)

	event, err := svc.RecordBreakage(context.Background(), card.ID, BreakageInput{
		Operator: "ravi",
		Quantity: 1,
		UnitCost: decimal.NewFromInt(350),
		Reason:   "edge chip in furnace",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ProductionStatusToughening, event.Stage)
	assert.Equal(t, card.OrderID, event.OrderID)
	assert.Equal(t, "toughened_clear", event.GlassType)

	stored, err := svc.Get(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)

	events, err := svc.ListBreakage(context.Background(), &card.OrderID)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestRecordBreakageValidation(t *testing.T) {
	db := setupProductionTestDB(t)
	svc := newTestService(db)

	card := seedCard(t, db, enums.ProductionStatusCutting, false)

	_, err := svc.RecordBreakage(context.Background(), card.ID, BreakageInput{
		Operator: "ravi", Quantity: 0, UnitCost: decimal.NewFromInt(100),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.RecordBreakage(context.Background(), card.ID, BreakageInput{
		Operator: "ravi", Quantity: 1, UnitCost: decimal.NewFromInt(-5),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.RecordBreakage(context.Background(), card.ID, BreakageInput{
		Quantity: 1, UnitCost: decimal.NewFromInt(100),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
