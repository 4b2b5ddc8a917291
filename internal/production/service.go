package production

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shreeglass/erp-backend/internal/numbering"
	"github.com/shreeglass/erp-backend/pkg/db"
	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/pagination"
)

// Service tracks job cards through the manufacturing stages and keeps the
// append-only breakage ledger.
type Service struct {
	db      *db.Client
	repo    *Repository
	numbers numbering.Service
	logg    *logger.Logger
}

func NewService(client *db.Client, repo *Repository, numbers numbering.Service, logg *logger.Logger) *Service {
	return &Service{db: client, repo: repo, numbers: numbers, logg: logg}
}

// AllocateTx creates one job card per order line inside the caller's
// transaction. Called by the order aggregate when cutting begins.
func (s *Service) AllocateTx(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	repo := s.repo.WithTx(tx)
	for _, item := range order.Items {
		number, err := s.numbers.NextJobCardNumber(ctx, tx)
		if err != nil {
			return err
		}
		card := &models.ProductionOrder{
			JobCardNumber: number,
			OrderID:       order.ID,
			LineItemID:    ptr(item.ID),
			GlassType:     item.Product,
			ThicknessMM:   item.ThicknessMM,
			WidthInch:     item.WidthInch,
			HeightInch:    item.HeightInch,
			Quantity:      item.Quantity,
			CurrentStage:  enums.ProductionStatusCutting,
		}
		if err := repo.Create(ctx, card); err != nil {
			return err
		}
	}
	return nil
}

// CloseTx stamps every open card of the order inside the caller's
// transaction. Called when the order is delivered.
func (s *Service) CloseTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return s.repo.WithTx(tx).CloseForOrder(ctx, orderID, time.Now().UTC())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*models.ProductionOrder, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, query ListQuery) (*pagination.Page[models.ProductionOrder], error) {
	return s.repo.List(ctx, query)
}

func (s *Service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.ProductionOrder, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

// AdvanceStage moves one job card a single legal step forward. The grinding
// skip is supervisor-only, same as the order-level machine.
func (s *Service) AdvanceStage(ctx context.Context, cardID uuid.UUID, target enums.ProductionStatus, actor enums.UserRole) (*models.ProductionOrder, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown production stage")
	}

	card, err := s.repo.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.ClosedAt != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "job card is closed")
	}

	skipRequested := card.CurrentStage == enums.ProductionStatusPolishing &&
		target == enums.ProductionStatusToughening
	if skipRequested && !actor.CanSkipGrinding() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "grinding may only be skipped by a supervisor")
	}
	if !card.CurrentStage.CanAdvanceTo(target, actor.CanSkipGrinding()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal job card stage transition").
			WithDetails(map[string]string{
				"from": card.CurrentStage.String(),
				"to":   target.String(),
			})
	}

	if err := s.repo.AdvanceStage(ctx, card.ID, card.CurrentStage, target); err != nil {
		return nil, err
	}
	card.CurrentStage = target

	if s.logg != nil {
		s.logg.Info(s.logg.WithJobCard(ctx, card.JobCardNumber), "job card advanced to "+target.String())
	}
	return card, nil
}

func (s *Service) SetPriority(ctx context.Context, cardID uuid.UUID, priority int) (*models.ProductionOrder, error) {
	if priority < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "priority cannot be negative")
	}
	if err := s.repo.SetPriority(ctx, cardID, priority); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, cardID)
}

// BreakageInput describes one loss event at a stage.
type BreakageInput struct {
	Operator string          `json:"operator" validate:"required"`
	Quantity int             `json:"quantity" validate:"required,gt=0"`
	UnitCost decimal.Decimal `json:"unit_cost" validate:"required"`
	Reason   string          `json:"reason"`
}

// RecordBreakage appends a loss event against the card's current stage. The
// line quantity is never reduced; breakage is cost and visibility only.
func (s *Service) RecordBreakage(ctx context.Context, cardID uuid.UUID, input BreakageInput) (*models.BreakageEvent, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "breakage quantity must be positive")
	}
	if input.UnitCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative")
	}
	if input.Operator == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator is required")
	}

	card, err := s.repo.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}

	event := &models.BreakageEvent{
		ProductionOrderID: card.ID,
		OrderID:           card.OrderID,
		Stage:             card.CurrentStage,
		Operator:          input.Operator,
		GlassType:         card.GlassType,
		Quantity:          input.Quantity,
		UnitCost:          input.UnitCost,
		Reason:            input.Reason,
	}
	if err := s.repo.AppendBreakage(ctx, event); err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Warn(s.logg.WithJobCard(ctx, card.JobCardNumber), "breakage recorded")
	}
	return event, nil
}

func (s *Service) ListBreakage(ctx context.Context, orderID *uuid.UUID) ([]models.BreakageEvent, error) {
	return s.repo.ListBreakage(ctx, orderID)
}

// Analytics bundles the production dashboards.
type Analytics struct {
	Pipeline      []StageCount     `json:"pipeline"`
	ByStage       []BreakageBucket `json:"breakage_by_stage"`
	ByOperator    []BreakageBucket `json:"breakage_by_operator"`
	Daily         []BreakageBucket `json:"breakage_daily"`
	TopGlassTypes []BreakageBucket `json:"top_glass_types"`
}

func (s *Service) Analytics(ctx context.Context, since time.Time) (*Analytics, error) {
	pipeline, err := s.repo.PipelineDistribution(ctx)
	if err != nil {
		return nil, err
	}
	byStage, err := s.repo.BreakageByStage(ctx, since)
	if err != nil {
		return nil, err
	}
	byOperator, err := s.repo.BreakageByOperator(ctx, since)
	if err != nil {
		return nil, err
	}
	daily, err := s.repo.BreakageDaily(ctx, since)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopGlassTypes(ctx, since, 5)
	if err != nil {
		return nil, err
	}
	return &Analytics{
		Pipeline:      pipeline,
		ByStage:       byStage,
		ByOperator:    byOperator,
		Daily:         daily,
		TopGlassTypes: top,
	}, nil
}

func ptr[T any](v T) *T {
	return &v
}
