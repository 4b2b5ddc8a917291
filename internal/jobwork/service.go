package jobwork

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shreeglass/erp-backend/internal/advance"
	"github.com/shreeglass/erp-backend/internal/numbering"
	"github.com/shreeglass/erp-backend/internal/pricing"
	"github.com/shreeglass/erp-backend/pkg/db"
	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/pagination"
)

// labourHSN is the SAC/HSN code for glass job-work services.
const labourHSN = "9988"

const maxNumberRetries = 3

// Hooks receives post-commit side effects for job-work orders.
type Hooks interface {
	Milestone(ctx context.Context, order *models.JobworkOrder, milestone enums.JobworkMilestone)
	DesignSheetRequested(ctx context.Context, order *models.JobworkOrder)
}

// Service is the job-work aggregate's write path.
type Service struct {
	db              *db.Client
	repo            *Repository
	numbers         numbering.Service
	hooks           Hooks
	sellerStateCode string
	logg            *logger.Logger
}

func NewService(
	client *db.Client,
	repo *Repository,
	numbers numbering.Service,
	hooks Hooks,
	sellerStateCode string,
	logg *logger.Logger,
) *Service {
	return &Service{
		db:              client,
		repo:            repo,
		numbers:         numbers,
		hooks:           hooks,
		sellerStateCode: sellerStateCode,
		logg:            logg,
	}
}

// ItemInput is one customer-supplied glass batch.
type ItemInput struct {
	GlassType   string          `json:"glass_type" validate:"required"`
	ThicknessMM decimal.Decimal `json:"thickness_mm" validate:"required"`
	WidthInch   decimal.Decimal `json:"width_inch" validate:"required"`
	HeightInch  decimal.Decimal `json:"height_inch" validate:"required"`
	Pieces      int             `json:"pieces" validate:"required,gt=0"`
	Cutouts     []models.Cutout `json:"cutouts"`
}

// CreateInput is the job-work creation payload.
type CreateInput struct {
	CustomerName       string      `json:"customer_name" validate:"required"`
	CustomerEmail      string      `json:"customer_email"`
	CustomerPhone      string      `json:"customer_phone" validate:"required"`
	BuyerStateCode     string      `json:"buyer_state_code" validate:"required"`
	DisclaimerAccepted bool        `json:"disclaimer_accepted"`
	Items              []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// Create prices the labour, derives the advance rule from the piece count and
// freezes the rendered disclaimer into the order. Creation is refused until
// the disclaimer is accepted.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.JobworkOrder, error) {
	if !input.DisclaimerAccepted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "liability disclaimer must be accepted")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	totalPieces := 0
	subtotal := decimal.Zero
	items := make([]models.JobworkItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Pieces <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pieces must be positive")
		}
		if !item.WidthInch.IsPositive() || !item.HeightInch.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item dimensions must be positive")
		}

		rate := LabourRateForThickness(item.ThicknessMM)
		total := LabourTotal(item.WidthInch, item.HeightInch, item.Pieces, rate)
		subtotal = subtotal.Add(total)
		totalPieces += item.Pieces

		items = append(items, models.JobworkItem{
			GlassType:      item.GlassType,
			ThicknessMM:    item.ThicknessMM,
			WidthInch:      item.WidthInch,
			HeightInch:     item.HeightInch,
			Pieces:         item.Pieces,
			LabourRateSqft: rate,
			Cutouts:        item.Cutouts,
			Total:          total,
		})
	}

	decision, err := advance.DecideJobwork(totalPieces)
	if err != nil {
		return nil, err
	}

	subtotal = pricing.RoundMoney(subtotal)
	tax := pricing.SplitGST(subtotal, pricing.RateForHSN(labourHSN), input.BuyerStateCode, s.sellerStateCode)
	total := pricing.RoundMoney(subtotal.Add(tax.Total()))

	order := &models.JobworkOrder{
		CustomerName:       input.CustomerName,
		CustomerEmail:      input.CustomerEmail,
		CustomerPhone:      input.CustomerPhone,
		BuyerStateCode:     input.BuyerStateCode,
		DisclaimerAccepted: true,
		Subtotal:           subtotal,
		TaxAmount:          tax.Total(),
		Total:              total,
		AdvancePercent:     decision.MinRequired,
		AdvanceAmount:      pricing.PercentOf(total, decision.MinRequired),
		PaidAmount:         decimal.Zero,
		RemainingAmount:    total,
		PaymentStatus:      enums.PaymentStatusUnpaid,
		ProductionStatus:   enums.ProductionStatusPending,
		Items:              items,
	}

	var lastErr error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		lastErr = s.db.WithTx(ctx, func(tx *gorm.DB) error {
			number, err := s.numbers.NextJobworkNumber(ctx, tx)
			if err != nil {
				return err
			}
			order.JobworkNumber = number
			order.DisclaimerText = RenderDisclaimer(input.CustomerName, number, time.Now())
			return s.repo.WithTx(tx).Create(ctx, order)
		})
		if lastErr == nil {
			break
		}
		if !pkgerrors.IsCode(lastErr, pkgerrors.CodeConflict) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	if s.logg != nil {
		s.logg.Info(ctx, "jobwork order created: "+order.JobworkNumber)
	}
	if s.hooks != nil {
		s.hooks.Milestone(ctx, order, enums.JobworkAccepted)
		if hasCutouts(order.Items) {
			s.hooks.DesignSheetRequested(ctx, order)
		}
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.JobworkOrder, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*models.JobworkOrder, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, query ListQuery) (*pagination.Page[models.JobworkOrder], error) {
	return s.repo.List(ctx, query)
}

// AdvanceStage walks the production machine one legal step and announces the
// mapped customer milestone when it changes.
func (s *Service) AdvanceStage(ctx context.Context, id uuid.UUID, target enums.ProductionStatus, actor enums.UserRole) (*models.JobworkOrder, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown production stage")
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	skipRequested := order.ProductionStatus == enums.ProductionStatusPolishing &&
		target == enums.ProductionStatusToughening
	if skipRequested && !actor.CanSkipGrinding() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "grinding may only be skipped by a supervisor")
	}
	if !order.ProductionStatus.CanAdvanceTo(target, actor.CanSkipGrinding()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal jobwork stage transition").
			WithDetails(map[string]string{
				"from": order.ProductionStatus.String(),
				"to":   target.String(),
			})
	}
	if target == enums.ProductionStatusCutting && order.PaymentStatus == enums.PaymentStatusUnpaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "advance payment required before production starts")
	}

	previousMilestone := enums.MilestoneForStage(order.ProductionStatus)
	if err := s.repo.AdvanceStage(ctx, order.ID, order.ProductionStatus, target); err != nil {
		return nil, err
	}
	order.ProductionStatus = target

	if s.logg != nil {
		s.logg.Info(ctx, "jobwork "+order.JobworkNumber+" advanced to "+target.String())
	}
	if s.hooks != nil {
		milestone := enums.MilestoneForStage(target)
		if milestone != "" && milestone != previousMilestone {
			s.hooks.Milestone(ctx, order, milestone)
		}
	}
	return order, nil
}

// RecordPayment applies a settled payment to the job-work order. The derived
// advance rule has already fixed the minimum; here only the running totals
// and the sub-state move.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.JobworkOrder, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment state is terminal")
	}
	if order.PaymentStatus == enums.PaymentStatusFullyPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "jobwork order is already settled")
	}

	paid := pricing.RoundMoney(order.PaidAmount.Add(amount))
	if paid.GreaterThan(order.Total) && !pricing.MoneyEquals(paid, order.Total) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment exceeds the order balance")
	}
	remaining := pricing.RoundMoney(order.Total.Sub(paid))
	toStatus := enums.PaymentStatusAdvancePaid
	if paid.GreaterThanOrEqual(order.Total) || pricing.MoneyEquals(paid, order.Total) {
		toStatus = enums.PaymentStatusFullyPaid
		remaining = decimal.Zero
	}

	if err := s.repo.ApplyPaymentState(ctx, order.ID, order.PaymentStatus, order.PaidAmount, toStatus, paid, remaining); err != nil {
		return nil, err
	}

	order.PaymentStatus = toStatus
	order.PaidAmount = paid
	order.RemainingAmount = remaining
	return order, nil
}

func hasCutouts(items []models.JobworkItem) bool {
	for _, item := range items {
		if len(item.Cutouts) > 0 {
			return true
		}
	}
	return false
}
