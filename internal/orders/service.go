package orders

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

// maxNumberRetries bounds how often creation retries after losing a race on
// the unique order number index.
const maxNumberRetries = 3

// PolicySource yields the current advance policy settings.
type PolicySource interface {
	Current(ctx context.Context) (advance.Settings, error)
}

// JobCards is the slice of the production tracker the order aggregate drives.
type JobCards interface {
	AllocateTx(ctx context.Context, tx *gorm.DB, order *models.Order) error
	CloseTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

// Hooks receives post-commit side effects. Implementations must not block;
// a dropped hook never rolls back the transition that caused it.
type Hooks interface {
	PaymentTransition(ctx context.Context, order *models.Order, transition enums.OrderTransition)
	StageTransition(ctx context.Context, order *models.Order, stage enums.ProductionStatus)
	InvoiceCreated(ctx context.Context, order *models.Order, invoice *models.Invoice)
}

// Service is the order aggregate's single write path.
type Service struct {
	db              *db.Client
	repo            *Repository
	numbers         numbering.Service
	policy          PolicySource
	jobCards        JobCards
	hooks           Hooks
	sellerStateCode string
	logg            *logger.Logger
}

func NewService(
	client *db.Client,
	repo *Repository,
	numbers numbering.Service,
	policy PolicySource,
	jobCards JobCards,
	hooks Hooks,
	sellerStateCode string,
	logg *logger.Logger,
) *Service {
	return &Service{
		db:              client,
		repo:            repo,
		numbers:         numbers,
		policy:          policy,
		jobCards:        jobCards,
		hooks:           hooks,
		sellerStateCode: sellerStateCode,
		logg:            logg,
	}
}

// LineItemInput is one requested glass piece.
type LineItemInput struct {
	Product     string          `json:"product" validate:"required"`
	HSNCode     string          `json:"hsn_code"`
	ThicknessMM decimal.Decimal `json:"thickness_mm" validate:"required"`
	WidthInch   decimal.Decimal `json:"width_inch" validate:"required"`
	HeightInch  decimal.Decimal `json:"height_inch" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	Edging      bool            `json:"edging"`
	Tempering   bool            `json:"tempering"`
	Lamination  bool            `json:"lamination"`
	Cutouts     []models.Cutout `json:"cutouts"`
}

// CreateInput is the order creation payload after controller validation.
type CreateInput struct {
	CustomerName    string              `json:"customer_name" validate:"required"`
	CustomerEmail   string              `json:"customer_email" validate:"required,email"`
	CustomerPhone   string              `json:"customer_phone" validate:"required"`
	CustomerGSTIN   *string             `json:"customer_gstin"`
	CustomerCompany *string             `json:"customer_company"`
	CustomerClass   enums.CustomerClass `json:"customer_class"`
	BuyerStateCode  string              `json:"buyer_state_code" validate:"required"`
	DeliveryAddress *string             `json:"delivery_address"`
	AdvancePercent  int                 `json:"advance_percent"`
	Items           []LineItemInput     `json:"items" validate:"required,min=1,dive"`
}

// Create prices the order, checks the requested advance against policy and
// persists the aggregate under a fresh order number.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.CustomerClass == "" {
		input.CustomerClass = enums.CustomerClassStandard
	}
	if !input.CustomerClass.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown customer class")
	}

	lines := make([]pricing.LineInput, 0, len(input.Items))
	for i := range input.Items {
		if input.Items[i].HSNCode == "" {
			input.Items[i].HSNCode = "7007"
		}
		lines = append(lines, pricing.LineInput{
			HSNCode:    input.Items[i].HSNCode,
			WidthInch:  input.Items[i].WidthInch,
			HeightInch: input.Items[i].HeightInch,
			Quantity:   input.Items[i].Quantity,
			UnitPrice:  input.Items[i].UnitPrice,
		})
	}

	quote, err := pricing.QuoteOrder(lines, input.BuyerStateCode, s.sellerStateCode)
	if err != nil {
		return nil, err
	}

	policy, err := s.policy.Current(ctx)
	if err != nil {
		return nil, err
	}
	decision, err := advance.Decide(quote.Total, input.CustomerClass, policy)
	if err != nil {
		return nil, err
	}
	if !decision.IsAllowed(input.AdvancePercent) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "advance percent not allowed for this order").
			WithDetails(decision)
	}

	order := &models.Order{
		CustomerName:     input.CustomerName,
		CustomerEmail:    input.CustomerEmail,
		CustomerPhone:    input.CustomerPhone,
		CustomerGSTIN:    input.CustomerGSTIN,
		CustomerCompany:  input.CustomerCompany,
		CustomerClass:    input.CustomerClass,
		BuyerStateCode:   input.BuyerStateCode,
		DeliveryAddress:  input.DeliveryAddress,
		Subtotal:         quote.Subtotal,
		DiscountAmount:   quote.DiscountAmount,
		TaxAmount:        quote.TaxAmount,
		Total:            quote.Total,
		AdvancePercent:   input.AdvancePercent,
		AdvanceAmount:    pricing.PercentOf(quote.Total, input.AdvancePercent),
		PaidAmount:       decimal.Zero,
		RemainingAmount:  quote.Total,
		PaymentStatus:    enums.PaymentStatusUnpaid,
		ProductionStatus: enums.ProductionStatusPending,
	}
	for i, item := range input.Items {
		order.Items = append(order.Items, models.OrderLineItem{
			Product:     item.Product,
			HSNCode:     item.HSNCode,
			ThicknessMM: item.ThicknessMM,
			WidthInch:   item.WidthInch,
			HeightInch:  item.HeightInch,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       quote.Lines[i].Total,
			Edging:      item.Edging,
			Tempering:   item.Tempering,
			Lamination:  item.Lamination,
			Cutouts:     item.Cutouts,
		})
	}

	var lastErr error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		lastErr = s.db.WithTx(ctx, func(tx *gorm.DB) error {
			number, err := s.numbers.NextOrderNumber(ctx, tx)
			if err != nil {
				return err
			}
			order.OrderNumber = number
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
		s.logg.Info(s.logg.WithOrderID(ctx, order.OrderNumber), "order created")
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, query ListQuery) (*pagination.Page[models.Order], error) {
	return s.repo.List(ctx, query)
}

func (s *Service) PaymentEvents(ctx context.Context, orderID uuid.UUID) ([]models.PaymentEvent, error) {
	return s.repo.ListPaymentEvents(ctx, orderID)
}

func (s *Service) Invoice(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	return s.repo.GetInvoiceByOrderID(ctx, orderID)
}

// AdvanceOptions returns the policy decision for an order total without
// creating anything. Used by the storefront before checkout.
func (s *Service) AdvanceOptions(ctx context.Context, total decimal.Decimal, class enums.CustomerClass) (advance.Decision, error) {
	policy, err := s.policy.Current(ctx)
	if err != nil {
		return advance.Decision{}, err
	}
	if class == "" {
		class = enums.CustomerClassStandard
	}
	return advance.Decide(total, class, policy)
}

// AdvanceStage walks the production state machine one legal step. Cutting
// allocates job cards, dispatched materializes the invoice, delivered closes
// the remaining job cards; all inside the same transaction as the guarded
// stage update.
func (s *Service) AdvanceStage(ctx context.Context, orderID uuid.UUID, target enums.ProductionStatus, actor enums.UserRole) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown production stage")
	}

	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CanceledAt != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is canceled")
	}

	skipRequested := order.ProductionStatus == enums.ProductionStatusPolishing &&
		target == enums.ProductionStatusToughening
	if skipRequested && !actor.CanSkipGrinding() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "grinding may only be skipped by a supervisor")
	}
	if !order.ProductionStatus.CanAdvanceTo(target, actor.CanSkipGrinding()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal production stage transition").
			WithDetails(map[string]string{
				"from": order.ProductionStatus.String(),
				"to":   target.String(),
			})
	}
	if target == enums.ProductionStatusCutting && !canStartProduction(order) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "advance payment required before production starts")
	}

	var invoice *models.Invoice
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.AdvanceStage(ctx, order.ID, order.ProductionStatus, target); err != nil {
			return err
		}

		switch target {
		case enums.ProductionStatusCutting:
			if s.jobCards != nil {
				return s.jobCards.AllocateTx(ctx, tx, order)
			}
		case enums.ProductionStatusDispatched:
			number, err := s.numbers.NextInvoiceNumber(ctx, tx)
			if err != nil {
				return err
			}
			invoice, err = buildInvoice(order, number, s.sellerStateCode)
			if err != nil {
				return err
			}
			if err := repo.CreateInvoice(ctx, invoice); err != nil {
				return err
			}
			return repo.SetInvoiceID(ctx, order.ID, invoice.ID)
		case enums.ProductionStatusDelivered:
			if s.jobCards != nil {
				return s.jobCards.CloseTx(ctx, tx, order.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.ProductionStatus = target
	if invoice != nil {
		order.InvoiceID = &invoice.ID
	}

	lctx := s.contextFor(ctx, order)
	if s.logg != nil {
		s.logg.Info(lctx, "production stage advanced to "+target.String())
	}
	if s.hooks != nil {
		s.hooks.StageTransition(lctx, order, target)
		if invoice != nil {
			s.hooks.InvoiceCreated(lctx, order, invoice)
		}
	}
	return order, nil
}

// PaymentInput describes one settled payment to apply to the aggregate.
type PaymentInput struct {
	Kind              enums.PaymentEventKind
	Amount            decimal.Decimal
	GatewayOrderID    string
	GatewayPaymentID  string
	SignatureVerified bool
}

// ApplyPayment appends a payment event and moves the payment sub-state in a
// single transaction. Concurrent duplicates lose on either the guarded
// update or the gateway payment unique index.
func (s *Service) ApplyPayment(ctx context.Context, orderID uuid.UUID, input PaymentInput) (*models.Order, enums.OrderTransition, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, "", err
	}

	outcome, err := applyPayment(order, input.Kind, input.Amount)
	if err != nil {
		return nil, "", err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ApplyPaymentState(
			ctx, order.ID,
			outcome.FromStatus, order.PaidAmount,
			outcome.ToStatus, outcome.Paid, outcome.Remaining,
		); err != nil {
			return err
		}
		return repo.AppendPaymentEvent(ctx, &models.PaymentEvent{
			OrderID:           order.ID,
			Kind:              input.Kind,
			Amount:            input.Amount,
			GatewayOrderID:    input.GatewayOrderID,
			GatewayPaymentID:  input.GatewayPaymentID,
			SignatureVerified: input.SignatureVerified,
		})
	})
	if err != nil {
		return nil, "", err
	}

	order.PaymentStatus = outcome.ToStatus
	order.PaidAmount = outcome.Paid
	order.RemainingAmount = outcome.Remaining

	lctx := s.contextFor(ctx, order)
	if s.logg != nil {
		s.logg.Info(lctx, "payment applied: "+string(outcome.Transition))
	}
	if s.hooks != nil {
		s.hooks.PaymentTransition(lctx, order, outcome.Transition)
	}
	return order, outcome.Transition, nil
}

// FindPaymentEvent looks up the ledger by gateway payment id for replay
// detection. A nil result means the payment has not been seen.
func (s *Service) FindPaymentEvent(ctx context.Context, gatewayPaymentID string) (*models.PaymentEvent, error) {
	return s.repo.FindPaymentEventByGatewayPaymentID(ctx, gatewayPaymentID)
}

// SetGatewayOrderID stores the gateway handle issued at payment initiation.
func (s *Service) SetGatewayOrderID(ctx context.Context, orderID uuid.UUID, gatewayOrderID string) error {
	err := s.db.DB().WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("gateway_order_id", gatewayOrderID).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store gateway order id")
	}
	return nil
}

// SetCashPreference flags the order for offline settlement. It never touches
// the payment sub-state.
func (s *Service) SetCashPreference(ctx context.Context, orderID uuid.UUID, preferred bool) (*models.Order, error) {
	if err := s.repo.SetCashPreferred(ctx, orderID, preferred); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orderID)
}

// Cancel terminates an order that has not entered production.
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if err := s.repo.CancelPending(ctx, orderID, time.Now().UTC()); err != nil {
		return nil, err
	}
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.contextFor(ctx, order), "order canceled")
	}
	return order, nil
}

// Delete always refuses. Orders are history; cancellation is the way out.
func (s *Service) Delete(ctx context.Context, orderID uuid.UUID) error {
	refs, err := s.repo.CountProductionRefs(ctx, orderID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is referenced by production job cards")
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "orders cannot be deleted; cancel instead")
}

func (s *Service) contextFor(ctx context.Context, order *models.Order) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithOrderID(ctx, order.OrderNumber)
}
