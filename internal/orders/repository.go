package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/pagination"
)

// Repository owns order persistence. Guarded updates compare the current
// state in the WHERE clause so two racing writers cannot both win.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if isDuplicate(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already issued")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return &order, nil
}

func (r *Repository) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "order_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return &order, nil
}

// ListQuery filters the order listing.
type ListQuery struct {
	pagination.Params
	PaymentStatus    *enums.PaymentStatus
	ProductionStatus *enums.ProductionStatus
	Search           string
}

func (r *Repository) List(ctx context.Context, query ListQuery) (*pagination.Page[models.Order], error) {
	params := pagination.Normalize(query.Params)

	scope := r.db.WithContext(ctx).Model(&models.Order{})
	if query.PaymentStatus != nil {
		scope = scope.Where("payment_status = ?", *query.PaymentStatus)
	}
	if query.ProductionStatus != nil {
		scope = scope.Where("production_status = ?", *query.ProductionStatus)
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		scope = scope.Where(
			"order_number ILIKE ? OR customer_name ILIKE ? OR customer_phone ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}

	var rows []models.Order
	err := scope.
		Preload("Items").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	return &pagination.Page[models.Order]{
		Items:      rows,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalCount: total,
	}, nil
}

// ApplyPaymentState performs the guarded monetary update. The WHERE clause
// pins both the payment status and the paid amount observed by the caller.
func (r *Repository) ApplyPaymentState(
	ctx context.Context,
	orderID uuid.UUID,
	fromStatus enums.PaymentStatus,
	observedPaid decimal.Decimal,
	toStatus enums.PaymentStatus,
	paid, remaining decimal.Decimal,
) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ? AND paid_amount = ?", orderID, fromStatus, observedPaid).
		Updates(map[string]any{
			"payment_status":   toStatus,
			"paid_amount":      paid,
			"remaining_amount": remaining,
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update payment state")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment state changed concurrently")
	}
	return nil
}

// AppendPaymentEvent inserts into the append-only ledger. A duplicate
// gateway payment id trips the partial unique index.
func (r *Repository) AppendPaymentEvent(ctx context.Context, event *models.PaymentEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		if isDuplicate(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "gateway payment already recorded")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append payment event")
	}
	return nil
}

func (r *Repository) FindPaymentEventByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.PaymentEvent, error) {
	var event models.PaymentEvent
	err := r.db.WithContext(ctx).
		First(&event, "gateway_payment_id = ? AND gateway_payment_id <> ''", gatewayPaymentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup payment event")
	}
	return &event, nil
}

func (r *Repository) ListPaymentEvents(ctx context.Context, orderID uuid.UUID) ([]models.PaymentEvent, error) {
	var events []models.PaymentEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment events")
	}
	return events, nil
}

// AdvanceStage flips the production sub-state with the current stage pinned
// in the WHERE clause.
func (r *Repository) AdvanceStage(ctx context.Context, orderID uuid.UUID, from, to enums.ProductionStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND production_status = ? AND canceled_at IS NULL", orderID, from).
		Update("production_status", to)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "advance production stage")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "production stage changed concurrently")
	}
	return nil
}

func (r *Repository) SetCashPreferred(ctx context.Context, orderID uuid.UUID, preferred bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("cash_preferred", preferred)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "set cash preference")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

// CancelPending marks an order canceled only while production has not begun.
func (r *Repository) CancelPending(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND canceled_at IS NULL AND production_status = ?", orderID, enums.ProductionStatusPending).
		Update("canceled_at", at)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "cancel order")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be canceled in its current state")
	}
	return nil
}

func (r *Repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		if isDuplicate(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "invoice already exists for order")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
	}
	return nil
}

func (r *Repository) SetInvoiceID(ctx context.Context, orderID, invoiceID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("invoice_id", invoiceID).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link invoice to order")
	}
	return nil
}

func (r *Repository) GetInvoiceByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return &invoice, nil
}

func (r *Repository) CountProductionRefs(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductionOrder{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count production references")
	}
	return count, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
