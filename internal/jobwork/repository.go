package jobwork

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/pagination"
)

// Repository owns job-work order persistence.
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

func (r *Repository) Create(ctx context.Context, order *models.JobworkOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "jobwork number already issued")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create jobwork order")
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.JobworkOrder, error) {
	var order models.JobworkOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "jobwork order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load jobwork order")
	}
	return &order, nil
}

func (r *Repository) GetByNumber(ctx context.Context, number string) (*models.JobworkOrder, error) {
	var order models.JobworkOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "jobwork_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "jobwork order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load jobwork order")
	}
	return &order, nil
}

// ListQuery filters the job-work listing.
type ListQuery struct {
	pagination.Params
	ProductionStatus *enums.ProductionStatus
	Search           string
}

func (r *Repository) List(ctx context.Context, query ListQuery) (*pagination.Page[models.JobworkOrder], error) {
	params := pagination.Normalize(query.Params)

	scope := r.db.WithContext(ctx).Model(&models.JobworkOrder{})
	if query.ProductionStatus != nil {
		scope = scope.Where("production_status = ?", *query.ProductionStatus)
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		scope = scope.Where(
			"jobwork_number ILIKE ? OR customer_name ILIKE ? OR customer_phone ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count jobwork orders")
	}

	var rows []models.JobworkOrder
	err := scope.
		Preload("Items").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list jobwork orders")
	}

	return &pagination.Page[models.JobworkOrder]{
		Items:      rows,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalCount: total,
	}, nil
}

// AdvanceStage flips the production sub-state with the current stage pinned.
func (r *Repository) AdvanceStage(ctx context.Context, id uuid.UUID, from, to enums.ProductionStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.JobworkOrder{}).
		Where("id = ? AND production_status = ?", id, from).
		Update("production_status", to)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "advance jobwork stage")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "jobwork stage changed concurrently")
	}
	return nil
}

// ApplyPaymentState performs the guarded monetary update.
func (r *Repository) ApplyPaymentState(
	ctx context.Context,
	id uuid.UUID,
	fromStatus enums.PaymentStatus,
	observedPaid decimal.Decimal,
	toStatus enums.PaymentStatus,
	paid, remaining decimal.Decimal,
) error {
	res := r.db.WithContext(ctx).
		Model(&models.JobworkOrder{}).
		Where("id = ? AND payment_status = ? AND paid_amount = ?", id, fromStatus, observedPaid).
		Updates(map[string]any{
			"payment_status":   toStatus,
			"paid_amount":      paid,
			"remaining_amount": remaining,
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update jobwork payment state")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "jobwork payment state changed concurrently")
	}
	return nil
}
