package vendors

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/pagination"
)

// Repository persists vendors, purchase orders and outgoing payments.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	if err := r.db.WithContext(ctx).Create(vendor).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor")
	}
	return nil
}

func (r *Repository) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get vendor")
	}
	return &vendor, nil
}

func (r *Repository) ListVendors(ctx context.Context, params pagination.Params) ([]models.Vendor, int64, error) {
	params = pagination.Normalize(params)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Vendor{}).Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vendors")
	}

	var vendors []models.Vendor
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&vendors).Error
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendors")
	}
	return vendors, total, nil
}

func (r *Repository) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order")
	}
	return nil
}

func (r *Repository) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := r.db.WithContext(ctx).First(&po, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get purchase order")
	}
	return &po, nil
}

func (r *Repository) ListPurchaseOrders(ctx context.Context, vendorID uuid.UUID, openOnly bool) ([]models.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID)
	if openOnly {
		query = query.Where("status = 'open'")
	}
	var pos []models.PurchaseOrder
	if err := query.Order("created_at DESC").Find(&pos).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchase orders")
	}
	return pos, nil
}

// ClosePurchaseOrder marks an open PO closed. Closing an already closed
// PO is a state conflict.
func (r *Repository) ClosePurchaseOrder(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ? AND status = 'open'", id).
		Update("status", "closed")
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "close purchase order")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase order is not open")
	}
	return nil
}

func (r *Repository) CreatePayment(ctx context.Context, payment *models.VendorPayment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor payment")
	}
	return nil
}

func (r *Repository) CompletePayment(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.VendorPayment{}).
		Where("id = ? AND NOT completed", id).
		Update("completed", true)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "complete vendor payment")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment is already completed or missing")
	}
	return nil
}

func (r *Repository) ListPayments(ctx context.Context, vendorID uuid.UUID) ([]models.VendorPayment, error) {
	var payments []models.VendorPayment
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor payments")
	}
	return payments, nil
}
