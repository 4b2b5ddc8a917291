package vendors

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/pagination"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateVendor(ctx context.Context, vendor *models.Vendor) error
	GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	ListVendors(ctx context.Context, params pagination.Params) ([]models.Vendor, int64, error)
	CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, vendorID uuid.UUID, openOnly bool) ([]models.PurchaseOrder, error)
	ClosePurchaseOrder(ctx context.Context, id uuid.UUID) error
	CreatePayment(ctx context.Context, payment *models.VendorPayment) error
	CompletePayment(ctx context.Context, id uuid.UUID) error
	ListPayments(ctx context.Context, vendorID uuid.UUID) ([]models.VendorPayment, error)
}

// Service manages suppliers, their purchase orders and outgoing payments.
// Purchase orders feed COGS in the profit-and-loss report.
type Service struct {
	store Store
	logg  *logger.Logger
}

func NewService(store Store, logg *logger.Logger) *Service {
	return &Service{store: store, logg: logg}
}

// VendorInput registers a supplier.
type VendorInput struct {
	Name  string  `json:"name" validate:"required"`
	Phone string  `json:"phone"`
	Email string  `json:"email" validate:"omitempty,email"`
	GSTIN *string `json:"gstin"`
}

func (s *Service) CreateVendor(ctx context.Context, input VendorInput) (*models.Vendor, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name is required")
	}
	vendor := &models.Vendor{
		Name:  strings.TrimSpace(input.Name),
		Phone: input.Phone,
		Email: input.Email,
		GSTIN: input.GSTIN,
	}
	if err := s.store.CreateVendor(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *Service) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	return s.store.GetVendor(ctx, id)
}

func (s *Service) ListVendors(ctx context.Context, params pagination.Params) ([]models.Vendor, int64, error) {
	return s.store.ListVendors(ctx, params)
}

// PurchaseOrderInput records a purchase from a vendor.
type PurchaseOrderInput struct {
	VendorID  uuid.UUID       `json:"vendor_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	GSTAmount decimal.Decimal `json:"gst_amount"`
	DueDate   *time.Time      `json:"due_date"`
}

func (s *Service) CreatePurchaseOrder(ctx context.Context, input PurchaseOrderInput) (*models.PurchaseOrder, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase amount must be positive")
	}
	if input.GSTAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gst amount cannot be negative")
	}
	if _, err := s.store.GetVendor(ctx, input.VendorID); err != nil {
		return nil, err
	}
	po := &models.PurchaseOrder{
		VendorID:  input.VendorID,
		Amount:    input.Amount.Round(2),
		GSTAmount: input.GSTAmount.Round(2),
		Status:    "open",
		DueDate:   input.DueDate,
	}
	if err := s.store.CreatePurchaseOrder(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

func (s *Service) ListPurchaseOrders(ctx context.Context, vendorID uuid.UUID, openOnly bool) ([]models.PurchaseOrder, error) {
	return s.store.ListPurchaseOrders(ctx, vendorID, openOnly)
}

// PaymentInput pays a vendor, optionally against a specific purchase
// order. Paying against a PO settles it when the amount covers it.
type PaymentInput struct {
	VendorID        uuid.UUID       `json:"vendor_id" validate:"required"`
	PurchaseOrderID *uuid.UUID      `json:"purchase_order_id"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	Completed       bool            `json:"completed"`
}

func (s *Service) RecordPayment(ctx context.Context, input PaymentInput) (*models.VendorPayment, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if _, err := s.store.GetVendor(ctx, input.VendorID); err != nil {
		return nil, err
	}

	var po *models.PurchaseOrder
	if input.PurchaseOrderID != nil {
		var err error
		po, err = s.store.GetPurchaseOrder(ctx, *input.PurchaseOrderID)
		if err != nil {
			return nil, err
		}
		if po.VendorID != input.VendorID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase order belongs to a different vendor")
		}
	}

	payment := &models.VendorPayment{
		VendorID:        input.VendorID,
		PurchaseOrderID: input.PurchaseOrderID,
		Amount:          input.Amount.Round(2),
		Completed:       input.Completed,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	if po != nil && input.Completed && payment.Amount.GreaterThanOrEqual(po.Amount) {
		if err := s.store.ClosePurchaseOrder(ctx, po.ID); err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
			return nil, err
		}
	}
	return payment, nil
}

func (s *Service) CompletePayment(ctx context.Context, id uuid.UUID) error {
	return s.store.CompletePayment(ctx, id)
}

func (s *Service) ListPayments(ctx context.Context, vendorID uuid.UUID) ([]models.VendorPayment, error) {
	return s.store.ListPayments(ctx, vendorID)
}
