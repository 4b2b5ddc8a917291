package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/pagination"
)

type stubStore struct {
	vendors  map[uuid.UUID]*models.Vendor
	pos      map[uuid.UUID]*models.PurchaseOrder
	payments []*models.VendorPayment
}

func newStubStore() *stubStore {
	return &stubStore{
		vendors: map[uuid.UUID]*models.Vendor{},
		pos:     map[uuid.UUID]*models.PurchaseOrder{},
	}
}

func (s *stubStore) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	vendor.ID = uuid.New()
	s.vendors[vendor.ID] = vendor
	return nil
}

func (s *stubStore) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	if vendor, ok := s.vendors[id]; ok {
		return vendor, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
}

func (s *stubStore) ListVendors(ctx context.Context, params pagination.Params) ([]models.Vendor, int64, error) {
	var out []models.Vendor
	for _, vendor := range s.vendors {
		out = append(out, *vendor)
	}
	return out, int64(len(out)), nil
}

func (s *stubStore) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	po.ID = uuid.New()
	s.pos[po.ID] = po
	return nil
}

func (s *stubStore) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	if po, ok := s.pos[id]; ok {
		return po, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
}

func (s *stubStore) ListPurchaseOrders(ctx context.Context, vendorID uuid.UUID, openOnly bool) ([]models.PurchaseOrder, error) {
	var out []models.PurchaseOrder
	for _, po := range s.pos {
		if po.VendorID != vendorID {
			continue
		}
		if openOnly && po.Status != "open" {
			continue
		}
		out = append(out, *po)
	}
	return out, nil
}

func (s *stubStore) ClosePurchaseOrder(ctx context.Context, id uuid.UUID) error {
	po, ok := s.pos[id]
	if !ok || po.Status != "open" {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase order is not open")
	}
	po.Status = "closed"
	return nil
}

func (s *stubStore) CreatePayment(ctx context.Context, payment *models.VendorPayment) error {
	payment.ID = uuid.New()
	s.payments = append(s.payments, payment)
	return nil
}

func (s *stubStore) CompletePayment(ctx context.Context, id uuid.UUID) error {
	for _, payment := range s.payments {
		if payment.ID == id && !payment.Completed {
			payment.Completed = true
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "payment is already completed or missing")
}

func (s *stubStore) ListPayments(ctx context.Context, vendorID uuid.UUID) ([]models.VendorPayment, error) {
	var out []models.VendorPayment
	for _, payment := range s.payments {
		if payment.VendorID == vendorID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func TestCreateVendorRequiresName(t *testing.T) {
	svc := NewService(newStubStore(), nil)
	if _, err := svc.CreateVendor(context.Background(), VendorInput{Name: "  "}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPurchaseOrderValidation(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, nil)
	vendor, _ := svc.CreateVendor(context.Background(), VendorInput{Name: "Asahi Float Glass"})

	if _, err := svc.CreatePurchaseOrder(context.Background(), PurchaseOrderInput{
		VendorID: vendor.ID, Amount: decimal.Zero,
	}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}

	if _, err := svc.CreatePurchaseOrder(context.Background(), PurchaseOrderInput{
		VendorID: uuid.New(), Amount: decimal.NewFromInt(1000),
	}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown vendor, got %v", err)
	}

	po, err := svc.CreatePurchaseOrder(context.Background(), PurchaseOrderInput{
		VendorID: vendor.ID, Amount: decimal.NewFromFloat(1234.567), GSTAmount: decimal.NewFromInt(180),
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}
	if po.Amount.String() != "1234.57" {
		t.Fatalf("amount should round to 2dp, got %s", po.Amount)
	}
	if po.Status != "open" {
		t.Fatalf("new purchase order must be open, got %s", po.Status)
	}
}

func TestFullPaymentClosesPurchaseOrder(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, nil)
	vendor, _ := svc.CreateVendor(context.Background(), VendorInput{Name: "Saint Gobain Depot"})
	po, _ := svc.CreatePurchaseOrder(context.Background(), PurchaseOrderInput{
		VendorID: vendor.ID, Amount: decimal.NewFromInt(50000),
	})

	payment, err := svc.RecordPayment(context.Background(), PaymentInput{
		VendorID: vendor.ID, PurchaseOrderID: &po.ID, Amount: decimal.NewFromInt(50000), Completed: true,
	})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if !payment.Completed {
		t.Fatal("payment should be completed")
	}
	if store.pos[po.ID].Status != "closed" {
		t.Fatalf("full payment must close the purchase order, got %s", store.pos[po.ID].Status)
	}
}

func TestPartialPaymentKeepsPurchaseOrderOpen(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, nil)
	vendor, _ := svc.CreateVendor(context.Background(), VendorInput{Name: "Gujarat Guardian"})
	po, _ := svc.CreatePurchaseOrder(context.Background(), PurchaseOrderInput{
		VendorID: vendor.ID, Amount: decimal.NewFromInt(50000),
	})

	if _, err := svc.RecordPayment(context.Background(), PaymentInput{
		VendorID: vendor.ID, PurchaseOrderID: &po.ID, Amount: decimal.NewFromInt(20000), Completed: true,
	}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if store.pos[po.ID].Status != "open" {
		t.Fatal("partial payment must not close the purchase order")
	}
}

func TestPaymentRejectsForeignPurchaseOrder(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, nil)
	vendorA, _ := svc.CreateVendor(context.Background(), VendorInput{Name: "Vendor A"})
	vendorB, _ := svc.CreateVendor(context.Background(), VendorInput{Name: "Vendor B"})
	po, _ := svc.CreatePurchaseOrder(context.Background(), PurchaseOrderInput{
		VendorID: vendorA.ID, Amount: decimal.NewFromInt(1000),
	})

	if _, err := svc.RecordPayment(context.Background(), PaymentInput{
		VendorID: vendorB.ID, PurchaseOrderID: &po.ID, Amount: decimal.NewFromInt(1000),
	}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
