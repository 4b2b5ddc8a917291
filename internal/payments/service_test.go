package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/internal/orders"
	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/razorpay"
)

type stubOrders struct {
	order         *models.Order
	event         *models.PaymentEvent
	lateEvent     *models.PaymentEvent
	applied       []orders.PaymentInput
	applyErr      error
	applyAttempts int
	gatewaySets   []string
}

func (s *stubOrders) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.order, nil
}

func (s *stubOrders) ApplyPayment(ctx context.Context, orderID uuid.UUID, input orders.PaymentInput) (*models.Order, enums.OrderTransition, error) {
	s.applyAttempts++
	if s.applyErr != nil {
		return nil, "", s.applyErr
	}
	s.applied = append(s.applied, input)
	s.order.PaymentStatus = enums.PaymentStatusAdvancePaid
	return s.order, enums.TransitionAdvancePaid, nil
}

// FindPaymentEvent surfaces lateEvent only after an apply attempt, the way a
// concurrent winner's insert becomes visible to the loser's re-check.
func (s *stubOrders) FindPaymentEvent(ctx context.Context, gatewayPaymentID string) (*models.PaymentEvent, error) {
	if s.event != nil {
		return s.event, nil
	}
	if s.applyAttempts > 0 {
		return s.lateEvent, nil
	}
	return nil, nil
}

func (s *stubOrders) SetGatewayOrderID(ctx context.Context, orderID uuid.UUID, gatewayOrderID string) error {
	s.gatewaySets = append(s.gatewaySets, gatewayOrderID)
	return nil
}

func (s *stubOrders) SetCashPreference(ctx context.Context, orderID uuid.UUID, preferred bool) (*models.Order, error) {
	s.order.CashPreferred = preferred
	return s.order, nil
}

type stubGateway struct {
	created   int
	signature string
}

func (g *stubGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*razorpay.GatewayOrder, error) {
	g.created++
	return &razorpay.GatewayOrder{ID: "rzp_order_1", Amount: amount, Currency: "INR"}, nil
}

func (g *stubGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return signature == g.signature
}

func unpaidOrder() *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-20260901-0042",
		Total:           decimal.NewFromInt(11800),
		AdvancePercent:  25,
		AdvanceAmount:   decimal.NewFromInt(2950),
		RemainingAmount: decimal.NewFromInt(11800),
		PaymentStatus:   enums.PaymentStatusUnpaid,
	}
}

func TestInitiateCreatesAndReusesGatewayOrder(t *testing.T) {
	stub := &stubOrders{order: unpaidOrder()}
	gateway := &stubGateway{signature: "ok"}
	svc := NewService(stub, gateway, "key_test", nil)

	result, err := svc.Initiate(context.Background(), stub.order.ID, enums.PaymentEventAdvance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.GatewayOrderID != "rzp_order_1" || !result.Amount.Equal(decimal.NewFromInt(2950)) {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.KeyID != "key_test" {
		t.Fatalf("expected key id passthrough, got %q", result.KeyID)
	}
	if gateway.created != 1 || len(stub.gatewaySets) != 1 {
		t.Fatal("expected one gateway order creation")
	}

	// pending initiation is idempotent
	handle := "rzp_order_1"
	stub.order.GatewayOrderID = &handle
	if _, err := svc.Initiate(context.Background(), stub.order.ID, enums.PaymentEventAdvance); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gateway.created != 1 {
		t.Fatalf("expected gateway order reuse, created %d", gateway.created)
	}
}

func TestInitiateValidatesKindAgainstState(t *testing.T) {
	stub := &stubOrders{order: unpaidOrder()}
	svc := NewService(stub, &stubGateway{}, "key_test", nil)

	if _, err := svc.Initiate(context.Background(), stub.order.ID, enums.PaymentEventRemaining); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("remaining while unpaid must conflict, got %v", err)
	}

	stub.order.AdvancePercent = 0
	if _, err := svc.Initiate(context.Background(), stub.order.ID, enums.PaymentEventAdvance); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("zero-advance order must reject advance initiation, got %v", err)
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	stub := &stubOrders{order: unpaidOrder()}
	svc := NewService(stub, &stubGateway{signature: "good"}, "key_test", nil)

	_, err := svc.Verify(context.Background(), VerifyInput{
		OrderID:          stub.order.ID,
		GatewayOrderID:   "rzp_order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "tampered",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(stub.applied) != 0 {
		t.Fatal("nothing may be recorded on signature mismatch")
	}
}

func TestVerifyAppliesDuePayment(t *testing.T) {
	stub := &stubOrders{order: unpaidOrder()}
	svc := NewService(stub, &stubGateway{signature: "good"}, "key_test", nil)

	result, err := svc.Verify(context.Background(), VerifyInput{
		OrderID:          stub.order.ID,
		GatewayOrderID:   "rzp_order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "good",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AlreadyApplied {
		t.Fatal("first verification must not be a replay")
	}
	if len(stub.applied) != 1 {
		t.Fatalf("expected one applied payment, got %d", len(stub.applied))
	}
	applied := stub.applied[0]
	if applied.Kind != enums.PaymentEventAdvance || !applied.Amount.Equal(decimal.NewFromInt(2950)) {
		t.Fatalf("unexpected applied payment: %+v", applied)
	}
	if !applied.SignatureVerified || applied.GatewayPaymentID != "pay_1" {
		t.Fatalf("gateway metadata missing: %+v", applied)
	}
}

func TestVerifyReplayIsNoOp(t *testing.T) {
	order := unpaidOrder()
	stub := &stubOrders{
		order: order,
		event: &models.PaymentEvent{OrderID: order.ID, GatewayPaymentID: "pay_1"},
	}
	svc := NewService(stub, &stubGateway{signature: "good"}, "key_test", nil)

	result, err := svc.Verify(context.Background(), VerifyInput{
		OrderID:          order.ID,
		GatewayOrderID:   "rzp_order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "good",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.AlreadyApplied {
		t.Fatal("replay must report already applied")
	}
	if len(stub.applied) != 0 {
		t.Fatal("replay must not apply again")
	}
}

func TestVerifyReplayForeignOrderRejected(t *testing.T) {
	stub := &stubOrders{
		order: unpaidOrder(),
		event: &models.PaymentEvent{OrderID: uuid.New(), GatewayPaymentID: "pay_1"},
	}
	svc := NewService(stub, &stubGateway{signature: "good"}, "key_test", nil)

	_, err := svc.Verify(context.Background(), VerifyInput{
		OrderID:          stub.order.ID,
		GatewayOrderID:   "rzp_order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "good",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("replay against another order must conflict, got %v", err)
	}
	if len(stub.applied) != 0 {
		t.Fatal("nothing may be recorded for a foreign replay")
	}
}

func TestVerifyConcurrentLoserCollapsesToNoOp(t *testing.T) {
	order := unpaidOrder()
	stub := &stubOrders{
		order:     order,
		applyErr:  pkgerrors.New(pkgerrors.CodeConflict, "gateway payment already recorded"),
		lateEvent: &models.PaymentEvent{OrderID: order.ID, GatewayPaymentID: "pay_1"},
	}
	svc := NewService(stub, &stubGateway{signature: "good"}, "key_test", nil)

	result, err := svc.Verify(context.Background(), VerifyInput{
		OrderID:          order.ID,
		GatewayOrderID:   "rzp_order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "good",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.AlreadyApplied {
		t.Fatal("losing the insert race must collapse to already applied")
	}
}

func TestVerifyConcurrentLoserOnStateGuard(t *testing.T) {
	order := unpaidOrder()
	stub := &stubOrders{
		order:     order,
		applyErr:  pkgerrors.New(pkgerrors.CodeStateConflict, "payment state changed concurrently"),
		lateEvent: &models.PaymentEvent{OrderID: order.ID, GatewayPaymentID: "pay_1"},
	}
	svc := NewService(stub, &stubGateway{signature: "good"}, "key_test", nil)

	result, err := svc.Verify(context.Background(), VerifyInput{
		OrderID:          order.ID,
		GatewayOrderID:   "rzp_order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "good",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.AlreadyApplied {
		t.Fatal("losing the guarded update race must collapse to already applied")
	}
}

func TestVerifyStateConflictWithoutEventSurfaces(t *testing.T) {
	stub := &stubOrders{
		order:    unpaidOrder(),
		applyErr: pkgerrors.New(pkgerrors.CodeStateConflict, "payment state changed concurrently"),
	}
	svc := NewService(stub, &stubGateway{signature: "good"}, "key_test", nil)

	_, err := svc.Verify(context.Background(), VerifyInput{
		OrderID:          stub.order.ID,
		GatewayOrderID:   "rzp_order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "good",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("a conflict with no recorded event must surface, got %v", err)
	}
}

func TestRecordCashPaymentRequiresAccountsRole(t *testing.T) {
	stub := &stubOrders{order: unpaidOrder()}
	svc := NewService(stub, &stubGateway{}, "key_test", nil)

	if _, err := svc.RecordCashPayment(context.Background(), stub.order.ID, decimal.NewFromInt(2950), enums.UserRoleOperator); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("operator must be forbidden, got %v", err)
	}

	result, err := svc.RecordCashPayment(context.Background(), stub.order.ID, decimal.NewFromInt(2950), enums.UserRoleAccountant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Transition != enums.TransitionAdvancePaid {
		t.Fatalf("unexpected transition %s", result.Transition)
	}
	if stub.applied[0].GatewayPaymentID != "" {
		t.Fatal("cash payments carry no gateway ids")
	}
}

func TestRecordRefundRequiresAdmin(t *testing.T) {
	stub := &stubOrders{order: unpaidOrder()}
	svc := NewService(stub, &stubGateway{}, "key_test", nil)

	if _, err := svc.RecordRefund(context.Background(), stub.order.ID, decimal.NewFromInt(100), enums.UserRoleAccountant); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("accountant must be forbidden to refund, got %v", err)
	}

	if _, err := svc.RecordRefund(context.Background(), stub.order.ID, decimal.NewFromInt(100), enums.UserRoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stub.applied[0].Amount.IsNegative() {
		t.Fatal("refunds are recorded as negative amounts")
	}
}
