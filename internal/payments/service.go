package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/internal/orders"
	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/razorpay"
)

// Orders is the slice of the order aggregate the coordinator drives.
type Orders interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ApplyPayment(ctx context.Context, orderID uuid.UUID, input orders.PaymentInput) (*models.Order, enums.OrderTransition, error)
	FindPaymentEvent(ctx context.Context, gatewayPaymentID string) (*models.PaymentEvent, error)
	SetGatewayOrderID(ctx context.Context, orderID uuid.UUID, gatewayOrderID string) error
	SetCashPreference(ctx context.Context, orderID uuid.UUID, preferred bool) (*models.Order, error)
}

// Gateway is the payment gateway surface.
type Gateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*razorpay.GatewayOrder, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

// Service coordinates online and offline payments for customer orders.
type Service struct {
	orders  Orders
	gateway Gateway
	keyID   string
	logg    *logger.Logger
}

func NewService(ordersAPI Orders, gateway Gateway, keyID string, logg *logger.Logger) *Service {
	return &Service{orders: ordersAPI, gateway: gateway, keyID: keyID, logg: logg}
}

// InitiateResult is what the checkout needs to open the gateway widget.
type InitiateResult struct {
	GatewayOrderID string          `json:"gateway_order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	KeyID          string          `json:"key_id"`
}

// Initiate registers the due amount with the gateway. Re-initiating while
// the same payment is still pending reuses the existing gateway order.
func (s *Service) Initiate(ctx context.Context, orderID uuid.UUID, kind enums.PaymentEventKind) (*InitiateResult, error) {
	amount, order, err := s.dueAmount(ctx, orderID, kind)
	if err != nil {
		return nil, err
	}

	if order.GatewayOrderID != nil && *order.GatewayOrderID != "" {
		return &InitiateResult{
			GatewayOrderID: *order.GatewayOrderID,
			Amount:         amount,
			Currency:       "INR",
			KeyID:          s.keyID,
		}, nil
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, amount, order.OrderNumber)
	if err != nil {
		return nil, err
	}
	if err := s.orders.SetGatewayOrderID(ctx, order.ID, gatewayOrder.ID); err != nil {
		return nil, err
	}

	return &InitiateResult{
		GatewayOrderID: gatewayOrder.ID,
		Amount:         amount,
		Currency:       gatewayOrder.Currency,
		KeyID:          s.keyID,
	}, nil
}

// VerifyInput is the gateway callback payload.
type VerifyInput struct {
	OrderID          uuid.UUID `json:"order_id" validate:"required"`
	GatewayOrderID   string    `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string    `json:"gateway_payment_id" validate:"required"`
	Signature        string    `json:"signature" validate:"required"`
}

// VerifyResult reports what the verification did.
type VerifyResult struct {
	Order          *models.Order         `json:"order"`
	Transition     enums.OrderTransition `json:"transition,omitempty"`
	AlreadyApplied bool                  `json:"already_applied"`
}

// Verify checks the callback signature and settles the due payment exactly
// once. A bad signature records nothing; a replayed gateway payment id is a
// no-op success.
func (s *Service) Verify(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	if !s.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		if s.logg != nil {
			s.logg.Warn(ctx, "payment verification rejected: signature mismatch")
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "payment signature verification failed")
	}

	if existing, err := s.orders.FindPaymentEvent(ctx, input.GatewayPaymentID); err != nil {
		return nil, err
	} else if existing != nil {
		if existing.OrderID != input.OrderID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "gateway payment is recorded against a different order")
		}
		order, err := s.orders.Get(ctx, existing.OrderID)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Order: order, AlreadyApplied: true}, nil
	}

	order, err := s.orders.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	kind, amount, err := duePayment(order)
	if err != nil {
		return nil, err
	}

	updated, transition, err := s.orders.ApplyPayment(ctx, order.ID, orders.PaymentInput{
		Kind:              kind,
		Amount:            amount,
		GatewayOrderID:    input.GatewayOrderID,
		GatewayPaymentID:  input.GatewayPaymentID,
		SignatureVerified: true,
	})
	if pkgerrors.IsCode(err, pkgerrors.CodeConflict) || pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		// A concurrent verification of the same payment loses either on the
		// event insert or on the guarded state update. Only treat the
		// conflict as a replay when the event actually landed.
		existing, findErr := s.orders.FindPaymentEvent(ctx, input.GatewayPaymentID)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil && existing.OrderID == order.ID {
			current, getErr := s.orders.Get(ctx, order.ID)
			if getErr != nil {
				return nil, getErr
			}
			return &VerifyResult{Order: current, AlreadyApplied: true}, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return &VerifyResult{Order: updated, Transition: transition}, nil
}

// SetCashPreference flags the order for offline settlement. No money moves.
func (s *Service) SetCashPreference(ctx context.Context, orderID uuid.UUID, preferred bool) (*models.Order, error) {
	return s.orders.SetCashPreference(ctx, orderID, preferred)
}

// RecordCashPayment settles a due payment received outside the gateway.
// Restricted to back-office money roles.
func (s *Service) RecordCashPayment(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, actor enums.UserRole) (*VerifyResult, error) {
	if actor != enums.UserRoleAdmin && actor != enums.UserRoleAccountant {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cash payments require an accounts role")
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	kind, _, err := duePayment(order)
	if err != nil {
		return nil, err
	}

	updated, transition, err := s.orders.ApplyPayment(ctx, order.ID, orders.PaymentInput{
		Kind:   kind,
		Amount: amount,
	})
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Order: updated, Transition: transition}, nil
}

// RecordRefund reverses collected money and terminates the payment machine.
func (s *Service) RecordRefund(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, actor enums.UserRole) (*VerifyResult, error) {
	if actor != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "refunds require the admin role")
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}

	updated, transition, err := s.orders.ApplyPayment(ctx, orderID, orders.PaymentInput{
		Kind:   enums.PaymentEventRefund,
		Amount: amount.Neg(),
	})
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Order: updated, Transition: transition}, nil
}

// dueAmount validates the requested kind against the sub-state and returns
// what the customer owes for it.
func (s *Service) dueAmount(ctx context.Context, orderID uuid.UUID, kind enums.PaymentEventKind) (decimal.Decimal, *models.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return decimal.Zero, nil, err
	}

	switch kind {
	case enums.PaymentEventAdvance:
		if order.PaymentStatus != enums.PaymentStatusUnpaid {
			return decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "advance is not due")
		}
		if order.AdvancePercent == 0 {
			return decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeValidation, "no advance is due on this order")
		}
		return order.AdvanceAmount, order, nil
	case enums.PaymentEventRemaining:
		if order.PaymentStatus != enums.PaymentStatusAdvancePaid {
			return decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "remaining balance is not due")
		}
		return order.RemainingAmount, order, nil
	default:
		return decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment kind")
	}
}

// duePayment infers the pending payment from the order's sub-state.
func duePayment(order *models.Order) (enums.PaymentEventKind, decimal.Decimal, error) {
	switch order.PaymentStatus {
	case enums.PaymentStatusUnpaid:
		if order.AdvancePercent == 0 {
			return enums.PaymentEventRemaining, order.RemainingAmount,
				pkgerrors.New(pkgerrors.CodeValidation, "no advance is due on this order")
		}
		return enums.PaymentEventAdvance, order.AdvanceAmount, nil
	case enums.PaymentStatusAdvancePaid:
		return enums.PaymentEventRemaining, order.RemainingAmount, nil
	default:
		return "", decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict, "no payment is due")
	}
}
