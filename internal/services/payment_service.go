// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/config"
	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/utils"
)

// PaymentService charges orders through Stripe. A confirmed payment intent
// is the only path from pending to paid.
type PaymentService struct {
	db           *gorm.DB
	config       *config.Config
	orderService *OrderService
}

type CreatePaymentIntentRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
	OrderID         uuid.UUID `json:"order_id" validate:"required"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, orderService *OrderService) *PaymentService {
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:           db,
		config:       cfg,
		orderService: orderService,
	}
}

func (s *PaymentService) CreatePaymentIntent(userID uuid.UUID, req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	order, err := s.orderService.GetOrder(req.OrderID, &userID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, ErrInvalidStateTransition
	}

	amountInCents := decimal.NewFromFloat(order.TotalAmount).
		Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(s.config.Payment.Currency),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("order_no", order.OrderNo)
	params.AddMetadata("user_id", userID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// ConfirmPayment re-reads the intent from Stripe rather than trusting the
// caller, then drives the order to paid.
func (s *PaymentService) ConfirmPayment(userID uuid.UUID, req *ConfirmPaymentRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	if pi.Metadata["order_id"] != req.OrderID.String() {
		return nil, ErrOrderNotFound
	}

	order, err := s.orderService.GetOrder(req.OrderID, &userID)
	if err != nil {
		return nil, err
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("payment intent %s not succeeded: %s", pi.ID, pi.Status)
	}

	return s.orderService.MarkPaid(order.ID, pi.ID)
}

// RefundOrder refunds a paid order's charge through Stripe. The caller is
// responsible for cancelling the order itself.
func (s *PaymentService) RefundOrder(orderID uuid.UUID) error {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if order.PaymentRef == "" {
		return errors.New("order has no payment reference to refund")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(order.PaymentRef),
		Reason:        stripe.String("requested_by_customer"),
	}
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("failed to process refund: %w", err)
	}

	return nil
}
