package services

import (
	"context"
	"fmt"

	"github.com/hannatrush/PetSoft/internal/apperr"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// CheckoutClient is the slice of the Stripe API the billing service uses.
type CheckoutClient interface {
	NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetCheckoutSession(id string) (*stripe.CheckoutSession, error)
}

// BillingService creates hosted checkout sessions for the one-time access
// purchase and confirms them after the redirect back.
type BillingService struct {
	checkout     CheckoutClient
	priceID      string
	canonicalURL string
}

// NewBillingService creates a new billing service
func NewBillingService(checkout CheckoutClient, priceID, canonicalURL string) *BillingService {
	return &BillingService{
		checkout:     checkout,
		priceID:      priceID,
		canonicalURL: canonicalURL,
	}
}

// CreateCheckoutSession starts a hosted checkout for the user's email and
// returns the URL to redirect to.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, email string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Params:        stripe.Params{Context: ctx},
		CustomerEmail: stripe.String(email),
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.canonicalURL + "/payment?success=true&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.canonicalURL + "/payment?cancelled=true"),
	}

	session, err := s.checkout.NewCheckoutSession(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}
	return session.URL, nil
}

// ConfirmCheckout verifies with the provider that the checkout session was
// paid. It reports true only for a paid session; a pending or abandoned one is
// not an error, just not paid.
func (s *BillingService) ConfirmCheckout(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, apperr.ErrInvalidInput
	}

	session, err := s.checkout.GetCheckoutSession(sessionID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}
	return session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}

// stripeCheckout adapts the Stripe SDK client to CheckoutClient.
type stripeCheckout struct {
	api *client.API
}

// NewStripeCheckout builds a CheckoutClient backed by the Stripe SDK.
func NewStripeCheckout(secretKey string) CheckoutClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeCheckout{api: api}
}

func (c *stripeCheckout) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.New(params)
}

func (c *stripeCheckout) GetCheckoutSession(id string) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.Get(id, nil)
}
