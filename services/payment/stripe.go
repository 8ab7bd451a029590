package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

const courseIDMetadataKey = "course_id"

// StripeGateway creates checkout sessions and normalizes checkout webhooks
type StripeGateway struct {
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripeGateway configures the stripe SDK with the given API key
func NewStripeGateway(apiKey, webhookSecret, successURL, cancelURL string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
	}
}

func (s *StripeGateway) Name() string {
	return ProviderStripe
}

// CheckoutInput describes the course being purchased
type CheckoutInput struct {
	CourseID    uint
	CourseName  string
	Description string
	Price       float64
	Currency    string
	PayerEmail  string
}

// CreateCheckoutSession creates a hosted checkout session for a course and
// returns the redirect URL
func (s *StripeGateway) CreateCheckoutSession(input CheckoutInput) (string, error) {
	currency := input.Currency
	if currency == "" {
		currency = "brl"
	}

	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(input.CourseName),
	}
	if input.Description != "" {
		productData.Description = stripe.String(input.Description)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(currency),
					UnitAmount:  stripe.Int64(int64(input.Price * 100)),
					ProductData: productData,
				},
			},
		},
		Metadata: map[string]string{
			courseIDMetadataKey: strconv.FormatUint(uint64(input.CourseID), 10),
		},
	}
	if input.PayerEmail != "" {
		params.CustomerEmail = stripe.String(input.PayerEmail)
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout session: %w", err)
	}
	return sess.URL, nil
}

// ConfirmPayment verifies the webhook signature and normalizes a completed
// checkout session. Events other than checkout.session.completed are
// acknowledged without processing.
func (s *StripeGateway) ConfirmPayment(raw []byte, signature string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEvent(raw, signature, s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	if stripeEvent.Type != "checkout.session.completed" {
		return nil, ErrEventIgnored
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(stripeEvent.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return sessionEvent(&sess, raw)
}

// sessionEvent normalizes a checkout session into a payment event
func sessionEvent(sess *stripe.CheckoutSession, raw []byte) (*Event, error) {
	courseID, err := strconv.ParseUint(sess.Metadata[courseIDMetadataKey], 10, 64)
	if err != nil || courseID == 0 {
		return nil, fmt.Errorf("%w: missing course metadata", ErrInvalidPayload)
	}

	email := ""
	name := ""
	if sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
		name = sess.CustomerDetails.Name
	}
	if email == "" {
		email = sess.CustomerEmail
	}
	if email == "" {
		return nil, fmt.Errorf("%w: missing payer email", ErrInvalidPayload)
	}

	return &Event{
		Provider:   ProviderStripe,
		ProviderID: sess.ID,
		Status:     string(sess.PaymentStatus),
		CourseID:   uint(courseID),
		PayerEmail: email,
		PayerName:  name,
		Amount:     float64(sess.AmountTotal) / 100,
		Raw:        raw,
	}, nil
}

// ConfirmSession fetches a checkout session by id and normalizes it, so the
// success redirect can reconcile without waiting for the webhook
func (s *StripeGateway) ConfirmSession(id string) (*Event, error) {
	sess, err := s.RetrieveSession(id)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return sessionEvent(sess, raw)
}

// RetrieveSession fetches a checkout session by id, retrying once on a
// transient failure
func (s *StripeGateway) RetrieveSession(id string) (*stripe.CheckoutSession, error) {
	sess, err := session.Get(id, nil)
	if err == nil {
		return sess, nil
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode < 500 {
		return nil, fmt.Errorf("stripe session %s: %w", id, err)
	}

	sess, err = session.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe session %s: %w", id, err)
	}
	return sess, nil
}
