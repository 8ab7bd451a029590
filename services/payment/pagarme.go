package payment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const pagarmeBaseURL = "https://api.pagar.me/1"

// PagarmeClient charges cards through the legacy Pagar.me v1 transactions API
type PagarmeClient struct {
	apiKey string
	rest   *resty.Client
}

// NewPagarmeClient creates a Pagar.me client. baseURL overrides the live
// endpoint, used in tests.
func NewPagarmeClient(apiKey, baseURL string) *PagarmeClient {
	if baseURL == "" {
		baseURL = pagarmeBaseURL
	}
	return &PagarmeClient{
		apiKey: apiKey,
		rest: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(20 * time.Second),
	}
}

// CardCharge is a one-time card payment for a course
type CardCharge struct {
	Amount    float64 // in currency units, converted to cents on the wire
	CardHash  string
	PayerName string
	Email     string
}

type pagarmeTransaction struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// CreateTransaction submits the charge and returns the provider transaction
// id and status
func (c *PagarmeClient) CreateTransaction(ctx context.Context, charge CardCharge) (string, string, error) {
	cents := int64(charge.Amount * 100)

	var txn pagarmeTransaction
	resp, err := c.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"api_key":         c.apiKey,
			"amount":          strconv.FormatInt(cents, 10),
			"card_hash":       charge.CardHash,
			"payment_method":  "credit_card",
			"customer[name]":  charge.PayerName,
			"customer[email]": charge.Email,
		}).
		SetResult(&txn).
		Post("/transactions")
	if err != nil {
		return "", "", fmt.Errorf("pagarme transaction: %w", err)
	}
	if resp.IsError() {
		return "", "", fmt.Errorf("pagarme transaction: status %d", resp.StatusCode())
	}

	return strconv.FormatInt(txn.ID, 10), txn.Status, nil
}
