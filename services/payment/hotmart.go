package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// SignatureHeader carries the HMAC of the raw webhook body
const HotmartSignatureHeader = "X-HOTMART-HMAC-SHA256"

// HotmartProvider verifies and parses Hotmart purchase notifications
type HotmartProvider struct {
	webhookSecret string
}

// NewHotmartProvider creates a Hotmart webhook provider
func NewHotmartProvider(webhookSecret string) *HotmartProvider {
	return &HotmartProvider{webhookSecret: webhookSecret}
}

// Name returns the provider identifier
func (p *HotmartProvider) Name() string {
	return ProviderHotmart
}

// ConfirmPayment verifies the HMAC-SHA256 signature over the raw body and
// extracts the normalized event. Hotmart payload shapes vary across webhook
// versions, so correlation fields are looked up under every known key.
func (p *HotmartProvider) ConfirmPayment(raw []byte, signature string) (*Event, error) {
	if p.webhookSecret == "" || signature == "" {
		return nil, ErrBadSignature
	}

	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(raw)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrBadSignature
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	status, _ := payload["status"].(string)
	productID := pickID(payload, "product_id", "id")
	if productID == 0 {
		if product, ok := payload["product"].(map[string]interface{}); ok {
			productID = pickID(product, "id")
		}
	}
	email, _ := payload["email"].(string)
	if email == "" {
		if buyer, ok := payload["buyer"].(map[string]interface{}); ok {
			email, _ = buyer["email"].(string)
		}
	}
	name, _ := payload["name"].(string)
	txnID := pickString(payload, "transaction", "transaction_id")
	if txnID == "" {
		if purchase, ok := payload["purchase"].(map[string]interface{}); ok {
			txnID = pickString(purchase, "id")
		}
	}
	amount := pickFloat(payload, "amount", "price")

	if status == "" || productID == 0 || email == "" || txnID == "" {
		return nil, ErrInvalidPayload
	}

	return &Event{
		Provider:   ProviderHotmart,
		ProviderID: txnID,
		Status:     status,
		CourseID:   productID,
		PayerEmail: email,
		PayerName:  name,
		Amount:     amount,
		Raw:        raw,
	}, nil
}

func pickID(m map[string]interface{}, keys ...string) uint {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			if v > 0 {
				return uint(v)
			}
		case string:
			if id, err := strconv.ParseUint(v, 10, 32); err == nil && id > 0 {
				return uint(id)
			}
		}
	}
	return 0
}

func pickString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
		if n, ok := m[k].(float64); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	return ""
}

func pickFloat(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		if f, ok := m[k].(float64); ok {
			return f
		}
	}
	return 0
}
