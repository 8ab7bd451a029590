package payment

import "encoding/json"

// ManualProvider produces events for payments confirmed inside the
// application itself, such as the authenticated pay endpoint. There is no
// signature to verify; trust comes from the caller's session.
type ManualProvider struct{}

func (ManualProvider) Name() string {
	return ProviderManual
}

// ConfirmPayment decodes an internally constructed event. The signature
// argument is ignored.
func (ManualProvider) ConfirmPayment(raw []byte, _ string) (*Event, error) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, ErrInvalidPayload
	}
	if event.ProviderID == "" || event.CourseID == 0 || event.PayerEmail == "" {
		return nil, ErrInvalidPayload
	}
	event.Provider = ProviderManual
	event.Raw = raw
	return &event, nil
}
