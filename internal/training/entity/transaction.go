package entity

import (
	"encoding/json"
	"strconv"
)

// RegistrationData is what the trainee fills in on the registration form.
type RegistrationData struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Notes        string `json:"notes"`
}

type PaymentDetails struct {
	Method       PaymentMethod `json:"method"`
	Amount       int64         `json:"amount"`
	Currency     string        `json:"currency"`
	PayerName    string        `json:"payer_name"`
	CardLastFour string        `json:"card_last_four"`
}

// TransactionContext is the pending action a payment OTP confirms. The copy
// stored with the challenge at issuance is authoritative.
type TransactionContext struct {
	TrainingID   int64            `json:"training_id"`
	Registration RegistrationData `json:"registration"`
	Payment      PaymentDetails   `json:"payment"`
}

// Key identifies the context within a subject's challenges.
func (tc TransactionContext) Key() string {
	return strconv.FormatInt(tc.TrainingID, 10)
}

// Canonical is the stable byte form used for fingerprinting. Struct field
// order fixes the JSON layout.
func (tc TransactionContext) Canonical() ([]byte, error) {
	return json.Marshal(tc)
}
