package entity

import "time"

type Registration struct {
	ID               int64
	TrainingID       int64
	UserID           int64
	Email            string
	Data             RegistrationData
	Payment          PaymentDetails
	PaymentID        int64
	PaymentReference string
	ChallengeID      int64
	Status           RegistrationStatus
	CreatedAt        time.Time
}

// FinalizationReference is the user-facing reference of a confirmed
// registration.
func (r Registration) FinalizationReference() string {
	return r.PaymentReference
}

type RegistrationSummary struct {
	ID               int64
	TrainingID       int64
	TrainingTitle    string
	TrainingStartsAt time.Time
	FullName         string
	Status           RegistrationStatus
	ReceiptKey       string
	PaymentReference string
	Amount           int64
	Currency         string
	Method           PaymentMethod
	CreatedAt        time.Time
}

// Receipt is the document uploaded after a registration is finalized.
type Receipt struct {
	RegistrationID   int64     `json:"registration_id"`
	PaymentReference string    `json:"payment_reference"`
	TrainingID       int64     `json:"training_id"`
	TrainingTitle    string    `json:"training_title"`
	TraineeName      string    `json:"trainee_name"`
	Email            string    `json:"email"`
	Method           string    `json:"method"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	PaidAt           time.Time `json:"paid_at"`
}
