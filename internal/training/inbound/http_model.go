package inbound

import "time"

type RegistrationRequest struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Notes        string `json:"notes"`
}

type PaymentRequest struct {
	Method       string `json:"method"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	PayerName    string `json:"payer_name"`
	CardLastFour string `json:"card_last_four"`
}

type SendPaymentOTPRequest struct {
	TrainingID   int64               `json:"training_id"`
	Registration RegistrationRequest `json:"registration"`
	Payment      PaymentRequest      `json:"payment"`
}

type SendPaymentOTPResponse struct {
	ExpiresAt   time.Time `json:"expires_at"`
	TTLSeconds  int64     `json:"ttl_seconds"`
	ResendAfter int64     `json:"resend_after"`
}

func (SendPaymentOTPResponse) Message() string {
	return "OTP sent to your registered email address."
}

type VerifyPaymentOTPRequest struct {
	TrainingID int64  `json:"training_id"`
	Code       string `json:"code"`
	// Registration and Payment are the client's copy of the pending
	// details; both must be sent for the copy to be checked.
	Registration *RegistrationRequest `json:"registration,omitempty"`
	Payment      *PaymentRequest      `json:"payment,omitempty"`
}

type VerifyPaymentOTPResponse struct {
	Success               bool   `json:"success"`
	RegistrationID        string `json:"registration_id"`
	PaymentReference      string `json:"payment_reference"`
	FinalizationReference string `json:"finalization_reference"`
	ReceiptURL            string `json:"receipt_url,omitempty"`
}

func (VerifyPaymentOTPResponse) Message() string {
	return "Payment confirmed. Your registration is complete."
}

type TrainingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TrainerName string    `json:"trainer_name"`
	Description string    `json:"description"`
	Mode        string    `json:"mode"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	PriceAmount int64     `json:"price_amount"`
	Currency    string    `json:"currency"`
	Capacity    int32     `json:"capacity"`
	SeatsLeft   int32     `json:"seats_left"`
	Status      string    `json:"status"`
}

type TrainingsResponse struct {
	Page      int32              `json:"page"`
	Size      int32              `json:"size"`
	Total     int64              `json:"total"`
	Trainings []TrainingResponse `json:"trainings"`
}

type MyRegistrationResponse struct {
	ID               string    `json:"id"`
	TrainingID       string    `json:"training_id"`
	TrainingTitle    string    `json:"training_title"`
	TrainingStartsAt time.Time `json:"training_starts_at"`
	FullName         string    `json:"full_name"`
	Status           string    `json:"status"`
	PaymentReference string    `json:"payment_reference"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Method           string    `json:"method"`
	ReceiptURL       string    `json:"receipt_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
