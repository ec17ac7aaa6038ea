package event

import "time"

const TrainingPaymentOTPDestination string = "training_payment_otp"
const TrainingPaymentOTPConsumerNotification string = "training_payment_otp_notification"

// TrainingPaymentOTPMessage carries the plaintext code to the delivery
// channel. Consumers must never persist Code.
type TrainingPaymentOTPMessage struct {
	ChallengeID      int64     `json:"challenge_id"`
	UserID           int64     `json:"user_id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	TrainingID       int64     `json:"training_id"`
	TrainingTitle    string    `json:"training_title"`
	Code             string    `json:"code"`
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresInMinutes int       `json:"expires_in_minutes"`
}
