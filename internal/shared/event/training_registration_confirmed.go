package event

const TrainingRegistrationConfirmedDestination string = "training_registration_confirmed"
const TrainingRegistrationConfirmedConsumerNotification string = "training_registration_confirmed_notification"

type TrainingRegistrationConfirmedMessage struct {
	RegistrationID        int64  `json:"registration_id"`
	UserID                int64  `json:"user_id"`
	Email                 string `json:"email"`
	FullName              string `json:"full_name"`
	TrainingID            int64  `json:"training_id"`
	TrainingTitle         string `json:"training_title"`
	FinalizationReference string `json:"finalization_reference"`
	ReceiptURL            string `json:"receipt_url"`
	Amount                int64  `json:"amount"`
	Currency              string `json:"currency"`
}
