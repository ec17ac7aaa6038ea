package inbound

import (
	"strconv"

	"github.com/samber/lo"
	"github.com/shandysiswandi/skillbridge/internal/pkg/router"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"github.com/shandysiswandi/skillbridge/internal/training/usecase"
)

// HTTPEndpoint exposes the training catalog and payment confirmation.
type HTTPEndpoint struct {
	uc uc
}

// TrainingList returns open trainings.
// @Summary List trainings
// @Tags Training
// @Produce json
// @Param search query string false "Search by title or trainer"
// @Param size query int false "Pagination size"
// @Param page query int false "Pagination page"
// @Success 200 {object} router.successResponse{data=TrainingsResponse} "Training list"
// @Failure 400 {object} router.errorResponse "Invalid query parameters"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/trainings [get]
func (h *HTTPEndpoint) TrainingList(r *router.Request) (any, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.TrainingList(r.Context(), usecase.TrainingListInput{
		Search: r.GetQuery("search"),
		Size:   size,
		Page:   page,
	})
	if err != nil {
		return nil, err
	}

	return TrainingsResponse{
		Page:  resp.Page,
		Size:  resp.Size,
		Total: resp.Total,
		Trainings: lo.Map(resp.Trainings, func(t entity.Training, _ int) TrainingResponse {
			return toTrainingResponse(t)
		}),
	}, nil
}

// TrainingDetail returns one training.
// @Summary Training detail
// @Tags Training
// @Produce json
// @Param id path string true "Training ID"
// @Success 200 {object} router.successResponse{data=TrainingResponse} "Training"
// @Failure 404 {object} router.errorResponse "Training not found"
// @Router /api/v1/trainings/{id} [get]
func (h *HTTPEndpoint) TrainingDetail(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.TrainingDetail(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return toTrainingResponse(*resp), nil
}

// SendPaymentOTP issues a payment confirmation code to the caller's email.
// @Summary Send payment OTP
// @Tags Training, Payment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SendPaymentOTPRequest true "Pending registration and payment"
// @Success 200 {object} router.successResponse{data=SendPaymentOTPResponse} "OTP sent"
// @Failure 409 {object} router.errorResponse "INVALID_CONTEXT"
// @Failure 422 {object} router.errorResponse "INVALID_INPUT"
// @Failure 429 {object} router.errorResponse "SEND_THROTTLED"
// @Failure 502 {object} router.errorResponse "DELIVERY_FAILED"
// @Router /api/v1/trainings/send-payment-otp [post]
func (h *HTTPEndpoint) SendPaymentOTP(r *router.Request) (any, error) {
	var req SendPaymentOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SendPaymentOTP(r.Context(), toSendInput(req.TrainingID, req.Registration, req.Payment))
	if err != nil {
		return nil, err
	}

	return SendPaymentOTPResponse{
		ExpiresAt:   resp.ExpiresAt,
		TTLSeconds:  int64(resp.TTL.Seconds()),
		ResendAfter: int64(resp.ResendAfter.Seconds()),
	}, nil
}

// VerifyPaymentOTP confirms the payment and finalizes the registration.
// @Summary Verify payment OTP
// @Tags Training, Payment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body VerifyPaymentOTPRequest true "Code and optional context copy"
// @Success 200 {object} router.successResponse{data=VerifyPaymentOTPResponse} "Registration finalized"
// @Failure 404 {object} router.errorResponse "NO_ACTIVE_CHALLENGE"
// @Failure 409 {object} router.errorResponse "ALREADY_CONSUMED or INVALID_CONTEXT"
// @Failure 410 {object} router.errorResponse "EXPIRED"
// @Failure 422 {object} router.errorResponse "INVALID_INPUT or INVALID_CODE"
// @Failure 429 {object} router.errorResponse "TOO_MANY_ATTEMPTS"
// @Router /api/v1/trainings/verify-payment-otp [post]
func (h *HTTPEndpoint) VerifyPaymentOTP(r *router.Request) (any, error) {
	var req VerifyPaymentOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in := usecase.VerifyPaymentOTPInput{
		TrainingID: req.TrainingID,
		Code:       req.Code,
	}
	if req.Registration != nil && req.Payment != nil {
		echo := toSendInput(req.TrainingID, *req.Registration, *req.Payment)
		in.Echo = &echo
	}

	resp, err := h.uc.VerifyPaymentOTP(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return VerifyPaymentOTPResponse{
		Success:               true,
		RegistrationID:        strconv.FormatInt(resp.RegistrationID, 10),
		PaymentReference:      resp.PaymentReference,
		FinalizationReference: resp.FinalizationReference,
		ReceiptURL:            resp.ReceiptURL,
	}, nil
}

// MyRegistrations lists the caller's confirmed registrations.
// @Summary My registrations
// @Tags Training
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=[]MyRegistrationResponse} "Registrations"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /api/v1/training-registrations/me [get]
func (h *HTTPEndpoint) MyRegistrations(r *router.Request) (any, error) {
	resp, err := h.uc.MyRegistrations(r.Context())
	if err != nil {
		return nil, err
	}

	return lo.Map(resp, func(reg usecase.MyRegistration, _ int) MyRegistrationResponse {
		return MyRegistrationResponse{
			ID:               strconv.FormatInt(reg.ID, 10),
			TrainingID:       strconv.FormatInt(reg.TrainingID, 10),
			TrainingTitle:    reg.TrainingTitle,
			TrainingStartsAt: reg.TrainingStartsAt,
			FullName:         reg.FullName,
			Status:           reg.Status.String(),
			PaymentReference: reg.PaymentReference,
			Amount:           reg.Amount,
			Currency:         reg.Currency,
			Method:           reg.Method.String(),
			ReceiptURL:       reg.ReceiptURL,
			CreatedAt:        reg.CreatedAt,
		}
	}), nil
}

func toSendInput(trainingID int64, reg RegistrationRequest, pay PaymentRequest) usecase.SendPaymentOTPInput {
	return usecase.SendPaymentOTPInput{
		TrainingID:   trainingID,
		FullName:     reg.FullName,
		Phone:        reg.Phone,
		Organization: reg.Organization,
		Notes:        reg.Notes,
		Method:       pay.Method,
		Amount:       pay.Amount,
		Currency:     pay.Currency,
		PayerName:    pay.PayerName,
		CardLastFour: pay.CardLastFour,
	}
}

func toTrainingResponse(t entity.Training) TrainingResponse {
	return TrainingResponse{
		ID:          strconv.FormatInt(t.ID, 10),
		Title:       t.Title,
		TrainerName: t.TrainerName,
		Description: t.Description,
		Mode:        t.Mode.String(),
		Location:    t.Location,
		StartsAt:    t.StartsAt,
		EndsAt:      t.EndsAt,
		PriceAmount: t.PriceAmount,
		Currency:    t.Currency,
		Capacity:    t.Capacity,
		SeatsLeft:   t.SeatsLeft(),
		Status:      t.Status.String(),
	}
}
