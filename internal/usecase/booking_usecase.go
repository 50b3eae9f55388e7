package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/internal/infrastructure/events"
	"alima/pkg/errors"
	"alima/pkg/logger"
)

// BookingUseCase runs the booking workflow: booking, confirmation, manual
// payment proof, completion and review.
type BookingUseCase struct {
	txRepo        repository.TransactionRepository
	paymentRepo   repository.PaymentRequestRepository
	serviceRepo   repository.ServiceRepository
	reviewRepo    repository.ReviewRepository
	users         *UserUseCase
	messaging     *MessagingUseCase
	notifications *NotificationUseCase
	publisher     events.Publisher
	now           func() time.Time
}

func NewBookingUseCase(
	txRepo repository.TransactionRepository,
	paymentRepo repository.PaymentRequestRepository,
	serviceRepo repository.ServiceRepository,
	reviewRepo repository.ReviewRepository,
	users *UserUseCase,
	messaging *MessagingUseCase,
	notifications *NotificationUseCase,
	publisher events.Publisher,
) *BookingUseCase {
	return &BookingUseCase{
		txRepo:        txRepo,
		paymentRepo:   paymentRepo,
		serviceRepo:   serviceRepo,
		reviewRepo:    reviewRepo,
		users:         users,
		messaging:     messaging,
		notifications: notifications,
		publisher:     publisher,
		now:           time.Now,
	}
}

type BookInput struct {
	ServiceID   string
	Notes       string
	ScheduledAt *time.Time
}

type PaymentProofInput struct {
	ProofURL string
	Note     string
}

type ReviewInput struct {
	Rating  int
	Comment string
}

type TransactionFilter struct {
	// Role is "client", "provider" or empty for both.
	Role   string
	Status string
}

func (uc *BookingUseCase) Book(ctx context.Context, clientID string, input BookInput) (*entity.Transaction, error) {
	svc, err := uc.serviceRepo.GetByID(ctx, input.ServiceID)
	if err != nil {
		return nil, errors.FromStore(err, "Service not found")
	}
	if !svc.IsActive() {
		return nil, errors.BadRequest("This service is not accepting bookings", nil)
	}
	if svc.ProviderID == clientID {
		return nil, errors.BadRequest("You cannot book your own service", nil)
	}

	now := uc.now()
	tx := &entity.Transaction{
		ID:           uuid.New().String(),
		ServiceID:    svc.ID,
		ServiceTitle: svc.Title,
		ClientID:     clientID,
		ProviderID:   svc.ProviderID,
		Amount:       svc.Price,
		Currency:     svc.Currency,
		Notes:        input.Notes,
		ScheduledAt:  input.ScheduledAt,
		Status:       entity.TransactionPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.txRepo.Create(ctx, tx); err != nil {
		logger.Error("Book: service %s client %s: %v", svc.ID, clientID, err)
		return nil, errors.FromStore(err, "Failed to create booking")
	}

	uc.notify(ctx, tx.ProviderID, entity.NotificationServiceBooked, tx, clientID)
	publish(ctx, uc.publisher, events.BookingCreated, map[string]interface{}{
		"transaction_id": tx.ID,
		"service_id":     tx.ServiceID,
		"client_id":      tx.ClientID,
		"provider_id":    tx.ProviderID,
	})
	return tx, nil
}

func (uc *BookingUseCase) GetTransaction(ctx context.Context, userID, id string) (*entity.Transaction, error) {
	tx, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.FromStore(err, "Transaction not found")
	}
	if !tx.IsParty(userID) {
		return nil, errors.Forbidden("You are not a party of this booking", nil)
	}
	return tx, nil
}

func (uc *BookingUseCase) ListTransactions(ctx context.Context, userID string, filter TransactionFilter, limit, offset int) ([]*entity.Transaction, int64, error) {
	f := repository.TransactionFilter{Status: entity.TransactionStatus(filter.Status)}
	switch filter.Role {
	case entity.RoleProvider:
		f.ProviderID = userID
	case entity.RoleClient, "":
		f.ClientID = userID
	default:
		return nil, 0, errors.BadRequest("role must be client or provider", nil)
	}

	items, total, err := uc.txRepo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, errors.FromStore(err, "Failed to list transactions")
	}
	return items, total, nil
}

// Confirm is the provider accepting a pending booking.
func (uc *BookingUseCase) Confirm(ctx context.Context, providerID, id string) (*entity.Transaction, error) {
	tx, err := uc.providerTransaction(ctx, providerID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.transition(ctx, tx, entity.TransactionConfirmed); err != nil {
		return nil, err
	}
	uc.notify(ctx, tx.ClientID, entity.NotificationBookingConfirmed, tx, providerID)
	return tx, nil
}

// Cancel is allowed to either party until the payment is confirmed.
func (uc *BookingUseCase) Cancel(ctx context.Context, userID, id, reason string) (*entity.Transaction, error) {
	tx, err := uc.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !tx.Status.CanTransition(entity.TransactionCanceled) {
		return nil, errors.BadRequest(fmt.Sprintf("A %s booking can no longer be canceled", tx.Status), nil)
	}

	prev := tx.Status
	tx.CancelReason = strings.TrimSpace(reason)
	tx.CanceledBy = userID
	if err := uc.transition(ctx, tx, entity.TransactionCanceled); err != nil {
		return nil, err
	}
	if prev == entity.TransactionPaymentSubmitted {
		uc.closePayment(ctx, tx)
	}
	uc.notify(ctx, tx.Counterpart(userID), entity.NotificationBookingCanceled, tx, userID)
	return tx, nil
}

// closePayment marks the pending proof of a canceled booking as canceled.
// A failure is only logged; pendingPayment refuses decisions on a booking
// that is no longer waiting for one.
func (uc *BookingUseCase) closePayment(ctx context.Context, tx *entity.Transaction) {
	if tx.PaymentRequestID == "" {
		return
	}
	req, err := uc.paymentRepo.GetByID(ctx, tx.PaymentRequestID)
	if err != nil {
		logger.Error("Cancel: payment request %s of booking %s not loaded: %v", tx.PaymentRequestID, tx.ID, err)
		return
	}
	if req.Status != entity.PaymentPending {
		return
	}

	now := uc.now()
	req.Status = entity.PaymentCanceled
	req.RejectReason = "Booking canceled"
	if tx.CancelReason != "" {
		req.RejectReason = "Booking canceled: " + tx.CancelReason
	}
	req.DecidedAt = &now
	if err := uc.paymentRepo.Update(ctx, req); err != nil {
		logger.Error("Cancel: payment request %s of booking %s not closed: %v", req.ID, tx.ID, err)
	}
}

// SubmitPaymentProof records a payment proof and sends it to the provider
// as a payment_proof message.
func (uc *BookingUseCase) SubmitPaymentProof(ctx context.Context, clientID, id string, input PaymentProofInput) (*entity.PaymentRequest, error) {
	tx, err := uc.GetTransaction(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	if tx.ClientID != clientID {
		return nil, errors.Forbidden("Only the client can submit a payment proof", nil)
	}
	if input.ProofURL == "" {
		return nil, errors.BadRequest("proof_url is required", nil)
	}
	if !tx.Status.CanTransition(entity.TransactionPaymentSubmitted) {
		return nil, errors.BadRequest("Payment proof can only be sent for a confirmed booking", nil)
	}

	client, err := uc.users.GetProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}

	req := &entity.PaymentRequest{
		ID:             uuid.New().String(),
		TransactionID:  tx.ID,
		ClientID:       tx.ClientID,
		ProviderID:     tx.ProviderID,
		Amount:         tx.Amount,
		ProofURL:       input.ProofURL,
		Note:           input.Note,
		Status:         entity.PaymentPending,
		ConversationID: entity.ConversationID(tx.ClientID, tx.ProviderID),
		CreatedAt:      uc.now(),
	}
	if err := uc.paymentRepo.Create(ctx, req); err != nil {
		return nil, errors.FromStore(err, "Failed to record payment proof")
	}

	tx.PaymentRequestID = req.ID
	if err := uc.transition(ctx, tx, entity.TransactionPaymentSubmitted); err != nil {
		return nil, err
	}

	_, err = uc.messaging.dispatch(ctx, client, &entity.Message{
		SenderID:      clientID,
		ReceiverID:    tx.ProviderID,
		Type:          entity.MessageTypePaymentProof,
		Text:          input.Note,
		MediaURL:      input.ProofURL,
		TransactionID: tx.ID,
	})
	if err != nil {
		logger.Error("SubmitPaymentProof: proof %s recorded but message not sent: %v", req.ID, err)
	}

	publish(ctx, uc.publisher, events.PaymentProofSent, map[string]interface{}{
		"transaction_id":     tx.ID,
		"payment_request_id": req.ID,
	})
	return req, nil
}

func (uc *BookingUseCase) ListPaymentRequests(ctx context.Context, userID, id string) ([]*entity.PaymentRequest, error) {
	if _, err := uc.GetTransaction(ctx, userID, id); err != nil {
		return nil, err
	}
	items, err := uc.paymentRepo.ListByTransaction(ctx, id)
	if err != nil {
		return nil, errors.FromStore(err, "Failed to load payment requests")
	}
	return items, nil
}

// ConfirmPayment marks the proof as genuine and the booking as paid.
func (uc *BookingUseCase) ConfirmPayment(ctx context.Context, providerID, requestID string) (*entity.Transaction, error) {
	req, tx, err := uc.pendingPayment(ctx, providerID, requestID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	req.Status = entity.PaymentConfirmed
	req.DecidedAt = &now
	if err := uc.paymentRepo.Update(ctx, req); err != nil {
		return nil, errors.FromStore(err, "Failed to confirm payment")
	}
	if err := uc.transition(ctx, tx, entity.TransactionPaid); err != nil {
		return nil, err
	}

	uc.notify(ctx, tx.ClientID, entity.NotificationPaymentConfirmed, tx, providerID)
	return tx, nil
}

// RejectPayment returns the booking to confirmed so the client can send a
// new proof.
func (uc *BookingUseCase) RejectPayment(ctx context.Context, providerID, requestID, reason string) (*entity.Transaction, error) {
	req, tx, err := uc.pendingPayment(ctx, providerID, requestID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	req.Status = entity.PaymentRejected
	req.RejectReason = strings.TrimSpace(reason)
	req.DecidedAt = &now
	if err := uc.paymentRepo.Update(ctx, req); err != nil {
		return nil, errors.FromStore(err, "Failed to reject payment")
	}

	tx.PaymentRequestID = ""
	if err := uc.transition(ctx, tx, entity.TransactionConfirmed); err != nil {
		return nil, err
	}
	return tx, nil
}

func (uc *BookingUseCase) pendingPayment(ctx context.Context, providerID, requestID string) (*entity.PaymentRequest, *entity.Transaction, error) {
	req, err := uc.paymentRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, errors.FromStore(err, "Payment request not found")
	}
	if req.ProviderID != providerID {
		return nil, nil, errors.Forbidden("You cannot decide on this payment", nil)
	}
	if req.Status != entity.PaymentPending {
		return nil, nil, errors.BadRequest("Payment request was already decided", nil)
	}

	tx, err := uc.txRepo.GetByID(ctx, req.TransactionID)
	if err != nil {
		return nil, nil, errors.FromStore(err, "Transaction not found")
	}
	// Checked before any write so the request and the booking never disagree.
	if tx.Status != entity.TransactionPaymentSubmitted || tx.PaymentRequestID != req.ID {
		return nil, nil, errors.BadRequest(fmt.Sprintf("A %s booking is not waiting for this payment", tx.Status), nil)
	}
	return req, tx, nil
}

// Complete closes a paid booking and asks the client for a review.
func (uc *BookingUseCase) Complete(ctx context.Context, providerID, id string) (*entity.Transaction, error) {
	tx, err := uc.providerTransaction(ctx, providerID, id)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	tx.CompletedAt = &now
	if err := uc.transition(ctx, tx, entity.TransactionCompleted); err != nil {
		return nil, err
	}
	uc.notify(ctx, tx.ClientID, entity.NotificationRatingRequest, tx, providerID)
	return tx, nil
}

// Review stores the client's review of a completed booking. A booking has at
// most one review; its id is the transaction id.
func (uc *BookingUseCase) Review(ctx context.Context, clientID, id string, input ReviewInput) (*entity.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.BadRequest("rating must be between 1 and 5", nil)
	}

	tx, err := uc.GetTransaction(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	if tx.ClientID != clientID {
		return nil, errors.Forbidden("Only the client can review a booking", nil)
	}
	if tx.Status != entity.TransactionCompleted {
		return nil, errors.BadRequest("Only completed bookings can be reviewed", nil)
	}
	if tx.Reviewed {
		return nil, errors.Conflict("This booking was already reviewed")
	}

	client, err := uc.users.GetProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}

	review := &entity.Review{
		ID:            tx.ID,
		TransactionID: tx.ID,
		ServiceID:     tx.ServiceID,
		ReviewerID:    clientID,
		ReviewerName:  client.DisplayName,
		ProviderID:    tx.ProviderID,
		Rating:        input.Rating,
		Comment:       strings.TrimSpace(input.Comment),
		CreatedAt:     uc.now(),
	}
	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, "CONFLICT") {
			return nil, errors.Conflict("This booking was already reviewed")
		}
		return nil, errors.FromStore(err, "Failed to save review")
	}

	if err := uc.serviceRepo.AddRating(ctx, tx.ServiceID, input.Rating); err != nil {
		logger.Error("Review: rating of service %s not updated: %v", tx.ServiceID, err)
	}

	tx.Reviewed = true
	tx.UpdatedAt = uc.now()
	if err := uc.txRepo.Update(ctx, tx); err != nil {
		logger.Error("Review: transaction %s not flagged as reviewed: %v", tx.ID, err)
	}

	payload := uc.payload(ctx, tx, clientID)
	payload[entity.PayloadRating] = input.Rating
	uc.notifications.Notify(ctx, tx.ProviderID, entity.NotificationReview, payload)
	publish(ctx, uc.publisher, events.ReviewCreated, map[string]interface{}{
		"transaction_id": tx.ID,
		"service_id":     tx.ServiceID,
		"rating":         input.Rating,
	})
	return review, nil
}

func (uc *BookingUseCase) ListReviews(ctx context.Context, serviceID string, limit, offset int) ([]*entity.Review, int64, error) {
	items, total, err := uc.reviewRepo.ListByService(ctx, serviceID, limit, offset)
	if err != nil {
		return nil, 0, errors.FromStore(err, "Failed to load reviews")
	}
	return items, total, nil
}

func (uc *BookingUseCase) providerTransaction(ctx context.Context, providerID, id string) (*entity.Transaction, error) {
	tx, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.FromStore(err, "Transaction not found")
	}
	if tx.ProviderID != providerID {
		return nil, errors.Forbidden("Only the provider can do this", nil)
	}
	return tx, nil
}

func (uc *BookingUseCase) transition(ctx context.Context, tx *entity.Transaction, next entity.TransactionStatus) error {
	if !tx.Status.CanTransition(next) {
		return errors.BadRequest(fmt.Sprintf("Cannot move booking from %s to %s", tx.Status, next), nil)
	}

	prev := tx.Status
	tx.Status = next
	tx.UpdatedAt = uc.now()
	if err := uc.txRepo.Update(ctx, tx); err != nil {
		tx.Status = prev
		logger.Error("Booking %s: %s -> %s failed: %v", tx.ID, prev, next, err)
		return errors.FromStore(err, "Failed to update booking")
	}

	publish(ctx, uc.publisher, events.BookingStatusChanged, map[string]interface{}{
		"transaction_id": tx.ID,
		"from":           prev,
		"to":             next,
	})
	return nil
}

func (uc *BookingUseCase) notify(ctx context.Context, userID string, typ entity.NotificationType, tx *entity.Transaction, actorID string) {
	uc.notifications.Notify(ctx, userID, typ, uc.payload(ctx, tx, actorID))
}

// payload carries the booking context and the actor's profile.
func (uc *BookingUseCase) payload(ctx context.Context, tx *entity.Transaction, actorID string) map[string]interface{} {
	payload := map[string]interface{}{
		entity.PayloadServiceID:     tx.ServiceID,
		entity.PayloadServiceTitle:  tx.ServiceTitle,
		entity.PayloadTransactionID: tx.ID,
		entity.PayloadSenderID:      actorID,
	}
	if actor, err := uc.users.GetProfile(ctx, actorID); err == nil {
		payload[entity.PayloadSenderName] = actor.DisplayName
		payload[entity.PayloadSenderAvatar] = actor.PhotoURL
	}
	return payload
}
