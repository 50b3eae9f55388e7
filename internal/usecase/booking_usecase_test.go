package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alima/internal/domain/entity"
	"alima/pkg/errors"
)

func seedListing(t *testing.T, f *fixture) *entity.Service {
	t.Helper()
	f.addUser(t, "client", "Ayu", entity.RoleClient)
	f.addUser(t, "prov", "Budi", entity.RoleProvider)

	svc, err := f.services.CreateService(context.Background(), "prov", CreateServiceInput{
		Title:    "House cleaning",
		Category: "Cleaning",
		Price:    150000,
	})
	require.NoError(t, err)
	return svc
}

func notificationTypes(t *testing.T, f *fixture, userID string) []entity.NotificationType {
	t.Helper()
	items, err := f.notifRepo.ListByUser(context.Background(), userID, 0)
	require.NoError(t, err)
	out := make([]entity.NotificationType, 0, len(items))
	for _, n := range items {
		out = append(out, n.Type)
	}
	return out
}

func TestBookingLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := seedListing(t, f)
	ctx := context.Background()

	tx, err := f.bookings.Book(ctx, "client", BookInput{ServiceID: svc.ID, Notes: "Saturday morning"})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionPending, tx.Status)
	assert.Equal(t, "prov", tx.ProviderID)
	assert.Equal(t, 150000.0, tx.Amount)

	_, err = f.bookings.SubmitPaymentProof(ctx, "client", tx.ID, PaymentProofInput{ProofURL: "https://cdn.alima.test/proof.png"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"), "proof before confirmation")

	_, err = f.bookings.Confirm(ctx, "client", tx.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	tx, err = f.bookings.Confirm(ctx, "prov", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionConfirmed, tx.Status)

	req, err := f.bookings.SubmitPaymentProof(ctx, "client", tx.ID, PaymentProofInput{ProofURL: "https://cdn.alima.test/proof.png", Note: "Paid via transfer"})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, req.Status)
	assert.Equal(t, "client_prov", req.ConversationID)

	msgs, err := f.convRepo.ListMessages(ctx, "client_prov", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, entity.MessageTypePaymentProof, msgs[0].Type)
	assert.Equal(t, "https://cdn.alima.test/proof.png", msgs[0].MediaURL)
	assert.Equal(t, tx.ID, msgs[0].TransactionID)

	tx, err = f.bookings.RejectPayment(ctx, "prov", req.ID, "Amount does not match")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionConfirmed, tx.Status)

	req, err = f.bookings.SubmitPaymentProof(ctx, "client", tx.ID, PaymentProofInput{ProofURL: "https://cdn.alima.test/proof2.png"})
	require.NoError(t, err)

	tx, err = f.bookings.ConfirmPayment(ctx, "prov", req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionPaid, tx.Status)

	_, err = f.bookings.ConfirmPayment(ctx, "prov", req.ID)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = f.bookings.Cancel(ctx, "client", tx.ID, "changed my mind")
	assert.True(t, errors.Is(err, "BAD_REQUEST"), "paid bookings cannot be canceled")

	_, err = f.bookings.Review(ctx, "client", tx.ID, ReviewInput{Rating: 5})
	assert.True(t, errors.Is(err, "BAD_REQUEST"), "review before completion")

	tx, err = f.bookings.Complete(ctx, "prov", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionCompleted, tx.Status)
	require.NotNil(t, tx.CompletedAt)

	review, err := f.bookings.Review(ctx, "client", tx.ID, ReviewInput{Rating: 4, Comment: "Spotless"})
	require.NoError(t, err)
	assert.Equal(t, tx.ID, review.ID)
	assert.Equal(t, "Ayu", review.ReviewerName)

	_, err = f.bookings.Review(ctx, "client", tx.ID, ReviewInput{Rating: 1})
	assert.True(t, errors.Is(err, "CONFLICT"))

	listing, err := f.services.GetService(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, listing.ReviewCount)
	assert.Equal(t, 4.0, listing.Rating)

	assert.ElementsMatch(t, []entity.NotificationType{
		entity.NotificationServiceBooked,
		entity.NotificationPaymentProof,
		entity.NotificationPaymentProof,
		entity.NotificationReview,
	}, notificationTypes(t, f, "prov"))
	assert.ElementsMatch(t, []entity.NotificationType{
		entity.NotificationBookingConfirmed,
		entity.NotificationPaymentConfirmed,
		entity.NotificationRatingRequest,
	}, notificationTypes(t, f, "client"))
}

func TestBookingRules(t *testing.T) {
	f := newFixture(t)
	svc := seedListing(t, f)
	ctx := context.Background()

	_, err := f.bookings.Book(ctx, "prov", BookInput{ServiceID: svc.ID})
	assert.True(t, errors.Is(err, "BAD_REQUEST"), "own service")

	paused := entity.ServiceStatusPaused
	_, err = f.services.UpdateService(ctx, "prov", svc.ID, UpdateServiceInput{Status: &paused})
	require.NoError(t, err)
	_, err = f.bookings.Book(ctx, "client", BookInput{ServiceID: svc.ID})
	assert.True(t, errors.Is(err, "BAD_REQUEST"), "paused service")

	active := entity.ServiceStatusActive
	_, err = f.services.UpdateService(ctx, "prov", svc.ID, UpdateServiceInput{Status: &active})
	require.NoError(t, err)

	tx, err := f.bookings.Book(ctx, "client", BookInput{ServiceID: svc.ID})
	require.NoError(t, err)

	f.addUser(t, "other", "Citra", entity.RoleClient)
	_, err = f.bookings.GetTransaction(ctx, "other", tx.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	tx, err = f.bookings.Cancel(ctx, "prov", tx.ID, " fully booked ")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionCanceled, tx.Status)
	assert.Equal(t, "fully booked", tx.CancelReason)
	assert.Equal(t, "prov", tx.CanceledBy)
	assert.Contains(t, notificationTypes(t, f, "client"), entity.NotificationBookingCanceled)

	items, total, err := f.bookings.ListTransactions(ctx, "prov", TransactionFilter{Role: entity.RoleProvider}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)

	_, err = f.bookings.Review(ctx, "client", tx.ID, ReviewInput{Rating: 9})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestCancelDuringPaymentReviewClosesProof(t *testing.T) {
	f := newFixture(t)
	svc := seedListing(t, f)
	ctx := context.Background()

	tx, err := f.bookings.Book(ctx, "client", BookInput{ServiceID: svc.ID})
	require.NoError(t, err)
	_, err = f.bookings.Confirm(ctx, "prov", tx.ID)
	require.NoError(t, err)
	req, err := f.bookings.SubmitPaymentProof(ctx, "client", tx.ID, PaymentProofInput{ProofURL: "https://cdn.alima.test/proof.png"})
	require.NoError(t, err)

	tx, err = f.bookings.Cancel(ctx, "client", tx.ID, "found another cleaner")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionCanceled, tx.Status)

	stored, err := f.paymentRepo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCanceled, stored.Status)
	assert.Equal(t, "Booking canceled: found another cleaner", stored.RejectReason)
	require.NotNil(t, stored.DecidedAt)

	_, err = f.bookings.ConfirmPayment(ctx, "prov", req.ID)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
	_, err = f.bookings.RejectPayment(ctx, "prov", req.ID, "too late")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	stored, err = f.paymentRepo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCanceled, stored.Status)
	current, err := f.txRepo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionCanceled, current.Status)
}

func TestPaymentDecisionRequiresWaitingBooking(t *testing.T) {
	f := newFixture(t)
	svc := seedListing(t, f)
	ctx := context.Background()

	tx, err := f.bookings.Book(ctx, "client", BookInput{ServiceID: svc.ID})
	require.NoError(t, err)
	_, err = f.bookings.Confirm(ctx, "prov", tx.ID)
	require.NoError(t, err)
	req, err := f.bookings.SubmitPaymentProof(ctx, "client", tx.ID, PaymentProofInput{ProofURL: "https://cdn.alima.test/proof.png"})
	require.NoError(t, err)

	// A pending request left behind by a booking that moved on is refused
	// without touching either document.
	current, err := f.txRepo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	current.Status = entity.TransactionCanceled
	require.NoError(t, f.txRepo.Update(ctx, current))

	_, err = f.bookings.ConfirmPayment(ctx, "prov", req.ID)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	stored, err := f.paymentRepo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, stored.Status)
	assert.Nil(t, stored.DecidedAt)
}
