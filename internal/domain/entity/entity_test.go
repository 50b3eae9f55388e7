package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConversationIDIsOrderIndependent(t *testing.T) {
	assert.Equal(t, "a1_b2", ConversationID("a1", "b2"))
	assert.Equal(t, "a1_b2", ConversationID("b2", "a1"))
	assert.Equal(t, []string{"a1", "b2"}, ConversationParticipants("b2", "a1"))
}

func TestConversationParticipants(t *testing.T) {
	c := &Conversation{Participants: []string{"a1", "b2"}, UnreadCount: map[string]int{"b2": 3}}

	assert.True(t, c.HasParticipant("a1"))
	assert.False(t, c.HasParticipant("c3"))
	assert.Equal(t, "b2", c.OtherParticipant("a1"))
	assert.Equal(t, "", c.OtherParticipant("c3"))
	assert.Equal(t, 3, c.UnreadFor("b2"))
	assert.Equal(t, 0, c.UnreadFor("a1"))
}

func TestTransactionTransitions(t *testing.T) {
	assert.True(t, TransactionPending.CanTransition(TransactionConfirmed))
	assert.True(t, TransactionPaymentSubmitted.CanTransition(TransactionConfirmed))
	assert.True(t, TransactionPaid.CanTransition(TransactionCompleted))
	assert.False(t, TransactionPaid.CanTransition(TransactionCanceled))
	assert.False(t, TransactionCompleted.CanTransition(TransactionPending))
	assert.False(t, TransactionCanceled.CanTransition(TransactionConfirmed))
}

func TestMessagePreview(t *testing.T) {
	assert.Equal(t, "Hello", (&Message{Text: "Hello"}).Preview())
	assert.Equal(t, "Sent a payment proof", (&Message{Type: MessageTypePaymentProof, MediaURL: "u"}).Preview())
	assert.Equal(t, "Sent an image", (&Message{Type: MessageTypeImage, MediaURL: "u"}).Preview())
}

func TestPlatformNotificationVisibility(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	assert.True(t, (&PlatformNotification{Audience: AudienceAll}).VisibleTo(RoleClient, now))
	assert.False(t, (&PlatformNotification{Audience: AudienceProviders}).VisibleTo(RoleClient, now))
	assert.False(t, (&PlatformNotification{Audience: AudienceAll, ExpiresAt: &past}).VisibleTo(RoleClient, now))
}

func TestServiceRating(t *testing.T) {
	assert.Equal(t, 0.0, (&Service{}).Rating())
	assert.InDelta(t, 4.5, (&Service{RatingTotal: 9, ReviewCount: 2}).Rating(), 0.001)
}
