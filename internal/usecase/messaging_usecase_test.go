package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alima/internal/domain/entity"
	"alima/internal/infrastructure/ratelimit"
	"alima/pkg/errors"
)

func TestSendMessageCreatesConversationMessageAndNotification(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a1", "Ayu", entity.RoleClient)
	f.addUser(t, "b2", "Budi", entity.RoleProvider)
	ctx := context.Background()

	res, err := f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "b2", Text: "Hello"})
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, "a1_b2", res.Conversation.ID)
	assert.Equal(t, "a1", res.Conversation.LastSenderID)
	assert.Equal(t, "Ayu", res.Conversation.LastSenderName)
	assert.Equal(t, "Hello", res.Conversation.LastMessage)
	assert.Equal(t, 1, res.Conversation.UnreadFor("b2"))
	assert.Equal(t, 0, res.Conversation.UnreadFor("a1"))

	msg, err := f.convRepo.GetMessage(ctx, res.Message.ID)
	require.NoError(t, err)
	assert.Equal(t, "a1", msg.SenderID)
	assert.Equal(t, "b2", msg.ReceiverID)
	assert.False(t, msg.Read)

	notes, err := f.notifRepo.ListByUser(ctx, "b2", 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, entity.NotificationMessage, notes[0].Type)
	assert.False(t, notes[0].Read)
	assert.Equal(t, "a1", notes[0].Payload[entity.PayloadSenderID])
	assert.Equal(t, "Ayu", notes[0].Payload[entity.PayloadSenderName])
	assert.Equal(t, "a1_b2", notes[0].Payload[entity.PayloadConversationID])
	assert.Equal(t, "Hello", notes[0].Payload[entity.PayloadPreview])

	views, err := f.messaging.ListConversations(ctx, "b2", 20)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].Unread)
	require.NotNil(t, views[0].OtherUser)
	assert.Equal(t, "Ayu", views[0].OtherUser.DisplayName)
}

func TestSendMessageBothDirectionsShareConversation(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a1", "Ayu", entity.RoleClient)
	f.addUser(t, "b2", "Budi", entity.RoleProvider)
	ctx := context.Background()

	first, err := f.messaging.SendMessage(ctx, "b2", SendMessageInput{ReceiverID: "a1", Text: "Hi"})
	require.NoError(t, err)
	second, err := f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "b2", Text: "Hey"})
	require.NoError(t, err)
	third, err := f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "b2", Text: "Still there?"})
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.False(t, third.Created)
	assert.Equal(t, first.Conversation.ID, third.Conversation.ID)

	conv, err := f.convRepo.GetByID(ctx, "a1_b2")
	require.NoError(t, err)
	assert.Equal(t, 1, conv.UnreadFor("a1"))
	assert.Equal(t, 2, conv.UnreadFor("b2"))
	assert.Equal(t, "Still there?", conv.LastMessage)

	convs, err := f.convRepo.ListByParticipant(ctx, "a1", 20)
	require.NoError(t, err)
	assert.Len(t, convs, 1)

	msgs, err := f.messaging.ListMessages(ctx, "b2", "a1_b2", 20)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "Hi", msgs[0].Text)
	assert.Equal(t, "Still there?", msgs[2].Text)
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a1", "Ayu", entity.RoleClient)
	ctx := context.Background()

	tests := []struct {
		name  string
		input SendMessageInput
		code  string
	}{
		{"self", SendMessageInput{ReceiverID: "a1", Text: "me"}, "BAD_REQUEST"},
		{"empty", SendMessageInput{ReceiverID: "b2"}, "BAD_REQUEST"},
		{"no receiver", SendMessageInput{Text: "hi"}, "BAD_REQUEST"},
		{"unknown receiver", SendMessageInput{ReceiverID: "zz", Text: "hi"}, "NOT_FOUND"},
		{"payment proof via chat", SendMessageInput{ReceiverID: "zz", Type: entity.MessageTypePaymentProof, MediaURL: "x"}, "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.messaging.SendMessage(ctx, "a1", tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestSendMessageImageWithoutText(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a1", "Ayu", entity.RoleClient)
	f.addUser(t, "b2", "Budi", entity.RoleProvider)

	res, err := f.messaging.SendMessage(context.Background(), "a1", SendMessageInput{ReceiverID: "b2", MediaURL: "https://cdn.alima.test/p.png"})
	require.NoError(t, err)
	assert.Equal(t, entity.MessageTypeImage, res.Message.Type)
	assert.Equal(t, "Sent an image", res.Conversation.LastMessage)
}

func TestSendMessageRateLimited(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a1", "Ayu", entity.RoleClient)
	f.addUser(t, "b2", "Budi", entity.RoleProvider)

	limiter := ratelimit.NewRateLimiter()
	limiter.SetPolicy(ratelimit.ActionSendMessage, ratelimit.Policy{Burst: 1, Every: time.Hour})
	f.messaging.rateLimiter = limiter

	ctx := context.Background()
	_, err := f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "b2", Text: "one"})
	require.NoError(t, err)

	_, err = f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "b2", Text: "two"})
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
}

func TestMarkReadKeepsCounterConsistent(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a1", "Ayu", entity.RoleClient)
	f.addUser(t, "b2", "Budi", entity.RoleProvider)
	ctx := context.Background()

	first, err := f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "b2", Text: "one"})
	require.NoError(t, err)
	_, err = f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "b2", Text: "two"})
	require.NoError(t, err)

	_, err = f.messaging.MarkMessageRead(ctx, "a1", first.Message.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	changed, err := f.messaging.MarkMessageRead(ctx, "b2", first.Message.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.messaging.MarkMessageRead(ctx, "b2", first.Message.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	conv, err := f.convRepo.GetByID(ctx, "a1_b2")
	require.NoError(t, err)
	assert.Equal(t, 1, conv.UnreadFor("b2"))

	n, err := f.messaging.MarkConversationRead(ctx, "b2", "a1_b2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := f.convRepo.CountUnreadMessages(ctx, "b2")
	require.NoError(t, err)
	assert.Zero(t, count)

	conv, err = f.messaging.ReconcileUnread(ctx, "b2", "a1_b2")
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadFor("b2"))
}

func TestConversationAccessIsLimitedToParticipants(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a1", "Ayu", entity.RoleClient)
	f.addUser(t, "b2", "Budi", entity.RoleProvider)
	f.addUser(t, "c3", "Citra", entity.RoleClient)
	ctx := context.Background()

	_, err := f.messaging.SendMessage(ctx, "a1", SendMessageInput{ReceiverID: "b2", Text: "private"})
	require.NoError(t, err)

	_, err = f.messaging.GetConversation(ctx, "c3", "a1_b2")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = f.messaging.ListMessages(ctx, "c3", "a1_b2", 20)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = f.messaging.GetConversation(ctx, "a1", "a1_zz")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	_, err = f.messaging.ReconcileUnread(ctx, "c3", "a1_b2")
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}
