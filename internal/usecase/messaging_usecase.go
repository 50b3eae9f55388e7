package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/internal/infrastructure/events"
	"alima/internal/infrastructure/metrics"
	"alima/internal/infrastructure/ratelimit"
	"alima/pkg/errors"
	"alima/pkg/logger"
)

const maxMessageLength = 2000

type MessagingUseCase struct {
	convRepo    repository.ConversationRepository
	users       *UserUseCase
	publisher   events.Publisher
	rateLimiter *ratelimit.RateLimiter
	now         func() time.Time
}

func NewMessagingUseCase(
	convRepo repository.ConversationRepository,
	users *UserUseCase,
	publisher events.Publisher,
	rateLimiter *ratelimit.RateLimiter,
) *MessagingUseCase {
	return &MessagingUseCase{
		convRepo:    convRepo,
		users:       users,
		publisher:   publisher,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

type SendMessageInput struct {
	ReceiverID string
	Type       entity.MessageType
	Text       string
	MediaURL   string
}

type SendMessageResult struct {
	Conversation *entity.Conversation `json:"conversation"`
	Message      *entity.Message      `json:"message"`
	Created      bool                 `json:"created"`
}

// ConversationView is a conversation as seen by one participant.
type ConversationView struct {
	*entity.Conversation
	OtherUser *entity.ProfileSummary `json:"other_user,omitempty"`
	Unread    int                    `json:"unread"`
}

// SendMessage records that senderID sent a message to input.ReceiverID.
func (uc *MessagingUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*SendMessageResult, error) {
	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage); !allowed {
			logger.Warn("SendMessage rate limited: user %s must wait %v", senderID, wait)
			return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", wait)
		}
	}

	if input.Type == "" {
		input.Type = entity.MessageTypeText
		if input.Text == "" && input.MediaURL != "" {
			input.Type = entity.MessageTypeImage
		}
	}
	input.Text = strings.TrimSpace(input.Text)

	switch {
	case input.ReceiverID == "":
		return nil, errors.BadRequest("receiver_id is required", nil)
	case input.ReceiverID == senderID:
		return nil, errors.BadRequest("You cannot send a message to yourself", nil)
	case input.Type != entity.MessageTypeText && input.Type != entity.MessageTypeImage:
		return nil, errors.BadRequest("Unsupported message type", nil)
	case input.Text == "" && input.MediaURL == "":
		return nil, errors.BadRequest("Message must contain text or media", nil)
	case input.Type == entity.MessageTypeImage && input.MediaURL == "":
		return nil, errors.BadRequest("media_url is required for image messages", nil)
	case len(input.Text) > maxMessageLength:
		return nil, errors.BadRequest("Message is too long", nil)
	}

	sender, err := uc.users.GetProfile(ctx, senderID)
	if err != nil {
		return nil, err
	}

	msg := &entity.Message{
		SenderID:   senderID,
		ReceiverID: input.ReceiverID,
		Type:       input.Type,
		Text:       input.Text,
		MediaURL:   input.MediaURL,
	}
	return uc.dispatch(ctx, sender, msg)
}

// dispatch writes the conversation upsert, the message and the receiver's
// notification in one transaction, then publishes MessageSent.
func (uc *MessagingUseCase) dispatch(ctx context.Context, sender *entity.User, msg *entity.Message) (*SendMessageResult, error) {
	if _, err := uc.users.GetProfile(ctx, msg.ReceiverID); err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.NotFound("Recipient", err)
		}
		return nil, err
	}

	now := uc.now()
	convID := entity.ConversationID(sender.ID, msg.ReceiverID)

	msg.ID = uuid.New().String()
	msg.ConversationID = convID
	msg.Read = false
	msg.CreatedAt = now

	preview := msg.Preview()
	conv := &entity.Conversation{
		ID:             convID,
		Participants:   entity.ConversationParticipants(sender.ID, msg.ReceiverID),
		LastMessage:    preview,
		LastSenderID:   sender.ID,
		LastSenderName: sender.DisplayName,
		LastMessageAt:  now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	notifType := entity.NotificationMessage
	if msg.Type == entity.MessageTypePaymentProof {
		notifType = entity.NotificationPaymentProof
	}
	payload := map[string]interface{}{
		entity.PayloadSenderID:       sender.ID,
		entity.PayloadSenderName:     sender.DisplayName,
		entity.PayloadSenderAvatar:   sender.PhotoURL,
		entity.PayloadConversationID: convID,
		entity.PayloadPreview:        preview,
	}
	if msg.MediaURL != "" {
		payload[entity.PayloadMediaURL] = msg.MediaURL
	}
	if msg.TransactionID != "" {
		payload[entity.PayloadTransactionID] = msg.TransactionID
	}
	notification := &entity.Notification{
		ID:        uuid.New().String(),
		UserID:    msg.ReceiverID,
		Type:      notifType,
		Read:      false,
		Payload:   payload,
		CreatedAt: now,
	}

	stored, created, err := uc.convRepo.Dispatch(ctx, &repository.MessageDispatch{
		Conversation: conv,
		Message:      msg,
		Notification: notification,
	})
	if err != nil {
		logger.Error("Dispatch failed for conversation %s: %v", convID, err)
		return nil, errors.FromStore(err, "Failed to send message")
	}

	metrics.IncMessageDispatched(string(msg.Type))
	publish(ctx, uc.publisher, events.MessageSent, map[string]interface{}{
		"conversation_id": convID,
		"message_id":      msg.ID,
		"sender_id":       msg.SenderID,
		"receiver_id":     msg.ReceiverID,
		"type":            msg.Type,
		"created":         created,
	})

	return &SendMessageResult{Conversation: stored, Message: msg, Created: created}, nil
}

func (uc *MessagingUseCase) ListConversations(ctx context.Context, userID string, limit int) ([]*ConversationView, error) {
	convs, err := uc.convRepo.ListByParticipant(ctx, userID, limit)
	if err != nil {
		return nil, errors.FromStore(err, "Failed to load conversations")
	}
	return uc.views(ctx, userID, convs), nil
}

// views resolves the counterpart profile of every conversation with one
// point read each.
func (uc *MessagingUseCase) views(ctx context.Context, userID string, convs []*entity.Conversation) []*ConversationView {
	others := make([]string, 0, len(convs))
	for _, c := range convs {
		others = append(others, c.OtherParticipant(userID))
	}
	summaries := uc.users.Summaries(ctx, others)

	out := make([]*ConversationView, 0, len(convs))
	for _, c := range convs {
		view := &ConversationView{Conversation: c, Unread: c.UnreadFor(userID)}
		if s, ok := summaries[c.OtherParticipant(userID)]; ok {
			summary := s
			view.OtherUser = &summary
		}
		out = append(out, view)
	}
	return out
}

// GetConversation returns the conversation when userID takes part in it.
func (uc *MessagingUseCase) GetConversation(ctx context.Context, userID, conversationID string) (*ConversationView, error) {
	conv, err := uc.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	return uc.views(ctx, userID, []*entity.Conversation{conv})[0], nil
}

func (uc *MessagingUseCase) participantConversation(ctx context.Context, userID, conversationID string) (*entity.Conversation, error) {
	conv, err := uc.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, errors.FromStore(err, "Conversation not found")
	}
	if !conv.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this conversation", nil)
	}
	return conv, nil
}

// ListMessages returns the latest messages of a conversation, oldest first.
func (uc *MessagingUseCase) ListMessages(ctx context.Context, userID, conversationID string, limit int) ([]*entity.Message, error) {
	if _, err := uc.participantConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	msgs, err := uc.convRepo.ListMessages(ctx, conversationID, limit)
	if err != nil {
		return nil, errors.FromStore(err, "Failed to load messages")
	}
	return msgs, nil
}

// MarkMessageRead flips one message addressed to userID. It reports false
// when the message was already read.
func (uc *MessagingUseCase) MarkMessageRead(ctx context.Context, userID, messageID string) (bool, error) {
	changed, err := uc.convRepo.MarkMessageRead(ctx, messageID, userID)
	if err != nil {
		return false, errors.FromStore(err, "Failed to mark message as read")
	}
	if changed {
		publish(ctx, uc.publisher, events.MessagesRead, map[string]interface{}{
			"message_id": messageID,
			"reader_id":  userID,
			"count":      1,
		})
	}
	return changed, nil
}

// MarkConversationRead flips every unread message addressed to userID in
// the conversation and returns how many changed.
func (uc *MessagingUseCase) MarkConversationRead(ctx context.Context, userID, conversationID string) (int, error) {
	n, err := uc.convRepo.MarkConversationRead(ctx, conversationID, userID)
	if err != nil {
		return 0, errors.FromStore(err, "Failed to mark conversation as read")
	}
	if n > 0 {
		publish(ctx, uc.publisher, events.MessagesRead, map[string]interface{}{
			"conversation_id": conversationID,
			"reader_id":       userID,
			"count":           n,
		})
	}
	return n, nil
}

// ReconcileUnread recomputes the conversation's unread counters from its
// unread messages.
func (uc *MessagingUseCase) ReconcileUnread(ctx context.Context, userID, conversationID string) (*entity.Conversation, error) {
	if _, err := uc.participantConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	conv, err := uc.convRepo.RecountUnread(ctx, conversationID)
	if err != nil {
		logger.Error("ReconcileUnread: conversation %s: %v", conversationID, err)
		return nil, errors.FromStore(err, "Failed to reconcile unread counters")
	}
	return conv, nil
}
