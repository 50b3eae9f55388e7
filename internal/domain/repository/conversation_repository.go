package repository

import (
	"context"

	"alima/internal/domain/entity"
)

// MessageDispatch is the set of documents written when one user sends a
// message to another. Dispatch applies all of it atomically: the
// conversation is created with an unread counter of 1 for the receiver, or
// its preview fields are overwritten and the receiver's counter incremented.
type MessageDispatch struct {
	Conversation *entity.Conversation
	Message      *entity.Message
	Notification *entity.Notification
}

type ConversationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	ListByParticipant(ctx context.Context, userID string, limit int) ([]*entity.Conversation, error)
	WatchByParticipant(ctx context.Context, userID string, limit int) (SnapshotStream[*entity.Conversation], error)

	// Dispatch returns the conversation as stored after the write and whether
	// it was created by this call.
	Dispatch(ctx context.Context, d *MessageDispatch) (*entity.Conversation, bool, error)

	GetMessage(ctx context.Context, id string) (*entity.Message, error)
	ListMessages(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error)
	WatchMessages(ctx context.Context, conversationID string, limit int) (SnapshotStream[*entity.Message], error)
	WatchUnreadMessages(ctx context.Context, receiverID string) (SnapshotStream[*entity.Message], error)
	CountUnreadMessages(ctx context.Context, receiverID string) (int, error)

	// MarkMessageRead flips one message to read and decrements the receiver's
	// counter in the same transaction. It reports false when the message was
	// already read.
	MarkMessageRead(ctx context.Context, messageID, readerID string) (bool, error)
	// MarkConversationRead flips every unread message addressed to readerID in
	// the conversation and zeroes its counter, atomically.
	MarkConversationRead(ctx context.Context, conversationID, readerID string) (int, error)
	// RecountUnread recomputes every participant's counter from the unread
	// messages and stores the result.
	RecountUnread(ctx context.Context, conversationID string) (*entity.Conversation, error)
}
