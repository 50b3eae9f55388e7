package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
	"alima/pkg/logger"
)

type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

func (r *firestoreConversationRepository) conversations() *firestore.CollectionRef {
	return r.client.Collection(repository.CollectionConversations)
}

func (r *firestoreConversationRepository) messages() *firestore.CollectionRef {
	return r.client.Collection(repository.CollectionMessages)
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	return getDoc[entity.Conversation](ctx, r.conversations().Doc(id), "Conversation")
}

func (r *firestoreConversationRepository) participantQuery(userID string, limit int) firestore.Query {
	q := r.conversations().
		Where("participants", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func (r *firestoreConversationRepository) ListByParticipant(ctx context.Context, userID string, limit int) ([]*entity.Conversation, error) {
	return getAll[entity.Conversation](ctx, r.participantQuery(userID, limit), "Failed to list conversations")
}

func (r *firestoreConversationRepository) WatchByParticipant(ctx context.Context, userID string, limit int) (repository.SnapshotStream[*entity.Conversation], error) {
	return watchQuery[entity.Conversation](ctx, r.participantQuery(userID, limit), nil), nil
}

func (r *firestoreConversationRepository) Dispatch(ctx context.Context, d *repository.MessageDispatch) (*entity.Conversation, bool, error) {
	msg := d.Message
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if d.Notification != nil && d.Notification.ID == "" {
		d.Notification.ID = uuid.New().String()
	}

	convRef := r.conversations().Doc(d.Conversation.ID)
	msgRef := r.messages().Doc(msg.ID)

	var (
		stored  entity.Conversation
		created bool
	)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false
		doc, err := tx.Get(convRef)
		switch {
		case status.Code(err) == codes.NotFound:
			stored = *d.Conversation
			stored.UnreadCount = map[string]int{msg.ReceiverID: 1}
			if err := tx.Create(convRef, &stored); err != nil {
				return err
			}
			created = true

		case err != nil:
			return err

		default:
			stored = entity.Conversation{}
			if err := doc.DataTo(&stored); err != nil {
				return err
			}
			in := d.Conversation
			err := tx.Update(convRef, []firestore.Update{
				{Path: "lastMessage", Value: in.LastMessage},
				{Path: "lastSenderId", Value: in.LastSenderID},
				{Path: "lastSenderName", Value: in.LastSenderName},
				{Path: "lastMessageAt", Value: in.LastMessageAt},
				{Path: "updatedAt", Value: in.UpdatedAt},
				{FieldPath: firestore.FieldPath{"unreadCount", msg.ReceiverID}, Value: firestore.Increment(1)},
			})
			if err != nil {
				return err
			}

			stored.LastMessage = in.LastMessage
			stored.LastSenderID = in.LastSenderID
			stored.LastSenderName = in.LastSenderName
			stored.LastMessageAt = in.LastMessageAt
			stored.UpdatedAt = in.UpdatedAt
			if stored.UnreadCount == nil {
				stored.UnreadCount = map[string]int{}
			}
			stored.UnreadCount[msg.ReceiverID]++
		}

		if err := tx.Create(msgRef, msg); err != nil {
			return err
		}
		if d.Notification != nil {
			notifRef := r.client.Collection(repository.CollectionNotifications).Doc(d.Notification.ID)
			if err := tx.Create(notifRef, d.Notification); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Dispatch to conversation %s failed: %v", d.Conversation.ID, err)
		return nil, false, errors.FromStore(err, "Failed to send message")
	}

	return &stored, created, nil
}

func (r *firestoreConversationRepository) GetMessage(ctx context.Context, id string) (*entity.Message, error) {
	return getDoc[entity.Message](ctx, r.messages().Doc(id), "Message")
}

// latestQuery selects the newest limit messages; results are reversed to
// oldest first before they are returned.
func (r *firestoreConversationRepository) latestQuery(conversationID string, limit int) firestore.Query {
	q := r.messages().
		Where("conversationId", "==", conversationID).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func (r *firestoreConversationRepository) ListMessages(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error) {
	msgs, err := getAll[entity.Message](ctx, r.latestQuery(conversationID, limit), "Failed to list messages")
	if err != nil {
		return nil, err
	}
	return reverse(msgs), nil
}

func (r *firestoreConversationRepository) WatchMessages(ctx context.Context, conversationID string, limit int) (repository.SnapshotStream[*entity.Message], error) {
	return watchQuery(ctx, r.latestQuery(conversationID, limit), reverse[entity.Message]), nil
}

func (r *firestoreConversationRepository) unreadQuery(receiverID string) firestore.Query {
	return r.messages().
		Where("receiverId", "==", receiverID).
		Where("read", "==", false)
}

func (r *firestoreConversationRepository) WatchUnreadMessages(ctx context.Context, receiverID string) (repository.SnapshotStream[*entity.Message], error) {
	return watchQuery[entity.Message](ctx, r.unreadQuery(receiverID), nil), nil
}

func (r *firestoreConversationRepository) CountUnreadMessages(ctx context.Context, receiverID string) (int, error) {
	n, err := count(ctx, r.unreadQuery(receiverID))
	return int(n), err
}

func (r *firestoreConversationRepository) MarkMessageRead(ctx context.Context, messageID, readerID string) (bool, error) {
	msgRef := r.messages().Doc(messageID)
	changed := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		changed = false
		doc, err := tx.Get(msgRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Message", err)
			}
			return err
		}

		var msg entity.Message
		if err := doc.DataTo(&msg); err != nil {
			return err
		}
		if msg.ReceiverID != readerID {
			return errors.Forbidden("Only the receiver can mark a message as read", nil)
		}
		if msg.Read {
			return nil
		}

		convRef := r.conversations().Doc(msg.ConversationID)
		convDoc, err := tx.Get(convRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if err := tx.Update(msgRef, []firestore.Update{
			{Path: "read", Value: true},
			{Path: "readAt", Value: time.Now()},
		}); err != nil {
			return err
		}
		changed = true

		if convDoc == nil || !convDoc.Exists() {
			return nil
		}
		var conv entity.Conversation
		if err := convDoc.DataTo(&conv); err != nil {
			return err
		}
		if conv.UnreadFor(readerID) <= 0 {
			return nil
		}
		return tx.Update(convRef, []firestore.Update{
			{FieldPath: firestore.FieldPath{"unreadCount", readerID}, Value: firestore.Increment(-1)},
		})
	})
	if err != nil {
		return false, errors.FromStore(err, "Failed to mark message as read")
	}
	return changed, nil
}

// MarkConversationRead clears the reader's unread messages in chunks that fit
// one transaction. The counter is reset by the pass that finds the last of
// them.
func (r *firestoreConversationRepository) MarkConversationRead(ctx context.Context, conversationID, readerID string) (int, error) {
	convRef := r.conversations().Doc(conversationID)
	query := r.messages().
		Where("conversationId", "==", conversationID).
		Where("receiverId", "==", readerID).
		Where("read", "==", false)

	// One write per pass goes to the conversation document.
	updated, err := inBatches(ctx, maxTransactionWrites-1, func(ctx context.Context, limit int) (int, error) {
		n := 0
		err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			n = 0
			doc, err := tx.Get(convRef)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return errors.NotFound("Conversation", err)
				}
				return err
			}
			var conv entity.Conversation
			if err := doc.DataTo(&conv); err != nil {
				return err
			}
			if !conv.HasParticipant(readerID) {
				return errors.Forbidden("You are not a participant of this conversation", nil)
			}

			unread, err := tx.Documents(query.Limit(limit)).GetAll()
			if err != nil {
				return err
			}

			now := time.Now()
			for _, m := range unread {
				if err := tx.Update(m.Ref, []firestore.Update{
					{Path: "read", Value: true},
					{Path: "readAt", Value: now},
				}); err != nil {
					return err
				}
			}
			n = len(unread)
			if n == limit {
				return nil
			}

			return tx.Update(convRef, []firestore.Update{
				{FieldPath: firestore.FieldPath{"unreadCount", readerID}, Value: 0},
			})
		})
		return n, err
	})
	if err != nil {
		return updated, errors.FromStore(err, "Failed to mark conversation as read")
	}
	return updated, nil
}

func (r *firestoreConversationRepository) RecountUnread(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	convRef := r.conversations().Doc(conversationID)
	query := r.messages().
		Where("conversationId", "==", conversationID).
		Where("read", "==", false)

	var conv entity.Conversation
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(convRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Conversation", err)
			}
			return err
		}
		conv = entity.Conversation{}
		if err := doc.DataTo(&conv); err != nil {
			return err
		}

		unread, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}

		counts := make(map[string]int, len(conv.Participants))
		for _, p := range conv.Participants {
			counts[p] = 0
		}
		for _, m := range unread {
			receiver, err := m.DataAt("receiverId")
			if err != nil {
				return err
			}
			if id, ok := receiver.(string); ok {
				counts[id]++
			}
		}
		conv.UnreadCount = counts

		return tx.Update(convRef, []firestore.Update{{Path: "unreadCount", Value: counts}})
	})
	if err != nil {
		return nil, errors.FromStore(err, "Failed to recount unread messages")
	}
	return &conv, nil
}
