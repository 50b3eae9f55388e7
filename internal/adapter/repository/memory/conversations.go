package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

type conversationRepository struct {
	store *Store
}

func NewConversationRepository(store *Store) repository.ConversationRepository {
	return &conversationRepository{store: store}
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	var conv *entity.Conversation
	r.store.read(func() {
		if c, ok := r.store.conversations[id]; ok {
			conv = cloneConversation(c)
		}
	})
	if conv == nil {
		return nil, errors.NotFound("Conversation", nil)
	}
	return conv, nil
}

func (r *conversationRepository) ListByParticipant(ctx context.Context, userID string, limit int) ([]*entity.Conversation, error) {
	var out []*entity.Conversation
	r.store.read(func() {
		out = r.byParticipant(userID, limit)
	})
	return out, nil
}

func (r *conversationRepository) WatchByParticipant(ctx context.Context, userID string, limit int) (repository.SnapshotStream[*entity.Conversation], error) {
	return watch(ctx, r.store, repository.CollectionConversations, func() []*entity.Conversation {
		return r.byParticipant(userID, limit)
	}), nil
}

// byParticipant mirrors participants array-contains uid ordered by
// updatedAt desc. Caller holds the read lock.
func (r *conversationRepository) byParticipant(userID string, limit int) []*entity.Conversation {
	out := []*entity.Conversation{}
	for _, c := range r.store.conversations {
		if c.HasParticipant(userID) {
			out = append(out, cloneConversation(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return limitSlice(out, limit)
}

func (r *conversationRepository) Dispatch(ctx context.Context, d *repository.MessageDispatch) (*entity.Conversation, bool, error) {
	var (
		stored  *entity.Conversation
		created bool
	)

	err := r.store.update(func() error {
		msg := d.Message
		if msg.ID == "" {
			msg.ID = uuid.New().String()
		}
		if d.Notification != nil && d.Notification.ID == "" {
			d.Notification.ID = uuid.New().String()
		}

		in := d.Conversation
		conv, ok := r.store.conversations[in.ID]
		if !ok {
			conv = cloneConversation(in)
			conv.UnreadCount = map[string]int{msg.ReceiverID: 1}
			r.store.conversations[in.ID] = conv
			created = true
		} else {
			conv.LastMessage = in.LastMessage
			conv.LastSenderID = in.LastSenderID
			conv.LastSenderName = in.LastSenderName
			conv.LastMessageAt = in.LastMessageAt
			conv.UpdatedAt = in.UpdatedAt
			if conv.UnreadCount == nil {
				conv.UnreadCount = map[string]int{}
			}
			conv.UnreadCount[msg.ReceiverID]++
		}

		r.store.messages[msg.ID] = cloneMessage(msg)
		if d.Notification != nil {
			r.store.notifications[d.Notification.ID] = cloneNotification(d.Notification)
		}
		stored = cloneConversation(conv)
		return nil
	}, repository.CollectionConversations, repository.CollectionMessages, repository.CollectionNotifications)

	return stored, created, err
}

func (r *conversationRepository) GetMessage(ctx context.Context, id string) (*entity.Message, error) {
	var msg *entity.Message
	r.store.read(func() {
		if m, ok := r.store.messages[id]; ok {
			msg = cloneMessage(m)
		}
	})
	if msg == nil {
		return nil, errors.NotFound("Message", nil)
	}
	return msg, nil
}

func (r *conversationRepository) ListMessages(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error) {
	var out []*entity.Message
	r.store.read(func() {
		out = r.latestMessages(conversationID, limit)
	})
	return out, nil
}

func (r *conversationRepository) WatchMessages(ctx context.Context, conversationID string, limit int) (repository.SnapshotStream[*entity.Message], error) {
	return watch(ctx, r.store, repository.CollectionMessages, func() []*entity.Message {
		return r.latestMessages(conversationID, limit)
	}), nil
}

// latestMessages keeps the newest limit messages and returns them oldest
// first.
func (r *conversationRepository) latestMessages(conversationID string, limit int) []*entity.Message {
	out := []*entity.Message{}
	for _, m := range r.store.messages {
		if m.ConversationID == conversationID {
			out = append(out, cloneMessage(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	out = limitSlice(out, limit)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (r *conversationRepository) WatchUnreadMessages(ctx context.Context, receiverID string) (repository.SnapshotStream[*entity.Message], error) {
	return watch(ctx, r.store, repository.CollectionMessages, func() []*entity.Message {
		return r.unreadFor(receiverID)
	}), nil
}

func (r *conversationRepository) CountUnreadMessages(ctx context.Context, receiverID string) (int, error) {
	var n int
	r.store.read(func() {
		n = len(r.unreadFor(receiverID))
	})
	return n, nil
}

func (r *conversationRepository) unreadFor(receiverID string) []*entity.Message {
	out := []*entity.Message{}
	for _, m := range r.store.messages {
		if m.ReceiverID == receiverID && !m.Read {
			out = append(out, cloneMessage(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *conversationRepository) MarkMessageRead(ctx context.Context, messageID, readerID string) (bool, error) {
	changed := false
	err := r.store.update(func() error {
		msg, ok := r.store.messages[messageID]
		if !ok {
			return errors.NotFound("Message", nil)
		}
		if msg.ReceiverID != readerID {
			return errors.Forbidden("Only the receiver can mark a message as read", nil)
		}
		if msg.Read {
			return nil
		}

		now := r.store.now()
		msg.Read = true
		msg.ReadAt = &now
		changed = true

		if conv, ok := r.store.conversations[msg.ConversationID]; ok && conv.UnreadCount[readerID] > 0 {
			conv.UnreadCount[readerID]--
		}
		return nil
	}, repository.CollectionMessages, repository.CollectionConversations)

	return changed, err
}

func (r *conversationRepository) MarkConversationRead(ctx context.Context, conversationID, readerID string) (int, error) {
	count := 0
	err := r.store.update(func() error {
		conv, ok := r.store.conversations[conversationID]
		if !ok {
			return errors.NotFound("Conversation", nil)
		}
		if !conv.HasParticipant(readerID) {
			return errors.Forbidden("You are not a participant of this conversation", nil)
		}

		now := r.store.now()
		for _, m := range r.store.messages {
			if m.ConversationID == conversationID && m.ReceiverID == readerID && !m.Read {
				readAt := now
				m.Read = true
				m.ReadAt = &readAt
				count++
			}
		}
		if conv.UnreadCount == nil {
			conv.UnreadCount = map[string]int{}
		}
		conv.UnreadCount[readerID] = 0
		return nil
	}, repository.CollectionMessages, repository.CollectionConversations)

	return count, err
}

func (r *conversationRepository) RecountUnread(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	var stored *entity.Conversation
	err := r.store.update(func() error {
		conv, ok := r.store.conversations[conversationID]
		if !ok {
			return errors.NotFound("Conversation", nil)
		}

		counts := make(map[string]int, len(conv.Participants))
		for _, p := range conv.Participants {
			counts[p] = 0
		}
		for _, m := range r.store.messages {
			if m.ConversationID == conversationID && !m.Read {
				counts[m.ReceiverID]++
			}
		}
		conv.UnreadCount = counts
		stored = cloneConversation(conv)
		return nil
	}, repository.CollectionConversations)

	return stored, err
}
