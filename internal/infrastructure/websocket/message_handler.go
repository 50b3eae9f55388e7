package websocket

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"alima/internal/infrastructure/metrics"
	"alima/pkg/errors"
	"alima/pkg/logger"
)

// Frame types.
const (
	FrameSubscribe     = "subscribe"
	FrameUnsubscribe   = "unsubscribe"
	FrameRefreshUnread = "refresh_unread"
	FramePing          = "ping"

	FramePong         = "pong"
	FrameSubscribed   = "subscribed"
	FrameUnsubscribed = "unsubscribed"
	FrameSnapshot     = "snapshot"
	FrameAnnouncement = "announcement"
	FrameError        = "error"
)

// Topics a client can subscribe to.
const (
	TopicConversations = "conversations"
	TopicMessages      = "messages"
	TopicNotifications = "notifications"
	TopicUnread        = "unread"
)

type Frame struct {
	Type           string      `json:"type"`
	Topic          string      `json:"topic,omitempty"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Data           interface{} `json:"data,omitempty"`
	Error          string      `json:"error,omitempty"`
	Timestamp      string      `json:"timestamp,omitempty"`
}

type Stopper interface {
	Stop()
}

type UnreadWatcher interface {
	Stopper
	Refresh(ctx context.Context) error
}

// FeedService opens the live queries behind each topic. push receives the
// complete current result set every time it changes.
type FeedService interface {
	WatchConversations(ctx context.Context, userID string, push func(items interface{})) (Stopper, error)
	WatchMessages(ctx context.Context, userID, conversationID string, push func(items interface{})) (Stopper, error)
	WatchNotifications(ctx context.Context, userID string, push func(items interface{})) (Stopper, error)
	WatchUnread(ctx context.Context, userID string, push func(counts interface{})) (UnreadWatcher, error)
}

func subscriptionKey(topic, conversationID string) string {
	if topic == TopicMessages {
		return topic + ":" + conversationID
	}
	return topic
}

// HandleClientMessage processes one incoming frame.
func (m *Manager) HandleClientMessage(client *Client, raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		logger.Warn("WebSocket: invalid frame from %s: %v", client.UserID, err)
		client.Send(Frame{Type: FrameError, Error: "Invalid message format"})
		return
	}

	metrics.IncWSEvent(frame.Type)

	switch frame.Type {
	case FramePing:
		client.Send(Frame{Type: FramePong})

	case FrameSubscribe:
		m.handleSubscribe(client, frame)

	case FrameUnsubscribe:
		key := subscriptionKey(frame.Topic, frame.ConversationID)
		if s := client.removeSubscription(key); s != nil {
			s.Stop()
		}
		client.Send(Frame{Type: FrameUnsubscribed, Topic: frame.Topic, ConversationID: frame.ConversationID})

	case FrameRefreshUnread:
		watcher := client.unreadWatcher()
		if watcher == nil {
			client.Send(Frame{Type: FrameError, Topic: TopicUnread, Error: "Not subscribed to unread counts"})
			return
		}
		if err := watcher.Refresh(client.ctx); err != nil {
			logger.Error("WebSocket: unread refresh failed for %s: %v", client.UserID, err)
			client.Send(Frame{Type: FrameError, Topic: TopicUnread, Error: "Failed to refresh unread counts"})
		}

	default:
		logger.Warn("WebSocket: unknown frame type '%s' from %s", frame.Type, client.UserID)
		client.Send(Frame{Type: FrameError, Error: "Unknown message type"})
	}
}

func (m *Manager) handleSubscribe(client *Client, frame Frame) {
	topic, convID := frame.Topic, frame.ConversationID
	push := func(data interface{}) {
		client.Send(Frame{Type: FrameSnapshot, Topic: topic, ConversationID: convID, Data: data})
	}

	// Replace an existing subscription for the same key before opening the
	// new one so no two generations push to the client.
	key := subscriptionKey(topic, convID)
	if old := client.removeSubscription(key); old != nil {
		old.Stop()
	}

	var (
		sub Stopper
		err error
	)
	switch topic {
	case TopicConversations:
		sub, err = m.feeds.WatchConversations(client.ctx, client.UserID, push)
	case TopicMessages:
		if convID == "" {
			client.Send(Frame{Type: FrameError, Topic: topic, Error: "conversation_id is required"})
			return
		}
		sub, err = m.feeds.WatchMessages(client.ctx, client.UserID, convID, push)
	case TopicNotifications:
		sub, err = m.feeds.WatchNotifications(client.ctx, client.UserID, push)
	case TopicUnread:
		sub, err = m.feeds.WatchUnread(client.ctx, client.UserID, push)
	default:
		client.Send(Frame{Type: FrameError, Topic: topic, Error: "Unknown topic"})
		return
	}

	if err != nil {
		logger.Error("WebSocket: subscribe %s failed for %s: %v", key, client.UserID, err)
		client.Send(Frame{Type: FrameError, Topic: topic, ConversationID: convID, Error: publicMessage(err)})
		return
	}

	if old := client.setSubscription(key, sub); old != nil {
		old.Stop()
	}
	client.Send(Frame{Type: FrameSubscribed, Topic: topic, ConversationID: convID})
}

func publicMessage(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return "Subscription failed"
}
