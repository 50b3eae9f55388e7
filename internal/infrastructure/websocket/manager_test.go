package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alima/pkg/errors"
)

type fakeSub struct {
	mu       sync.Mutex
	stopped  bool
	refreshs int
}

func (s *fakeSub) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *fakeSub) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshs++
	return nil
}

func (s *fakeSub) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

type fakeFeeds struct {
	mu   sync.Mutex
	subs []*fakeSub
	err  error
}

func (f *fakeFeeds) open(push func(interface{}), initial interface{}) (*fakeSub, error) {
	if f.err != nil {
		return nil, f.err
	}
	push(initial)
	s := &fakeSub{}
	f.mu.Lock()
	f.subs = append(f.subs, s)
	f.mu.Unlock()
	return s, nil
}

func (f *fakeFeeds) WatchConversations(ctx context.Context, userID string, push func(interface{})) (Stopper, error) {
	return f.open(push, []string{"c1"})
}

func (f *fakeFeeds) WatchMessages(ctx context.Context, userID, conversationID string, push func(interface{})) (Stopper, error) {
	return f.open(push, []string{"m1"})
}

func (f *fakeFeeds) WatchNotifications(ctx context.Context, userID string, push func(interface{})) (Stopper, error) {
	return f.open(push, []string{"n1"})
}

func (f *fakeFeeds) WatchUnread(ctx context.Context, userID string, push func(interface{})) (UnreadWatcher, error) {
	return f.open(push, map[string]int{"messages": 1, "notifications": 2})
}

func readFrame(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case raw := <-c.send:
		var f Frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame received")
	}
	return Frame{}
}

func frame(t *testing.T, f Frame) []byte {
	t.Helper()
	raw, err := json.Marshal(f)
	require.NoError(t, err)
	return raw
}

func TestPingPong(t *testing.T) {
	m := NewManager(&fakeFeeds{})
	c := NewClient("u1", nil)

	m.HandleClientMessage(c, frame(t, Frame{Type: FramePing}))
	assert.Equal(t, FramePong, readFrame(t, c).Type)

	m.HandleClientMessage(c, []byte("{not json"))
	assert.Equal(t, FrameError, readFrame(t, c).Type)
}

func TestSubscribeReplacesAndUnsubscribeStops(t *testing.T) {
	feeds := &fakeFeeds{}
	m := NewManager(feeds)
	c := NewClient("u1", nil)
	m.Register(c)

	m.HandleClientMessage(c, frame(t, Frame{Type: FrameSubscribe, Topic: TopicNotifications}))
	snap := readFrame(t, c)
	assert.Equal(t, FrameSnapshot, snap.Type)
	assert.Equal(t, TopicNotifications, snap.Topic)
	assert.Equal(t, FrameSubscribed, readFrame(t, c).Type)

	m.HandleClientMessage(c, frame(t, Frame{Type: FrameSubscribe, Topic: TopicNotifications}))
	readFrame(t, c)
	readFrame(t, c)
	require.Len(t, feeds.subs, 2)
	assert.True(t, feeds.subs[0].isStopped())
	assert.False(t, feeds.subs[1].isStopped())

	m.HandleClientMessage(c, frame(t, Frame{Type: FrameUnsubscribe, Topic: TopicNotifications}))
	assert.Equal(t, FrameUnsubscribed, readFrame(t, c).Type)
	assert.True(t, feeds.subs[1].isStopped())
	assert.Empty(t, c.Subscriptions())
}

func TestMessagesTopicRequiresConversation(t *testing.T) {
	m := NewManager(&fakeFeeds{})
	c := NewClient("u1", nil)

	m.HandleClientMessage(c, frame(t, Frame{Type: FrameSubscribe, Topic: TopicMessages}))
	f := readFrame(t, c)
	assert.Equal(t, FrameError, f.Type)
	assert.Equal(t, "conversation_id is required", f.Error)
}

func TestSubscribeErrorIsReported(t *testing.T) {
	m := NewManager(&fakeFeeds{err: errors.Forbidden("You are not a participant of this conversation", nil)})
	c := NewClient("u1", nil)

	m.HandleClientMessage(c, frame(t, Frame{Type: FrameSubscribe, Topic: TopicMessages, ConversationID: "a_b"}))
	f := readFrame(t, c)
	assert.Equal(t, FrameError, f.Type)
	assert.Equal(t, "You are not a participant of this conversation", f.Error)
}

func TestRefreshUnread(t *testing.T) {
	feeds := &fakeFeeds{}
	m := NewManager(feeds)
	c := NewClient("u1", nil)

	m.HandleClientMessage(c, frame(t, Frame{Type: FrameRefreshUnread}))
	assert.Equal(t, FrameError, readFrame(t, c).Type)

	m.HandleClientMessage(c, frame(t, Frame{Type: FrameSubscribe, Topic: TopicUnread}))
	readFrame(t, c)
	readFrame(t, c)

	m.HandleClientMessage(c, frame(t, Frame{Type: FrameRefreshUnread}))
	assert.Equal(t, 1, feeds.subs[0].refreshs)
}

func TestUnregisterTearsDownEverySubscription(t *testing.T) {
	feeds := &fakeFeeds{}
	m := NewManager(feeds)
	c := NewClient("u1", nil)
	m.Register(c)
	assert.Equal(t, 1, m.ConnectedUsers())

	for _, topic := range []string{TopicConversations, TopicNotifications, TopicUnread} {
		m.HandleClientMessage(c, frame(t, Frame{Type: FrameSubscribe, Topic: topic}))
	}
	m.HandleClientMessage(c, frame(t, Frame{Type: FrameSubscribe, Topic: TopicMessages, ConversationID: "a_b"}))
	assert.Len(t, c.Subscriptions(), 4)

	m.Unregister(c)
	assert.Equal(t, 0, m.ConnectedUsers())
	for _, s := range feeds.subs {
		assert.True(t, s.isStopped())
	}
	assert.False(t, c.Send(Frame{Type: FramePong}))

	// A second unregister is harmless.
	m.Unregister(c)
}

func TestBroadcastAndSendToUser(t *testing.T) {
	m := NewManager(&fakeFeeds{})
	a := NewClient("u1", nil)
	b := NewClient("u2", nil)
	m.Register(a)
	m.Register(b)

	m.SendToUser("u2", Frame{Type: FrameAnnouncement, Data: "hi"})
	assert.Equal(t, FrameAnnouncement, readFrame(t, b).Type)
	assert.Len(t, a.send, 0)

	m.Broadcast(Frame{Type: FrameAnnouncement})
	assert.Equal(t, FrameAnnouncement, readFrame(t, a).Type)
	assert.Equal(t, FrameAnnouncement, readFrame(t, b).Type)
}
