package entity

import (
	"sort"
	"strings"
	"time"
)

// Conversation is a two-party thread. Its ID is derived from the sorted
// participant pair so both sides resolve to the same document.
type Conversation struct {
	ID             string         `json:"id" firestore:"id"`
	Participants   []string       `json:"participants" firestore:"participants"`
	LastMessage    string         `json:"last_message" firestore:"lastMessage"`
	LastSenderID   string         `json:"last_sender_id" firestore:"lastSenderId"`
	LastSenderName string         `json:"last_sender_name" firestore:"lastSenderName"`
	LastMessageAt  time.Time      `json:"last_message_at" firestore:"lastMessageAt"`
	UnreadCount    map[string]int `json:"unread_count" firestore:"unreadCount"`
	CreatedAt      time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt      time.Time      `json:"updated_at" firestore:"updatedAt"`
}

// ConversationID joins the two participant ids in sorted order.
func ConversationID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// ConversationParticipants returns the sorted participant pair.
func ConversationParticipants(a, b string) []string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the counterpart of userID, or "" when userID is
// not part of the conversation.
func (c *Conversation) OtherParticipant(userID string) string {
	if !c.HasParticipant(userID) {
		return ""
	}
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

func (c *Conversation) UnreadFor(userID string) int {
	if c.UnreadCount == nil {
		return 0
	}
	return c.UnreadCount[userID]
}
