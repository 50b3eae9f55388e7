package memory

import (
	"time"

	"alima/internal/domain/entity"
)

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func cloneService(s *entity.Service) *entity.Service {
	c := *s
	c.Images = cloneStrings(s.Images)
	return &c
}

func cloneConversation(conv *entity.Conversation) *entity.Conversation {
	c := *conv
	c.Participants = cloneStrings(conv.Participants)
	c.UnreadCount = make(map[string]int, len(conv.UnreadCount))
	for k, v := range conv.UnreadCount {
		c.UnreadCount[k] = v
	}
	return &c
}

func cloneMessage(m *entity.Message) *entity.Message {
	c := *m
	c.ReadAt = cloneTime(m.ReadAt)
	return &c
}

func cloneNotification(n *entity.Notification) *entity.Notification {
	c := *n
	c.ReadAt = cloneTime(n.ReadAt)
	if n.Payload != nil {
		c.Payload = make(map[string]interface{}, len(n.Payload))
		for k, v := range n.Payload {
			c.Payload[k] = v
		}
	}
	return &c
}

func cloneTransaction(t *entity.Transaction) *entity.Transaction {
	c := *t
	c.ScheduledAt = cloneTime(t.ScheduledAt)
	c.CompletedAt = cloneTime(t.CompletedAt)
	return &c
}

func clonePaymentRequest(p *entity.PaymentRequest) *entity.PaymentRequest {
	c := *p
	c.DecidedAt = cloneTime(p.DecidedAt)
	return &c
}

func cloneReview(r *entity.Review) *entity.Review {
	c := *r
	return &c
}

func cloneAnnouncement(p *entity.PlatformNotification) *entity.PlatformNotification {
	c := *p
	c.ExpiresAt = cloneTime(p.ExpiresAt)
	return &c
}

func cloneApplication(a *entity.ServiceApplication) *entity.ServiceApplication {
	c := *a
	c.DocumentURLs = cloneStrings(a.DocumentURLs)
	c.ReviewedAt = cloneTime(a.ReviewedAt)
	return &c
}
