package model

import "time"

// NotificationType classifies emitted notification events.
type NotificationType string

const (
	NotificationReminder      NotificationType = "reminder"
	NotificationEscalation    NotificationType = "escalation"
	NotificationStatusChanged NotificationType = "status_changed"
	NotificationAssigned      NotificationType = "assigned"
	NotificationMention       NotificationType = "mention"
	NotificationLinkAccessed  NotificationType = "link_accessed"
	NotificationClientComment NotificationType = "client_comment"
)

// Notification is an event addressed to one user. Delivery is external; the
// engine keeps an inbox copy with a read flag.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      NotificationType  `json:"type"`
	ContentID string            `json:"contentId,omitempty"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	IsRead    bool              `json:"isRead"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
