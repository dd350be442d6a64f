package model

import "context"

// NotificationKind selects how a notification is presented.
type NotificationKind string

const (
	NotificationLoading NotificationKind = "loading"
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationInfo    NotificationKind = "info"
)

// Notification is a user-facing message. ID correlates a pending (loading)
// notification with the one that replaces it.
type Notification struct {
	ID          string
	Kind        NotificationKind
	Title       string
	Description string
}

// Notifier presents notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
