package domain

// NotificationKind enumerates the emails the lifecycle engine can trigger.
type NotificationKind string

const (
	// NotificationConfirm carries the confirmation link for a fresh signup.
	NotificationConfirm NotificationKind = "confirm"
	// NotificationExistingAccount is sent when a signup collides with a
	// confirmed account; it points at the password reset flow instead of
	// revealing the collision to the requester.
	NotificationExistingAccount NotificationKind = "existing_account"
	// NotificationReset carries the password reset link.
	NotificationReset NotificationKind = "reset"
)

// Notification is the payload handed to a Notifier.
type Notification struct {
	Kind           NotificationKind
	RecipientName  string
	RecipientEmail string
	URL            string
}
