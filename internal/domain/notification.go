package domain

import "time"

// NotificationKind identifies the event that triggered a notification. Each
// kind maps to its own mail-API endpoint and to one boolean on the user's
// NotificationPreference record.
type NotificationKind string

const (
	KindNewMessage       NotificationKind = "new_message"
	KindNewMatch         NotificationKind = "new_match"
	KindBookAvailability NotificationKind = "book_availability"
)

// ValidKind reports whether k is a known notification kind.
func ValidKind(k NotificationKind) bool {
	switch k {
	case KindNewMessage, KindNewMatch, KindBookAvailability:
		return true
	}
	return false
}

// Notification is the in-app notification record written on every dispatch,
// independent of whether the email delivery succeeded.
type Notification struct {
	NotificationID string           `json:"id" dynamodbav:"notification_id"`
	UserID         string           `json:"user_id" dynamodbav:"user_id"`
	Kind           NotificationKind `json:"kind" dynamodbav:"kind"`
	Message        string           `json:"message" dynamodbav:"message"`
	Readed         int              `json:"readed" dynamodbav:"readed"` // legacy field name preserved
	CreatedAt      time.Time        `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time        `json:"updated" dynamodbav:"updated_at"`
}

// NotificationPreference is the per-user opt-in record. A missing record
// means all kinds enabled.
type NotificationPreference struct {
	UserID           string    `json:"user_id" dynamodbav:"user_id"`
	NewMatches       bool      `json:"new_matches" dynamodbav:"new_matches"`
	BookAvailability bool      `json:"book_availability" dynamodbav:"book_availability"`
	NewMessages      bool      `json:"new_messages" dynamodbav:"new_messages"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}

// DefaultPreference returns the all-enabled preference used when no record
// exists for the user.
func DefaultPreference(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserID:           userID,
		NewMatches:       true,
		BookAvailability: true,
		NewMessages:      true,
	}
}

// Allows reports whether the preference permits notifications of the given kind.
func (p *NotificationPreference) Allows(kind NotificationKind) bool {
	switch kind {
	case KindNewMessage:
		return p.NewMessages
	case KindNewMatch:
		return p.NewMatches
	case KindBookAvailability:
		return p.BookAvailability
	}
	return false
}

type UpdatePreferenceRequest struct {
	NewMatches       *bool `json:"new_matches"`
	BookAvailability *bool `json:"book_availability"`
	NewMessages      *bool `json:"new_messages"`
}
