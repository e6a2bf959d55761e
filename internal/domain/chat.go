package domain

import "time"

// Chat is a two-participant conversation, optionally anchored to the owned
// book the exchange is about.
type Chat struct {
	ChatID       string   `json:"id" dynamodbav:"chat_id"`
	Participants []string `json:"participants" dynamodbav:"participants"`
	// UserA/UserB hold the participant pair in sorted order and PairKey their
	// "a#b" concatenation, so one chat per pair can be found via GSI (DynamoDB
	// cannot index the Participants list itself).
	UserA     string    `json:"-" dynamodbav:"user_a"`
	UserB     string    `json:"-" dynamodbav:"user_b"`
	PairKey   string    `json:"-" dynamodbav:"pair_key"`
	BookID    *string   `json:"book_id,omitempty" dynamodbav:"book_id"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Other returns the participant that is not userID, or "" if userID is not a
// participant.
func (c *Chat) Other(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// HasParticipant reports whether userID takes part in the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Message is a single chat message, ordered within its chat by CreatedAt
// ascending. AttachmentFileID references a File record when the message
// carries an upload.
type Message struct {
	MessageID        string    `json:"id" dynamodbav:"message_id"`
	ChatID           string    `json:"chat_id" dynamodbav:"chat_id"`
	SenderID         string    `json:"sender_id" dynamodbav:"sender_id"`
	Body             string    `json:"body" dynamodbav:"body"`
	AttachmentFileID *string   `json:"attachment_file_id,omitempty" dynamodbav:"attachment_file_id"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateChatRequest struct {
	OtherUserID string  `json:"other_user_id" validate:"required"`
	BookID      *string `json:"book_id"`
}

type SendMessageRequest struct {
	Body             string  `json:"body"`
	AttachmentFileID *string `json:"attachment_file_id"`
}
