package domain

import "time"

// SwapStatus tracks the lifecycle of a swap request.
type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapDeclined  SwapStatus = "declined"
	SwapCompleted SwapStatus = "completed"
)

// SwapRequest is a proposal from RequesterID to take OwnerID's book,
// optionally offering one of the requester's own books in return.
type SwapRequest struct {
	SwapID        string     `json:"id" dynamodbav:"swap_id"`
	RequesterID   string     `json:"requester_id" dynamodbav:"requester_id"`
	OwnerID       string     `json:"owner_id" dynamodbav:"owner_id"`
	OwnedBookID   string     `json:"owned_book_id" dynamodbav:"owned_book_id"`
	OfferedBookID *string    `json:"offered_book_id,omitempty" dynamodbav:"offered_book_id"`
	Status        SwapStatus `json:"status" dynamodbav:"status"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateSwapRequest struct {
	OwnedBookID   string  `json:"owned_book_id" validate:"required"`
	OfferedBookID *string `json:"offered_book_id"`
}
