package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookswap-api/internal/application/notification"
	"github.com/bookswap-api/internal/domain"
	"github.com/bookswap-api/internal/infrastructure/dynamo"
	"github.com/bookswap-api/internal/pkg/id"
)

type Service interface {
	GetOrCreate(ctx context.Context, userID string, req domain.CreateChatRequest) (*domain.Chat, error)
	Get(ctx context.Context, chatID, userID string) (*domain.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Chat, error)
	SendMessage(ctx context.Context, chatID, senderID string, req domain.SendMessageRequest) (*domain.Message, error)
	ListMessages(ctx context.Context, chatID, userID string) ([]domain.Message, error)
}

type chatStore interface {
	Put(ctx context.Context, c *domain.Chat) error
	Get(ctx context.Context, chatID string) (*domain.Chat, error)
	GetByPair(ctx context.Context, userA, userB string) (*domain.Chat, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Chat, error)
	Touch(ctx context.Context, chatID string) error
}

type messageStore interface {
	Put(ctx context.Context, m *domain.Message) error
	ListByChat(ctx context.Context, chatID string) ([]domain.Message, error)
}

type participantStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	chatRepo    chatStore
	messageRepo messageStore
	userRepo    participantStore
	notifier    notification.Notifier
}

func NewService(chatRepo chatStore, messageRepo messageStore, userRepo participantStore, notifier notification.Notifier) Service {
	return &service{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// GetOrCreate returns the existing chat between the two users or creates one.
// There is at most one chat per participant pair; the book reference is set
// only at creation.
func (s *service) GetOrCreate(ctx context.Context, userID string, req domain.CreateChatRequest) (*domain.Chat, error) {
	if req.OtherUserID == userID {
		return nil, fmt.Errorf("cannot open a chat with yourself: %w", domain.ErrBadRequest)
	}
	if _, err := s.userRepo.Get(ctx, req.OtherUserID); err != nil {
		return nil, err
	}

	c, err := s.chatRepo.GetByPair(ctx, userID, req.OtherUserID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	userA, userB, pairKey := dynamo.PairKey(userID, req.OtherUserID)
	now := time.Now().UTC()
	c = &domain.Chat{
		ChatID:       id.New(),
		Participants: []string{userID, req.OtherUserID},
		UserA:        userA,
		UserB:        userB,
		PairKey:      pairKey,
		BookID:       req.BookID,
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.chatRepo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, chatID, userID string) (*domain.Chat, error) {
	c, err := s.chatRepo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !c.HasParticipant(userID) {
		return nil, fmt.Errorf("not a chat participant: %w", domain.ErrForbidden)
	}
	return c, nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]domain.Chat, error) {
	return s.chatRepo.ListByUser(ctx, userID)
}

// SendMessage appends a message and fires a new-message notification at the
// other participant. The notification never fails the send.
func (s *service) SendMessage(ctx context.Context, chatID, senderID string, req domain.SendMessageRequest) (*domain.Message, error) {
	if req.Body == "" && req.AttachmentFileID == nil {
		return nil, fmt.Errorf("message needs a body or an attachment: %w", domain.ErrBadRequest)
	}
	c, err := s.Get(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}
	m := &domain.Message{
		MessageID:        id.New(),
		ChatID:           chatID,
		SenderID:         senderID,
		Body:             req.Body,
		AttachmentFileID: req.AttachmentFileID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.messageRepo.Put(ctx, m); err != nil {
		return nil, err
	}
	// A failed touch only leaves the chat list sort slightly stale; message
	// ordering comes from message timestamps.
	if err := s.chatRepo.Touch(ctx, chatID); err != nil {
		slog.Warn("failed to touch chat", "chat_id", chatID, "err", err)
	}
	if s.notifier != nil {
		if other := c.Other(senderID); other != "" {
			s.notifier.Enqueue(notification.Job{
				Kind:    domain.KindNewMessage,
				UserID:  other,
				Message: "You have a new message",
			})
		}
	}
	return m, nil
}

// ListMessages returns the chat's messages ordered by creation time
// ascending.
func (s *service) ListMessages(ctx context.Context, chatID, userID string) ([]domain.Message, error) {
	if _, err := s.Get(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByChat(ctx, chatID)
}
