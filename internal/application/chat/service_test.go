package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/bookswap-api/internal/application/notification"
	"github.com/bookswap-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockChatStore struct{ mock.Mock }

func (m *mockChatStore) Put(ctx context.Context, c *domain.Chat) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockChatStore) Get(ctx context.Context, chatID string) (*domain.Chat, error) {
	args := m.Called(ctx, chatID)
	if c, _ := args.Get(0).(*domain.Chat); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockChatStore) GetByPair(ctx context.Context, userA, userB string) (*domain.Chat, error) {
	args := m.Called(ctx, userA, userB)
	if c, _ := args.Get(0).(*domain.Chat); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockChatStore) ListByUser(ctx context.Context, userID string) ([]domain.Chat, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Chat), args.Error(1)
}
func (m *mockChatStore) Touch(ctx context.Context, chatID string) error {
	return m.Called(ctx, chatID).Error(0)
}

type mockMessageStore struct{ mock.Mock }

func (m *mockMessageStore) Put(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *mockMessageStore) ListByChat(ctx context.Context, chatID string) ([]domain.Message, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

type mockParticipantStore struct{ mock.Mock }

func (m *mockParticipantStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type captureNotifier struct{ jobs []notification.Job }

func (n *captureNotifier) Enqueue(job notification.Job) { n.jobs = append(n.jobs, job) }

// --- helpers ---

func pairChat() *domain.Chat {
	return &domain.Chat{
		ChatID:       "c1",
		Participants: []string{"u1", "u2"},
		UserA:        "u1",
		UserB:        "u2",
		PairKey:      "u1#u2",
		Enable:       true,
	}
}

// --- GetOrCreate tests ---

func TestGetOrCreate_ReturnsExistingChat(t *testing.T) {
	cs, us := &mockChatStore{}, &mockParticipantStore{}
	us.On("Get", mock.Anything, "u2").Return(&domain.User{UserID: "u2"}, nil)
	cs.On("GetByPair", mock.Anything, "u1", "u2").Return(pairChat(), nil)

	svc := NewService(cs, &mockMessageStore{}, us, nil)
	c, err := svc.GetOrCreate(context.Background(), "u1", domain.CreateChatRequest{OtherUserID: "u2"})

	require.NoError(t, err)
	assert.Equal(t, "c1", c.ChatID)
	cs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestGetOrCreate_CreatesWithSortedPairKey(t *testing.T) {
	cs, us := &mockChatStore{}, &mockParticipantStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)
	cs.On("GetByPair", mock.Anything, "u9", "u1").Return(nil, domain.ErrNotFound)
	cs.On("Put", mock.Anything, mock.MatchedBy(func(c *domain.Chat) bool {
		return c.UserA == "u1" && c.UserB == "u9" && c.PairKey == "u1#u9" && c.Enable
	})).Return(nil)

	// "u9" opens the chat; the pair key is still sorted.
	svc := NewService(cs, &mockMessageStore{}, us, nil)
	c, err := svc.GetOrCreate(context.Background(), "u9", domain.CreateChatRequest{OtherUserID: "u1"})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u9"}, c.Participants)
	cs.AssertExpectations(t)
}

func TestGetOrCreate_SelfChatRejected(t *testing.T) {
	svc := NewService(&mockChatStore{}, &mockMessageStore{}, &mockParticipantStore{}, nil)
	_, err := svc.GetOrCreate(context.Background(), "u1", domain.CreateChatRequest{OtherUserID: "u1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestGetOrCreate_UnknownOtherUser(t *testing.T) {
	us := &mockParticipantStore{}
	us.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := NewService(&mockChatStore{}, &mockMessageStore{}, us, nil)
	_, err := svc.GetOrCreate(context.Background(), "u1", domain.CreateChatRequest{OtherUserID: "ghost"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- SendMessage tests ---

func TestSendMessage_NotifiesOtherParticipant(t *testing.T) {
	cs, ms := &mockChatStore{}, &mockMessageStore{}
	cs.On("Get", mock.Anything, "c1").Return(pairChat(), nil)
	ms.On("Put", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)
	cs.On("Touch", mock.Anything, "c1").Return(nil)

	n := &captureNotifier{}
	svc := NewService(cs, ms, &mockParticipantStore{}, n)
	m, err := svc.SendMessage(context.Background(), "c1", "u1", domain.SendMessageRequest{Body: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "u1", m.SenderID)
	require.Len(t, n.jobs, 1)
	assert.Equal(t, domain.KindNewMessage, n.jobs[0].Kind)
	assert.Equal(t, "u2", n.jobs[0].UserID)
}

func TestSendMessage_NonParticipantForbidden(t *testing.T) {
	cs := &mockChatStore{}
	cs.On("Get", mock.Anything, "c1").Return(pairChat(), nil)

	svc := NewService(cs, &mockMessageStore{}, &mockParticipantStore{}, nil)
	_, err := svc.SendMessage(context.Background(), "c1", "intruder", domain.SendMessageRequest{Body: "hi"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestSendMessage_EmptyMessageRejected(t *testing.T) {
	svc := NewService(&mockChatStore{}, &mockMessageStore{}, &mockParticipantStore{}, nil)
	_, err := svc.SendMessage(context.Background(), "c1", "u1", domain.SendMessageRequest{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSendMessage_AttachmentOnlyAllowed(t *testing.T) {
	cs, ms := &mockChatStore{}, &mockMessageStore{}
	cs.On("Get", mock.Anything, "c1").Return(pairChat(), nil)
	fileID := "f1"
	ms.On("Put", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return m.Body == "" && m.AttachmentFileID != nil && *m.AttachmentFileID == "f1"
	})).Return(nil)
	cs.On("Touch", mock.Anything, "c1").Return(nil)

	svc := NewService(cs, ms, &mockParticipantStore{}, nil)
	_, err := svc.SendMessage(context.Background(), "c1", "u1", domain.SendMessageRequest{AttachmentFileID: &fileID})

	require.NoError(t, err)
	ms.AssertExpectations(t)
}

func TestSendMessage_TouchFailureDoesNotFailSend(t *testing.T) {
	cs, ms := &mockChatStore{}, &mockMessageStore{}
	cs.On("Get", mock.Anything, "c1").Return(pairChat(), nil)
	ms.On("Put", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)
	cs.On("Touch", mock.Anything, "c1").Return(errors.New("dynamo error"))

	svc := NewService(cs, ms, &mockParticipantStore{}, nil)
	_, err := svc.SendMessage(context.Background(), "c1", "u1", domain.SendMessageRequest{Body: "hi"})
	assert.NoError(t, err)
}

// --- ListMessages tests ---

func TestListMessages_MembershipEnforced(t *testing.T) {
	cs := &mockChatStore{}
	cs.On("Get", mock.Anything, "c1").Return(pairChat(), nil)

	svc := NewService(cs, &mockMessageStore{}, &mockParticipantStore{}, nil)
	_, err := svc.ListMessages(context.Background(), "c1", "intruder")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestListMessages_ReturnsChatHistory(t *testing.T) {
	cs, ms := &mockChatStore{}, &mockMessageStore{}
	cs.On("Get", mock.Anything, "c1").Return(pairChat(), nil)
	ms.On("ListByChat", mock.Anything, "c1").Return([]domain.Message{
		{MessageID: "m1", Body: "first"},
		{MessageID: "m2", Body: "second"},
	}, nil)

	svc := NewService(cs, ms, &mockParticipantStore{}, nil)
	msgs, err := svc.ListMessages(context.Background(), "c1", "u1")

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Body)
}
