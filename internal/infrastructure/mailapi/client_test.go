package mailapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookswap-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_Success(t *testing.T) {
	var gotPath string
	var gotBody sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(sendResponse{Success: true, Message: "sent"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	err := c.Send(context.Background(), domain.KindNewMessage, "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, "/notify/new-message", gotPath)
	assert.Equal(t, "alice@example.com", gotBody.Email)
}

func TestSend_KindRouting(t *testing.T) {
	tests := []struct {
		kind domain.NotificationKind
		path string
	}{
		{domain.KindNewMessage, "/notify/new-message"},
		{domain.KindNewMatch, "/notify/new-match"},
		{domain.KindBookAvailability, "/notify/book-available"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				_ = json.NewEncoder(w).Encode(sendResponse{Success: true})
			}))
			defer srv.Close()

			c := NewClient(srv.URL, srv.Client())
			require.NoError(t, c.Send(context.Background(), tt.kind, "a@b.co"))
			assert.Equal(t, tt.path, gotPath)
		})
	}
}

func TestSend_UnknownKind(t *testing.T) {
	c := NewClient("http://unused", nil)
	err := c.Send(context.Background(), domain.NotificationKind("bogus"), "a@b.co")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestSend_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	err := c.Send(context.Background(), domain.KindNewMatch, "a@b.co")
	assert.ErrorContains(t, err, "status 502")
}

func TestSend_SuccessFalseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(sendResponse{Success: false, Error: "mailbox full"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	err := c.Send(context.Background(), domain.KindNewMatch, "a@b.co")
	assert.ErrorContains(t, err, "mailbox full")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	assert.NoError(t, c.Health(context.Background()))
}
