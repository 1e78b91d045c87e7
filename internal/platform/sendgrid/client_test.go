package sendgrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
)

func testClient(t *testing.T, baseURL string) Client {
	t.Helper()
	log, err := logger.New("development")
	require.NoError(t, err)
	c, err := New(log, Config{
		APIKey:           "sg-test-key",
		BaseURL:          baseURL,
		DefaultFromEmail: "no-reply@agrilpa.com",
		DefaultFromName:  "Agrilpa",
		Timeout:          5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestSendBuildsV3Payload(t *testing.T) {
	var got mailSendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.Equal(t, "/v3/mail/send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("X-Message-Id", "msg-123")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	res, err := c.Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "farmer@example.com"}},
		Subject: "Welcome",
		Text:    "Hello",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	require.Equal(t, "msg-123", res.MessageID)
	require.Equal(t, "Bearer sg-test-key", auth)
	require.Equal(t, "no-reply@agrilpa.com", got.From.Email)
	require.Len(t, got.Personalizations, 1)
	require.Equal(t, "farmer@example.com", got.Personalizations[0].To[0].Email)
	require.Equal(t, "text/plain", got.Content[0].Type)
}

func TestSendSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad from address"}]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "farmer@example.com"}},
		Subject: "Welcome",
		Text:    "Hello",
	})
	require.Error(t, err)
	httpErr, ok := err.(*HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	require.Contains(t, err.Error(), "bad from address")
}

func TestSendValidatesRequest(t *testing.T) {
	c := testClient(t, "http://localhost:1")

	_, err := c.Send(context.Background(), SendEmailRequest{Subject: "s", Text: "t"})
	require.Error(t, err)

	_, err = c.Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "x@example.com"}},
		Subject: "s",
	})
	require.Error(t, err)
}
