package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUnconfiguredSenderIsNoop(t *testing.T) {
	s := New(Config{Host: "smtp.example.com"}, nil)
	assert.False(t, s.Enabled())
	assert.Equal(t, "none", s.Provider())
	assert.NoError(t, s.Send(context.Background(), Message{To: []string{"a@b.co"}, Subject: "x"}))
}

func TestProviderSelection(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"resend wins", Config{From: "s@x.co", ResendKey: "re_1", MailjetPublic: "p", MailjetPrivate: "q"}, "resend"},
		{"mailjet", Config{From: "s@x.co", MailjetPublic: "p", MailjetPrivate: "q"}, "mailjet"},
		{"smtp from user", Config{Host: "smtp.x.co", User: "u@x.co", Pass: "pw"}, "smtp"},
		{"no from", Config{ResendKey: "re_1"}, "none"},
		{"smtp missing pass", Config{Host: "smtp.x.co", User: "u@x.co"}, "none"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, New(tc.cfg, zap.NewNop()).Provider())
		})
	}
}

func TestBuildMIMEAlternative(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	raw, err := buildMIME("KAARSHE <news@kaarshe.com>", "", Message{
		To:          []string{"a@x.co", "b@x.co"},
		Subject:     "New blog post: Café",
		Text:        "plain body",
		HTML:        "<p>html body</p>",
		Undisclosed: true,
	}, now)
	require.NoError(t, err)
	s := string(raw)

	assert.Contains(t, s, "To: undisclosed-recipients:;\r\n")
	assert.NotContains(t, s, "a@x.co")
	assert.Contains(t, s, "Subject: =?utf-8?q?")
	assert.Contains(t, s, "Content-Type: multipart/alternative; boundary=")
	assert.Less(t, strings.Index(s, "text/plain"), strings.Index(s, "text/html"))
	assert.Contains(t, s, "plain body")
	assert.Contains(t, s, "<p>html body</p>")
}

func TestBuildMIMETextOnly(t *testing.T) {
	raw, err := buildMIME("a@x.co", "reply@x.co", Message{To: []string{"o@x.co"}, Subject: "Hi", Text: "hello"}, time.Now())
	require.NoError(t, err)
	s := string(raw)
	assert.Contains(t, s, "To: o@x.co\r\n")
	assert.Contains(t, s, "Reply-To: reply@x.co\r\n")
	assert.Contains(t, s, "Content-Type: text/plain; charset=UTF-8")
	assert.NotContains(t, s, "multipart")
}

func TestResendRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		var p resendPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, []string{"news@x.co"}, p.To)
		assert.Equal(t, []string{"a@x.co", "b@x.co"}, p.Bcc)
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newResend("re_key", "news@x.co", "", zap.NewNop())
	p.endpoint = srv.URL
	p.delay = time.Millisecond

	err := p.send(context.Background(), Message{To: []string{"a@x.co", "b@x.co"}, Subject: "s", Undisclosed: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestResendDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	p := newResend("re_key", "news@x.co", "", zap.NewNop())
	p.endpoint = srv.URL
	p.delay = time.Millisecond

	err := p.send(context.Background(), Message{To: []string{"a@x.co"}, Subject: "s"})
	var rerr *resendError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, http.StatusUnprocessableEntity, rerr.Status)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestSenderRejectsEmptyRecipients(t *testing.T) {
	s := New(Config{From: "s@x.co", ResendKey: "re_1"}, nil)
	assert.Error(t, s.Send(context.Background(), Message{To: []string{"  "}}))
}
