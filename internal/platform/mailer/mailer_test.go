package mailer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/internal/platform/config"
)

func testConfig() config.Email {
	return config.Email{
		SMTPHost:    "smtp.example.com",
		SMTPPort:    587,
		FromName:    "Frontdesk",
		FromAddress: "noreply@example.com",
	}
}

func TestNewSelectsLogMailerWithoutHost(t *testing.T) {
	m := New(config.Email{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, ok := m.(*LogMailer)
	assert.True(t, ok)
	assert.NoError(t, m.Send(context.Background(), Message{To: "a@example.com"}))
}

func TestSMTPMailerSend(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotBody string
	m := &SMTPMailer{cfg: testConfig(), send: func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotBody = addr, to, string(msg)
		return nil
	}}

	err := m.Send(context.Background(), Message{To: "bob@example.com", Subject: "Hello", Text: "plain", HTML: "<p>html</p>"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"bob@example.com"}, gotTo)
	assert.Contains(t, gotBody, "Subject: Hello")
	assert.Contains(t, gotBody, "multipart/alternative")
	assert.Contains(t, gotBody, "<p>html</p>")
}

func TestSMTPMailerErrors(t *testing.T) {
	t.Run("transport error is wrapped", func(t *testing.T) {
		boom := errors.New("connection refused")
		m := &SMTPMailer{cfg: testConfig(), send: func(string, smtp.Auth, string, []string, []byte) error { return boom }}
		err := m.Send(context.Background(), Message{To: "x@example.com"})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty recipient", func(t *testing.T) {
		m := &SMTPMailer{cfg: testConfig()}
		assert.Error(t, m.Send(context.Background(), Message{}))
	})

	t.Run("context cancellation", func(t *testing.T) {
		block := make(chan struct{})
		defer close(block)
		m := &SMTPMailer{cfg: testConfig(), send: func(string, smtp.Auth, string, []string, []byte) error {
			<-block
			return nil
		}}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, m.Send(ctx, Message{To: "x@example.com"}), context.DeadlineExceeded)
	})
}
