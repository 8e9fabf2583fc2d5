package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestNew(t *testing.T) {
	tests := []struct {
		backend string
		want    any
		wantErr bool
	}{
		{"smtp", &SMTPSender{}, false},
		{"console", ConsoleSender{}, false},
		{"", ConsoleSender{}, false},
		{"MEMORY", &MemorySender{}, false},
		{"pigeon", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := New(Config{Backend: tt.backend, Host: "localhost"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestSMTPDefaults(t *testing.T) {
	s := NewSMTPSender(Config{Host: "localhost"})
	assert.Equal(t, 587, s.cfg.Port)
	assert.NotZero(t, s.cfg.Timeout)
}

func TestBuildMsg(t *testing.T) {
	_, err := buildMsg(Message{From: "blog@example.com"})
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = buildMsg(Message{From: "not an address", To: []string{"a@example.com"}})
	assert.Error(t, err)

	m, err := buildMsg(Message{
		From:    "blog@example.com",
		To:      []string{"a@example.com"},
		Subject: "hello",
		Body:    "body",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, m.GetGenHeader(mail.HeaderSubject))
}

func TestMemorySender(t *testing.T) {
	ctx := context.Background()
	s := &MemorySender{}

	require.NoError(t, s.Send(ctx, Message{To: []string{"a@example.com"}, Subject: "one"}))
	assert.ErrorIs(t, s.Send(ctx, Message{}), ErrNoRecipients)

	out := s.Outbox()
	require.Len(t, out, 1)
	assert.Equal(t, "one", out[0].Subject)

	s.Err = errors.New("down")
	assert.EqualError(t, s.Send(ctx, Message{To: []string{"a@example.com"}}), "down")
}

func TestConsoleSender(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ConsoleSender{}.Send(ctx, Message{To: []string{"a@example.com"}}))
	assert.ErrorIs(t, ConsoleSender{}.Send(ctx, Message{}), ErrNoRecipients)
}
