package discord

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ativarub/rollout/internal/notify"
	"github.com/bwmarrin/discordgo"
)

type mockSession struct {
	mu      sync.Mutex
	sent    []*discordgo.MessageSend
	sendErr []error
	closed  bool
}

func (m *mockSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sendErr) > 0 {
		err := m.sendErr[0]
		m.sendErr = m.sendErr[1:]
		if err != nil {
			return nil, err
		}
	}
	m.sent = append(m.sent, data)
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func (m *mockSession) Close() error {
	m.closed = true
	return nil
}

func rateLimited() error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{ChannelID: "1"}); err == nil || !strings.Contains(err.Error(), "bot token") {
		t.Errorf("err = %v, want bot token error", err)
	}
	if _, err := New(Opts{BotToken: "t"}); err == nil || !strings.Contains(err.Error(), "channel id") {
		t.Errorf("err = %v, want channel error", err)
	}
}

func TestNotify_SendsEmbed(t *testing.T) {
	sess := &mockSession{}
	n, err := New(Opts{ChannelID: "998877", Session: sess})
	if err != nil {
		t.Fatal(err)
	}

	evt := notify.Event{
		Title:     "Plan completed",
		Body:      "done",
		Color:     "#36a64f",
		Fields:    []notify.Field{{Name: "Plan", Value: "#3", Short: true}},
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := n.Notify(context.Background(), evt); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sess.sent) != 1 || len(sess.sent[0].Embeds) != 1 {
		t.Fatalf("sent = %+v", sess.sent)
	}
	e := sess.sent[0].Embeds[0]
	if e.Title != "Plan completed" || e.Color != 0x36a64f || e.Timestamp != "2024-01-02T03:04:05Z" {
		t.Errorf("embed = %+v", e)
	}
	if len(e.Fields) != 1 || !e.Fields[0].Inline {
		t.Errorf("fields = %+v", e.Fields)
	}

	if err := n.Close(); err != nil || !sess.closed {
		t.Errorf("Close = %v, closed = %v", err, sess.closed)
	}
}

func TestNotify_RetriesRateLimit(t *testing.T) {
	sess := &mockSession{sendErr: []error{rateLimited()}}
	n, _ := New(Opts{ChannelID: "1", Session: sess})
	n.baseBackoff = time.Millisecond

	if err := n.Notify(context.Background(), notify.Event{Title: "x"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sess.sent) != 1 {
		t.Errorf("sent = %d, want 1", len(sess.sent))
	}
}

func TestNotify_OtherErrorNotRetried(t *testing.T) {
	sess := &mockSession{sendErr: []error{fmt.Errorf("missing access"), nil}}
	n, _ := New(Opts{ChannelID: "1", Session: sess})

	err := n.Notify(context.Background(), notify.Event{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "discord: send message") {
		t.Fatalf("err = %v", err)
	}
	if len(sess.sent) != 0 {
		t.Errorf("should not retry non rate-limit errors")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"#36a64f", 0x36a64f},
		{"ff9800", 0xff9800},
		{"#2196F3", 0x2196f3},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseHexColor(tt.in); got != tt.want {
			t.Errorf("parseHexColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}
