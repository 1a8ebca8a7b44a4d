package transcript

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "transcript.db"))
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndReadMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	turns := []struct{ role, content string }{
		{"assistant", "Welcome to the hotel! How can I help?"},
		{"user", "My account is 10001."},
		{"assistant", "You're verified, John."},
	}
	for _, turn := range turns {
		if err := s.RecordMessage(ctx, "conv-1", turn.role, turn.content); err != nil {
			t.Fatalf("RecordMessage error: %v", err)
		}
	}

	got, err := s.Messages(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Messages error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, turn := range turns {
		if got[i].Role != turn.role || got[i].Content != turn.content {
			t.Errorf("message[%d] = %+v, want %+v", i, got[i], turn)
		}
	}

	// Other conversations stay isolated.
	other, err := s.Messages(ctx, "conv-2")
	if err != nil {
		t.Fatalf("Messages error: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("conv-2 messages = %+v", other)
	}
}

func TestRecordAndReadToolCalls(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.RecordToolCall(ctx, "conv-1", "check_account_status",
		`{"account_id":"10001"}`, `{"success":true}`)
	if err != nil {
		t.Fatalf("RecordToolCall error: %v", err)
	}

	calls, err := s.ToolCalls(ctx, "conv-1", 10)
	if err != nil {
		t.Fatalf("ToolCalls error: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("len = %d, want 1", len(calls))
	}
	tc := calls[0]
	if tc.ToolName != "check_account_status" || tc.Result != `{"success":true}` {
		t.Errorf("tool call = %+v", tc)
	}
	if tc.ID == "" {
		t.Error("tool call id not assigned")
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordMessage(ctx, "conv-1", "user", "hello"); err != nil {
		t.Fatalf("RecordMessage error: %v", err)
	}
	if err := s.RecordToolCall(ctx, "conv-1", "check_account_status", "{}", "{}"); err != nil {
		t.Fatalf("RecordToolCall error: %v", err)
	}

	stats := s.Stats(ctx)
	if stats["conversations"] != 1 || stats["messages"] != 1 || stats["tool_calls"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
