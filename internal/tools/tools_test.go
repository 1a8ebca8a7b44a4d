package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/qoodeng/wolfe/internal/reservations"
	"github.com/qoodeng/wolfe/internal/store"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	m := store.NewMemoryStore()
	if err := m.Seed(context.Background()); err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := reservations.NewService(m, reservations.NewIDGenerator(), logger)
	r := NewRegistry(logger)
	RegisterReservationTools(r, svc, reservations.NewSession())
	return r
}

func payloadField(t *testing.T, payload, key string) any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatalf("payload %q is not JSON: %v", payload, err)
	}
	return doc[key]
}

func TestList(t *testing.T) {
	r := newTestRegistry(t)

	list := r.List()
	want := []string{
		"check_account_status",
		"get_guest_reservation",
		"cancel_guest_reservation",
		"make_new_reservation",
		"edit_guest_reservation",
	}
	if len(list) != len(want) {
		t.Fatalf("List() returned %d tools, want %d", len(list), len(want))
	}
	for i, entry := range list {
		fn := entry["function"].(map[string]any)
		if fn["name"] != want[i] {
			t.Errorf("tool[%d] = %v, want %s", i, fn["name"], want[i])
		}
		if entry["type"] != "function" {
			t.Errorf("tool[%d] type = %v", i, entry["type"])
		}
	}
}

func TestExecute_UnknownTool(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Execute(context.Background(), "book_flight", "{}")
	var unavailable *ErrToolUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("error = %v, want ErrToolUnavailable", err)
	}
	if unavailable.ToolName != "book_flight" {
		t.Errorf("ToolName = %q", unavailable.ToolName)
	}
}

func TestExecute_MalformedArguments(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Execute(context.Background(), "check_account_status", "{not json")
	if err == nil || !strings.Contains(err.Error(), "invalid arguments") {
		t.Errorf("error = %v, want invalid arguments", err)
	}
}

func TestExecute_CheckAccountStatus(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	payload, err := r.Execute(ctx, "check_account_status", `{"account_id":"10001"}`)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if payloadField(t, payload, "success") != true {
		t.Errorf("payload = %q, want success true", payload)
	}

	payload, err = r.Execute(ctx, "check_account_status", `{"account_id":"99999"}`)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if payloadField(t, payload, "success") != false {
		t.Errorf("payload = %q, want success false", payload)
	}
}

func TestExecute_UnverifiedAccountGetsErrorPayload(t *testing.T) {
	r := newTestRegistry(t)

	payload, err := r.Execute(context.Background(), "cancel_guest_reservation",
		`{"account_id":"10001","reservation_id":555}`)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	msg, ok := payloadField(t, payload, "error").(string)
	if !ok || !strings.Contains(msg, "not been verified") {
		t.Errorf("payload = %q, want verification error", payload)
	}
}

func TestExecute_VerifiedFlow(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Execute(ctx, "check_account_status", `{"account_id":"10001"}`); err != nil {
		t.Fatalf("verify error: %v", err)
	}

	payload, err := r.Execute(ctx, "get_guest_reservation",
		`{"account_id":"10001","search_name":"John Smith"}`)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	listing, _ := payloadField(t, payload, "result").(string)
	if !strings.Contains(listing, "Reservation 555") {
		t.Errorf("listing = %q", listing)
	}

	payload, err = r.Execute(ctx, "cancel_guest_reservation",
		`{"account_id":"10001","reservation_id":555}`)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if got := payloadField(t, payload, "result"); got != "Reservation 555 has been cancelled." {
		t.Errorf("result = %v", got)
	}
}

func TestExecute_ReservationIDAsString(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Execute(ctx, "check_account_status", `{"account_id":"10001"}`); err != nil {
		t.Fatalf("verify error: %v", err)
	}

	// Models sometimes quote integer arguments.
	payload, err := r.Execute(ctx, "cancel_guest_reservation",
		`{"account_id":"10001","reservation_id":"555"}`)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if got := payloadField(t, payload, "result"); got != "Reservation 555 has been cancelled." {
		t.Errorf("result = %v", got)
	}
}

func TestExecute_MissingArgumentBecomesErrorPayload(t *testing.T) {
	r := newTestRegistry(t)

	payload, err := r.Execute(context.Background(), "check_account_status", `{}`)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	msg, ok := payloadField(t, payload, "error").(string)
	if !ok || !strings.Contains(msg, "account_id is required") {
		t.Errorf("payload = %q", payload)
	}
}

func TestExecute_PanicRecovered(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRegistry(logger)
	r.Register(&Tool{
		Name:       "explode",
		Parameters: map[string]any{"type": "object"},
		Handler: func(context.Context, map[string]any) (Result, error) {
			panic("boom")
		},
	})

	payload, err := r.Execute(context.Background(), "explode", "{}")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if _, ok := payloadField(t, payload, "error").(string); !ok {
		t.Errorf("payload = %q, want error payload", payload)
	}
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		want    int
		wantErr bool
	}{
		{"number", map[string]any{"id": float64(42)}, 42, false},
		{"string", map[string]any{"id": "42"}, 42, false},
		{"junk string", map[string]any{"id": "forty-two"}, 0, true},
		{"missing", map[string]any{}, 0, true},
		{"wrong type", map[string]any{"id": true}, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := intArg(tc.args, "id")
			if tc.wantErr {
				if err == nil {
					t.Errorf("intArg(%v) = %d, want error", tc.args, got)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("intArg(%v) = %d, %v, want %d", tc.args, got, err, tc.want)
			}
		})
	}
}
