package reservations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/qoodeng/wolfe/internal/store"
)

func newTestService(t *testing.T) (*Service, *Session) {
	t.Helper()
	m := store.NewMemoryStore()
	if err := m.Seed(context.Background()); err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(m, NewIDGenerator(), logger), NewSession()
}

func verify(t *testing.T, svc *Service, sess *Session, accountID string) {
	t.Helper()
	ok, err := svc.VerifyAccount(context.Background(), sess, accountID)
	if err != nil || !ok {
		t.Fatalf("VerifyAccount(%s) = %v, %v", accountID, ok, err)
	}
}

func TestVerifyAccount(t *testing.T) {
	svc, sess := newTestService(t)
	ctx := context.Background()

	ok, err := svc.VerifyAccount(ctx, sess, "10001")
	if err != nil {
		t.Fatalf("VerifyAccount error: %v", err)
	}
	if !ok {
		t.Error("active account did not verify")
	}
	if !sess.Verified("10001") {
		t.Error("session not marked verified")
	}

	ok, err = svc.VerifyAccount(ctx, sess, "99999")
	if err != nil {
		t.Fatalf("VerifyAccount error: %v", err)
	}
	if ok {
		t.Error("unknown account verified")
	}
	if sess.Verified("99999") {
		t.Error("failed verification marked the session")
	}
}

func TestOperationsRequireVerification(t *testing.T) {
	svc, sess := newTestService(t)
	ctx := context.Background()

	calls := []struct {
		name string
		call func() (string, error)
	}{
		{"GetReservations", func() (string, error) { return svc.GetReservations(ctx, sess, "10001", "John Smith") }},
		{"CancelReservation", func() (string, error) { return svc.CancelReservation(ctx, sess, "10001", 555) }},
		{"CreateReservation", func() (string, error) {
			return svc.CreateReservation(ctx, sess, "10001", "John Smith", "2026-02-01", "King")
		}},
		{"EditReservation", func() (string, error) {
			return svc.EditReservation(ctx, sess, "10001", 555, "2026-02-02", "")
		}},
	}
	for _, tc := range calls {
		_, err := tc.call()
		var unauth *UnauthorizedError
		if !errors.As(err, &unauth) {
			t.Errorf("%s without verification: error = %v, want UnauthorizedError", tc.name, err)
		}
	}

	// Verifying one account must not authorize another.
	verify(t, svc, sess, "10003")
	if _, err := svc.CancelReservation(ctx, sess, "10001", 555); err == nil {
		t.Error("verification of 10003 authorized operations on 10001")
	}
}

func TestGetReservations(t *testing.T) {
	svc, sess := newTestService(t)
	ctx := context.Background()
	verify(t, svc, sess, "10001")
	verify(t, svc, sess, "10003")

	got, err := svc.GetReservations(ctx, sess, "10001", "John Smith")
	if err != nil {
		t.Fatalf("GetReservations error: %v", err)
	}
	for _, want := range []string{"Reservation 555", "2025-12-15", "Confirmed"} {
		if !strings.Contains(got, want) {
			t.Errorf("listing %q missing %q", got, want)
		}
	}

	got, err = svc.GetReservations(ctx, sess, "10003", "Test User")
	if err != nil {
		t.Fatalf("GetReservations error: %v", err)
	}
	if got != "No reservations found for Test User." {
		t.Errorf("empty listing = %q", got)
	}
}

func TestGetReservations_IgnoresSearchName(t *testing.T) {
	svc, sess := newTestService(t)
	verify(t, svc, sess, "10001")

	// The search name does not filter; the full list comes back even for
	// a name that matches nothing.
	got, err := svc.GetReservations(context.Background(), sess, "10001", "Nobody")
	if err != nil {
		t.Fatalf("GetReservations error: %v", err)
	}
	if !strings.Contains(got, "Reservation 555") {
		t.Errorf("listing %q missing reservation 555", got)
	}
}

func TestCancelReservation(t *testing.T) {
	svc, sess := newTestService(t)
	ctx := context.Background()
	verify(t, svc, sess, "10001")
	verify(t, svc, sess, "10002")

	got, err := svc.CancelReservation(ctx, sess, "10001", 555)
	if err != nil {
		t.Fatalf("CancelReservation error: %v", err)
	}
	if got != "Reservation 555 has been cancelled." {
		t.Errorf("message = %q", got)
	}

	// Cancelling again and cancelling a never-existing reservation both
	// produce the same message.
	for _, id := range []int{555, 999} {
		got, err = svc.CancelReservation(ctx, sess, "10001", id)
		if err != nil {
			t.Fatalf("CancelReservation(%d) error: %v", id, err)
		}
		want := "Reservation " + map[int]string{555: "555", 999: "999"}[id] + " not found or already cancelled."
		if got != want {
			t.Errorf("message = %q, want %q", got, want)
		}
	}

	// Seeded reservation 666 is already cancelled.
	got, err = svc.CancelReservation(ctx, sess, "10002", 666)
	if err != nil {
		t.Fatalf("CancelReservation error: %v", err)
	}
	if got != "Reservation 666 not found or already cancelled." {
		t.Errorf("message = %q", got)
	}
}

func TestCreateReservation(t *testing.T) {
	m := store.NewMemoryStore()
	if err := m.Seed(context.Background()); err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(m, FixedIDs(4242), logger)
	sess := NewSession()
	ctx := context.Background()
	verify(t, svc, sess, "10003")

	got, err := svc.CreateReservation(ctx, sess, "10003", "Test User", "2026-03-10", "Queen")
	if err != nil {
		t.Fatalf("CreateReservation error: %v", err)
	}
	if got != "New reservation confirmed for Test User on 2026-03-10. Reservation ID: 4242" {
		t.Errorf("message = %q", got)
	}

	acct, err := m.FindAccount(ctx, "10003")
	if err != nil {
		t.Fatalf("FindAccount error: %v", err)
	}
	if len(acct.Reservations) != 1 {
		t.Fatalf("reservations = %+v", acct.Reservations)
	}
	r := acct.Reservations[0]
	if r.ReservationID != 4242 || r.Status != store.ReservationConfirmed || r.RoomType != "Queen" {
		t.Errorf("stored reservation = %+v", r)
	}
}

func TestEditReservation(t *testing.T) {
	svc, sess := newTestService(t)
	ctx := context.Background()
	verify(t, svc, sess, "10001")

	got, err := svc.EditReservation(ctx, sess, "10001", 555, "2026-01-20", "Suite")
	if err != nil {
		t.Fatalf("EditReservation error: %v", err)
	}
	if got != "Reservation 555 updated: date to 2026-01-20, room type to Suite." {
		t.Errorf("message = %q", got)
	}

	got, err = svc.EditReservation(ctx, sess, "10001", 555, "", "King")
	if err != nil {
		t.Fatalf("EditReservation error: %v", err)
	}
	if got != "Reservation 555 updated: room type to King." {
		t.Errorf("message = %q", got)
	}

	got, err = svc.EditReservation(ctx, sess, "10001", 555, "", "")
	if err != nil {
		t.Fatalf("EditReservation error: %v", err)
	}
	if got != "No changes provided. Specify new_check_in_date and/or new_room_type." {
		t.Errorf("message = %q", got)
	}

	got, err = svc.EditReservation(ctx, sess, "10001", 999, "2026-01-21", "")
	if err != nil {
		t.Fatalf("EditReservation error: %v", err)
	}
	if got != "Reservation 999 not found." {
		t.Errorf("message = %q", got)
	}
}

func TestEditReservation_RoomTypeOnlyKeepsDate(t *testing.T) {
	m := store.NewMemoryStore()
	if err := m.Seed(context.Background()); err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(m, NewIDGenerator(), logger)
	sess := NewSession()
	ctx := context.Background()
	verify(t, svc, sess, "10001")

	got, err := svc.EditReservation(ctx, sess, "10001", 555, "", "Suite")
	if err != nil {
		t.Fatalf("EditReservation error: %v", err)
	}
	if got != "Reservation 555 updated: room type to Suite." {
		t.Errorf("message = %q", got)
	}

	acct, err := m.FindAccount(ctx, "10001")
	if err != nil {
		t.Fatalf("FindAccount error: %v", err)
	}
	r := acct.Reservations[0]
	if r.Date != "2025-12-15" {
		t.Errorf("date = %q, want 2025-12-15 untouched", r.Date)
	}
	if r.RoomType != "Suite" {
		t.Errorf("room type = %q, want Suite", r.RoomType)
	}
	if r.Status != store.ReservationConfirmed {
		t.Errorf("status = %q, want %q", r.Status, store.ReservationConfirmed)
	}
}

func TestIDGenerator_Unique(t *testing.T) {
	g := NewIDGenerator()
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		id := g.Next()
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}
