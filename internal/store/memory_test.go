package store

import (
	"context"
	"errors"
	"testing"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	m := NewMemoryStore()
	if err := m.Seed(context.Background()); err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	return m
}

func TestFindAccount(t *testing.T) {
	m := seededStore(t)
	ctx := context.Background()

	acct, err := m.FindAccount(ctx, "10001")
	if err != nil {
		t.Fatalf("FindAccount(10001) error: %v", err)
	}
	if acct.GuestName != "John Smith" {
		t.Errorf("guest_name = %q", acct.GuestName)
	}
	if len(acct.Reservations) != 1 || acct.Reservations[0].ReservationID != 555 {
		t.Errorf("reservations = %+v", acct.Reservations)
	}

	_, err = m.FindAccount(ctx, "99999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FindAccount(99999) error = %v, want ErrNotFound", err)
	}
}

func TestFindAccount_ReturnsCopy(t *testing.T) {
	m := seededStore(t)
	ctx := context.Background()

	acct, _ := m.FindAccount(ctx, "10001")
	acct.Reservations[0].Status = "Mangled"

	fresh, _ := m.FindAccount(ctx, "10001")
	if fresh.Reservations[0].Status != ReservationConfirmed {
		t.Error("mutating a returned account leaked into the store")
	}
}

func TestUpdateReservation_NoOpWriteReportsZeroModified(t *testing.T) {
	m := seededStore(t)
	ctx := context.Background()

	// Reservation 666 is seeded Cancelled; writing Cancelled again must
	// match but not modify, mirroring Mongo's modified count.
	res, err := m.UpdateReservation(ctx, "10002", 666, map[string]string{FieldStatus: ReservationCancelled})
	if err != nil {
		t.Fatalf("UpdateReservation error: %v", err)
	}
	if res.Matched != 1 || res.Modified != 0 {
		t.Errorf("result = %+v, want Matched=1 Modified=0", res)
	}
}

func TestUpdateReservation_ChangesField(t *testing.T) {
	m := seededStore(t)
	ctx := context.Background()

	res, err := m.UpdateReservation(ctx, "10001", 555, map[string]string{FieldRoomType: "Suite"})
	if err != nil {
		t.Fatalf("UpdateReservation error: %v", err)
	}
	if res.Matched != 1 || res.Modified != 1 {
		t.Errorf("result = %+v, want Matched=1 Modified=1", res)
	}

	acct, _ := m.FindAccount(ctx, "10001")
	if acct.Reservations[0].RoomType != "Suite" {
		t.Errorf("room_type = %q, want Suite", acct.Reservations[0].RoomType)
	}
	if acct.Reservations[0].Date != "2025-12-15" {
		t.Errorf("date changed unexpectedly: %q", acct.Reservations[0].Date)
	}
}

func TestUpdateReservation_NoMatch(t *testing.T) {
	m := seededStore(t)
	ctx := context.Background()

	res, err := m.UpdateReservation(ctx, "10001", 999, map[string]string{FieldStatus: ReservationCancelled})
	if err != nil {
		t.Fatalf("UpdateReservation error: %v", err)
	}
	if res.Matched != 0 {
		t.Errorf("Matched = %d, want 0", res.Matched)
	}

	res, err = m.UpdateReservation(ctx, "88888", 555, map[string]string{FieldStatus: ReservationCancelled})
	if err != nil {
		t.Fatalf("UpdateReservation error: %v", err)
	}
	if res.Matched != 0 {
		t.Errorf("Matched = %d for absent account, want 0", res.Matched)
	}
}

func TestAppendReservation(t *testing.T) {
	m := seededStore(t)
	ctx := context.Background()

	err := m.AppendReservation(ctx, "10003", Reservation{
		ReservationID: 777,
		Date:          "2026-01-01",
		Status:        ReservationConfirmed,
		RoomType:      "King",
	})
	if err != nil {
		t.Fatalf("AppendReservation error: %v", err)
	}

	acct, _ := m.FindAccount(ctx, "10003")
	if len(acct.Reservations) != 1 {
		t.Fatalf("reservations = %+v", acct.Reservations)
	}
	if acct.Reservations[0].RoomType != "King" {
		t.Errorf("room_type = %q", acct.Reservations[0].RoomType)
	}

	if err := m.AppendReservation(ctx, "88888", Reservation{ReservationID: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("append to absent account error = %v, want ErrNotFound", err)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	m := seededStore(t)
	ctx := context.Background()

	// Mutate, then re-seed: existing accounts must not be reset.
	if _, err := m.UpdateReservation(ctx, "10001", 555, map[string]string{FieldRoomType: "Suite"}); err != nil {
		t.Fatalf("UpdateReservation error: %v", err)
	}
	if err := m.Seed(ctx); err != nil {
		t.Fatalf("re-Seed error: %v", err)
	}

	acct, _ := m.FindAccount(ctx, "10001")
	if acct.Reservations[0].RoomType != "Suite" {
		t.Error("re-seeding overwrote an existing account")
	}
}
