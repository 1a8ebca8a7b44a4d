// Package store provides the reservation document store adapter.
//
// Accounts are single documents addressed by account ID, with their
// reservations embedded. Reservation IDs are unique only within their
// owning account. All writes target a single account document; the
// backend's per-document update atomicity is the only consistency
// guarantee offered or required.
package store

import "context"

// Account statuses.
const (
	AccountActive = "Active"
)

// Reservation statuses.
const (
	ReservationConfirmed = "Confirmed"
	ReservationCancelled = "Cancelled"
)

// Field keys accepted by UpdateReservation.
const (
	FieldDate     = "date"
	FieldStatus   = "status"
	FieldRoomType = "room_type"
)

// Account is the stored account document.
type Account struct {
	AccountID    string        `bson:"account_id" json:"account_id"`
	GuestName    string        `bson:"guest_name" json:"guest_name"`
	Status       string        `bson:"status" json:"status"`
	Reservations []Reservation `bson:"reservations" json:"reservations"`
}

// Reservation is a single booking embedded in an account document.
type Reservation struct {
	ReservationID int    `bson:"reservation_id" json:"reservation_id"`
	Date          string `bson:"date" json:"date"`
	Status        string `bson:"status" json:"status"`
	RoomType      string `bson:"room_type,omitempty" json:"room_type,omitempty"`
}

// UpdateResult reports how many documents an update touched.
// Modified is zero when the write was a no-op (every targeted field
// already held the written value), mirroring MongoDB's modified count.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Store is the adapter interface the reservation operations depend on.
// Implementations: Mongo (production) and Memory (tests, dev mode).
type Store interface {
	// FindAccount returns the account document, or ErrNotFound.
	FindAccount(ctx context.Context, accountID string) (*Account, error)

	// UpdateReservation applies the field updates to the single
	// reservation matching (accountID, reservationID). Matched is zero
	// when no such reservation exists.
	UpdateReservation(ctx context.Context, accountID string, reservationID int, fields map[string]string) (UpdateResult, error)

	// AppendReservation adds a reservation to an existing account.
	// Returns ErrNotFound if the account does not exist.
	AppendReservation(ctx context.Context, accountID string, res Reservation) error
}

// Seeder is implemented by backends that can load the sample data set.
type Seeder interface {
	Seed(ctx context.Context) error
}

// SeedAccounts returns the sample account set used for development and
// integration testing. Accounts are provisioned out-of-band in real
// deployments; the core never creates or deletes them.
func SeedAccounts() []Account {
	return []Account{
		{
			AccountID: "10001",
			GuestName: "John Smith",
			Status:    AccountActive,
			Reservations: []Reservation{
				{ReservationID: 555, Date: "2025-12-15", Status: ReservationConfirmed},
			},
		},
		{
			AccountID: "10002",
			GuestName: "Jane Doe",
			Status:    AccountActive,
			Reservations: []Reservation{
				{ReservationID: 666, Date: "2025-12-16", Status: ReservationCancelled},
			},
		},
		{
			AccountID:    "10003",
			GuestName:    "Test User",
			Status:       AccountActive,
			Reservations: []Reservation{},
		},
	}
}
