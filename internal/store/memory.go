package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store with the same update semantics as
// MongoDB's positional update: a write that changes no field values
// reports Modified == 0. Used by tests and the "memory" backend.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*Account)}
}

// Put inserts or replaces an account document.
func (m *MemoryStore) Put(account Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := account
	copied.Reservations = append([]Reservation(nil), account.Reservations...)
	m.accounts[account.AccountID] = &copied
}

// FindAccount returns a copy of the account document, or ErrNotFound.
func (m *MemoryStore) FindAccount(_ context.Context, accountID string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *acct
	copied.Reservations = append([]Reservation(nil), acct.Reservations...)
	return &copied, nil
}

// UpdateReservation applies field updates to the first reservation
// matching (accountID, reservationID).
func (m *MemoryStore) UpdateReservation(_ context.Context, accountID string, reservationID int, fields map[string]string) (UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[accountID]
	if !ok {
		return UpdateResult{}, nil
	}

	for i := range acct.Reservations {
		r := &acct.Reservations[i]
		if r.ReservationID != reservationID {
			continue
		}

		var modified int64
		for k, v := range fields {
			switch k {
			case FieldDate:
				if r.Date != v {
					r.Date = v
					modified = 1
				}
			case FieldStatus:
				if r.Status != v {
					r.Status = v
					modified = 1
				}
			case FieldRoomType:
				if r.RoomType != v {
					r.RoomType = v
					modified = 1
				}
			}
		}
		return UpdateResult{Matched: 1, Modified: modified}, nil
	}

	return UpdateResult{}, nil
}

// AppendReservation adds a reservation to an existing account.
func (m *MemoryStore) AppendReservation(_ context.Context, accountID string, r Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	acct.Reservations = append(acct.Reservations, r)
	return nil
}

// Seed loads the sample accounts, skipping any that already exist.
func (m *MemoryStore) Seed(_ context.Context) error {
	m.mu.Lock()
	existing := make(map[string]bool, len(m.accounts))
	for id := range m.accounts {
		existing[id] = true
	}
	m.mu.Unlock()

	for _, account := range SeedAccounts() {
		if existing[account.AccountID] {
			continue
		}
		m.Put(account)
	}
	return nil
}
