package reservations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qoodeng/wolfe/internal/store"
)

// Service implements the guest-facing reservation operations. Every
// operation except VerifyAccount requires the account to have been
// verified in the caller's Session first; unverified calls fail with
// *UnauthorizedError and never touch the store.
//
// Operations return guest-readable text because the results are handed
// straight back to the language model, which relays them verbatim.
type Service struct {
	store  store.Store
	ids    IDGenerator
	logger *slog.Logger
}

// NewService creates a Service backed by the given store.
func NewService(st store.Store, ids IDGenerator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, ids: ids, logger: logger.With("component", "reservations")}
}

func (s *Service) authorize(sess *Session, accountID string) error {
	if sess == nil || !sess.Verified(accountID) {
		return &UnauthorizedError{AccountID: accountID}
	}
	return nil
}

// VerifyAccount checks that the account exists and is active, and on
// success marks it verified in the session. A missing account and an
// inactive account are both reported as an ordinary false so the model
// cannot distinguish them.
func (s *Service) VerifyAccount(ctx context.Context, sess *Session, accountID string) (bool, error) {
	acct, err := s.store.FindAccount(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Debug("verification failed, account not found", "account_id", accountID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify account %s: %w", accountID, err)
	}
	if acct.Status != store.AccountActive {
		s.logger.Debug("verification failed, account inactive", "account_id", accountID, "status", acct.Status)
		return false, nil
	}

	sess.MarkVerified(accountID)
	s.logger.Info("account verified", "account_id", accountID)
	return true, nil
}

// GetReservations lists every reservation on the account. The search
// name is only echoed back in the empty-result message; filtering is
// left to the model, which sees the full list either way.
func (s *Service) GetReservations(ctx context.Context, sess *Session, accountID, searchName string) (string, error) {
	if err := s.authorize(sess, accountID); err != nil {
		return "", err
	}

	acct, err := s.store.FindAccount(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return "Account not found.", nil
	}
	if err != nil {
		return "", fmt.Errorf("get reservations for %s: %w", accountID, err)
	}
	if len(acct.Reservations) == 0 {
		return fmt.Sprintf("No reservations found for %s.", searchName), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d reservation(s) for %s:", len(acct.Reservations), acct.GuestName)
	for _, r := range acct.Reservations {
		fmt.Fprintf(&b, "\n- Reservation %d: %s, %s", r.ReservationID, r.Date, r.Status)
		if r.RoomType != "" {
			fmt.Fprintf(&b, ", %s room", r.RoomType)
		}
	}
	return b.String(), nil
}

// CancelReservation sets the reservation's status to Cancelled. A
// reservation that is already cancelled is indistinguishable from one
// that does not exist: neither write changes anything.
func (s *Service) CancelReservation(ctx context.Context, sess *Session, accountID string, reservationID int) (string, error) {
	if err := s.authorize(sess, accountID); err != nil {
		return "", err
	}

	res, err := s.store.UpdateReservation(ctx, accountID, reservationID, map[string]string{
		store.FieldStatus: store.ReservationCancelled,
	})
	if err != nil {
		return "", fmt.Errorf("cancel reservation %d: %w", reservationID, err)
	}
	if res.Modified == 0 {
		return fmt.Sprintf("Reservation %d not found or already cancelled.", reservationID), nil
	}

	s.logger.Info("reservation cancelled", "account_id", accountID, "reservation_id", reservationID)
	return fmt.Sprintf("Reservation %d has been cancelled.", reservationID), nil
}

// CreateReservation appends a new confirmed reservation to the account
// and returns its generated ID.
func (s *Service) CreateReservation(ctx context.Context, sess *Session, accountID, guestName, checkInDate, roomType string) (string, error) {
	if err := s.authorize(sess, accountID); err != nil {
		return "", err
	}

	if _, err := s.store.FindAccount(ctx, accountID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "Account not found.", nil
		}
		return "", fmt.Errorf("create reservation for %s: %w", accountID, err)
	}

	id := s.ids.Next()
	err := s.store.AppendReservation(ctx, accountID, store.Reservation{
		ReservationID: id,
		Date:          checkInDate,
		Status:        store.ReservationConfirmed,
		RoomType:      roomType,
	})
	if err != nil {
		return "", fmt.Errorf("create reservation for %s: %w", accountID, err)
	}

	s.logger.Info("reservation created", "account_id", accountID, "reservation_id", id, "check_in_date", checkInDate)
	return fmt.Sprintf("New reservation confirmed for %s on %s. Reservation ID: %d", guestName, checkInDate, id), nil
}

// EditReservation updates the check-in date and/or room type of an
// existing reservation. With neither field provided it returns a usage
// hint without touching the store. A write that changes nothing is
// reported as not found, matching the cancel semantics.
func (s *Service) EditReservation(ctx context.Context, sess *Session, accountID string, reservationID int, newCheckInDate, newRoomType string) (string, error) {
	if err := s.authorize(sess, accountID); err != nil {
		return "", err
	}

	fields := make(map[string]string, 2)
	var changes []string
	if newCheckInDate != "" {
		fields[store.FieldDate] = newCheckInDate
		changes = append(changes, "date to "+newCheckInDate)
	}
	if newRoomType != "" {
		fields[store.FieldRoomType] = newRoomType
		changes = append(changes, "room type to "+newRoomType)
	}
	if len(fields) == 0 {
		return "No changes provided. Specify new_check_in_date and/or new_room_type.", nil
	}

	res, err := s.store.UpdateReservation(ctx, accountID, reservationID, fields)
	if err != nil {
		return "", fmt.Errorf("edit reservation %d: %w", reservationID, err)
	}
	if res.Modified == 0 {
		return fmt.Sprintf("Reservation %d not found.", reservationID), nil
	}

	s.logger.Info("reservation updated", "account_id", accountID, "reservation_id", reservationID, "changes", changes)
	return fmt.Sprintf("Reservation %d updated: %s.", reservationID, strings.Join(changes, ", ")), nil
}
