package tools

import (
	"context"

	"github.com/qoodeng/wolfe/internal/reservations"
)

// RegisterReservationTools adds the hotel reservation tool set to the
// registry, bound to one conversation's session. check_account_status
// gates the rest: the service rejects any other call for an account the
// session has not verified.
func RegisterReservationTools(r *Registry, svc *reservations.Service, sess *reservations.Session) {
	r.Register(&Tool{
		Name:        "check_account_status",
		Description: "Checks if the provided 5-digit account is active and valid. MUST be called before any other tool.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"account_id": map[string]any{
					"type":        "string",
					"description": "The 5-digit account number.",
				},
			},
			"required": []string{"account_id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (Result, error) {
			accountID, err := stringArg(args, "account_id")
			if err != nil {
				return Result{}, err
			}
			ok, err := svc.VerifyAccount(ctx, sess, accountID)
			if err != nil {
				return Result{}, err
			}
			return Boolean(ok), nil
		},
	})

	r.Register(&Tool{
		Name:        "get_guest_reservation",
		Description: "Retrieves booking details for a verified account.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"account_id": map[string]any{
					"type":        "string",
					"description": "The verified 5-digit account number.",
				},
				"search_name": map[string]any{
					"type":        "string",
					"description": "The name of the guest to search for.",
				},
			},
			"required": []string{"account_id", "search_name"},
		},
		Handler: func(ctx context.Context, args map[string]any) (Result, error) {
			accountID, err := stringArg(args, "account_id")
			if err != nil {
				return Result{}, err
			}
			searchName, err := stringArg(args, "search_name")
			if err != nil {
				return Result{}, err
			}
			msg, err := svc.GetReservations(ctx, sess, accountID, searchName)
			if err != nil {
				return Result{}, err
			}
			return Text(msg), nil
		},
	})

	r.Register(&Tool{
		Name:        "cancel_guest_reservation",
		Description: "Marks a booking as canceled.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"account_id": map[string]any{
					"type":        "string",
					"description": "The verified 5-digit account number.",
				},
				"reservation_id": map[string]any{
					"type":        "integer",
					"description": "The ID of the reservation to cancel.",
				},
			},
			"required": []string{"account_id", "reservation_id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (Result, error) {
			accountID, err := stringArg(args, "account_id")
			if err != nil {
				return Result{}, err
			}
			reservationID, err := intArg(args, "reservation_id")
			if err != nil {
				return Result{}, err
			}
			msg, err := svc.CancelReservation(ctx, sess, accountID, reservationID)
			if err != nil {
				return Result{}, err
			}
			return Text(msg), nil
		},
	})

	r.Register(&Tool{
		Name:        "make_new_reservation",
		Description: "Creates a new reservation.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"account_id": map[string]any{
					"type":        "string",
					"description": "The verified 5-digit account number.",
				},
				"guest_name": map[string]any{
					"type":        "string",
					"description": "Name of the guest.",
				},
				"check_in_date": map[string]any{
					"type":        "string",
					"description": "Check-in date (YYYY-MM-DD).",
				},
				"room_type": map[string]any{
					"type":        "string",
					"description": "Type of room (e.g., King, Queen, Suite).",
				},
			},
			"required": []string{"account_id", "guest_name", "check_in_date", "room_type"},
		},
		Handler: func(ctx context.Context, args map[string]any) (Result, error) {
			accountID, err := stringArg(args, "account_id")
			if err != nil {
				return Result{}, err
			}
			guestName, err := stringArg(args, "guest_name")
			if err != nil {
				return Result{}, err
			}
			checkInDate, err := stringArg(args, "check_in_date")
			if err != nil {
				return Result{}, err
			}
			roomType, err := stringArg(args, "room_type")
			if err != nil {
				return Result{}, err
			}
			msg, err := svc.CreateReservation(ctx, sess, accountID, guestName, checkInDate, roomType)
			if err != nil {
				return Result{}, err
			}
			return Text(msg), nil
		},
	})

	r.Register(&Tool{
		Name:        "edit_guest_reservation",
		Description: "Edits an existing reservation's check-in date and/or room type. Only provide the fields you want to change.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"account_id": map[string]any{
					"type":        "string",
					"description": "The verified 5-digit account number.",
				},
				"reservation_id": map[string]any{
					"type":        "integer",
					"description": "The ID of the reservation to edit.",
				},
				"new_check_in_date": map[string]any{
					"type":        "string",
					"description": "New check-in date (YYYY-MM-DD). Optional.",
				},
				"new_room_type": map[string]any{
					"type":        "string",
					"description": "New room type (e.g., King, Queen, Suite). Optional.",
				},
			},
			"required": []string{"account_id", "reservation_id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (Result, error) {
			accountID, err := stringArg(args, "account_id")
			if err != nil {
				return Result{}, err
			}
			reservationID, err := intArg(args, "reservation_id")
			if err != nil {
				return Result{}, err
			}
			msg, err := svc.EditReservation(ctx, sess, accountID, reservationID,
				optionalStringArg(args, "new_check_in_date"),
				optionalStringArg(args, "new_room_type"))
			if err != nil {
				return Result{}, err
			}
			return Text(msg), nil
		},
	})
}
