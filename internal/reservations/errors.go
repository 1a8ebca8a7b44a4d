package reservations

import "fmt"

// UnauthorizedError is returned when an operation is attempted on an
// account that has not been verified in the current session. The tool
// bridge converts it into an error payload for the model, which is
// expected to ask the caller for their account number.
type UnauthorizedError struct {
	AccountID string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("account %s has not been verified in this conversation", e.AccountID)
}
