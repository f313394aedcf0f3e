package models

// Error is a ledger error with a stable machine readable code.
// Sentinel values below are compared with errors.Is.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrInvalidAmount is returned for non-positive, non-numeric or overflowing amounts.
	ErrInvalidAmount = &Error{Code: "INVALID_AMOUNT", Message: "Invalid amount"}
	// ErrAccountNotFound is returned when the owner has no account.
	ErrAccountNotFound = &Error{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found"}
	// ErrAccountExists is returned when opening a second account for the same owner.
	ErrAccountExists = &Error{Code: "ACCOUNT_EXISTS", Message: "Account already exists"}
	// ErrInvalidRecipient is returned when the transfer destination has no account.
	ErrInvalidRecipient = &Error{Code: "INVALID_RECIPIENT", Message: "Invalid account"}
	// ErrSelfTransfer is returned when sender and recipient are the same owner.
	ErrSelfTransfer = &Error{Code: "SELF_TRANSFER", Message: "Cannot transfer to own account"}
	// ErrInsufficientFunds is returned when the sender balance does not cover the amount.
	ErrInsufficientFunds = &Error{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient balance"}
	// ErrConflict is returned when a concurrent update invalidated the atomic unit. Retryable.
	ErrConflict = &Error{Code: "CONFLICT", Message: "Concurrent update, try again"}
	// ErrAlreadyExists is returned by the store on unique constraint violations.
	ErrAlreadyExists = &Error{Code: "ALREADY_EXISTS", Message: "Record already exists"}
	// ErrStorageUnavailable is returned on durable storage I/O failures.
	ErrStorageUnavailable = &Error{Code: "STORAGE_UNAVAILABLE", Message: "Storage unavailable"}
	// ErrTransferFailed is returned for unexpected failures and exhausted retries.
	ErrTransferFailed = &Error{Code: "TRANSFER_FAILED", Message: "Transfer failed"}
)
