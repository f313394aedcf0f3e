package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/money"
)

//go:generate mockgen -source=deposit.go -destination=mock_deposit_test.go -package=handlers

// Depositor defines the interface that the deposit service must implement.
type Depositor interface {
	Deposit(ctx context.Context, ownerID uuid.UUID, amount string) (money.Amount, error)
}

// DepositRequest represents the JSON body for adding money
// swagger:model DepositRequest
type DepositRequest struct {
	// Amount in major units, number or string with at most two decimals
	// required: true
	// default: 100.50
	Amount json.RawMessage `json:"amount" validate:"required" swaggertype:"number"`
}

// DepositResponse represents a successful deposit response
// swagger:model DepositResponse
type DepositResponse struct {
	// Success message
	// default: Money added successfully
	Message string `json:"message"`

	// New balance in major units
	NewBalance money.Amount `json:"new_balance" swaggertype:"number"`
}

// NewDepositHandler returns an HTTP handler for adding money to the caller's account.
// @Summary Add money
// @Description Credits the caller's account and records a credit entry
// @Tags account
// @Accept json
// @Produce json
// @Param request body handlers.DepositRequest true "Deposit Request"
// @Success 200 {object} handlers.DepositResponse "Money added successfully"
// @Failure 400 {object} handlers.ErrorResponse "Invalid amount"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 503 {object} handlers.ErrorResponse "Storage unavailable"
// @Router /account/add [post]
// @Security BearerAuth
func NewDepositHandler(svc Depositor, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r, tokener)
		if !ok {
			return
		}

		req, ok := decodeAndValidate[DepositRequest](w, r)
		if !ok {
			return
		}

		balance, err := svc.Deposit(r.Context(), ownerID, rawAmount(req.Amount))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, DepositResponse{
			Message:    "Money added successfully",
			NewBalance: balance,
		})
	}
}
